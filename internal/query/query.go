package query

// Aggregation is a reducing function applied to a numeric field.
type Aggregation string

const (
	AggSum     Aggregation = "sum"
	AggAverage Aggregation = "average"
	AggCount   Aggregation = "count"
	AggMax     Aggregation = "max"
	AggMin     Aggregation = "min"
)

// Valid reports whether a is one of the supported aggregations.
func (a Aggregation) Valid() bool {
	switch a {
	case AggSum, AggAverage, AggCount, AggMax, AggMin:
		return true
	}
	return false
}

// RankDirection selects which end of the sorted groups ranking keeps.
type RankDirection string

const (
	RankTop    RankDirection = "top"
	RankBottom RankDirection = "bottom"
)

// DefaultRankLimit is used when a ranking phrase carries no explicit N.
const DefaultRankLimit = 5

// Ranking is a post-aggregation top/bottom-N selection.
type Ranking struct {
	Direction RankDirection `json:"direction"`
	Limit     int           `json:"limit"`
}

// StructuredQuery is the normalized, executable representation of a
// natural-language query. It is the contract between the interpreters
// (local and external) and the engine.
type StructuredQuery struct {
	Aggregation Aggregation `json:"aggregation"`
	GroupBy     string      `json:"group_by,omitempty"`
	TimeFilter  *TimeFilter `json:"time_filter,omitempty"`
	Ranking     *Ranking    `json:"ranking,omitempty"`
	TargetField string      `json:"target_field,omitempty"`
}

// Normalize fills policy defaults on a partially populated query:
// missing aggregation becomes sum, a ranking without a limit gets
// DefaultRankLimit, and an invalid ranking direction defaults to top.
func (q *StructuredQuery) Normalize() {
	if !q.Aggregation.Valid() {
		q.Aggregation = AggSum
	}
	if q.Ranking != nil {
		if q.Ranking.Limit <= 0 {
			q.Ranking.Limit = DefaultRankLimit
		}
		if q.Ranking.Direction != RankTop && q.Ranking.Direction != RankBottom {
			q.Ranking.Direction = RankTop
		}
	}
}
