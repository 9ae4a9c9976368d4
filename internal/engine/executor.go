package engine

import (
	"sort"
	"time"

	"github.com/salescope/salescope/internal/dataset"
	"github.com/salescope/salescope/internal/query"
)

// Executor runs a StructuredQuery against the in-memory record set.
// Execution is pure: the same query, records and reference time always
// produce the same result, and the record set is never mutated.
type Executor struct {
	schema *dataset.Schema
}

func New(schema *dataset.Schema) *Executor {
	return &Executor{schema: schema}
}

// Execute applies the pipeline: time filter, partition, aggregate,
// rank, shape. An empty filtered subset is valid and yields a
// zero/empty result, never an error. now anchors relative time
// filters; callers pass time.Now() in production and a fixed time in
// tests.
func (e *Executor) Execute(q *query.StructuredQuery, records []dataset.Record, now time.Time) (*query.Result, error) {
	target := q.TargetField
	if target == "" {
		target = e.schema.DefaultMeasure
	}
	if _, ok := e.schema.ResolveMeasure(target); !ok {
		return nil, &query.UnknownFieldError{Field: target, Known: e.schema.Measures}
	}
	if q.GroupBy != "" {
		if _, ok := e.schema.ResolveDimension(q.GroupBy); !ok {
			return nil, &query.UnknownFieldError{Field: q.GroupBy, Known: e.schema.GroupableFields()}
		}
	}

	filtered := filterByTime(records, q.TimeFilter, now)

	switch {
	case q.GroupBy != "":
		points := e.aggregateGroups(filtered, q.GroupBy, target, q.Aggregation)
		if q.Ranking != nil {
			points = rankPoints(points, q.Ranking)
		}
		return query.Series(points, len(filtered)), nil

	case q.Ranking != nil:
		// Ranking without grouping selects the N extreme raw records.
		rows := rankRecords(filtered, target, q.Ranking)
		return query.Table(rows, len(filtered)), nil

	default:
		return query.Scalar(aggregate(filtered, target, q.Aggregation), len(filtered)), nil
	}
}

func filterByTime(records []dataset.Record, tf *query.TimeFilter, now time.Time) []*dataset.Record {
	out := make([]*dataset.Record, 0, len(records))
	for i := range records {
		if tf.Matches(records[i].Date, now) {
			out = append(out, &records[i])
		}
	}
	return out
}

// groupKey derives the partition key for a record. The virtual date
// dimensions use zero-padded layouts so their natural (lexicographic)
// order is chronological.
func groupKey(r *dataset.Record, dim string) string {
	switch dim {
	case dataset.DimDate:
		return r.Date.Format("2006-01-02")
	case dataset.DimMonth:
		return r.Date.Format("2006-01")
	case dataset.DimYear:
		return r.Date.Format("2006")
	}
	return r.Dimension(dim)
}

// aggregateGroups partitions the records by the grouping dimension and
// reduces each partition. Date-derived keys come out chronological,
// categorical keys in first-encountered record order; that order is
// also the deterministic tie-break when ranking is applied afterwards.
func (e *Executor) aggregateGroups(records []*dataset.Record, dim, target string, agg query.Aggregation) []query.Point {
	partitions := make(map[string][]*dataset.Record)
	order := make([]string, 0)
	for _, r := range records {
		key := groupKey(r, dim)
		if _, seen := partitions[key]; !seen {
			order = append(order, key)
		}
		partitions[key] = append(partitions[key], r)
	}

	if dim == dataset.DimDate || dim == dataset.DimMonth || dim == dataset.DimYear {
		sort.Strings(order)
	}

	points := make([]query.Point, 0, len(order))
	for _, key := range order {
		v := aggregate(partitions[key], target, agg)
		if v == nil {
			continue
		}
		points = append(points, query.Point{Key: key, Value: *v})
	}
	return points
}

// aggregate reduces a set of records to a single value. Sum and count
// of nothing are a hard zero; average, max and min of nothing are
// undefined and reported as nil so they serialize as null, never NaN.
func aggregate(records []*dataset.Record, target string, agg query.Aggregation) *float64 {
	n := len(records)
	if n == 0 {
		switch agg {
		case query.AggSum, query.AggCount:
			zero := 0.0
			return &zero
		}
		return nil
	}

	var v float64
	switch agg {
	case query.AggCount:
		v = float64(n)
	case query.AggAverage:
		for _, r := range records {
			v += r.Measure(target)
		}
		v /= float64(n)
	case query.AggMax:
		v = records[0].Measure(target)
		for _, r := range records[1:] {
			if m := r.Measure(target); m > v {
				v = m
			}
		}
	case query.AggMin:
		v = records[0].Measure(target)
		for _, r := range records[1:] {
			if m := r.Measure(target); m < v {
				v = m
			}
		}
	default: // sum
		for _, r := range records {
			v += r.Measure(target)
		}
	}
	return &v
}

// rankPoints sorts aggregated points by value and truncates. The sort
// is stable so equal values keep their pre-ranking key order.
func rankPoints(points []query.Point, rank *query.Ranking) []query.Point {
	ranked := make([]query.Point, len(points))
	copy(ranked, points)
	if rank.Direction == query.RankBottom {
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Value < ranked[j].Value })
	} else {
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Value > ranked[j].Value })
	}
	if rank.Limit < len(ranked) {
		ranked = ranked[:rank.Limit]
	}
	return ranked
}

// rankRecords selects the N extreme raw records by the target field.
func rankRecords(records []*dataset.Record, target string, rank *query.Ranking) []query.Row {
	ranked := make([]*dataset.Record, len(records))
	copy(ranked, records)
	if rank.Direction == query.RankBottom {
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Measure(target) < ranked[j].Measure(target) })
	} else {
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Measure(target) > ranked[j].Measure(target) })
	}
	if rank.Limit < len(ranked) {
		ranked = ranked[:rank.Limit]
	}

	rows := make([]query.Row, 0, len(ranked))
	for _, r := range ranked {
		row := query.Row{"date": r.Date.Format("2006-01-02")}
		for k, v := range r.Dimensions {
			row[k] = v
		}
		for k, v := range r.Measures {
			row[k] = v
		}
		rows = append(rows, row)
	}
	return rows
}
