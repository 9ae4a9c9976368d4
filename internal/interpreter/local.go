package interpreter

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/salescope/salescope/internal/dataset"
	"github.com/salescope/salescope/internal/query"
)

// Local translates free text into a StructuredQuery by keyword and
// pattern scanning. It is a pure function of the text and the loaded
// schema: no I/O, no external state, safe for concurrent use.
//
// Recognition is a closed, extensible set of intent categories, each
// with its own trigger vocabulary. Aggregation and grouping are
// scanned independently, then time filter and ranking are layered on
// top. Only when no aggregation signal AND no grouping phrase exist
// does interpretation fail with ErrNoMatch, which is the resolver's
// cue to try the external fallback.
type Local struct {
	schema *dataset.Schema
}

func NewLocal(schema *dataset.Schema) *Local {
	return &Local{schema: schema}
}

func (l *Local) Name() string { return "local" }

// Aggregation trigger vocabulary. Multi-word phrases are matched on
// the normalized text, single words on token boundaries.
var aggKeywords = map[query.Aggregation][]string{
	query.AggSum:     {"total", "sum", "overall"},
	query.AggAverage: {"average", "avg", "mean"},
	query.AggCount:   {"count", "how many", "number of"},
	query.AggMax:     {"highest", "maximum", "max", "largest", "biggest", "peak"},
	query.AggMin:     {"lowest", "minimum", "min", "smallest", "least"},
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var (
	rankingRe  = regexp.MustCompile(`\b(top|best|highest|bottom|worst|lowest)\b(?:\s+(\d+))?`)
	groupByRe  = regexp.MustCompile(`\b(?:by|per|each)\s+([a-z]+)`)
	yearRe     = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	lastDaysRe = regexp.MustCompile(`\b(?:last|past)\s+(\d+)\s+days?\b`)
	punctRe    = regexp.MustCompile(`[^a-z0-9\s]+`)
)

// Interpret implements the local interpretation contract. The context
// is unused; interpretation never blocks.
func (l *Local) Interpret(_ context.Context, text string) (*query.StructuredQuery, error) {
	norm := normalize(text)
	if norm == "" {
		return nil, query.ErrNoMatch
	}
	tokens := strings.Fields(norm)

	q := &query.StructuredQuery{}

	ranked := l.scanRanking(norm, q)
	agg := l.scanAggregation(norm, ranked)
	grouped := l.scanGroupBy(norm, q)
	measure := l.scanTargetField(tokens, q)
	l.scanTimeFilter(norm, tokens, q)

	// Ranking over an unnamed dimension: "top 5 sales days" carries the
	// dimension as a bare noun rather than a "by" phrase.
	if ranked && q.GroupBy == "" {
		for _, tok := range tokens {
			if dim, ok := l.schema.ResolveDimension(tok); ok {
				q.GroupBy = dim
				grouped = true
				break
			}
		}
	}

	if agg == "" && !grouped && !ranked && !measure {
		return nil, query.ErrNoMatch
	}

	q.Aggregation = agg
	q.Normalize()

	log.Debug().
		Str("text", text).
		Str("aggregation", string(q.Aggregation)).
		Str("group_by", q.GroupBy).
		Bool("ranked", q.Ranking != nil).
		Bool("time_filter", !q.TimeFilter.IsZero()).
		Msg("local interpretation")
	return q, nil
}

// scanRanking detects top/bottom-N phrases. "top" and "bottom" always
// rank; "highest"/"lowest" rank only when followed by an explicit N,
// otherwise they are left for the aggregation scan to read as max/min.
func (l *Local) scanRanking(norm string, q *query.StructuredQuery) bool {
	for _, m := range rankingRe.FindAllStringSubmatch(norm, -1) {
		word, num := m[1], m[2]
		direction := query.RankTop
		if word == "bottom" || word == "worst" || word == "lowest" {
			direction = query.RankBottom
		}
		explicit := word == "top" || word == "best" || word == "bottom" || word == "worst"
		if !explicit && num == "" {
			continue
		}
		limit := query.DefaultRankLimit
		if num != "" {
			if n, err := strconv.Atoi(num); err == nil && n > 0 {
				limit = n
			}
		}
		q.Ranking = &query.Ranking{Direction: direction, Limit: limit}
		return true
	}
	return false
}

// scanAggregation picks the first matching aggregation keyword. When a
// ranking phrase was found, max/min words express the ranking
// direction, not the reducer, so they are skipped and the aggregation
// defaults to sum.
func (l *Local) scanAggregation(norm string, ranked bool) query.Aggregation {
	for _, agg := range []query.Aggregation{query.AggCount, query.AggAverage, query.AggSum, query.AggMax, query.AggMin} {
		if ranked && (agg == query.AggMax || agg == query.AggMin) {
			continue
		}
		for _, kw := range aggKeywords[agg] {
			if containsPhrase(norm, kw) {
				return agg
			}
		}
	}
	return ""
}

// scanGroupBy resolves "by <dimension>" phrases. An unknown dimension
// is not a failure of the whole interpretation; it simply leaves the
// query ungrouped.
func (l *Local) scanGroupBy(norm string, q *query.StructuredQuery) bool {
	for _, m := range groupByRe.FindAllStringSubmatch(norm, -1) {
		if dim, ok := l.schema.ResolveDimension(m[1]); ok {
			q.GroupBy = dim
			return true
		}
	}
	return false
}

// scanTargetField resolves an explicit numeric field mention. A
// mention of any known measure doubles as the implied aggregation
// signal ("sales in July" has no verb but clearly means sum of sales).
func (l *Local) scanTargetField(tokens []string, q *query.StructuredQuery) bool {
	for _, tok := range tokens {
		if m, ok := l.schema.ResolveMeasure(tok); ok {
			q.TargetField = m
			return true
		}
	}
	q.TargetField = l.schema.DefaultMeasure
	return false
}

// scanTimeFilter recognizes month names, four-digit years and relative
// phrases. A month without a year is left year-open on purpose: when
// the data spans multiple years the filter matches the month in every
// one of them rather than guessing.
func (l *Local) scanTimeFilter(norm string, tokens []string, q *query.StructuredQuery) {
	tf := &query.TimeFilter{}

	for _, tok := range tokens {
		if month, ok := monthNames[tok]; ok {
			tf.Month = month
			break
		}
	}
	if m := yearRe.FindStringSubmatch(norm); m != nil {
		tf.Year, _ = strconv.Atoi(m[1])
	}
	if m := lastDaysRe.FindStringSubmatch(norm); m != nil {
		tf.LastDays, _ = strconv.Atoi(m[1])
	} else if containsPhrase(norm, "last week") || containsPhrase(norm, "past week") {
		tf.LastDays = 7
	}
	if containsPhrase(norm, "this month") || containsPhrase(norm, "current month") {
		tf.ThisMonth = true
	}
	if containsPhrase(norm, "this year") || containsPhrase(norm, "current year") {
		tf.ThisYear = true
	}

	if !tf.IsZero() {
		q.TimeFilter = tf
	}
}

// normalize lowercases and strips punctuation so matching is tolerant
// of case and minor punctuation, per the interpreter contract.
func normalize(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	lower = punctRe.ReplaceAllString(lower, " ")
	return strings.Join(strings.Fields(lower), " ")
}

// containsPhrase matches kw on word boundaries within the already
// normalized text.
func containsPhrase(norm, kw string) bool {
	idx := 0
	for {
		i := strings.Index(norm[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		beforeOK := start == 0 || norm[start-1] == ' '
		afterOK := end == len(norm) || norm[end] == ' '
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}
