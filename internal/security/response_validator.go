package security

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/salescope/salescope/internal/dataset"
	"github.com/salescope/salescope/internal/query"
)

// codePatterns flag responses that carry executable expressions instead
// of a plain structured query. Anything that looks like code is
// rejected outright, never evaluated.
var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\beval\s*\(`),
	regexp.MustCompile(`(?i)\bexec\s*\(`),
	regexp.MustCompile(`(?i)\b__import__\b`),
	regexp.MustCompile(`(?i)\bimport\s+\w`),
	regexp.MustCompile(`(?i)\bsubprocess\b`),
	regexp.MustCompile(`(?i)\bos\.system\b`),
	regexp.MustCompile(`(?i)\blambda\b`),
	regexp.MustCompile(`(?i)\bfunction\s*\(`),
	regexp.MustCompile(`=>`),
	regexp.MustCompile("`"),
	regexp.MustCompile(`\$\(`),
}

// wireQuery mirrors the declared StructuredQuery fields plus the
// explicit failure field. Strict decoding rejects anything else the
// model may have invented.
type wireQuery struct {
	Aggregation string            `json:"aggregation"`
	GroupBy     string            `json:"group_by"`
	TimeFilter  *query.TimeFilter `json:"time_filter"`
	Ranking     *wireRanking      `json:"ranking"`
	TargetField string            `json:"target_field"`
	Error       string            `json:"error"`
}

type wireRanking struct {
	Direction string `json:"direction"`
	Limit     int    `json:"limit"`
}

// ResponseValidator deserializes an external interpreter response into
// a StructuredQuery under a strict allow-list: only the declared
// fields, only known field names, no code-like content anywhere.
type ResponseValidator struct {
	schema *dataset.Schema
}

func NewResponseValidator(schema *dataset.Schema) *ResponseValidator {
	return &ResponseValidator{schema: schema}
}

// Parse validates and converts a raw response body. Markdown fences
// are tolerated since models add them despite instructions.
func (v *ResponseValidator) Parse(raw string) (*query.StructuredQuery, error) {
	raw = stripFences(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty response")
	}
	for _, p := range codePatterns {
		if p.MatchString(raw) {
			return nil, fmt.Errorf("response contains code-like content")
		}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	var w wireQuery
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	if w.Error != "" {
		return nil, fmt.Errorf("interpreter declined: %s", w.Error)
	}

	agg := query.Aggregation(strings.ToLower(w.Aggregation))
	// "avg" and "mean" show up despite the prompt listing "average".
	switch w.Aggregation {
	case "avg", "mean":
		agg = query.AggAverage
	}
	if !agg.Valid() {
		return nil, fmt.Errorf("invalid aggregation %q", w.Aggregation)
	}

	q := &query.StructuredQuery{
		Aggregation: agg,
		TimeFilter:  w.TimeFilter,
	}

	if w.GroupBy != "" {
		dim, ok := v.schema.ResolveDimension(w.GroupBy)
		if !ok {
			return nil, fmt.Errorf("unknown grouping field %q", w.GroupBy)
		}
		q.GroupBy = dim
	}
	if w.TargetField != "" {
		m, ok := v.schema.ResolveMeasure(w.TargetField)
		if !ok {
			return nil, fmt.Errorf("unknown target field %q", w.TargetField)
		}
		q.TargetField = m
	}
	if w.Ranking != nil {
		dir := query.RankDirection(strings.ToLower(w.Ranking.Direction))
		if dir != query.RankTop && dir != query.RankBottom {
			return nil, fmt.Errorf("invalid ranking direction %q", w.Ranking.Direction)
		}
		q.Ranking = &query.Ranking{Direction: dir, Limit: w.Ranking.Limit}
	}
	if tf := w.TimeFilter; tf != nil {
		if tf.Month < 0 || tf.Month > 12 || tf.Year < 0 || tf.LastDays < 0 {
			return nil, fmt.Errorf("invalid time filter")
		}
	}

	q.Normalize()
	return q, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
