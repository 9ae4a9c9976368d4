package dataset

import (
	"sort"
	"strings"
	"time"
)

// Virtual grouping dimensions derived from the record date. They are
// always available regardless of the loaded columns.
const (
	DimDate  = "date"
	DimMonth = "month"
	DimYear  = "year"
)

// baseAliases maps common phrasings to canonical field names. Loaded
// once, read-only afterwards.
var baseAliases = map[string]string{
	"date": DimDate, "dates": DimDate, "day": DimDate, "days": DimDate, "daily": DimDate,
	"month": DimMonth, "months": DimMonth, "monthly": DimMonth,
	"year": DimYear, "years": DimYear, "yearly": DimYear, "annual": DimYear,
	"region": "region", "regions": "region", "state": "region", "area": "region", "territory": "region",
	"product": "product", "products": "product", "item": "product", "items": "product",
	"category": "category", "categories": "category",
}

// measureAliases maps common phrasings to the dataset's primary
// measure when no column of that exact name exists.
var measureAliases = []string{"sales", "amount", "revenue", "value", "total"}

// Schema describes the loaded dataset: field names, per-dimension
// value vocabulary, the covered date range and the years present. It
// is built once at load time and shared read-only across requests.
type Schema struct {
	Dimensions     []string
	Measures       []string
	DefaultMeasure string

	Values  map[string][]string // dimension -> distinct values, first-seen order
	Years   []int               // ascending
	MinDate time.Time
	MaxDate time.Time

	aliases map[string]string
}

// buildAliases merges the static alias table with the dataset's own
// column names (every column is an alias of itself, plus a naive
// plural form).
func (s *Schema) buildAliases() {
	s.aliases = make(map[string]string, len(baseAliases)+2*(len(s.Dimensions)+len(s.Measures)))
	for alias, canonical := range baseAliases {
		s.aliases[alias] = canonical
	}
	for _, d := range s.Dimensions {
		s.aliases[strings.ToLower(d)] = d
		s.aliases[strings.ToLower(d)+"s"] = d
	}
	for _, m := range s.Measures {
		s.aliases[strings.ToLower(m)] = m
		s.aliases[strings.ToLower(m)+"s"] = m
	}
	for _, a := range measureAliases {
		if _, taken := s.aliases[a]; !taken && s.DefaultMeasure != "" {
			s.aliases[a] = s.DefaultMeasure
		}
	}
}

// ResolveDimension maps a word from the query to a canonical grouping
// dimension: a loaded categorical column or one of the virtual date
// dimensions. ok is false for anything else, including measure names.
func (s *Schema) ResolveDimension(word string) (string, bool) {
	canonical, ok := s.aliases[strings.ToLower(word)]
	if !ok {
		return "", false
	}
	switch canonical {
	case DimDate, DimMonth, DimYear:
		return canonical, true
	}
	for _, d := range s.Dimensions {
		if d == canonical {
			return d, true
		}
	}
	return "", false
}

// ResolveMeasure maps a word from the query to a loaded numeric
// column.
func (s *Schema) ResolveMeasure(word string) (string, bool) {
	canonical, ok := s.aliases[strings.ToLower(word)]
	if !ok {
		return "", false
	}
	for _, m := range s.Measures {
		if m == canonical {
			return m, true
		}
	}
	return "", false
}

// GroupableFields lists every valid grouping dimension, virtual ones
// included. Used for UnknownFieldError suggestions and the fallback
// interpreter's schema description.
func (s *Schema) GroupableFields() []string {
	fields := make([]string, 0, len(s.Dimensions)+3)
	fields = append(fields, s.Dimensions...)
	fields = append(fields, DimDate, DimMonth, DimYear)
	return fields
}

func (s *Schema) recordYear(y int) {
	for _, existing := range s.Years {
		if existing == y {
			return
		}
	}
	s.Years = append(s.Years, y)
	sort.Ints(s.Years)
}
