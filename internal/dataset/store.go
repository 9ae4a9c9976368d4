package dataset

import "time"

// Store holds the loaded record set and its derived schema. It is
// populated once at startup and never mutated afterwards, so it may be
// read by any number of concurrent requests without locking.
type Store struct {
	records []Record
	schema  *Schema
}

// NewStore builds a store over an already-classified record set,
// deriving the value vocabulary and date range. Records are kept in
// load order.
func NewStore(records []Record, dimensions, measures []string) *Store {
	sch := &Schema{
		Dimensions: dimensions,
		Measures:   measures,
		Values:     make(map[string][]string, len(dimensions)),
	}
	if len(measures) > 0 {
		sch.DefaultMeasure = measures[0]
	}

	seen := make(map[string]map[string]bool, len(dimensions))
	for _, d := range dimensions {
		seen[d] = make(map[string]bool)
	}

	for i := range records {
		r := &records[i]
		if sch.MinDate.IsZero() || r.Date.Before(sch.MinDate) {
			sch.MinDate = r.Date
		}
		if r.Date.After(sch.MaxDate) {
			sch.MaxDate = r.Date
		}
		sch.recordYear(r.Date.Year())
		for _, d := range dimensions {
			if v := r.Dimensions[d]; v != "" && !seen[d][v] {
				seen[d][v] = true
				sch.Values[d] = append(sch.Values[d], v)
			}
		}
	}
	sch.buildAliases()

	return &Store{records: records, schema: sch}
}

// Records returns the full record set. Callers must not mutate it.
func (s *Store) Records() []Record {
	return s.records
}

// Schema returns the derived schema.
func (s *Store) Schema() *Schema {
	return s.schema
}

// Len returns the number of loaded records.
func (s *Store) Len() int {
	return len(s.records)
}

// DateRange returns the earliest and latest record dates.
func (s *Store) DateRange() (time.Time, time.Time) {
	return s.schema.MinDate, s.schema.MaxDate
}
