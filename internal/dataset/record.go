package dataset

import "time"

// Record is one row of the sales dataset: a date, string dimensions
// (region and any extra categorical columns) and numeric measures.
// Records are immutable once loaded; the full record set is read-only
// for the lifetime of the process and safe to share across requests
// without locking.
type Record struct {
	Date       time.Time
	Dimensions map[string]string
	Measures   map[string]float64
}

// Dimension returns the value of a categorical field, or "" when the
// record does not carry it.
func (r *Record) Dimension(name string) string {
	return r.Dimensions[name]
}

// Measure returns the value of a numeric field, or 0 when the record
// does not carry it.
func (r *Record) Measure(name string) float64 {
	return r.Measures[name]
}
