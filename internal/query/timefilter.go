package query

import "time"

// TimeFilter narrows the record set before aggregation. Exactly one of
// the absolute fields (Month/Year) or the relative fields (LastDays,
// ThisMonth, ThisYear) is typically set, but combinations compose: a
// Month with a Year matches that single period, a Month alone matches
// that month in every year present in the data.
//
// Relative filters are resolved against an explicit reference time at
// execution, never against the wall clock, so execution stays
// deterministic.
type TimeFilter struct {
	Month time.Month `json:"month,omitempty"` // 0 = any month
	Year  int        `json:"year,omitempty"`  // 0 = any year

	LastDays  int  `json:"last_days,omitempty"` // window of N days ending at now
	ThisMonth bool `json:"this_month,omitempty"`
	ThisYear  bool `json:"this_year,omitempty"`
}

// IsZero reports whether the filter matches everything.
func (f *TimeFilter) IsZero() bool {
	return f == nil || (f.Month == 0 && f.Year == 0 && f.LastDays == 0 && !f.ThisMonth && !f.ThisYear)
}

// Matches reports whether t falls inside the filter, resolving relative
// clauses against now.
func (f *TimeFilter) Matches(t, now time.Time) bool {
	if f.IsZero() {
		return true
	}
	if f.Month != 0 && t.Month() != f.Month {
		return false
	}
	if f.Year != 0 && t.Year() != f.Year {
		return false
	}
	if f.LastDays > 0 {
		cutoff := now.AddDate(0, 0, -f.LastDays)
		if t.Before(cutoff) || t.After(now) {
			return false
		}
	}
	if f.ThisMonth && (t.Year() != now.Year() || t.Month() != now.Month()) {
		return false
	}
	if f.ThisYear && t.Year() != now.Year() {
		return false
	}
	return true
}
