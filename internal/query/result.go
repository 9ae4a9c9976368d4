package query

// ResultType tags which shape a Result carries, so the rendering layer
// can pick a chart versus a table without inspecting the payload.
type ResultType string

const (
	ResultScalar ResultType = "scalar"
	ResultSeries ResultType = "series"
	ResultTable  ResultType = "table"
)

// Point is one entry of a series result: a group key and its
// aggregated value.
type Point struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Row is one record of a table result, flattened for serialization.
type Row map[string]any

// Result is the engine's output: exactly one of Value, Points or Rows
// is populated depending on Type. Results are transient, built per
// request and discarded after the response is written.
type Result struct {
	Type ResultType `json:"type"`

	// Value is set for scalar results. It is nil when the aggregation
	// is undefined over the filtered subset (average of zero records),
	// which serializes as null rather than NaN or a misleading zero.
	Value *float64 `json:"value,omitempty"`

	Points []Point `json:"points,omitempty"`
	Rows   []Row   `json:"rows,omitempty"`

	// RowCount is the number of records that survived the time filter.
	RowCount int `json:"row_count"`
}

// Empty reports whether the result carries no data: a nil scalar, or a
// series/table with no entries.
func (r *Result) Empty() bool {
	switch r.Type {
	case ResultScalar:
		return r.Value == nil
	case ResultSeries:
		return len(r.Points) == 0
	case ResultTable:
		return len(r.Rows) == 0
	}
	return true
}

// Scalar builds a scalar result.
func Scalar(v *float64, rowCount int) *Result {
	return &Result{Type: ResultScalar, Value: v, RowCount: rowCount}
}

// Series builds a series result.
func Series(points []Point, rowCount int) *Result {
	return &Result{Type: ResultSeries, Points: points, RowCount: rowCount}
}

// Table builds a table result.
func Table(rows []Row, rowCount int) *Result {
	return &Result{Type: ResultTable, Rows: rows, RowCount: rowCount}
}
