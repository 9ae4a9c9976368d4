package models

import "github.com/salescope/salescope/internal/query"

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// AskResponse is returned by POST /api/v1/ask. Result carries one of
// the three shapes (scalar, series, table); the frontend picks its
// rendering from Result.Type.
type AskResponse struct {
	Status          string                 `json:"status"`
	Query           string                 `json:"query"`
	Interpretation  *query.StructuredQuery `json:"interpretation"`
	Source          string                 `json:"source"` // which interpreter resolved it
	Result          *query.Result          `json:"result"`
	ExecutionTimeMs int64                  `json:"execution_time_ms"`
}

// DateRange bounds the loaded dataset.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DataInfoResponse is returned by GET /api/v1/data-info. It doubles as
// the schema description the frontend uses for field suggestions.
type DataInfoResponse struct {
	Dimensions []string            `json:"dimensions"`
	Measures   []string            `json:"measures"`
	RowCount   int                 `json:"row_count"`
	DateRange  DateRange           `json:"date_range"`
	Years      []int               `json:"years"`
	Values     map[string][]string `json:"values"`
	SampleRows []query.Row         `json:"sample_rows"`
}
