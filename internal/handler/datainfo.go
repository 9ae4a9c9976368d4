package handler

import (
	"net/http"

	"github.com/salescope/salescope/internal/dataset"
	"github.com/salescope/salescope/internal/models"
	"github.com/salescope/salescope/internal/query"
)

const sampleRowCount = 5

// DataInfoHandler handles GET /api/v1/data-info: the loaded dataset's
// shape, vocabulary and date range for the frontend.
type DataInfoHandler struct {
	store *dataset.Store
}

func NewDataInfoHandler(store *dataset.Store) *DataInfoHandler {
	return &DataInfoHandler{store: store}
}

// DataInfo handles GET /api/v1/data-info
func (h *DataInfoHandler) DataInfo(w http.ResponseWriter, r *http.Request) {
	sch := h.store.Schema()
	min, max := h.store.DateRange()

	models.WriteJSON(w, http.StatusOK, models.DataInfoResponse{
		Dimensions: sch.Dimensions,
		Measures:   sch.Measures,
		RowCount:   h.store.Len(),
		DateRange: models.DateRange{
			Start: min.Format("2006-01-02"),
			End:   max.Format("2006-01-02"),
		},
		Years:      sch.Years,
		Values:     sch.Values,
		SampleRows: sampleRows(h.store),
	})
}

func sampleRows(store *dataset.Store) []query.Row {
	records := store.Records()
	n := sampleRowCount
	if len(records) < n {
		n = len(records)
	}
	rows := make([]query.Row, 0, n)
	for i := 0; i < n; i++ {
		r := &records[i]
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
