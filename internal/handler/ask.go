package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/salescope/salescope/internal/dataset"
	"github.com/salescope/salescope/internal/engine"
	"github.com/salescope/salescope/internal/models"
	"github.com/salescope/salescope/internal/query"
	"github.com/salescope/salescope/internal/resolver"
	"github.com/salescope/salescope/internal/security"
)

// AskHandler handles POST /api/v1/ask: raw question in, rendered
// QueryResult out.
type AskHandler struct {
	store       *dataset.Store
	resolver    *resolver.Resolver
	executor    *engine.Executor
	promptVal   *security.PromptValidator
	auditLogger *security.AuditLogger

	// now anchors relative time filters for the whole request.
	now func() time.Time
}

func NewAskHandler(
	store *dataset.Store,
	res *resolver.Resolver,
	exec *engine.Executor,
	promptVal *security.PromptValidator,
	auditLogger *security.AuditLogger,
) *AskHandler {
	return &AskHandler{
		store:       store,
		resolver:    res,
		executor:    exec,
		promptVal:   promptVal,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// Ask handles POST /api/v1/ask
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.Sanitize()

	if res := h.promptVal.Validate(req.Query); !res.Valid {
		models.WriteError(w, http.StatusBadRequest, res.Message)
		return
	}

	apiKey := r.Header.Get("X-API-Key")
	start := time.Now()

	q, source, err := h.resolver.Resolve(r.Context(), req.Query)
	if err != nil {
		execMs := time.Since(start).Milliseconds()
		h.auditLogger.LogQuery(req.Query, apiKey, source, execMs, "", 0, false, err.Error())
		models.WriteError(w, http.StatusUnprocessableEntity,
			"could not understand the query, please rephrase")
		return
	}

	result, err := h.executor.Execute(q, h.store.Records(), h.now())
	execMs := time.Since(start).Milliseconds()
	if err != nil {
		h.auditLogger.LogQuery(req.Query, apiKey, source, execMs, "", 0, false, err.Error())
		var ufe *query.UnknownFieldError
		if errors.As(err, &ufe) {
			models.WriteFieldError(w, http.StatusBadRequest, err.Error(), ufe.Known)
			return
		}
		models.WriteError(w, http.StatusInternalServerError, "query execution failed: "+err.Error())
		return
	}

	h.auditLogger.LogQuery(req.Query, apiKey, source, execMs, string(result.Type), result.RowCount, true, "")

	models.WriteJSON(w, http.StatusOK, models.AskResponse{
		Status:          "success",
		Query:           req.Query,
		Interpretation:  q,
		Source:          source,
		Result:          result,
		ExecutionTimeMs: execMs,
	})
}
