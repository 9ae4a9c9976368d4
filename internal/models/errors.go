package models

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Code    int      `json:"code,omitempty"`
	Fields  []string `json:"fields,omitempty"` // valid field names, for unknown-field errors
}

func WriteError(w http.ResponseWriter, code int, message string) {
	writeErr(w, code, ErrorResponse{Status: "error", Message: message, Code: code})
}

// WriteFieldError includes the valid field names so the UI can suggest
// them when a query referenced a field the schema does not have.
func WriteFieldError(w http.ResponseWriter, code int, message string, fields []string) {
	writeErr(w, code, ErrorResponse{Status: "error", Message: message, Code: code, Fields: fields})
}

func writeErr(w http.ResponseWriter, code int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
