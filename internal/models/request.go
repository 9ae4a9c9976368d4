package models

import "strings"

// AskRequest for POST /api/v1/ask
type AskRequest struct {
	Query string `json:"query"`
}

func (r *AskRequest) Sanitize() {
	r.Query = strings.TrimSpace(r.Query)
}
