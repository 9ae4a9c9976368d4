package security

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/rs/zerolog/log"
)

// AuditLogger records query events with hashed identifiers so logs
// never carry raw question text or API keys.
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// LogQuery records one resolved (or failed) query.
func (a *AuditLogger) LogQuery(
	text, apiKey, source string,
	executionTimeMs int64,
	resultType string,
	rowCount int,
	success bool,
	errMsg string,
) {
	if !a.enabled {
		return
	}

	evt := log.Info().
		Str("event", "query_audit").
		Str("query_hash", hashStr(text)[:16]).
		Str("api_key_hash", hashStr(apiKey)[:16]).
		Str("source", source).
		Int64("execution_time_ms", executionTimeMs).
		Str("result_type", resultType).
		Int("row_count", rowCount).
		Bool("success", success)

	if errMsg != "" {
		evt = evt.Str("error", errMsg)
	}
	evt.Msg("audit")
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
