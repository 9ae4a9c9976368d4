package security

import (
	"fmt"
	"regexp"
	"strings"
)

const MaxQueryLength = 500

// dangerousPatterns covers command execution, code injection and
// prompt-injection phrasings. A sales question never needs any of
// these, so a match fails validation before the text reaches either
// interpreter.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\brm\s+-`),
	regexp.MustCompile(`(?i)\bcurl\s+`),
	regexp.MustCompile(`(?i)\bwget\s+`),
	regexp.MustCompile(`(?i)\bsudo\s+`),
	regexp.MustCompile(`\.\./`),
	regexp.MustCompile(`/etc/passwd`),
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)exec\s*\(`),
	regexp.MustCompile(`(?i)system\s*\(`),
	regexp.MustCompile(`(?i)__import__`),
	regexp.MustCompile(`(?i)subprocess`),
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?previous\s+instructions`),
}

// PromptValidator sanity-checks the raw question before interpretation.
type PromptValidator struct{}

func NewPromptValidator() *PromptValidator {
	return &PromptValidator{}
}

// ValidationResult contains validation outcome
type ValidationResult struct {
	Valid   bool
	Message string
}

// Validate checks length and dangerous content.
func (v *PromptValidator) Validate(text string) ValidationResult {
	if strings.TrimSpace(text) == "" {
		return ValidationResult{Valid: false, Message: "query cannot be empty"}
	}
	if len(text) > MaxQueryLength {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("query too long: %d chars (max %d)", len(text), MaxQueryLength),
		}
	}
	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(text) {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("dangerous pattern detected: %s", pattern.String()),
			}
		}
	}
	return ValidationResult{Valid: true, Message: "ok"}
}
