package agent

import (
	"fmt"
	"strings"

	"github.com/salescope/salescope/internal/dataset"
)

const baseSystemPrompt = `You are a query planner for a sales analytics service.

Translate the user's natural-language question into a JSON aggregation query.

Respond with ONLY a JSON object, no prose and no markdown, using exactly these fields:
{
  "aggregation": "sum" | "average" | "count" | "max" | "min",
  "group_by": "<dimension>",                   // optional
  "time_filter": {                             // optional
    "month": 1-12, "year": 2023,               // both optional
    "last_days": 7, "this_month": true, "this_year": true
  },
  "ranking": {"direction": "top"|"bottom", "limit": 5},  // optional
  "target_field": "<numeric field>"            // optional
}

RULES:
1. Use only the field names listed in the schema below.
2. Never include code, expressions or any field not listed above.
3. If the question cannot be answered with an aggregation over this
   dataset, respond with {"error": "cannot parse"}.`

// BuildSystemPrompt renders the base instructions plus the dataset's
// schema: dimensions with their value vocabulary, numeric fields and
// the covered date range. The schema is static for the process
// lifetime, so the result is computed once and reused.
func BuildSystemPrompt(sch *dataset.Schema) string {
	var sb strings.Builder
	sb.WriteString(baseSystemPrompt)
	sb.WriteString("\n\nSCHEMA:\n")

	sb.WriteString("Grouping dimensions: ")
	sb.WriteString(strings.Join(sch.GroupableFields(), ", "))
	sb.WriteString("\n")

	for _, d := range sch.Dimensions {
		if vals := sch.Values[d]; len(vals) > 0 {
			sb.WriteString(fmt.Sprintf("Values of %s: %s\n", d, strings.Join(clip(vals, 25), ", ")))
		}
	}

	sb.WriteString("Numeric fields: ")
	sb.WriteString(strings.Join(sch.Measures, ", "))
	sb.WriteString(fmt.Sprintf(" (default: %s)\n", sch.DefaultMeasure))

	sb.WriteString(fmt.Sprintf("Date range: %s to %s\n",
		sch.MinDate.Format("2006-01-02"), sch.MaxDate.Format("2006-01-02")))
	return sb.String()
}

func clip(vals []string, max int) []string {
	if len(vals) <= max {
		return vals
	}
	return vals[:max]
}
