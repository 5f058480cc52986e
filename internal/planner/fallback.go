package planner

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tombee/cascade/pkg/pipeline"
)

// Fallback plans with keyword heuristics only. It serves two roles: the
// planner of last resort when no model is reachable, and the recovery path
// for model output that is not parseable JSON.
type Fallback struct{}

// Plan implements Planner. The error is always nil; an unmatched query
// yields an empty step list.
func (Fallback) Plan(_ context.Context, query string, _ map[string]pipeline.OperationInfo) ([]pipeline.Step, error) {
	return keywordSteps(query), nil
}

var fallbackEmailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// keywordSteps maps recognizable phrases to canned step lists. Parameter
// values are placeholders except where they can be pulled from the text,
// as with email addresses.
func keywordSteps(text string) []pipeline.Step {
	lower := strings.ToLower(text)

	if strings.Contains(lower, "valid") && strings.Contains(lower, "email") {
		email := "test@example.com"
		if found := fallbackEmailPattern.FindString(text); found != "" {
			email = found
		}
		return []pipeline.Step{
			{Operation: "validate_email", Inputs: map[string]any{"email": email}},
		}
	}

	// Word-level match: "sum" must not fire on "summarize".
	if containsWord(lower, "add", "plus", "sum") {
		return []pipeline.Step{
			{Operation: "add_numbers", Inputs: map[string]any{"a": 5.0, "b": 3.0}},
		}
	}

	if containsAny(lower, "uppercase", "upper") {
		return []pipeline.Step{
			{Operation: "uppercase_string", Inputs: map[string]any{"text": "hello world"}},
		}
	}

	if strings.Contains(lower, "current time") || strings.Contains(lower, "time now") ||
		strings.Contains(lower, "what time") {
		return []pipeline.Step{
			{Operation: "get_current_time", Inputs: map[string]any{}},
		}
	}

	if strings.Contains(lower, "random number") {
		return []pipeline.Step{
			{Operation: "generate_random_number", Inputs: map[string]any{"min_val": 1.0, "max_val": 100.0}},
		}
	}

	if strings.Contains(lower, "prime") {
		return []pipeline.Step{
			{Operation: "check_prime", Inputs: map[string]any{"number": 17}},
		}
	}

	var steps []pipeline.Step
	if strings.Contains(lower, "invoice") {
		steps = append(steps, pipeline.Step{
			Operation: "get_invoices",
			Inputs:    map[string]any{"month": extractMonth(lower)},
		})
		if containsAny(lower, "summary", "summarize", "total") {
			steps = append(steps, pipeline.Step{
				Operation: "summarize_invoices",
				Inputs:    map[string]any{"invoices": "$output_0.invoices"},
			})
		}
	}
	if strings.Contains(lower, "send email") && len(steps) > 0 {
		recipient := "user@example.com"
		if found := fallbackEmailPattern.FindString(text); found != "" {
			recipient = found
		}
		steps = append(steps, pipeline.Step{
			Operation: "send_email",
			Inputs: map[string]any{
				"content":   fmt.Sprintf("$output_%d", len(steps)-1),
				"recipient": recipient,
				"subject":   "Automated Report",
			},
		})
	}
	return steps
}

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

func extractMonth(lower string) string {
	for _, month := range monthNames {
		if strings.Contains(lower, month) {
			return strings.ToUpper(month[:1]) + month[1:]
		}
	}
	return "March"
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func containsWord(s string, words ...string) bool {
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		for _, w := range words {
			if field == w {
				return true
			}
		}
	}
	return false
}
