// Package planner turns natural-language requests into pipeline step lists.
// The real implementation talks to a local Ollama instance; a keyword-based
// fallback covers the common queries when no model is reachable.
package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tombee/cascade/pkg/pipeline"
)

// Planner produces an ordered step list for a natural-language query, using
// the registry metadata to know which operations exist. An empty step list
// with a nil error means the planner could not map the query to operations.
type Planner interface {
	Plan(ctx context.Context, query string, metadata map[string]pipeline.OperationInfo) ([]pipeline.Step, error)
}

// buildPrompt renders the planning prompt: the operation catalog, the query,
// and the output contract the model must follow.
func buildPrompt(query string, metadata map[string]pipeline.OperationInfo) string {
	names := make([]string, 0, len(metadata))
	for name := range metadata {
		names = append(names, name)
	}
	sort.Strings(names)

	var docs strings.Builder
	for _, name := range names {
		info := metadata[name]
		fmt.Fprintf(&docs, "Operation: %s\nDescription: %s\nInputs: %s\n",
			name, info.Description, schemaLine(info.Inputs))
		if len(info.Optional) > 0 {
			fmt.Fprintf(&docs, "Optional inputs: %s\n", schemaLine(info.Optional))
		}
		fmt.Fprintf(&docs, "Outputs: %s\n\n", schemaLine(info.Outputs))
	}

	return fmt.Sprintf(`You are a function planning AI that converts natural language queries into structured function call sequences.

AVAILABLE OPERATIONS:
%s
USER QUERY: %q

TASK: Analyze the user query and create a sequence of function calls to fulfill the request.

RULES:
1. Return ONLY a valid JSON array of function calls
2. Each function call must have: {"function": "operation_name", "inputs": {"param": "value"}}
3. Use references like "$output_0", "$output_1" to chain outputs between calls
4. The first call's output becomes $output_0, the second becomes $output_1, and so on
5. Be specific with parameter values when possible

EXAMPLE FORMAT:
[
  {"function": "get_invoices", "inputs": {"month": "March"}},
  {"function": "summarize_invoices", "inputs": {"invoices": "$output_0.invoices"}},
  {"function": "send_email", "inputs": {"content": "$output_1.summary", "recipient": "user@example.com", "subject": "Invoice Summary"}}
]

RESPONSE (JSON only):
`, docs.String(), query)
}

func schemaLine(schema map[string]string) string {
	if len(schema) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, schema[k])
	}
	return strings.Join(parts, ", ")
}
