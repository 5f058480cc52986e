package planner

import (
	"encoding/json"
	"strings"

	"github.com/tombee/cascade/pkg/pipeline"
)

// plannedCall is the JSON shape the model is asked to emit.
type plannedCall struct {
	Function    string         `json:"function"`
	Inputs      map[string]any `json:"inputs"`
	OutputAlias string         `json:"output_alias,omitempty"`
}

// extractSteps pulls the first JSON array out of model output and converts it
// to steps. Models tend to wrap the array in prose or code fences, so the
// text between the first '[' and the last ']' is what gets parsed. Entries
// without a function name or an inputs object are dropped.
func extractSteps(text string) ([]pipeline.Step, bool) {
	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end <= start {
		return nil, false
	}

	var calls []plannedCall
	if err := json.Unmarshal([]byte(text[start:end+1]), &calls); err != nil {
		return nil, false
	}

	steps := make([]pipeline.Step, 0, len(calls))
	for _, call := range calls {
		if call.Function == "" || call.Inputs == nil {
			continue
		}
		steps = append(steps, pipeline.Step{
			Operation:   call.Function,
			Inputs:      call.Inputs,
			OutputAlias: call.OutputAlias,
		})
	}
	return steps, true
}
