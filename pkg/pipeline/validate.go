package pipeline

import (
	"fmt"
	"sort"
)

// Validate statically checks steps against the registry without executing
// anything: every step must name a registered operation and supply every
// input that operation declares. References are not checked; whether they
// resolve depends on runtime data. Returns false and a description of the
// first problem found.
func (e *Engine) Validate(steps []Step) (bool, string) {
	metadata := e.registry.Metadata()
	for i, step := range steps {
		if step.Operation == "" {
			return false, fmt.Sprintf("step %d: missing operation name", i)
		}
		info, ok := metadata[step.Operation]
		if !ok {
			return false, fmt.Sprintf("step %d: unknown operation %q", i, step.Operation)
		}
		required := make([]string, 0, len(info.Inputs))
		for name := range info.Inputs {
			required = append(required, name)
		}
		sort.Strings(required)
		for _, name := range required {
			if _, ok := step.Inputs[name]; !ok {
				return false, fmt.Sprintf("step %d: operation %q missing required input %q", i, step.Operation, name)
			}
		}
	}
	return true, "validation passed"
}

// PlanStep is one entry of a dry-run plan.
type PlanStep struct {
	Step        int            `json:"step"`
	Operation   string         `json:"operation"`
	Description string         `json:"description,omitempty"`
	Inputs      map[string]any `json:"inputs"`
	OutputAlias string         `json:"output_alias,omitempty"`
}

// DryRunReport describes what a pipeline would do without running it.
type DryRunReport struct {
	Valid      bool       `json:"valid"`
	Message    string     `json:"message,omitempty"`
	Error      string     `json:"error,omitempty"`
	Plan       []PlanStep `json:"plan,omitempty"`
	TotalSteps int        `json:"total_steps"`
}

// DryRun validates the steps and, when they pass, materializes the execution
// plan with raw (unresolved) inputs. No operation is invoked.
func (e *Engine) DryRun(steps []Step) *DryRunReport {
	report := &DryRunReport{TotalSteps: len(steps)}
	ok, message := e.Validate(steps)
	if !ok {
		report.Error = message
		return report
	}
	report.Valid = true
	report.Message = message

	metadata := e.registry.Metadata()
	report.Plan = make([]PlanStep, len(steps))
	for i, step := range steps {
		report.Plan[i] = PlanStep{
			Step:        i,
			Operation:   step.Operation,
			Description: metadata[step.Operation].Description,
			Inputs:      step.Inputs,
			OutputAlias: step.OutputAlias,
		}
	}
	return report
}
