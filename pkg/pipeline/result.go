package pipeline

import (
	"fmt"
	"strings"
)

// Result is the structured outcome of a run. FinalOutput is the output of the
// highest-numbered step that produced one; on failure it is nil and
// FailedStep points at the step that broke the run (-1 for failures not
// attributable to any step, such as a panic in the engine itself).
type Result struct {
	Success     bool              `json:"success"`
	FinalOutput any               `json:"final_output,omitempty"`
	History     []ExecutionRecord `json:"history"`
	Outputs     map[string]any    `json:"outputs"`
	Error       string            `json:"error,omitempty"`
	FailedStep  *int              `json:"failed_step,omitempty"`
}

func newSuccessResult(run *runState) *Result {
	final, _ := run.store.HighestOutput()
	return &Result{
		Success:     true,
		FinalOutput: final,
		History:     run.history,
		Outputs:     run.store.Snapshot(),
	}
}

func newFailureResult(run *runState, err error, failedStep int) *Result {
	step := failedStep
	return &Result{
		History:    run.history,
		Outputs:    run.store.Snapshot(),
		Error:      err.Error(),
		FailedStep: &step,
	}
}

// Summary renders a one-line-per-step report of the run, suitable for
// terminal output.
func (r *Result) Summary() string {
	if len(r.History) == 0 {
		return "no steps executed"
	}
	var b strings.Builder
	b.WriteString("Execution summary:")
	for _, record := range r.History {
		if record.Success {
			fmt.Fprintf(&b, "\n✓ step %d: %s", record.Step, record.Operation)
		} else {
			fmt.Fprintf(&b, "\n✗ step %d: %s - %s", record.Step, record.Operation, record.Error)
		}
	}
	return b.String()
}
