package pipeline

import "context"

// Step is a single operation invocation within a pipeline. Inputs map input
// names to raw values; string values are scanned for references at execution
// time. OutputAlias, when set, binds the step's outputs under an additional
// human-readable name so later steps may refer to them as {{alias}}.
type Step struct {
	Operation   string         `json:"operation" yaml:"operation"`
	Inputs      map[string]any `json:"inputs" yaml:"inputs"`
	OutputAlias string         `json:"output_alias,omitempty" yaml:"output_alias,omitempty"`
}

// StepStatus tracks where a step is in its lifecycle.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusResolving StepStatus = "resolving"
	StepStatusInvoking  StepStatus = "invoking"
	StepStatusSucceeded StepStatus = "succeeded"
	StepStatusFailed    StepStatus = "failed"
)

// ExecutionRecord captures what happened when one step ran. For a successful
// step Inputs holds the resolved values that were passed to the operation;
// for a failed step it holds the raw, unresolved inputs so the record shows
// what the pipeline author actually wrote.
type ExecutionRecord struct {
	Step        int            `json:"step"`
	Operation   string         `json:"operation"`
	Inputs      map[string]any `json:"inputs"`
	Outputs     map[string]any `json:"outputs,omitempty"`
	OutputAlias string         `json:"output_alias,omitempty"`
	Error       string         `json:"error,omitempty"`
	Status      StepStatus     `json:"status"`
	Success     bool           `json:"success"`
}

// Operation is a unit of work the engine can invoke. Implementations must be
// safe for concurrent use; the engine may run many pipelines at once.
type Operation interface {
	// Name returns the identifier pipelines use to select this operation.
	Name() string
	// Description returns a short human-readable summary.
	Description() string
	// InputSchema maps input names to descriptions. Every listed input is
	// required; validation rejects steps that omit one.
	InputSchema() map[string]string
	// OutputSchema maps output names to descriptions.
	OutputSchema() map[string]string
	// Invoke runs the operation with fully resolved inputs.
	Invoke(ctx context.Context, inputs map[string]any) (map[string]any, error)
}

// OptionalInputs is implemented by operations that accept inputs beyond the
// required InputSchema set. Validation never checks these; metadata and the
// planner prompt advertise them.
type OptionalInputs interface {
	OptionalInputSchema() map[string]string
}

// OperationInfo is the registry's metadata view of an operation, used by
// validation, dry runs, and planner prompt construction. Optional lists
// accepted-but-not-required inputs.
type OperationInfo struct {
	Description string            `json:"description"`
	Inputs      map[string]string `json:"inputs"`
	Optional    map[string]string `json:"optional,omitempty"`
	Outputs     map[string]string `json:"outputs"`
}

// Registry resolves operation names for the engine.
type Registry interface {
	// Lookup returns the named operation or a NotFoundError.
	Lookup(name string) (Operation, error)
	// Metadata returns info for every registered operation, keyed by name.
	Metadata() map[string]OperationInfo
}
