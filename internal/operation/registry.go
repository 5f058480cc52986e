package operation

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tombee/cascade/pkg/errors"
	"github.com/tombee/cascade/pkg/pipeline"
)

// Registry is a thread-safe name-to-operation map implementing
// pipeline.Registry. Registration normally happens once at startup, but the
// daemon keeps serving while tests register fixtures, hence the lock.
type Registry struct {
	mu      sync.RWMutex
	ops     map[string]pipeline.Operation
	metrics *Metrics
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]pipeline.Operation)}
}

// WithMetrics attaches a metrics collector; every operation returned by
// Lookup afterwards is instrumented.
func (r *Registry) WithMetrics(m *Metrics) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = m
	return r
}

// Register adds an operation. Registering an empty name or a name that is
// already taken is an error.
func (r *Registry) Register(op pipeline.Operation) error {
	name := op.Name()
	if name == "" {
		return &errors.ValidationError{
			Field:   "name",
			Message: "operation name must not be empty",
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ops[name]; exists {
		return &errors.ValidationError{
			Field:      "name",
			Message:    fmt.Sprintf("operation %q is already registered", name),
			Suggestion: "pick a unique name for each operation",
		}
	}
	r.ops[name] = op
	return nil
}

// MustRegister registers each operation and panics on error. For use at
// startup where a registration failure is a programming mistake.
func (r *Registry) MustRegister(ops ...pipeline.Operation) {
	for _, op := range ops {
		if err := r.Register(op); err != nil {
			panic(err)
		}
	}
}

// Lookup implements pipeline.Registry.
func (r *Registry) Lookup(name string) (pipeline.Operation, error) {
	r.mu.RLock()
	op, ok := r.ops[name]
	metrics := r.metrics
	r.mu.RUnlock()
	if !ok {
		return nil, &errors.NotFoundError{Resource: "operation", ID: name}
	}
	if metrics != nil {
		return &instrumented{Operation: op, metrics: metrics}, nil
	}
	return op, nil
}

// Names returns the registered operation names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Metadata implements pipeline.Registry.
func (r *Registry) Metadata() map[string]pipeline.OperationInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]pipeline.OperationInfo, len(r.ops))
	for name, op := range r.ops {
		info := pipeline.OperationInfo{
			Description: op.Description(),
			Inputs:      op.InputSchema(),
			Outputs:     op.OutputSchema(),
		}
		if opt, ok := op.(pipeline.OptionalInputs); ok {
			if schema := opt.OptionalInputSchema(); len(schema) > 0 {
				info.Optional = schema
			}
		}
		out[name] = info
	}
	return out
}
