// Package operation provides the concrete operation registry used by the
// Cascade engine, plus a function adapter for defining operations without a
// dedicated type.
package operation

import (
	"context"

	"github.com/tombee/cascade/pkg/pipeline"
)

// Definition describes a function-backed operation. Inputs and Outputs map
// parameter names to short descriptions; every input is treated as required.
// Optional inputs are accepted when present but never demanded by validation.
type Definition struct {
	Name        string
	Description string
	Inputs      map[string]string
	Optional    map[string]string
	Outputs     map[string]string
	Run         func(ctx context.Context, inputs map[string]any) (map[string]any, error)
}

// NewFunc wraps a Definition as a pipeline.Operation.
func NewFunc(def Definition) pipeline.Operation {
	return &funcOp{def: def}
}

type funcOp struct {
	def Definition
}

func (o *funcOp) Name() string                           { return o.def.Name }
func (o *funcOp) Description() string                    { return o.def.Description }
func (o *funcOp) InputSchema() map[string]string         { return o.def.Inputs }
func (o *funcOp) OptionalInputSchema() map[string]string { return o.def.Optional }
func (o *funcOp) OutputSchema() map[string]string        { return o.def.Outputs }

func (o *funcOp) Invoke(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	return o.def.Run(ctx, inputs)
}
