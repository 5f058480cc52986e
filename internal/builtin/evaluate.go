package builtin

import (
	"context"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/tombee/cascade/internal/operation"
)

// programCache memoizes compiled expressions keyed by source text. Pipelines
// generated from templates repeat the same expressions across runs.
type programCache struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
}

func (c *programCache) get(source string) (*vm.Program, error) {
	c.mu.RLock()
	program, ok := c.programs[source]
	c.mu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compiling expression: %w", err)
	}

	c.mu.Lock()
	c.programs[source] = program
	c.mu.Unlock()
	return program, nil
}

func evaluate() operation.Definition {
	cache := &programCache{programs: make(map[string]*vm.Program)}
	return operation.Definition{
		Name:        "evaluate",
		Description: "Evaluate a boolean or arithmetic expression against variables",
		Inputs: map[string]string{
			"expression": "expr syntax, e.g. \"total > 5000 && count >= 2\"",
		},
		Optional: map[string]string{
			"variables": "map of variable bindings available to the expression",
		},
		Outputs: map[string]string{
			"result": "the expression's value",
		},
		Run: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
			source, err := stringInput(inputs, "expression")
			if err != nil {
				return nil, err
			}
			program, err := cache.get(source)
			if err != nil {
				return nil, err
			}

			env := map[string]any{}
			if vars, ok := inputs["variables"].(map[string]any); ok {
				env = vars
			}
			result, err := expr.Run(program, env)
			if err != nil {
				return nil, fmt.Errorf("evaluating expression: %w", err)
			}
			return map[string]any{"result": result}, nil
		},
	}
}
