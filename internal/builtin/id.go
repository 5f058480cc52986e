package builtin

import (
	"context"

	"github.com/google/uuid"

	"github.com/tombee/cascade/internal/operation"
)

func generateID() operation.Definition {
	return operation.Definition{
		Name:        "generate_id",
		Description: "Generate a unique identifier, optionally with a prefix",
		Inputs: map[string]string{},
		Optional: map[string]string{
			"prefix": "string prepended to the id, e.g. \"order\"",
		},
		Outputs: map[string]string{
			"id": "a fresh UUID, prefixed when a prefix input is given",
		},
		Run: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
			id := uuid.NewString()
			if prefix, ok := inputs["prefix"].(string); ok && prefix != "" {
				id = prefix + "-" + id
			}
			return map[string]any{"id": id}, nil
		},
	}
}
