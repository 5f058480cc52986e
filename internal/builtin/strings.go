package builtin

import (
	"context"
	"strings"

	"github.com/tombee/cascade/internal/operation"
)

func uppercaseString() operation.Definition {
	return operation.Definition{
		Name:        "uppercase_string",
		Description: "Convert a string to uppercase",
		Inputs:      map[string]string{"text": "text to convert"},
		Outputs: map[string]string{
			"uppercase_text": "the converted text",
			"original":       "the input text unchanged",
		},
		Run: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
			text, err := stringInput(inputs, "text")
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"uppercase_text": strings.ToUpper(text),
				"original":       text,
			}, nil
		},
	}
}
