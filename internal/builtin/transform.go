package builtin

import (
	"context"
	"fmt"
	"time"

	"github.com/itchyny/gojq"

	"github.com/tombee/cascade/internal/operation"
)

// jqTimeout bounds a single query evaluation; a pathological query must not
// hang the whole pipeline.
const jqTimeout = 5 * time.Second

func transformJSON() operation.Definition {
	return operation.Definition{
		Name:        "transform_json",
		Description: "Transform structured data with a jq expression",
		Inputs: map[string]string{
			"data":  "value to transform",
			"query": "jq expression, e.g. \".invoices | length\"",
		},
		Outputs: map[string]string{
			"result": "the query result; multiple emitted values become a list",
		},
		Run: func(ctx context.Context, inputs map[string]any) (map[string]any, error) {
			queryStr, err := stringInput(inputs, "query")
			if err != nil {
				return nil, err
			}
			data, ok := inputs["data"]
			if !ok {
				return nil, fmt.Errorf("missing input %q", "data")
			}

			query, err := gojq.Parse(queryStr)
			if err != nil {
				return nil, fmt.Errorf("invalid jq query: %w", err)
			}
			code, err := gojq.Compile(query)
			if err != nil {
				return nil, fmt.Errorf("compiling jq query: %w", err)
			}

			ctx, cancel := context.WithTimeout(ctx, jqTimeout)
			defer cancel()

			var results []any
			iter := code.RunWithContext(ctx, data)
			for {
				v, ok := iter.Next()
				if !ok {
					break
				}
				if err, isErr := v.(error); isErr {
					return nil, fmt.Errorf("jq evaluation: %w", err)
				}
				results = append(results, v)
			}

			var result any
			switch len(results) {
			case 0:
				result = nil
			case 1:
				result = results[0]
			default:
				result = results
			}
			return map[string]any{"result": result}, nil
		},
	}
}
