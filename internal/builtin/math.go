package builtin

import (
	"context"
	"fmt"

	"github.com/tombee/cascade/internal/operation"
)

func addNumbers() operation.Definition {
	return operation.Definition{
		Name:        "add_numbers",
		Description: "Add two numbers together",
		Inputs:      map[string]string{"a": "first addend", "b": "second addend"},
		Outputs: map[string]string{
			"result":    "the sum",
			"operation": "human-readable description of the calculation",
		},
		Run: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
			a, err := numberInput(inputs, "a")
			if err != nil {
				return nil, err
			}
			b, err := numberInput(inputs, "b")
			if err != nil {
				return nil, err
			}
			result := a + b
			return map[string]any{
				"result":    result,
				"operation": fmt.Sprintf("%v + %v = %v", a, b, result),
			}, nil
		},
	}
}

func checkPrime() operation.Definition {
	return operation.Definition{
		Name:        "check_prime",
		Description: "Check if a number is prime",
		Inputs:      map[string]string{"number": "integer to test"},
		Outputs: map[string]string{
			"is_prime":    "whether the number is prime",
			"number":      "the tested number",
			"explanation": "why the number is or is not prime",
		},
		Run: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
			number, err := intInput(inputs, "number")
			if err != nil {
				return nil, err
			}
			if number < 2 {
				return map[string]any{
					"is_prime":    false,
					"number":      number,
					"explanation": fmt.Sprintf("%d is not prime (less than 2)", number),
				}, nil
			}
			for i := 2; i*i <= number; i++ {
				if number%i == 0 {
					return map[string]any{
						"is_prime":    false,
						"number":      number,
						"explanation": fmt.Sprintf("%d is not prime (divisible by %d)", number, i),
					}, nil
				}
			}
			return map[string]any{
				"is_prime":    true,
				"number":      number,
				"explanation": fmt.Sprintf("%d is prime", number),
			}, nil
		},
	}
}

// calculateTotal sums a numeric field across a list of records. Non-numeric
// and absent fields contribute nothing.
func calculateTotal() operation.Definition {
	return operation.Definition{
		Name:        "calculate_total",
		Description: "Calculate the total of a specific field in a list of items",
		Inputs: map[string]string{
			"items": "list of records",
			"field": "field name to sum",
		},
		Outputs: map[string]string{
			"total": "sum of the field across all items",
			"count": "number of items",
			"field": "the summed field name",
		},
		Run: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
			items, err := sliceInput(inputs, "items")
			if err != nil {
				return nil, err
			}
			field, err := stringInput(inputs, "field")
			if err != nil {
				return nil, err
			}
			var total float64
			for _, item := range items {
				record, ok := item.(map[string]any)
				if !ok {
					continue
				}
				switch v := record[field].(type) {
				case float64:
					total += v
				case int:
					total += float64(v)
				case int64:
					total += float64(v)
				}
			}
			return map[string]any{
				"total": total,
				"count": len(items),
				"field": field,
			}, nil
		},
	}
}
