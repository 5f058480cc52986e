package builtin

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/tombee/cascade/internal/operation"
)

func generateRandomNumber(cfg Config) operation.Definition {
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(seed))

	return operation.Definition{
		Name:        "generate_random_number",
		Description: "Generate a random number between min and max values",
		Inputs: map[string]string{
			"min_val": "lower bound",
			"max_val": "upper bound",
		},
		Outputs: map[string]string{
			"random_number": "a value in [min_val, max_val], rounded to 2 decimals",
			"range":         "description of the requested range",
		},
		Run: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
			min, err := numberInput(inputs, "min_val")
			if err != nil {
				return nil, err
			}
			max, err := numberInput(inputs, "max_val")
			if err != nil {
				return nil, err
			}
			if min > max {
				min, max = max, min
			}
			mu.Lock()
			n := min + rng.Float64()*(max-min)
			mu.Unlock()
			return map[string]any{
				"random_number": math.Round(n*100) / 100,
				"range":         fmt.Sprintf("between %v and %v", min, max),
			}, nil
		},
	}
}
