package builtin

import "fmt"

// Input values arrive from JSON decoding or from resolved references, so
// numbers may be float64, int, or int64 depending on the producer.

func stringInput(inputs map[string]any, key string) (string, error) {
	v, ok := inputs[key]
	if !ok {
		return "", fmt.Errorf("missing input %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("input %q must be a string, got %T", key, v)
	}
	return s, nil
}

func numberInput(inputs map[string]any, key string) (float64, error) {
	v, ok := inputs[key]
	if !ok {
		return 0, fmt.Errorf("missing input %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("input %q must be a number, got %T", key, v)
	}
}

func intInput(inputs map[string]any, key string) (int, error) {
	n, err := numberInput(inputs, key)
	if err != nil {
		return 0, err
	}
	if n != float64(int(n)) {
		return 0, fmt.Errorf("input %q must be an integer, got %v", key, n)
	}
	return int(n), nil
}

func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func sliceInput(inputs map[string]any, key string) ([]any, error) {
	v, ok := inputs[key]
	if !ok {
		return nil, fmt.Errorf("missing input %q", key)
	}
	s, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("input %q must be a list, got %T", key, v)
	}
	return s, nil
}
