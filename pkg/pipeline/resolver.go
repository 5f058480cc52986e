package pipeline

import (
	"fmt"

	"github.com/tombee/cascade/pkg/errors"
)

// legacyAliases maps variable names emitted by early planner prompts to the
// positional keys they were observed to mean. Kept for compatibility with
// stored plans; do not extend.
var legacyAliases = map[string]string{
	"december_invoices":   "output_0",
	"invoice_summary":     "output_1",
	"high_value_invoices": "output_1",
}

// ResolveInputs resolves a step's raw inputs against the store, returning a
// new map. String values are resolved directly. For map and slice values only
// the top-level string elements are resolved; deeper nesting passes through
// untouched.
func ResolveInputs(inputs map[string]any, store *OutputStore, history []ExecutionRecord) (map[string]any, error) {
	resolved := make(map[string]any, len(inputs))
	for name, value := range inputs {
		v, err := resolveValue(value, store, history)
		if err != nil {
			return nil, errors.Wrapf(err, "input %q", name)
		}
		resolved[name] = v
	}
	return resolved, nil
}

func resolveValue(value any, store *OutputStore, history []ExecutionRecord) (any, error) {
	switch v := value.(type) {
	case string:
		return Resolve(v, store, history)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			s, ok := item.(string)
			if !ok {
				out[k] = item
				continue
			}
			r, err := Resolve(s, store, history)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				out[i] = item
				continue
			}
			r, err := Resolve(s, store, history)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return value, nil
	}
}

// Resolve resolves a single raw string value. Non-reference strings are
// returned unchanged.
func Resolve(raw string, store *OutputStore, history []ExecutionRecord) (any, error) {
	ref, ok := ParseReference(raw)
	if !ok {
		return raw, nil
	}
	base, err := resolveBase(ref, store, history)
	if err != nil {
		return nil, err
	}
	return navigate(base, ref)
}

func resolveBase(ref *Reference, store *OutputStore, history []ExecutionRecord) (any, error) {
	switch ref.Kind {
	case ReferencePositional:
		key := OutputKey(ref.Index)
		value, ok := store.Get(key)
		if !ok {
			return nil, &errors.ReferenceError{
				Kind:      errors.RefOutputNotFound,
				Reference: ref.Raw,
				Message:   fmt.Sprintf("%s has not been produced", key),
			}
		}
		return value, nil
	case ReferenceNamed:
		if value, ok := store.Get(ref.Alias); ok {
			return value, nil
		}
		// Most recent alias binding in the history wins.
		for i := len(history) - 1; i >= 0; i-- {
			if history[i].Success && history[i].OutputAlias == ref.Alias {
				return history[i].Outputs, nil
			}
		}
		if key, ok := legacyAliases[ref.Alias]; ok {
			if value, ok := store.Get(key); ok {
				return value, nil
			}
		}
		return nil, &errors.ReferenceError{
			Kind:      errors.RefVariableNotFound,
			Reference: ref.Raw,
			Message:   fmt.Sprintf("variable %q is not bound in this run", ref.Alias),
		}
	default:
		return nil, &errors.ReferenceError{
			Kind:      errors.RefVariableNotFound,
			Reference: ref.Raw,
			Message:   fmt.Sprintf("unknown reference kind %q", ref.Kind),
		}
	}
}

// navigate walks the reference's field path through nested maps.
func navigate(value any, ref *Reference) (any, error) {
	current := value
	for _, field := range ref.Path {
		container, ok := current.(map[string]any)
		if !ok {
			return nil, &errors.ReferenceError{
				Kind:      errors.RefNotAContainer,
				Reference: ref.Raw,
				Message:   fmt.Sprintf("cannot access field %q on a non-container value", field),
			}
		}
		next, exists := container[field]
		if !exists || next == nil {
			return nil, &errors.ReferenceError{
				Kind:      errors.RefFieldNotFound,
				Reference: ref.Raw,
				Message:   fmt.Sprintf("field %q not found", field),
			}
		}
		current = next
	}
	return current, nil
}
