package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// OutputStore holds the outputs accumulated during a single run. Keys are the
// positional names output_0, output_1, ... plus any step aliases, each bound at
// most once; entries are never overwritten or removed. A store belongs to one
// run and is only touched by that run's goroutine, so it carries no locking.
type OutputStore struct {
	values map[string]any
}

// NewOutputStore returns an empty store.
func NewOutputStore() *OutputStore {
	return &OutputStore{values: make(map[string]any)}
}

// OutputKey returns the positional store key for step index.
func OutputKey(index int) string {
	return "output_" + strconv.Itoa(index)
}

// Put binds key to value. Binding a key that already exists is an error; the
// store is append-only.
func (s *OutputStore) Put(key string, value any) error {
	if _, exists := s.values[key]; exists {
		return fmt.Errorf("output store: key %q already bound", key)
	}
	s.values[key] = value
	return nil
}

// Get returns the value bound to key.
func (s *OutputStore) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is bound.
func (s *OutputStore) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Len returns the number of bound keys.
func (s *OutputStore) Len() int {
	return len(s.values)
}

// Snapshot returns a shallow copy of the store contents.
func (s *OutputStore) Snapshot() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// HighestOutput returns the value bound to the output_N key with the largest
// N, which the engine reports as the pipeline's final output. Aliases do not
// participate.
func (s *OutputStore) HighestOutput() (any, bool) {
	best := -1
	var value any
	for key, v := range s.values {
		n, ok := positionalIndex(key)
		if ok && n > best {
			best = n
			value = v
		}
	}
	return value, best >= 0
}

func positionalIndex(key string) (int, bool) {
	digits, ok := strings.CutPrefix(key, "output_")
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
