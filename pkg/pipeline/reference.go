package pipeline

import (
	"strconv"
	"strings"
)

// ReferenceKind distinguishes the two reference syntaxes.
type ReferenceKind string

const (
	// ReferencePositional is the $output_N form.
	ReferencePositional ReferenceKind = "positional"
	// ReferenceNamed is the {{alias}} form.
	ReferenceNamed ReferenceKind = "named"
)

// Reference is a parsed reference to an earlier step's output. Path holds the
// dotted field segments after the base, outermost first; it is empty when the
// reference selects the whole output map.
type Reference struct {
	Kind  ReferenceKind
	Index int    // positional only
	Alias string // named only
	Path  []string
	Raw   string
}

const positionalPrefix = "$output_"

// ParseReference reports whether raw is a reference and, if so, returns its
// parsed form. Strings that merely resemble the syntax without matching it
// exactly (e.g. "$output_x", "{{}}", "$output_1.") are not references and are
// treated as literals by the resolver.
func ParseReference(raw string) (*Reference, bool) {
	if strings.HasPrefix(raw, "{{") && strings.HasSuffix(raw, "}}") && len(raw) > 4 {
		return parseNamed(raw)
	}
	if strings.HasPrefix(raw, positionalPrefix) {
		return parsePositional(raw)
	}
	return nil, false
}

func parseNamed(raw string) (*Reference, bool) {
	inner := strings.TrimSpace(raw[2 : len(raw)-2])
	if inner == "" {
		return nil, false
	}
	segments := strings.Split(inner, ".")
	for _, seg := range segments {
		if !isWord(seg) {
			return nil, false
		}
	}
	var path []string
	if len(segments) > 1 {
		path = segments[1:]
	}
	return &Reference{
		Kind:  ReferenceNamed,
		Alias: segments[0],
		Path:  path,
		Raw:   raw,
	}, true
}

func parsePositional(raw string) (*Reference, bool) {
	rest := raw[len(positionalPrefix):]
	digits := rest
	var path []string
	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		digits = rest[:dot]
		path = strings.Split(rest[dot+1:], ".")
		for _, seg := range path {
			if !isWord(seg) {
				return nil, false
			}
		}
	}
	if digits == "" {
		return nil, false
	}
	index, err := strconv.Atoi(digits)
	if err != nil || index < 0 {
		return nil, false
	}
	return &Reference{
		Kind:  ReferencePositional,
		Index: index,
		Path:  path,
		Raw:   raw,
	}, true
}

// isWord reports whether s is non-empty and made of letters, digits, and
// underscores only.
func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
