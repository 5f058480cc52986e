// Copyright 2026 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import "fmt"

// ReferenceKind classifies reference resolution failures.
type ReferenceKind string

const (
	// RefOutputNotFound indicates a positional reference to an output key
	// that does not exist in the store (out of range or not yet produced).
	RefOutputNotFound ReferenceKind = "output_not_found"

	// RefVariableNotFound indicates a named reference whose alias matched
	// neither a store key, a prior step's output alias, nor a legacy mapping.
	RefVariableNotFound ReferenceKind = "variable_not_found"

	// RefNotAContainer indicates a field path segment applied to a value
	// that is not a keyed container.
	RefNotAContainer ReferenceKind = "not_a_container"

	// RefFieldNotFound indicates a field path segment absent from its
	// container, or present with a nil value.
	RefFieldNotFound ReferenceKind = "field_not_found"
)

// ReferenceError represents a failure to resolve a step input reference.
// It always carries the original reference string for diagnostics.
type ReferenceError struct {
	// Kind classifies the failure
	Kind ReferenceKind

	// Reference is the original reference text as written in the step input
	Reference string

	// Message is the human-readable error description
	Message string
}

// Error implements the error interface.
func (e *ReferenceError) Error() string {
	return fmt.Sprintf("resolving reference %q: %s", e.Reference, e.Message)
}

// ValidationError represents step list validation failures.
// Use this for unknown operation names and missing required inputs,
// whether caught by a dry run or at execution time.
type ValidationError struct {
	// Field identifies which part of the step failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Suggestion provides actionable guidance for fixing the error
	Suggestion string

	// Cause is the underlying error, if any
	Cause error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// OperationError represents an operation's own business-logic failure,
// wrapped with the operation name.
type OperationError struct {
	// Operation is the name of the operation that failed
	Operation string

	// Message is the operation's error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// PipelineError represents an uncaught failure during a run that cannot be
// attributed to a specific step. Step is always -1.
type PipelineError struct {
	// Step is the step index the failure is attributed to (-1)
	Step int

	// Message is the human-readable error description
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline execution failed: %s", e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// NotFoundError represents a resource not found error.
// Use this when a requested resource does not exist.
type NotFoundError struct {
	// Resource is the type of resource (e.g., "operation")
	Resource string

	// ID is the identifier that was not found
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}
