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

// Package errors defines the typed error taxonomy shared across Cascade:
// reference resolution failures, step validation failures, operation failures,
// and unattributable pipeline failures.
package errors

import (
	"errors"
	"fmt"
)

// Wrap creates a new error that wraps the given error with additional context.
// If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf creates a new error that wraps the given error with formatted context.
// If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// AsReference reports whether err is (or wraps) a ReferenceError and returns it.
func AsReference(err error) (*ReferenceError, bool) {
	var refErr *ReferenceError
	if errors.As(err, &refErr) {
		return refErr, true
	}
	return nil, false
}

// IsReference reports whether err is (or wraps) a ReferenceError.
func IsReference(err error) bool {
	_, ok := AsReference(err)
	return ok
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// IsOperation reports whether err is (or wraps) an OperationError.
func IsOperation(err error) bool {
	var opErr *OperationError
	return errors.As(err, &opErr)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
}
