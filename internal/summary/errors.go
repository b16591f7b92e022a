// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summary

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every request validation failure. Callers
// test for it with errors.Is.
var ErrValidation = errors.New("invalid generation request")

// Validation failures, in the order they are checked.
var (
	ErrEmptySelection        = fmt.Errorf("%w: at least one publication must be selected", ErrValidation)
	ErrMissingResearcher     = fmt.Errorf("%w: no researcher selected", ErrValidation)
	ErrInconsistentHighlight = fmt.Errorf("%w: highlight has no supporting records", ErrValidation)
	ErrInvalidOption         = fmt.Errorf("%w: unknown option value", ErrValidation)
)

// ProviderError reports a failed call to the generation backend. No record
// is created when it occurs.
type ProviderError struct {
	Model string
	Err   error
}

func (e *ProviderError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("generating summary: %v", e.Err)
	}
	return fmt.Sprintf("generating summary with %s: %v", e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// PersistenceError reports that a generated record could not be written to
// the durable log. The generation itself succeeded.
type PersistenceError struct {
	RecordID string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting generation %s: %v", e.RecordID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
