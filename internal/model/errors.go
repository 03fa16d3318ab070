package model

import "errors"

// Sentinel errors shared across the store, services and API layers.
// Wrap with fmt.Errorf("...: %w", Err...) and test with errors.Is.
var (
	// ErrNotFound reports an absent entity. Read paths translate it into
	// an empty result; update/toggle on a missing id surface it.
	ErrNotFound = errors.New("not found")

	// ErrConflict reports a duplicate unique key, e.g. a tag name.
	ErrConflict = errors.New("conflict")

	// ErrValidation reports a blank required field or unrecognized enum.
	ErrValidation = errors.New("validation error")
)
