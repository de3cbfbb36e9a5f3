package shared

import "errors"

// Cross-module error categories. Domain packages wrap these so transport
// code can map any module's error to a status without importing it.
var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate indicates a uniqueness violation.
	ErrDuplicate = errors.New("duplicate")
	// ErrConflict indicates a state transition the current state forbids.
	ErrConflict = errors.New("conflict")
)
