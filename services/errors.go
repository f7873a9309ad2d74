package services

import "errors"

// Error taxonomy shared by all services. Controllers translate these to
// HTTP statuses; nothing here is fatal to the process.
var (
	// ErrValidation covers malformed input: self-follow, empty crew name,
	// mismatched disband confirmation.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden means the actor's role is insufficient for the
	// requested transition. No state is mutated.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means a record the operation requires does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict covers duplicate pending join requests and the
	// single-approved-crew invariant.
	ErrConflict = errors.New("conflict")
)
