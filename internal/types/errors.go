package types

import "errors"

// Sentinel errors shared by every layer. Services wrap them with
// fmt.Errorf("...: %w", ErrX) and handlers map them to status codes.
var (
	ErrValidation             = errors.New("validation failed")
	ErrNotFound               = errors.New("not found")
	ErrProviderFailure        = errors.New("external provider failure")
	ErrParseFailure           = errors.New("failed to parse provider response")
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	ErrConflict               = errors.New("conflicting update")
	ErrUnauthenticated        = errors.New("unauthenticated")
)

// ValidationError carries the individual field problems found while
// validating user input. It unwraps to ErrValidation.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrValidation.Error()
	}
	msg := ErrValidation.Error() + ": " + e.Problems[0]
	for _, p := range e.Problems[1:] {
		msg += "; " + p
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
