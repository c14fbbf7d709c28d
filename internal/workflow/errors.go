package workflow

import (
	"errors"

	"github.com/desertthunder/propdesk/internal/shared"
)

// ValidationError rejects user input before any state transition.
//
// Message is the user-facing alert text.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return shared.ErrInvalidInput }

// FailureError is a settled attempt's failure.
//
// Reason is shown to the user; the wrapped error carries the diagnostic detail.
type FailureError struct {
	Reason string
	Err    error
}

func (e *FailureError) Error() string { return e.Reason }
func (e *FailureError) Unwrap() error { return e.Err }

// AlertText returns the text a UI should surface in a blocking alert for err, or "" if err warrants none.
func AlertText(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var ferr *FailureError
	if errors.As(err, &ferr) {
		return "Failed: " + ferr.Reason
	}
	return ""
}
