package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrSubmitInFlight is returned when a prediction is already pending for the window.
	ErrSubmitInFlight = errors.New("prediction already in progress")
	// ErrWindowNotOpen is returned when an action targets a stage without a live window.
	ErrWindowNotOpen = errors.New("window is not open")
	// ErrWindowClosed is returned when a window closed while its prediction was pending.
	ErrWindowClosed = errors.New("window closed before the prediction arrived")
	// ErrClosed is returned once the orchestrator has stopped.
	ErrClosed = errors.New("wizard session closed")
)

// ValidationError is a rejected field. Field is the key to focus, Label is shown to the user.
type ValidationError struct {
	Field   string
	Label   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalidNumber(f Field) *ValidationError {
	return &ValidationError{
		Field:   f.Key,
		Label:   f.Label,
		Message: fmt.Sprintf("Please enter a valid number for %s!", f.Label),
	}
}

func invalidField(f Field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   f.Key,
		Label:   f.Label,
		Message: fmt.Sprintf("%s %s", f.Label, fmt.Sprintf(format, args...)),
	}
}

// MissingDataError is a payload that lacks something the receiving window needs.
type MissingDataError struct {
	What string
}

func (e *MissingDataError) Error() string { return "missing data: " + e.What }
