package lifecycle

import (
	"errors"
	"fmt"

	"epusara/internal/booking"
)

// ErrNotFound is returned when the target aggregate does not exist.
var ErrNotFound = errors.New("not found")

// InvalidStateError means the precondition on the current booking or payment
// status was not met. The status checks double as optimistic concurrency
// guards: a concurrent second Approve fails here instead of applying twice.
type InvalidStateError struct {
	Op      string
	Current string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Op, e.Current)
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalidState(op string, current booking.Status) error {
	return &InvalidStateError{Op: op, Current: string(current)}
}
