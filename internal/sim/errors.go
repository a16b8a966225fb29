package sim

import (
	"errors"
	"fmt"
)

// FaultError reports a failure raised by the model or tracer while stepping.
// A fault aborts the whole run; no partial results are salvaged.
type FaultError struct {
	// Source is "model" or "tracer".
	Source string

	// Time is the simulated time of the failing step.
	Time Time

	// Err is the collaborator error.
	Err error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%s fault at t=%d: %v", e.Source, e.Time, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}

// IsFault returns true if err is or wraps a FaultError.
func IsFault(err error) bool {
	var fe *FaultError
	return errors.As(err, &fe)
}

// ErrClosed is returned when a closed Clock is used.
var ErrClosed = errors.New("simulation clock is closed")
