package sequencer

import (
	"errors"
	"fmt"
)

// MisuseError reports a phase list or run that violates the sequencing
// rules: a check that could observe an unsettled output, an input applied
// mid-cycle, a malformed phase.
type MisuseError struct {
	// Index is the position of the offending phase, or -1 when the problem
	// is not tied to one phase.
	Index int

	PhaseID string
	Reason  string
}

func (e *MisuseError) Error() string {
	if e.Index < 0 {
		return "sequencing misuse: " + e.Reason
	}
	if e.PhaseID == "" {
		return fmt.Sprintf("sequencing misuse: phase %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("sequencing misuse: phase %d (%s): %s", e.Index, e.PhaseID, e.Reason)
}

// IsMisuse returns true if err is or wraps a MisuseError.
func IsMisuse(err error) bool {
	var me *MisuseError
	return errors.As(err, &me)
}

func misuse(index int, id, format string, args ...any) *MisuseError {
	return &MisuseError{Index: index, PhaseID: id, Reason: fmt.Sprintf(format, args...)}
}
