package sequencer

import (
	"fmt"

	"github.com/fjpolo/tlbench/internal/sim"
)

// Kind identifies what a phase does.
type Kind int

const (
	KindReset Kind = iota + 1
	KindPropagate
	KindIdle
)

func (k Kind) String() string {
	switch k {
	case KindReset:
		return "reset"
	case KindPropagate:
		return "propagate"
	case KindIdle:
		return "idle"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// CycleSteps is the number of steps in one full clock cycle.
const CycleSteps = 2

// Phase is one entry of the sequence.
type Phase struct {
	ID   string
	Kind Kind

	// Steps is the number of clock steps the phase issues. Zero selects one
	// full cycle for a propagate phase.
	Steps int

	// DeassertAt is the step index at which reset is released. Reset only.
	DeassertAt int

	// Input is applied before the first step. Propagate only.
	Input *sim.Vector

	// Expect is compared with the output after the last step. Nil skips the
	// check.
	Expect *sim.Vector
}

// Reset returns a reset phase with ID "reset" that releases reset halfway
// through the window and checks expect afterwards.
func Reset(steps int, expect sim.Vector) Phase {
	return Phase{
		ID:         "reset",
		Kind:       KindReset,
		Steps:      steps,
		DeassertAt: steps / 2,
		Expect:     &expect,
	}
}

// Propagate returns a one-cycle propagate phase.
func Propagate(id string, input, expect sim.Vector) Phase {
	return Phase{
		ID:     id,
		Kind:   KindPropagate,
		Steps:  CycleSteps,
		Input:  &input,
		Expect: &expect,
	}
}

// Idle returns an idle phase with ID "idle".
func Idle(steps int) Phase {
	return Phase{ID: "idle", Kind: KindIdle, Steps: steps}
}

// Checks reports whether the phase produces a check result.
func (p Phase) Checks() bool {
	return p.Kind != KindIdle && p.Expect != nil
}
