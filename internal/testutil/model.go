package testutil

import (
	"errors"

	"github.com/fjpolo/tlbench/internal/sim"
)

// ErrInjectedFault is returned by FaultyModel.Eval at the configured call.
var ErrInjectedFault = errors.New("testutil: injected evaluation fault")

// FaultyModel wraps a sim.Model and fails the Nth call to Eval (1-based).
// FailOnEval == 0 never fails.
type FaultyModel struct {
	sim.Model

	FailOnEval int
	Evals      int
	Closed     bool
}

// Eval forwards to the wrapped model unless this call is the injected fault.
func (m *FaultyModel) Eval() error {
	m.Evals++
	if m.FailOnEval > 0 && m.Evals == m.FailOnEval {
		return ErrInjectedFault
	}
	return m.Model.Eval()
}

// Close records the release and forwards it.
func (m *FaultyModel) Close() error {
	m.Closed = true
	return m.Model.Close()
}

// StuckModel is a model whose output never changes. It is the simplest way
// to produce check mismatches.
type StuckModel struct {
	Value  sim.Vector
	Bits   int
	Closed bool
}

func (m *StuckModel) Name() string { return "stuck" }

func (m *StuckModel) Width() int { return m.Bits }

func (m *StuckModel) SetClock(bool) {}

func (m *StuckModel) SetReset(bool) {}

func (m *StuckModel) SetInput(sim.Vector) {}

func (m *StuckModel) Eval() error { return nil }

func (m *StuckModel) Output() sim.Vector { return m.Value }

func (m *StuckModel) Close() error {
	m.Closed = true
	return nil
}
