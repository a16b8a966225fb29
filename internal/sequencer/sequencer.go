package sequencer

import (
	"fmt"

	"github.com/fjpolo/tlbench/internal/sim"
	"github.com/fjpolo/tlbench/internal/verify"
)

// Observer receives sequence events as they happen. Implementations must not
// retain the Phase pointers they are given.
type Observer interface {
	PhaseStarted(index int, p *Phase, t sim.Time)
	InputApplied(p *Phase, v sim.Vector, t sim.Time)
	Checked(p *Phase, r verify.CheckResult)
}

type nopObserver struct{}

func (nopObserver) PhaseStarted(int, *Phase, sim.Time) {}

func (nopObserver) InputApplied(*Phase, sim.Vector, sim.Time) {}

func (nopObserver) Checked(*Phase, verify.CheckResult) {}

// Sequencer runs a validated phase list.
type Sequencer struct {
	phases []Phase
}

// New validates phases and returns a Sequencer for them. Zero Steps on a
// propagate phase is normalized to one full cycle.
func New(phases ...Phase) (*Sequencer, error) {
	out := make([]Phase, len(phases))
	copy(out, phases)

	seen := make(map[string]int, len(out))
	elapsed := 0
	for i := range out {
		p := &out[i]
		if p.ID == "" {
			return nil, misuse(i, "", "phase id is required")
		}
		if prev, ok := seen[p.ID]; ok {
			return nil, misuse(i, p.ID, "duplicate phase id (first used by phase %d)", prev)
		}
		seen[p.ID] = i

		if err := validatePhase(i, p, elapsed); err != nil {
			return nil, err
		}
		elapsed += p.Steps
	}
	return &Sequencer{phases: out}, nil
}

func validatePhase(i int, p *Phase, elapsed int) error {
	switch p.Kind {
	case KindReset:
		if p.Steps <= 0 {
			return misuse(i, p.ID, "reset window needs at least one step, got %d", p.Steps)
		}
		if p.DeassertAt < 1 || p.DeassertAt >= p.Steps {
			return misuse(i, p.ID, "deassert step %d outside window [1, %d)", p.DeassertAt, p.Steps)
		}
		if p.Input != nil {
			return misuse(i, p.ID, "reset phase cannot apply an input")
		}
		if p.Expect != nil && p.Steps-p.DeassertAt < CycleSteps {
			return misuse(i, p.ID, "reset check needs a full cycle after deassert at step %d, window has %d steps", p.DeassertAt, p.Steps)
		}

	case KindPropagate:
		if p.Input == nil {
			return misuse(i, p.ID, "propagate phase needs an input")
		}
		if p.Expect == nil {
			return misuse(i, p.ID, "propagate phase needs an expected output")
		}
		if p.Steps == 0 {
			p.Steps = CycleSteps
		}
		if p.Steps < 0 || p.Steps%CycleSteps != 0 {
			return misuse(i, p.ID, "propagate steps must be a positive multiple of %d, got %d", CycleSteps, p.Steps)
		}
		if elapsed%CycleSteps != 0 {
			return misuse(i, p.ID, "input would be applied mid-cycle at step %d", elapsed)
		}

	case KindIdle:
		if p.Steps <= 0 {
			return misuse(i, p.ID, "idle window needs at least one step, got %d", p.Steps)
		}
		if p.Input != nil || p.Expect != nil {
			return misuse(i, p.ID, "idle phase cannot apply an input or check an output")
		}

	default:
		return misuse(i, p.ID, "unknown phase kind %s", p.Kind)
	}
	return nil
}

// Phases returns a copy of the normalized phase list.
func (s *Sequencer) Phases() []Phase {
	out := make([]Phase, len(s.phases))
	copy(out, s.phases)
	return out
}

// TotalSteps returns the number of steps a run issues, which is the final
// simulated time when the run starts at zero.
func (s *Sequencer) TotalSteps() int {
	n := 0
	for _, p := range s.phases {
		n += p.Steps
	}
	return n
}

// CheckCount returns the number of check results a successful run yields.
func (s *Sequencer) CheckCount() int {
	n := 0
	for _, p := range s.phases {
		if p.Checks() {
			n++
		}
	}
	return n
}

// CheckWidth verifies that every input and expected value fits in a port of
// the given width.
func (s *Sequencer) CheckWidth(width int) error {
	for i, p := range s.phases {
		if p.Input != nil && !p.Input.Fits(width) {
			return misuse(i, p.ID, "input %#x does not fit in %d bits", uint64(*p.Input), width)
		}
		if p.Expect != nil && !p.Expect.Fits(width) {
			return misuse(i, p.ID, "expected value %#x does not fit in %d bits", uint64(*p.Expect), width)
		}
	}
	return nil
}

// Run drives clk through every phase in order. A zero-width verifier takes
// the clock's width. Observer may be nil.
//
// Check failures are recorded and the sequence continues. A fault from the
// clock aborts the run; the returned results are nil in that case.
func (s *Sequencer) Run(clk *sim.Clock, v verify.Verifier, obs Observer) ([]verify.CheckResult, error) {
	if obs == nil {
		obs = nopObserver{}
	}
	if v.Width == 0 {
		v.Width = clk.Width()
	}
	if v.Width != clk.Width() {
		return nil, misuse(-1, "", "verifier width %d does not match model width %d", v.Width, clk.Width())
	}
	if !clk.AtCycleBoundary() {
		return nil, misuse(-1, "", "run must start on a cycle boundary")
	}
	if err := s.CheckWidth(clk.Width()); err != nil {
		return nil, err
	}

	results := make([]verify.CheckResult, 0, s.CheckCount())
	for i := range s.phases {
		p := &s.phases[i]
		obs.PhaseStarted(i, p, clk.Time())

		if err := s.runPhase(clk, p, obs); err != nil {
			return nil, fmt.Errorf("phase %s: %w", p.ID, err)
		}

		if !p.Checks() {
			continue
		}
		if !clk.Settled() {
			return nil, misuse(i, p.ID, "check at t=%d before the output settled", clk.Time())
		}
		r := v.CheckAt(p.ID, *p.Expect, clk.ReadOutput(), clk.Time())
		results = append(results, r)
		obs.Checked(p, r)
	}
	return results, nil
}

func (s *Sequencer) runPhase(clk *sim.Clock, p *Phase, obs Observer) error {
	switch p.Kind {
	case KindReset:
		for i := 0; i < p.Steps; i++ {
			clk.SetReset(i < p.DeassertAt)
			if err := clk.Step(); err != nil {
				return err
			}
		}

	case KindPropagate:
		clk.SetInput(*p.Input)
		obs.InputApplied(p, clk.Input(), clk.Time())
		for i := 0; i < p.Steps; i++ {
			if err := clk.Step(); err != nil {
				return err
			}
		}

	case KindIdle:
		for i := 0; i < p.Steps; i++ {
			if err := clk.Step(); err != nil {
				return err
			}
		}
	}
	return nil
}
