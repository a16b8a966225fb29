package harness

import (
	"fmt"

	"github.com/fjpolo/tlbench/internal/ir"
	"github.com/fjpolo/tlbench/internal/rtl"
	"github.com/fjpolo/tlbench/internal/sequencer"
	"github.com/fjpolo/tlbench/internal/sim"
)

// Plan is a scenario resolved against its model: the effective port width,
// the validated phase list and the scenario fingerprint.
type Plan struct {
	Scenario  *Scenario
	Width     int
	Sequencer *sequencer.Sequencer

	// Hash is the content hash of the resolved scenario.
	Hash string

	// Canonical is the canonical JSON of the resolved scenario.
	Canonical []byte
}

// BuildPlan resolves the model width, evaluates expect_expr items and builds
// the phase list: reset window, one propagate phase per stimulus item, then
// the idle window.
//
// Scenarios built in code are validated here as well, so a scenario that did
// not come through LoadScenario is rejected instead of reaching the sequencer.
func BuildPlan(s *Scenario) (*Plan, error) {
	if s == nil {
		return nil, fmt.Errorf("invalid scenario: nil")
	}
	if err := validateScenario(s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	spec, ok := rtl.Lookup(s.Model)
	if !ok {
		return nil, fmt.Errorf("model: unknown model %q", s.Model)
	}
	width := s.Width
	if width == 0 {
		width = spec.DefaultWidth
	}

	phases, expects, err := buildPhases(s, width)
	if err != nil {
		return nil, err
	}

	seq, err := sequencer.New(phases...)
	if err != nil {
		return nil, err
	}
	if err := seq.CheckWidth(width); err != nil {
		return nil, err
	}

	obj := canonicalScenario(s, width, expects)
	canonical, err := ir.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("canonicalize scenario: %w", err)
	}
	hash, err := ir.ScenarioHash(obj)
	if err != nil {
		return nil, fmt.Errorf("hash scenario: %w", err)
	}

	return &Plan{
		Scenario:  s,
		Width:     width,
		Sequencer: seq,
		Hash:      hash,
		Canonical: canonical,
	}, nil
}

func buildPhases(s *Scenario, width int) ([]sequencer.Phase, []sim.Vector, error) {
	phases := make([]sequencer.Phase, 0, len(s.Stimulus)+2)

	reset := sequencer.Phase{
		ID:         "reset",
		Kind:       sequencer.KindReset,
		Steps:      s.Reset.Steps,
		DeassertAt: s.Reset.Steps / 2,
	}
	if s.Reset.DeassertAt != nil {
		reset.DeassertAt = *s.Reset.DeassertAt
	}
	if s.Reset.Expect != nil {
		v := s.Reset.Expect.Vector()
		reset.Expect = &v
	}
	phases = append(phases, reset)

	expects := make([]sim.Vector, len(s.Stimulus))
	for i, item := range s.Stimulus {
		in := item.Input.Vector()
		var want sim.Vector
		if item.ExpectExpr != "" {
			v, err := evalExpect(item.ExpectExpr, in, width)
			if err != nil {
				return nil, nil, &ExprError{Item: i, Expr: item.ExpectExpr, Err: err}
			}
			want = v
		} else {
			want = item.Expect.Vector()
		}
		expects[i] = want

		cycles := item.Cycles
		if cycles == 0 {
			cycles = 1
		}
		phases = append(phases, sequencer.Phase{
			ID:     s.ItemID(i),
			Kind:   sequencer.KindPropagate,
			Steps:  cycles * sequencer.CycleSteps,
			Input:  &in,
			Expect: &want,
		})
	}

	if s.Idle != nil {
		phases = append(phases, sequencer.Idle(s.Idle.Steps))
	}
	return phases, expects, nil
}

// canonicalScenario is the fingerprinted form of a scenario: defaults
// applied and expressions replaced by their values.
func canonicalScenario(s *Scenario, width int, expects []sim.Vector) ir.Object {
	params := ir.Object{}
	for k, v := range s.Params {
		params[k] = ir.Int(v)
	}

	reset := ir.Object{
		"steps":       ir.Int(int64(s.Reset.Steps)),
		"deassert_at": ir.Int(int64(s.Reset.Steps / 2)),
	}
	if s.Reset.DeassertAt != nil {
		reset["deassert_at"] = ir.Int(int64(*s.Reset.DeassertAt))
	}
	if s.Reset.Expect != nil {
		reset["expect"] = ir.String(s.Reset.Expect.Vector().Hex(width))
	}

	stimulus := make(ir.Array, len(s.Stimulus))
	for i, item := range s.Stimulus {
		cycles := item.Cycles
		if cycles == 0 {
			cycles = 1
		}
		stimulus[i] = ir.Object{
			"id":     ir.String(s.ItemID(i)),
			"input":  ir.String(item.Input.Vector().Hex(width)),
			"expect": ir.String(expects[i].Hex(width)),
			"cycles": ir.Int(int64(cycles)),
		}
	}

	obj := ir.Object{
		"name":     ir.String(s.Name),
		"model":    ir.String(s.Model),
		"width":    ir.Int(int64(width)),
		"params":   params,
		"reset":    reset,
		"stimulus": stimulus,
	}
	if s.Idle != nil {
		obj["idle"] = ir.Object{"steps": ir.Int(int64(s.Idle.Steps))}
	}
	return obj
}
