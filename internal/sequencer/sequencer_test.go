package sequencer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fjpolo/tlbench/internal/rtl"
	"github.com/fjpolo/tlbench/internal/sim"
	"github.com/fjpolo/tlbench/internal/testutil"
	"github.com/fjpolo/tlbench/internal/verify"
)

type event struct {
	kind string
	id   string
	t    sim.Time
}

type recordingObserver struct {
	events []event
}

func (o *recordingObserver) PhaseStarted(_ int, p *Phase, t sim.Time) {
	o.events = append(o.events, event{"start", p.ID, t})
}

func (o *recordingObserver) InputApplied(p *Phase, _ sim.Vector, t sim.Time) {
	o.events = append(o.events, event{"input", p.ID, t})
}

func (o *recordingObserver) Checked(p *Phase, r verify.CheckResult) {
	o.events = append(o.events, event{"check", p.ID, r.Time})
}

func vec(v sim.Vector) *sim.Vector { return &v }

func passthroughPhases() []Phase {
	return []Phase{
		Reset(10, 0x00),
		Propagate("data[0]", 0xAA, 0xAA),
		Propagate("data[1]", 0x55, 0x55),
		Propagate("data[2]", 0xF0, 0xF0),
		Propagate("data[3]", 0x0F, 0x0F),
		Idle(20),
	}
}

func openClock(t *testing.T, m sim.Model) *sim.Clock {
	t.Helper()
	clk, err := sim.Open(m, sim.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = clk.Close() })
	return clk
}

func TestRun_PassthroughScenario(t *testing.T) {
	seq, err := New(passthroughPhases()...)
	require.NoError(t, err)
	assert.Equal(t, 38, seq.TotalSteps())
	assert.Equal(t, 5, seq.CheckCount())

	clk := openClock(t, rtl.NewRegister(8, 0xFF))
	obs := &recordingObserver{}

	results, err := seq.Run(clk, verify.New(8), obs)
	require.NoError(t, err)

	assert.Equal(t, sim.Time(38), clk.Time())
	require.Len(t, results, 5)
	for _, r := range results {
		assert.True(t, r.Pass, r.String())
	}
	assert.Equal(t, "reset", results[0].PhaseID)
	assert.Equal(t, sim.Time(10), results[0].Time)
	assert.Equal(t, "data[3]", results[4].PhaseID)
	assert.Equal(t, sim.Time(18), results[4].Time)
	assert.True(t, verify.Summarize(results).AllPassed())

	assert.Equal(t, []event{
		{"start", "reset", 0},
		{"check", "reset", 10},
		{"start", "data[0]", 10},
		{"input", "data[0]", 10},
		{"check", "data[0]", 12},
		{"start", "data[1]", 12},
		{"input", "data[1]", 12},
		{"check", "data[1]", 14},
		{"start", "data[2]", 14},
		{"input", "data[2]", 14},
		{"check", "data[2]", 16},
		{"start", "data[3]", 16},
		{"input", "data[3]", 16},
		{"check", "data[3]", 18},
		{"start", "idle", 18},
	}, obs.events)
}

func TestRun_FailedCheckDoesNotHalt(t *testing.T) {
	phases := passthroughPhases()
	phases[2].Expect = vec(0x99)

	seq, err := New(phases...)
	require.NoError(t, err)
	clk := openClock(t, rtl.NewRegister(8, 0))

	results, err := seq.Run(clk, verify.New(8), nil)
	require.NoError(t, err)

	require.Len(t, results, 5, "every phase still runs")
	assert.False(t, results[2].Pass)
	assert.Equal(t, "FAIL data[1]: expected 0x99, observed 0x55", results[2].String())
	assert.True(t, results[3].Pass)
	assert.Equal(t, verify.Summary{Total: 5, Passed: 4, Failed: 1}, verify.Summarize(results))
	assert.Equal(t, sim.Time(38), clk.Time())
}

func TestRun_StuckOutputFailsEveryDataCheck(t *testing.T) {
	seq, err := New(passthroughPhases()...)
	require.NoError(t, err)
	clk := openClock(t, &testutil.StuckModel{Bits: 8})

	results, err := seq.Run(clk, verify.Verifier{}, nil)
	require.NoError(t, err)
	s := verify.Summarize(results)
	assert.Equal(t, 1, s.Passed, "only the reset check sees 0x00")
	assert.Equal(t, 4, s.Failed)
}

func TestRun_ModelFaultAborts(t *testing.T) {
	seq, err := New(passthroughPhases()...)
	require.NoError(t, err)

	m := &testutil.FaultyModel{Model: rtl.NewRegister(8, 0), FailOnEval: 13}
	clk := openClock(t, m)

	results, err := seq.Run(clk, verify.New(8), nil)
	require.Error(t, err)
	assert.Nil(t, results, "no partial results")
	assert.True(t, sim.IsFault(err))
	assert.False(t, IsMisuse(err))
	assert.Contains(t, err.Error(), "phase data[1]: model fault at t=12")
}

func TestRun_TracerReceivesEveryStep(t *testing.T) {
	seq, err := New(passthroughPhases()...)
	require.NoError(t, err)

	tr := &testutil.RecordingTracer{}
	clk, err := sim.Open(rtl.NewRegister(8, 0), sim.Options{Tracer: tr})
	require.NoError(t, err)
	defer clk.Close()

	_, err = seq.Run(clk, verify.New(8), nil)
	require.NoError(t, err)
	require.Len(t, tr.Samples, 38)
	assert.True(t, tr.Samples[0].Sample.Reset)
	assert.True(t, tr.Samples[4].Sample.Reset)
	assert.False(t, tr.Samples[5].Sample.Reset, "deasserted at step 5")
	assert.Equal(t, sim.Vector(0xAA), tr.Samples[10].Sample.Output)
}

func TestRun_FinalTimeEqualsTotalSteps(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		resetSteps := 2 * rapid.IntRange(2, 10).Draw(t, "resetCycles")
		deassert := rapid.IntRange(1, resetSteps-2).Draw(t, "deassert")
		inputs := rapid.SliceOfN(rapid.Uint64Range(0, 0xFF), 0, 8).Draw(t, "inputs")
		idle := rapid.IntRange(1, 50).Draw(t, "idle")

		phases := []Phase{{
			ID: "reset", Kind: KindReset, Steps: resetSteps, DeassertAt: deassert, Expect: vec(0),
		}}
		for i, in := range inputs {
			phases = append(phases, Propagate(fmt.Sprintf("data[%d]", i), sim.Vector(in), sim.Vector(in)))
		}
		phases = append(phases, Idle(idle))

		seq, err := New(phases...)
		if err != nil {
			t.Fatal(err)
		}
		clk, err := sim.Open(rtl.NewRegister(8, 0xFF), sim.Options{})
		if err != nil {
			t.Fatal(err)
		}
		defer clk.Close()

		results, err := seq.Run(clk, verify.New(8), nil)
		if err != nil {
			t.Fatal(err)
		}
		if int(clk.Time()) != seq.TotalSteps() {
			t.Fatalf("final time %d, want %d", clk.Time(), seq.TotalSteps())
		}
		if len(results) != len(inputs)+1 {
			t.Fatalf("got %d results, want %d", len(results), len(inputs)+1)
		}
		for _, r := range results {
			if !r.Pass {
				t.Fatalf("unexpected failure: %s", r)
			}
		}
	})
}

func TestNew_Misuse(t *testing.T) {
	tests := []struct {
		name   string
		phases []Phase
		reason string
	}{
		{
			name:   "empty id",
			phases: []Phase{{Kind: KindIdle, Steps: 1}},
			reason: "phase id is required",
		},
		{
			name:   "duplicate id",
			phases: []Phase{Propagate("a", 1, 1), Propagate("a", 2, 2)},
			reason: "duplicate phase id",
		},
		{
			name:   "reset without steps",
			phases: []Phase{{ID: "reset", Kind: KindReset}},
			reason: "at least one step",
		},
		{
			name:   "deassert outside window",
			phases: []Phase{{ID: "reset", Kind: KindReset, Steps: 4, DeassertAt: 4}},
			reason: "outside window",
		},
		{
			name:   "deassert before first edge",
			phases: []Phase{Propagate("data[0]", 0xAA, 0xAA), {ID: "reset", Kind: KindReset, Steps: 4, DeassertAt: 0, Expect: vec(0)}},
			reason: "deassert step 0 outside window [1, 4)",
		},
		{
			name:   "single step reset",
			phases: []Phase{Reset(1, 0)},
			reason: "deassert step 0 outside window [1, 1)",
		},
		{
			name:   "reset check too early",
			phases: []Phase{{ID: "reset", Kind: KindReset, Steps: 10, DeassertAt: 9, Expect: vec(0)}},
			reason: "full cycle after deassert",
		},
		{
			name:   "reset with input",
			phases: []Phase{{ID: "reset", Kind: KindReset, Steps: 4, DeassertAt: 2, Input: vec(1)}},
			reason: "cannot apply an input",
		},
		{
			name:   "propagate without input",
			phases: []Phase{{ID: "p", Kind: KindPropagate, Expect: vec(1)}},
			reason: "needs an input",
		},
		{
			name:   "propagate without expect",
			phases: []Phase{{ID: "p", Kind: KindPropagate, Input: vec(1)}},
			reason: "needs an expected output",
		},
		{
			name:   "propagate half cycle",
			phases: []Phase{{ID: "p", Kind: KindPropagate, Steps: 1, Input: vec(1), Expect: vec(1)}},
			reason: "positive multiple of 2",
		},
		{
			name:   "propagate mid-cycle",
			phases: []Phase{{ID: "reset", Kind: KindReset, Steps: 5, DeassertAt: 2}, Propagate("p", 1, 1)},
			reason: "mid-cycle at step 5",
		},
		{
			name:   "idle with expect",
			phases: []Phase{{ID: "idle", Kind: KindIdle, Steps: 3, Expect: vec(0)}},
			reason: "cannot apply an input or check",
		},
		{
			name:   "idle without steps",
			phases: []Phase{{ID: "idle", Kind: KindIdle}},
			reason: "at least one step",
		},
		{
			name:   "unknown kind",
			phases: []Phase{{ID: "x", Steps: 2}},
			reason: "unknown phase kind Kind(0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := New(tt.phases...)
			require.Error(t, err)
			assert.Nil(t, seq)
			assert.True(t, IsMisuse(err))
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestNew_NormalizesPropagateSteps(t *testing.T) {
	seq, err := New(Phase{ID: "p", Kind: KindPropagate, Input: vec(1), Expect: vec(1)})
	require.NoError(t, err)
	assert.Equal(t, CycleSteps, seq.Phases()[0].Steps)
	assert.Equal(t, 2, seq.TotalSteps())
}

func TestNew_DoesNotAliasInput(t *testing.T) {
	phases := []Phase{Idle(3)}
	seq, err := New(phases...)
	require.NoError(t, err)

	phases[0].Steps = 100
	assert.Equal(t, 3, seq.TotalSteps())
}

func TestRun_MisuseAtRunTime(t *testing.T) {
	t.Run("not on cycle boundary", func(t *testing.T) {
		seq, err := New(Idle(2))
		require.NoError(t, err)
		clk := openClock(t, rtl.NewWire(8))
		require.NoError(t, clk.Step())

		_, err = seq.Run(clk, verify.New(8), nil)
		require.Error(t, err)
		assert.True(t, IsMisuse(err))
		assert.Contains(t, err.Error(), "cycle boundary")
	})

	t.Run("width mismatch", func(t *testing.T) {
		seq, err := New(Idle(2))
		require.NoError(t, err)
		clk := openClock(t, rtl.NewWire(8))

		_, err = seq.Run(clk, verify.New(4), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "verifier width 4 does not match model width 8")
	})

	t.Run("input wider than port", func(t *testing.T) {
		seq, err := New(Propagate("data[0]", 0x1FF, 0x1FF))
		require.NoError(t, err)
		clk := openClock(t, rtl.NewWire(8))

		_, err = seq.Run(clk, verify.New(8), nil)
		require.Error(t, err)
		assert.True(t, IsMisuse(err))
		assert.Contains(t, err.Error(), "input 0x1ff does not fit in 8 bits")
		assert.Equal(t, sim.Time(0), clk.Time(), "nothing simulated")
	})
}

func TestMisuseError_Format(t *testing.T) {
	assert.Equal(t, "sequencing misuse: phase 2 (data[1]): bad",
		(&MisuseError{Index: 2, PhaseID: "data[1]", Reason: "bad"}).Error())
	assert.Equal(t, "sequencing misuse: phase 0: bad",
		(&MisuseError{Index: 0, Reason: "bad"}).Error())
	assert.Equal(t, "sequencing misuse: bad",
		(&MisuseError{Index: -1, Reason: "bad"}).Error())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "reset", KindReset.String())
	assert.Equal(t, "propagate", KindPropagate.String())
	assert.Equal(t, "idle", KindIdle.String())
}
