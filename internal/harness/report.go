package harness

import (
	"fmt"
	"io"

	"github.com/fjpolo/tlbench/internal/sequencer"
	"github.com/fjpolo/tlbench/internal/sim"
	"github.com/fjpolo/tlbench/internal/verify"
)

// Reporter prints one line per sequence event. It implements
// sequencer.Observer.
//
// Write errors are kept and reported by Err; later events are dropped.
type Reporter struct {
	w     io.Writer
	width int
	err   error
}

// NewReporter returns a reporter writing to w. Vectors are printed in hex
// at the given port width.
func NewReporter(w io.Writer, width int) *Reporter {
	if w == nil {
		w = io.Discard
	}
	return &Reporter{w: w, width: width}
}

var _ sequencer.Observer = (*Reporter)(nil)

func (r *Reporter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format+"\n", args...)
}

// PhaseStarted prints reset and idle windows. Propagate phases are reported
// by InputApplied.
func (r *Reporter) PhaseStarted(_ int, p *sequencer.Phase, t sim.Time) {
	switch p.Kind {
	case sequencer.KindReset:
		r.printf("RESET %s: %d steps, deassert at step %d (t=%d)", p.ID, p.Steps, p.DeassertAt, t)
	case sequencer.KindIdle:
		r.printf("IDLE %s: %d steps (t=%d)", p.ID, p.Steps, t)
	}
}

// InputApplied prints the applied input vector.
func (r *Reporter) InputApplied(p *sequencer.Phase, v sim.Vector, t sim.Time) {
	r.printf("INPUT %s: %s (t=%d)", p.ID, v.Hex(r.width), t)
}

// Checked prints the check verdict.
func (r *Reporter) Checked(_ *sequencer.Phase, res verify.CheckResult) {
	r.printf("%s", res.String())
}

// Summary prints the final summary line.
func (r *Reporter) Summary(s verify.Summary, finalTime sim.Time) {
	r.printf("Summary: %d checks, %d passed, %d failed (time %d)", s.Total, s.Passed, s.Failed, finalTime)
}

// Err returns the first write error.
func (r *Reporter) Err() error {
	return r.err
}
