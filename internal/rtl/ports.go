package rtl

import (
	"github.com/pkg/errors"

	"github.com/fjpolo/tlbench/internal/sim"
)

// ports holds the pin state shared by every model.
type ports struct {
	name  string
	width int

	clk     bool
	lastClk bool
	driven  bool
	reset   bool
	in      sim.Vector
	out     sim.Vector
	closed  bool
}

func (p *ports) Name() string { return p.name }

func (p *ports) Width() int { return p.width }

func (p *ports) SetClock(level bool) {
	p.clk = level
	p.driven = true
}

func (p *ports) SetReset(asserted bool) { p.reset = asserted }

func (p *ports) SetInput(v sim.Vector) { p.in = v & sim.Mask(p.width) }

func (p *ports) Output() sim.Vector { return p.out }

func (p *ports) Close() error {
	p.closed = true
	return nil
}

// edge checks that the model can be evaluated and reports whether this
// evaluation sees a rising clock edge.
func (p *ports) edge() (bool, error) {
	if p.closed {
		return false, errors.New(p.name + ": eval after close")
	}
	if !p.driven {
		return false, errors.New(p.name + ": clock was never driven")
	}
	rising := p.clk && !p.lastClk
	p.lastClk = p.clk
	return rising, nil
}
