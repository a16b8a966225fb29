package rtl

import "github.com/fjpolo/tlbench/internal/sim"

// Register is an edge-triggered D register.
//
//	Inputs: clk, reset, in
//	Outputs: out
//	Function: out(t) = reset(t-1) ? 0 : in(t-1)
type Register struct {
	ports
}

// NewRegister returns a register whose output starts at init. The initial
// value models an unknown power-on state; reset clears it.
func NewRegister(width int, init sim.Vector) *Register {
	r := &Register{ports: ports{name: "register", width: width}}
	r.out = init & sim.Mask(width)
	return r
}

func (r *Register) Eval() error {
	rising, err := r.edge()
	if err != nil {
		return err
	}
	if rising {
		if r.reset {
			r.out = 0
		} else {
			r.out = r.in
		}
	}
	return nil
}
