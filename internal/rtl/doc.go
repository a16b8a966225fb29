// Package rtl provides behavioural hardware models that implement sim.Model.
//
// Each model exposes a clock, an active-high reset-assert port, one input
// vector and one output vector of a fixed width. Sequential models latch on
// the rising edge of the clock: the Eval that observes the clock going from
// low to high.
//
// Models are created by name through the registry:
//
//	m, err := rtl.New("register", 8, nil)
//
// The registered models are:
//
//   - register: D register. out = 0 while reset is asserted, else in.
//   - wire: combinational pass-through. out = in, forced to 0 by reset.
//   - counter: enable counter. Bit 0 of in enables counting; the count wraps
//     to 0 on the edge after it reached the "limit" parameter.
package rtl
