package rtl

import "github.com/fjpolo/tlbench/internal/sim"

// DefaultCounterLimit is the count at which a Counter wraps when no limit is
// given. Counters too narrow to hold it wrap at their all-ones value.
const DefaultCounterLimit = 25

// Counter is an up counter with an enable and a fixed limit.
//
//	Inputs: clk, reset, in[0] (enable)
//	Outputs: out (count)
//
// On a rising edge with reset deasserted and enable set, the count
// increments; the edge after it reached limit brings it back to 0.
type Counter struct {
	ports
	limit sim.Vector
}

func NewCounter(width int, limit sim.Vector) *Counter {
	return &Counter{
		ports: ports{name: "counter", width: width},
		limit: limit,
	}
}

// Limit returns the wrap value.
func (c *Counter) Limit() sim.Vector { return c.limit }

// Overflow reports whether the count sits at the limit.
func (c *Counter) Overflow() bool { return c.out == c.limit }

func (c *Counter) Eval() error {
	rising, err := c.edge()
	if err != nil {
		return err
	}
	if !rising {
		return nil
	}
	switch {
	case c.reset:
		c.out = 0
	case c.in&1 == 0:
	case c.out == c.limit:
		c.out = 0
	default:
		c.out = (c.out + 1) & sim.Mask(c.width)
	}
	return nil
}
