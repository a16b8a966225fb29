package sim

import (
	"errors"
	"fmt"
)

// settleSteps is the number of steps after an input change before the
// output is guaranteed to reflect it: one full clock cycle.
const settleSteps = 2

// Options configures a simulation session.
type Options struct {
	// Tracer records port values on every step. Nil disables tracing and
	// every trace call is skipped.
	Tracer Tracer

	// TracePath is passed to Tracer.Open.
	TracePath string
}

// Clock is a simulation session: the simulated time counter, the clock
// signal, and exclusive ownership of the model and optional tracer.
//
// Clock is not safe for concurrent use. Steps are strictly ordered: step N+1
// is never issued before step N's evaluation returns.
type Clock struct {
	model  Model
	tracer Tracer
	width  int

	time   Time
	signal bool
	reset  bool
	input  Vector

	// steps issued since the last input or reset change
	sinceChange int
	closed      bool
}

// Open starts a session for model. Ownership of model transfers to the
// Clock, even when Open fails: the model is closed before the error is
// returned.
func Open(model Model, opts Options) (*Clock, error) {
	if model == nil {
		return nil, errors.New("sim: nil model")
	}
	width := model.Width()
	if width < 1 || width > MaxWidth {
		closeErr := model.Close()
		return nil, errors.Join(fmt.Errorf("sim: model %s has invalid width %d", model.Name(), width), closeErr)
	}

	if opts.Tracer != nil {
		if err := opts.Tracer.Open(opts.TracePath); err != nil {
			closeErr := model.Close()
			return nil, errors.Join(fmt.Errorf("sim: open trace %q: %w", opts.TracePath, err), closeErr)
		}
	}

	model.SetClock(false)
	model.SetReset(false)
	model.SetInput(0)

	return &Clock{
		model:  model,
		tracer: opts.Tracer,
		width:  width,
	}, nil
}

// Step toggles the clock, evaluates the model, captures a trace sample if
// tracing is enabled, then advances simulated time by one.
// Failures of the model or tracer are returned as *FaultError.
func (c *Clock) Step() error {
	if c.closed {
		return ErrClosed
	}

	c.signal = !c.signal
	c.model.SetClock(c.signal)
	if err := c.model.Eval(); err != nil {
		return &FaultError{Source: "model", Time: c.time, Err: err}
	}

	if c.tracer != nil {
		s := Sample{
			Clock:  c.signal,
			Reset:  c.reset,
			Input:  c.input,
			Output: c.ReadOutput(),
		}
		if err := c.tracer.Capture(c.time, s); err != nil {
			return &FaultError{Source: "tracer", Time: c.time, Err: err}
		}
	}

	c.time++
	if c.sinceChange < settleSteps {
		c.sinceChange++
	}
	return nil
}

// Cycle issues one full clock cycle (two steps).
func (c *Clock) Cycle() error {
	for i := 0; i < settleSteps; i++ {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// SetInput assigns v to the model input port without advancing time.
// Bits above the model width are dropped.
func (c *Clock) SetInput(v Vector) {
	c.input = v & Mask(c.width)
	c.model.SetInput(c.input)
	c.sinceChange = 0
}

// SetReset drives the reset-assert port. Changing the level unsettles the
// output like an input change does.
func (c *Clock) SetReset(asserted bool) {
	if asserted != c.reset {
		c.sinceChange = 0
	}
	c.reset = asserted
	c.model.SetReset(asserted)
}

// ReadOutput returns the model's current output port value.
func (c *Clock) ReadOutput() Vector {
	return c.model.Output() & Mask(c.width)
}

// Settled reports whether a full clock cycle elapsed since the last input or
// reset change.
func (c *Clock) Settled() bool {
	return c.sinceChange >= settleSteps
}

// Time returns the current simulated time.
func (c *Clock) Time() Time {
	return c.time
}

// Signal returns the current clock signal level.
func (c *Clock) Signal() bool {
	return c.signal
}

// AtCycleBoundary reports whether the clock is low, i.e. the next Step is a
// rising edge.
func (c *Clock) AtCycleBoundary() bool {
	return !c.signal
}

// Reset returns the current reset-assert level.
func (c *Clock) Reset() bool {
	return c.reset
}

// Input returns the value currently driven on the input port.
func (c *Clock) Input() Vector {
	return c.input
}

// Width returns the port width of the owned model.
func (c *Clock) Width() int {
	return c.width
}

// ModelName returns the name of the owned model.
func (c *Clock) ModelName() string {
	return c.model.Name()
}

// Tracing reports whether a tracer is attached.
func (c *Clock) Tracing() bool {
	return c.tracer != nil
}

// Close releases the tracer and the model. It is safe to call more than
// once; only the first call releases anything.
func (c *Clock) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	if c.tracer != nil {
		if err := c.tracer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close tracer: %w", err))
		}
	}
	if err := c.model.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close model: %w", err))
	}
	return errors.Join(errs...)
}
