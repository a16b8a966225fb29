package sim

import (
	"fmt"
	"strconv"
	"strings"
)

// Time is the simulated time counter. One unit per Step.
type Time uint64

// MaxWidth is the widest port a model may declare.
const MaxWidth = 64

// Vector is the value of a model port. Only the low Width() bits of the
// owning model are significant.
type Vector uint64

// Mask returns the bit mask for a port of the given width.
func Mask(width int) Vector {
	if width >= MaxWidth {
		return ^Vector(0)
	}
	return Vector(1)<<uint(width) - 1
}

// Fits reports whether v is representable in width bits.
func (v Vector) Fits(width int) bool {
	return v&^Mask(width) == 0
}

// Hex renders v as 0x-prefixed hexadecimal padded to the digit count of
// width: Vector(0xA).Hex(8) == "0x0A".
func (v Vector) Hex(width int) string {
	digits := (width + 3) / 4
	if digits < 1 {
		digits = 1
	}
	return fmt.Sprintf("0x%0*X", digits, uint64(v))
}

// ParseVector parses a decimal, 0x hex, 0o octal or 0b binary literal.
// Underscores are accepted as digit separators.
func ParseVector(s string) (Vector, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid vector %q: %w", s, err)
	}
	return Vector(n), nil
}

// Model is the model under test. Implementations evaluate their internal
// combinational and sequential state for the current port values on Eval,
// following their own timing contract (edge- or level-sensitive).
//
// Models are not safe for concurrent use; a Clock is their only caller.
type Model interface {
	// Name identifies the model in reports and stored runs.
	Name() string

	// Width is the bit width of the input and output ports.
	Width() int

	// SetClock drives the clock port.
	SetClock(high bool)

	// SetReset drives the reset-assert port.
	SetReset(asserted bool)

	// SetInput drives the input port.
	SetInput(v Vector)

	// Eval advances the model for the current port values.
	Eval() error

	// Output returns the output port value.
	Output() Vector

	// Close releases model resources. Eval after Close is an error.
	Close() error
}

// Sample is the port state captured by a Tracer at one point in time.
type Sample struct {
	Clock  bool   `json:"clk"`
	Reset  bool   `json:"reset"`
	Input  Vector `json:"input"`
	Output Vector `json:"output"`
}

// Tracer records a history of port values over simulated time.
type Tracer interface {
	// Open prepares the trace destination at path.
	Open(path string) error

	// Capture records the sample observed at time t.
	Capture(t Time, s Sample) error

	// Close flushes and releases the trace destination.
	Close() error
}
