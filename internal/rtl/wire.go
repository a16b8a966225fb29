package rtl

// Wire is a combinational pass-through. It follows its input on every
// evaluation regardless of the clock.
type Wire struct {
	ports
}

func NewWire(width int) *Wire {
	return &Wire{ports: ports{name: "wire", width: width}}
}

func (w *Wire) Eval() error {
	if _, err := w.edge(); err != nil {
		return err
	}
	if w.reset {
		w.out = 0
	} else {
		w.out = w.in
	}
	return nil
}
