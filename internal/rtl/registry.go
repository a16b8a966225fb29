package rtl

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/fjpolo/tlbench/internal/sim"
)

// Params carries model parameters by name.
type Params map[string]int64

// Factory builds a model of the given width. Params are already checked
// against Spec.Params.
type Factory func(width int, params Params) (sim.Model, error)

// Spec describes a registered model.
type Spec struct {
	Name         string
	Description  string
	DefaultWidth int

	// Params lists the parameter names the model accepts.
	Params []string

	New Factory
}

var specs = map[string]Spec{
	"register": {
		Name:         "register",
		Description:  "edge-triggered D register, cleared by reset",
		DefaultWidth: 8,
		Params:       []string{"init"},
		New: func(width int, params Params) (sim.Model, error) {
			init, err := vectorParam(params, "init", 0, width)
			if err != nil {
				return nil, err
			}
			return NewRegister(width, init), nil
		},
	},
	"wire": {
		Name:         "wire",
		Description:  "combinational pass-through, forced low by reset",
		DefaultWidth: 8,
		New: func(width int, _ Params) (sim.Model, error) {
			return NewWire(width), nil
		},
	},
	"counter": {
		Name:         "counter",
		Description:  "up counter, bit 0 of input enables, wraps after limit",
		DefaultWidth: 16,
		Params:       []string{"limit"},
		New: func(width int, params Params) (sim.Model, error) {
			limit, err := vectorParam(params, "limit", int64(defaultCounterLimit(width)), width)
			if err != nil {
				return nil, err
			}
			return NewCounter(width, limit), nil
		},
	},
}

// Lookup returns the spec registered under name.
func Lookup(name string) (Spec, bool) {
	s, ok := specs[name]
	return s, ok
}

// Names returns the registered model names in sorted order.
func Names() []string {
	names := make([]string, 0, len(specs))
	for n := range specs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Specs returns every registered spec sorted by name.
func Specs() []Spec {
	names := Names()
	out := make([]Spec, len(names))
	for i, n := range names {
		out[i] = specs[n]
	}
	return out
}

// New creates the model registered under name. A zero width selects the
// model's default width.
func New(name string, width int, params Params) (sim.Model, error) {
	spec, ok := specs[name]
	if !ok {
		return nil, errors.Errorf("unknown model %q (available: %v)", name, Names())
	}
	if width == 0 {
		width = spec.DefaultWidth
	}
	if width < 1 || width > sim.MaxWidth {
		return nil, errors.Errorf("%s: width %d out of range 1..%d", name, width, sim.MaxWidth)
	}
	for k := range params {
		if !contains(spec.Params, k) {
			return nil, errors.Errorf("%s: unknown parameter %q", name, k)
		}
	}
	m, err := spec.New(width, params)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	return m, nil
}

// defaultCounterLimit is DefaultCounterLimit clamped to the largest count
// width bits can hold.
func defaultCounterLimit(width int) sim.Vector {
	return min(sim.Vector(DefaultCounterLimit), sim.Mask(width))
}

func vectorParam(params Params, key string, def int64, width int) (sim.Vector, error) {
	v, ok := params[key]
	if !ok {
		v = def
	}
	if v < 0 {
		return 0, errors.Errorf("parameter %s must not be negative, got %d", key, v)
	}
	if !sim.Vector(v).Fits(width) {
		return 0, errors.Errorf("parameter %s=%d does not fit in %d bits", key, v, width)
	}
	return sim.Vector(v), nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
