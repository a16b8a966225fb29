package harness

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// LoadError is a scenario loading error with a source position.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Field sets accepted in CUE scenarios; they mirror the YAML tags.
var (
	scenarioFields = fieldSet("name", "description", "model", "width", "params", "reset", "stimulus", "idle")
	resetFields    = fieldSet("steps", "deassert_at", "expect")
	itemFields     = fieldSet("id", "input", "expect", "expect_expr", "cycles")
	idleFields     = fieldSet("steps")
)

func fieldSet(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// parseCUE evaluates a CUE scenario file and decodes it. The value must be
// concrete; CUE's own constraints and references are resolved first, so a
// stimulus item may write `expect: input`.
func parseCUE(path string, data []byte) (*Scenario, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError("cue", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError("cue", err)
	}

	if err := checkFields(v, scenarioFields, ""); err != nil {
		return nil, err
	}
	for _, sub := range []struct {
		path   string
		fields map[string]bool
	}{
		{"reset", resetFields},
		{"idle", idleFields},
	} {
		if fv := v.LookupPath(cue.ParsePath(sub.path)); fv.Exists() {
			if err := checkFields(fv, sub.fields, sub.path); err != nil {
				return nil, err
			}
		}
	}
	if list := v.LookupPath(cue.ParsePath("stimulus")); list.Exists() {
		iter, err := list.List()
		if err != nil {
			return nil, formatCUEError("stimulus", err)
		}
		for i := 0; iter.Next(); i++ {
			if err := checkFields(iter.Value(), itemFields, fmt.Sprintf("stimulus[%d]", i)); err != nil {
				return nil, err
			}
		}
	}

	var scenario Scenario
	if err := v.Decode(&scenario); err != nil {
		return nil, formatCUEError("cue", err)
	}
	return &scenario, nil
}

// checkFields rejects labels outside allowed, like yaml KnownFields does.
func checkFields(v cue.Value, allowed map[string]bool, prefix string) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(prefixed(prefix, "fields"), err)
	}
	for iter.Next() {
		label := iter.Selector().String()
		if !allowed[label] {
			return &LoadError{
				Field:   prefixed(prefix, label),
				Message: "unknown field",
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

func prefixed(prefix, field string) string {
	if prefix == "" {
		return field
	}
	return prefix + "." + field
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(field string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Field: field, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Field: field, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
