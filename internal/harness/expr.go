package harness

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/fjpolo/tlbench/internal/sim"
)

// maxExprSteps bounds expression evaluation so a scenario cannot hang the
// loader.
const maxExprSteps = 10000

// ExprError reports an expect_expr that failed to evaluate.
type ExprError struct {
	Item int
	Expr string
	Err  error
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("stimulus[%d]: expect_expr %q: %v", e.Item, e.Expr, e.Err)
}

func (e *ExprError) Unwrap() error {
	return e.Err
}

// evalExpect evaluates a Starlark expression to an expected output. data is
// the stimulus input and mask the port mask; the result must be a
// non-negative int that fits the port.
func evalExpect(expr string, data sim.Vector, width int) (sim.Vector, error) {
	thread := starlark.Thread{Name: "expect_expr"}
	thread.SetMaxExecutionSteps(maxExprSteps)

	opts := syntax.FileOptions{}
	pred := starlark.StringDict{
		"data":  starlark.MakeUint64(uint64(data)),
		"mask":  starlark.MakeUint64(uint64(sim.Mask(width))),
		"width": starlark.MakeInt(width),
	}

	prog := "rc = " + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expect_expr", prog, pred)
	if err != nil {
		return 0, err
	}

	rc, ok := dict["rc"]
	if !ok {
		return 0, fmt.Errorf("expression produced no value")
	}
	n, ok := rc.(starlark.Int)
	if !ok {
		return 0, fmt.Errorf("expression yields %s, want int", rc.Type())
	}
	u, ok := n.Uint64()
	if !ok {
		return 0, fmt.Errorf("expression yields %s, want a non-negative 64-bit value", n)
	}
	v := sim.Vector(u)
	if !v.Fits(width) {
		return 0, fmt.Errorf("expression yields %s, which does not fit in %d bits", v.Hex(width), width)
	}
	return v, nil
}
