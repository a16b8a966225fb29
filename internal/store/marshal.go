package store

import (
	"fmt"

	"github.com/fjpolo/tlbench/internal/ir"
	"github.com/fjpolo/tlbench/internal/sim"
	"github.com/fjpolo/tlbench/internal/verify"
)

// SQLite integers are signed 64-bit; vectors are stored as their bit pattern.
func vectorToInt(v sim.Vector) int64 {
	return int64(v)
}

func intToVector(n int64) sim.Vector {
	return sim.Vector(n)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// checksValue converts check results to an IR array for digesting. Vectors
// are rendered in hex at the run width so the digest does not depend on the
// integer encoding.
func checksValue(results []verify.CheckResult) ir.Array {
	arr := make(ir.Array, len(results))
	for i, r := range results {
		arr[i] = ir.Object{
			"phase_id": ir.String(r.PhaseID),
			"expected": ir.String(r.Expected.Hex(r.Width)),
			"observed": ir.String(r.Observed.Hex(r.Width)),
			"pass":     ir.Bool(r.Pass),
			"time":     ir.Int(int64(r.Time)),
		}
	}
	return arr
}

// ChecksDigest returns the content hash of a list of check results. Two runs
// with the same digest made the same checks with the same outcomes.
func ChecksDigest(results []verify.CheckResult) (string, error) {
	digest, err := ir.ChecksDigest(checksValue(results))
	if err != nil {
		return "", fmt.Errorf("digest checks: %w", err)
	}
	return digest, nil
}
