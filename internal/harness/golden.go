package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/fjpolo/tlbench/internal/ir"
)

// Snapshot returns the canonical JSON of a result for golden comparison.
// Run IDs and trace paths are left out so snapshots are stable across runs.
func Snapshot(result *Result) ([]byte, error) {
	checks := make([]any, len(result.Checks))
	for i, c := range result.Checks {
		checks[i] = map[string]any{
			"phase_id": c.PhaseID,
			"expected": c.Expected.Hex(c.Width),
			"observed": c.Observed.Hex(c.Width),
			"pass":     c.Pass,
			"time":     uint64(c.Time),
		}
	}

	return ir.Marshal(map[string]any{
		"scenario":      result.Scenario,
		"model":         result.Model,
		"width":         result.Width,
		"scenario_hash": result.ScenarioHash,
		"final_time":    uint64(result.FinalTime),
		"pass":          result.Pass,
		"summary": map[string]any{
			"total":  result.Summary.Total,
			"passed": result.Summary.Passed,
			"failed": result.Summary.Failed,
		},
		"checks": checks,
	})
}

// RunWithGolden runs a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, Options{})
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares a result's snapshot against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
