package harness

import (
	"github.com/fjpolo/tlbench/internal/sim"
	"github.com/fjpolo/tlbench/internal/verify"
)

// Result is the outcome of a scenario run.
type Result struct {
	// RunID identifies the stored run. Empty when tracing is disabled.
	RunID string `json:"run_id,omitempty"`

	Scenario     string `json:"scenario"`
	Model        string `json:"model"`
	Width        int    `json:"width"`
	ScenarioHash string `json:"scenario_hash"`

	// Checks holds every check result in the order the checks were made.
	Checks []verify.CheckResult `json:"checks"`

	// FinalTime is the simulated time when the sequence ended.
	FinalTime sim.Time `json:"final_time"`

	Summary verify.Summary `json:"summary"`

	// Pass is true if every check passed.
	Pass bool `json:"pass"`

	TracePath string `json:"trace_path,omitempty"`
}

// ExitCode maps the result to a process exit status: 0 if every check
// passed, 1 otherwise.
func (r *Result) ExitCode() int {
	if r.Pass {
		return 0
	}
	return 1
}

// Failures returns the failing checks.
func (r *Result) Failures() []verify.CheckResult {
	return verify.Failures(r.Checks)
}
