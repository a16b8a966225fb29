// Package verify compares observed model outputs against expected values.
//
// Verification is a pure comparison: bit-for-bit equality on the vector
// masked to the port width. There are no retries and no tolerance windows;
// port values are discrete.
package verify

import (
	"fmt"

	"github.com/fjpolo/tlbench/internal/sim"
)

// CheckResult is the outcome of one check. Results are values; once appended
// to a run's result list they are never mutated.
type CheckResult struct {
	PhaseID  string     `json:"phase_id"`
	Expected sim.Vector `json:"expected"`
	Observed sim.Vector `json:"observed"`
	Pass     bool       `json:"pass"`
	Width    int        `json:"width"`

	// Time is the simulated time at which the output was sampled.
	Time sim.Time `json:"time"`
}

// Verdict returns "PASS" or "FAIL".
func (r CheckResult) Verdict() string {
	if r.Pass {
		return "PASS"
	}
	return "FAIL"
}

// Diagnostic renders the compared values in hex at the port width, for
// example "expected 0xAA, observed 0x55".
func (r CheckResult) Diagnostic() string {
	return fmt.Sprintf("expected %s, observed %s", r.Expected.Hex(r.Width), r.Observed.Hex(r.Width))
}

// String returns the report line for the result.
func (r CheckResult) String() string {
	return fmt.Sprintf("%s %s: %s", r.Verdict(), r.PhaseID, r.Diagnostic())
}

// Verifier checks outputs of a port with a fixed width.
type Verifier struct {
	Width int
}

// New returns a verifier for a port of the given width.
func New(width int) Verifier {
	return Verifier{Width: width}
}

// Check compares observed against expected. The same inputs always yield the
// same verdict.
func (v Verifier) Check(phaseID string, expected, observed sim.Vector) CheckResult {
	mask := sim.Mask(v.Width)
	expected &= mask
	observed &= mask
	return CheckResult{
		PhaseID:  phaseID,
		Expected: expected,
		Observed: observed,
		Pass:     expected == observed,
		Width:    v.Width,
	}
}

// CheckAt is Check with the sampling time recorded.
func (v Verifier) CheckAt(phaseID string, expected, observed sim.Vector, t sim.Time) CheckResult {
	r := v.Check(phaseID, expected, observed)
	r.Time = t
	return r
}

// Summary aggregates a list of check results.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Summarize counts passes and failures.
func Summarize(results []CheckResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Pass {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// AllPassed reports whether every result passed. An empty list passes.
func (s Summary) AllPassed() bool {
	return s.Failed == 0
}

// Failures returns the failing results in order.
func Failures(results []CheckResult) []CheckResult {
	var out []CheckResult
	for _, r := range results {
		if !r.Pass {
			out = append(out, r)
		}
	}
	return out
}
