package store

import (
	"github.com/fjpolo/tlbench/internal/sim"
)

// Run is a recorded testbench run.
type Run struct {
	ID           string `json:"id"`
	Seq          int64  `json:"seq"`
	Scenario     string `json:"scenario"`
	Model        string `json:"model"`
	Width        int    `json:"width"`
	ScenarioHash string `json:"scenario_hash"`

	// ScenarioJSON is the canonical JSON of the scenario that produced the run.
	ScenarioJSON string `json:"-"`
	ToolVersion  string `json:"tool_version"`

	FinalTime    sim.Time `json:"final_time"`
	Passed       int      `json:"passed"`
	Failed       int      `json:"failed"`
	ChecksDigest string   `json:"checks_digest,omitempty"`
}

// Pass reports whether every check of the run passed.
func (r Run) Pass() bool {
	return r.Failed == 0
}

// Sample is one captured step.
type Sample struct {
	Time sim.Time `json:"time"`
	sim.Sample
}
