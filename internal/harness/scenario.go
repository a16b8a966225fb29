package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fjpolo/tlbench/internal/rtl"
	"github.com/fjpolo/tlbench/internal/sim"
)

// Scenario describes one testbench run.
type Scenario struct {
	// Name identifies the scenario in reports and stored runs.
	Name string `yaml:"name" json:"name"`

	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Model is a registered model name (see rtl.Names).
	Model string `yaml:"model" json:"model"`

	// Width is the port width in bits. Zero selects the model default.
	Width int `yaml:"width,omitempty" json:"width,omitempty"`

	// Params are passed to the model factory.
	Params rtl.Params `yaml:"params,omitempty" json:"params,omitempty"`

	Reset    *ResetWindow   `yaml:"reset" json:"reset"`
	Stimulus []StimulusItem `yaml:"stimulus" json:"stimulus"`

	// Idle extends the trace after the last stimulus. Optional.
	Idle *IdleWindow `yaml:"idle,omitempty" json:"idle,omitempty"`
}

// ResetWindow configures the reset phase.
type ResetWindow struct {
	Steps int `yaml:"steps" json:"steps"`

	// DeassertAt is the step at which reset is released. Nil selects
	// Steps/2.
	DeassertAt *int `yaml:"deassert_at,omitempty" json:"deassert_at,omitempty"`

	// Expect is the output after reset. Nil skips the reset check.
	Expect *Literal `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// StimulusItem is one input vector and its expected output.
type StimulusItem struct {
	// ID defaults to "data[i]".
	ID string `yaml:"id,omitempty" json:"id,omitempty"`

	Input *Literal `yaml:"input" json:"input"`

	// Exactly one of Expect and ExpectExpr is set.
	Expect     *Literal `yaml:"expect,omitempty" json:"expect,omitempty"`
	ExpectExpr string   `yaml:"expect_expr,omitempty" json:"expect_expr,omitempty"`

	// Cycles is the number of full clock cycles to run before checking.
	// Zero means one.
	Cycles int `yaml:"cycles,omitempty" json:"cycles,omitempty"`
}

// IdleWindow configures the trailing idle phase.
type IdleWindow struct {
	Steps int `yaml:"steps" json:"steps"`
}

// Literal is a port value written in a scenario file. In YAML it accepts
// any integer literal sim.ParseVector understands, quoted or not.
type Literal sim.Vector

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Literal) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: vector must be a scalar", node.Line)
	}
	v, err := sim.ParseVector(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*l = Literal(v)
	return nil
}

// Vector returns the literal as a port value.
func (l Literal) Vector() sim.Vector {
	return sim.Vector(l)
}

// ItemID returns the phase ID of stimulus item i.
func (s *Scenario) ItemID(i int) string {
	if id := s.Stimulus[i].ID; id != "" {
		return id
	}
	return fmt.Sprintf("data[%d]", i)
}

// LoadScenario reads a scenario file. The format is chosen by extension:
// .cue files are evaluated with CUE, anything else is parsed as YAML.
//
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields, or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario *Scenario
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		scenario, err = parseCUE(path, data)
	default:
		scenario, err = parseYAML(data)
	}
	if err != nil {
		return nil, err
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario parses and validates YAML scenario data.
func ParseScenario(data []byte) (*Scenario, error) {
	scenario, err := parseYAML(data)
	if err != nil {
		return nil, err
	}
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

func parseYAML(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "stimuli:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks the fields that do not depend on the model.
// Phase-level rules are enforced when the plan is built.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	spec, ok := rtl.Lookup(s.Model)
	if !ok {
		return fmt.Errorf("model: unknown model %q (available: %s)", s.Model, strings.Join(rtl.Names(), ", "))
	}
	for k := range s.Params {
		if !slices.Contains(spec.Params, k) {
			return fmt.Errorf("params: unknown parameter %q for model %s", k, s.Model)
		}
	}
	if s.Width < 0 || s.Width > sim.MaxWidth {
		return fmt.Errorf("width: must be between 1 and %d, got %d", sim.MaxWidth, s.Width)
	}

	if s.Reset == nil {
		return fmt.Errorf("reset is required")
	}
	if s.Reset.Steps < 2 {
		return fmt.Errorf("reset.steps: must be at least 2, got %d", s.Reset.Steps)
	}
	if d := s.Reset.DeassertAt; d != nil && (*d < 1 || *d >= s.Reset.Steps) {
		return fmt.Errorf("reset.deassert_at: must be in [1, %d), got %d", s.Reset.Steps, *d)
	}

	if len(s.Stimulus) == 0 {
		return fmt.Errorf("stimulus: at least one item is required")
	}
	for i := range s.Stimulus {
		if err := validateItem(i, &s.Stimulus[i]); err != nil {
			return err
		}
	}

	if s.Idle != nil && s.Idle.Steps <= 0 {
		return fmt.Errorf("idle.steps: must be positive, got %d", s.Idle.Steps)
	}
	return nil
}

func validateItem(i int, item *StimulusItem) error {
	if item.Input == nil {
		return fmt.Errorf("stimulus[%d]: input is required", i)
	}
	if item.Expect == nil && item.ExpectExpr == "" {
		return fmt.Errorf("stimulus[%d]: expect or expect_expr is required", i)
	}
	if item.Expect != nil && item.ExpectExpr != "" {
		return fmt.Errorf("stimulus[%d]: expect and expect_expr are mutually exclusive", i)
	}
	if item.Cycles < 0 {
		return fmt.Errorf("stimulus[%d]: cycles must be non-negative, got %d", i, item.Cycles)
	}
	if item.ID == "reset" || item.ID == "idle" {
		return fmt.Errorf("stimulus[%d]: id %q is reserved", i, item.ID)
	}
	return nil
}
