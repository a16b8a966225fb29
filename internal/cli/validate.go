package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fjpolo/tlbench/internal/harness"
)

// ValidationEntry is the validation outcome of one scenario file.
type ValidationEntry struct {
	Path     string `json:"path"`
	Name     string `json:"name,omitempty"`
	Valid    bool   `json:"valid"`
	Phases   int    `json:"phases,omitempty"`
	Steps    int    `json:"steps,omitempty"`
	Checks   int    `json:"checks,omitempty"`
	Width    int    `json:"width,omitempty"`
	Hash     string `json:"scenario_hash,omitempty"`
	Error    string `json:"error,omitempty"`
	ErrCode  string `json:"error_code,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Scenarios []ValidationEntry `json:"scenarios"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Validate scenarios without simulating",
		Long: `Load scenario files and build their phase lists without running a model.

Catches malformed files, unknown fields, unknown models or parameters,
invalid expect_expr expressions and sequencing misuse such as a reset
check with less than a full cycle after deassertion.

Exit codes:
  0 - All scenarios are valid
  1 - One or more scenarios are invalid`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	result := ValidationResult{
		Valid:     true,
		Scenarios: make([]ValidationEntry, 0, len(paths)),
	}
	for _, path := range paths {
		formatter.VerboseLog("Validating %s", path)
		entry := validateScenarioFile(path)
		if !entry.Valid {
			result.Valid = false
		}
		result.Scenarios = append(result.Scenarios, entry)
	}

	invalid := 0
	for _, e := range result.Scenarios {
		if !e.Valid {
			invalid++
		}
	}

	if formatter.IsJSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    ErrCodeLoad,
				Message: fmt.Sprintf("%d scenario(s) invalid", invalid),
			}
		}
		if err := formatter.Encode(resp); err != nil {
			return err
		}
	} else {
		outputValidateText(formatter, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) invalid", invalid))
	}
	return nil
}

func validateScenarioFile(path string) ValidationEntry {
	entry := ValidationEntry{Path: path}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		entry.Error = err.Error()
		entry.ErrCode = ErrCodeLoad
		return entry
	}
	entry.Name = scenario.Name

	plan, err := harness.BuildPlan(scenario)
	if err != nil {
		entry.Error = err.Error()
		entry.ErrCode = classify(err, ErrCodeLoad)
		return entry
	}

	entry.Valid = true
	entry.Phases = len(plan.Sequencer.Phases())
	entry.Steps = plan.Sequencer.TotalSteps()
	entry.Checks = plan.Sequencer.CheckCount()
	entry.Width = plan.Width
	entry.Hash = plan.Hash
	return entry
}

func outputValidateText(f *OutputFormatter, result ValidationResult) {
	w := f.Writer
	for _, e := range result.Scenarios {
		if e.Valid {
			fmt.Fprintf(w, "\u2713 %s: %d phases, %d steps, %d checks, width %d (hash %s)\n",
				e.Name, e.Phases, e.Steps, e.Checks, e.Width, shortHash(e.Hash))
			continue
		}
		fmt.Fprintf(w, "\u2717 %s\n", e.Path)
		fmt.Fprintf(w, "  %s\n", e.Error)
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
