package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fjpolo/tlbench/internal/harness"
	"github.com/fjpolo/tlbench/internal/sequencer"
	"github.com/fjpolo/tlbench/internal/sim"
	"github.com/fjpolo/tlbench/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Trace string

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, the harness uses UUIDv7.
	RunIDs store.RunIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}
	return newRunCommand(opts)
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run a scenario against its model",
		Long: `Run a scenario file (YAML or CUE) against the model it names.

The reset window, every stimulus item and the idle window are driven in
order. One line is printed per phase and check event, followed by a
summary. A failing check does not stop the run.

With --trace, every step's port values, the check results and the run
record are written to a SQLite database. A run that aborts leaves nothing
in the database.

Exit codes:
  0 - All checks passed
  1 - One or more checks failed
  2 - Command error (unreadable scenario, sequencing misuse, model fault)

Examples:
  tlbench run ./scenarios/passthrough.yaml
  tlbench run ./scenarios/counter.cue --trace ./runs.db
  tlbench run ./scenarios/passthrough.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Trace, "trace", "", "record the run to this SQLite database")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return reportRunError(formatter, ErrCodeLoad, "failed to load scenario", err)
	}
	logger.Debug("scenario loaded", "path", path, "name", scenario.Name, "model", scenario.Model)

	plan, err := harness.BuildPlan(scenario)
	if err != nil {
		return reportRunError(formatter, classify(err, ErrCodeLoad), "invalid scenario", err)
	}

	// The text report streams as the run progresses; JSON waits for the
	// result so stdout stays a single document.
	var out io.Writer = cmd.OutOrStdout()
	if formatter.IsJSON() {
		out = nil
	}

	result, err := harness.RunPlan(cmd.Context(), plan, harness.Options{
		TracePath: opts.Trace,
		Out:       out,
		Logger:    logger,
		RunIDs:    opts.RunIDs,
	})
	if err != nil {
		return reportRunError(formatter, classify(err, ErrCodeGeneric), "run aborted", err)
	}

	if formatter.IsJSON() {
		resp := CLIResponse{Status: "ok", Data: result, RunID: result.RunID}
		if !result.Pass {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    ErrCodeFailed,
				Message: fmt.Sprintf("%d check(s) failed", result.Summary.Failed),
			}
		}
		if err := formatter.Encode(resp); err != nil {
			return err
		}
	} else if result.RunID != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Trace: run %s in %s\n", result.RunID, result.TracePath)
	}

	if result.ExitCode() != ExitSuccess {
		return NewExitError(result.ExitCode(), fmt.Sprintf("%d check(s) failed", result.Summary.Failed))
	}
	return nil
}

// classify maps a run error to its JSON error code.
func classify(err error, fallback string) string {
	switch {
	case sim.IsFault(err):
		return ErrCodeFault
	case sequencer.IsMisuse(err):
		return ErrCodeMisuse
	default:
		return fallback
	}
}

// reportRunError emits a JSON error response when requested and returns the
// command error. Text mode leaves printing to main.
func reportRunError(f *OutputFormatter, code, message string, err error) error {
	if f.IsJSON() {
		if encErr := f.Error(code, fmt.Sprintf("%s: %v", message, err), nil); encErr != nil {
			return encErr
		}
	}
	return WrapExitError(ExitCommandError, message, err)
}
