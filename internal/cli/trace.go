package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fjpolo/tlbench/internal/sim"
	"github.com/fjpolo/tlbench/internal/store"
	"github.com/fjpolo/tlbench/internal/verify"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	List     bool
	Failed   bool
}

// TraceResult is the trace of one recorded run.
type TraceResult struct {
	Run     store.Run            `json:"run"`
	Samples []store.Sample       `json:"samples"`
	Checks  []verify.CheckResult `json:"checks"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show a recorded run",
		Long: `Show the captured samples and check results of a run recorded with
'tlbench run --trace'. Without --run the latest run is shown.

Exit codes:
  0 - Run found
  2 - Command error (database not found, unknown run)

Examples:
  tlbench trace --db ./runs.db
  tlbench trace --db ./runs.db --run 0190a5f2-...
  tlbench trace --db ./runs.db --list
  tlbench trace --db ./runs.db --failed --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to show (default: latest run)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list recorded runs instead of showing one")
	cmd.Flags().BoolVar(&opts.Failed, "failed", false, "show failing checks only, without samples")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return reportRunError(formatter, ErrCodeNotFound, "failed to open database", err)
	}
	defer st.Close()

	if opts.List {
		runs, err := st.Runs(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		if formatter.IsJSON() {
			return formatter.Encode(CLIResponse{Status: "ok", Data: runs})
		}
		outputRunList(formatter.Writer, runs)
		return nil
	}

	result, err := loadTrace(ctx, st, opts.RunID, opts.Failed)
	if err != nil {
		code := ErrCodeGeneric
		if errors.Is(err, store.ErrRunNotFound) {
			code = ErrCodeNotFound
		}
		return reportRunError(formatter, code, "failed to load run", err)
	}

	if formatter.IsJSON() {
		return formatter.Encode(CLIResponse{Status: "ok", Data: result, RunID: result.Run.ID})
	}
	outputTraceText(formatter.Writer, result)
	return nil
}

// openExistingStore opens a trace database without creating it.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return store.Open(path)
}

func loadTrace(ctx context.Context, st *store.Store, runID string, failedOnly bool) (TraceResult, error) {
	var (
		run store.Run
		err error
	)
	if runID == "" {
		run, err = st.LatestRun(ctx)
	} else {
		run, err = st.GetRun(ctx, runID)
	}
	if err != nil {
		return TraceResult{}, err
	}

	checks, err := st.Checks(ctx, run.ID)
	if err != nil {
		return TraceResult{}, err
	}

	samples := []store.Sample{}
	if failedOnly {
		checks = verify.Failures(checks)
	} else {
		samples, err = st.Samples(ctx, run.ID)
		if err != nil {
			return TraceResult{}, err
		}
	}
	if checks == nil {
		checks = []verify.CheckResult{}
	}

	return TraceResult{Run: run, Samples: samples, Checks: checks}, nil
}

func outputRunList(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	for _, r := range runs {
		mark := "\u2713"
		if !r.Pass() {
			mark = "\u2717"
		}
		fmt.Fprintf(w, "%s %4d %s %s (%s, %d passed, %d failed, time %d)\n",
			mark, r.Seq, r.ID, r.Scenario, r.Model, r.Passed, r.Failed, r.FinalTime)
	}
}

func outputTraceText(w io.Writer, result TraceResult) {
	r := result.Run
	fmt.Fprintf(w, "Run %s (seq %d)\n", r.ID, r.Seq)
	fmt.Fprintf(w, "  Scenario: %s (hash %s)\n", r.Scenario, shortHash(r.ScenarioHash))
	fmt.Fprintf(w, "  Model:    %s, width %d\n", r.Model, r.Width)
	fmt.Fprintf(w, "  Result:   %d passed, %d failed, final time %d\n", r.Passed, r.Failed, r.FinalTime)

	if len(result.Samples) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Samples:")
		fmt.Fprintf(w, "  %6s %3s %5s %-*s %-*s\n", "TIME", "CLK", "RESET",
			hexWidth(r.Width), "INPUT", hexWidth(r.Width), "OUTPUT")
		for _, s := range result.Samples {
			fmt.Fprintf(w, "  %6d %3d %5d %-*s %-*s\n",
				s.Time, bit(s.Clock), bit(s.Reset),
				hexWidth(r.Width), s.Input.Hex(r.Width),
				hexWidth(r.Width), s.Output.Hex(r.Width))
		}
	}

	fmt.Fprintln(w)
	if len(result.Checks) == 0 {
		fmt.Fprintln(w, "No checks.")
		return
	}
	fmt.Fprintln(w, "Checks:")
	for _, c := range result.Checks {
		fmt.Fprintf(w, "  %s\n", c.String())
	}
}

// hexWidth is the column width of a Hex-rendered vector, never narrower
// than the column header.
func hexWidth(width int) int {
	n := len(sim.Vector(0).Hex(width))
	if n < len("OUTPUT") {
		return len("OUTPUT")
	}
	return n
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}
