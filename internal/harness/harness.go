package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fjpolo/tlbench/internal/ir"
	"github.com/fjpolo/tlbench/internal/rtl"
	"github.com/fjpolo/tlbench/internal/sim"
	"github.com/fjpolo/tlbench/internal/store"
	"github.com/fjpolo/tlbench/internal/verify"
)

// Options configures a run.
type Options struct {
	// TracePath is the SQLite database that receives the trace, check
	// results and run record. Empty disables tracing.
	TracePath string

	// Out receives the report lines. Nil discards them.
	Out io.Writer

	// Logger receives diagnostic logs. Nil discards them.
	Logger *slog.Logger

	// RunIDs generates the stored run ID. Nil uses UUIDv7.
	RunIDs store.RunIDGenerator

	// NewModel creates the model under test. Nil uses the rtl registry.
	NewModel func(name string, width int, params rtl.Params) (sim.Model, error)
}

// Run builds the plan for scenario and runs it.
//
// Check failures are not errors: they are reported, counted, and reflected
// in Result.Pass. Errors are returned for an invalid scenario, a sequencing
// misuse, or a model or tracer fault; in those cases no result is returned
// and a traced run is rolled back.
func Run(ctx context.Context, scenario *Scenario, opts Options) (*Result, error) {
	plan, err := BuildPlan(scenario)
	if err != nil {
		return nil, err
	}
	return RunPlan(ctx, plan, opts)
}

// RunPlan runs a plan built by BuildPlan.
func RunPlan(ctx context.Context, plan *Plan, opts Options) (result *Result, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := plan.Scenario

	newModel := opts.NewModel
	if newModel == nil {
		newModel = rtl.New
	}
	model, err := newModel(s.Model, plan.Width, s.Params)
	if err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}

	var (
		simOpts sim.Options
		tracer  *store.Tracer
		runID   string
	)
	if opts.TracePath != "" {
		gen := opts.RunIDs
		if gen == nil {
			gen = store.UUIDv7Generator{}
		}
		runID = gen.Generate()
		tracer = store.NewTracer(ctx, store.Run{
			ID:           runID,
			Scenario:     s.Name,
			Model:        s.Model,
			Width:        plan.Width,
			ScenarioHash: plan.Hash,
			ScenarioJSON: string(plan.Canonical),
			ToolVersion:  ir.ToolVersion,
		})
		simOpts.Tracer = tracer
		simOpts.TracePath = opts.TracePath
	}

	clk, err := sim.Open(model, simOpts)
	if err != nil {
		return nil, fmt.Errorf("open simulation: %w", err)
	}
	defer func() {
		if cerr := clk.Close(); cerr != nil && err == nil {
			result = nil
			err = fmt.Errorf("close simulation: %w", cerr)
		}
	}()

	logger.Info("run started",
		"scenario", s.Name,
		"model", s.Model,
		"width", plan.Width,
		"steps", plan.Sequencer.TotalSteps(),
		"trace", opts.TracePath,
	)

	rep := NewReporter(opts.Out, plan.Width)
	checks, err := plan.Sequencer.Run(clk, verify.New(plan.Width), rep)
	if err != nil {
		if tracer != nil {
			tracer.Discard()
		}
		logger.Error("run aborted", "scenario", s.Name, "time", clk.Time(), "error", err)
		return nil, err
	}

	summary := verify.Summarize(checks)
	result = &Result{
		Scenario:     s.Name,
		Model:        s.Model,
		Width:        plan.Width,
		ScenarioHash: plan.Hash,
		Checks:       checks,
		FinalTime:    clk.Time(),
		Summary:      summary,
		Pass:         summary.AllPassed(),
	}

	if tracer != nil {
		if err := tracer.Finish(clk.Time(), checks); err != nil {
			tracer.Discard()
			return nil, fmt.Errorf("record run: %w", err)
		}
		result.RunID = runID
		result.TracePath = opts.TracePath
	}

	rep.Summary(summary, result.FinalTime)
	if err := rep.Err(); err != nil {
		if tracer != nil {
			tracer.Discard()
		}
		return nil, fmt.Errorf("write report: %w", err)
	}

	for _, f := range result.Failures() {
		logger.Debug("check failed", "phase", f.PhaseID, "diagnostic", f.Diagnostic(), "time", f.Time)
	}
	logger.Info("run finished",
		"scenario", s.Name,
		"checks", summary.Total,
		"passed", summary.Passed,
		"failed", summary.Failed,
		"time", result.FinalTime,
		"run_id", runID,
	)
	return result, nil
}
