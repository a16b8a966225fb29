package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fjpolo/tlbench/internal/sim"
	"github.com/fjpolo/tlbench/internal/verify"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WriteRun inserts a run record. The run's Seq is assigned by the store and
// returned in the result.
func (s *Store) WriteRun(ctx context.Context, run Run) (Run, error) {
	return writeRun(ctx, s.db, run)
}

// WriteChecks stores the check results of a run and updates its summary.
func (s *Store) WriteChecks(ctx context.Context, runID string, finalTime sim.Time, results []verify.CheckResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write checks: begin: %w", err)
	}
	if err := writeChecks(ctx, tx, runID, finalTime, results); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write checks: commit: %w", err)
	}
	return nil
}

func writeRun(ctx context.Context, ex execer, run Run) (Run, error) {
	var seq int64
	if err := ex.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}
	run.Seq = seq
	if run.ScenarioJSON == "" {
		run.ScenarioJSON = "{}"
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, scenario, model, width, scenario_hash, scenario_json, tool_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.Scenario,
		run.Model,
		run.Width,
		run.ScenarioHash,
		run.ScenarioJSON,
		run.ToolVersion,
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	return run, nil
}

func writeSample(ctx context.Context, stmt *sql.Stmt, runID string, t sim.Time, s sim.Sample) error {
	_, err := stmt.ExecContext(ctx,
		runID,
		int64(t),
		boolToInt(s.Clock),
		boolToInt(s.Reset),
		vectorToInt(s.Input),
		vectorToInt(s.Output),
	)
	if err != nil {
		return fmt.Errorf("write sample t=%d: %w", t, err)
	}
	return nil
}

const insertSampleSQL = `
	INSERT INTO samples (run_id, time, clk, reset, input, output)
	VALUES (?, ?, ?, ?, ?, ?)
`

func writeChecks(ctx context.Context, ex execer, runID string, finalTime sim.Time, results []verify.CheckResult) error {
	summary := verify.Summarize(results)
	for i, r := range results {
		_, err := ex.ExecContext(ctx, `
			INSERT INTO checks (run_id, seq, phase_id, expected, observed, pass, time)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			runID,
			i,
			r.PhaseID,
			vectorToInt(r.Expected),
			vectorToInt(r.Observed),
			boolToInt(r.Pass),
			int64(r.Time),
		)
		if err != nil {
			return fmt.Errorf("write check %d (%s): %w", i, r.PhaseID, err)
		}
	}

	digest, err := ChecksDigest(results)
	if err != nil {
		return err
	}

	res, err := ex.ExecContext(ctx, `
		UPDATE runs SET final_time = ?, passed = ?, failed = ?, checks_digest = ?
		WHERE id = ?
	`, int64(finalTime), summary.Passed, summary.Failed, digest, runID)
	if err != nil {
		return fmt.Errorf("update run summary: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update run summary: %w: %s", ErrRunNotFound, runID)
	}
	return nil
}
