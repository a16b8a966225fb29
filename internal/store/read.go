package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjpolo/tlbench/internal/sim"
	"github.com/fjpolo/tlbench/internal/verify"
)

// ErrRunNotFound is returned when a run ID does not exist or the store holds
// no runs.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, seq, scenario, model, width, scenario_hash, scenario_json,
	tool_version, final_time, passed, failed, checks_digest`

// Runs returns every run ordered by seq.
//
// Returns an empty slice (not nil) if the store holds no runs.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run with the given ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// LatestRun returns the run with the highest seq.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY seq DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: store is empty", ErrRunNotFound)
	}
	return run, err
}

// Samples returns the captured samples of a run ordered by time.
func (s *Store) Samples(ctx context.Context, runID string) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT time, clk, reset, input, output
		FROM samples
		WHERE run_id = ?
		ORDER BY time ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	samples := []Sample{}
	for rows.Next() {
		var (
			t             int64
			clk, reset    int
			input, output int64
		)
		if err := rows.Scan(&t, &clk, &reset, &input, &output); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, Sample{
			Time: sim.Time(t),
			Sample: sim.Sample{
				Clock:  clk != 0,
				Reset:  reset != 0,
				Input:  intToVector(input),
				Output: intToVector(output),
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}

// Checks returns the check results of a run in the order they were made.
func (s *Store) Checks(ctx context.Context, runID string) ([]verify.CheckResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.phase_id, c.expected, c.observed, c.pass, c.time, r.width
		FROM checks c
		JOIN runs r ON c.run_id = r.id
		WHERE c.run_id = ?
		ORDER BY c.seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query checks: %w", err)
	}
	defer rows.Close()

	results := []verify.CheckResult{}
	for rows.Next() {
		var (
			r                  verify.CheckResult
			expected, observed int64
			pass               int
			t                  int64
		)
		if err := rows.Scan(&r.PhaseID, &expected, &observed, &pass, &t, &r.Width); err != nil {
			return nil, fmt.Errorf("scan check: %w", err)
		}
		r.Expected = intToVector(expected)
		r.Observed = intToVector(observed)
		r.Pass = pass != 0
		r.Time = sim.Time(t)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checks: %w", err)
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run       Run
		finalTime int64
	)
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.Scenario,
		&run.Model,
		&run.Width,
		&run.ScenarioHash,
		&run.ScenarioJSON,
		&run.ToolVersion,
		&finalTime,
		&run.Passed,
		&run.Failed,
		&run.ChecksDigest,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.FinalTime = sim.Time(finalTime)
	return run, nil
}
