package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjpolo/tlbench/internal/sim"
	"github.com/fjpolo/tlbench/internal/verify"
)

// Tracer records one run into a SQLite database. It implements sim.Tracer.
//
// Open starts a transaction and inserts the run record; Capture adds one
// sample per step; Finish adds the check results; Close commits. A tracer
// that was discarded, or that never saw Finish, rolls back on Close.
//
// Tracer is not safe for concurrent use.
type Tracer struct {
	ctx context.Context
	run Run

	store  *Store
	tx     *sql.Tx
	insert *sql.Stmt

	finished  bool
	discarded bool
	closed    bool
}

// NewTracer returns a tracer that will record run. The run's ID must be set;
// Seq is assigned on Open.
func NewTracer(ctx context.Context, run Run) *Tracer {
	return &Tracer{ctx: ctx, run: run}
}

// Open opens the database at path and begins the run transaction.
func (t *Tracer) Open(path string) error {
	if t.store != nil {
		return errors.New("tracer already open")
	}
	if t.run.ID == "" {
		return errors.New("tracer run has no id")
	}

	st, err := Open(path)
	if err != nil {
		return err
	}

	tx, err := st.db.BeginTx(t.ctx, nil)
	if err != nil {
		st.Close()
		return fmt.Errorf("begin run transaction: %w", err)
	}

	run, err := writeRun(t.ctx, tx, t.run)
	if err != nil {
		tx.Rollback()
		st.Close()
		return err
	}

	stmt, err := tx.PrepareContext(t.ctx, insertSampleSQL)
	if err != nil {
		tx.Rollback()
		st.Close()
		return fmt.Errorf("prepare sample insert: %w", err)
	}

	t.run = run
	t.store = st
	t.tx = tx
	t.insert = stmt
	return nil
}

// Capture writes one sample.
func (t *Tracer) Capture(tm sim.Time, s sim.Sample) error {
	if t.tx == nil {
		return errors.New("tracer is not open")
	}
	return writeSample(t.ctx, t.insert, t.run.ID, tm, s)
}

// Finish writes the check results and the run summary. Without Finish the
// run is rolled back on Close.
func (t *Tracer) Finish(finalTime sim.Time, results []verify.CheckResult) error {
	if t.tx == nil {
		return errors.New("tracer is not open")
	}
	if err := writeChecks(t.ctx, t.tx, t.run.ID, finalTime, results); err != nil {
		return err
	}
	summary := verify.Summarize(results)
	t.run.FinalTime = finalTime
	t.run.Passed = summary.Passed
	t.run.Failed = summary.Failed
	t.finished = true
	return nil
}

// Discard makes Close roll back instead of committing.
func (t *Tracer) Discard() {
	t.discarded = true
}

// Run returns the run record as written so far.
func (t *Tracer) Run() Run {
	return t.run
}

// Close commits the run transaction (or rolls it back) and closes the
// database. It is safe to call more than once.
func (t *Tracer) Close() error {
	if t.closed || t.store == nil {
		t.closed = true
		return nil
	}
	t.closed = true

	var errs []error
	if err := t.insert.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close sample insert: %w", err))
	}
	if t.finished && !t.discarded && len(errs) == 0 {
		if err := t.tx.Commit(); err != nil {
			errs = append(errs, fmt.Errorf("commit run: %w", err))
		}
	} else {
		if err := t.tx.Rollback(); err != nil {
			errs = append(errs, fmt.Errorf("rollback run: %w", err))
		}
	}
	if err := t.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
