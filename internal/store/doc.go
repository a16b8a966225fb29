// Package store provides SQLite-backed storage for testbench runs.
//
// A database holds any number of runs. Each run has:
//   - a runs row: scenario name, model, port width, scenario fingerprint
//   - samples: the port values captured after every simulation step
//   - checks: the check results in the order they were made
//
// Runs are ordered by seq, a per-database counter assigned when the run is
// recorded. Samples are ordered by simulated time and checks by their
// position in the run. Queries never order by wall time.
//
// The Tracer type implements sim.Tracer. It records one run inside a single
// transaction that is committed on Close, or rolled back when the run was
// discarded, so a database never holds half a run.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package store
