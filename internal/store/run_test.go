package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjpolo/tlbench/internal/sim"
	"github.com/fjpolo/tlbench/internal/verify"
)

func testRun(id string) Run {
	return Run{
		ID:           id,
		Scenario:     "passthrough",
		Model:        "register",
		Width:        8,
		ScenarioHash: "abc123",
		ToolVersion:  "0.1.0",
	}
}

func testChecks() []verify.CheckResult {
	v := verify.New(8)
	return []verify.CheckResult{
		v.CheckAt("reset", 0x00, 0x00, 10),
		v.CheckAt("data[0]", 0xAA, 0xAA, 12),
		v.CheckAt("data[1]", 0x55, 0x99, 14),
	}
}

func TestWriteRun_AssignsSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r1, err := s.WriteRun(ctx, testRun("run-1"))
	require.NoError(t, err)
	r2, err := s.WriteRun(ctx, testRun("run-2"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), r1.Seq)
	assert.Equal(t, int64(2), r2.Seq)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, "{}", runs[0].ScenarioJSON)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", latest.ID)
}

func TestWriteRun_DuplicateID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, testRun("run-1"))
	require.NoError(t, err)
	_, err = s.WriteRun(ctx, testRun("run-1"))
	require.Error(t, err)
}

func TestRuns_Empty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	_, err = s.LatestRun(ctx)
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.GetRun(ctx, "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestWriteChecks_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteRun(ctx, testRun("run-1"))
	require.NoError(t, err)
	require.NoError(t, s.WriteChecks(ctx, "run-1", 38, testChecks()))

	got, err := s.Checks(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, testChecks(), got)

	run, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, sim.Time(38), run.FinalTime)
	assert.Equal(t, 2, run.Passed)
	assert.Equal(t, 1, run.Failed)
	assert.False(t, run.Pass())

	digest, err := ChecksDigest(testChecks())
	require.NoError(t, err)
	assert.Equal(t, digest, run.ChecksDigest)
}

func TestWriteChecks_UnknownRun(t *testing.T) {
	s := createTestStore(t)
	err := s.WriteChecks(context.Background(), "ghost", 0, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestChecksDigest_Deterministic(t *testing.T) {
	a, err := ChecksDigest(testChecks())
	require.NoError(t, err)
	b, err := ChecksDigest(testChecks())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	changed := testChecks()
	changed[2].Observed = 0x55
	changed[2].Pass = true
	c, err := ChecksDigest(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestVector_FullWidthRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := testRun("wide")
	run.Width = 64
	_, err := s.WriteRun(ctx, run)
	require.NoError(t, err)

	v := verify.New(64)
	checks := []verify.CheckResult{v.CheckAt("data[0]", ^sim.Vector(0), ^sim.Vector(0), 2)}
	require.NoError(t, s.WriteChecks(ctx, "wide", 2, checks))

	got, err := s.Checks(ctx, "wide")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ^sim.Vector(0), got[0].Observed)
}

func TestTracer_RecordsRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	ctx := context.Background()

	tr := NewTracer(ctx, testRun("run-1"))
	var _ sim.Tracer = tr

	require.NoError(t, tr.Open(path))
	require.NoError(t, tr.Capture(0, sim.Sample{Clock: true, Reset: true}))
	require.NoError(t, tr.Capture(1, sim.Sample{Clock: false, Input: 0xAA, Output: 0xAA}))
	require.NoError(t, tr.Finish(2, testChecks()[:1]))
	assert.Equal(t, int64(1), tr.Run().Seq)
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close(), "second close is a no-op")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	samples, err := s.Samples(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []Sample{
		{Time: 0, Sample: sim.Sample{Clock: true, Reset: true}},
		{Time: 1, Sample: sim.Sample{Input: 0xAA, Output: 0xAA}},
	}, samples)

	run, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, sim.Time(2), run.FinalTime)
	assert.True(t, run.Pass())
}

func TestTracer_DiscardRollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	ctx := context.Background()

	tr := NewTracer(ctx, testRun("run-1"))
	require.NoError(t, tr.Open(path))
	require.NoError(t, tr.Capture(0, sim.Sample{Clock: true}))
	tr.Discard()
	require.NoError(t, tr.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs, "discarded run leaves nothing behind")
}

func TestTracer_UnfinishedRollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	ctx := context.Background()

	tr := NewTracer(ctx, testRun("run-1"))
	require.NoError(t, tr.Open(path))
	require.NoError(t, tr.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestTracer_AppendsToExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	ctx := context.Background()

	for _, id := range []string{"run-a", "run-b"} {
		tr := NewTracer(ctx, testRun(id))
		require.NoError(t, tr.Open(path))
		require.NoError(t, tr.Finish(0, nil))
		require.NoError(t, tr.Close())
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-b", latest.ID)
	assert.Equal(t, int64(2), latest.Seq)
}

func TestTracer_Misuse(t *testing.T) {
	tr := NewTracer(context.Background(), Run{})
	assert.Error(t, tr.Open(filepath.Join(t.TempDir(), "x.db")), "run id required")

	tr = NewTracer(context.Background(), testRun("r"))
	assert.Error(t, tr.Capture(0, sim.Sample{}))
	assert.Error(t, tr.Finish(0, nil))
	assert.NoError(t, tr.Close())
}

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	a := g.Generate()
	b := g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Equal(t, byte('7'), a[14], "version nibble")
}
