package testutil

import (
	"errors"
	"sync"

	"github.com/fjpolo/tlbench/internal/sim"
)

// CapturedSample is one Capture call seen by a RecordingTracer.
type CapturedSample struct {
	Time   sim.Time
	Sample sim.Sample
}

// RecordingTracer is an in-memory sim.Tracer for tests.
//
// FailAt makes Capture fail at that time when FailAtSet is true, which lets
// tests drive the tracer fault path.
type RecordingTracer struct {
	mu sync.Mutex

	Path    string
	Opened  bool
	Closed  bool
	Samples []CapturedSample

	FailAt    sim.Time
	FailAtSet bool
	OpenErr   error
}

// ErrCaptureFailed is returned by Capture at FailAt.
var ErrCaptureFailed = errors.New("testutil: capture failed")

// Open records the trace path.
func (r *RecordingTracer) Open(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.OpenErr != nil {
		return r.OpenErr
	}
	r.Path = path
	r.Opened = true
	return nil
}

// Capture appends the sample.
func (r *RecordingTracer) Capture(t sim.Time, s sim.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailAtSet && t == r.FailAt {
		return ErrCaptureFailed
	}
	r.Samples = append(r.Samples, CapturedSample{Time: t, Sample: s})
	return nil
}

// Close marks the tracer closed.
func (r *RecordingTracer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Closed = true
	return nil
}

// Times returns the capture times in call order.
func (r *RecordingTracer) Times() []sim.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sim.Time, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Time
	}
	return out
}
