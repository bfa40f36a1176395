package orchestrator

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicogong/route-recorder/pkg/settings"
)

const sampleGPX = `<?xml version="1.0"?>
<gpx><trk><trkseg>
<trkpt lat="40.0" lon="-105.0"><ele>1600</ele><time>2026-01-01T10:00:00Z</time></trkpt>
<trkpt lat="40.001" lon="-105.001"><ele>1610</ele><time>2026-01-01T10:01:00Z</time></trkpt>
<trkpt lat="40.002" lon="-105.0"><ele>1605</ele><time>2026-01-01T10:02:30Z</time></trkpt>
</trkseg></trk></gpx>`

func writeSampleRoute(t *testing.T, dir string) string {
	t.Helper()
	_ = xml.Header
	path := filepath.Join(dir, "route.gpx")
	require.NoError(t, os.WriteFile(path, []byte(sampleGPX), 0o644))
	return path
}

func testSettings() settings.Settings {
	s := settings.Default()
	s.Orchestrator.MaxConcurrent = 1
	s.Orchestrator.JobTimeoutMS = 5000
	return s
}

// callbackRecorder records every callback a job fires and lets tests
// block until OnComplete has run before observing final state.
type callbackRecorder struct {
	mu          sync.Mutex
	stages      []string
	progressLog []int
	errorKinds  []string
	completion  *Completion
	done        chan struct{}
}

func newCallbackRecorder() *callbackRecorder {
	return &callbackRecorder{done: make(chan struct{})}
}

func (r *callbackRecorder) callbacks() Callbacks {
	return Callbacks{
		OnStageChange: func(stage string, percent int, _ string) {
			r.mu.Lock()
			r.stages = append(r.stages, stage)
			r.progressLog = append(r.progressLog, percent)
			r.mu.Unlock()
		},
		OnProgress: func(percent int, _ string) {
			r.mu.Lock()
			r.progressLog = append(r.progressLog, percent)
			r.mu.Unlock()
		},
		OnError: func(kind, _ string) {
			r.mu.Lock()
			r.errorKinds = append(r.errorKinds, kind)
			r.mu.Unlock()
		},
		OnComplete: func(c Completion) {
			r.mu.Lock()
			cc := c
			r.completion = &cc
			r.mu.Unlock()
			close(r.done)
		},
	}
}

func (r *callbackRecorder) waitDone(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job completion")
	}
}

// TestStartRender_MissingRouteFileFailsAnalysis exercises the full
// runJob path through a failure (no docker invocation needed, since
// Analyze fails first on a nonexistent input file).
func TestStartRender_MissingRouteFileFailsAnalysis(t *testing.T) {
	dir := t.TempDir()
	c := New(testSettings())
	defer c.Close()

	rec := newCallbackRecorder()
	_, err := c.StartRender(Request{
		RouteFilePath: filepath.Join(dir, "does-not-exist.gpx"),
		OutputDir:     dir,
		OutputID:      "job1",
	}, rec.callbacks())
	require.NoError(t, err)

	rec.waitDone(t)

	require.NotNil(t, rec.completion)
	require.NotNil(t, rec.completion.Failure)
	assert.Equal(t, "ParseError", rec.completion.Failure.Kind)
}

// TestStartRender_ProgressIsMonotonicUntilFailure checks the monotonic-progress
// invariant across whatever stage-change/progress events fired before
// the job failed (it will fail at PREPARE/RENDER since no docker binary
// is available in the test environment, which is fine: we only assert
// monotonicity of whatever was observed).
func TestStartRender_ProgressIsMonotonicUntilFailure(t *testing.T) {
	dir := t.TempDir()
	routePath := writeSampleRoute(t, dir)

	c := New(testSettings())
	defer c.Close()

	rec := newCallbackRecorder()
	_, err := c.StartRender(Request{
		RouteFilePath: routePath,
		RouteFilename: "route.gpx",
		OutputDir:     dir,
		OutputID:      "job2",
	}, rec.callbacks())
	require.NoError(t, err)

	rec.waitDone(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i := 1; i < len(rec.progressLog); i++ {
		assert.GreaterOrEqual(t, rec.progressLog[i], rec.progressLog[i-1], "progress must never decrease")
	}
}

// TestStartRender_DuplicateOutputIDRejected guards against two
// concurrently-live jobs sharing an output_id.
func TestStartRender_DuplicateOutputIDRejected(t *testing.T) {
	dir := t.TempDir()
	c := New(testSettings())
	defer c.Close()

	rec1 := newCallbackRecorder()
	_, err := c.StartRender(Request{
		RouteFilePath: filepath.Join(dir, "missing.gpx"),
		OutputDir:     dir,
		OutputID:      "dup",
	}, rec1.callbacks())
	require.NoError(t, err)

	_, err = c.StartRender(Request{
		RouteFilePath: filepath.Join(dir, "missing.gpx"),
		OutputDir:     dir,
		OutputID:      "dup",
	}, Callbacks{})
	assert.Error(t, err)

	rec1.waitDone(t)
}

// TestCancelRender_UnknownJobReturnsFalse checks idempotency against an
// output_id that was never submitted.
func TestCancelRender_UnknownJobReturnsFalse(t *testing.T) {
	c := New(testSettings())
	defer c.Close()

	ok, _ := c.CancelRender("never-existed")
	assert.False(t, ok)
}

// TestCancelRender_QueuedJobFiresOnErrorWithCanceledKind guards the
// cancellation contract: every cancel path must invoke OnError with
// kind=CanceledError in addition to OnComplete, not OnComplete alone.
func TestCancelRender_QueuedJobFiresOnErrorWithCanceledKind(t *testing.T) {
	dir := t.TempDir()
	c := New(testSettings())
	defer c.Close()

	// Occupy the only concurrency slot so StartRender's dispatch leaves
	// the job sitting in the admission queue instead of running it.
	c.slots <- struct{}{}

	rec := newCallbackRecorder()
	_, err := c.StartRender(Request{
		RouteFilePath: filepath.Join(dir, "missing.gpx"),
		OutputDir:     dir,
		OutputID:      "cancel-job",
	}, rec.callbacks())
	require.NoError(t, err)

	ok, _ := c.CancelRender("cancel-job")
	require.True(t, ok)

	rec.waitDone(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.NotNil(t, rec.completion)
	require.NotNil(t, rec.completion.Failure)
	assert.Equal(t, "CanceledError", rec.completion.Failure.Kind)
	require.Contains(t, rec.errorKinds, "CanceledError")
}

// TestGetStats_ReflectsCompletedFailure confirms GetStats' failed
// counter increments once a job reaches a terminal FAILED state.
func TestGetStats_ReflectsCompletedFailure(t *testing.T) {
	dir := t.TempDir()
	c := New(testSettings())
	defer c.Close()

	rec := newCallbackRecorder()
	_, err := c.StartRender(Request{
		RouteFilePath: filepath.Join(dir, "missing.gpx"),
		OutputDir:     dir,
		OutputID:      "stats-job",
	}, rec.callbacks())
	require.NoError(t, err)

	rec.waitDone(t)

	stats := c.GetStats()
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, stats.Running)
}

// TestEstimatedWaitSeconds_FallsBackWithNoHistory checks the
// fallback-wait formula when no render has completed yet.
func TestEstimatedWaitSeconds_FallsBackWithNoHistory(t *testing.T) {
	c := New(testSettings())
	defer c.Close()

	got := c.EstimatedWaitSeconds(2)
	assert.Equal(t, 2*600, got)
}

// TestAdmissionQueue_PriorityThenFIFO exercises the admission queue
// directly: higher priority dispatches first, ties broken by arrival
// order.
func TestAdmissionQueue_PriorityThenFIFO(t *testing.T) {
	q := newAdmissionQueue()

	low := &Job{OutputID: "low", Priority: 0, Admitted: time.Now()}
	q.push(low)
	time.Sleep(time.Millisecond)

	high := &Job{OutputID: "high", Priority: 5, Admitted: time.Now()}
	q.push(high)
	time.Sleep(time.Millisecond)

	lowLater := &Job{OutputID: "low-later", Priority: 0, Admitted: time.Now()}
	q.push(lowLater)

	first := q.pop()
	second := q.pop()
	third := q.pop()

	require.NotNil(t, first)
	require.NotNil(t, second)
	require.NotNil(t, third)
	assert.Equal(t, "high", first.OutputID)
	assert.Equal(t, "low", second.OutputID)
	assert.Equal(t, "low-later", third.OutputID)
}
