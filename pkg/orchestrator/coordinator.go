// Package orchestrator implements the Pipeline Coordinator: it owns the
// per-job state machine, dispatches to the Analyzer, Speed Planner,
// Config Builder, Container Executor, and Output Validator in order,
// fans out progress/error/completion callbacks, tracks active jobs, and
// enforces the global concurrency cap via an admission queue.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chicogong/route-recorder/pkg/analyzer"
	"github.com/chicogong/route-recorder/pkg/configbuilder"
	"github.com/chicogong/route-recorder/pkg/execctl"
	"github.com/chicogong/route-recorder/pkg/settings"
	"github.com/chicogong/route-recorder/pkg/speedplan"
	"github.com/chicogong/route-recorder/pkg/storage"
	"github.com/chicogong/route-recorder/pkg/validate"
)

// historyCap bounds the retained completed/failed job history.
const historyCap = 100

// eventBufferSize is the capacity of a job's event channel; progress
// events beyond this are dropped (best-effort), but stage-change/error/
// complete events are always delivered via a blocking send.
const eventBufferSize = 256

// Handle is returned from StartRender.
type Handle struct {
	OutputID string
}

// Stats mirrors the getStats control API response.
type Stats struct {
	Running   int
	Queued    int
	Completed int
	Failed    int
}

// Coordinator owns every piece of process-wide mutable pipeline state:
// the active jobs map, the admission queue, and a concurrency-cap
// semaphore.
type Coordinator struct {
	settings settings.Settings

	mu     sync.RWMutex
	active map[string]*Job

	history     []Snapshot
	completedN  int
	failedN     int
	renderTimes []time.Duration

	queueMu sync.Mutex
	queue   *admissionQueue

	slots chan struct{}

	// remoteStore and archiveURIPrefix are optional: when set, a
	// route_file_path carrying a non-local scheme is staged locally
	// before analysis, and a completed render's video is additionally
	// archived under archiveURIPrefix.
	remoteStore      storage.Storage
	archiveURIPrefix string

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures optional Coordinator behavior.
type Option func(*Coordinator)

// WithRemoteStore enables remote route-file staging and, when
// archiveURIPrefix is non-empty, output archival to store.
func WithRemoteStore(store storage.Storage, archiveURIPrefix string) Option {
	return func(c *Coordinator) {
		c.remoteStore = store
		c.archiveURIPrefix = archiveURIPrefix
	}
}

// New constructs a Coordinator with no singleton state: every dependency
// is passed in explicitly, and the returned instance owns its own
// background context.
func New(s settings.Settings, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		settings: s,
		active:   make(map[string]*Job),
		queue:    newAdmissionQueue(),
		slots:    make(chan struct{}, maxInt(s.Orchestrator.MaxConcurrent, 1)),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Close cancels the Coordinator's background context. Every job's
// context derives from it, so a render container still running is
// killed and an in-flight remote staging download is aborted. Close does
// not stop the admission queue from dispatching later submissions.
func (c *Coordinator) Close() {
	c.cancel()
}

// StartRender rejects an output_id that already has a live job (and
// generates one when it is empty), creates a RenderJob in QUEUED,
// enqueues it in the admission queue, and returns a handle. It attempts
// an immediate dispatch in case a slot is free. It does not check the
// shape of paths or of the output_id: those are checked in PREPARE, and
// a rejected request fails the job through OnError/OnComplete.
func (c *Coordinator) StartRender(req Request, callbacks Callbacks) (*Handle, error) {
	if req.OutputID == "" {
		req.OutputID = uuid.NewString()
	}

	c.mu.Lock()
	if _, exists := c.active[req.OutputID]; exists {
		c.mu.Unlock()
		return nil, InternalError("output_id already has a live job", nil)
	}
	c.mu.Unlock()

	job := &Job{
		OutputID:  req.OutputID,
		Config:    req,
		Priority:  req.Priority,
		StartedAt: time.Now(),
		Admitted:  time.Now(),
		Stage:     StageQueued,
		callbacks: callbacks,
		events:    make(chan func(), eventBufferSize),
		doneCh:    make(chan struct{}),
	}

	c.mu.Lock()
	c.active[job.OutputID] = job
	c.mu.Unlock()

	go c.drainEvents(job)

	c.queueMu.Lock()
	c.queue.push(job)
	c.queueMu.Unlock()

	c.dispatch()

	return &Handle{OutputID: job.OutputID}, nil
}

// dispatch admits queued jobs while concurrency slots remain free.
func (c *Coordinator) dispatch() {
	for {
		select {
		case c.slots <- struct{}{}:
		default:
			return
		}

		c.queueMu.Lock()
		job := c.queue.pop()
		c.queueMu.Unlock()

		if job == nil {
			<-c.slots
			return
		}

		go c.runJob(job)
	}
}

// runJob drives a single job through ANALYZE -> PREPARE -> RENDER ->
// VALIDATE -> COMPLETE, releasing its concurrency slot and re-dispatching
// the queue on exit.
func (c *Coordinator) runJob(job *Job) {
	defer func() {
		<-c.slots
		close(job.doneCh)
		c.dispatch()
	}()

	ctx, cancel := context.WithTimeout(c.ctx, c.jobTimeout())
	defer cancel()

	cleanupStaged, err := c.stageRemoteRouteFile(ctx, &job.Config)
	if err != nil {
		c.finishFailed(job, err)
		return
	}
	defer cleanupStaged()

	if job.isCancelRequested() {
		c.finishCanceled(job, "canceled before start")
		return
	}

	if err := c.runAnalyze(job); err != nil {
		c.finishFailed(job, err)
		return
	}
	if job.isCancelRequested() {
		c.finishCanceled(job, "canceled during analysis")
		return
	}

	if err := c.runPrepare(job); err != nil {
		c.finishFailed(job, err)
		return
	}
	if job.isCancelRequested() {
		c.finishCanceled(job, "canceled during prepare")
		return
	}

	if err := c.runRender(ctx, job); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			c.finishFailed(job, TimeoutError("render exceeded job timeout"))
		} else if job.isCancelRequested() {
			c.finishCanceled(job, "canceled during render")
		} else {
			c.finishFailed(job, err)
		}
		return
	}
	if job.isCancelRequested() {
		c.finishCanceled(job, "canceled after render")
		return
	}

	if err := c.runValidate(job); err != nil {
		c.finishFailed(job, err)
		return
	}

	c.finishComplete(job)
}

func (c *Coordinator) jobTimeout() time.Duration {
	if c.settings.Orchestrator.JobTimeoutMS <= 0 {
		return time.Hour
	}
	return time.Duration(c.settings.Orchestrator.JobTimeoutMS) * time.Millisecond
}

func (c *Coordinator) runAnalyze(job *Job) error {
	job.analysisStart = time.Now()
	c.advanceStage(job, StageAnalyze, 10, "analyzing route")

	profile, err := analyzer.Analyze(job.Config.RouteFilePath)
	if err != nil {
		return err
	}
	job.RouteProfile = profile
	job.analysisMS = time.Since(job.analysisStart).Milliseconds()

	c.emitProgress(job, 20, "analysis complete")
	return nil
}

func (c *Coordinator) runPrepare(job *Job) error {
	c.advanceStage(job, StagePrepare, 20, "preparing render config")

	plan := speedplan.Plan(job.RouteProfile, c.settings.Animation)

	cfg, err := configbuilder.Build(job.RouteProfile, plan, configbuilder.Request{
		RouteFilePath: job.Config.RouteFilePath,
		RouteFilename: job.Config.RouteFilename,
		OutputDir:     job.Config.OutputDir,
		OutputID:      job.Config.OutputID,
		UserName:      job.Config.UserName,
	}, c.settings.Recording)
	if err != nil {
		return err
	}
	job.RenderConfig = cfg

	if err := removeStaleOutput(job.Config.OutputDir); err != nil {
		return InternalError("failed to clear stale output", err)
	}

	if err := writeOverlayData(job.Config.OutputDir, job.RouteProfile, plan); err != nil {
		return InternalError("failed to write overlay-data.json", err)
	}

	c.emitProgress(job, 30, "render config ready")
	return nil
}

func (c *Coordinator) runRender(ctx context.Context, job *Job) error {
	job.renderStart = time.Now()
	c.advanceStage(job, StageRender, 30, "launching render container")

	handle, err := execctl.Launch(ctx, job.RenderConfig, c.settings.Memory, execctl.Callbacks{
		OnProgress: func(p *execctl.FrameProgress) {
			c.tryEmitProgress(job, clampToWindow(StageRender, int(p.OverallPercent)), fmt.Sprintf("rendering frame %d/%d", p.Frame, p.TotalFrames))
		},
		OnMemory: func(ev execctl.MemoryEvent) {
			_, current := job.currentStageAndProgress()
			c.tryEmitProgress(job, current, "memory_warning: "+ev.Level)
		},
	})
	if err != nil {
		return err
	}

	job.mu().Lock()
	job.execHandle = handle
	job.mu().Unlock()

	if job.isCancelRequested() {
		_ = handle.Stop()
	}

	result, err := handle.Wait()
	job.renderMS = time.Since(job.renderStart).Milliseconds()
	job.lastExecResult = &result

	if err != nil {
		return err
	}

	c.emitProgress(job, 90, "render complete")
	return nil
}

func (c *Coordinator) runValidate(job *Job) error {
	c.advanceStage(job, StageValidate, 90, "validating output")

	artifact, err := validate.Validate(job.Config.OutputDir, job.lastExecResult)
	if err != nil {
		return err
	}
	job.validatedArtifact = artifact

	c.emitProgress(job, 95, "output validated")
	return nil
}

// CancelRender removes the job from the queue if still queued, or stops
// its executor if running. Idempotent: returns false once the job has
// already reached a terminal state.
func (c *Coordinator) CancelRender(outputID string) (bool, string) {
	c.mu.RLock()
	job, ok := c.active[outputID]
	c.mu.RUnlock()
	if !ok {
		return false, "not found or already terminal"
	}

	job.requestCancel()

	c.queueMu.Lock()
	removedFromQueue := c.queue.remove(outputID)
	c.queueMu.Unlock()

	if removedFromQueue {
		c.finishCanceled(job, "canceled while queued")
		return true, "canceled"
	}

	job.mu().Lock()
	h := job.execHandle
	job.mu().Unlock()
	if h != nil {
		_ = h.Stop()
	}

	return true, "cancellation requested"
}

// GetRenderStatus returns a snapshot of outputID's job, or false if
// unknown.
func (c *Coordinator) GetRenderStatus(outputID string) (Snapshot, bool) {
	c.mu.RLock()
	job, ok := c.active[outputID]
	c.mu.RUnlock()
	if ok {
		return job.snapshot(), true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.history {
		if s.OutputID == outputID {
			return s, true
		}
	}
	return Snapshot{}, false
}

// GetActiveRenders returns a snapshot of every job currently tracked
// (queued or running).
func (c *Coordinator) GetActiveRenders() []Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Snapshot, 0, len(c.active))
	for _, job := range c.active {
		out = append(out, job.snapshot())
	}
	return out
}

// GetStats reports queue depth and running/completed/failed counters.
func (c *Coordinator) GetStats() Stats {
	c.queueMu.Lock()
	queued := c.queue.len()
	c.queueMu.Unlock()

	c.mu.RLock()
	defer c.mu.RUnlock()

	running := 0
	for _, job := range c.active {
		if stage, _ := job.currentStageAndProgress(); stage != StageQueued {
			running++
		}
	}

	return Stats{
		Running:   running,
		Queued:    queued,
		Completed: c.completedN,
		Failed:    c.failedN,
	}
}

// EstimatedWaitSeconds estimates queue delay from jobsAhead and the
// rolling mean render time, falling back to a fixed estimate when no
// render history exists yet.
func (c *Coordinator) EstimatedWaitSeconds(jobsAhead int) int {
	c.mu.RLock()
	mean := c.meanRenderTime()
	c.mu.RUnlock()

	maxConcurrent := c.settings.Orchestrator.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	if mean <= 0 {
		fallback := c.settings.Orchestrator.FallbackWaitS
		if fallback <= 0 {
			fallback = 600
		}
		mean = float64(fallback)
	}

	perSlot := float64(jobsAhead) / float64(maxConcurrent)
	return int(ceilFloat(perSlot * mean))
}

func (c *Coordinator) meanRenderTime() float64 {
	if len(c.renderTimes) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range c.renderTimes {
		total += d
	}
	return (total / time.Duration(len(c.renderTimes))).Seconds()
}

func ceilFloat(v float64) float64 {
	i := int(v)
	if float64(i) < v {
		return float64(i + 1)
	}
	return float64(i)
}

func removeStaleOutput(outputDir string) error {
	path := filepath.Join(outputDir, "route-video.mp4")
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

