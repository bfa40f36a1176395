package orchestrator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/chicogong/route-recorder/pkg/configbuilder"
	"github.com/chicogong/route-recorder/pkg/execctl"
	"github.com/chicogong/route-recorder/pkg/routemodel"
	"github.com/chicogong/route-recorder/pkg/validate"
)

// Stage is one of the finite pipeline stages a job passes through, in
// strict forward order; FAILED and CANCELED are terminal states reached
// from any stage.
type Stage string

const (
	StageQueued   Stage = "QUEUED"
	StageAnalyze  Stage = "ANALYZE"
	StagePrepare  Stage = "PREPARE"
	StageRender   Stage = "RENDER"
	StageValidate Stage = "VALIDATE"
	StageComplete Stage = "COMPLETE"
	StageFailed   Stage = "FAILED"
	StageCanceled Stage = "CANCELED"
)

// stageWindow is the contractual [lo,hi] overall-progress interval for a
// stage.
type stageWindow struct{ lo, hi int }

var stageWindows = map[Stage]stageWindow{
	StageQueued:   {0, 0},
	StageAnalyze:  {10, 20},
	StagePrepare:  {20, 30},
	StageRender:   {30, 90},
	StageValidate: {90, 95},
	StageComplete: {95, 100},
}

// pipelineOrder is the strict forward sequence on_stage_change events
// must follow.
var pipelineOrder = []Stage{StageQueued, StageAnalyze, StagePrepare, StageRender, StageValidate, StageComplete}

func (s Stage) isTerminal() bool {
	return s == StageComplete || s == StageFailed || s == StageCanceled
}

// Completion is the tagged-union result of a finished job: exactly one
// of Success or Failure is non-nil.
type Completion struct {
	Success *SuccessInfo
	Failure *FailureInfo
}

// SuccessInfo is the Completion record assembled on COMPLETE.
type SuccessInfo struct {
	VideoURL           string
	FileSizeBytes      int64
	AnimationSpeed     int
	VideoDurationS     int
	RouteDurationMin   float64
	VideoWidth         int
	VideoHeight        int
	AnalysisMS         int64
	RenderMS           int64
	MemorySummary      execctl.MemorySummary
	LogsURL            string
}

// FailureInfo is the Completion record assembled on FAILED/CANCELED.
type FailureInfo struct {
	Kind       string
	Detail     string
	StdoutTail string
	StderrTail string
}

// Job is the orchestrator's live record of a single render from
// submission to terminal state.
type Job struct {
	OutputID  string
	Config    Request
	Priority  int
	StartedAt time.Time
	Admitted  time.Time

	Stage           Stage
	ProgressPercent int
	CurrentMessage  string

	cancelRequested atomic.Bool

	RouteProfile *routemodel.RouteProfile
	RenderConfig *configbuilder.RenderConfig

	Completion *Completion

	analysisStart time.Time
	analysisMS    int64
	renderStart   time.Time
	renderMS      int64

	stateMu           sync.Mutex
	execHandle        *execctl.ExecHandle
	lastExecResult    *execctl.ExecResult
	validatedArtifact *validate.Artifact

	callbacks Callbacks
	events    chan func()
	doneCh    chan struct{}
}

// mu guards every field read concurrently by the owning run-loop
// goroutine and by readers calling GetRenderStatus/GetActiveRenders/
// CancelRender from outside it: Stage, ProgressPercent, CurrentMessage,
// Completion, and execHandle.
func (j *Job) mu() *sync.Mutex {
	return &j.stateMu
}

// setStage atomically updates Stage/ProgressPercent/CurrentMessage.
func (j *Job) setStage(stage Stage, percent int, message string) {
	j.mu().Lock()
	defer j.mu().Unlock()
	j.Stage = stage
	j.ProgressPercent = percent
	j.CurrentMessage = message
}

// setProgress atomically updates ProgressPercent/CurrentMessage within
// the current stage.
func (j *Job) setProgress(percent int, message string) {
	j.mu().Lock()
	defer j.mu().Unlock()
	j.ProgressPercent = percent
	j.CurrentMessage = message
}

// currentStageAndProgress reads Stage/ProgressPercent together so
// monotonicity checks see a consistent pair.
func (j *Job) currentStageAndProgress() (Stage, int) {
	j.mu().Lock()
	defer j.mu().Unlock()
	return j.Stage, j.ProgressPercent
}

// setCompletion atomically sets Stage, CurrentMessage, and Completion
// together for a terminal transition.
func (j *Job) setCompletion(stage Stage, message string, completion *Completion) {
	j.mu().Lock()
	defer j.mu().Unlock()
	j.Stage = stage
	j.CurrentMessage = message
	j.Completion = completion
}

// requestCancel and isCancelRequested synchronize CancelRender's request
// with the run loop's own goroutine via an atomic flag rather than a
// mutex, since it's a single one-way bool.
func (j *Job) requestCancel() {
	j.cancelRequested.Store(true)
}

func (j *Job) isCancelRequested() bool {
	return j.cancelRequested.Load()
}

// Snapshot is an immutable, deep-copied view of a Job safe to hand to
// readers outside the owning goroutine.
type Snapshot struct {
	OutputID        string
	Stage           Stage
	ProgressPercent int
	CurrentMessage  string
	ElapsedMS       int64
	LogsURL         string
	Completion      *Completion
}

func (j *Job) snapshot() Snapshot {
	j.mu().Lock()
	defer j.mu().Unlock()

	var completion *Completion
	if j.Completion != nil {
		c := Completion{}
		if j.Completion.Success != nil {
			s := *j.Completion.Success
			c.Success = &s
		}
		if j.Completion.Failure != nil {
			f := *j.Completion.Failure
			c.Failure = &f
		}
		completion = &c
	}
	return Snapshot{
		OutputID:        j.OutputID,
		Stage:           j.Stage,
		ProgressPercent: j.ProgressPercent,
		CurrentMessage:  j.CurrentMessage,
		ElapsedMS:       time.Since(j.StartedAt).Milliseconds(),
		LogsURL:         logsURL(j.Config.OutputDir, j.OutputID),
		Completion:      completion,
	}
}

func logsURL(outputDir, outputID string) string {
	return "/output/" + outputID + "/recorder.log"
}

// clampToWindow clamps percent into stage's contractual progress window.
func clampToWindow(stage Stage, percent int) int {
	w, ok := stageWindows[stage]
	if !ok {
		return percent
	}
	if percent < w.lo {
		return w.lo
	}
	if percent > w.hi {
		return w.hi
	}
	return percent
}
