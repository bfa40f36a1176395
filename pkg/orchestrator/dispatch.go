package orchestrator

import (
	"time"

	"github.com/chicogong/route-recorder/pkg/errkind"
)

// drainEvents is the single goroutine that serializes every callback
// invocation for one job. Progress events are posted with a non-blocking
// send from hot paths (the executor's stdout reader); stage-change,
// error, and completion events are posted with a blocking send so they
// are never silently dropped.
func (c *Coordinator) drainEvents(job *Job) {
	for fn := range job.events {
		fn()
	}
}

func (c *Coordinator) postBlocking(job *Job, fn func()) {
	select {
	case job.events <- fn:
	case <-job.doneCh:
	}
}

func (c *Coordinator) postBestEffort(job *Job, fn func()) {
	select {
	case job.events <- fn:
	default:
	}
}

// advanceStage moves a job to a new stage, clamps the floor progress
// into that stage's window, and fires OnStageChange.
func (c *Coordinator) advanceStage(job *Job, stage Stage, floorPercent int, message string) {
	percent := clampToWindow(stage, floorPercent)
	job.setStage(stage, percent, message)

	cb := job.callbacks.OnStageChange
	c.postBlocking(job, func() {
		if cb != nil {
			cb(string(stage), percent, message)
		}
	})
}

// emitProgress updates progress within the job's current stage window
// and always delivers the callback.
func (c *Coordinator) emitProgress(job *Job, percent int, message string) {
	stage, _ := job.currentStageAndProgress()
	clamped := clampToWindow(stage, percent)
	job.setProgress(clamped, message)

	cb := job.callbacks.OnProgress
	c.postBlocking(job, func() {
		if cb != nil {
			cb(clamped, message)
		}
	})
}

// tryEmitProgress is the high-frequency variant used from the executor's
// stdout-reading goroutine: progress must never fall below the previous
// value (monotonicity), and delivery is best-effort so a slow consumer
// cannot stall container I/O.
func (c *Coordinator) tryEmitProgress(job *Job, percent int, message string) {
	stage, current := job.currentStageAndProgress()
	clamped := clampToWindow(stage, percent)
	if clamped < current {
		clamped = current
	}
	job.setProgress(clamped, message)

	cb := job.callbacks.OnProgress
	c.postBestEffort(job, func() {
		if cb != nil {
			cb(clamped, message)
		}
	})
}

func (c *Coordinator) finishComplete(job *Job) {
	var fileSize int64
	if job.validatedArtifact != nil {
		fileSize = job.validatedArtifact.SizeBytes
	}

	success := &SuccessInfo{
		VideoURL:         "/output/" + job.OutputID + "/route-video.mp4",
		FileSizeBytes:    fileSize,
		AnimationSpeed:   job.RenderConfig.AnimationSpeed,
		VideoDurationS:   job.RenderConfig.VideoDurationS,
		RouteDurationMin: job.RouteProfile.DurationMinutes(),
		VideoWidth:       job.RenderConfig.Width,
		VideoHeight:      job.RenderConfig.Height,
		AnalysisMS:       job.analysisMS,
		RenderMS:         job.renderMS,
		LogsURL:          logsURL(job.Config.OutputDir, job.OutputID),
	}
	if job.lastExecResult != nil {
		success.MemorySummary = job.lastExecResult.Memory
	}
	completion := &Completion{Success: success}
	job.setCompletion(StageComplete, "render complete", completion)
	job.setProgress(100, "render complete")

	c.archiveOutput(job)

	c.mu.Lock()
	c.renderTimes = append(c.renderTimes, time.Duration(job.renderMS)*time.Millisecond)
	c.mu.Unlock()

	cb := job.callbacks.OnComplete
	result := *completion
	c.postBlocking(job, func() {
		if cb != nil {
			cb(result)
		}
	})

	c.retire(job, true)
}

func (c *Coordinator) finishFailed(job *Job, err error) {
	kind := string(errkind.KindOf(err))
	var stdoutTail, stderrTail string
	if job.lastExecResult != nil {
		stdoutTail = job.lastExecResult.StdoutTail
		stderrTail = job.lastExecResult.StderrTail
	}

	completion := &Completion{Failure: &FailureInfo{
		Kind:       kind,
		Detail:     err.Error(),
		StdoutTail: stdoutTail,
		StderrTail: stderrTail,
	}}
	job.setCompletion(StageFailed, err.Error(), completion)

	cb := job.callbacks.OnError
	detail := err.Error()
	c.postBlocking(job, func() {
		if cb != nil {
			cb(kind, detail)
		}
	})

	onComplete := job.callbacks.OnComplete
	result := *completion
	c.postBlocking(job, func() {
		if onComplete != nil {
			onComplete(result)
		}
	})

	c.retire(job, false)
}

func (c *Coordinator) finishCanceled(job *Job, reason string) {
	kind := string(errkind.KindCanceled)
	completion := &Completion{Failure: &FailureInfo{
		Kind:   kind,
		Detail: reason,
	}}
	job.setCompletion(StageCanceled, reason, completion)

	onError := job.callbacks.OnError
	c.postBlocking(job, func() {
		if onError != nil {
			onError(kind, reason)
		}
	})

	cb := job.callbacks.OnComplete
	result := *completion
	c.postBlocking(job, func() {
		if cb != nil {
			cb(result)
		}
	})

	c.retire(job, false)
}

// retire moves a terminal job out of the active map into bounded
// history, closes its event channel once the drain goroutine has
// consumed every pending event, and updates the completed/failed
// counters.
func (c *Coordinator) retire(job *Job, success bool) {
	snap := job.snapshot()

	c.mu.Lock()
	delete(c.active, job.OutputID)
	c.history = append(c.history, snap)
	if len(c.history) > historyCap {
		c.history = c.history[len(c.history)-historyCap:]
	}
	if success {
		c.completedN++
	} else {
		c.failedN++
	}
	c.mu.Unlock()

	close(job.events)
}
