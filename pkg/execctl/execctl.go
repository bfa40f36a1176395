// Package execctl implements the Container Executor: it runs the render
// container as a child process, streams its output to disk and to
// bounded in-memory tails, translates frame-progress lines into overall
// progress events, and supervises the child's memory footprint.
package execctl

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"time"

	"github.com/chicogong/route-recorder/pkg/configbuilder"
)

// Callbacks are invoked from the executor's own goroutines as the child
// runs. Implementations must not block.
type Callbacks struct {
	OnProgress func(*FrameProgress)
	OnLog      func(line string)
	OnMemory   func(MemoryEvent)
}

// MemorySettings mirrors the "memory" block of the orchestrator's
// Settings struct.
type MemorySettings struct {
	CheckIntervalMS     int
	WarningThresholdMB  float64
	CriticalThresholdMB float64
	SampleCapacity      int
}

// ExecResult is what Launch's handle resolves to once the child exits.
type ExecResult struct {
	ExitCode    int
	DurationMS  int64
	StdoutTail  string
	StderrTail  string
	Memory      MemorySummary
}

// ExecHandle represents one running (or finished) child invocation.
type ExecHandle struct {
	cmd     *exec.Cmd
	monitor *MemoryMonitor
	logs    *jobLogFiles
	done    chan execOutcome
}

type execOutcome struct {
	result ExecResult
	err    error
}

// Launch starts the render container for cfg and begins streaming its
// output. Call Wait to block for completion or Stop to cancel it early.
func Launch(ctx context.Context, cfg *configbuilder.RenderConfig, memSettings MemorySettings, callbacks Callbacks) (*ExecHandle, error) {
	useGPU := gpuAvailable()
	args := buildArgv(cfg, useGPU)

	cmd := exec.CommandContext(ctx, "docker", args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, SpawnError("failed to create stdout pipe", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, SpawnError("failed to create stderr pipe", err)
	}

	logs, err := openJobLogFiles(cfg.OutputDir)
	if err != nil {
		return nil, SpawnError("failed to open log files", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		logs.Close()
		return nil, SpawnError("failed to start container", err)
	}

	monitor := NewMemoryMonitor(cmd.Process.Pid, memSettings.CheckIntervalMS, memSettings.WarningThresholdMB, memSettings.CriticalThresholdMB, memSettings.SampleCapacity, callbacks.OnMemory)
	monitor.Start()

	handle := &ExecHandle{cmd: cmd, monitor: monitor, logs: logs, done: make(chan execOutcome, 1)}

	go handle.run(stdout, stderr, start, callbacks)

	return handle, nil
}

func (h *ExecHandle) run(stdout, stderr io.Reader, start time.Time, callbacks Callbacks) {
	parser := newFrameLineParser()

	var stdoutTail, stderrTail tailBuffer

	stdoutDone := make(chan error, 1)
	go func() {
		stdoutDone <- streamLines(stdout, func(line string) {
			stdoutTail.Write([]byte(line + "\n"))
			h.logs.writeStdout(line)
			if progress := parser.ParseLine(line); progress != nil && callbacks.OnProgress != nil {
				callbacks.OnProgress(progress)
			}
			if callbacks.OnLog != nil {
				callbacks.OnLog(line)
			}
		})
	}()

	stderrDone := make(chan error, 1)
	go func() {
		stderrDone <- streamLines(stderr, func(line string) {
			stderrTail.Write([]byte(line + "\n"))
			h.logs.writeStderr(line)
			if callbacks.OnLog != nil {
				callbacks.OnLog(line)
			}
		})
	}()

	cmdErr := h.cmd.Wait()

	<-stdoutDone
	<-stderrDone

	h.monitor.Stop()

	result := ExecResult{
		DurationMS: time.Since(start).Milliseconds(),
		StdoutTail: stdoutTail.String(),
		StderrTail: stderrTail.String(),
		Memory:     h.monitor.Summary(),
	}

	var outErr error
	if cmdErr != nil {
		if exitErr, ok := cmdErr.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			outErr = &ContainerExitError{ExitCode: result.ExitCode}
		} else {
			outErr = ContainerIOError("container wait failed", cmdErr)
		}
	}

	if result.ExitCode != 0 {
		h.logs.writeErrorLog(result.StderrTail)
	}
	h.logs.Close()

	h.done <- execOutcome{result: result, err: outErr}
}

// Wait blocks until the child exits and returns its ExecResult. A
// nonzero exit code is reported both as the ExecResult and as a non-nil
// *ContainerExitError.
func (h *ExecHandle) Wait() (ExecResult, error) {
	outcome := <-h.done
	return outcome.result, outcome.err
}

// Stop kills the child process; the memory monitor is stopped by the
// streaming goroutine once the child has exited. Stop does not wait for
// the child to exit (call Wait for that).
func (h *ExecHandle) Stop() error {
	if h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Kill()
}

func streamLines(reader io.Reader, onLine func(string)) error {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		onLine(scanner.Text())
	}
	return scanner.Err()
}
