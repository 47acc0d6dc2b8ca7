// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package process

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/ZSC714725/mediaengine/internal/ffmpeg/parse"
	"github.com/ZSC714725/mediaengine/internal/logger"
)

// Supervisor runs one child process per Run call. One Run owns one child
// handle and one accumulator; neither is shared across invocations.
type Supervisor struct {
	logger logger.Logger

	// classify is replaceable in tests to inject classification faults
	classify func(line string, knowDuration bool) ([]parse.Update, error)
}

// NewSupervisor creates a supervisor
func NewSupervisor(log logger.Logger) *Supervisor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Supervisor{
		logger:   log,
		classify: parse.Classify,
	}
}

// Run spawns the child described by req, drains both output channels
// concurrently through the classifier/accumulator pipeline, waits for exit
// and converts exit code, captured log and any in-flight fault into a final
// outcome. It blocks until the child has terminated and classification is
// final. Cancelling ctx kills the child.
//
// Notifications are delivered to sink in classification order. No
// notification is ever delivered after a failure has been finalized.
func (s *Supervisor) Run(ctx context.Context, req Request, sink func(parse.Notification)) (*Outcome, error) {
	if len(req.Binary) == 0 {
		return nil, fmt.Errorf("no valid binary given")
	}

	cmd := exec.CommandContext(ctx, req.Binary, req.Args...)
	cmd.Env = []string{}
	// The transcoder gets no input channel; -nostdin is already part of
	// the serialized arguments for non-raw runs.

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", req.Binary, err)
	}

	if req.OnStart != nil {
		req.OnStart(cmd.Process.Pid)
	}

	// Both channels are read line-by-line on their own goroutine. The
	// readers never touch shared state: they hand tagged lines to the
	// single consumer below, which owns the transcript and the
	// accumulator. Ordering holds within a channel, not across channels.
	lines := make(chan Line, 64)
	var wg sync.WaitGroup
	var scanErr error
	var scanOnce sync.Once

	readPipe := func(source string, r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Split(splitLines)
		for scanner.Scan() {
			lines <- Line{Timestamp: time.Now(), Source: source, Data: scanner.Text()}
		}
		if err := scanner.Err(); err != nil {
			scanOnce.Do(func() { scanErr = err })
		}
	}

	wg.Add(2)
	go readPipe("stdout", stdout)
	go readPipe("stderr", stderr)
	go func() {
		wg.Wait()
		close(lines)
	}()

	state := parse.NewState()
	var transcript []Line
	var fault error

	for ln := range lines {
		transcript = append(transcript, ln)
		if req.OnLine != nil {
			req.OnLine(ln)
		}
		if fault != nil {
			// Keep draining so the transcript is complete and the
			// readers can finish, but classify nothing further.
			continue
		}
		updates, err := s.classify(ln.Data, state.KnowsDuration())
		if err != nil {
			fault = err
			s.kill(cmd)
			continue
		}
		for _, u := range updates {
			if n := state.Fold(u); n != nil && sink != nil {
				sink(*n)
			}
		}
	}

	if fault == nil && scanErr != nil {
		fault = fmt.Errorf("read output: %w", scanErr)
		s.kill(cmd)
	}

	// Always wait, even on the fault path, so the handle is released.
	waitErr := cmd.Wait()
	exitCode, exited := exitStatus(waitErr)

	if fault == nil && ctx.Err() != nil {
		fault = ctx.Err()
	}

	if fault != nil || exitCode != 0 || !exited {
		state.MarkFailed()
		return nil, &FailureRecord{
			ExitCode: exitCode,
			Exited:   exited,
			Killed:   fault != nil || !exited,
			Log:      transcript,
			Fault:    fault,
			Marker:   state.Summary().ErrorMarker,
		}
	}

	logText := TranscriptText(transcript)
	out := &Outcome{Log: transcript}

	switch req.Mode {
	case ModeTranscode:
		n := state.Complete(logText)
		if n == nil {
			state.MarkFailed()
			return nil, &FailureRecord{
				ExitCode: exitCode,
				Exited:   true,
				Log:      transcript,
				Fault:    ErrNoCompletionMarker,
				Marker:   state.Summary().ErrorMarker,
			}
		}
		result := n.Result
		out.Result = &result
		out.CompletionFound = true
		if sink != nil {
			sink(*n)
		}
	case ModeMetadata:
		// Lenient: exit 0 without a detected stream banner is logged,
		// not failed, and no completion fires.
		out.CompletionFound = state.KnowsDuration()
		if !out.CompletionFound {
			s.logger.Warn("metadata run %s exited 0 without completion marker", req.Input)
		}
		state.MarkSucceeded()
	case ModeProbe:
		out.CompletionFound = parse.ProbeCompleted(logText)
		if !out.CompletionFound {
			s.logger.Warn("probe run %s exited 0 without completion marker", req.Input)
		}
		state.MarkSucceeded()
	case ModeRaw:
		if n := state.Complete(logText); n != nil {
			result := n.Result
			out.Result = &result
			out.CompletionFound = true
			if sink != nil {
				sink(*n)
			}
		} else {
			state.MarkSucceeded()
		}
	}

	out.Summary = state.Summary()
	return out, nil
}

// kill terminates the child after a fault. Errors from the attempt are
// swallowed: the process may have exited on its own already.
func (s *Supervisor) kill(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := cmd.Process.Kill(); err != nil {
		s.logger.Debug("kill after fault: %v", err)
	}
}

// exitStatus maps the Wait error to (code, exited). exited is false when
// the child was terminated by a signal instead of exiting.
func exitStatus(err error) (int, bool) {
	if err == nil {
		return 0, true
	}
	if exiterr, ok := err.(*exec.ExitError); ok {
		code := exiterr.ExitCode()
		if code < 0 {
			return code, false
		}
		return code, true
	}
	return -1, false
}
