// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎
//
// Package process supervises one external tool invocation: it spawns the
// child, drains stdout and stderr concurrently, routes every line through
// the classification pipeline and correlates the exit code with the
// accumulated state.

package process

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ZSC714725/mediaengine/internal/ffmpeg/parse"
)

// Mode selects the wiring and the completion policy of a run
type Mode int

const (
	// ModeTranscode runs the transcoder: diagnostics on stderr, no input
	// channel, success requires the conversion summary marker.
	ModeTranscode Mode = iota
	// ModeMetadata runs the transcoder purely to read the stream banner
	// from the diagnostic channel. Lenient: a missing marker is logged,
	// not failed.
	ModeMetadata
	// ModeProbe runs the dedicated prober: payload on stdout, diagnostics
	// on stderr. Lenient like ModeMetadata.
	ModeProbe
	// ModeRaw runs a fully custom pass-through command. A completion
	// summary fires the completion notification when present, but its
	// absence never fails the run.
	ModeRaw
)

// Request describes one invocation. Immutable once created; owned by the
// supervisor for the duration of the run.
type Request struct {
	Binary  string
	Args    []string
	Mode    Mode
	Input   string // associated input descriptor, carried into events
	OnStart func(pid int)
	OnLine  func(Line)
}

// Line is a timestamped, source-tagged output line
type Line struct {
	Timestamp time.Time `json:"ts"`
	Source    string    `json:"source"` // stdout or stderr
	Data      string    `json:"data"`
}

// TranscriptText flattens captured lines into one diagnostic transcript
func TranscriptText(lines []Line) string {
	var b strings.Builder
	for i, ln := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(ln.Data)
	}
	return b.String()
}

// ErrNoCompletionMarker reports a transcode that exited 0 without the
// expected summary line in its output.
var ErrNoCompletionMarker = errors.New("no completion marker found in output")

// FailureRecord is the terminal failure of one run. It wraps the exit code
// (or the fact that the child was force-terminated), the full captured
// transcript and the originating fault, if the failure came from a
// classification error rather than a nonzero exit.
type FailureRecord struct {
	ExitCode int
	Exited   bool // false when the child was force-terminated
	Killed   bool
	Log      []Line
	Fault    error
	Marker   string // first known-error line seen in the output, if any
}

func (f *FailureRecord) Error() string {
	return fmt.Sprintf("%d: %s", f.ExitCode, TranscriptText(f.Log))
}

func (f *FailureRecord) Unwrap() error { return f.Fault }

// Outcome is the successful result of one run
type Outcome struct {
	// Result is set when the completion marker fired a conversion
	// completion. Nil for lenient runs that succeeded without one.
	Result          *parse.CompletionResult
	Summary         parse.Summary
	Log             []Line
	CompletionFound bool
}
