// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package parse

import "time"

// Outcome is the terminal state of one run. It transitions exactly once,
// from Running to Succeeded or Failed.
type Outcome int

const (
	Running Outcome = iota
	Succeeded
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "running"
	}
}

// ProgressSnapshot is a point-in-time extraction from a single progress
// line. Snapshots are independent; each one supersedes the previous.
type ProgressSnapshot struct {
	Frame         uint64         `json:"frame"`
	FPS           float64        `json:"fps"`
	Quantizer     float64        `json:"q"`
	SizeKB        uint64         `json:"size_kb"`
	Elapsed       time.Duration  `json:"elapsed_ns"`
	BitrateKbps   float64        `json:"bitrate_kbps"`
	TotalDuration time.Duration  `json:"total_duration_ns"`
	Fraction      float64        `json:"fraction"`
	FractionKnown bool           `json:"fraction_known"`
	Known         ProgressFields `json:"-"`
}

// CompletionResult is produced at most once per run
type CompletionResult struct {
	TotalDuration time.Duration `json:"total_duration_ns"`
	Frame         uint64        `json:"frame"`
	AverageFPS    float64       `json:"average_fps"`
	SizeKB        uint64        `json:"size_kb"`
	BitrateKbps   float64       `json:"bitrate_kbps"`
	Width         int           `json:"width"`
	Height        int           `json:"height"`
}

// NotificationKind tags a Notification
type NotificationKind int

const (
	NotifyProgress NotificationKind = iota
	NotifyCompleted
)

// Notification is emitted by the accumulator: any number of progress
// notifications, at most one completion, none after failure.
type Notification struct {
	Kind     NotificationKind
	Progress ProgressSnapshot
	Result   CompletionResult
}

// Summary is the cumulative knowledge gathered over one run
type Summary struct {
	Duration     time.Duration
	HasDuration  bool
	Video        *VideoStreamUpdate
	Audio        *AudioStreamUpdate
	LastProgress ProgressSnapshot
	HasProgress  bool
	ErrorMarker  string
}

// State is the mutable per-run accumulator. It is owned by exactly one
// supervisor for the lifetime of one invocation and must not be reused.
type State struct {
	total        time.Duration
	haveTotal    bool
	video        *VideoStreamUpdate
	audio        *AudioStreamUpdate
	last         ProgressSnapshot
	haveProgress bool
	marker       string
	outcome      Outcome
	completed    bool
}

// NewState creates an accumulator for a single run
func NewState() *State {
	return &State{}
}

// KnowsDuration reports whether the authoritative total duration is set
func (s *State) KnowsDuration() bool { return s.haveTotal }

// Outcome returns the current terminal state
func (s *State) Outcome() Outcome { return s.outcome }

// Summary returns the cumulative knowledge gathered so far
func (s *State) Summary() Summary {
	return Summary{
		Duration:     s.total,
		HasDuration:  s.haveTotal,
		Video:        s.video,
		Audio:        s.audio,
		LastProgress: s.last,
		HasProgress:  s.haveProgress,
		ErrorMarker:  s.marker,
	}
}

// Fold applies one partial update and returns the notification it implies,
// if any. After the outcome turns terminal, Fold is a no-op.
func (s *State) Fold(u Update) *Notification {
	if s.outcome != Running {
		return nil
	}

	switch u := u.(type) {
	case DurationUpdate:
		// First match wins. Later duration-looking lines must not
		// overwrite the authoritative total.
		if !s.haveTotal {
			s.total = u.Total
			s.haveTotal = true
		}
	case VideoStreamUpdate:
		if s.video == nil {
			v := u
			s.video = &v
		}
	case AudioStreamUpdate:
		if s.audio == nil {
			a := u
			s.audio = &a
		}
	case ErrorMarkerUpdate:
		if s.marker == "" {
			s.marker = u.Line
		}
	case ProgressUpdate:
		snap := ProgressSnapshot{
			Frame:       u.Frame,
			FPS:         u.FPS,
			Quantizer:   u.Quantizer,
			SizeKB:      u.SizeKB,
			Elapsed:     u.Elapsed,
			BitrateKbps: u.BitrateKbps,
			Known:       u.Known,
		}
		if s.haveTotal {
			snap.TotalDuration = s.total
			if u.Known.Has(FieldTime) && s.total > 0 {
				snap.Fraction = float64(u.Elapsed) / float64(s.total)
				if snap.Fraction > 1 {
					snap.Fraction = 1
				}
				snap.FractionKnown = true
			}
		}
		s.last = snap
		s.haveProgress = true
		// One notification per progress-shaped line, no debounce.
		return &Notification{Kind: NotifyProgress, Progress: snap}
	}
	return nil
}

// Complete runs post-hoc completion detection over the full accumulated log.
// It fires at most once per run and marks the outcome Succeeded.
func (s *State) Complete(log string) *Notification {
	if s.outcome != Running || s.completed {
		return nil
	}
	summary, ok := CompletionFrom(log)
	if !ok {
		return nil
	}
	s.completed = true
	s.outcome = Succeeded

	result := CompletionResult{
		TotalDuration: s.total,
		SizeKB:        summary.SizeKB,
		BitrateKbps:   summary.BitrateKbps,
	}
	if !s.haveTotal {
		result.TotalDuration = summary.Elapsed
	}
	if s.haveProgress {
		result.Frame = s.last.Frame
		result.AverageFPS = s.last.FPS
	}
	if s.video != nil {
		result.Width = s.video.Width
		result.Height = s.video.Height
	}
	return &Notification{Kind: NotifyCompleted, Result: result}
}

// MarkSucceeded finalizes the run without a completion notification (the
// lenient prober path). No-op once terminal.
func (s *State) MarkSucceeded() {
	if s.outcome == Running {
		s.outcome = Succeeded
	}
}

// MarkFailed finalizes the run as failed. No further folds or completions
// are applied afterwards.
func (s *State) MarkFailed() {
	if s.outcome == Running {
		s.outcome = Failed
	}
}
