// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎
//
// Package ffmpeg is the orchestrator: it selects transcoder vs. prober
// wiring, assembles the invocation and re-emits supervisor notifications
// as engine events with the request context attached.

package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/ZSC714725/mediaengine/internal/ffmpeg/parse"
	"github.com/ZSC714725/mediaengine/internal/logger"
	"github.com/ZSC714725/mediaengine/internal/media"
	"github.com/ZSC714725/mediaengine/internal/process"
)

// ErrInputNotFound marks an input that neither exists locally nor matches
// a recognized remote address. Raised before any process is spawned.
var ErrInputNotFound = errors.New("input does not exist and is not a remote address")

// EventKind tags an engine event
type EventKind int

const (
	EventProgress EventKind = iota
	EventCompleted
	EventProbeCompleted
)

// Event is a public notification with request context attached
type Event struct {
	Kind     EventKind
	Input    string
	Progress parse.ProgressSnapshot
	Result   parse.CompletionResult
	Metadata *media.Metadata
}

// RunHooks observe one operation's child process and events. All fields
// are optional.
type RunHooks struct {
	OnStart func(pid int)
	OnLine  func(process.Line)
	OnEvent func(Event)
}

func (h *RunHooks) emit(ev Event) {
	if h != nil && h.OnEvent != nil {
		h.OnEvent(ev)
	}
}

// Config for the engine
type Config struct {
	Binary      string
	ProbeBinary string
	Logger      logger.Logger
}

// Engine exposes the high-level conversion and probing operations
type Engine struct {
	binary      string
	probeBinary string
	info        VersionInfo
	validator   Validator
	logger      logger.Logger
	sup         *process.Supervisor
}

// New creates an Engine. Missing executables are a fatal configuration
// error and are reported immediately.
func New(cfg Config) (*Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	binary, err := exec.LookPath(cfg.Binary)
	if err != nil {
		return nil, fmt.Errorf("invalid ffmpeg binary: %w", err)
	}
	probeBinary, err := exec.LookPath(cfg.ProbeBinary)
	if err != nil {
		return nil, fmt.Errorf("invalid ffprobe binary: %w", err)
	}

	info, err := Version(binary)
	if err != nil {
		return nil, fmt.Errorf("invalid ffmpeg: %w", err)
	}

	return &Engine{
		binary:      binary,
		probeBinary: probeBinary,
		info:        info,
		validator:   NewRemoteValidator(),
		logger:      log,
		sup:         process.NewSupervisor(log),
	}, nil
}

// About returns the detected transcoder version info
func (e *Engine) About() VersionInfo {
	return e.info
}

// ValidateInput checks that the input exists locally or is a recognized
// remote address
func (e *Engine) ValidateInput(input string) error {
	if e.validator.IsRemote(input) {
		return nil
	}
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("%w: %s", ErrInputNotFound, input)
	}
	return nil
}

// Convert transcodes input to output with the given options. It blocks
// until the child process exits; progress and completion events are
// delivered through hooks while it runs.
func (e *Engine) Convert(ctx context.Context, input, output string, opts *media.ConversionOptions, hooks *RunHooks) (*parse.CompletionResult, error) {
	if err := e.ValidateInput(input); err != nil {
		return nil, err
	}

	req := process.Request{
		Binary: e.binary,
		Args:   media.ConvertArguments(input, output, opts),
		Mode:   process.ModeTranscode,
		Input:  input,
	}
	out, err := e.run(ctx, req, hooks)
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}

// ConvertDefault transcodes with default options
func (e *Engine) ConvertDefault(ctx context.Context, input, output string, hooks *RunHooks) (*parse.CompletionResult, error) {
	return e.Convert(ctx, input, output, media.DefaultOptions(), hooks)
}

// Metadata retrieves media metadata via the transcoder's diagnostic
// channel. A run that exits 0 without announcing any stream info returns
// nil metadata and no error; the omission is logged, not raised.
func (e *Engine) Metadata(ctx context.Context, input string, hooks *RunHooks) (*media.Metadata, error) {
	if err := e.ValidateInput(input); err != nil {
		return nil, err
	}

	req := process.Request{
		Binary: e.binary,
		Args:   media.MetadataArguments(input),
		Mode:   process.ModeMetadata,
		Input:  input,
	}
	out, err := e.run(ctx, req, hooks)
	if err != nil {
		return nil, err
	}
	if !out.CompletionFound {
		return nil, nil
	}

	md := metadataFromSummary(out.Summary)
	hooks.emit(Event{Kind: EventProbeCompleted, Input: input, Metadata: md})
	return md, nil
}

// Probe retrieves media metadata via the dedicated prober. Same lenient
// policy as Metadata when the payload is missing despite exit 0.
func (e *Engine) Probe(ctx context.Context, input string, hooks *RunHooks) (*media.Metadata, error) {
	if err := e.ValidateInput(input); err != nil {
		return nil, err
	}

	req := process.Request{
		Binary: e.probeBinary,
		Args:   media.ProbeArguments(input),
		Mode:   process.ModeProbe,
		Input:  input,
	}
	out, err := e.run(ctx, req, hooks)
	if err != nil {
		return nil, err
	}
	if !out.CompletionFound {
		return nil, nil
	}

	res, err := decodeProbePayload(out.Log)
	if err != nil {
		return nil, err
	}
	md := metadataFromProbe(res)
	hooks.emit(Event{Kind: EventProbeCompleted, Input: input, Metadata: md})
	return md, nil
}

// Raw issues a pass-through command against the transcoder. The serialized
// argument string is used as-is; no global flags are prepended.
func (e *Engine) Raw(ctx context.Context, rawArgs string, hooks *RunHooks) (*process.Outcome, error) {
	req := process.Request{
		Binary: e.binary,
		Args:   media.SplitRaw(rawArgs),
		Mode:   process.ModeRaw,
	}
	return e.run(ctx, req, hooks)
}

func (e *Engine) run(ctx context.Context, req process.Request, hooks *RunHooks) (*process.Outcome, error) {
	if hooks != nil {
		req.OnStart = hooks.OnStart
		req.OnLine = hooks.OnLine
	}

	sink := func(n parse.Notification) {
		switch n.Kind {
		case parse.NotifyProgress:
			hooks.emit(Event{Kind: EventProgress, Input: req.Input, Progress: n.Progress})
		case parse.NotifyCompleted:
			hooks.emit(Event{Kind: EventCompleted, Input: req.Input, Result: n.Result})
		}
	}

	return e.sup.Run(ctx, req, sink)
}

// metadataFromSummary maps accumulated diagnostic-channel knowledge onto
// media metadata
func metadataFromSummary(s parse.Summary) *media.Metadata {
	md := &media.Metadata{Duration: s.Duration}
	if s.Video != nil {
		v := media.VideoInfo{
			Codec:     s.Video.Codec,
			Width:     s.Video.Width,
			Height:    s.Video.Height,
			FrameRate: s.Video.FrameRate,
		}
		md.Video = &v
		md.Width = v.Width
		md.Height = v.Height
		md.FPS = v.FrameRate
	}
	if s.Audio != nil {
		a := media.AudioInfo{
			Codec:      s.Audio.Codec,
			SampleRate: s.Audio.SampleRate,
			Channels:   s.Audio.Channels,
		}
		md.Audio = &a
	}
	if s.HasProgress {
		md.FrameCount = s.LastProgress.Frame
		md.SizeKB = s.LastProgress.SizeKB
		md.BitrateKbps = s.LastProgress.BitrateKbps
	}
	if md.FrameCount == 0 && md.FPS > 0 && md.Duration > 0 {
		md.FrameCount = uint64(md.FPS * md.Duration.Seconds())
	}
	return md
}
