// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package task

import (
	"context"
	"errors"
	"sync"

	"github.com/ZSC714725/mediaengine/internal/ffmpeg"
	"github.com/ZSC714725/mediaengine/internal/ffmpeg/parse"
	"github.com/ZSC714725/mediaengine/internal/logger"
	"github.com/ZSC714725/mediaengine/internal/media"
	"github.com/ZSC714725/mediaengine/internal/process"

	"github.com/lithammer/shortuuid/v4"
)

// Runner is the engine surface the store needs
type Runner interface {
	Convert(ctx context.Context, input, output string, opts *media.ConversionOptions, hooks *ffmpeg.RunHooks) (*parse.CompletionResult, error)
	Metadata(ctx context.Context, input string, hooks *ffmpeg.RunHooks) (*media.Metadata, error)
	Probe(ctx context.Context, input string, hooks *ffmpeg.RunHooks) (*media.Metadata, error)
	ValidateInput(input string) error
}

// ConvertRequest describes a conversion submission
type ConvertRequest struct {
	Input   string
	Output  string
	Options *media.ConversionOptions
}

// Store manages jobs in memory
type Store interface {
	Convert(req ConvertRequest) (*Job, error)
	Metadata(input string) (*Job, error)
	Probe(input string) (*Job, error)
	Get(id string) (*Job, error)
	List() []*Job
	Cancel(id string) error
	Delete(id string) error
}

type store struct {
	runner   Runner
	logger   logger.Logger
	logLines int
	jobs     map[string]*Job
	mu       sync.RWMutex
}

// NewStore creates a job store
func NewStore(runner Runner, log logger.Logger, logLines int) Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &store{
		runner:   runner,
		logger:   log,
		logLines: logLines,
		jobs:     make(map[string]*Job),
	}
}

func (s *store) Convert(req ConvertRequest) (*Job, error) {
	if req.Input == "" || req.Output == "" {
		return nil, ErrInvalidRequest
	}
	if err := s.runner.ValidateInput(req.Input); err != nil {
		return nil, err
	}

	j := newJob(shortuuid.New(), KindConvert, req.Input, req.Output, req.Options, s.logLines, process.NewSysMonitor())
	s.add(j)

	s.launch(j, func(ctx context.Context, hooks *ffmpeg.RunHooks) error {
		_, err := s.runner.Convert(ctx, req.Input, req.Output, req.Options, hooks)
		return err
	})
	return j, nil
}

func (s *store) Metadata(input string) (*Job, error) {
	if input == "" {
		return nil, ErrInvalidRequest
	}
	if err := s.runner.ValidateInput(input); err != nil {
		return nil, err
	}

	j := newJob(shortuuid.New(), KindMetadata, input, "", nil, s.logLines, process.NewSysMonitor())
	s.add(j)

	s.launch(j, func(ctx context.Context, hooks *ffmpeg.RunHooks) error {
		md, err := s.runner.Metadata(ctx, input, hooks)
		if err == nil && md != nil {
			j.setMetadata(md)
		}
		return err
	})
	return j, nil
}

func (s *store) Probe(input string) (*Job, error) {
	if input == "" {
		return nil, ErrInvalidRequest
	}
	if err := s.runner.ValidateInput(input); err != nil {
		return nil, err
	}

	j := newJob(shortuuid.New(), KindProbe, input, "", nil, s.logLines, process.NewSysMonitor())
	s.add(j)

	s.launch(j, func(ctx context.Context, hooks *ffmpeg.RunHooks) error {
		md, err := s.runner.Probe(ctx, input, hooks)
		if err == nil && md != nil {
			j.setMetadata(md)
		}
		return err
	})
	return j, nil
}

func (s *store) add(j *Job) {
	s.mu.Lock()
	s.jobs[j.ID] = j
	s.mu.Unlock()
}

// launch runs the job asynchronously. The job context is cancellable via
// Cancel, which kills the child process.
func (s *store) launch(j *Job, run func(ctx context.Context, hooks *ffmpeg.RunHooks) error) {
	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel

	hooks := &ffmpeg.RunHooks{
		OnStart: func(pid int) {
			j.setStatus(StatusRunning)
			if err := j.monitor.Attach(pid); err != nil {
				s.logger.Debug("job %s: attach monitor: %v", j.ID, err)
			}
		},
		OnLine: j.appendLine,
		OnEvent: func(ev ffmpeg.Event) {
			switch ev.Kind {
			case ffmpeg.EventProgress:
				j.setProgress(ev.Progress)
			case ffmpeg.EventCompleted:
				j.setResult(ev.Result)
			case ffmpeg.EventProbeCompleted:
				j.setMetadata(ev.Metadata)
			}
		},
	}

	go func() {
		defer cancel()
		err := run(ctx, hooks)
		j.monitor.Detach()

		switch {
		case err == nil:
			j.setStatus(StatusSucceeded)
		case ctx.Err() != nil:
			j.setStatus(StatusCanceled)
			s.logger.Info("job %s canceled", j.ID)
		default:
			var failure *process.FailureRecord
			if errors.As(err, &failure) {
				j.setFailure(failure.Error(), failure.ExitCode)
			} else {
				j.setFailure(err.Error(), 0)
			}
			j.setStatus(StatusFailed)
			s.logger.Error("job %s failed: %v", j.ID, err)
		}
	}()
}

func (s *store) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return j, nil
}

func (s *store) List() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	return out
}

func (s *store) Cancel(id string) error {
	j, err := s.Get(id)
	if err != nil {
		return err
	}
	if j.cancel != nil {
		j.cancel()
	}
	return nil
}

func (s *store) Delete(id string) error {
	j, err := s.Get(id)
	if err != nil {
		return err
	}
	if j.IsRunning() {
		return ErrJobRunning
	}

	s.mu.Lock()
	delete(s.jobs, id)
	s.mu.Unlock()
	return nil
}
