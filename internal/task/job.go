// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package task

import (
	"container/ring"
	"sync"
	"time"

	"github.com/ZSC714725/mediaengine/internal/ffmpeg/parse"
	"github.com/ZSC714725/mediaengine/internal/media"
	"github.com/ZSC714725/mediaengine/internal/process"
)

// Kind of a job
type Kind string

const (
	KindConvert  Kind = "convert"
	KindMetadata Kind = "metadata"
	KindProbe    Kind = "probe"
)

// Status of a job
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Job is one submitted conversion or probe run
type Job struct {
	ID        string
	Kind      Kind
	Input     string
	Output    string
	Options   *media.ConversionOptions
	CreatedAt int64

	mu           sync.RWMutex
	updatedAt    int64
	status       Status
	progress     parse.ProgressSnapshot
	haveProgress bool
	result       *parse.CompletionResult
	metadata     *media.Metadata
	failure      string
	exitCode     int
	log          *ring.Ring
	logLines     int
	monitor      process.Monitor
	cancel       func()
}

func newJob(id string, kind Kind, input, output string, opts *media.ConversionOptions, logLines int, monitor process.Monitor) *Job {
	if logLines <= 0 {
		logLines = 100
	}
	now := time.Now().Unix()
	return &Job{
		ID:        id,
		Kind:      kind,
		Input:     input,
		Output:    output,
		Options:   opts,
		CreatedAt: now,
		updatedAt: now,
		status:    StatusQueued,
		log:       ring.New(logLines),
		logLines:  logLines,
		monitor:   monitor,
	}
}

// Status returns the current job status
func (j *Job) Status() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// UpdatedAt returns the unix time of the last state change
func (j *Job) UpdatedAt() int64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.updatedAt
}

// Progress returns the latest progress snapshot
func (j *Job) Progress() (parse.ProgressSnapshot, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.progress, j.haveProgress
}

// Result returns the completion result once the job succeeded
func (j *Job) Result() *parse.CompletionResult {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.result
}

// Metadata returns probe metadata once available
func (j *Job) Metadata() *media.Metadata {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.metadata
}

// Failure returns the failure message and exit code of a failed job
func (j *Job) Failure() (string, int) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.failure, j.exitCode
}

// Log returns the captured transcript lines, oldest first
func (j *Job) Log() []process.Line {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var out []process.Line
	j.log.Do(func(v interface{}) {
		if v != nil {
			out = append(out, v.(process.Line))
		}
	})
	return out
}

// Usage reports CPU and RSS of the live child process
func (j *Job) Usage() (cpu float64, rss uint64) {
	return j.monitor.Usage()
}

// IsRunning reports whether the job still has a live child
func (j *Job) IsRunning() bool {
	s := j.Status()
	return s == StatusQueued || s == StatusRunning
}

func (j *Job) appendLine(ln process.Line) {
	j.mu.Lock()
	j.log.Value = ln
	j.log = j.log.Next()
	j.mu.Unlock()
}

func (j *Job) setStatus(s Status) {
	j.mu.Lock()
	j.status = s
	j.updatedAt = time.Now().Unix()
	j.mu.Unlock()
}

func (j *Job) setProgress(p parse.ProgressSnapshot) {
	j.mu.Lock()
	j.progress = p
	j.haveProgress = true
	j.mu.Unlock()
}

func (j *Job) setResult(r parse.CompletionResult) {
	j.mu.Lock()
	j.result = &r
	j.mu.Unlock()
}

func (j *Job) setMetadata(md *media.Metadata) {
	j.mu.Lock()
	j.metadata = md
	j.mu.Unlock()
}

func (j *Job) setFailure(msg string, exitCode int) {
	j.mu.Lock()
	j.failure = msg
	j.exitCode = exitCode
	j.mu.Unlock()
}
