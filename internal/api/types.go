// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package api

import (
	"time"

	"github.com/ZSC714725/mediaengine/internal/ffmpeg/parse"
	"github.com/ZSC714725/mediaengine/internal/media"
)

// ErrorResponse is the API error body
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// OptionsRequest mirrors media.ConversionOptions with second-based times
type OptionsRequest struct {
	Format             string   `json:"format"`
	VideoCodec         string   `json:"video_codec"`
	AudioCodec         string   `json:"audio_codec"`
	VideoBitrateKbps   int      `json:"video_bitrate_kbps"`
	AudioSampleRate    int      `json:"audio_sample_rate"`
	VideoSize          string   `json:"video_size"`
	FrameRate          float64  `json:"frame_rate"`
	SeekSeconds        float64  `json:"seek_seconds"`
	MaxDurationSeconds float64  `json:"max_duration_seconds"`
	ExtraArgs          []string `json:"extra_args"`
}

func (r *OptionsRequest) toOptions() *media.ConversionOptions {
	if r == nil {
		return media.DefaultOptions()
	}
	return &media.ConversionOptions{
		Format:           r.Format,
		VideoCodec:       r.VideoCodec,
		AudioCodec:       r.AudioCodec,
		VideoBitrateKbps: r.VideoBitrateKbps,
		AudioSampleRate:  r.AudioSampleRate,
		VideoSize:        r.VideoSize,
		FrameRate:        r.FrameRate,
		Seek:             time.Duration(r.SeekSeconds * float64(time.Second)),
		MaxDuration:      time.Duration(r.MaxDurationSeconds * float64(time.Second)),
		ExtraArgs:        r.ExtraArgs,
	}
}

// ConvertRequest submits a conversion job
type ConvertRequest struct {
	Input   string          `json:"input"`
	Output  string          `json:"output"`
	Options *OptionsRequest `json:"options"`
}

// ProbeRequest submits a probe or metadata job
type ProbeRequest struct {
	Input string `json:"input"`
}

// ProgressResponse is the latest progress snapshot of a job
type ProgressResponse struct {
	Frame           uint64  `json:"frame"`
	FPS             float64 `json:"fps"`
	Quantizer       float64 `json:"q"`
	SizeKB          uint64  `json:"size_kb"`
	TimeSeconds     float64 `json:"time_seconds"`
	BitrateKbps     float64 `json:"bitrate_kbps"`
	DurationSeconds float64 `json:"duration_seconds"`
	Fraction        float64 `json:"fraction"`
	FractionKnown   bool    `json:"fraction_known"`
}

func progressResponse(p parse.ProgressSnapshot) *ProgressResponse {
	return &ProgressResponse{
		Frame:           p.Frame,
		FPS:             p.FPS,
		Quantizer:       p.Quantizer,
		SizeKB:          p.SizeKB,
		TimeSeconds:     p.Elapsed.Seconds(),
		BitrateKbps:     p.BitrateKbps,
		DurationSeconds: p.TotalDuration.Seconds(),
		Fraction:        p.Fraction,
		FractionKnown:   p.FractionKnown,
	}
}

// ResultResponse is the completion result of a conversion job
type ResultResponse struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Frame           uint64  `json:"frame"`
	AverageFPS      float64 `json:"average_fps"`
	SizeKB          uint64  `json:"size_kb"`
	BitrateKbps     float64 `json:"bitrate_kbps"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
}

func resultResponse(r *parse.CompletionResult) *ResultResponse {
	if r == nil {
		return nil
	}
	return &ResultResponse{
		DurationSeconds: r.TotalDuration.Seconds(),
		Frame:           r.Frame,
		AverageFPS:      r.AverageFPS,
		SizeKB:          r.SizeKB,
		BitrateKbps:     r.BitrateKbps,
		Width:           r.Width,
		Height:          r.Height,
	}
}

// JobResponse is the API view of a job
type JobResponse struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	Input     string            `json:"input"`
	Output    string            `json:"output,omitempty"`
	Status    string            `json:"status"`
	CreatedAt int64             `json:"created_at"`
	UpdatedAt int64             `json:"updated_at"`
	Progress  *ProgressResponse `json:"progress,omitempty"`
	Result    *ResultResponse   `json:"result,omitempty"`
	Metadata  *media.Metadata   `json:"metadata,omitempty"`
	Failure   string            `json:"failure,omitempty"`
	ExitCode  int               `json:"exit_code,omitempty"`
	CPU       float64           `json:"cpu"`
	MemoryRSS uint64            `json:"memory_rss"`
}

// LineResponse is one transcript line in a report
type LineResponse struct {
	Time   string `json:"time"`
	Source string `json:"source"`
	Data   string `json:"data"`
}

// ReportResponse is a job's captured transcript
type ReportResponse struct {
	Log []LineResponse `json:"log"`
}
