// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package media

import "time"

// ConversionOptions control the transcode. Zero values mean "let ffmpeg decide".
type ConversionOptions struct {
	Format           string        `json:"format"`
	VideoCodec       string        `json:"video_codec"`
	AudioCodec       string        `json:"audio_codec"`
	VideoBitrateKbps int           `json:"video_bitrate_kbps"`
	AudioSampleRate  int           `json:"audio_sample_rate"`
	VideoSize        string        `json:"video_size"` // WxH, e.g. 1280x720
	FrameRate        float64       `json:"frame_rate"`
	Seek             time.Duration `json:"seek_ns"`
	MaxDuration      time.Duration `json:"max_duration_ns"`
	ExtraArgs        []string      `json:"extra_args"`
}

// DefaultOptions returns the options used by ConvertDefault
func DefaultOptions() *ConversionOptions {
	return &ConversionOptions{}
}
