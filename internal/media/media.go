// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package media

import "time"

// VideoInfo describes a detected video stream
type VideoInfo struct {
	Codec     string  `json:"codec"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FrameRate float64 `json:"frame_rate"`
}

// AudioInfo describes a detected audio stream
type AudioInfo struct {
	Codec      string `json:"codec"`
	SampleRate int    `json:"sample_rate"`
	Channels   string `json:"channels"`
}

// Metadata is the result of probing a media file
type Metadata struct {
	Duration    time.Duration `json:"duration_ns"`
	FrameCount  uint64        `json:"frame_count"`
	FPS         float64       `json:"fps"`
	SizeKB      uint64        `json:"size_kb"`
	BitrateKbps float64       `json:"bitrate_kbps"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Video       *VideoInfo    `json:"video,omitempty"`
	Audio       *AudioInfo    `json:"audio,omitempty"`
}
