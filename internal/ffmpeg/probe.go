// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package ffmpeg

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ZSC714725/mediaengine/internal/media"
	"github.com/ZSC714725/mediaengine/internal/process"
)

// probeResult mirrors the ffprobe JSON payload
type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	Index         int    `json:"index"`
	CodecName     string `json:"codec_name"`
	CodecType     string `json:"codec_type"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	SampleRate    string `json:"sample_rate"`
	Channels      int    `json:"channels"`
	ChannelLayout string `json:"channel_layout"`
	AvgFrameRate  string `json:"avg_frame_rate"`
	NBFrames      string `json:"nb_frames"`
}

type probeFormat struct {
	Filename string `json:"filename"`
	Duration string `json:"duration"`
	Size     string `json:"size"`
	BitRate  string `json:"bit_rate"`
}

// decodeProbePayload parses the stdout portion of a prober transcript
func decodeProbePayload(log []process.Line) (probeResult, error) {
	var b strings.Builder
	for _, ln := range log {
		if ln.Source == "stdout" {
			b.WriteString(ln.Data)
			b.WriteByte('\n')
		}
	}
	var res probeResult
	if err := json.Unmarshal([]byte(b.String()), &res); err != nil {
		return probeResult{}, fmt.Errorf("decode probe payload: %w", err)
	}
	return res, nil
}

// metadataFromProbe maps the ffprobe payload onto media metadata
func metadataFromProbe(res probeResult) *media.Metadata {
	md := &media.Metadata{}

	if secs := parseProbeFloat(res.Format.Duration); secs > 0 {
		md.Duration = time.Duration(secs * float64(time.Second))
	}
	if size := parseProbeFloat(res.Format.Size); size > 0 {
		md.SizeKB = uint64(size / 1024)
	}
	if rate := parseProbeFloat(res.Format.BitRate); rate > 0 {
		md.BitrateKbps = rate / 1000
	}

	for _, st := range res.Streams {
		switch {
		case strings.EqualFold(st.CodecType, "video") && md.Video == nil:
			fps := parseRatio(st.AvgFrameRate)
			md.Video = &media.VideoInfo{
				Codec:     st.CodecName,
				Width:     st.Width,
				Height:    st.Height,
				FrameRate: fps,
			}
			md.Width = st.Width
			md.Height = st.Height
			md.FPS = fps
			if frames, err := strconv.ParseUint(st.NBFrames, 10, 64); err == nil {
				md.FrameCount = frames
			}
		case strings.EqualFold(st.CodecType, "audio") && md.Audio == nil:
			channels := st.ChannelLayout
			if channels == "" && st.Channels > 0 {
				channels = strconv.Itoa(st.Channels) + " channels"
			}
			sampleRate, _ := strconv.Atoi(st.SampleRate)
			md.Audio = &media.AudioInfo{
				Codec:      st.CodecName,
				SampleRate: sampleRate,
				Channels:   channels,
			}
		}
	}

	// Frame count may be absent from the container; derive it when the
	// frame rate and duration are known.
	if md.FrameCount == 0 && md.FPS > 0 && md.Duration > 0 {
		md.FrameCount = uint64(md.FPS * md.Duration.Seconds())
	}

	return md
}

func parseProbeFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return 0
}

// parseRatio parses ffprobe rational rates like 24000/1001
func parseRatio(value string) float64 {
	num, den, ok := strings.Cut(value, "/")
	if !ok {
		return parseProbeFloat(value)
	}
	n := parseProbeFloat(num)
	d := parseProbeFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}
