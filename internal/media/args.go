// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package media

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GlobalFlags are prepended to every ffmpeg invocation unless a fully
// custom argument string is supplied.
func GlobalFlags() []string {
	return []string{"-nostdin", "-y", "-loglevel", "info"}
}

// ConvertArguments builds the ffmpeg argument list for a transcode
func ConvertArguments(input, output string, opts *ConversionOptions) []string {
	args := GlobalFlags()

	if opts != nil && opts.Seek > 0 {
		args = append(args, "-ss", formatDuration(opts.Seek))
	}

	args = append(args, "-i", input)

	if opts != nil {
		if opts.MaxDuration > 0 {
			args = append(args, "-t", formatDuration(opts.MaxDuration))
		}
		if opts.VideoCodec != "" {
			args = append(args, "-c:v", opts.VideoCodec)
		}
		if opts.AudioCodec != "" {
			args = append(args, "-c:a", opts.AudioCodec)
		}
		if opts.VideoBitrateKbps > 0 {
			args = append(args, "-b:v", strconv.Itoa(opts.VideoBitrateKbps)+"k")
		}
		if opts.AudioSampleRate > 0 {
			args = append(args, "-ar", strconv.Itoa(opts.AudioSampleRate))
		}
		if opts.VideoSize != "" {
			args = append(args, "-s", opts.VideoSize)
		}
		if opts.FrameRate > 0 {
			args = append(args, "-r", strconv.FormatFloat(opts.FrameRate, 'f', -1, 64))
		}
		if opts.Format != "" {
			args = append(args, "-f", opts.Format)
		}
		args = append(args, opts.ExtraArgs...)
	}

	args = append(args, output)
	return args
}

// MetadataArguments builds the ffmpeg argument list for a metadata run over
// the diagnostic channel. The null muxer makes ffmpeg decode the input and
// print the stream banner plus a final summary, then exit 0.
func MetadataArguments(input string) []string {
	args := GlobalFlags()
	args = append(args, "-i", input, "-f", "null", "-")
	return args
}

// ProbeArguments builds the ffprobe argument list. Payload goes to stdout
// as JSON, diagnostics stay on stderr.
func ProbeArguments(input string) []string {
	return []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", input}
}

// SplitRaw turns a fully custom serialized argument string into tokens.
// No global flags are prepended for raw invocations.
func SplitRaw(raw string) []string {
	return strings.Fields(raw)
}

func formatDuration(d time.Duration) string {
	d = d.Round(10 * time.Millisecond)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := float64(d) / float64(time.Second)
	return fmt.Sprintf("%02d:%02d:%05.2f", h, m, s)
}
