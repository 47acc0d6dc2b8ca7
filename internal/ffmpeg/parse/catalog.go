// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎
//
// Package parse classifies FFmpeg/FFprobe output lines against a fixed
// catalog of patterns and folds the extracted updates into per-run state.

package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Update is one typed partial extraction from a single output line.
// A line may yield zero, one, or several updates.
type Update interface {
	isUpdate()
}

// DurationUpdate announces the total duration of the input
type DurationUpdate struct {
	Total time.Duration
}

// VideoStreamUpdate describes a detected video stream
type VideoStreamUpdate struct {
	Codec     string
	Width     int
	Height    int
	FrameRate float64
}

// AudioStreamUpdate describes a detected audio stream
type AudioStreamUpdate struct {
	Codec      string
	SampleRate int
	Channels   string
}

// ProgressFields marks which fields of a ProgressUpdate were present on the line
type ProgressFields uint8

const (
	FieldFrame ProgressFields = 1 << iota
	FieldFPS
	FieldQuantizer
	FieldSize
	FieldTime
	FieldBitrate
)

// Has reports whether all given fields were extracted
func (f ProgressFields) Has(x ProgressFields) bool { return f&x == x }

// ProgressUpdate carries the fields of one progress-shaped line. FFmpeg may
// omit any of them, so Known records which ones were actually present.
type ProgressUpdate struct {
	Frame       uint64
	FPS         float64
	Quantizer   float64
	SizeKB      uint64
	Elapsed     time.Duration
	BitrateKbps float64
	Known       ProgressFields
}

// ErrorMarkerUpdate records a line matching a known FFmpeg error marker
type ErrorMarkerUpdate struct {
	Marker string
	Line   string
}

func (DurationUpdate) isUpdate()    {}
func (VideoStreamUpdate) isUpdate() {}
func (AudioStreamUpdate) isUpdate() {}
func (ProgressUpdate) isUpdate()    {}
func (ErrorMarkerUpdate) isUpdate() {}

var (
	reDuration    = regexp.MustCompile(`Duration:\s*([0-9]+):([0-9]{2}):([0-9]{2})\.([0-9]+)`)
	reVideoStream = regexp.MustCompile(`Stream #[0-9]+:[0-9]+.*?Video:\s*([A-Za-z0-9_\-]+)`)
	reResolution  = regexp.MustCompile(`([0-9]{2,5})x([0-9]{2,5})`)
	reFrameRate   = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*(?:fps|tbr)`)
	reAudioStream = regexp.MustCompile(`Stream #[0-9]+:[0-9]+.*?Audio:\s*([A-Za-z0-9_\-]+)`)
	reSampleRate  = regexp.MustCompile(`([0-9]+)\s*Hz`)
	reChannels    = regexp.MustCompile(`Hz,\s*([^,\r\n]+)`)

	reProgFrame   = regexp.MustCompile(`frame=\s*([0-9]+)`)
	reProgFPS     = regexp.MustCompile(`fps=\s*([0-9.]+)`)
	reProgQ       = regexp.MustCompile(`q=\s*(-?[0-9.]+)`)
	reProgSize    = regexp.MustCompile(`L?size=\s*([0-9]+)kB`)
	reProgTime    = regexp.MustCompile(`time=\s*([0-9]+):([0-9]{2}):([0-9]{2})\.([0-9]+)`)
	reProgBitrate = regexp.MustCompile(`bitrate=\s*([0-9.]+)kbits/s`)

	// Applied post-hoc to the whole accumulated log, never per line.
	reCompleted   = regexp.MustCompile(`L?size=\s*([0-9]+)kB\s+time=\s*([0-9]+):([0-9]{2}):([0-9]{2})\.([0-9]+)\s+bitrate=\s*([0-9.]+)kbits/s`)
	reProbeMarker = regexp.MustCompile(`"format"\s*:`)
)

// knownErrorMarkers are diagnostic substrings surfaced verbatim in failure
// records. Matching one is not a classification fault.
var knownErrorMarkers = []string{
	"Unknown encoder",
	"Unknown decoder",
	"No such file or directory",
	"Invalid data found when processing input",
	"At least one output file must be specified",
	"Conversion failed",
}

func durationFrom(line string) (DurationUpdate, bool) {
	m := reDuration.FindStringSubmatch(line)
	if m == nil {
		return DurationUpdate{}, false
	}
	return DurationUpdate{Total: clockDuration(m[1], m[2], m[3], m[4])}, true
}

func videoStreamFrom(line string) (VideoStreamUpdate, bool) {
	m := reVideoStream.FindStringSubmatch(line)
	if m == nil {
		return VideoStreamUpdate{}, false
	}
	u := VideoStreamUpdate{Codec: m[1]}
	if r := reResolution.FindStringSubmatch(line); r != nil {
		u.Width, _ = strconv.Atoi(r[1])
		u.Height, _ = strconv.Atoi(r[2])
	}
	if r := reFrameRate.FindStringSubmatch(line); r != nil {
		u.FrameRate, _ = strconv.ParseFloat(r[1], 64)
	}
	return u, true
}

func audioStreamFrom(line string) (AudioStreamUpdate, bool) {
	m := reAudioStream.FindStringSubmatch(line)
	if m == nil {
		return AudioStreamUpdate{}, false
	}
	u := AudioStreamUpdate{Codec: m[1]}
	if r := reSampleRate.FindStringSubmatch(line); r != nil {
		u.SampleRate, _ = strconv.Atoi(r[1])
	}
	if r := reChannels.FindStringSubmatch(line); r != nil {
		u.Channels = strings.TrimSpace(r[1])
	}
	return u, true
}

func progressFrom(line string) (ProgressUpdate, bool) {
	var u ProgressUpdate
	if m := reProgFrame.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseUint(m[1], 10, 64); err == nil {
			u.Frame = x
			u.Known |= FieldFrame
		}
	}
	if m := reProgFPS.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseFloat(m[1], 64); err == nil {
			u.FPS = x
			u.Known |= FieldFPS
		}
	}
	if m := reProgQ.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseFloat(m[1], 64); err == nil {
			u.Quantizer = x
			u.Known |= FieldQuantizer
		}
	}
	if m := reProgSize.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseUint(m[1], 10, 64); err == nil {
			u.SizeKB = x
			u.Known |= FieldSize
		}
	}
	if m := reProgTime.FindStringSubmatch(line); m != nil {
		u.Elapsed = clockDuration(m[1], m[2], m[3], m[4])
		u.Known |= FieldTime
	}
	if m := reProgBitrate.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseFloat(m[1], 64); err == nil {
			u.BitrateKbps = x
			u.Known |= FieldBitrate
		}
	}
	return u, u.Known != 0
}

func errorMarkerFrom(line string) (ErrorMarkerUpdate, bool) {
	for _, marker := range knownErrorMarkers {
		if strings.Contains(line, marker) {
			return ErrorMarkerUpdate{Marker: marker, Line: strings.TrimSpace(line)}, true
		}
	}
	return ErrorMarkerUpdate{}, false
}

// CompletionSummary is extracted from the final conversion summary line
type CompletionSummary struct {
	SizeKB      uint64
	Elapsed     time.Duration
	BitrateKbps float64
}

// CompletionFrom detects the conversion completion marker in the full
// accumulated log. Intermediate progress lines share the summary's shape,
// so the last match is the authoritative final summary.
func CompletionFrom(log string) (CompletionSummary, bool) {
	all := reCompleted.FindAllStringSubmatch(log, -1)
	if len(all) == 0 {
		return CompletionSummary{}, false
	}
	m := all[len(all)-1]
	var s CompletionSummary
	s.SizeKB, _ = strconv.ParseUint(m[1], 10, 64)
	s.Elapsed = clockDuration(m[2], m[3], m[4], m[5])
	s.BitrateKbps, _ = strconv.ParseFloat(m[6], 64)
	return s, true
}

// ProbeCompleted detects the prober completion marker (the format section of
// the ffprobe JSON payload) in the full accumulated log
func ProbeCompleted(log string) bool {
	return reProbeMarker.MatchString(log)
}

// clockDuration converts HH:MM:SS.frac groups. The fraction supports any
// number of digits (.8, .84, .840).
func clockDuration(h, m, s, frac string) time.Duration {
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	seconds, _ := strconv.Atoi(s)
	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	if x, err := strconv.ParseUint(frac, 10, 64); err == nil {
		div := 1.0
		for range frac {
			div *= 10
		}
		d += time.Duration(float64(x) / div * float64(time.Second))
	}
	return d
}
