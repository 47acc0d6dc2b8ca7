// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package media

import (
	"reflect"
	"testing"
	"time"
)

func TestConvertArgumentsDefault(t *testing.T) {
	got := ConvertArguments("in.avi", "out.mp4", DefaultOptions())
	want := []string{"-nostdin", "-y", "-loglevel", "info", "-i", "in.avi", "out.mp4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}
}

func TestConvertArgumentsFull(t *testing.T) {
	opts := &ConversionOptions{
		Format:           "mp4",
		VideoCodec:       "libx264",
		AudioCodec:       "aac",
		VideoBitrateKbps: 1500,
		AudioSampleRate:  44100,
		VideoSize:        "1280x720",
		FrameRate:        25,
		Seek:             90 * time.Second,
		MaxDuration:      10 * time.Second,
		ExtraArgs:        []string{"-movflags", "+faststart"},
	}
	got := ConvertArguments("in.avi", "out.mp4", opts)
	want := []string{
		"-nostdin", "-y", "-loglevel", "info",
		"-ss", "00:01:30.00",
		"-i", "in.avi",
		"-t", "00:00:10.00",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:v", "1500k",
		"-ar", "44100",
		"-s", "1280x720",
		"-r", "25",
		"-f", "mp4",
		"-movflags", "+faststart",
		"out.mp4",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}
}

func TestConvertArgumentsNilOptions(t *testing.T) {
	got := ConvertArguments("in.avi", "out.mp4", nil)
	want := []string{"-nostdin", "-y", "-loglevel", "info", "-i", "in.avi", "out.mp4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}
}

func TestMetadataArguments(t *testing.T) {
	got := MetadataArguments("in.mp4")
	want := []string{"-nostdin", "-y", "-loglevel", "info", "-i", "in.mp4", "-f", "null", "-"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}
}

func TestProbeArguments(t *testing.T) {
	got := ProbeArguments("in.mp4")
	want := []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", "in.mp4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}
}

func TestSplitRaw(t *testing.T) {
	got := SplitRaw("  -i in.mp4   -c copy out.mp4 ")
	want := []string{"-i", "in.mp4", "-c", "copy", "out.mp4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokens = %v, want %v", got, want)
	}
	if got := SplitRaw(""); len(got) != 0 {
		t.Errorf("tokens = %v, want none", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{90 * time.Second, "00:01:30.00"},
		{6*time.Second + 840*time.Millisecond, "00:00:06.84"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03.00"},
		{0, "00:00:00.00"},
	}
	for _, tc := range tests {
		if got := formatDuration(tc.d); got != tc.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
