// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package process

import (
	"bufio"
	"reflect"
	"strings"
	"testing"
)

func scanAll(t *testing.T, input string) []string {
	t.Helper()
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Split(splitLines)
	var out []string
	for scanner.Scan() {
		out = append(out, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"newlines", "a\nb\nc\n", []string{"a", "b", "c"}},
		{"carriage returns", "frame=1\rframe=2\rframe=3\r", []string{"frame=1", "frame=2", "frame=3"}},
		{"mixed", "Duration: 00:01:30.00\nframe=1\rframe=2\nend", []string{"Duration: 00:01:30.00", "frame=1", "frame=2", "end"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"no trailing terminator", "tail", []string{"tail"}},
		{"empty", "", nil},
		{"only terminators", "\r\n\r\n", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := scanAll(t, tc.input); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("tokens = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestTranscriptText(t *testing.T) {
	lines := []Line{
		{Source: "stderr", Data: "a"},
		{Source: "stderr", Data: "b"},
	}
	if got := TranscriptText(lines); got != "a\nb" {
		t.Errorf("transcript = %q", got)
	}
	if got := TranscriptText(nil); got != "" {
		t.Errorf("empty transcript = %q", got)
	}
}
