// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package ffmpeg

import "testing"

func TestRemoteValidator(t *testing.T) {
	v := NewRemoteValidator()

	remote := []string{
		"http://example.com/stream.m3u8",
		"https://example.com/video.mp4",
		"rtmp://live.example.com/app/key",
		"rtmps://live.example.com/app/key",
		"rtsp://cam.local/stream1",
		"udp://239.0.0.1:1234",
		"srt://relay.example.com:9000",
	}
	for _, addr := range remote {
		if !v.IsRemote(addr) {
			t.Errorf("IsRemote(%q) = false, want true", addr)
		}
	}

	local := []string{
		"/data/video.mp4",
		"video.mp4",
		"file:///data/video.mp4",
		"ftp://example.com/video.mp4",
		"",
	}
	for _, addr := range local {
		if v.IsRemote(addr) {
			t.Errorf("IsRemote(%q) = true, want false", addr)
		}
	}
}

func TestNewValidator(t *testing.T) {
	v, err := NewValidator([]string{`^custom://`, "", "  "})
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	if !v.IsRemote("custom://x") {
		t.Error("custom scheme not accepted")
	}
	if v.IsRemote("http://x") {
		t.Error("unlisted scheme accepted")
	}

	if _, err := NewValidator([]string{"["}); err == nil {
		t.Fatal("expected an error for an invalid expression")
	}
}
