// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package ffmpeg

import "testing"

const versionBanner = `ffmpeg version 6.1.1-3ubuntu5 Copyright (c) 2000-2023 the FFmpeg developers
built with gcc 13 (Ubuntu 13.2.0-23ubuntu3)
configuration: --prefix=/usr --extra-version=3ubuntu5 --toolchain=hardened
libavutil      58. 29.100 / 58. 29.100
`

func TestParseVersion(t *testing.T) {
	info := parseVersion([]byte(versionBanner))
	if info.Version != "6.1.1" {
		t.Errorf("version = %q, want 6.1.1", info.Version)
	}
	if info.Compiler != "gcc 13 (Ubuntu 13.2.0-23ubuntu3)" {
		t.Errorf("compiler = %q", info.Compiler)
	}
	if info.Configuration != "--prefix=/usr --extra-version=3ubuntu5 --toolchain=hardened" {
		t.Errorf("configuration = %q", info.Configuration)
	}
}

func TestParseVersionTwoComponent(t *testing.T) {
	// A two-component version is normalized with a trailing .0
	info := parseVersion([]byte("ffmpeg version 7.0 Copyright (c) 2000-2024 the FFmpeg developers\n"))
	if info.Version != "7.0.0" {
		t.Errorf("version = %q, want 7.0.0", info.Version)
	}
}

func TestParseVersionUnrecognized(t *testing.T) {
	info := parseVersion([]byte("not an ffmpeg banner"))
	if info.Version != "" {
		t.Errorf("version = %q, want empty", info.Version)
	}
}
