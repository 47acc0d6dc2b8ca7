// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package ffmpeg

import (
	"fmt"
	"os/exec"
	"regexp"
)

// VersionInfo describes the transcoder binary in use
type VersionInfo struct {
	Version       string `json:"version"`
	Compiler      string `json:"compiler"`
	Configuration string `json:"configuration"`
}

var (
	reVersion       = regexp.MustCompile(`^ffmpeg version ([0-9]+\.[0-9]+(\.[0-9]+)?)`)
	reCompiler      = regexp.MustCompile(`(?m)^\s*built with (.*)$`)
	reConfiguration = regexp.MustCompile(`(?m)^\s*configuration: (.*)$`)
)

// Version runs `ffmpeg -version` and parses the banner. A binary that does
// not announce a version is rejected at startup.
func Version(binary string) (VersionInfo, error) {
	cmd := exec.Command(binary, "-version")
	cmd.Env = []string{}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return VersionInfo{}, fmt.Errorf("run %s -version: %w", binary, err)
	}
	info := parseVersion(out)
	if info.Version == "" {
		return VersionInfo{}, fmt.Errorf("can't parse ffmpeg version")
	}
	return info, nil
}

func parseVersion(data []byte) VersionInfo {
	f := VersionInfo{}
	if m := reVersion.FindSubmatch(data); m != nil {
		f.Version = string(m[1])
		if len(m[2]) == 0 {
			f.Version += ".0"
		}
	}
	if m := reCompiler.FindSubmatch(data); m != nil {
		f.Compiler = string(m[1])
	}
	if m := reConfiguration.FindSubmatch(data); m != nil {
		f.Configuration = string(m[1])
	}
	return f
}
