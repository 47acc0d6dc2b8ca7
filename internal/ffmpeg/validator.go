// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package ffmpeg

import (
	"fmt"
	"regexp"
	"strings"
)

// Validator decides whether a string is a recognized remote address for
// the transcoder
type Validator interface {
	IsRemote(address string) bool
}

// remoteSchemes are the locator prefixes accepted without a local file check
var remoteSchemes = []string{
	`^https?://`,
	`^rtmps?://`,
	`^rtsp://`,
	`^udp://`,
	`^srt://`,
}

type validator struct {
	allow []*regexp.Regexp
}

// NewValidator creates a Validator from scheme expressions. Empty
// expressions are ignored.
func NewValidator(allow []string) (Validator, error) {
	v := &validator{}

	for _, exp := range allow {
		exp = strings.TrimSpace(exp)
		if exp == "" {
			continue
		}
		re, err := regexp.Compile(exp)
		if err != nil {
			return nil, fmt.Errorf("invalid allow expression '%s': %w", exp, err)
		}
		v.allow = append(v.allow, re)
	}

	return v, nil
}

// NewRemoteValidator creates the default Validator covering the streaming
// protocols the transcoder accepts as input
func NewRemoteValidator() Validator {
	v, _ := NewValidator(remoteSchemes)
	return v
}

func (v *validator) IsRemote(address string) bool {
	for _, e := range v.allow {
		if e.MatchString(address) {
			return true
		}
	}
	return false
}
