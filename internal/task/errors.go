// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package task

import "errors"

var (
	ErrNotFound       = errors.New("job not found")
	ErrJobRunning     = errors.New("job is still running")
	ErrInvalidRequest = errors.New("invalid request: input and output required")
)
