// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package process

// Monitor samples resource usage of a live child process.
// NullMonitor does nothing.
type Monitor interface {
	Attach(pid int) error
	Detach()
	Usage() (cpu float64, rss uint64)
}

type nullMonitor struct{}

// NewNullMonitor returns a no-op monitor
func NewNullMonitor() Monitor {
	return &nullMonitor{}
}

func (m *nullMonitor) Attach(pid int) error     { return nil }
func (m *nullMonitor) Detach()                  {}
func (m *nullMonitor) Usage() (float64, uint64) { return 0, 0 }
