// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// MediaEngine - FFmpeg 媒体转换引擎

package process

import (
	"sync"

	gopsutilprocess "github.com/shirou/gopsutil/v3/process"
)

// sysMonitor 使用 gopsutil 采集子进程 CPU 和内存
type sysMonitor struct {
	mu   sync.RWMutex
	pid  int32
	proc *gopsutilprocess.Process
}

// NewSysMonitor 创建基于系统调用的资源监视器
func NewSysMonitor() Monitor {
	return &sysMonitor{}
}

func (m *sysMonitor) Attach(pid int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	proc, err := gopsutilprocess.NewProcess(int32(pid))
	if err != nil {
		return err
	}
	m.pid = int32(pid)
	m.proc = proc
	return nil
}

func (m *sysMonitor) Detach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pid = 0
	m.proc = nil
}

func (m *sysMonitor) Usage() (cpu float64, rss uint64) {
	m.mu.RLock()
	proc := m.proc
	m.mu.RUnlock()
	if proc == nil {
		return 0, 0
	}
	if cpuPct, err := proc.CPUPercent(); err == nil {
		cpu = cpuPct
	}
	if memInfo, err := proc.MemoryInfo(); err == nil && memInfo != nil {
		rss = memInfo.RSS
	}
	return cpu, rss
}
