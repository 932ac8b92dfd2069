package system

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Collector 进程指标采集器，由调用方按需触发采集
type Collector struct {
	pid  int32
	proc *process.Process
	mu   sync.RWMutex
	last Stats
}

// Stats 进程统计数据
type Stats struct {
	// CPU 使用率 (0-100)，自上次采集以来
	CPUPercent float64 `json:"cpu_percent"`
	// 内存占系统总内存的比例 (0-100)
	MemoryPercent float64 `json:"memory_percent"`
	// 常驻内存字节数
	MemoryBytes uint64 `json:"memory_bytes"`
	// 操作系统线程数
	Threads    int32     `json:"threads"`
	Goroutines int       `json:"goroutines"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// New 创建当前进程的采集器
func New() (*Collector, error) {
	pid := int32(os.Getpid())
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil, errors.Wrapf(err, "open process %d", pid)
	}
	return &Collector{pid: pid, proc: proc}, nil
}

// Collect 执行一次采集并缓存结果，单项失败时该项保持零值
func (c *Collector) Collect() Stats {
	var stats Stats

	if cpuPercent, err := c.proc.Percent(0); err == nil {
		stats.CPUPercent = cpuPercent
	}

	if memInfo, err := c.proc.MemoryInfo(); err == nil {
		stats.MemoryBytes = memInfo.RSS
		if virtualMem, err := mem.VirtualMemory(); err == nil && virtualMem.Total > 0 {
			stats.MemoryPercent = float64(memInfo.RSS) / float64(virtualMem.Total) * 100
		}
	}

	if threads, err := c.proc.NumThreads(); err == nil {
		stats.Threads = threads
	}

	stats.Goroutines = runtime.NumGoroutine()
	stats.UpdatedAt = time.Now()

	c.mu.Lock()
	c.last = stats
	c.mu.Unlock()
	return stats
}

// Last 返回最近一次采集结果
func (c *Collector) Last() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// GetSystemCPUPercent 获取系统整体 CPU 使用率
func GetSystemCPUPercent() (float64, error) {
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(percentages) > 0 {
		return percentages[0], nil
	}
	return 0, nil
}

// GetSystemMemoryPercent 获取系统整体内存使用率
func GetSystemMemoryPercent() (float64, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return v.UsedPercent, nil
}
