package monitor

import (
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultReportInterval = 60 * time.Second

// PerformanceMonitor 统计处理量，按固定时间间隔输出报告
type PerformanceMonitor struct {
	tl       *zap.Logger
	interval time.Duration
	sizeFn   func() int // dedup 窗口大小

	mu         sync.Mutex
	total      uint64
	window     uint64
	startedAt  time.Time
	lastReport time.Time
	nowFn      func() time.Time
}

func NewPerformanceMonitor(interval time.Duration, sizeFn func() int, tl *zap.Logger) *PerformanceMonitor {
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	now := time.Now()
	return &PerformanceMonitor{
		tl:         tl,
		interval:   interval,
		sizeFn:     sizeFn,
		startedAt:  now,
		lastReport: now,
		nowFn:      time.Now,
	}
}

func (p *PerformanceMonitor) RecordToken() {
	p.mu.Lock()
	p.total++
	p.window++
	p.mu.Unlock()
	TokensProcessed.Inc()
}

// ShouldReport 距上次报告超过 interval
func (p *PerformanceMonitor) ShouldReport() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nowFn().Sub(p.lastReport) >= p.interval
}

// Stats 一次报告的内容
type Stats struct {
	Total     uint64
	Window    uint64
	PerMinute float64
	Uptime    time.Duration
	HeapMB    float64
	DedupSize int
}

// Report 输出报告并重置窗口计数
func (p *PerformanceMonitor) Report() Stats {
	p.mu.Lock()
	now := p.nowFn()
	elapsed := now.Sub(p.lastReport)
	stats := Stats{
		Total:  p.total,
		Window: p.window,
		Uptime: now.Sub(p.startedAt),
	}
	if elapsed > 0 {
		stats.PerMinute = float64(p.window) / elapsed.Minutes()
	}
	p.window = 0
	p.lastReport = now
	p.mu.Unlock()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	stats.HeapMB = float64(mem.HeapAlloc) / 1024 / 1024
	if p.sizeFn != nil {
		stats.DedupSize = p.sizeFn()
		DedupWindowSize.Set(float64(stats.DedupSize))
	}

	p.tl.Info("📊 Performance report",
		zap.Uint64("tokens_total", stats.Total),
		zap.Uint64("tokens_window", stats.Window),
		zap.Float64("tokens_per_min", stats.PerMinute),
		zap.Duration("uptime", stats.Uptime),
		zap.Float64("heap_mb", stats.HeapMB),
		zap.Int("dedup_size", stats.DedupSize),
	)
	return stats
}
