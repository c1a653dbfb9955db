package profiler

import (
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Stats is one profiling interval's summary.
type Stats struct {
	FPS          float64
	FrameTime    time.Duration
	SkippedFrame int
	HeapMB       float64
	AllocRateMB  float64
	GCCount      uint32
	LastPauseUs  uint64
	MaxPauseUs   uint64
	RSSMB        float64
	CPUPercent   float64
}

// Profiler tracks frame rate, memory and process statistics for performance monitoring.
// Logs a summary at a configurable interval.
type Profiler struct {
	frameCount     int
	skipped        int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	proc           *process.Process
	logger         *slog.Logger
	last           Stats
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
// Process RSS and CPU are reported when the platform supports them.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
		logger:         slog.Default(),
	}
	for _, opt := range options {
		opt(p)
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		p.proc = proc
		// prime the CPU sampler so the first interval reports a delta
		_, _ = proc.Percent(0)
	}
	return p
}

// SkipFrame records a frame the render loop dropped because of an error.
func (p *Profiler) SkipFrame() {
	p.skipped++
}

// Last returns the most recently logged interval.
func (p *Profiler) Last() Stats {
	return p.last
}

// Tick should be called once per frame. It logs statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:          float64(p.frameCount) / elapsed.Seconds(),
		FrameTime:    elapsed / time.Duration(p.frameCount),
		SkippedFrame: p.skipped,
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:  float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:      p.memStats.NumGC,
	}

	if gc := p.memStats.NumGC; gc > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		s.LastPauseUs = p.memStats.PauseNs[(gc-1)%256] / 1000
		start := p.lastGCCount
		if gc-start > 256 {
			start = gc - 256
		}
		for i := start; i < gc; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	if p.proc != nil {
		if mem, err := p.proc.MemoryInfo(); err == nil {
			s.RSSMB = float64(mem.RSS) / 1024 / 1024
		}
		if cpu, err := p.proc.Percent(0); err == nil {
			s.CPUPercent = cpu
		}
	}

	p.logger.Info("profiler",
		"fps", s.FPS,
		"frame_time", s.FrameTime,
		"skipped", s.SkippedFrame,
		"heap_mb", s.HeapMB,
		"alloc_rate_mb_s", s.AllocRateMB,
		"gc", s.GCCount,
		"gc_last_us", s.LastPauseUs,
		"gc_max_us", s.MaxPauseUs,
		"rss_mb", s.RSSMB,
		"cpu_pct", s.CPUPercent,
	)

	p.last = s
	p.frameCount = 0
	p.skipped = 0
	p.lastTime = now
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
