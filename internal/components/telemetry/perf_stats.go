package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("ratequote.process")
var cpuGauge, _ = meter.Float64Gauge("cpu_usage")
var heapGauge, _ = meter.Int64Gauge("heap_mb")
var goroutineGauge, _ = meter.Int64Gauge("goroutine_count")
var browserGauge, _ = meter.Int64Gauge("browser_processes")
var browserMemoryGauge, _ = meter.Int64Gauge("browser_rss_mb")

// Sample is one reading of the server process and the browsers it spawned.
// The chromedp executor starts chromium as a child process, its memory is
// where a leaked tab shows up first.
type Sample struct {
	CPUPercent   float64
	HeapMB       int64
	Goroutines   int64
	Browsers     int64
	BrowserRSSMB int64
}

func isBrowser(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "chrom") || strings.Contains(name, "headless_shell")
}

// TakeSample reads process statistics, cpu usage is measured over window.
// A partial sample is returned along with the first error.
func TakeSample(ctx context.Context, window time.Duration) (Sample, error) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	sample := Sample{
		HeapMB:     int64(memStats.HeapAlloc / 1_000_000),
		Goroutines: int64(runtime.NumGoroutine()),
	}

	usage, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		return sample, err
	}
	if len(usage) > 0 {
		sample.CPUPercent = usage[0]
	}

	self, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return sample, err
	}
	children, err := self.ChildrenWithContext(ctx)
	if errors.Is(err, process.ErrorNoChildren) {
		return sample, nil
	}
	if err != nil {
		return sample, err
	}
	for _, child := range children {
		name, err := child.NameWithContext(ctx)
		if err != nil || !isBrowser(name) {
			continue
		}
		sample.Browsers++
		mem, err := child.MemoryInfoWithContext(ctx)
		if err == nil {
			sample.BrowserRSSMB += int64(mem.RSS / 1_000_000)
		}
	}
	return sample, nil
}

// InstrumentPerfStats records a Sample every 30 seconds until ctx is done.
func InstrumentPerfStats(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sample, err := TakeSample(ctx, 5*time.Second)
				if err != nil {
					slog.Warn("partial process sample", "err", err)
				}
				cpuGauge.Record(ctx, sample.CPUPercent)
				heapGauge.Record(ctx, sample.HeapMB)
				goroutineGauge.Record(ctx, sample.Goroutines)
				browserGauge.Record(ctx, sample.Browsers)
				browserMemoryGauge.Record(ctx, sample.BrowserRSSMB)
			case <-ctx.Done():
				return
			}
		}
	}()
}
