package telemetry

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

const (
	report_perf_stats_cpu        = "perf_stats.cpu"
	report_perf_stats_memory     = "perf_stats.allocated-mb"
	report_perf_stats_goroutines = "perf_stats.goroutines"
)

var meter = otel.Meter("redditbot/internal/components/telemetry")
var cpuGauge, _ = meter.Float64Gauge("cpu_usage")
var memoryGauge, _ = meter.Int64Gauge("allocated_mb")
var goroutineGauge, _ = meter.Int64Gauge("goroutine_count")

// PerfSample is one reading of the process' resource usage.
type PerfSample struct {
	CPUPercent  float64
	AllocatedMB int64
	Goroutines  int64
}

// SamplePerf measures cpu usage over `window` along with the current heap
// and goroutine counts.
func SamplePerf(ctx context.Context, window time.Duration) (PerfSample, error) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	sample := PerfSample{
		AllocatedMB: int64(memStats.Alloc / 1_000_000),
		Goroutines:  int64(runtime.NumGoroutine()),
	}

	usage, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		return sample, err
	}
	if len(usage) > 0 {
		sample.CPUPercent = usage[0]
	}
	return sample, nil
}

// InstrumentPerfStats records a PerfSample every `interval` until ctx is
// done, both as otel gauges and as counts on `tel`.
func InstrumentPerfStats(ctx context.Context, tel API, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sample, err := SamplePerf(ctx, time.Second)
				if err != nil {
					tel.ReportWarning(report_perf_stats_cpu, err)
				} else {
					cpuGauge.Record(ctx, sample.CPUPercent)
				}
				memoryGauge.Record(ctx, sample.AllocatedMB)
				goroutineGauge.Record(ctx, sample.Goroutines)
				tel.ReportCount(report_perf_stats_memory, sample.AllocatedMB)
				tel.ReportCount(report_perf_stats_goroutines, sample.Goroutines)
			case <-ctx.Done():
				return
			}
		}
	}()
}
