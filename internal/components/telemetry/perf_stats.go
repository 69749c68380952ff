package telemetry

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentPerfStats records cpu, memory and goroutine gauges of the load generator every
// interval until ctx is done.
func InstrumentPerfStats(ctx context.Context, tel API, interval time.Duration) {
	meter := otel.Meter("umami-loadtest/perf_stats")
	cpuGauge, _ := meter.Float64Gauge("cpu_usage")
	memoryGauge, _ := meter.Int64Gauge("allocated_mb")
	goroutineGauge, _ := meter.Int64Gauge("goroutine_count")

	go func() {
		var memStats runtime.MemStats
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runtime.ReadMemStats(&memStats)
				recordPerfStats(ctx, tel, cpuGauge, memoryGauge, goroutineGauge, &memStats)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func recordPerfStats(
	ctx context.Context,
	tel API,
	cpuGauge metric.Float64Gauge,
	memoryGauge, goroutineGauge metric.Int64Gauge,
	memStats *runtime.MemStats,
) {
	cpuUsage, err := cpu.Percent(0, false)
	if err == nil && len(cpuUsage) > 0 {
		cpuGauge.Record(ctx, cpuUsage[0])
	} else if err != nil {
		tel.ReportWarning("perf-stats.cpu", err)
	}

	allocatedMb := int64(memStats.Alloc / 1_000_000)
	goroutines := int64(runtime.NumGoroutine())
	memoryGauge.Record(ctx, allocatedMb)
	goroutineGauge.Record(ctx, goroutines)

	tel.ReportCount("perf-stats.allocated-mb", allocatedMb)
	tel.ReportCount("perf-stats.goroutines", goroutines)
}
