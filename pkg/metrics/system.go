package metrics

import (
	"context"
	"runtime"
	"time"
)

// SampleSystem updates the system gauges from the Go runtime once.
func SampleSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	UpdateSystemMemoryUsage(ms.Alloc)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if ms.NumGC > 0 {
		last := ms.PauseNs[(ms.NumGC+255)%256]
		RecordSystemGCPauseTime(float64(last) / float64(time.Millisecond))
	}
}

// RunSystemSampler samples system gauges every refresh interval until ctx
// is cancelled.
func RunSystemSampler(ctx context.Context) {
	ticker := time.NewTicker(globalManager.RefreshInterval())
	defer ticker.Stop()

	SampleSystem()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			SampleSystem()
		}
	}
}
