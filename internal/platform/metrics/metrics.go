package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	evaluations uint64
	approved    uint64
	escalated   uint64
	rejected    uint64
	fallbacks   uint64
	scans       uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RecordDecision(status string, fallback bool) {
	atomic.AddUint64(&c.evaluations, 1)
	switch status {
	case "approved":
		atomic.AddUint64(&c.approved, 1)
	case "escalated":
		atomic.AddUint64(&c.escalated, 1)
	case "rejected":
		atomic.AddUint64(&c.rejected, 1)
	}
	if fallback {
		atomic.AddUint64(&c.fallbacks, 1)
	}
}

func (c *Collector) RecordScan() {
	atomic.AddUint64(&c.scans, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal": atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":    avg,
		"evaluationsTotal": atomic.LoadUint64(&c.evaluations),
		"approvedTotal":    atomic.LoadUint64(&c.approved),
		"escalatedTotal":   atomic.LoadUint64(&c.escalated),
		"rejectedTotal":    atomic.LoadUint64(&c.rejected),
		"fallbacksTotal":   atomic.LoadUint64(&c.fallbacks),
		"scansTotal":       atomic.LoadUint64(&c.scans),
	}
}
