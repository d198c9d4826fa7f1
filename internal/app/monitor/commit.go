package monitor

import (
	"context"
	"time"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/adapters/observability"
)

// commitScheduler flushes the accumulation buffer to storage on its own,
// coarser cadence. One non-empty tick issues exactly one batched write.
type commitScheduler struct {
	m        *Monitor
	interval time.Duration
}

func (c *commitScheduler) run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

// tick drains and writes. On failure the drained snapshots are re-queued
// ahead of anything polled since, so the next attempt writes the full
// history in original append order.
func (c *commitScheduler) tick() {
	m := c.m

	drained := m.buffer.DrainAll()
	if len(drained) == 0 {
		return
	}

	start := time.Now()
	if err := m.sink.WriteBatch(drained); err != nil {
		m.obs.IncCounter(observability.MetricCommitFailures, 1)
		m.obs.LogError("commit_failed", err,
			observabilityField("snapshots", len(drained)))
		m.buffer.Requeue(drained)
		m.degradedSig.writeFailure()
		m.noteEvictions()
		m.obs.SetGauge(observability.MetricBufferedSnapshots, float64(m.buffer.Len()))
		return
	}

	rows := 0
	for _, s := range drained {
		rows += len(s.Channels())
	}
	m.obs.ObserveLatency(observability.MetricCommitLatency, time.Since(start).Seconds())
	m.obs.IncCounter(observability.MetricRowsCommitted, float64(rows))
	m.obs.LogInfo("commit_ok",
		observabilityField("snapshots", len(drained)),
		observabilityField("rows", rows))
	m.degradedSig.writeSuccess()

	m.journalCommit(drained)
	m.obs.SetGauge(observability.MetricBufferedSnapshots, float64(m.buffer.Len()))
}
