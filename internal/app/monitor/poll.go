package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/adapters/observability"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/ports"
)

// pollScheduler drives the bulk-read cadence. Ticks run synchronously inside
// one loop, so at most one read is ever in flight; a read that outlasts the
// interval simply causes the missed ticks to be dropped by the ticker.
type pollScheduler struct {
	m        *Monitor
	interval time.Duration
}

func (p *pollScheduler) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Stop must let an in-flight read finish rather than abort it;
			// the reader's own per-request timeout bounds the tick.
			p.tick(context.WithoutCancel(ctx))
		}
	}
}

// tick performs one bulk read. A failed tick contributes nothing to the
// buffer or the publisher.
func (p *pollScheduler) tick(ctx context.Context) {
	m := p.m

	start := time.Now()
	snap, err := m.reader.ReadAll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.obs.IncCounter(observability.MetricPollFailures, 1)

		var rf *ports.ReadFailure
		if errors.As(err, &rf) && rf.Kind == ports.FailureMalformed {
			m.obs.IncCounter(observability.MetricMalformedReads, 1)
			m.obs.LogError("bulk_read_malformed", err)
		} else {
			m.obs.LogError("bulk_read_failed", err)
		}
		m.degradedSig.readFailure()
		return
	}

	m.obs.ObserveLatency(observability.MetricReadLatency, time.Since(start).Seconds())
	m.obs.IncCounter(observability.MetricSnapshotsPolled, 1)
	m.degradedSig.readSuccess()

	m.journalAppend(snap)
	m.buffer.Append(snap)
	m.publisher.Publish(snap)
	m.notifySubscribers(snap)

	m.noteEvictions()
	m.obs.SetGauge(observability.MetricBufferedSnapshots, float64(m.buffer.Len()))
}
