package observability

import (
	"fmt"
	"log"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/ports"
)

// Metric names used across the pipeline.
const (
	MetricSnapshotsPolled   = "hv_snapshots_polled_total"
	MetricPollFailures      = "hv_poll_failures_total"
	MetricMalformedReads    = "hv_malformed_reads_total"
	MetricRowsCommitted     = "hv_rows_committed_total"
	MetricCommitFailures    = "hv_commit_failures_total"
	MetricBufferedSnapshots = "hv_buffered_snapshots"
	MetricSnapshotsDropped  = "hv_snapshots_dropped_total"
	MetricJournalSizeBytes  = "hv_journal_size_bytes"
	MetricDegraded          = "hv_degraded"
	MetricReadLatency       = "hv_bulk_read_latency_seconds"
	MetricCommitLatency     = "hv_commit_latency_seconds"
)

type PromObs struct {
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// NewPromObs registers the pipeline metrics on the provided registerer
// (prometheus.DefaultRegisterer when nil) and returns the adapter.
func NewPromObs(reg prometheus.Registerer) *PromObs {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	polled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricSnapshotsPolled,
		Help: "Snapshots successfully read from the crate.",
	})
	pollFail := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricPollFailures,
		Help: "Failed bulk reads, any cause.",
	})
	malformed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricMalformedReads,
		Help: "Bulk reads rejected because the response was malformed.",
	})
	rows := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricRowsCommitted,
		Help: "Channel rows written to storage.",
	})
	commitFail := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricCommitFailures,
		Help: "Batched writes that failed and were re-queued.",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricSnapshotsDropped,
		Help: "Snapshots evicted from the accumulation buffer by the capacity policy.",
	})
	buffered := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricBufferedSnapshots,
		Help: "Snapshots currently held in the accumulation buffer.",
	})
	journalSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricJournalSizeBytes,
		Help: "Size of the on-disk journal.",
	})
	degraded := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricDegraded,
		Help: "1 while consecutive failures exceed the configured threshold.",
	})
	readLat := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    MetricReadLatency,
		Help:    "Duration of one bulk read across all groups.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
	commitLat := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    MetricCommitLatency,
		Help:    "Duration of one batched storage write.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	reg.MustRegister(polled, pollFail, malformed, rows, commitFail, dropped, buffered, journalSize, degraded, readLat, commitLat)

	return &PromObs{
		counters: map[string]prometheus.Counter{
			MetricSnapshotsPolled:  polled,
			MetricPollFailures:     pollFail,
			MetricMalformedReads:   malformed,
			MetricRowsCommitted:    rows,
			MetricCommitFailures:   commitFail,
			MetricSnapshotsDropped: dropped,
		},
		gauges: map[string]prometheus.Gauge{
			MetricBufferedSnapshots: buffered,
			MetricJournalSizeBytes:  journalSize,
			MetricDegraded:          degraded,
		},
		histos: map[string]prometheus.Observer{
			MetricReadLatency:   readLat,
			MetricCommitLatency: commitLat,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	log.Printf("INFO: %s%s", msg, formatFields(fields))
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("ERROR: %s: %v%s", msg, err, formatFields(fields))
	}
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("CRITICAL: %s: %v%s", msg, err, formatFields(fields))
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func formatFields(fields []ports.Field) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	return b.String()
}

var _ ports.Observability = (*PromObs)(nil)
