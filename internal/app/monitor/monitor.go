package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/adapters/observability"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/ports"
)

// Config carries the scheduler cadences and the failure threshold. The
// monitor consumes it; loading and validation belong to the caller.
type Config struct {
	PollInterval           time.Duration
	CommitInterval         time.Duration
	MaxConsecutiveFailures int
}

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.CommitInterval <= 0 {
		c.CommitInterval = time.Minute
	}
	if c.MaxConsecutiveFailures <= 0 {
		c.MaxConsecutiveFailures = 3
	}
}

// Monitor owns the poll and commit schedulers and the two shared structures
// between them. It is the only surface the presentation layer talks to.
type Monitor struct {
	cfg       Config
	reader    ports.GroupReader
	buffer    ports.SampleBuffer
	publisher ports.StatePublisher
	sink      ports.Sink
	journal   ports.Journal
	obs       ports.Observability

	degradedSig *degradedTracker

	mu          sync.Mutex
	started     bool
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	commit      *commitScheduler
	subscribers map[*Subscription]struct{}
	journalIDs  map[*domain.Snapshot]ports.JournalEntryID
	lastDropped uint64

	shutdownOnce sync.Once
	shutdownCh   chan struct{}
}

// New wires a monitor from its collaborators. journal may be nil to disable
// on-disk durability.
func New(cfg Config, reader ports.GroupReader, buf ports.SampleBuffer, pub ports.StatePublisher, sink ports.Sink, journal ports.Journal, obs ports.Observability) (*Monitor, error) {
	if reader == nil {
		return nil, errors.New("reader is required")
	}
	if buf == nil {
		return nil, errors.New("buffer is required")
	}
	if pub == nil {
		return nil, errors.New("publisher is required")
	}
	if sink == nil {
		return nil, errors.New("sink is required")
	}
	if obs == nil {
		return nil, errors.New("observability is required")
	}
	cfg.applyDefaults()

	m := &Monitor{
		cfg:         cfg,
		reader:      reader,
		buffer:      buf,
		publisher:   pub,
		sink:        sink,
		journal:     journal,
		obs:         obs,
		subscribers: make(map[*Subscription]struct{}),
		journalIDs:  make(map[*domain.Snapshot]ports.JournalEntryID),
		shutdownCh:  make(chan struct{}),
	}
	m.degradedSig = newDegradedTracker(cfg.MaxConsecutiveFailures, m.onDegradedChange)
	return m, nil
}

// Start replays the journal into the buffer and launches both schedulers as
// independent goroutines.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return errors.New("monitor already started")
	}

	if err := m.replayJournal(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.started = true

	poll := &pollScheduler{m: m, interval: m.cfg.PollInterval}
	m.commit = &commitScheduler{m: m, interval: m.cfg.CommitInterval}

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		poll.run(ctx)
	}()
	go func() {
		defer m.wg.Done()
		m.commit.run(ctx)
	}()

	m.obs.LogInfo("monitor_started",
		observabilityField("poll_interval", m.cfg.PollInterval.String()),
		observabilityField("commit_interval", m.cfg.CommitInterval.String()))
	return nil
}

// Stop halts both schedulers, letting any in-flight tick finish, then makes
// one final commit attempt so shutdown does not strand buffered history.
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = false
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("monitor stop: %w", ctx.Err())
	}

	// Final flush, same as a regular commit tick.
	m.commit.tick()

	m.closeSubscribers()
	m.obs.LogInfo("monitor_stopped")
	return nil
}

// Degraded reports whether consecutive read or write failures have exceeded
// the configured threshold.
func (m *Monitor) Degraded() bool { return m.degradedSig.degraded() }

// Current returns the most recent snapshot without blocking the poll loop.
func (m *Monitor) Current() (*domain.Snapshot, uint64, bool) {
	return m.publisher.Current()
}

// RequestShutdown asks the owner of the monitor to stop it. It is safe to
// call repeatedly and from any goroutine.
func (m *Monitor) RequestShutdown() {
	m.shutdownOnce.Do(func() { close(m.shutdownCh) })
}

// ShutdownRequested is closed after the first RequestShutdown call.
func (m *Monitor) ShutdownRequested() <-chan struct{} { return m.shutdownCh }

func (m *Monitor) onDegradedChange(degraded bool) {
	v := 0.0
	if degraded {
		v = 1
		m.obs.LogError("degraded", errors.New("consecutive failure threshold exceeded"))
	} else {
		m.obs.LogInfo("degraded_cleared")
	}
	m.obs.SetGauge(observability.MetricDegraded, v)
}

// noteEvictions reports snapshots the capacity policy evicted since the last
// check. Evictions lose history, so they are logged as errors, not debug.
func (m *Monitor) noteEvictions() {
	total := m.buffer.Dropped()
	m.mu.Lock()
	delta := total - m.lastDropped
	if delta > 0 {
		m.lastDropped = total
	}
	m.mu.Unlock()
	if delta == 0 {
		return
	}
	m.obs.IncCounter(observability.MetricSnapshotsDropped, float64(delta))
	m.obs.LogError("buffer_evicted_snapshots", errors.New("buffer capacity reached"),
		observabilityField("evicted", delta),
		observabilityField("total_evicted", total))
}

func (m *Monitor) journalAppend(snap *domain.Snapshot) {
	if m.journal == nil {
		return
	}
	id, err := m.journal.Append(snap)
	if err != nil {
		m.obs.LogError("journal_append_failed", err)
		return
	}
	m.mu.Lock()
	m.journalIDs[snap] = id
	m.mu.Unlock()
	m.obs.SetGauge(observability.MetricJournalSizeBytes, float64(m.journal.Stats().SizeBytes))
}

func (m *Monitor) journalCommit(drained []*domain.Snapshot) {
	if m.journal == nil {
		return
	}
	var max ports.JournalEntryID
	m.mu.Lock()
	for _, s := range drained {
		if id, ok := m.journalIDs[s]; ok {
			if id > max {
				max = id
			}
			delete(m.journalIDs, s)
		}
	}
	m.mu.Unlock()
	if max == 0 {
		return
	}
	if err := m.journal.Commit(max); err != nil {
		m.obs.LogError("journal_commit_failed", err)
	}
}

// replayJournal re-queues snapshots that were buffered but never committed
// before the last shutdown. Called with m.mu held.
func (m *Monitor) replayJournal() error {
	if m.journal == nil {
		return nil
	}
	stats := m.journal.Stats()
	if stats.LatestAppended == 0 || stats.OldestUncommitted > stats.LatestAppended {
		return nil
	}

	var replayed int
	err := m.journal.Iterate(stats.OldestUncommitted, func(id ports.JournalEntryID, s *domain.Snapshot) error {
		m.buffer.Append(s)
		m.journalIDs[s] = id
		replayed++
		return nil
	})
	if err != nil {
		return fmt.Errorf("journal replay: %w", err)
	}
	if replayed > 0 {
		m.obs.LogInfo("journal_replay_complete",
			observabilityField("snapshots", replayed),
			observabilityField("from_id", uint64(stats.OldestUncommitted)))
	}
	return nil
}

func observabilityField(key string, value any) ports.Field {
	return ports.Field{Key: key, Value: value}
}
