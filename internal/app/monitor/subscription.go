package monitor

import (
	"sync"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"
)

// Subscription is the presentation layer's handle on the pipeline: a
// non-blocking accessor for the latest snapshot plus a change-notification
// channel. Slow consumers lose intermediate snapshots, never the latest one.
type Subscription struct {
	m      *Monitor
	ch     chan *domain.Snapshot
	sendMu sync.Mutex
	closed bool
}

// Subscribe registers a presentation-layer consumer. If a snapshot has
// already been published it is delivered immediately.
func (m *Monitor) Subscribe() *Subscription {
	sub := &Subscription{
		m:  m,
		ch: make(chan *domain.Snapshot, 1),
	}

	m.mu.Lock()
	m.subscribers[sub] = struct{}{}
	m.mu.Unlock()

	if snap, _, ok := m.publisher.Current(); ok {
		sub.send(snap)
	}
	return sub
}

// Current returns the latest snapshot and its version without blocking.
func (s *Subscription) Current() (*domain.Snapshot, uint64, bool) {
	return s.m.publisher.Current()
}

// Updates delivers new snapshots as they are published. The channel is
// closed when the subscription is cancelled or the monitor stops.
func (s *Subscription) Updates() <-chan *domain.Snapshot { return s.ch }

// Degraded mirrors Monitor.Degraded for display-side status indicators.
func (s *Subscription) Degraded() bool { return s.m.Degraded() }

// Cancel removes the subscription and closes its update channel.
func (s *Subscription) Cancel() {
	s.m.mu.Lock()
	delete(s.m.subscribers, s)
	s.m.mu.Unlock()
	s.close()
}

func (s *Subscription) send(snap *domain.Snapshot) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- snap:
	default:
		// Drop the stale pending snapshot to make room for the new one.
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- snap:
		default:
		}
	}
}

func (s *Subscription) close() {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

func (m *Monitor) notifySubscribers(snap *domain.Snapshot) {
	m.mu.Lock()
	subs := make([]*Subscription, 0, len(m.subscribers))
	for sub := range m.subscribers {
		subs = append(subs, sub)
	}
	m.mu.Unlock()

	for _, sub := range subs {
		sub.send(snap)
	}
}

func (m *Monitor) closeSubscribers() {
	m.mu.Lock()
	subs := make([]*Subscription, 0, len(m.subscribers))
	for sub := range m.subscribers {
		subs = append(subs, sub)
		delete(m.subscribers, sub)
	}
	m.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}
