package hvmon

import (
	"errors"
	"fmt"
	"sync"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"
)

// ErrChannelSinkClosed is returned when a channel sink is written to after
// being closed.
var ErrChannelSinkClosed = errors.New("hvmon: channel sink closed")

// SnapshotBatchSink is invoked with the drained snapshots of one commit tick.
type SnapshotBatchSink func([]*Snapshot) error

// NewCallbackSink adapts a function into a Sink so callers can plug arbitrary
// storage without defining structs.
func NewCallbackSink(name string, fn SnapshotBatchSink) Sink {
	if name == "" {
		name = "callback"
	}
	return &callbackSink{name: name, fn: fn}
}

// NewChannelSink exposes commit batches via a channel; it returns the sink,
// the read-only channel, and a close function for shutdown.
func NewChannelSink(name string, bufSize int) (Sink, <-chan []*Snapshot, func()) {
	if name == "" {
		name = "channel"
	}
	if bufSize < 0 {
		bufSize = 0
	}
	ch := make(chan []*Snapshot, bufSize)
	s := &channelSink{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return s, ch, func() { s.close() }
}

type callbackSink struct {
	name string
	fn   SnapshotBatchSink
}

func (s *callbackSink) WriteBatch(snaps []*domain.Snapshot) error {
	if s.fn == nil {
		return fmt.Errorf("callback sink %q: nil handler", s.name)
	}
	if len(snaps) == 0 {
		return nil
	}
	return s.fn(snaps)
}

func (s *callbackSink) Name() string { return s.name }

type channelSink struct {
	name   string
	ch     chan []*Snapshot
	closed chan struct{}
	once   sync.Once

	mu      sync.Mutex
	closing bool
	senders sync.WaitGroup
}

func (s *channelSink) WriteBatch(snaps []*domain.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	// Register as an in-flight sender before touching the channel; close
	// waits for in-flight sends to settle before closing s.ch, so the send
	// below can never hit a closed channel.
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return ErrChannelSinkClosed
	}
	s.senders.Add(1)
	s.mu.Unlock()
	defer s.senders.Done()

	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	case s.ch <- snaps:
		return nil
	}
}

func (s *channelSink) Name() string { return s.name }

func (s *channelSink) close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closing = true
		s.mu.Unlock()

		close(s.closed)
		s.senders.Wait()
		close(s.ch)
	})
}
