package buffer

import (
	"sync"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/ports"
)

// MemBuffer is a mutex-guarded snapshot accumulator. Append and DrainAll are
// each a single critical section, so every snapshot appended before a drain
// begins is included in that drain and nothing appended after it returns is.
type MemBuffer struct {
	mu      sync.Mutex
	data    []*domain.Snapshot
	cap     int // 0 = unbounded
	dropped uint64
}

// NewMemBuffer returns a buffer holding at most capacity snapshots; a
// capacity of 0 means unbounded. When full the oldest snapshot is evicted to
// make room, never the incoming one.
func NewMemBuffer(capacity int) *MemBuffer {
	return &MemBuffer{cap: capacity}
}

func (b *MemBuffer) Append(s *domain.Snapshot) bool {
	if s == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cap > 0 && len(b.data) >= b.cap {
		copy(b.data, b.data[1:])
		b.data = b.data[:len(b.data)-1]
		b.dropped++
	}
	b.data = append(b.data, s)
	return true
}

func (b *MemBuffer) DrainAll() []*domain.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.data) == 0 {
		return nil
	}
	out := b.data
	b.data = nil
	return out
}

func (b *MemBuffer) Requeue(snaps []*domain.Snapshot) {
	if len(snaps) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	merged := make([]*domain.Snapshot, 0, len(snaps)+len(b.data))
	merged = append(merged, snaps...)
	merged = append(merged, b.data...)
	b.data = merged
	if b.cap > 0 && len(b.data) > b.cap {
		b.dropped += uint64(len(b.data) - b.cap)
		b.data = b.data[len(b.data)-b.cap:]
	}
}

func (b *MemBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Dropped reports how many snapshots have been evicted by the capacity
// policy since creation.
func (b *MemBuffer) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

var _ ports.SampleBuffer = (*MemBuffer)(nil)
