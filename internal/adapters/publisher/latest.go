package publisher

import (
	"sync/atomic"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/ports"
)

type versioned struct {
	snap    *domain.Snapshot
	version uint64
}

// Latest is a single-slot snapshot holder. The snapshot and its version are
// swapped in as one pointer, so readers always see a matching pair and never
// a torn snapshot, and Current is wait-free with respect to Publish.
type Latest struct {
	cur atomic.Pointer[versioned]
}

func NewLatest() *Latest { return &Latest{} }

func (l *Latest) Publish(s *domain.Snapshot) {
	if s == nil {
		return
	}
	for {
		old := l.cur.Load()
		next := &versioned{snap: s, version: 1}
		if old != nil {
			next.version = old.version + 1
		}
		if l.cur.CompareAndSwap(old, next) {
			return
		}
	}
}

func (l *Latest) Current() (*domain.Snapshot, uint64, bool) {
	v := l.cur.Load()
	if v == nil {
		return nil, 0, false
	}
	return v.snap, v.version, true
}

var _ ports.StatePublisher = (*Latest)(nil)
