package ports

import "github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"

// SampleBuffer accumulates snapshots between commits. All methods are safe
// for concurrent use by the poll and commit schedulers.
type SampleBuffer interface {
	// Append adds a snapshot to the end of the buffer. It reports false when
	// the buffer rejected the snapshot (capacity policy).
	Append(s *domain.Snapshot) bool
	// DrainAll atomically returns everything appended since the prior drain,
	// in append order, and leaves the buffer empty.
	DrainAll() []*domain.Snapshot
	// Requeue prepends snapshots that failed to commit, preserving their
	// original order ahead of anything appended since the drain.
	Requeue(snaps []*domain.Snapshot)
	Len() int
	// Dropped reports how many snapshots the capacity policy has evicted
	// since creation. Monotonic.
	Dropped() uint64
}
