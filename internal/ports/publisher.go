package ports

import "github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"

// StatePublisher holds the most recent successfully read snapshot for the
// presentation boundary. Publish never blocks on readers and Current never
// observes a partially written snapshot.
type StatePublisher interface {
	// Publish replaces the current snapshot and increments the version.
	Publish(s *domain.Snapshot)
	// Current returns the latest snapshot and its version, or ok=false
	// before the first publish. The returned snapshot must not be mutated.
	Current() (s *domain.Snapshot, version uint64, ok bool)
}
