package ports

import "github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"

// Sink persists drained snapshots. WriteBatch must issue a single bulk
// statement per call; the pipeline never performs per-row writes.
type Sink interface {
	WriteBatch(snaps []*domain.Snapshot) error
	Name() string
}
