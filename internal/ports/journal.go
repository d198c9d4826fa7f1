package ports

import "github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"

type JournalEntryID uint64

// Journal is an optional on-disk record of snapshots awaiting commit, so a
// crash between commit ticks does not lose buffered history.
type Journal interface {
	Append(s *domain.Snapshot) (JournalEntryID, error)
	// Iterate replays entries with id >= from in append order.
	Iterate(from JournalEntryID, fn func(id JournalEntryID, s *domain.Snapshot) error) error
	// Commit marks every entry up to and including upto as persisted.
	Commit(upto JournalEntryID) error
	Stats() JournalStats
	Close() error
}

type JournalStats struct {
	OldestUncommitted JournalEntryID
	LatestAppended    JournalEntryID
	SizeBytes         int64
}
