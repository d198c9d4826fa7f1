package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/ports"
)

func testSnapshot(seq uint64) *domain.Snapshot {
	ts := time.Unix(1700000000+int64(seq), 0).UTC()
	return &domain.Snapshot{
		Timestamp: ts,
		Seq:       seq,
		Readings: []domain.Reading{
			{Slot: 1, Channel: 0, Kind: domain.ParamVMon, Value: float64(seq) * 100, Timestamp: ts},
		},
	}
}

func TestFileJournalAppendIterateCommit(t *testing.T) {
	dir := t.TempDir()

	j, err := NewFileJournal(dir)
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}

	id1, err := j.Append(testSnapshot(1))
	if err != nil || id1 != 1 {
		t.Fatalf("append 1: %v id=%d", err, id1)
	}
	id2, err := j.Append(testSnapshot(2))
	if err != nil || id2 != 2 {
		t.Fatalf("append 2: %v id=%d", err, id2)
	}

	var seqs []uint64
	if err := j.Iterate(1, func(id ports.JournalEntryID, s *domain.Snapshot) error {
		seqs = append(seqs, s.Seq)
		return nil
	}); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(seqs) != 2 || seqs[0] != 1 || seqs[1] != 2 {
		t.Fatalf("expected seqs [1 2], got %v", seqs)
	}

	if err := j.Commit(id1); err != nil {
		t.Fatalf("commit: %v", err)
	}
	stats := j.Stats()
	if stats.OldestUncommitted != 2 || stats.LatestAppended != 2 {
		t.Fatalf("unexpected stats after commit: %+v", stats)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen: committed watermark and entry ids must survive.
	j2, err := NewFileJournal(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j2.Close()

	stats = j2.Stats()
	if stats.OldestUncommitted != 2 || stats.LatestAppended != 2 {
		t.Fatalf("unexpected stats after reopen: %+v", stats)
	}

	seqs = nil
	if err := j2.Iterate(stats.OldestUncommitted, func(id ports.JournalEntryID, s *domain.Snapshot) error {
		seqs = append(seqs, s.Seq)
		return nil
	}); err != nil {
		t.Fatalf("iterate after reopen: %v", err)
	}
	if len(seqs) != 1 || seqs[0] != 2 {
		t.Fatalf("expected only uncommitted seq 2, got %v", seqs)
	}

	id3, err := j2.Append(testSnapshot(3))
	if err != nil || id3 != 3 {
		t.Fatalf("append after reopen: %v id=%d", err, id3)
	}
}

func TestFileJournalIterateFromSkipsCommitted(t *testing.T) {
	j, err := NewFileJournal(t.TempDir())
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	defer j.Close()

	for i := 1; i <= 5; i++ {
		if _, err := j.Append(testSnapshot(uint64(i))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	var ids []ports.JournalEntryID
	if err := j.Iterate(3, func(id ports.JournalEntryID, s *domain.Snapshot) error {
		ids = append(ids, id)
		return nil
	}); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(ids) != 3 || ids[0] != 3 || ids[2] != 5 {
		t.Fatalf("expected ids [3 4 5], got %v", ids)
	}
}

func TestFileJournalTruncatesTornTail(t *testing.T) {
	dir := t.TempDir()

	j, err := NewFileJournal(dir)
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	if _, err := j.Append(testSnapshot(1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := j.Append(testSnapshot(2)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Simulate a crash mid-write: drop the last few bytes of the log.
	path := filepath.Join(dir, "journal.log")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if err := os.Truncate(path, info.Size()-5); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	j2, err := NewFileJournal(dir)
	if err != nil {
		t.Fatalf("reopen torn journal: %v", err)
	}
	defer j2.Close()

	var ids []ports.JournalEntryID
	if err := j2.Iterate(1, func(id ports.JournalEntryID, s *domain.Snapshot) error {
		ids = append(ids, id)
		return nil
	}); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected only the complete entry, got %v", ids)
	}

	// New appends continue after the surviving entry.
	id, err := j2.Append(testSnapshot(3))
	if err != nil || id != 2 {
		t.Fatalf("append after truncation: %v id=%d", err, id)
	}
}

func TestFileJournalCommitIsMonotonic(t *testing.T) {
	j, err := NewFileJournal(t.TempDir())
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	defer j.Close()

	for i := 1; i <= 3; i++ {
		if _, err := j.Append(testSnapshot(uint64(i))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := j.Commit(3); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := j.Commit(1); err != nil {
		t.Fatalf("stale commit: %v", err)
	}
	if got := j.Stats().OldestUncommitted; got != 4 {
		t.Fatalf("stale commit moved watermark: oldest=%d", got)
	}
}
