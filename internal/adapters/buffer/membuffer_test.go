package buffer

import (
	"sync"
	"testing"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"
)

func snap(seq uint64) *domain.Snapshot {
	return &domain.Snapshot{Seq: seq}
}

func TestMemBufferAppendDrainOrder(t *testing.T) {
	b := NewMemBuffer(0)

	if !b.Append(snap(1)) || !b.Append(snap(2)) || !b.Append(snap(3)) {
		t.Fatalf("expected successful append")
	}
	if b.Len() != 3 {
		t.Fatalf("expected 3 buffered, got %d", b.Len())
	}

	drained := b.DrainAll()
	if len(drained) != 3 {
		t.Fatalf("expected 3 drained, got %d", len(drained))
	}
	for i, s := range drained {
		if s.Seq != uint64(i+1) {
			t.Fatalf("drain out of order: pos %d seq %d", i, s.Seq)
		}
	}

	if b.Len() != 0 {
		t.Fatalf("buffer should be empty after drain, got %d", b.Len())
	}
	if got := b.DrainAll(); got != nil {
		t.Fatalf("empty drain should return nil, got %d snapshots", len(got))
	}
}

func TestMemBufferRequeuePreservesOrder(t *testing.T) {
	b := NewMemBuffer(0)

	b.Append(snap(1))
	b.Append(snap(2))
	drained := b.DrainAll()

	// New snapshots arrive while the failed batch is being re-queued.
	b.Append(snap(3))
	b.Requeue(drained)
	b.Append(snap(4))

	next := b.DrainAll()
	want := []uint64{1, 2, 3, 4}
	if len(next) != len(want) {
		t.Fatalf("expected %d snapshots, got %d", len(want), len(next))
	}
	for i, s := range next {
		if s.Seq != want[i] {
			t.Fatalf("pos %d: expected seq %d, got %d", i, want[i], s.Seq)
		}
	}
}

func TestMemBufferCapacityEvictsOldest(t *testing.T) {
	b := NewMemBuffer(2)

	b.Append(snap(1))
	b.Append(snap(2))
	b.Append(snap(3))

	drained := b.DrainAll()
	if len(drained) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(drained))
	}
	if drained[0].Seq != 2 || drained[1].Seq != 3 {
		t.Fatalf("expected oldest evicted, got seqs %d,%d", drained[0].Seq, drained[1].Seq)
	}
	if b.Dropped() != 1 {
		t.Fatalf("expected 1 dropped, got %d", b.Dropped())
	}
}

func TestMemBufferConcurrentAppendDrainNoLossNoDup(t *testing.T) {
	const appenders = 4
	const perAppender = 500

	b := NewMemBuffer(0)

	appendersDone := make(chan struct{})

	var wg sync.WaitGroup
	for a := 0; a < appenders; a++ {
		wg.Add(1)
		go func(base uint64) {
			defer wg.Done()
			for i := 0; i < perAppender; i++ {
				b.Append(snap(base + uint64(i)))
			}
		}(uint64(a * perAppender))
	}

	done := make(chan struct{})
	seen := make(map[uint64]int)
	go func() {
		defer close(done)
		for {
			for _, s := range b.DrainAll() {
				seen[s.Seq]++
			}
			select {
			case <-appendersDone:
				for _, s := range b.DrainAll() {
					seen[s.Seq]++
				}
				return
			default:
			}
		}
	}()

	wg.Wait()
	close(appendersDone)
	<-done

	if len(seen) != appenders*perAppender {
		t.Fatalf("expected %d unique snapshots, got %d", appenders*perAppender, len(seen))
	}
	for seq, n := range seen {
		if n != 1 {
			t.Fatalf("seq %d drained %d times", seq, n)
		}
	}
}
