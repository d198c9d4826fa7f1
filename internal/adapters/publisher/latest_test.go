package publisher

import (
	"sync"
	"testing"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"
)

func TestLatestEmptyBeforeFirstPublish(t *testing.T) {
	l := NewLatest()
	if snap, version, ok := l.Current(); ok || snap != nil || version != 0 {
		t.Fatalf("expected empty publisher, got snap=%v version=%d ok=%v", snap, version, ok)
	}
}

func TestLatestVersionIncrements(t *testing.T) {
	l := NewLatest()

	for i := uint64(1); i <= 5; i++ {
		l.Publish(&domain.Snapshot{Seq: i})
		snap, version, ok := l.Current()
		if !ok {
			t.Fatalf("expected a snapshot after publish %d", i)
		}
		if snap.Seq != i {
			t.Fatalf("expected seq %d, got %d", i, snap.Seq)
		}
		if version != i {
			t.Fatalf("expected version %d, got %d", i, version)
		}
	}
}

func TestLatestNilPublishIgnored(t *testing.T) {
	l := NewLatest()
	l.Publish(&domain.Snapshot{Seq: 1})
	l.Publish(nil)

	snap, version, ok := l.Current()
	if !ok || snap.Seq != 1 || version != 1 {
		t.Fatalf("nil publish must not change state: snap=%v version=%d ok=%v", snap, version, ok)
	}
}

func TestLatestConcurrentReadersSeeConsistentPairs(t *testing.T) {
	l := NewLatest()

	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := uint64(1); i <= 2000; i++ {
			l.Publish(&domain.Snapshot{Seq: i})
		}
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var lastVersion uint64
			for {
				snap, version, ok := l.Current()
				if ok {
					// Snapshot and version are one atomic pair.
					if snap.Seq != version {
						t.Errorf("torn read: seq %d version %d", snap.Seq, version)
						return
					}
					if version < lastVersion {
						t.Errorf("version went backwards: %d after %d", version, lastVersion)
						return
					}
					lastVersion = version
				}
				select {
				case <-stop:
					return
				default:
				}
			}
		}()
	}

	wg.Wait()
}
