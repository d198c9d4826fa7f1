package monitor

import "sync"

// degradedTracker counts consecutive read and write failures independently.
// Either stream reaching the threshold raises the degraded signal; the signal
// clears once both streams are back under it.
type degradedTracker struct {
	mu        sync.Mutex
	threshold int
	reads     int
	writes    int
	onChange  func(degraded bool)
}

func newDegradedTracker(threshold int, onChange func(bool)) *degradedTracker {
	if threshold <= 0 {
		threshold = 3
	}
	return &degradedTracker{threshold: threshold, onChange: onChange}
}

func (d *degradedTracker) readFailure()  { d.update(func() { d.reads++ }) }
func (d *degradedTracker) readSuccess()  { d.update(func() { d.reads = 0 }) }
func (d *degradedTracker) writeFailure() { d.update(func() { d.writes++ }) }
func (d *degradedTracker) writeSuccess() { d.update(func() { d.writes = 0 }) }

func (d *degradedTracker) degraded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.degradedLocked()
}

func (d *degradedTracker) degradedLocked() bool {
	return d.reads >= d.threshold || d.writes >= d.threshold
}

func (d *degradedTracker) update(apply func()) {
	d.mu.Lock()
	before := d.degradedLocked()
	apply()
	after := d.degradedLocked()
	d.mu.Unlock()

	if before != after && d.onChange != nil {
		d.onChange(after)
	}
}
