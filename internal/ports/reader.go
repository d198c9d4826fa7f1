package ports

import (
	"context"
	"fmt"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"
)

// GroupReader performs one bulk read of every monitored parameter across all
// active slots. The number of underlying transport requests issued per call
// is bounded by (slots × parameters) and never depends on the channel count.
type GroupReader interface {
	ReadAll(ctx context.Context) (*domain.Snapshot, error)
}

// FailureKind classifies a failed bulk read.
type FailureKind int

const (
	// FailureTransient covers timeouts and transport errors; the next tick
	// retries as usual.
	FailureTransient FailureKind = iota
	// FailureMalformed covers structurally invalid responses (short value
	// vectors, non-numeric values). Scheduled like a transient failure but
	// flagged distinctly for diagnostics.
	FailureMalformed
)

func (k FailureKind) String() string {
	if k == FailureMalformed {
		return "malformed"
	}
	return "transient"
}

// ReadFailure is the typed result of a failed bulk read. Partial, when
// non-nil, holds whatever was read before the failure; it is never buffered
// or published, only available for diagnostics.
type ReadFailure struct {
	Kind    FailureKind
	Err     error
	Partial *domain.Snapshot
}

func (f *ReadFailure) Error() string {
	return fmt.Sprintf("bulk read failed (%s): %v", f.Kind, f.Err)
}

func (f *ReadFailure) Unwrap() error { return f.Err }
