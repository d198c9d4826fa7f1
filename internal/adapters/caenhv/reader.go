package caenhv

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/ports"
)

// GroupConfig describes one physical board: its slot number and how many
// channels the board carries.
type GroupConfig struct {
	Slot     int    `yaml:"slot"`
	Model    string `yaml:"model"`
	Channels int    `yaml:"channels"`
}

// Config captures the crate topology and per-request timeout for the reader.
type Config struct {
	Groups      []GroupConfig `yaml:"groups"`
	ReadTimeout time.Duration `yaml:"-"`

	// ReadTimeoutMs is the YAML-facing form of ReadTimeout.
	ReadTimeoutMs int `yaml:"read_timeout_ms"`
}

func (c *Config) ApplyDefaults() {
	if c.ReadTimeoutMs <= 0 {
		c.ReadTimeoutMs = 2000
	}
	c.ReadTimeout = time.Duration(c.ReadTimeoutMs) * time.Millisecond
}

func (c *Config) Validate() error {
	if len(c.Groups) == 0 {
		return errors.New("at least one group must be configured")
	}
	seen := make(map[int]bool, len(c.Groups))
	for _, g := range c.Groups {
		if g.Channels <= 0 {
			return fmt.Errorf("group slot %d: channels must be > 0", g.Slot)
		}
		if seen[g.Slot] {
			return fmt.Errorf("group slot %d configured twice", g.Slot)
		}
		seen[g.Slot] = true
	}
	return nil
}

// Reader reads every monitored parameter for every configured group with one
// transport request per (slot, parameter) pair. For the reference topology of
// 3 boards and 7 parameters that is 21 requests per tick regardless of how
// many channels the boards carry.
type Reader struct {
	cfg      Config
	tr       ports.SlotParamReader
	channels map[int][]int
	seq      atomic.Uint64
}

func NewReader(cfg Config, tr ports.SlotParamReader) (*Reader, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, errors.New("transport is required")
	}

	channels := make(map[int][]int, len(cfg.Groups))
	for _, g := range cfg.Groups {
		chs := make([]int, g.Channels)
		for i := range chs {
			chs[i] = i
		}
		channels[g.Slot] = chs
	}

	return &Reader{cfg: cfg, tr: tr, channels: channels}, nil
}

// RequestsPerTick reports the transport request bound for one ReadAll call.
func (r *Reader) RequestsPerTick() int {
	return len(r.cfg.Groups) * len(domain.Parameters)
}

// ReadAll performs one bulk read and returns a complete snapshot, or a
// *ports.ReadFailure. A partially collected snapshot is attached to the
// failure for diagnostics but is never published or buffered.
func (r *Reader) ReadAll(ctx context.Context) (*domain.Snapshot, error) {
	now := time.Now().UTC().Truncate(time.Second)
	snap := &domain.Snapshot{
		Timestamp: now,
		Seq:       r.seq.Load() + 1,
	}

	for _, g := range r.cfg.Groups {
		chs := r.channels[g.Slot]
		for _, param := range domain.Parameters {
			values, err := r.readParam(ctx, g.Slot, chs, param)
			if err != nil {
				var rf *ports.ReadFailure
				if errors.As(err, &rf) {
					rf.Partial = snap
					return nil, rf
				}
				return nil, &ports.ReadFailure{Kind: ports.FailureTransient, Err: err, Partial: snap}
			}
			for i, ch := range chs {
				snap.Readings = append(snap.Readings, domain.Reading{
					Slot:      g.Slot,
					Channel:   ch,
					Kind:      param,
					Value:     values[i],
					Timestamp: now,
				})
			}
		}
	}

	r.seq.Store(snap.Seq)
	return snap, nil
}

func (r *Reader) readParam(ctx context.Context, slot int, chs []int, param domain.ParameterKind) ([]float64, error) {
	rctx := ctx
	if r.cfg.ReadTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, r.cfg.ReadTimeout)
		defer cancel()
	}

	values, err := r.tr.GetChParam(rctx, slot, chs, param)
	if err != nil {
		return nil, &ports.ReadFailure{
			Kind: ports.FailureTransient,
			Err:  fmt.Errorf("slot %d param %s: %w", slot, param, err),
		}
	}
	if len(values) != len(chs) {
		return nil, &ports.ReadFailure{
			Kind: ports.FailureMalformed,
			Err:  fmt.Errorf("slot %d param %s: got %d values for %d channels", slot, param, len(values), len(chs)),
		}
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &ports.ReadFailure{
				Kind: ports.FailureMalformed,
				Err:  fmt.Errorf("slot %d param %s ch %d: non-finite value", slot, param, chs[i]),
			}
		}
	}
	return values, nil
}

var _ ports.GroupReader = (*Reader)(nil)
