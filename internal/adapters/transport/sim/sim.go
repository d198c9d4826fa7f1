package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/ports"
)

// Transport is an in-process crate simulator used by the CLI and the
// examples when no gateway is reachable. Channels ramp towards their set
// voltage with a little ripple so the display has something to show.
type Transport struct {
	mu       sync.Mutex
	start    time.Time
	setVolts float64
	setCurr  float64
}

func New() *Transport {
	return &Transport{
		start:    time.Now(),
		setVolts: 1500,
		setCurr:  300,
	}
}

func (t *Transport) GetChParam(ctx context.Context, slot int, channels []int, param domain.ParameterKind) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	elapsed := time.Since(t.start).Seconds()
	vset, iset := t.setVolts, t.setCurr
	t.mu.Unlock()

	// Ramp over the first minute, then hold with ripple.
	ramp := math.Min(elapsed/60, 1)

	values := make([]float64, len(channels))
	for i, ch := range channels {
		phase := float64(slot*31+ch) * 0.7
		switch param {
		case domain.ParamPower, domain.ParamPowerOn:
			values[i] = 1
		case domain.ParamPowerDown:
			values[i] = 0
		case domain.ParamVMon:
			values[i] = vset*ramp + 2*math.Sin(elapsed/7+phase)
		case domain.ParamIMon:
			values[i] = iset*ramp + 0.5*math.Sin(elapsed/11+phase)
		case domain.ParamV0Set:
			values[i] = vset
		case domain.ParamI0Set:
			values[i] = iset
		}
	}
	return values, nil
}

func (t *Transport) Close() error { return nil }

var _ ports.SlotParamReader = (*Transport)(nil)
