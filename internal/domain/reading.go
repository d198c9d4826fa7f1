package domain

import "time"

// ParameterKind identifies one of the board parameters fetched per channel.
type ParameterKind string

const (
	ParamPower     ParameterKind = "Pw"
	ParamPowerOn   ParameterKind = "POn"
	ParamPowerDown ParameterKind = "PDwn"
	ParamVMon      ParameterKind = "VMon"
	ParamIMon      ParameterKind = "IMon"
	ParamV0Set     ParameterKind = "V0Set"
	ParamI0Set     ParameterKind = "I0Set"
)

// Parameters lists every kind fetched on a poll tick, in read order.
var Parameters = []ParameterKind{
	ParamPower, ParamPowerOn, ParamPowerDown,
	ParamVMon, ParamIMon, ParamV0Set, ParamI0Set,
}

// Integral reports whether the parameter carries a status flag rather than a
// measured quantity. Flag values are stored as integers.
func (k ParameterKind) Integral() bool {
	switch k {
	case ParamPower, ParamPowerOn, ParamPowerDown:
		return true
	}
	return false
}

// Reading is a single immutable measurement of one parameter on one channel.
type Reading struct {
	Slot      int           `json:"slot"`
	Channel   int           `json:"ch"`
	Kind      ParameterKind `json:"kind"`
	Value     float64       `json:"value"`
	Timestamp time.Time     `json:"ts"`
}

// Snapshot is the full set of readings produced by one bulk read, ordered as
// they were read (slot, then channel, then parameter). Seq is assigned by the
// reader and increases by one per successful read.
type Snapshot struct {
	Timestamp time.Time `json:"ts"`
	Seq       uint64    `json:"seq"`
	Readings  []Reading `json:"readings"`
}

// ChannelState is the pivoted per-channel view of a Snapshot, one entry per
// (slot, channel) with all parameters, matching the shape of a storage row.
type ChannelState struct {
	Slot      int
	Channel   int
	Timestamp time.Time
	Params    map[ParameterKind]float64
}

// Channels pivots the flat reading sequence into per-channel states,
// preserving the order channels first appear in the snapshot.
func (s *Snapshot) Channels() []ChannelState {
	if s == nil || len(s.Readings) == 0 {
		return nil
	}

	type key struct{ slot, ch int }
	index := make(map[key]int)
	out := make([]ChannelState, 0, len(s.Readings)/len(Parameters)+1)

	for _, r := range s.Readings {
		k := key{r.Slot, r.Channel}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, ChannelState{
				Slot:      r.Slot,
				Channel:   r.Channel,
				Timestamp: s.Timestamp,
				Params:    make(map[ParameterKind]float64, len(Parameters)),
			})
		}
		out[i].Params[r.Kind] = r.Value
	}
	return out
}
