package hvmon

import (
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/app/monitor"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/domain"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/ports"
)

// Snapshot is the full set of parameter readings produced by one poll tick.
type Snapshot = domain.Snapshot

// Reading is a single measurement of one parameter on one channel.
type Reading = domain.Reading

// ChannelState is the per-channel pivot of a snapshot.
type ChannelState = domain.ChannelState

// ParameterKind identifies one of the monitored board parameters.
type ParameterKind = domain.ParameterKind

// Parameter kinds fetched on every poll tick.
const (
	ParamPower     = domain.ParamPower
	ParamPowerOn   = domain.ParamPowerOn
	ParamPowerDown = domain.ParamPowerDown
	ParamVMon      = domain.ParamVMon
	ParamIMon      = domain.ParamIMon
	ParamV0Set     = domain.ParamV0Set
	ParamI0Set     = domain.ParamI0Set
)

// GroupReader performs one bounded bulk read per poll tick.
type GroupReader = ports.GroupReader

// SlotParamReader is the opaque hardware transport behind the reader.
type SlotParamReader = ports.SlotParamReader

// SampleBuffer accumulates snapshots between commit ticks.
type SampleBuffer = ports.SampleBuffer

// StatePublisher holds the latest snapshot for the presentation boundary.
type StatePublisher = ports.StatePublisher

// Sink persists drained snapshots in one batched write per commit tick.
type Sink = ports.Sink

// Journal optionally records uncommitted snapshots on disk.
type Journal = ports.Journal

// JournalEntryID identifies one appended journal entry.
type JournalEntryID = ports.JournalEntryID

// JournalStats summarizes journal occupancy.
type JournalStats = ports.JournalStats

// Observability emits logs and metrics for the pipeline.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// ReadFailure is the typed result of a failed bulk read.
type ReadFailure = ports.ReadFailure

// Subscription is the presentation layer's handle on the pipeline.
type Subscription = monitor.Subscription

// Monitor owns the schedulers and the shared structures.
type Monitor = monitor.Monitor
