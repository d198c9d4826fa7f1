package hv

import (
	base "github.com/opercjy/RENE-predictive-maintenance-HV/pkg/hvmon"
)

// Re-exported errors for convenience.
var (
	ErrChannelSinkClosed = base.ErrChannelSinkClosed
)

// Parameter kinds fetched on every poll tick.
const (
	ParamPower     = base.ParamPower
	ParamPowerOn   = base.ParamPowerOn
	ParamPowerDown = base.ParamPowerDown
	ParamVMon      = base.ParamVMon
	ParamIMon      = base.ParamIMon
	ParamV0Set     = base.ParamV0Set
	ParamI0Set     = base.ParamI0Set
)

// Type aliases so consumers can import the module root directly.
type (
	Config            = base.Config
	SettingsConfig    = base.SettingsConfig
	CrateConfig       = base.CrateConfig
	GroupConfig       = base.GroupConfig
	GatewayConfig     = base.GatewayConfig
	StorageConfig     = base.StorageConfig
	MetricsConfig     = base.MetricsConfig
	JournalConfig     = base.JournalConfig
	Runtime           = base.Runtime
	RuntimeOption     = base.RuntimeOption
	Snapshot          = base.Snapshot
	Reading           = base.Reading
	ChannelState      = base.ChannelState
	ParameterKind     = base.ParameterKind
	GroupReader       = base.GroupReader
	SlotParamReader   = base.SlotParamReader
	SampleBuffer      = base.SampleBuffer
	StatePublisher    = base.StatePublisher
	Sink              = base.Sink
	Journal           = base.Journal
	JournalEntryID    = base.JournalEntryID
	JournalStats      = base.JournalStats
	Observability     = base.Observability
	Field             = base.Field
	ReadFailure       = base.ReadFailure
	Subscription      = base.Subscription
	Monitor           = base.Monitor
	SnapshotBatchSink = base.SnapshotBatchSink
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func DefaultGroups() []GroupConfig {
	return base.DefaultGroups()
}

// Runtime construction and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithTransport(tr SlotParamReader) RuntimeOption { return base.WithTransport(tr) }
func WithReader(r GroupReader) RuntimeOption         { return base.WithReader(r) }
func WithSink(s Sink) RuntimeOption                  { return base.WithSink(s) }
func WithBuffer(b SampleBuffer) RuntimeOption        { return base.WithBuffer(b) }
func WithPublisher(p StatePublisher) RuntimeOption   { return base.WithPublisher(p) }
func WithJournal(j Journal) RuntimeOption            { return base.WithJournal(j) }
func WithoutJournal() RuntimeOption                  { return base.WithoutJournal() }
func WithObservability(o Observability) RuntimeOption {
	return base.WithObservability(o)
}

// Sink adapters.
func NewCallbackSink(name string, fn SnapshotBatchSink) Sink {
	return base.NewCallbackSink(name, fn)
}

func NewChannelSink(name string, buffer int) (Sink, <-chan []*Snapshot, func()) {
	return base.NewChannelSink(name, buffer)
}
