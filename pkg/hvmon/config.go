package hvmon

import (
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/adapters/caenhv"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/adapters/transport/opcuagw"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/app/config"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// SettingsConfig carries cadences and failure thresholds.
	SettingsConfig = config.SettingsConfig
	// CrateConfig describes the group/slot topology.
	CrateConfig = caenhv.Config
	// GroupConfig describes one physical board.
	GroupConfig = caenhv.GroupConfig
	// GatewayConfig holds OPC UA gateway connection details.
	GatewayConfig = opcuagw.Config
	// StorageConfig configures the batch sink.
	StorageConfig = config.StorageConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// JournalConfig configures on-disk durability.
	JournalConfig = config.JournalConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultGroups returns the crate map of the reference installation.
func DefaultGroups() []GroupConfig {
	return config.DefaultGroups()
}
