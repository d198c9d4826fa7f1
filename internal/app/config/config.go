package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/adapters/caenhv"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/adapters/transport/opcuagw"
)

const (
	TransportOPCUA = "opcua"
	TransportSim   = "sim"
)

type Config struct {
	Settings SettingsConfig `yaml:"settings"`
	Crate    caenhv.Config  `yaml:"crate"`
	Gateway  opcuagw.Config `yaml:"gateway"`
	Storage  StorageConfig  `yaml:"storage"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Journal  JournalConfig  `yaml:"journal"`
}

// SettingsConfig carries the scheduler cadences and failure thresholds.
// Intervals are plain milliseconds in YAML, matching the original
// PollingInterval_ms / DBCommitInterval_ms knobs.
type SettingsConfig struct {
	PollIntervalMs         int    `yaml:"poll_interval_ms"`
	CommitIntervalMs       int    `yaml:"commit_interval_ms"`
	MaxConsecutiveFailures int    `yaml:"max_consecutive_failures"`
	MaxBufferedSnapshots   int    `yaml:"max_buffered_snapshots"`
	Transport              string `yaml:"transport"`
}

func (s SettingsConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMs) * time.Millisecond
}

func (s SettingsConfig) CommitInterval() time.Duration {
	return time.Duration(s.CommitIntervalMs) * time.Millisecond
}

type StorageConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// JournalConfig enables the on-disk journal when Dir is non-empty.
type JournalConfig struct {
	Dir string `yaml:"dir"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Settings.PollIntervalMs <= 0 {
		c.Settings.PollIntervalMs = 1000
	}
	if c.Settings.CommitIntervalMs <= 0 {
		c.Settings.CommitIntervalMs = 60_000
	}
	if c.Settings.MaxConsecutiveFailures <= 0 {
		c.Settings.MaxConsecutiveFailures = 3
	}
	if c.Settings.Transport == "" {
		c.Settings.Transport = TransportOPCUA
	}
	if len(c.Crate.Groups) == 0 {
		c.Crate.Groups = DefaultGroups()
	}
	if c.Storage.Table == "" {
		c.Storage.Table = "hv_data"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}

	c.Crate.ApplyDefaults()
	c.Gateway.ApplyDefaults()
}

func (c *Config) Validate() error {
	if err := c.Crate.Validate(); err != nil {
		return fmt.Errorf("crate config: %w", err)
	}
	switch c.Settings.Transport {
	case TransportOPCUA:
		if err := c.Gateway.Validate(); err != nil {
			return fmt.Errorf("gateway config: %w", err)
		}
	case TransportSim:
	default:
		return fmt.Errorf("settings.transport must be %q or %q", TransportOPCUA, TransportSim)
	}
	if c.Storage.ConnString == "" {
		return fmt.Errorf("storage.conn_string is required")
	}
	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	if c.Settings.CommitIntervalMs < c.Settings.PollIntervalMs {
		return fmt.Errorf("commit_interval_ms must be >= poll_interval_ms")
	}
	return nil
}

// DefaultGroups is the crate map of the reference installation: one A7030P
// primary board and two A7435SN distribution boards.
func DefaultGroups() []caenhv.GroupConfig {
	return []caenhv.GroupConfig{
		{Slot: 1, Model: "A7030P", Channels: 48},
		{Slot: 4, Model: "A7435SN", Channels: 24},
		{Slot: 8, Model: "A7435SN", Channels: 24},
	}
}
