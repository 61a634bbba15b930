package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/portpatrol/internal/ports"
)

// Duration wraps time.Duration for YAML unmarshalling.
type Duration struct {
	time.Duration
}

// UnmarshalText parses values such as "2s" or "500ms".
func (d *Duration) UnmarshalText(text []byte) error {
	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 {
		d.Duration = 0
		return nil
	}
	dur, err := time.ParseDuration(string(trimmed))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(text), err)
	}
	d.Duration = dur
	return nil
}

// MarshalText renders the duration using time.Duration formatting.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// PortRange wraps ports.Range for YAML unmarshalling of "3000" and
// "3000-3010" forms.
type PortRange struct {
	ports.Range
}

func (r *PortRange) UnmarshalText(text []byte) error {
	parsed, err := ports.ParseRange(string(text))
	if err != nil {
		return err
	}
	r.Range = parsed
	return nil
}

func (r PortRange) MarshalText() ([]byte, error) {
	return []byte(r.Range.String()), nil
}

// Config is the persisted application configuration. It is read-mostly: the
// monitor reads a fresh copy each cycle through a Store and never writes it.
type Config struct {
	Monitoring    MonitoringConfig    `yaml:"monitoring"`
	Integrations  IntegrationsConfig  `yaml:"integrations"`
	Notifications NotificationsConfig `yaml:"notifications"`
	API           APIConfig           `yaml:"api"`
}

type MonitoringConfig struct {
	PollInterval   Duration    `yaml:"pollInterval"`
	IdleThreshold  Duration    `yaml:"idleThreshold"`
	IdleMultiplier int         `yaml:"idleMultiplier"`
	PortRanges     []PortRange `yaml:"portRanges"`
}

type IntegrationsConfig struct {
	Docker          bool `yaml:"docker"`
	Brew            bool `yaml:"brew"`
	WindowsServices bool `yaml:"windowsServices"`
}

type NotificationsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type APIConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration: the common developer port
// ranges polled every two seconds, all integrations on.
func Default() Config {
	rangeSpecs := []ports.Range{
		{Low: 3000, High: 3010},   // Node.js, React, Next.js
		{Low: 3306, High: 3306},   // MySQL
		{Low: 4000, High: 4010},   // alternative Node servers
		{Low: 5001, High: 5010},   // Flask and friends
		{Low: 5173, High: 5173},   // Vite
		{Low: 5432, High: 5432},   // PostgreSQL
		{Low: 6379, High: 6380},   // Redis
		{Low: 8000, High: 8100},   // Django, Python HTTP servers
		{Low: 8080, High: 8090},   // Tomcat, alternative HTTP
		{Low: 9000, High: 9010},   // assorted dev tools
		{Low: 27017, High: 27017}, // MongoDB
	}
	ranges := make([]PortRange, len(rangeSpecs))
	for i, r := range rangeSpecs {
		ranges[i] = PortRange{Range: r}
	}
	return Config{
		Monitoring: MonitoringConfig{
			PollInterval:   Duration{2 * time.Second},
			IdleThreshold:  Duration{30 * time.Second},
			IdleMultiplier: 2,
			PortRanges:     ranges,
		},
		Integrations: IntegrationsConfig{
			Docker:          true,
			Brew:            true,
			WindowsServices: true,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
		},
		API: APIConfig{
			Addr: "127.0.0.1:7410",
		},
	}
}

// Clone returns a deep copy so callers can hand snapshots across goroutines
// without sharing slices.
func (c Config) Clone() Config {
	dup := c
	dup.Monitoring.PortRanges = append([]PortRange(nil), c.Monitoring.PortRanges...)
	return dup
}

// Ranges unwraps the configured port ranges.
func (m MonitoringConfig) Ranges() []ports.Range {
	out := make([]ports.Range, len(m.PortRanges))
	for i, r := range m.PortRanges {
		out[i] = r.Range
	}
	return out
}

// Validate rejects configurations the monitor could not run with.
func (c Config) Validate() error {
	poll := c.Monitoring.PollInterval.Duration
	if poll < time.Second || poll > 5*time.Minute {
		return fmt.Errorf("monitoring.pollInterval must be between 1s and 5m, got %s", poll)
	}
	if c.Monitoring.IdleThreshold.Duration <= 0 {
		return fmt.Errorf("monitoring.idleThreshold must be positive, got %s", c.Monitoring.IdleThreshold.Duration)
	}
	if c.Monitoring.IdleMultiplier < 1 {
		return fmt.Errorf("monitoring.idleMultiplier must be at least 1, got %d", c.Monitoring.IdleMultiplier)
	}
	return nil
}

// DefaultPath returns the config file location, ~/.portpatrol.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".portpatrol.yaml"
	}
	return filepath.Join(home, ".portpatrol.yaml")
}

// Load reads and validates the config file at path. Keys absent from the
// file keep their defaults; unknown keys are rejected.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	ensureSecurePermissions(path)

	cfg := Default()
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%s: decode: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrCreate loads the config file, writing the defaults first when no
// file exists yet.
func LoadOrCreate(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("stat config file: %w", err)
		}
		cfg := Default()
		if err := Save(path, cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	return Load(path)
}

// Save writes the config with owner-only permissions.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
