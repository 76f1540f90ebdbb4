// Package config loads the YAML configuration of the polardigest CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	digest "github.com/lucasjlepore/polar-digest"
	"github.com/lucasjlepore/polar-digest/accesslink"
	"github.com/lucasjlepore/polar-digest/channels"
)

// Config holds all tool configuration.
type Config struct {
	AccessLink AccessLinkSection `yaml:"accesslink"`
	Summary    SummarySection    `yaml:"summary"`
	Logging    LoggingSection    `yaml:"logging"`
	Export     ExportSection     `yaml:"export"`
}

// AccessLinkSection configures the upstream client.
type AccessLinkSection struct {
	BaseURL     string `yaml:"base_url"`
	AccessToken string `yaml:"access_token"`
	Timeout     string `yaml:"timeout"`
	BatchWidth  int    `yaml:"batch_width"`
}

// SummarySection carries the summarizer parameters.
type SummarySection struct {
	NPWindowSeconds    float64 `yaml:"np_window_seconds"`
	HRVDiffThresholdMs float64 `yaml:"hrv_diff_threshold_ms"`
	TemperatureScale   float64 `yaml:"temperature_scale"`
	RolloverHour       int     `yaml:"rollover_hour"`
	NadirWindow        int     `yaml:"nadir_window"`
}

// LoggingSection configures zap.
type LoggingSection struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ExportSection configures artifact bundles.
type ExportSection struct {
	Format    string `yaml:"format"`
	Overwrite bool   `yaml:"overwrite"`
}

// Default returns the built-in configuration.
func Default() *Config {
	d := digest.DefaultConfig()
	return &Config{
		AccessLink: AccessLinkSection{
			BaseURL:    accesslink.DefaultBaseURL,
			Timeout:    "30s",
			BatchWidth: accesslink.DefaultBatchWidth,
		},
		Summary: SummarySection{
			NPWindowSeconds:    d.NPWindowSeconds,
			HRVDiffThresholdMs: d.HRVDiffThresholdMs,
			TemperatureScale:   d.TemperatureScale,
			RolloverHour:       d.RolloverHour,
			NadirWindow:        d.NadirWindow,
		},
		Logging: LoggingSection{
			Level:  "info",
			Format: "json",
		},
		Export: ExportSection{
			Format: "parquet",
		},
	}
}

// Load reads path over the defaults. An empty or missing path yields the
// defaults. Environment overrides apply in every case.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if token := os.Getenv("POLAR_ACCESS_TOKEN"); token != "" {
		c.AccessLink.AccessToken = token
	}
	if url := os.Getenv("POLAR_BASE_URL"); url != "" {
		c.AccessLink.BaseURL = url
	}
	if level := os.Getenv("POLAR_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate rejects parameters the summarizers cannot work with.
func (c *Config) Validate() error {
	if c.AccessLink.BatchWidth <= 0 {
		return fmt.Errorf("accesslink.batch_width must be positive, got %d", c.AccessLink.BatchWidth)
	}
	if c.AccessLink.Timeout != "" {
		if _, err := time.ParseDuration(c.AccessLink.Timeout); err != nil {
			return fmt.Errorf("accesslink.timeout: %w", err)
		}
	}
	s := c.Summary
	if s.NPWindowSeconds <= 0 {
		return fmt.Errorf("summary.np_window_seconds must be positive, got %v", s.NPWindowSeconds)
	}
	if s.HRVDiffThresholdMs <= 0 {
		return fmt.Errorf("summary.hrv_diff_threshold_ms must be positive, got %v", s.HRVDiffThresholdMs)
	}
	if s.TemperatureScale <= 0 {
		return fmt.Errorf("summary.temperature_scale must be positive, got %v", s.TemperatureScale)
	}
	if s.NadirWindow <= 0 {
		return fmt.Errorf("summary.nadir_window must be positive, got %d", s.NadirWindow)
	}
	if s.RolloverHour < 1 || s.RolloverHour > 23 {
		return fmt.Errorf("summary.rollover_hour must be within 1..23, got %d", s.RolloverHour)
	}
	switch c.Export.Format {
	case "csv", "parquet":
	default:
		return fmt.Errorf("export.format must be csv or parquet, got %q", c.Export.Format)
	}
	return nil
}

// GetTimeout returns the request timeout, 30s when unset or malformed.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.AccessLink.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// SummaryConfig converts the summary section into summarizer parameters.
func (c *Config) SummaryConfig() digest.Config {
	return digest.Config{
		Config: channels.Config{
			NPWindowSeconds:    c.Summary.NPWindowSeconds,
			HRVDiffThresholdMs: c.Summary.HRVDiffThresholdMs,
			TemperatureScale:   c.Summary.TemperatureScale,
		},
		RolloverHour: c.Summary.RolloverHour,
		NadirWindow:  c.Summary.NadirWindow,
	}
}
