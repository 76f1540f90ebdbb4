package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	digest "github.com/lucasjlepore/polar-digest"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"POLAR_ACCESS_TOKEN", "POLAR_BASE_URL", "POLAR_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, digest.DefaultConfig(), cfg.SummaryConfig())
	assert.Equal(t, 5, cfg.AccessLink.BatchWidth)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "polardigest.yaml")
	yamlText := `
accesslink:
  access_token: file-token
  timeout: 5s
summary:
  np_window_seconds: 60
  nadir_window: 5
export:
  format: csv
`
	require.NoError(t, os.WriteFile(path, []byte(yamlText), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "file-token", cfg.AccessLink.AccessToken)
	assert.Equal(t, 5*time.Second, cfg.GetTimeout())
	assert.Equal(t, 5, cfg.AccessLink.BatchWidth)
	assert.Equal(t, "csv", cfg.Export.Format)

	sc := cfg.SummaryConfig()
	assert.Equal(t, 60.0, sc.NPWindowSeconds)
	assert.Equal(t, 5, sc.NadirWindow)
	assert.Equal(t, 50.0, sc.HRVDiffThresholdMs)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("summary: [oops"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("POLAR_ACCESS_TOKEN", "env-token")
	t.Setenv("POLAR_BASE_URL", "http://localhost:9999")
	t.Setenv("POLAR_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.AccessLink.AccessToken)
	assert.Equal(t, "http://localhost:9999", cfg.AccessLink.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"batch width": func(c *Config) { c.AccessLink.BatchWidth = 0 },
		"timeout":     func(c *Config) { c.AccessLink.Timeout = "soon" },
		"np window":   func(c *Config) { c.Summary.NPWindowSeconds = -1 },
		"hrv":         func(c *Config) { c.Summary.HRVDiffThresholdMs = 0 },
		"temperature": func(c *Config) { c.Summary.TemperatureScale = 0 },
		"nadir":       func(c *Config) { c.Summary.NadirWindow = 0 },
		"rollover":    func(c *Config) { c.Summary.RolloverHour = 24 },
		"export":      func(c *Config) { c.Export.Format = "xlsx" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "cfg.yaml")
	cfg := Default()
	cfg.Export.Overwrite = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
