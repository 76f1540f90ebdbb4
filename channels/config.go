// Package channels holds the per-channel statistical summarizers. Every
// summarizer is a pure reduction that returns nil when its channel yields no
// usable samples, so "not measured" never collapses into zero.
package channels

// Config carries the tunable parameters of the summarizers.
type Config struct {
	// NPWindowSeconds is the rolling window used for normalized power.
	NPWindowSeconds float64
	// HRVDiffThresholdMs is the successive-difference threshold for pNN50.
	HRVDiffThresholdMs float64
	// TemperatureScale divides raw temperature samples into degrees.
	TemperatureScale float64
}

// DefaultConfig returns the conventional parameters (30 s NP window, pNN50,
// tenths-of-degree temperature).
func DefaultConfig() Config {
	return Config{
		NPWindowSeconds:    30,
		HRVDiffThresholdMs: 50,
		TemperatureScale:   10,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.NPWindowSeconds <= 0 {
		c.NPWindowSeconds = def.NPWindowSeconds
	}
	if c.HRVDiffThresholdMs <= 0 {
		c.HRVDiffThresholdMs = def.HRVDiffThresholdMs
	}
	if c.TemperatureScale <= 0 {
		c.TemperatureScale = def.TemperatureScale
	}
	return c
}
