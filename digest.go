// Package digest reduces raw physiological entities (exercises, sleep nights,
// nightly recharge, activity days and continuous heart rate) into compact
// summary records. Every summarizer is a pure function; fields whose source
// channel or series is missing are left nil and omitted from JSON.
package digest

import (
	"strings"
	"time"

	"github.com/lucasjlepore/polar-digest/channels"
	"github.com/lucasjlepore/polar-digest/timeline"
)

// Config controls the tunable parameters of every summarizer.
type Config struct {
	channels.Config

	// RolloverHour is the clock hour before which night samples belong to
	// the following day when the session started at or after it.
	RolloverHour int
	// NadirWindow is the rolling-mean width used for series nadirs.
	NadirWindow int
}

// DefaultConfig returns the conventional parameters.
func DefaultConfig() Config {
	return Config{
		Config:       channels.DefaultConfig(),
		RolloverHour: timeline.DefaultRolloverHour,
		NadirWindow:  timeline.DefaultNadirWindow,
	}
}

func (c Config) withDefaults() Config {
	if c.RolloverHour <= 0 || c.RolloverHour > 23 {
		c.RolloverHour = timeline.DefaultRolloverHour
	}
	if c.NadirWindow <= 0 {
		c.NadirWindow = timeline.DefaultNadirWindow
	}
	return c
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseTimestamp accepts the upstream timestamp variants, with or without a
// zone offset. Timestamps without an offset keep their wall clock in UTC.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
