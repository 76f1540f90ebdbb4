// Package timeline turns clock-of-day labelled samples from a night session
// into a monotonic minute timeline and derives trends and sleep architecture
// from it.
package timeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// DefaultRolloverHour splits evening hours from the following morning.
const DefaultRolloverHour = 18

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ParseClock reads "HH:MM" or "HH:MM:SS".
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Clock{}, fmt.Errorf("clock %q: expected HH:MM[:SS]", s)
	}
	vals := make([]int, 3)
	limits := []int{23, 59, 59}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Clock{}, fmt.Errorf("clock %q: %w", s, err)
		}
		if n < 0 || n > limits[i] {
			return Clock{}, fmt.Errorf("clock %q: field %d out of range", s, i)
		}
		vals[i] = n
	}
	return Clock{Hour: vals[0], Minute: vals[1], Second: vals[2]}, nil
}

// MinuteOfDay returns minutes since midnight, ignoring seconds.
func (c Clock) MinuteOfDay() int {
	return c.Hour*60 + c.Minute
}

// String renders the clock as "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// TrendSeries maps a clock label to one sample value over a session.
type TrendSeries map[string]float64

// Point is a sample placed on the normalized timeline.
type Point struct {
	Clock   string  `json:"clock_time"`
	Minutes int     `json:"normalized_minutes"`
	Value   float64 `json:"value"`
}

// Normalizer keeps a night session's clock labels monotonic across midnight.
// When the session starts at or after RolloverHour, any label with an hour
// below RolloverHour belongs to the next calendar day.
type Normalizer struct {
	StartHour    int
	RolloverHour int
}

// NewNormalizer builds a normalizer; a non-positive rollover uses
// DefaultRolloverHour.
func NewNormalizer(startHour, rolloverHour int) Normalizer {
	if rolloverHour <= 0 {
		rolloverHour = DefaultRolloverHour
	}
	return Normalizer{StartHour: startHour, RolloverHour: rolloverHour}
}

// Minutes places a clock on the session timeline.
func (n Normalizer) Minutes(c Clock) int {
	m := c.MinuteOfDay()
	if n.StartHour >= n.RolloverHour && c.Hour < n.RolloverHour {
		m += minutesPerDay
	}
	return m
}

// Points normalizes a series and orders it along the timeline. Labels that
// do not parse are skipped.
func (n Normalizer) Points(series TrendSeries) []Point {
	out := make([]Point, 0, len(series))
	for label, value := range series {
		c, err := ParseClock(label)
		if err != nil {
			continue
		}
		out = append(out, Point{Clock: c.String(), Minutes: n.Minutes(c), Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes < out[j].Minutes
		}
		return out[i].Clock < out[j].Clock
	})
	return out
}

// InferStartHour picks a reference hour when no session start timestamp is
// known: the earliest evening hour when any label falls at or after the
// rollover hour, otherwise the earliest hour overall. Returns -1 when no label
// parses.
func InferStartHour(labels []string, rolloverHour int) int {
	if rolloverHour <= 0 {
		rolloverHour = DefaultRolloverHour
	}
	earliest, earliestEvening := -1, -1
	for _, label := range labels {
		c, err := ParseClock(label)
		if err != nil {
			continue
		}
		if earliest < 0 || c.Hour < earliest {
			earliest = c.Hour
		}
		if c.Hour >= rolloverHour && (earliestEvening < 0 || c.Hour < earliestEvening) {
			earliestEvening = c.Hour
		}
	}
	if earliestEvening >= 0 {
		return earliestEvening
	}
	return earliest
}

// Labels returns the keys of a series.
func (s TrendSeries) Labels() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}
