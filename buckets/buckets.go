// Package buckets aggregates irregular timestamped samples into fixed,
// wall-clock anchored windows.
package buckets

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/lucasjlepore/polar-digest/timeline"
)

const halfHourBuckets = 48

// ClockSample is a value stamped with a time of day ("HH:MM" or "HH:MM:SS").
type ClockSample struct {
	Clock string
	Value float64
}

// Bucket is one non-empty fixed-width window. Label is the window end.
type Bucket struct {
	Index int     `json:"-"`
	Label string  `json:"window_label"`
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"sample_count"`
}

type accumulator struct {
	sum, min, max float64
	count         int
}

func (a *accumulator) add(v float64) {
	if a.count == 0 || v < a.min {
		a.min = v
	}
	if a.count == 0 || v > a.max {
		a.max = v
	}
	a.sum += v
	a.count++
}

// HalfHourIndex maps a clock to its half-hour window in [0,47].
func HalfHourIndex(c timeline.Clock) int {
	idx := c.Hour * 2
	if c.Minute >= 30 {
		idx++
	}
	return idx
}

// HalfHour groups samples into 30 minute windows anchored at :00 and :30.
// Samples whose clock does not parse are skipped; empty windows are omitted.
func HalfHour(samples []ClockSample) []Bucket {
	var acc [halfHourBuckets]accumulator
	for _, s := range samples {
		c, err := timeline.ParseClock(s.Clock)
		if err != nil || math.IsNaN(s.Value) {
			continue
		}
		acc[HalfHourIndex(c)].add(s.Value)
	}

	out := make([]Bucket, 0, halfHourBuckets)
	for i, a := range acc {
		if a.count == 0 {
			continue
		}
		end := (i + 1) * 30
		out = append(out, Bucket{
			Index: i,
			Label: fmt.Sprintf("%02d:%02d", end/60, end%60),
			Avg:   round2(a.sum / float64(a.count)),
			Min:   a.min,
			Max:   a.max,
			Count: a.count,
		})
	}
	return out
}

// StepSample is a step count recorded at a timestamp.
type StepSample struct {
	Time  time.Time
	Steps int
}

// HourBucket is the step total for one hour of the day.
type HourBucket struct {
	Hour  int    `json:"hour"`
	Label string `json:"window_label"`
	Steps int    `json:"steps"`
}

// HourlySteps sums steps per hour of day across every supplied day, omitting
// hours with no steps. Output is ordered by hour.
func HourlySteps(samples []StepSample) []HourBucket {
	var totals [24]int
	for _, s := range samples {
		if s.Time.IsZero() {
			continue
		}
		totals[s.Time.Hour()] += s.Steps
	}
	out := make([]HourBucket, 0, 24)
	for h, steps := range totals {
		if steps <= 0 {
			continue
		}
		out = append(out, HourBucket{Hour: h, Label: fmt.Sprintf("%02d:00", h), Steps: steps})
	}
	return out
}

// Activity zone tags.
const (
	ZoneSedentary = "SEDENTARY"
	ZoneLight     = "LIGHT"
	ZoneModerate  = "MODERATE"
	ZoneVigorous  = "VIGOROUS"
)

// ZoneEvent marks the activity zone in effect from Time onwards.
type ZoneEvent struct {
	Time time.Time
	Zone string
}

// ZoneMinutes is time spent per activity category.
type ZoneMinutes struct {
	Sedentary int `json:"sedentary_minutes"`
	Light     int `json:"light_minutes"`
	Moderate  int `json:"moderate_minutes"`
	Vigorous  int `json:"vigorous_minutes"`
}

// Total returns the minutes across all categories.
func (z ZoneMinutes) Total() int {
	return z.Sedentary + z.Light + z.Moderate + z.Vigorous
}

// ZoneDurations attributes each gap between consecutive events to the zone
// of the earlier event. Unrecognised zones (sleep, non-wear, ...) are skipped,
// the final event never opens an interval, and totals are rounded once at the
// end. Events must already be in chronological order.
func ZoneDurations(events []ZoneEvent) ZoneMinutes {
	totals := map[string]float64{}
	for i := 0; i+1 < len(events); i++ {
		zone := strings.ToUpper(strings.TrimSpace(events[i].Zone))
		switch zone {
		case ZoneSedentary, ZoneLight, ZoneModerate, ZoneVigorous:
		default:
			continue
		}
		delta := events[i+1].Time.Sub(events[i].Time).Minutes()
		if delta <= 0 {
			continue
		}
		totals[zone] += delta
	}
	return ZoneMinutes{
		Sedentary: int(math.Round(totals[ZoneSedentary])),
		Light:     int(math.Round(totals[ZoneLight])),
		Moderate:  int(math.Round(totals[ZoneModerate])),
		Vigorous:  int(math.Round(totals[ZoneVigorous])),
	}
}

// SortZoneEvents orders events chronologically, keeping the input order for
// equal timestamps.
func SortZoneEvents(events []ZoneEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
