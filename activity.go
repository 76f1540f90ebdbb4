package digest

import (
	"sort"

	"github.com/lucasjlepore/polar-digest/buckets"
	"github.com/lucasjlepore/polar-digest/channels"
	"github.com/lucasjlepore/polar-digest/samples"
)

// StepPoint is the step count of one sampling interval.
type StepPoint struct {
	Steps     int    `json:"steps"`
	Timestamp string `json:"timestamp"`
}

// ZonePoint marks the activity zone in effect from Timestamp onwards.
type ZonePoint struct {
	Timestamp string `json:"timestamp"`
	Zone      string `json:"zone"`
}

// ActivitySamples are the optional per-interval samples of an activity day.
type ActivitySamples struct {
	Steps struct {
		IntervalMs int         `json:"interval_ms,omitempty"`
		TotalSteps int         `json:"total_steps,omitempty"`
		Samples    []StepPoint `json:"samples,omitempty"`
	} `json:"steps"`
	ActivityZones struct {
		Samples []ZonePoint `json:"samples,omitempty"`
	} `json:"activity_zones"`
}

// ActivityDay is one day of daily activity totals plus optional samples.
type ActivityDay struct {
	Date                 string           `json:"date"`
	StartTime            string           `json:"start_time,omitempty"`
	EndTime              string           `json:"end_time,omitempty"`
	ActiveDuration       string           `json:"active_duration,omitempty"`
	InactiveDuration     string           `json:"inactive_duration,omitempty"`
	DailyActivity        *float64         `json:"daily_activity,omitempty"`
	Calories             *float64         `json:"calories,omitempty"`
	ActiveCalories       *float64         `json:"active_calories,omitempty"`
	Steps                *int             `json:"steps,omitempty"`
	InactivityAlertCount *int             `json:"inactivity_alert_count,omitempty"`
	DistanceFromSteps    *float64         `json:"distance_from_steps,omitempty"`
	Samples              *ActivitySamples `json:"samples,omitempty"`
}

// ActivitySummary is the merged reduction of one activity day.
type ActivitySummary struct {
	Date                 string               `json:"date"`
	ActiveDuration       string               `json:"active_duration,omitempty"`
	InactiveDuration     string               `json:"inactive_duration,omitempty"`
	DailyActivity        *float64             `json:"daily_activity,omitempty"`
	Calories             *float64             `json:"calories,omitempty"`
	ActiveCalories       *float64             `json:"active_calories,omitempty"`
	Steps                *int                 `json:"steps,omitempty"`
	InactivityAlertCount *int                 `json:"inactivity_alert_count,omitempty"`
	DistanceFromSteps    *float64             `json:"distance_from_steps,omitempty"`
	HourlySteps          []buckets.HourBucket `json:"hourly_steps,omitempty"`
	Zones                *buckets.ZoneMinutes `json:"activity_zones,omitempty"`
}

// SummarizeActivityDay passes the daily totals through and buckets the
// optional step and zone samples.
func SummarizeActivityDay(day ActivityDay, _ Config) ActivitySummary {
	out := ActivitySummary{
		Date:                 day.Date,
		ActiveDuration:       day.ActiveDuration,
		InactiveDuration:     day.InactiveDuration,
		DailyActivity:        day.DailyActivity,
		Calories:             day.Calories,
		ActiveCalories:       day.ActiveCalories,
		Steps:                day.Steps,
		InactivityAlertCount: day.InactivityAlertCount,
		DistanceFromSteps:    day.DistanceFromSteps,
	}
	if day.Samples == nil {
		return out
	}

	if hourly := buckets.HourlySteps(stepSamples(day)); len(hourly) > 0 {
		out.HourlySteps = hourly
	}

	events := make([]buckets.ZoneEvent, 0, len(day.Samples.ActivityZones.Samples))
	for _, z := range day.Samples.ActivityZones.Samples {
		ts, ok := parseTimestamp(z.Timestamp)
		if !ok {
			continue
		}
		events = append(events, buckets.ZoneEvent{Time: ts, Zone: z.Zone})
	}
	buckets.SortZoneEvents(events)
	if zones := buckets.ZoneDurations(events); zones.Total() > 0 {
		out.Zones = &zones
	}
	return out
}

func stepSamples(day ActivityDay) []buckets.StepSample {
	if day.Samples == nil {
		return nil
	}
	out := make([]buckets.StepSample, 0, len(day.Samples.Steps.Samples))
	for _, s := range day.Samples.Steps.Samples {
		ts, ok := parseTimestamp(s.Timestamp)
		if !ok {
			continue
		}
		out = append(out, buckets.StepSample{Time: ts, Steps: s.Steps})
	}
	return out
}

// ActivityRangeSummary covers several days plus the hour-of-day step profile
// accumulated across all of them.
type ActivityRangeSummary struct {
	From        string               `json:"from,omitempty"`
	To          string               `json:"to,omitempty"`
	DayCount    int                  `json:"day_count"`
	TotalSteps  int                  `json:"total_steps"`
	Days        []ActivitySummary    `json:"days"`
	HourlySteps []buckets.HourBucket `json:"hourly_steps,omitempty"`
}

// SummarizeActivityRange summarizes every day, ordered by date, and builds
// one hourly step profile across the whole range.
func SummarizeActivityRange(days []ActivityDay, cfg Config) ActivityRangeSummary {
	ordered := make([]ActivityDay, len(days))
	copy(ordered, days)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date < ordered[j].Date
	})

	out := ActivityRangeSummary{
		DayCount: len(ordered),
		Days:     make([]ActivitySummary, 0, len(ordered)),
	}
	var all []buckets.StepSample
	for _, day := range ordered {
		out.Days = append(out.Days, SummarizeActivityDay(day, cfg))
		if day.Steps != nil {
			out.TotalSteps += *day.Steps
		}
		all = append(all, stepSamples(day)...)
	}
	if len(ordered) > 0 {
		out.From = ordered[0].Date
		out.To = ordered[len(ordered)-1].Date
	}
	if hourly := buckets.HourlySteps(all); len(hourly) > 0 {
		out.HourlySteps = hourly
	}
	return out
}

// HeartRateSample is one continuous heart-rate reading.
type HeartRateSample struct {
	HeartRate  float64 `json:"heart_rate"`
	SampleTime string  `json:"sample_time"`
}

// HeartRateDay is a day of continuous heart-rate samples.
type HeartRateDay struct {
	Date    string            `json:"date"`
	Samples []HeartRateSample `json:"heart_rate_samples"`
}

// HeartRateSummary is the merged reduction of one heart-rate day.
type HeartRateSummary struct {
	Date     string                `json:"date"`
	Day      *channels.StatSummary `json:"day,omitempty"`
	HalfHour []buckets.Bucket      `json:"half_hour_buckets,omitempty"`
}

// SummarizeHeartRateDay reports the day's range and the half-hour buckets.
func SummarizeHeartRateDay(day HeartRateDay, _ Config) HeartRateSummary {
	out := HeartRateSummary{Date: day.Date}
	readings := make([]samples.Reading, 0, len(day.Samples))
	clocked := make([]buckets.ClockSample, 0, len(day.Samples))
	for _, s := range day.Samples {
		readings = append(readings, samples.At(s.HeartRate))
		clocked = append(clocked, buckets.ClockSample{Clock: s.SampleTime, Value: s.HeartRate})
	}
	out.Day = channels.HeartRate(readings)
	if half := buckets.HalfHour(clocked); len(half) > 0 {
		out.HalfHour = half
	}
	return out
}
