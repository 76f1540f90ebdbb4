package digest

import (
	"github.com/lucasjlepore/polar-digest/channels"
	"github.com/lucasjlepore/polar-digest/samples"
)

// HeartRateTotals is the device-computed heart rate of a session.
type HeartRateTotals struct {
	Average *float64 `json:"average,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`
}

// Exercise is a training session with its raw per-channel sample blocks.
type Exercise struct {
	ID                string               `json:"id"`
	Device            string               `json:"device,omitempty"`
	StartTime         string               `json:"start_time,omitempty"`
	Duration          string               `json:"duration,omitempty"`
	Calories          *float64             `json:"calories,omitempty"`
	Distance          *float64             `json:"distance,omitempty"`
	HeartRate         *HeartRateTotals     `json:"heart_rate,omitempty"`
	TrainingLoad      *float64             `json:"training_load,omitempty"`
	Sport             string               `json:"sport,omitempty"`
	DetailedSportInfo string               `json:"detailed_sport_info,omitempty"`
	Samples           []samples.RawChannel `json:"samples,omitempty"`
}

// ExerciseSummary is the merged reduction of one exercise.
type ExerciseSummary struct {
	ID             string   `json:"id"`
	Sport          string   `json:"sport,omitempty"`
	DetailedSport  string   `json:"detailed_sport_info,omitempty"`
	StartTime      string   `json:"start_time,omitempty"`
	Duration       string   `json:"duration,omitempty"`
	DistanceMeters *float64 `json:"distance_m,omitempty"`
	Calories       *float64 `json:"calories,omitempty"`
	AvgHeartRate   *float64 `json:"avg_heart_rate_bpm,omitempty"`
	MaxHeartRate   *float64 `json:"max_heart_rate_bpm,omitempty"`
	TrainingLoad   *float64 `json:"training_load,omitempty"`
	Channels       []string `json:"channels,omitempty"`

	HeartRateSamples *channels.StatSummary     `json:"heart_rate_samples,omitempty"`
	Pace             *channels.SplitSummary    `json:"pace,omitempty"`
	Altitude         *channels.AltitudeSummary `json:"altitude,omitempty"`
	Power            *channels.PowerSummary    `json:"power,omitempty"`
	Cadence          *channels.StatSummary     `json:"cadence,omitempty"`
	RunningCadence   *channels.StatSummary     `json:"running_cadence,omitempty"`
	AirPressure      *channels.StatSummary     `json:"air_pressure,omitempty"`
	Temperature      *channels.StatSummary     `json:"temperature_c,omitempty"`
	PedalingIndex    *channels.StatSummary     `json:"pedaling_index,omitempty"`
	LRBalance        *channels.StatSummary     `json:"lr_balance,omitempty"`
	HRV              *channels.HRVSummary      `json:"hrv,omitempty"`
}

// DecodeChannels decodes every sample block in order of first appearance.
// When a channel tag repeats, the first block wins.
func DecodeChannels(blocks []samples.RawChannel) []samples.Series {
	seen := make(map[samples.ChannelType]struct{}, len(blocks))
	out := make([]samples.Series, 0, len(blocks))
	for _, block := range blocks {
		if _, dup := seen[block.Type]; dup {
			continue
		}
		seen[block.Type] = struct{}{}
		out = append(out, samples.DecodeChannel(block))
	}
	return out
}

// SummarizeExercise passes the session totals through and runs the matching
// channel summarizer over every decoded sample block.
func SummarizeExercise(ex Exercise, cfg Config) ExerciseSummary {
	cfg = cfg.withDefaults()
	out := ExerciseSummary{
		ID:             ex.ID,
		Sport:          ex.Sport,
		DetailedSport:  ex.DetailedSportInfo,
		StartTime:      ex.StartTime,
		Duration:       ex.Duration,
		DistanceMeters: ex.Distance,
		Calories:       ex.Calories,
		TrainingLoad:   ex.TrainingLoad,
	}
	if ex.HeartRate != nil {
		out.AvgHeartRate = ex.HeartRate.Average
		out.MaxHeartRate = ex.HeartRate.Maximum
	}

	decoded := DecodeChannels(ex.Samples)
	byType := make(map[samples.ChannelType]samples.Series, len(decoded))
	for _, s := range decoded {
		byType[s.Type] = s
		out.Channels = append(out.Channels, s.Type.String())
	}
	readings := func(t samples.ChannelType) []samples.Reading {
		return byType[t].Readings
	}

	out.HeartRateSamples = channels.HeartRate(readings(samples.HeartRate))
	if speed, ok := byType[samples.Speed]; ok {
		out.Pace = channels.Splits(speed.Readings, readings(samples.Distance))
	}
	out.Altitude = channels.Altitude(readings(samples.Altitude))
	if power, ok := byType[samples.Power]; ok {
		out.Power = channels.Power(power.Readings, power.IntervalSeconds, cfg.Config)
	}
	out.Cadence = channels.Cadence(readings(samples.Cadence))
	out.RunningCadence = channels.Cadence(readings(samples.RunningCadence))
	out.AirPressure = channels.AirPressure(readings(samples.AirPressure))
	out.Temperature = channels.Temperature(readings(samples.Temperature), cfg.Config)
	out.PedalingIndex = channels.PedalingIndex(readings(samples.PedalingIndex))
	out.LRBalance = channels.LRBalance(readings(samples.LRBalance))
	out.HRV = channels.HRV(readings(samples.RRInterval), cfg.Config)

	return out
}
