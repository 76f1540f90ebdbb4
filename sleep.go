package digest

import (
	"github.com/lucasjlepore/polar-digest/timeline"
)

// SleepNight is one night of sleep with its hypnogram and heart-rate stream.
// Durations are in seconds.
type SleepNight struct {
	Date                      string               `json:"date"`
	SleepStartTime            string               `json:"sleep_start_time,omitempty"`
	SleepEndTime              string               `json:"sleep_end_time,omitempty"`
	Continuity                *float64             `json:"continuity,omitempty"`
	LightSleep                *int                 `json:"light_sleep,omitempty"`
	DeepSleep                 *int                 `json:"deep_sleep,omitempty"`
	REMSleep                  *int                 `json:"rem_sleep,omitempty"`
	UnrecognizedSleepStage    *int                 `json:"unrecognized_sleep_stage,omitempty"`
	TotalInterruptionDuration *int                 `json:"total_interruption_duration,omitempty"`
	SleepScore                *float64             `json:"sleep_score,omitempty"`
	SleepCharge               *int                 `json:"sleep_charge,omitempty"`
	SleepCycles               *int                 `json:"sleep_cycles,omitempty"`
	Hypnogram                 timeline.TrendSeries `json:"hypnogram,omitempty"`
	HeartRateSamples          timeline.TrendSeries `json:"heart_rate_samples,omitempty"`
}

// SleepSummary is the merged reduction of one sleep night.
type SleepSummary struct {
	Date                 string                 `json:"date"`
	SleepStart           string                 `json:"sleep_start_time,omitempty"`
	SleepEnd             string                 `json:"sleep_end_time,omitempty"`
	SleepScore           *float64               `json:"sleep_score,omitempty"`
	SleepCharge          *int                   `json:"sleep_charge,omitempty"`
	Continuity           *float64               `json:"continuity,omitempty"`
	LightSleepSeconds    *int                   `json:"light_sleep_s,omitempty"`
	DeepSleepSeconds     *int                   `json:"deep_sleep_s,omitempty"`
	REMSleepSeconds      *int                   `json:"rem_sleep_s,omitempty"`
	UnrecognizedSeconds  *int                   `json:"unrecognized_sleep_s,omitempty"`
	InterruptionSeconds  *int                   `json:"total_interruption_s,omitempty"`
	Architecture         *timeline.Architecture `json:"architecture,omitempty"`
	Segments             []timeline.Segment     `json:"segments,omitempty"`
	HeartRate            *timeline.SeriesStats  `json:"heart_rate,omitempty"`
	ReferenceStartHour   int                    `json:"reference_start_hour"`
	StartHourWasInferred bool                   `json:"start_hour_inferred,omitempty"`
}

// SummarizeSleep segments the hypnogram on the midnight-aware timeline and
// derives the night's architecture and heart-rate trend.
func SummarizeSleep(night SleepNight, cfg Config) SleepSummary {
	cfg = cfg.withDefaults()
	out := SleepSummary{
		Date:                night.Date,
		SleepStart:          night.SleepStartTime,
		SleepEnd:            night.SleepEndTime,
		SleepScore:          night.SleepScore,
		SleepCharge:         night.SleepCharge,
		Continuity:          night.Continuity,
		LightSleepSeconds:   night.LightSleep,
		DeepSleepSeconds:    night.DeepSleep,
		REMSleepSeconds:     night.REMSleep,
		UnrecognizedSeconds: night.UnrecognizedSleepStage,
		InterruptionSeconds: night.TotalInterruptionDuration,
	}

	var labels []string
	labels = append(labels, night.Hypnogram.Labels()...)
	labels = append(labels, night.HeartRateSamples.Labels()...)
	session := resolveSession(night.SleepStartTime, night.SleepEndTime, labels, cfg.RolloverHour)
	out.ReferenceStartHour = session.norm.StartHour
	out.StartHourWasInferred = session.inferred

	points := session.norm.Points(night.Hypnogram)
	if len(points) >= 2 {
		origin := points[0].Minutes
		if session.hasStart {
			origin = session.startMinutes
		}
		segments := timeline.Segments(points, origin)
		sessionMinutes := 0.0
		if session.hasStart && session.hasEnd {
			sessionMinutes = float64(session.endMinutes - session.startMinutes)
		}
		cycles := 0
		if night.SleepCycles != nil {
			cycles = *night.SleepCycles
		}
		arch := timeline.Analyze(segments, sessionMinutes, cycles)
		out.Architecture = &arch
		out.Segments = segments
	}

	out.HeartRate = timeline.Describe(night.HeartRateSamples, session.norm, cfg.NadirWindow)
	return out
}

// RechargeNight is the overnight recovery measurement. SleepStartTime is not
// part of the recharge payload; callers set it from the paired sleep night
// when one is available.
type RechargeNight struct {
	Date                  string               `json:"date"`
	SleepStartTime        string               `json:"sleep_start_time,omitempty"`
	HeartRateAvg          *float64             `json:"heart_rate_avg,omitempty"`
	BeatToBeatAvg         *float64             `json:"beat_to_beat_avg,omitempty"`
	HRVAvg                *float64             `json:"heart_rate_variability_avg,omitempty"`
	BreathingRateAvg      *float64             `json:"breathing_rate_avg,omitempty"`
	NightlyRechargeStatus *int                 `json:"nightly_recharge_status,omitempty"`
	ANSCharge             *float64             `json:"ans_charge,omitempty"`
	ANSChargeStatus       *int                 `json:"ans_charge_status,omitempty"`
	HRVSamples            timeline.TrendSeries `json:"hrv_samples,omitempty"`
	BreathingSamples      timeline.TrendSeries `json:"breathing_samples,omitempty"`
}

// RechargeSummary is the merged reduction of one recharge night.
type RechargeSummary struct {
	Date                  string                `json:"date"`
	ANSCharge             *float64              `json:"ans_charge,omitempty"`
	ANSChargeStatus       *int                  `json:"ans_charge_status,omitempty"`
	NightlyRechargeStatus *int                  `json:"nightly_recharge_status,omitempty"`
	HeartRateAvg          *float64              `json:"heart_rate_avg,omitempty"`
	BeatToBeatAvg         *float64              `json:"beat_to_beat_avg,omitempty"`
	HRVAvg                *float64              `json:"heart_rate_variability_avg,omitempty"`
	BreathingRateAvg      *float64              `json:"breathing_rate_avg,omitempty"`
	HRV                   *timeline.SeriesStats `json:"hrv,omitempty"`
	Breathing             *timeline.SeriesStats `json:"breathing_rate,omitempty"`
	ReferenceStartHour    int                   `json:"reference_start_hour"`
	StartHourWasInferred  bool                  `json:"start_hour_inferred,omitempty"`
}

// SummarizeRecharge passes the device scores through and describes the HRV
// and breathing-rate series on the night's timeline.
func SummarizeRecharge(night RechargeNight, cfg Config) RechargeSummary {
	cfg = cfg.withDefaults()
	out := RechargeSummary{
		Date:                  night.Date,
		ANSCharge:             night.ANSCharge,
		ANSChargeStatus:       night.ANSChargeStatus,
		NightlyRechargeStatus: night.NightlyRechargeStatus,
		HeartRateAvg:          night.HeartRateAvg,
		BeatToBeatAvg:         night.BeatToBeatAvg,
		HRVAvg:                night.HRVAvg,
		BreathingRateAvg:      night.BreathingRateAvg,
	}

	var labels []string
	labels = append(labels, night.HRVSamples.Labels()...)
	labels = append(labels, night.BreathingSamples.Labels()...)
	session := resolveSession(night.SleepStartTime, "", labels, cfg.RolloverHour)
	out.ReferenceStartHour = session.norm.StartHour
	out.StartHourWasInferred = session.inferred

	out.HRV = timeline.Describe(night.HRVSamples, session.norm, cfg.NadirWindow)
	out.Breathing = timeline.Describe(night.BreathingSamples, session.norm, cfg.NadirWindow)
	return out
}

type nightSession struct {
	norm         timeline.Normalizer
	inferred     bool
	hasStart     bool
	hasEnd       bool
	startMinutes int
	endMinutes   int
}

// resolveSession picks the reference start hour from the session start
// timestamp, falling back to the sample clocks when no start is known.
func resolveSession(start, end string, labels []string, rollover int) nightSession {
	var s nightSession
	startAt, hasStart := parseTimestamp(start)
	startHour := 0
	if hasStart {
		startHour = startAt.Hour()
	} else if inferred := timeline.InferStartHour(labels, rollover); inferred >= 0 {
		startHour = inferred
		s.inferred = true
	}
	s.norm = timeline.NewNormalizer(startHour, rollover)

	if hasStart {
		s.hasStart = true
		s.startMinutes = s.norm.Minutes(timeline.Clock{Hour: startAt.Hour(), Minute: startAt.Minute()})
		if endAt, ok := parseTimestamp(end); ok && endAt.After(startAt) {
			s.hasEnd = true
			s.endMinutes = s.startMinutes + int(endAt.Sub(startAt).Minutes())
		}
	}
	return s
}
