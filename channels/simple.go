package channels

import "github.com/lucasjlepore/polar-digest/samples"

// StatSummary is the plain average of a channel plus its extremes where they
// are meaningful for that channel.
type StatSummary struct {
	Avg   float64  `json:"avg"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
	Count int      `json:"count"`
}

type statShape struct {
	min bool
	max bool
}

func describe(values []float64, shape statShape) *StatSummary {
	if len(values) == 0 {
		return nil
	}
	out := &StatSummary{
		Avg:   round2(average(values)),
		Count: len(values),
	}
	lo, hi := minMax(values)
	if shape.min {
		out.Min = floatPtr(round2(lo))
	}
	if shape.max {
		out.Max = floatPtr(round2(hi))
	}
	return out
}

// HeartRate reports avg, min and max bpm.
func HeartRate(readings []samples.Reading) *StatSummary {
	return describe(samples.FilterPresent(readings), statShape{min: true, max: true})
}

// Cadence reports avg and max; used for both cycling and running cadence.
func Cadence(readings []samples.Reading) *StatSummary {
	return describe(samples.FilterPresent(readings), statShape{max: true})
}

// AirPressure reports the average pressure.
func AirPressure(readings []samples.Reading) *StatSummary {
	return describe(samples.FilterPresent(readings), statShape{})
}

// Temperature rescales raw tenths into degrees before averaging.
func Temperature(readings []samples.Reading, cfg Config) *StatSummary {
	cfg = cfg.withDefaults()
	raw := samples.FilterPresent(readings)
	degrees := make([]float64, len(raw))
	for i, v := range raw {
		degrees[i] = v / cfg.TemperatureScale
	}
	return describe(degrees, statShape{max: true})
}

// PedalingIndex reports the average pedaling index.
func PedalingIndex(readings []samples.Reading) *StatSummary {
	return describe(samples.FilterPresent(readings), statShape{})
}

// LRBalance reports the average left/right power balance.
func LRBalance(readings []samples.Reading) *StatSummary {
	return describe(samples.FilterPresent(readings), statShape{})
}
