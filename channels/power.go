package channels

import (
	"math"

	"github.com/lucasjlepore/polar-digest/samples"
)

// PowerSummary describes a power channel.
type PowerSummary struct {
	AvgWatts         float64 `json:"avg_power_w"`
	NormalizedWatts  float64 `json:"normalized_power_w"`
	MaxWatts         float64 `json:"max_power_w"`
	VariabilityIndex float64 `json:"variability_index"`
}

// Power summarizes a power channel recorded every intervalSeconds.
func Power(readings []samples.Reading, intervalSeconds float64, cfg Config) *PowerSummary {
	values := samples.FilterPresent(readings)
	if len(values) == 0 {
		return nil
	}
	cfg = cfg.withDefaults()

	avg := average(values)
	np := normalizedPower(values, npWindow(cfg.NPWindowSeconds, intervalSeconds))
	_, max := minMax(values)

	out := &PowerSummary{
		AvgWatts:        round2(avg),
		NormalizedWatts: round2(np),
		MaxWatts:        round2(max),
	}
	if avg > 0 {
		out.VariabilityIndex = round2(np / avg)
	}
	return out
}

// npWindow converts the window duration into a sample count.
func npWindow(windowSeconds, intervalSeconds float64) int {
	if intervalSeconds <= 0 {
		intervalSeconds = 1
	}
	w := int(math.Ceil(windowSeconds / intervalSeconds))
	if w < 1 {
		return 1
	}
	return w
}

func normalizedPower(power []float64, window int) float64 {
	if len(power) == 0 {
		return 0
	}
	if len(power) < window {
		return average(power)
	}

	sum := 0.0
	for i := 0; i < window; i++ {
		sum += power[i]
	}

	fourthPowerTotal := 0.0
	count := 0
	for i := window - 1; i < len(power); i++ {
		if i >= window {
			sum += power[i] - power[i-window]
		}
		rolling := sum / float64(window)
		fourthPowerTotal += math.Pow(rolling, 4)
		count++
	}
	return math.Pow(fourthPowerTotal/float64(count), 0.25)
}

// AltitudeSummary accumulates climbing and descending.
type AltitudeSummary struct {
	AscentM  float64 `json:"ascent_m"`
	DescentM float64 `json:"descent_m"`
	MinM     float64 `json:"min_m"`
	MaxM     float64 `json:"max_m"`
}

// Altitude sums positive and negative consecutive deltas of the present
// altitude readings.
func Altitude(readings []samples.Reading) *AltitudeSummary {
	values := samples.FilterPresent(readings)
	if len(values) == 0 {
		return nil
	}
	ascent, descent := 0.0, 0.0
	for i := 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			ascent += delta
		} else {
			descent -= delta
		}
	}
	lo, hi := minMax(values)
	return &AltitudeSummary{
		AscentM:  round2(ascent),
		DescentM: round2(descent),
		MinM:     round2(lo),
		MaxM:     round2(hi),
	}
}
