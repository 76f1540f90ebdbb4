package channels

import (
	"math"

	"github.com/lucasjlepore/polar-digest/samples"
)

// HRVSummary holds time-domain variability statistics over RR intervals.
type HRVSummary struct {
	MeanRRMs float64 `json:"mean_rr"`
	SDNNMs   float64 `json:"sdnn"`
	RMSSDMs  float64 `json:"rmssd"`
	PNN50    float64 `json:"pnn50"`
	Count    int     `json:"count"`
}

// HRV computes mean RR, SDNN (population), RMSSD and pNN50. At least two
// intervals are required.
func HRV(readings []samples.Reading, cfg Config) *HRVSummary {
	rr := samples.FilterPresent(readings)
	if len(rr) < 2 {
		return nil
	}
	cfg = cfg.withDefaults()

	mean := average(rr)
	variance := 0.0
	for _, v := range rr {
		d := v - mean
		variance += d * d
	}
	sdnn := math.Sqrt(variance / float64(len(rr)))

	sumSq := 0.0
	over := 0
	for i := 1; i < len(rr); i++ {
		diff := rr[i] - rr[i-1]
		sumSq += diff * diff
		if math.Abs(diff) > cfg.HRVDiffThresholdMs {
			over++
		}
	}
	diffs := float64(len(rr) - 1)

	return &HRVSummary{
		MeanRRMs: round2(mean),
		SDNNMs:   round2(sdnn),
		RMSSDMs:  round2(math.Sqrt(sumSq / diffs)),
		PNN50:    round2(float64(over) / diffs * 100),
		Count:    len(rr),
	}
}
