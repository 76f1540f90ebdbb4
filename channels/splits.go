package channels

import (
	"fmt"
	"math"

	"github.com/lucasjlepore/polar-digest/samples"
)

const overallSplitLabel = "overall"

// Split is one pace segment. Kilometer is the whole kilometre the split
// closes; a trailing split that ends before the next boundary is Partial.
type Split struct {
	Label        string  `json:"label"`
	Kilometer    int     `json:"kilometer,omitempty"`
	DistanceKm   float64 `json:"distance_km,omitempty"`
	Partial      bool    `json:"partial,omitempty"`
	Samples      int     `json:"samples"`
	AvgSpeedKmh  float64 `json:"avg_speed_kmh"`
	PaceMinPerKm float64 `json:"pace_min_per_km"`
}

// SplitSummary lists pace splits in order.
type SplitSummary struct {
	Splits []Split `json:"splits"`
}

// Splits cuts the speed channel into per-kilometre splits using the
// co-indexed cumulative distance channel. Speed and distance are filtered
// together by index, never independently. Without a usable distance channel
// a single "overall" split is returned.
func Splits(speed, distance []samples.Reading) *SplitSummary {
	speeds, dists := samples.FilterPaired(speed, distance)
	if len(dists) == 0 {
		return overallSplit(samples.FilterPresent(speed))
	}

	out := make([]Split, 0, int(dists[len(dists)-1]/1000)+1)
	start := 0
	nextKm := math.Floor(dists[0]/1000) + 1
	for i, d := range dists {
		crossed := d >= nextKm*1000
		last := i == len(dists)-1
		if !crossed && !last {
			continue
		}
		avg := average(speeds[start : i+1])
		split := Split{
			DistanceKm:   round2(d / 1000),
			Samples:      i + 1 - start,
			AvgSpeedKmh:  round2(avg),
			PaceMinPerKm: round2(pace(avg)),
		}
		if crossed {
			split.Kilometer = int(math.Floor(d / 1000))
		} else {
			split.Kilometer = int(nextKm)
			split.Partial = true
		}
		split.Label = fmt.Sprintf("km %d", split.Kilometer)
		out = append(out, split)

		start = i + 1
		nextKm = math.Floor(d/1000) + 1
	}
	return &SplitSummary{Splits: out}
}

func overallSplit(speeds []float64) *SplitSummary {
	if len(speeds) == 0 {
		return nil
	}
	avg := average(speeds)
	return &SplitSummary{Splits: []Split{{
		Label:        overallSplitLabel,
		Samples:      len(speeds),
		AvgSpeedKmh:  round2(avg),
		PaceMinPerKm: round2(pace(avg)),
	}}}
}

// pace converts km/h into minutes per kilometre.
func pace(speedKmh float64) float64 {
	if speedKmh <= 0 {
		return 0
	}
	return 60 / speedKmh
}
