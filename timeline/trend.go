package timeline

import "math"

// DefaultNadirWindow is the rolling-mean width used for nadir detection.
const DefaultNadirWindow = 3

// Slope returns the ordinary least-squares slope of value per hour elapsed
// since the first point. Points must be ordered along the timeline. A time
// axis without variance yields 0.
func Slope(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	origin := points[0].Minutes
	n := float64(len(points))
	meanX, meanY := 0.0, 0.0
	for _, p := range points {
		meanX += float64(p.Minutes-origin) / 60
		meanY += p.Value
	}
	meanX /= n
	meanY /= n

	sxx, sxy := 0.0, 0.0
	for _, p := range points {
		dx := float64(p.Minutes-origin)/60 - meanX
		sxx += dx * dx
		sxy += dx * (p.Value - meanY)
	}
	if sxx < 1e-12 {
		return 0
	}
	return round2(sxy / sxx)
}

// Nadir is the lowest forward rolling mean of the given width. Series shorter
// than the window fall back to the plain minimum.
func Nadir(values []float64, window int) float64 {
	if len(values) == 0 {
		return 0
	}
	if window <= 0 {
		window = DefaultNadirWindow
	}
	if len(values) < window {
		lo := values[0]
		for _, v := range values[1:] {
			lo = math.Min(lo, v)
		}
		return lo
	}
	sum := 0.0
	for i := 0; i < window; i++ {
		sum += values[i]
	}
	lowest := sum / float64(window)
	for i := window; i < len(values); i++ {
		sum += values[i] - values[i-window]
		lowest = math.Min(lowest, sum/float64(window))
	}
	return lowest
}

// SeriesStats condenses one per-minute night series.
type SeriesStats struct {
	Avg          float64 `json:"avg"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Nadir        float64 `json:"nadir"`
	SlopePerHour float64 `json:"trend_per_hour"`
	Count        int     `json:"count"`
}

// Describe summarizes a series on the normalized timeline. It returns nil
// for an empty series.
func Describe(series TrendSeries, n Normalizer, nadirWindow int) *SeriesStats {
	points := n.Points(series)
	if len(points) == 0 {
		return nil
	}
	values := make([]float64, len(points))
	total := 0.0
	lo, hi := points[0].Value, points[0].Value
	for i, p := range points {
		values[i] = p.Value
		total += p.Value
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	return &SeriesStats{
		Avg:          round2(total / float64(len(points))),
		Min:          round2(lo),
		Max:          round2(hi),
		Nadir:        round2(Nadir(values, nadirWindow)),
		SlopePerHour: Slope(points),
		Count:        len(points),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
