// Package fitsource converts FIT activity files into exercises made of raw
// per-second sample blocks, the same shape the upstream API delivers.
package fitsource

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tormoder/fit"

	digest "github.com/lucasjlepore/polar-digest"
	"github.com/lucasjlepore/polar-digest/samples"
)

// maxSlots caps the 1 s grid so a corrupt timestamp cannot allocate days of
// empty slots.
const maxSlots = 48 * 3600

// ReadFile decodes the FIT activity at path. The exercise id is the file name
// without extension.
func ReadFile(path string) (digest.Exercise, error) {
	f, err := os.Open(path)
	if err != nil {
		return digest.Exercise{}, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()

	ex, err := Decode(f)
	if err != nil {
		return digest.Exercise{}, err
	}
	ex.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ex, nil
}

// Decode reads a FIT activity stream.
func Decode(r io.Reader) (digest.Exercise, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return digest.Exercise{}, fmt.Errorf("decode FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return digest.Exercise{}, fmt.Errorf("activity FIT expected: %w", err)
	}
	return FromActivity(activity), nil
}

// FromActivity resamples the activity records onto a 1 s grid and fills the
// session totals when a session message is present.
func FromActivity(activity *fit.ActivityFile) digest.Exercise {
	ex := digest.Exercise{Device: "fit"}
	grid := buildGrid(activity.Records)
	ex.Samples = grid.channels()
	if !grid.start.IsZero() {
		ex.StartTime = grid.start.Format(time.RFC3339)
	}
	if grid.slots > 1 {
		ex.Duration = isoDuration(float64(grid.slots - 1))
	}
	if len(activity.Sessions) == 0 || activity.Sessions[0] == nil {
		return ex
	}

	session := activity.Sessions[0]
	ex.Sport = strings.ToUpper(fmt.Sprint(session.Sport))
	if start := validTimeOrZero(session.StartTime); !start.IsZero() {
		ex.StartTime = start.Format(time.RFC3339)
	}
	if elapsed := safePositive(session.GetTotalTimerTimeScaled()); elapsed > 0 {
		ex.Duration = isoDuration(elapsed)
	}
	if dist := safePositive(session.GetTotalDistanceScaled()); dist > 0 {
		ex.Distance = &dist
	}
	if session.TotalCalories != math.MaxUint16 && session.TotalCalories > 0 {
		kcal := float64(session.TotalCalories)
		ex.Calories = &kcal
	}
	hr := &digest.HeartRateTotals{}
	if session.AvgHeartRate != math.MaxUint8 {
		v := float64(session.AvgHeartRate)
		hr.Average = &v
	}
	if session.MaxHeartRate != math.MaxUint8 {
		v := float64(session.MaxHeartRate)
		hr.Maximum = &v
	}
	if hr.Average != nil || hr.Maximum != nil {
		ex.HeartRate = hr
	}
	return ex
}

type channelGrid struct {
	start  time.Time
	slots  int
	values map[samples.ChannelType][]samples.Reading
}

var gridOrder = []samples.ChannelType{
	samples.HeartRate,
	samples.Speed,
	samples.Cadence,
	samples.Altitude,
	samples.Power,
	samples.Temperature,
	samples.Distance,
}

func buildGrid(records []*fit.RecordMsg) channelGrid {
	type row struct {
		ts time.Time
		r  *fit.RecordMsg
	}
	rows := make([]row, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		rows = append(rows, row{ts: validTimeOrZero(rec.Timestamp), r: rec})
	}
	g := channelGrid{values: map[samples.ChannelType][]samples.Reading{}}
	if len(rows) == 0 {
		return g
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ts.Before(rows[j].ts)
	})

	// records without timestamps sort first; they fall back to one slot each.
	var timed []row
	for _, r := range rows {
		if !r.ts.IsZero() {
			timed = append(timed, r)
		}
	}
	slotOf := func(i int, r row) int { return i }
	g.slots = len(rows)
	if len(timed) > 0 {
		rows = timed
		g.start = timed[0].ts
		span := int(math.Round(timed[len(timed)-1].ts.Sub(g.start).Seconds()))
		g.slots = min(span+1, maxSlots)
		slotOf = func(_ int, r row) int { return int(math.Round(r.ts.Sub(g.start).Seconds())) }
	}

	for _, t := range gridOrder {
		g.values[t] = make([]samples.Reading, g.slots)
	}
	for i, r := range rows {
		slot := slotOf(i, r)
		if slot < 0 || slot >= g.slots {
			continue
		}
		for t, v := range extract(r.r) {
			g.values[t][slot] = samples.At(v)
		}
	}
	return g
}

func (g channelGrid) channels() []samples.RawChannel {
	var out []samples.RawChannel
	for _, t := range gridOrder {
		readings := g.values[t]
		if len(samples.FilterPresent(readings)) == 0 {
			continue
		}
		out = append(out, samples.RawChannel{
			IntervalSeconds: 1,
			Type:            t,
			Values:          samples.Encode(readings),
		})
	}
	return out
}

// extract returns every valid channel value carried by one record.
func extract(rec *fit.RecordMsg) map[samples.ChannelType]float64 {
	out := make(map[samples.ChannelType]float64, len(gridOrder))
	if rec.HeartRate != math.MaxUint8 {
		out[samples.HeartRate] = float64(rec.HeartRate)
	}
	if rec.Power != math.MaxUint16 {
		out[samples.Power] = float64(rec.Power)
	}
	if rec.Cadence != math.MaxUint8 {
		out[samples.Cadence] = float64(rec.Cadence)
	}
	if speed, ok := extractSpeed(rec); ok {
		out[samples.Speed] = round3(speed * 3.6)
	}
	if alt, ok := extractAltitude(rec); ok {
		out[samples.Altitude] = round3(alt)
	}
	if rec.Temperature != math.MaxInt8 {
		out[samples.Temperature] = float64(rec.Temperature) * 10
	}
	if dist := rec.GetDistanceScaled(); isFinite(dist) && dist >= 0 {
		out[samples.Distance] = round3(dist)
	}
	return out
}

func extractSpeed(rec *fit.RecordMsg) (float64, bool) {
	speed := rec.GetEnhancedSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	speed = rec.GetSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	return 0, false
}

func extractAltitude(rec *fit.RecordMsg) (float64, bool) {
	alt := rec.GetEnhancedAltitudeScaled()
	if isFinite(alt) {
		return alt, true
	}
	alt = rec.GetAltitudeScaled()
	if isFinite(alt) {
		return alt, true
	}
	return 0, false
}

// isoDuration formats seconds as an ISO 8601 duration such as PT1H2M3S.
func isoDuration(seconds float64) string {
	total := int(math.Round(seconds))
	h, m, s := total/3600, (total%3600)/60, total%60
	var b strings.Builder
	b.WriteString("PT")
	if h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	if s > 0 || (h == 0 && m == 0) {
		fmt.Fprintf(&b, "%dS", s)
	}
	return b.String()
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func safePositive(v float64) float64 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	return v
}
