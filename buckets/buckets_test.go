package buckets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/polar-digest/timeline"
)

func TestHalfHourIndexAndLabel(t *testing.T) {
	assert.Equal(t, 15, HalfHourIndex(timeline.Clock{Hour: 7, Minute: 45}))
	assert.Equal(t, 0, HalfHourIndex(timeline.Clock{Hour: 0, Minute: 29}))
	assert.Equal(t, 47, HalfHourIndex(timeline.Clock{Hour: 23, Minute: 59}))

	got := HalfHour([]ClockSample{{Clock: "07:45", Value: 70}})
	require.Len(t, got, 1)
	assert.Equal(t, 15, got[0].Index)
	assert.Equal(t, "08:00", got[0].Label)
}

func TestHalfHourAggregatesAndOmitsEmpty(t *testing.T) {
	got := HalfHour([]ClockSample{
		{Clock: "00:05:10", Value: 60},
		{Clock: "00:20", Value: 64},
		{Clock: "23:50", Value: 80},
		{Clock: "12:30", Value: 90},
		{Clock: "bad", Value: 200},
		{Clock: "12:59:59", Value: 100},
	})

	require.Len(t, got, 3)
	assert.Equal(t, Bucket{Index: 0, Label: "00:30", Avg: 62, Min: 60, Max: 64, Count: 2}, got[0])
	assert.Equal(t, Bucket{Index: 25, Label: "13:00", Avg: 95, Min: 90, Max: 100, Count: 2}, got[1])
	assert.Equal(t, "24:00", got[2].Label)
}

func TestHalfHourEmpty(t *testing.T) {
	assert.Empty(t, HalfHour(nil))
}

func TestHourlyStepsAcrossDays(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	got := HourlySteps([]StepSample{
		{Time: day1.Add(7*time.Hour + 5*time.Minute), Steps: 100},
		{Time: day2.Add(7*time.Hour + 55*time.Minute), Steps: 50},
		{Time: day1.Add(6 * time.Hour), Steps: 0},
		{Time: day2.Add(18 * time.Hour), Steps: 20},
		{Steps: 999},
	})

	assert.Equal(t, []HourBucket{
		{Hour: 7, Label: "07:00", Steps: 150},
		{Hour: 18, Label: "18:00", Steps: 20},
	}, got)
}

func TestZoneDurationsSkipsUnknownTags(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	got := ZoneDurations([]ZoneEvent{
		{Time: base, Zone: "LIGHT"},
		{Time: base.Add(10 * time.Minute), Zone: "MODERATE"},
		{Time: base.Add(20 * time.Minute), Zone: "SLEEP"},
	})

	assert.Equal(t, ZoneMinutes{Light: 10, Moderate: 10}, got)
	assert.Equal(t, 20, got.Total())
}

func TestZoneDurationsRoundsOnceAfterAccumulation(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	events := make([]ZoneEvent, 0, 5)
	// four 40 second sedentary slices: 160 s -> 2.67 min -> 3 rather than 4*1.
	for i := 0; i < 4; i++ {
		events = append(events, ZoneEvent{Time: base.Add(time.Duration(i*40) * time.Second), Zone: "sedentary"})
	}
	events = append(events, ZoneEvent{Time: base.Add(160 * time.Second), Zone: "NON_WEAR"})

	got := ZoneDurations(events)
	assert.Equal(t, 3, got.Sedentary)
}

func TestZoneDurationsIgnoresBackwardsTime(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	got := ZoneDurations([]ZoneEvent{
		{Time: base, Zone: ZoneVigorous},
		{Time: base.Add(-time.Minute), Zone: ZoneLight},
		{Time: base.Add(4 * time.Minute), Zone: ZoneLight},
	})
	assert.Equal(t, ZoneMinutes{Light: 5}, got)
}

func TestSortZoneEvents(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	events := []ZoneEvent{
		{Time: base.Add(time.Minute), Zone: ZoneLight},
		{Time: base, Zone: ZoneSedentary},
	}
	SortZoneEvents(events)
	assert.Equal(t, ZoneSedentary, events[0].Zone)
}
