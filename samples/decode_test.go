package samples

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeepsLengthAndMarksMissing(t *testing.T) {
	got := Decode("100, 101,,abc,NaN, null ,102.5")

	require.Len(t, got, 7)
	assert.Equal(t, At(100), got[0])
	assert.Equal(t, At(101), got[1])
	assert.False(t, got[2].Present)
	assert.False(t, got[3].Present)
	assert.False(t, got[4].Present)
	assert.False(t, got[5].Present)
	assert.Equal(t, At(102.5), got[6])
}

func TestDecodeEmpty(t *testing.T) {
	assert.Empty(t, Decode(""))
	assert.Empty(t, Decode("   "))
}

func TestDecodeRejectsInfinity(t *testing.T) {
	got := Decode("Inf,-Inf,1")
	require.Len(t, got, 3)
	assert.False(t, got[0].Present)
	assert.False(t, got[1].Present)
	assert.True(t, got[2].Present)
}

func TestFilterPresent(t *testing.T) {
	raw := Decode("1,,3,x,5")
	got := FilterPresent(raw)

	assert.Equal(t, []float64{1, 3, 5}, got)
	assert.LessOrEqual(t, len(got), len(raw))
}

func TestFilterPairedDropsSameIndexOnBothSides(t *testing.T) {
	speed := Decode("10,,12,13,14")
	dist := Decode("0,5,,30,40")

	xs, ys := FilterPaired(speed, dist)

	assert.Equal(t, []float64{10, 13, 14}, xs)
	assert.Equal(t, []float64{0, 30, 40}, ys)
}

func TestFilterPairedTruncatesToShorter(t *testing.T) {
	xs, ys := FilterPaired(Decode("1,2,3"), Decode("4,5"))
	assert.Equal(t, []float64{1, 2}, xs)
	assert.Equal(t, []float64{4, 5}, ys)
}

func TestEncodeRoundTripPreservesAlignment(t *testing.T) {
	in := []Reading{At(1), Absent(), At(2.5)}
	out := Decode(Encode(in))
	assert.Equal(t, in, out)
}

func TestRawChannelUnmarshalAcceptsStringTag(t *testing.T) {
	var ch RawChannel
	err := json.Unmarshal([]byte(`{"recording-rate":1,"sample-type":"11","data":"800,810"}`), &ch)
	require.NoError(t, err)

	assert.Equal(t, RRInterval, ch.Type)
	assert.Equal(t, 1.0, ch.IntervalSeconds)

	series := DecodeChannel(ch)
	assert.Len(t, series.Readings, 2)
	assert.Equal(t, "rr_interval", series.Type.String())
}

func TestRawChannelUnmarshalAcceptsNumericTag(t *testing.T) {
	var ch RawChannel
	require.NoError(t, json.Unmarshal([]byte(`{"recording-rate":5,"sample-type":4,"data":""}`), &ch))
	assert.Equal(t, Power, ch.Type)
	assert.True(t, ch.Type.Known())
	assert.False(t, ChannelType(42).Known())
	assert.Equal(t, "channel_42", ChannelType(42).String())
}
