package samples

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ChannelType tags what a raw sample block measures.
type ChannelType int

const (
	HeartRate      ChannelType = 0  // bpm
	Speed          ChannelType = 1  // km/h
	Cadence        ChannelType = 2  // rpm
	Altitude       ChannelType = 3  // m
	Power          ChannelType = 4  // W
	PedalingIndex  ChannelType = 5  // %
	LRBalance      ChannelType = 6  // % left
	AirPressure    ChannelType = 7  // hPa
	RunningCadence ChannelType = 8  // spm
	Temperature    ChannelType = 9  // tenths of a degree C
	Distance       ChannelType = 10 // m, cumulative
	RRInterval     ChannelType = 11 // ms
)

var channelNames = map[ChannelType]string{
	HeartRate:      "heart_rate",
	Speed:          "speed",
	Cadence:        "cadence",
	Altitude:       "altitude",
	Power:          "power",
	PedalingIndex:  "pedaling_index",
	LRBalance:      "lr_balance",
	AirPressure:    "air_pressure",
	RunningCadence: "running_cadence",
	Temperature:    "temperature",
	Distance:       "distance",
	RRInterval:     "rr_interval",
}

// String returns the snake_case channel name.
func (t ChannelType) String() string {
	if name, ok := channelNames[t]; ok {
		return name
	}
	return fmt.Sprintf("channel_%d", int(t))
}

// Known reports whether t is one of the recognised channel tags.
func (t ChannelType) Known() bool {
	_, ok := channelNames[t]
	return ok
}

// UnmarshalJSON accepts the tag either as a number or as a numeric string.
func (t *ChannelType) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*t = ChannelType(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("sample type: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("sample type %q: %w", s, err)
	}
	*t = ChannelType(n)
	return nil
}

// RawChannel is one upstream sample block.
type RawChannel struct {
	IntervalSeconds float64     `json:"recording-rate"`
	Type            ChannelType `json:"sample-type"`
	Values          string      `json:"data"`
}
