// Package samples decodes delimited per-interval sensor strings into
// index-aligned series of optional readings.
package samples

import (
	"math"
	"strconv"
	"strings"
)

// Delimiter separates readings inside a raw sample block.
const Delimiter = ","

// Reading is one recording slot. Present is false when the device did not
// record a usable value for the slot.
type Reading struct {
	Value   float64
	Present bool
}

// At returns a present reading holding v.
func At(v float64) Reading {
	return Reading{Value: v, Present: true}
}

// Absent returns a reading marking a missing slot.
func Absent() Reading {
	return Reading{}
}

// Series is a decoded channel: one reading per recording interval.
type Series struct {
	Type            ChannelType
	IntervalSeconds float64
	Readings        []Reading
}

// Decode splits a raw delimited string into readings. Malformed, sentinel and
// non-finite tokens become absent readings; the output always has one entry
// per token so co-indexed channels stay aligned.
func Decode(raw string) []Reading {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	tokens := strings.Split(raw, Delimiter)
	out := make([]Reading, len(tokens))
	for i, tok := range tokens {
		out[i] = parseToken(tok)
	}
	return out
}

// DecodeChannel decodes a raw block and keeps its interval and type.
func DecodeChannel(ch RawChannel) Series {
	return Series{
		Type:            ch.Type,
		IntervalSeconds: ch.IntervalSeconds,
		Readings:        Decode(ch.Values),
	}
}

func parseToken(tok string) Reading {
	tok = strings.TrimSpace(tok)
	if isSentinel(tok) {
		return Absent()
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Absent()
	}
	return At(v)
}

func isSentinel(tok string) bool {
	switch strings.ToLower(tok) {
	case "", "null", "nan", "-", "none":
		return true
	}
	return false
}

// FilterPresent drops absent readings. It is the only place index alignment
// is given up; paired channels must use FilterPaired instead.
func FilterPresent(readings []Reading) []float64 {
	out := make([]float64, 0, len(readings))
	for _, r := range readings {
		if r.Present {
			out = append(out, r.Value)
		}
	}
	return out
}

// FilterPaired drops index i from both sequences whenever either side is
// absent at i. Inputs are truncated to the shorter length first, so the
// returned slices always have equal length and matching positions.
func FilterPaired(a, b []Reading) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if !a[i].Present || !b[i].Present {
			continue
		}
		xs = append(xs, a[i].Value)
		ys = append(ys, b[i].Value)
	}
	return xs, ys
}

// Encode renders readings back into a delimited block, writing absent slots
// as empty tokens.
func Encode(readings []Reading) string {
	parts := make([]string, len(readings))
	for i, r := range readings {
		if r.Present {
			parts[i] = strconv.FormatFloat(r.Value, 'f', -1, 64)
		}
	}
	return strings.Join(parts, Delimiter)
}
