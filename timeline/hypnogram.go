package timeline

import "math"

// Hypnogram stage codes.
const (
	StageWake          = 0
	StageREM           = 1
	StageLighterNonREM = 2
	StageLightNonREM   = 3
	StageDeepNonREM    = 4
	StageUnknown       = 5
)

// Cycle count sources.
const (
	CycleSourceDevice    = "device"
	CycleSourceHeuristic = "rem_transitions"
)

// Segment holds one stage from its timestamp until the next one.
type Segment struct {
	Stage          int `json:"stage_code"`
	StartOffsetMin int `json:"start_offset_minutes"`
	DurationMin    int `json:"duration_minutes"`
}

func (s Segment) end() int {
	return s.StartOffsetMin + s.DurationMin
}

// Segments converts ordered hypnogram points into stage segments, offsets
// measured from originMinutes. The last point only terminates the previous
// segment.
func Segments(points []Point, originMinutes int) []Segment {
	if len(points) < 2 {
		return nil
	}
	out := make([]Segment, 0, len(points)-1)
	for i := 0; i+1 < len(points); i++ {
		out = append(out, Segment{
			Stage:          int(points[i].Value),
			StartOffsetMin: points[i].Minutes - originMinutes,
			DurationMin:    points[i+1].Minutes - points[i].Minutes,
		})
	}
	return out
}

// StageMinutes totals segment durations per stage group.
type StageMinutes struct {
	Wake    int `json:"wake"`
	REM     int `json:"rem"`
	Light   int `json:"light"`
	Deep    int `json:"deep"`
	Unknown int `json:"unknown,omitempty"`
}

// Architecture is the cycle and phase distribution of one night.
type Architecture struct {
	Stages                StageMinutes `json:"stage_minutes"`
	DeepLatencyMin        int          `json:"deep_sleep_latency_min"`
	REMTransitions        int          `json:"rem_transitions"`
	CycleCount            int          `json:"cycle_count"`
	CycleCountSource      string       `json:"cycle_count_source,omitempty"`
	AvgCycleLengthMin     float64      `json:"avg_cycle_length_min"`
	DeepBeforeMidpointPct float64      `json:"deep_before_midpoint_pct"`
	REMAfterMidpointPct   float64      `json:"rem_after_midpoint_pct"`
}

// Analyze derives architecture metrics from segments. sessionMinutes is the
// session length measured from the segment origin; when it is not positive
// the end of the last segment is used. reportedCycles is the device's own
// cycle count and wins over the REM-transition fallback when positive.
func Analyze(segments []Segment, sessionMinutes float64, reportedCycles int) Architecture {
	var arch Architecture
	if len(segments) == 0 {
		return arch
	}
	if sessionMinutes <= 0 {
		sessionMinutes = float64(segments[len(segments)-1].end())
	}
	midpoint := sessionMinutes / 2

	deepSeen := false
	deepBefore, remAfter := 0.0, 0.0
	for i, s := range segments {
		switch s.Stage {
		case StageWake:
			arch.Stages.Wake += s.DurationMin
		case StageREM:
			arch.Stages.REM += s.DurationMin
			remAfter += overlap(s, midpoint, math.Inf(1))
			if i > 0 && segments[i-1].Stage != StageREM {
				arch.REMTransitions++
			}
		case StageLighterNonREM, StageLightNonREM:
			arch.Stages.Light += s.DurationMin
		case StageDeepNonREM:
			arch.Stages.Deep += s.DurationMin
			deepBefore += overlap(s, math.Inf(-1), midpoint)
			if !deepSeen {
				deepSeen = true
				arch.DeepLatencyMin = max(s.StartOffsetMin, 0)
			}
		default:
			arch.Stages.Unknown += s.DurationMin
		}
	}

	arch.CycleCount = arch.REMTransitions
	arch.CycleCountSource = CycleSourceHeuristic
	if reportedCycles > 0 {
		arch.CycleCount = reportedCycles
		arch.CycleCountSource = CycleSourceDevice
	}
	asleep := arch.Stages.Light + arch.Stages.Deep + arch.Stages.REM
	if arch.CycleCount > 0 {
		arch.AvgCycleLengthMin = round2(float64(asleep) / float64(arch.CycleCount))
	}
	if arch.Stages.Deep > 0 {
		arch.DeepBeforeMidpointPct = round2(deepBefore / float64(arch.Stages.Deep) * 100)
	}
	if arch.Stages.REM > 0 {
		arch.REMAfterMidpointPct = round2(remAfter / float64(arch.Stages.REM) * 100)
	}
	return arch
}

// overlap returns how many minutes of s fall inside [from, to].
func overlap(s Segment, from, to float64) float64 {
	start := math.Max(float64(s.StartOffsetMin), from)
	end := math.Min(float64(s.end()), to)
	if end <= start {
		return 0
	}
	return end - start
}
