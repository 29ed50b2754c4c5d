// Package timing computes the phase boundaries that keep narration audio,
// the numeric countdown overlay and the answer reveal synchronized in the
// rendered video. It is the single source of truth consumed by the render
// adapter; it has no side effects and no rendering dependency.
package timing

import "math"

// Plan holds the derived time boundaries for one video, all in seconds.
type Plan struct {
	NarrationDuration    float64 `json:"narration_duration"`
	CountdownDuration    float64 `json:"countdown_duration"`
	RevealDuration       float64 `json:"reveal_duration"`
	TotalDuration        float64 `json:"total_duration"`
	CountdownStartOffset float64 `json:"countdown_start_offset"`
	RevealStartOffset    float64 `json:"reveal_start_offset"`
	RevealEndOffset      float64 `json:"reveal_end_offset"`
}

// Compute derives a Plan from the measured narration duration. The floor
// guards against a zero or negative probe result.
func Compute(narrationDuration, countdownSeconds, revealSeconds, minNarrationFloor float64) Plan {
	narration := math.Max(narrationDuration, minNarrationFloor)
	countdownStart := narration
	revealStart := narration + countdownSeconds
	revealEnd := revealStart + revealSeconds
	return Plan{
		NarrationDuration:    narration,
		CountdownDuration:    countdownSeconds,
		RevealDuration:       revealSeconds,
		TotalDuration:        revealEnd,
		CountdownStartOffset: countdownStart,
		RevealStartOffset:    revealStart,
		RevealEndOffset:      revealEnd,
	}
}

// CountdownDisplay returns the number shown at elapsed time t. Within the
// countdown phase it is max(0, ceil(countdown - (t - start))): it starts at
// the full countdown value and reaches exactly 0 at the phase boundary.
// Outside the phase it returns 0.
func CountdownDisplay(p Plan, t float64) int {
	if t < p.CountdownStartOffset || t > p.RevealStartOffset {
		return 0
	}
	v := int(math.Ceil(p.CountdownDuration - (t - p.CountdownStartOffset)))
	if v < 0 {
		return 0
	}
	return v
}
