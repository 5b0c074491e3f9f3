package game

import "math"

const (
	// RhythmCap is the highest beat level the detector accumulates.
	RhythmCap = 100.0

	rhythmDivisorSlow    = 150.0
	rhythmDivisorDefault = 400.0
)

// RhythmDivisor scales the beat level into a multiplier bonus. Slow mode
// uses a smaller divisor, so its bonus cap is higher.
func RhythmDivisor(m TimeMode) float64 {
	if m == ModeSlow {
		return rhythmDivisorSlow
	}

	return rhythmDivisorDefault
}

// MaxRhythm is the upper bound of the rhythm multiplier in mode m.
func MaxRhythm(m TimeMode) float64 {
	return 1 + RhythmCap/RhythmDivisor(m)
}

// Multipliers are the three independent factors applied to the base rate.
type Multipliers struct {
	Prestige float64 `json:"prestige"`
	Mode     float64 `json:"mode"`
	Rhythm   float64 `json:"rhythm"`
}

// Compose reads the current factors. It keeps no state and may be called at any cadence.
func Compose(st *State, mode TimeMode, rhythm float64) Multipliers {
	return Multipliers{
		Prestige: st.PrestigeMultiplier,
		Mode:     ModeMultiplier(mode),
		Rhythm:   clampRhythm(rhythm),
	}
}

// Effective is the single scalar the economy multiplies the base rate by.
func (m Multipliers) Effective() float64 {
	return m.Prestige * m.Mode * m.Rhythm
}

func clampRhythm(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 1 {
		return 1
	}

	return r
}
