// Package rhythm turns spectrum frames into a beat-driven income multiplier.
package rhythm

import (
	"math"
	"sync"
	"time"

	"github.com/fastprodman/TimeMint/internal/clock"
	"github.com/fastprodman/TimeMint/internal/game"
)

const (
	// BassBins is how many of the lowest frequency bins make up the bass energy.
	BassBins = 4
	// BeatThreshold is the bass energy a frame must exceed to count as a beat.
	BeatThreshold = 180.0
	// Cooldown is the minimum spacing between two beats.
	Cooldown = 250 * time.Millisecond
	// BeatGain is added to the level per beat.
	BeatGain = 4.0

	frame       = time.Second / 60
	decayNormal = 0.2
	decayFast   = 0.5
)

// DecayPerFrame is how much level is lost per 1/60s in mode m.
func DecayPerFrame(m game.TimeMode) float64 {
	if m == game.ModeFast {
		return decayFast
	}

	return decayNormal
}

// BassEnergy is the mean of the first BassBins bins. Shorter frames are
// averaged over what they have.
func BassEnergy(bins []uint8) float64 {
	n := min(len(bins), BassBins)
	if n == 0 {
		return 0
	}

	sum := 0
	for _, b := range bins[:n] {
		sum += int(b)
	}

	return float64(sum) / float64(n)
}

// Detector accumulates beats into a level in [0, game.RhythmCap] that decays
// with wall time. Safe for concurrent use.
type Detector struct {
	clock clock.Clock

	mu       sync.Mutex
	level    float64
	lastBeat time.Time
	decayed  time.Time // level is exact as of this instant
}

func NewDetector(clk clock.Clock) *Detector {
	return &Detector{clock: clk, decayed: clk.Now()}
}

// Observe feeds one spectrum frame captured at at and reports whether it
// produced a beat. The mode selects the decay speed. Frames older than the
// last observed one do not rewind the decay.
func (d *Detector) Observe(bins []uint8, at time.Time, mode game.TimeMode) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.decayTo(at, mode)

	if BassEnergy(bins) <= BeatThreshold {
		return false
	}

	if !d.lastBeat.IsZero() && at.Sub(d.lastBeat) < Cooldown {
		return false
	}

	d.lastBeat = at
	d.level = math.Min(game.RhythmCap, d.level+BeatGain)

	return true
}

// Level is the beat level as of now.
func (d *Detector) Level(mode game.TimeMode) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.levelAt(d.clock.Now(), mode)
}

// Multiplier is the rhythm factor for the economy, 1 + level/divisor.
func (d *Detector) Multiplier(mode game.TimeMode) float64 {
	return 1 + d.Level(mode)/game.RhythmDivisor(mode)
}

// Settle applies decay up to now at mode's rate. Call it with the outgoing
// mode before switching, so each stretch of time decays at the rate that
// applied to it.
func (d *Detector) Settle(mode game.TimeMode) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.decayTo(d.clock.Now(), mode)
}

// Reset drops all accumulated beats, e.g. when the music stops.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.level = 0
	d.lastBeat = time.Time{}
	d.decayed = d.clock.Now()
}

func (d *Detector) decayTo(at time.Time, mode game.TimeMode) {
	d.level = d.levelAt(at, mode)
	if at.After(d.decayed) {
		d.decayed = at
	}
}

func (d *Detector) levelAt(at time.Time, mode game.TimeMode) float64 {
	elapsed := at.Sub(d.decayed)
	if elapsed <= 0 {
		return d.level
	}

	frames := float64(elapsed) / float64(frame)

	return math.Max(0, d.level-frames*DecayPerFrame(mode))
}
