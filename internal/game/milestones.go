package game

import "slices"

// MilestoneThresholds are the balances that trigger a celebration, ascending.
var MilestoneThresholds = []float64{1e4, 1e5, 1e6, 1e7, 1e8}

// Milestones records which thresholds were crossed in the current prestige
// epoch. The zero value is an empty record.
type Milestones struct {
	crossed []float64
}

// Cross records every threshold at or below balance that was not yet
// recorded and returns those, ascending.
func (m *Milestones) Cross(balance float64) []float64 {
	var fresh []float64

	for _, t := range MilestoneThresholds {
		if balance >= t && !slices.Contains(m.crossed, t) {
			m.crossed = append(m.crossed, t)
			fresh = append(fresh, t)
		}
	}

	return fresh
}

// Reset empties the record; called on prestige.
func (m *Milestones) Reset() {
	m.crossed = nil
}

// Crossed returns the recorded thresholds, ascending. Never nil.
func (m *Milestones) Crossed() []float64 {
	out := append([]float64{}, m.crossed...)
	slices.Sort(out)

	return out
}
