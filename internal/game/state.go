package game

import (
	"maps"
	"slices"
	"time"
)

// CurrentVersion is written into every new or saved state.
const CurrentVersion = "2.6.3"

// PrestigeStep is the multiplier gained per prestige point.
const PrestigeStep = 0.1

// State is the single mutable aggregate of player progress. The JSON form
// is the persisted snapshot.
type State struct {
	Balance            float64        `json:"balance"`
	TotalEarned        float64        `json:"totalEarned"`
	LastUpdate         int64          `json:"lastUpdate"` // unix milliseconds
	Upgrades           map[string]int `json:"upgrades"`
	Businesses         map[string]int `json:"businesses"`
	Achievements       []string       `json:"achievements"`
	PrestigePoints     int64          `json:"prestigePoints"`
	PrestigeMultiplier float64        `json:"prestigeMultiplier"`
	Version            string         `json:"version"`
}

// Fresh returns the default state for a new player.
func Fresh(now time.Time) State {
	return State{
		LastUpdate:         now.UnixMilli(),
		Upgrades:           map[string]int{},
		Businesses:         map[string]int{},
		Achievements:       []string{},
		PrestigeMultiplier: 1,
		Version:            CurrentVersion,
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.Upgrades = maps.Clone(s.Upgrades)
	out.Businesses = maps.Clone(s.Businesses)
	out.Achievements = slices.Clone(s.Achievements)

	return out
}

// Touch records t as the last simulation advance.
func (s *State) Touch(t time.Time) {
	s.LastUpdate = t.UnixMilli()
}

func (s State) LastUpdateTime() time.Time {
	return time.UnixMilli(s.LastUpdate)
}

// UpgradeCount sums owned units across all upgrades.
func (s State) UpgradeCount() int {
	total := 0
	for _, n := range s.Upgrades {
		total += n
	}

	return total
}

func (s State) HasAchievement(id string) bool {
	return slices.Contains(s.Achievements, id)
}

// PrestigeMultiplierFor derives the stored multiplier from prestige points.
func PrestigeMultiplierFor(points int64) float64 {
	return 1 + float64(points)*PrestigeStep
}
