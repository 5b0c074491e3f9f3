package game

import (
	"errors"
	"math"

	"github.com/fastprodman/TimeMint/internal/catalog"
)

// TapBurstFactor is how many seconds of base income one manual tap is worth.
const TapBurstFactor = 5.0

var ErrTapUnavailable = errors.New("manual tap is only available in freeze mode")

// Advance moves st forward by dt seconds of real time and returns the events
// the step produced. It is the only passive income path.
//
//  1. gain = IncomeRate * dt
//  2. balance and totalEarned grow by gain
//  3. newly crossed milestones are recorded in ms
//  4. achievements met by the updated totals are unlocked
func (e Engine) Advance(st *State, ms *Milestones, dt float64, mode TimeMode, rhythm float64) []Event {
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}

	gain := e.IncomeRate(st, mode, rhythm) * dt
	if math.IsInf(gain, 0) {
		gain = 0
	}

	st.Balance += gain
	st.TotalEarned += gain

	var events []Event

	for _, t := range ms.Cross(st.Balance) {
		events = append(events, Event{Type: EventMilestoneCrossed, Threshold: t})
	}

	for _, id := range e.UnlockAchievements(st) {
		events = append(events, Event{Type: EventAchievementUnlocked, AchievementID: id})
	}

	return events
}

// UnlockAchievements appends every newly met achievement id to st and
// returns them in catalog order. Already unlocked ids are never re-evaluated.
func (e Engine) UnlockAchievements(st *State) []string {
	var unlocked []string

	for a := range e.Catalog.AllAchievements() {
		if st.HasAchievement(a.ID) || !achievementMet(st, a) {
			continue
		}

		st.Achievements = append(st.Achievements, a.ID)
		unlocked = append(unlocked, a.ID)
	}

	return unlocked
}

func achievementMet(st *State, a catalog.Achievement) bool {
	switch a.Type {
	case catalog.AchievementBalance:
		return st.Balance >= a.Requirement
	case catalog.AchievementTotalEarned:
		return st.TotalEarned >= a.Requirement
	case catalog.AchievementUpgradeCount:
		return float64(st.UpgradeCount()) >= a.Requirement
	case catalog.AchievementPrestigeCount:
		return float64(st.PrestigePoints) >= a.Requirement
	default:
		return false
	}
}

// ManualTap adds a lump sum worth TapBurstFactor seconds of base income at
// the current prestige multiplier. Mode and rhythm multipliers do not apply.
func (e Engine) ManualTap(st *State, mode TimeMode) (float64, error) {
	if mode != ModeFreeze {
		return 0, ErrTapUnavailable
	}

	burst := e.BaseRate(st) * st.PrestigeMultiplier * TapBurstFactor

	st.Balance += burst
	st.TotalEarned += burst

	return burst, nil
}
