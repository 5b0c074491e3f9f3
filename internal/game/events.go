package game

import "time"

// EventType names a one-shot side effect produced by the core.
type EventType string

const (
	EventMilestoneCrossed    EventType = "milestone_crossed"
	EventAchievementUnlocked EventType = "achievement_unlocked"
	EventPurchase            EventType = "purchase"
	EventPrestige            EventType = "prestige"
	EventManualTap           EventType = "manual_tap"
	EventModeChanged         EventType = "mode_changed"
	EventBeat                EventType = "beat"
	EventOfflineEarnings     EventType = "offline_earnings"
)

// Event is emitted by simulation steps and transactions. ID and At are
// stamped by whoever publishes it.
type Event struct {
	ID            string    `json:"id"`
	At            time.Time `json:"at"`
	Type          EventType `json:"type"`
	Threshold     float64   `json:"threshold,omitempty"`
	AchievementID string    `json:"achievementId,omitempty"`
	ItemID        string    `json:"itemId,omitempty"`
	Amount        float64   `json:"amount,omitempty"`
	Points        int64     `json:"points,omitempty"`
	Mode          TimeMode  `json:"mode,omitempty"`
}
