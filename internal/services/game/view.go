package game

import (
	"github.com/fastprodman/TimeMint/internal/format"
	core "github.com/fastprodman/TimeMint/internal/game"
)

// View is the read model the UI renders from.
type View struct {
	Balance          float64           `json:"balance"`
	BalanceFormatted string            `json:"balanceFormatted"`
	TotalEarned      float64           `json:"totalEarned"`
	IPS              float64           `json:"ips"`
	IPSFormatted     string            `json:"ipsFormatted"`
	Mode             core.TimeMode     `json:"mode"`
	Multipliers      MultipliersView   `json:"multipliers"`
	Upgrades         []ItemView        `json:"upgrades"`
	Businesses       []ItemView        `json:"businesses"`
	Achievements     []AchievementView `json:"achievements"`
	Prestige         PrestigeView      `json:"prestige"`
	Milestones       []float64         `json:"milestones"`
	OfflineEarnings  *OfflineView      `json:"offlineEarnings,omitempty"`
	SessionTime      string            `json:"sessionTime"`
	Version          string            `json:"version"`
}

type MultipliersView struct {
	core.Multipliers
	Effective float64 `json:"effective"`
}

// ItemView is one purchasable upgrade or business line.
type ItemView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Icon          string  `json:"icon"`
	Owned         int     `json:"owned"`
	Cost          float64 `json:"cost"`
	CostFormatted string  `json:"costFormatted"`
	Affordable    bool    `json:"affordable"`
	Progress      float64 `json:"progress"`
	Income        float64 `json:"income"` // per second from this line
}

type AchievementView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Requirement float64 `json:"requirement"`
	Type        string  `json:"type"`
	Unlocked    bool    `json:"unlocked"`
}

type PrestigeView struct {
	Points        int64   `json:"points"`
	Multiplier    float64 `json:"multiplier"`
	PendingPoints int64   `json:"pendingPoints"`
	Available     bool    `json:"available"`
	Threshold     float64 `json:"threshold"`
}

type OfflineView struct {
	Amount    float64 `json:"amount"`
	Formatted string  `json:"formatted"`
}

func (s *GameService) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &s.st
	rhythm := s.rhythm.Multiplier(s.mode)
	mult := core.Compose(st, s.mode, rhythm)
	ips := s.engine.IncomeRate(st, s.mode, rhythm)
	cat := s.engine.Catalog

	v := View{
		Balance:          st.Balance,
		BalanceFormatted: format.Currency(st.Balance),
		TotalEarned:      st.TotalEarned,
		IPS:              ips,
		IPSFormatted:     format.Rate(ips),
		Mode:             s.mode,
		Multipliers:      MultipliersView{Multipliers: mult, Effective: mult.Effective()},
		Prestige: PrestigeView{
			Points:        st.PrestigePoints,
			Multiplier:    st.PrestigeMultiplier,
			PendingPoints: core.PendingPrestigePoints(st),
			Available:     st.TotalEarned >= core.PrestigeThreshold,
			Threshold:     core.PrestigeThreshold,
		},
		Milestones:  s.milestones.Crossed(),
		SessionTime: format.Duration(s.clk.Now().Sub(s.sessionStart)),
		Version:     st.Version,
	}

	for u := range cat.AllUpgrades() {
		owned := st.Upgrades[u.ID]
		cost := core.Cost(u.Pricing(), owned)
		v.Upgrades = append(v.Upgrades, ItemView{
			ID:            u.ID,
			Name:          u.Name,
			Description:   u.Description,
			Icon:          u.Icon,
			Owned:         owned,
			Cost:          cost,
			CostFormatted: format.Currency(cost),
			Affordable:    st.Balance >= cost,
			Progress:      core.Progress(st.Balance, cost),
			Income:        s.engine.UpgradeIncome(st, u, s.mode, rhythm),
		})
	}

	for b := range cat.AllBusinesses() {
		owned := st.Businesses[b.ID]
		cost := core.Cost(b.Pricing(), owned)
		v.Businesses = append(v.Businesses, ItemView{
			ID:            b.ID,
			Name:          b.Name,
			Description:   b.Description,
			Icon:          b.Icon,
			Owned:         owned,
			Cost:          cost,
			CostFormatted: format.Currency(cost),
			Affordable:    st.Balance >= cost,
			Progress:      core.Progress(st.Balance, cost),
			Income:        s.engine.BusinessIncome(st, b, s.mode, rhythm),
		})
	}

	for a := range cat.AllAchievements() {
		v.Achievements = append(v.Achievements, AchievementView{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Requirement: a.Requirement,
			Type:        string(a.Type),
			Unlocked:    st.HasAchievement(a.ID),
		})
	}

	if s.offline > 0 {
		v.OfflineEarnings = &OfflineView{Amount: s.offline, Formatted: format.Currency(s.offline)}
	}

	return v
}
