package game

import (
	"math"

	"github.com/fastprodman/TimeMint/internal/catalog"
)

// PassiveFloor is the trickle every player earns with nothing owned.
const PassiveFloor = 1.0

// Engine applies the economy rules of a catalog to a State. It holds no
// mutable data; all methods are safe to call concurrently on distinct states.
type Engine struct {
	Catalog *catalog.Catalog
}

func NewEngine(c *catalog.Catalog) Engine {
	return Engine{Catalog: c}
}

// BaseRate is the summed per-second income before any multiplier.
// Owned ids missing from the catalog contribute nothing.
func (e Engine) BaseRate(st *State) float64 {
	rate := PassiveFloor

	for u := range e.Catalog.AllUpgrades() {
		rate += float64(st.Upgrades[u.ID]) * u.IncomePerSecond
	}

	for b := range e.Catalog.AllBusinesses() {
		rate += float64(st.Businesses[b.ID]) * b.BaseIncome
	}

	return rate
}

// IncomeRate is the instantaneous currency/second (IPS). It is pure.
func (e Engine) IncomeRate(st *State, mode TimeMode, rhythm float64) float64 {
	if mode == ModeFreeze {
		return 0
	}

	rate := e.BaseRate(st) * Compose(st, mode, rhythm).Effective()
	if rate < 0 || math.IsNaN(rate) {
		return 0
	}

	return rate
}

// BusinessIncome is the share of IncomeRate produced by one business line.
func (e Engine) BusinessIncome(st *State, b catalog.Business, mode TimeMode, rhythm float64) float64 {
	return float64(st.Businesses[b.ID]) * b.BaseIncome * Compose(st, mode, rhythm).Effective()
}

// UpgradeIncome is the share of IncomeRate produced by one upgrade line.
func (e Engine) UpgradeIncome(st *State, u catalog.Upgrade, mode TimeMode, rhythm float64) float64 {
	return float64(st.Upgrades[u.ID]) * u.IncomePerSecond * Compose(st, mode, rhythm).Effective()
}

// Cost is the price of the next unit given the number already owned.
func Cost(p catalog.Pricing, owned int) float64 {
	return p.BasePrice * math.Pow(p.PriceMultiplier, float64(owned))
}

// Progress is how far balance is toward cost, in [0, 1].
func Progress(balance, cost float64) float64 {
	if cost <= 0 {
		return 1
	}

	return math.Max(0, math.Min(1, balance/cost))
}
