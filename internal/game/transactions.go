package game

import (
	"errors"
	"fmt"
	"math"

	"github.com/fastprodman/TimeMint/internal/catalog"
)

// PrestigeThreshold is the lifetime earnings needed before prestige is offered.
const PrestigeThreshold = 100000.0

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownItem       = errors.New("unknown catalog item")
	ErrPrestigeLocked    = errors.New("prestige threshold not reached")
)

type ItemKind string

const (
	KindUpgrade  ItemKind = "upgrade"
	KindBusiness ItemKind = "business"
)

// Purchase describes an applied purchase.
type Purchase struct {
	ItemID   string   `json:"itemId"`
	Kind     ItemKind `json:"kind"`
	Cost     float64  `json:"cost"`
	Owned    int      `json:"owned"`
	NextCost float64  `json:"nextCost"`
}

// PrestigeResult describes an applied prestige.
type PrestigeResult struct {
	AwardedPoints int64   `json:"awardedPoints"`
	TotalPoints   int64   `json:"totalPoints"`
	Multiplier    float64 `json:"multiplier"`
	TotalEarned   float64 `json:"totalEarned"` // lifetime earnings converted by this prestige
}

// PurchaseUpgrade buys one unit of the upgrade. On any error st is untouched.
func (e Engine) PurchaseUpgrade(st *State, id string) (Purchase, error) {
	u, ok := e.Catalog.Upgrade(id)
	if !ok {
		return Purchase{}, fmt.Errorf("%w: upgrade %q", ErrUnknownItem, id)
	}

	owned, err := buy(st, &st.Upgrades, id, u.Pricing())
	if err != nil {
		return Purchase{}, err
	}

	return Purchase{
		ItemID:   id,
		Kind:     KindUpgrade,
		Cost:     Cost(u.Pricing(), owned-1),
		Owned:    owned,
		NextCost: Cost(u.Pricing(), owned),
	}, nil
}

// PurchaseBusiness buys one unit of the business. On any error st is untouched.
func (e Engine) PurchaseBusiness(st *State, id string) (Purchase, error) {
	b, ok := e.Catalog.Business(id)
	if !ok {
		return Purchase{}, fmt.Errorf("%w: business %q", ErrUnknownItem, id)
	}

	owned, err := buy(st, &st.Businesses, id, b.Pricing())
	if err != nil {
		return Purchase{}, err
	}

	return Purchase{
		ItemID:   id,
		Kind:     KindBusiness,
		Cost:     Cost(b.Pricing(), owned-1),
		Owned:    owned,
		NextCost: Cost(b.Pricing(), owned),
	}, nil
}

// buy checks affordability before touching anything, then debits the cost
// and increments the count by exactly one.
func buy(st *State, counts *map[string]int, id string, p catalog.Pricing) (int, error) {
	owned := (*counts)[id]
	cost := Cost(p, owned)

	if st.Balance < cost {
		return 0, fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientFunds, cost, st.Balance)
	}

	if *counts == nil {
		*counts = map[string]int{}
	}

	st.Balance = math.Max(0, st.Balance-cost)
	(*counts)[id] = owned + 1

	return owned + 1, nil
}

// PendingPrestigePoints is what a prestige would award right now.
func PendingPrestigePoints(st *State) int64 {
	if st.TotalEarned < PrestigeThreshold {
		return 0
	}

	return int64(math.Floor(math.Sqrt(st.TotalEarned / PrestigeThreshold)))
}

// Prestige converts lifetime earnings into permanent points and soft-resets
// progress. Achievements and prestige points survive; ms is cleared.
func (e Engine) Prestige(st *State, ms *Milestones) (PrestigeResult, error) {
	if st.TotalEarned < PrestigeThreshold {
		return PrestigeResult{}, fmt.Errorf("%w: %.2f of %.0f earned", ErrPrestigeLocked, st.TotalEarned, PrestigeThreshold)
	}

	awarded := PendingPrestigePoints(st)
	converted := st.TotalEarned

	st.Balance = 0
	st.TotalEarned = 0
	st.Upgrades = map[string]int{}
	st.Businesses = map[string]int{}
	st.PrestigePoints += awarded
	st.PrestigeMultiplier = PrestigeMultiplierFor(st.PrestigePoints)

	ms.Reset()

	return PrestigeResult{
		AwardedPoints: awarded,
		TotalPoints:   st.PrestigePoints,
		Multiplier:    st.PrestigeMultiplier,
		TotalEarned:   converted,
	}, nil
}
