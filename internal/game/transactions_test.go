package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseUpgrade_Exact(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	st := Fresh(epoch)
	st.Balance = 15

	p, err := e.PurchaseUpgrade(&st, "u1")
	require.NoError(t, err)

	assert.Equal(t, 0.0, st.Balance)
	assert.Equal(t, 1, st.Upgrades["u1"])
	assert.Equal(t, KindUpgrade, p.Kind)
	assert.Equal(t, 15.0, p.Cost)
	assert.Equal(t, 1, p.Owned)
	assert.InDelta(t, 17.25, p.NextCost, 1e-9)
}

func TestPurchase_Unaffordable_LeavesStateIdentical(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	tests := []struct {
		name string
		buy  func(st *State) error
	}{
		{
			name: "upgrade",
			buy: func(st *State) error {
				_, err := e.PurchaseUpgrade(st, "u2")
				return err
			},
		},
		{
			name: "business",
			buy: func(st *State) error {
				_, err := e.PurchaseBusiness(st, "b5")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			st := State{Balance: 99.99, Version: CurrentVersion, PrestigeMultiplier: 1}
			before, err := Encode(st)
			require.NoError(t, err)

			for range 3 {
				require.ErrorIs(t, tt.buy(&st), ErrInsufficientFunds)
			}

			after, err := Encode(st)
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after))
		})
	}
}

func TestPurchase_UnknownID(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	st := Fresh(epoch)
	st.Balance = 1e9
	before := st.Clone()

	_, err := e.PurchaseUpgrade(&st, "b1")
	require.ErrorIs(t, err, ErrUnknownItem)

	_, err = e.PurchaseBusiness(&st, "zzz")
	require.ErrorIs(t, err, ErrUnknownItem)

	assert.Equal(t, before, st)
}

func TestPurchaseBusiness_CostCurve(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	st := Fresh(epoch)
	st.Balance = 25

	_, err := e.PurchaseBusiness(&st, "b1")
	require.NoError(t, err)

	p, err := e.PurchaseBusiness(&st, "b1")
	require.NoError(t, err)

	assert.InDelta(t, 11.2, p.Cost, 1e-9)
	assert.Equal(t, 2, st.Businesses["b1"])
	assert.InDelta(t, 3.8, st.Balance, 1e-9)
	assert.InDelta(t, 12.544, p.NextCost, 1e-9)
}

func TestPrestige_AwardsPoints(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	st := Fresh(epoch)
	st.Balance = 1234
	st.TotalEarned = 400000
	st.Upgrades["u1"] = 5
	st.Businesses["b1"] = 3
	st.Achievements = []string{"a1", "a2"}
	var ms Milestones
	ms.Cross(1e5)

	res, err := e.Prestige(&st, &ms)
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.AwardedPoints)
	assert.Equal(t, int64(2), st.PrestigePoints)
	assert.InDelta(t, 1.2, st.PrestigeMultiplier, 1e-9)
	assert.Equal(t, 0.0, st.Balance)
	assert.Equal(t, 0.0, st.TotalEarned)
	assert.Empty(t, st.Upgrades)
	assert.Empty(t, st.Businesses)
	assert.Equal(t, []string{"a1", "a2"}, st.Achievements)
	assert.Empty(t, ms.Crossed())
	assert.Equal(t, 400000.0, res.TotalEarned)
}

func TestPrestige_Accumulates(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	st := Fresh(epoch)
	st.PrestigePoints = 3
	st.PrestigeMultiplier = PrestigeMultiplierFor(3)
	st.TotalEarned = 100000
	var ms Milestones

	res, err := e.Prestige(&st, &ms)
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.AwardedPoints)
	assert.Equal(t, int64(4), st.PrestigePoints)
	assert.InDelta(t, 1.4, st.PrestigeMultiplier, 1e-9)
}

func TestPrestige_BelowThreshold(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	st := Fresh(epoch)
	st.TotalEarned = 99999.99
	st.Balance = 500
	var ms Milestones
	before := st.Clone()

	_, err := e.Prestige(&st, &ms)
	require.ErrorIs(t, err, ErrPrestigeLocked)
	assert.Equal(t, before, st)
	assert.Equal(t, int64(0), PendingPrestigePoints(&st))
}

func TestPrestige_NeverDecreases(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	st := Fresh(epoch)
	var ms Milestones

	lastPoints, lastMult := st.PrestigePoints, st.PrestigeMultiplier
	check := func() {
		t.Helper()
		require.GreaterOrEqual(t, st.PrestigePoints, lastPoints)
		require.GreaterOrEqual(t, st.PrestigeMultiplier, lastMult)
		lastPoints, lastMult = st.PrestigePoints, st.PrestigeMultiplier
	}

	for round := range 4 {
		e.Advance(&st, &ms, 250000, ModeFast, 1.1)
		check()

		for _, id := range []string{"u1", "u2", "b1", "b3"} {
			_, _ = e.PurchaseUpgrade(&st, id)
			_, _ = e.PurchaseBusiness(&st, id)
			check()
		}

		_, err := e.Prestige(&st, &ms)
		require.NoError(t, err, "round %d", round)
		check()

		_, err = e.Prestige(&st, &ms)
		require.ErrorIs(t, err, ErrPrestigeLocked)
		check()
	}
}

func TestPendingPrestigePoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total float64
		want  int64
	}{
		{0, 0},
		{99999, 0},
		{100000, 1},
		{399999, 1},
		{400000, 2},
		{1e7, 10},
	}

	for _, tt := range tests {
		st := State{TotalEarned: tt.total}
		assert.Equal(t, tt.want, PendingPrestigePoints(&st), "total %v", tt.total)
	}
}
