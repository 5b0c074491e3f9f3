package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrMalformedState     = errors.New("malformed state")
	ErrIncompatibleSchema = errors.New("incompatible state version")
)

// Encode serializes st as the persisted snapshot.
func Encode(st State) ([]byte, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}

	return data, nil
}

// Decode parses a persisted snapshot. Partially valid data is rejected as a
// whole; there is no field-by-field repair. The stored prestige multiplier
// is never trusted and is recomputed from prestige points.
func Decode(data []byte) (State, error) {
	var st State

	// Unmarshal rejects anything after the first value, so a corrupt tail
	// fails the whole snapshot.
	err := json.Unmarshal(data, &st)
	if err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrMalformedState, err)
	}

	err = validate(st)
	if err != nil {
		return State{}, err
	}

	if !Compatible(st.Version) {
		return State{}, fmt.Errorf("%w: %q (current %q)", ErrIncompatibleSchema, st.Version, CurrentVersion)
	}

	if st.Upgrades == nil {
		st.Upgrades = map[string]int{}
	}

	if st.Businesses == nil {
		st.Businesses = map[string]int{}
	}

	if st.Achievements == nil {
		st.Achievements = []string{}
	}

	st.PrestigeMultiplier = PrestigeMultiplierFor(st.PrestigePoints)
	st.Version = CurrentVersion

	return st, nil
}

func validate(st State) error {
	switch {
	case !finiteNonNegative(st.Balance):
		return fmt.Errorf("%w: balance %v", ErrMalformedState, st.Balance)
	case !finiteNonNegative(st.TotalEarned):
		return fmt.Errorf("%w: totalEarned %v", ErrMalformedState, st.TotalEarned)
	case st.PrestigePoints < 0:
		return fmt.Errorf("%w: prestigePoints %d", ErrMalformedState, st.PrestigePoints)
	}

	for id, n := range st.Upgrades {
		if n < 0 {
			return fmt.Errorf("%w: upgrade %q count %d", ErrMalformedState, id, n)
		}
	}

	for id, n := range st.Businesses {
		if n < 0 {
			return fmt.Errorf("%w: business %q count %d", ErrMalformedState, id, n)
		}
	}

	return nil
}

func finiteNonNegative(f float64) bool {
	return f >= 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Compatible reports whether a snapshot written under version v can be
// loaded: the major component must match CurrentVersion. An empty version
// predates tagging and is accepted.
func Compatible(v string) bool {
	if v == "" {
		return true
	}

	return major(v) == major(CurrentVersion)
}

func major(v string) string {
	head, _, _ := strings.Cut(strings.TrimPrefix(v, "v"), ".")
	return head
}
