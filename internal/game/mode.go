package game

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownMode = errors.New("unknown time mode")

// TimeMode is the player-selected global modifier. Any mode may follow any other.
type TimeMode string

const (
	ModeNormal TimeMode = "normal"
	ModeFast   TimeMode = "fast"
	ModeSlow   TimeMode = "slow"
	ModeFreeze TimeMode = "freeze"
)

// Modes lists every mode in display order.
var Modes = []TimeMode{ModeNormal, ModeFast, ModeSlow, ModeFreeze}

func ParseTimeMode(s string) (TimeMode, error) {
	m := TimeMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeNormal, ModeFast, ModeSlow, ModeFreeze:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// ModeMultiplier is the passive income factor for a mode. Freeze suspends
// passive accrual entirely.
func ModeMultiplier(m TimeMode) float64 {
	switch m {
	case ModeFast:
		return 2.0
	case ModeSlow:
		return 0.5
	case ModeFreeze:
		return 0.0
	default:
		return 1.0
	}
}
