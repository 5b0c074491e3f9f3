// Package format renders amounts and durations for the UI.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ShortScale is where amounts switch from grouped digits to suffixes.
const ShortScale = 1e6

var suffixes = []string{"", "K", "M", "B", "T", "Q", "Qi", "Sx", "Sp", "Oc", "No", "Dc"}

// Currency formats a dollar amount. Below ShortScale it is grouped with two
// decimals ("$1,234.50"); above it the value is reduced to a suffix with four
// significant digits and at most two decimals ("$1.5M", "$123.5B"). Amounts
// past the suffix table use exponent notation.
func Currency(amount float64) string {
	switch {
	case math.IsNaN(amount):
		return "$0.00"
	case math.IsInf(amount, 1):
		return "$∞"
	case amount < 0:
		return "-" + Currency(-amount)
	case amount < ShortScale:
		return "$" + humanize.FormatFloat("#,###.##", amount)
	}

	digits := len(strconv.FormatFloat(math.Floor(amount), 'f', 0, 64))
	idx := (digits - 1) / 3
	if idx >= len(suffixes) {
		return "$" + strconv.FormatFloat(amount, 'e', 2, 64)
	}

	short := amount / math.Pow(1000, float64(idx))
	short, _ = strconv.ParseFloat(strconv.FormatFloat(short, 'g', 4, 64), 64)
	if short != math.Trunc(short) {
		short = math.Round(short*100) / 100
	}

	return "$" + strconv.FormatFloat(short, 'f', -1, 64) + suffixes[idx]
}

// Rate formats an income rate: "$12.50/sec".
func Rate(perSecond float64) string {
	return Currency(perSecond) + "/sec"
}

// Duration formats d as "1h 2m 3s", omitting zero hours and minutes.
// Sub-second precision is dropped.
func Duration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	total := int64(d / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60

	var b strings.Builder
	if h > 0 {
		b.WriteString(strconv.FormatInt(h, 10) + "h ")
	}

	if m > 0 {
		b.WriteString(strconv.FormatInt(m, 10) + "m ")
	}

	b.WriteString(strconv.FormatInt(s, 10) + "s")

	return b.String()
}
