// Package money formats and parses naira amounts the way the activities
// display them.
package money

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Symbol prefixes every displayed amount.
const Symbol = "₦"

// maxFractionDigits mirrors the precision learners see for fractional prices.
const maxFractionDigits = 3

// Group renders n with thousands separators and at most three fractional
// digits, e.g. 45000 -> "45,000", 1500.5 -> "1,500.5".
func Group(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		n = 0
	}
	if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
		return humanize.Comma(int64(n))
	}
	return humanize.CommafWithDigits(n, maxFractionDigits)
}

// Naira renders an amount with the currency glyph, e.g. "₦45,000".
func Naira(n float64) string {
	return Symbol + Group(n)
}

// Parse reads free-form price input by discarding everything except digits
// and decimal points. Empty or unparseable input yields 0.
func Parse(input string) float64 {
	if input == "" {
		return 0
	}
	var b strings.Builder
	for _, r := range input {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// Plain renders n without grouping, as typed into an input field.
func Plain(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
