// Package core holds the dashboard's domain types and the pure aggregation
// logic behind the widgets: time range resolution, the weekly streak
// calendar and monthly totals.
package core

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseDecimalToCents converts a decimal string to cents.
//
// Both dot (12.34) and comma (12,34) separators are accepted, and a leading
// sign is allowed so refunds and corrections survive the round trip. The
// third decimal is rounded half away from zero.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,345") -> 1235, nil
//	ParseDecimalToCents("-5.2")   -> -520, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	// ASCII only: the fraction is read byte by byte below
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// iv*100 plus two fractional digits must fit in an int64
	const maxUnits = (1<<63 - 1 - 99) / 100
	if iv > maxUnits {
		return 0, ErrInvalidAmount
	}

	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
		}
		if len(fracPart) > 2 && fracPart[2] >= '5' {
			fracCents++
		}
	}

	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return cents, nil
}

// Aggregate sums the amounts of transactions of the given type and rounds the
// total up to the next whole unit. The ceiling applies to negative totals too:
// -15.20 becomes -15.00.
func Aggregate(txs []Transaction, typ TxType) Money {
	var total int64
	for _, tx := range txs {
		if tx.Type != typ {
			continue
		}
		total += tx.Amount.Cents
	}
	return Money{Cents: ceilUnits(total) * 100}
}

// ceilUnits rounds cents up to whole units. Integer division truncates toward
// zero, which already is the ceiling for negative values.
func ceilUnits(cents int64) int64 {
	units := cents / 100
	if cents%100 > 0 {
		units++
	}
	return units
}

// FormatAmount renders money with two decimals and a dot separator, e.g. "16.00".
func FormatAmount(m Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	frac := strconv.FormatInt(cents%100, 10)
	if len(frac) < 2 {
		frac = "0" + frac
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + frac
}

// Units returns the amount as a float for display and JSON only.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}
