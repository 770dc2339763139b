package service

import (
	"math"
	"strings"
)

// amountMultipliers converts store units into Rial, the only unit IDPay accepts.
// Keys are lower-case aliases.
var amountMultipliers = buildAmountMultipliers(map[int64][]string{
	1: {"IRR", "RIAL"},
	10: {
		"IRT",
		"TOMAN",
		"تومان",
		"تومان ایران",
		"Iranian_TOMAN",
		"Iran_TOMAN",
		"Iranian-TOMAN",
		"Iran-TOMAN",
		"Iran TOMAN",
		"Iranian TOMAN",
	},
	10000: {"IRHT"},
	1000:  {"IRHR"},
})

func buildAmountMultipliers(groups map[int64][]string) map[string]int64 {
	table := make(map[string]int64)
	for multiplier, aliases := range groups {
		for _, alias := range aliases {
			table[strings.ToLower(alias)] = multiplier
		}
	}
	return table
}

// IsSupportedCurrency reports whether currency has a known Rial multiplier.
func IsSupportedCurrency(currency string) bool {
	_, ok := amountMultipliers[strings.ToLower(strings.TrimSpace(currency))]
	return ok
}

// SameCurrency reports whether a and b name the same unit, either literally or
// as aliases with the same Rial multiplier.
func SameCurrency(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return true
	}
	ma, okA := amountMultipliers[a]
	mb, okB := amountMultipliers[b]
	return okA && okB && ma == mb
}

// NormalizeAmount returns amount expressed in Rial. It returns 0 when currency
// is not recognized, when amount is not positive, or when the Rial amount does
// not fit in an int64.
func NormalizeAmount(amount int64, currency string) int64 {
	multiplier, ok := amountMultipliers[strings.ToLower(strings.TrimSpace(currency))]
	if !ok || amount <= 0 || amount > math.MaxInt64/multiplier {
		return 0
	}
	return amount * multiplier
}
