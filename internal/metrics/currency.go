// Package metrics derives the CAD-normalized, yield-adjusted figures shown on the
// dashboard from raw positions, cash balances and live quotes. Every function in
// this package is pure and total: bad numerics become 0 and guarded ratios never
// produce NaN or Inf.
package metrics

import (
	"math"
	"strings"

	"github.com/trogers1052/dividend-dashboard/internal/models"
)

// DefaultUSDToCAD is used whenever a live USD->CAD rate is unavailable or not sane
const DefaultUSDToCAD = 1.35

// Convert expresses amount in CAD. USD amounts, in any letter case, are
// multiplied by rate; CAD and unrecognised currencies are returned unchanged.
func Convert(amount float64, currency models.Currency, rate float64) float64 {
	if ParseCurrency(string(currency)) == models.CurrencyUSD {
		return amount * rate
	}
	return amount
}

// ParseCurrency maps a currency code to a supported currency. Anything that is
// not USD is reported as CAD.
func ParseCurrency(code string) models.Currency {
	if strings.EqualFold(strings.TrimSpace(code), string(models.CurrencyUSD)) {
		return models.CurrencyUSD
	}
	return models.CurrencyCAD
}

// NormalizeRate returns rate if it is a positive finite number, DefaultUSDToCAD otherwise
func NormalizeRate(rate float64) float64 {
	if rate > 0 && !math.IsInf(rate, 0) {
		return rate
	}
	return DefaultUSDToCAD
}
