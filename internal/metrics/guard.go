package metrics

import (
	"math"

	"github.com/trogers1052/dividend-dashboard/internal/models"
)

// MonthsPerYear annualizes per-period dividends, which are assumed monthly
const MonthsPerYear = 12

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

func nonNegative(x float64) float64 {
	x = finite(x)
	if x < 0 {
		return 0
	}
	return x
}

// percentOf returns value/base*100, or 0 when base is not positive
func percentOf(value, base float64) float64 {
	if !(base > 0) {
		return 0
	}
	return finite(value / base * 100)
}

func trendOf(totalReturn float64) string {
	if totalReturn < 0 {
		return models.TrendNegative
	}
	return models.TrendPositive
}
