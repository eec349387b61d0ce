package metrics

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/trogers1052/dividend-dashboard/internal/models"
)

// FormatMoney renders amount with the currency's symbol and grouping, e.g. "$5,000.00"
func FormatMoney(amount float64, currency models.Currency) string {
	code := string(ParseCurrency(string(currency)))
	// money.New never returns a nil currency, GetCurrency may
	cur := *money.New(0, code).Currency()
	minor := int64(math.Round(finite(amount) * math.Pow10(cur.Fraction)))
	return money.New(minor, code).Display()
}

// FormatPercent renders p as "8.94%"
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", finite(p))
}

// FormatSignedPercent renders p as "+1.67%" or "-0.42%"; zero renders as "-"
func FormatSignedPercent(p float64) string {
	res := fmt.Sprintf("%+.2f%%", finite(p))
	if res == "+0.00%" || res == "-0.00%" {
		return "-"
	}
	return res
}
