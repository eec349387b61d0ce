package metrics

import (
	"github.com/trogers1052/dividend-dashboard/internal/models"
)

// Normalize converts a raw position to CAD at rate and computes every derived
// field of the holdings table. Negative or non-finite share counts are treated as 0.
func Normalize(raw models.RawPosition, rate float64) models.NormalizedPosition {
	rate = NormalizeRate(rate)
	shares := nonNegative(raw.OpenQuantity)

	currency := ParseCurrency(string(raw.Currency))
	avgCost := finite(Convert(finite(raw.AverageEntryPrice), currency, rate))
	current := finite(Convert(finite(raw.CurrentPrice), currency, rate))
	open := finite(Convert(finite(raw.OpenPrice), currency, rate))
	perShare := finite(Convert(finite(raw.DividendPerShare), currency, rate))
	received := finite(Convert(finite(raw.TotalDividendsReceived), currency, rate))

	annualDividend := finite(perShare * MonthsPerYear)
	investment := finite(avgCost * shares)
	divAdjCost := DividendAdjustedCost(avgCost, received, shares)

	p := models.NormalizedPosition{
		Symbol:         raw.Symbol,
		Currency:       currency,
		CompanyName:    raw.CompanyName,
		AccountID:      raw.AccountID,
		AccountType:    raw.AccountType,
		Person:         raw.Person,
		SourceAccounts: raw.SourceAccounts,
		IsAggregated:   raw.IsAggregated,
		AccountCount:   raw.AccountCount,

		Shares:           shares,
		AvgCost:          avgCost,
		OpenPrice:        open,
		DivPerShare:      perShare,
		TotalDivReceived: received,

		AnnualDividend:  annualDividend,
		MonthlyDividend: finite(perShare * shares),
		YieldOnCost:     percentOf(annualDividend, avgCost),
		InvestmentValue: investment,

		DivAdjCost:  divAdjCost,
		DivAdjYield: percentOf(annualDividend, divAdjCost),
	}
	applyPrice(&p, current)
	return p
}

// NormalizeAll normalizes a batch, preserving order
func NormalizeAll(raws []models.RawPosition, rate float64) []models.NormalizedPosition {
	out := make([]models.NormalizedPosition, len(raws))
	for i, raw := range raws {
		out[i] = Normalize(raw, rate)
	}
	return out
}

// DividendAdjustedCost is the average cost less dividends received per share,
// clamped at 0. With no shares the average cost is returned unchanged.
func DividendAdjustedCost(avgCost, dividendsReceived, shares float64) float64 {
	if !(shares > 0) {
		return avgCost
	}
	adj := avgCost - dividendsReceived/shares
	if adj < 0 {
		return 0
	}
	return finite(adj)
}

// applyPrice sets the current price and every field that depends on it.
// Shares, average cost, open price, dividends and investment value must already be set.
func applyPrice(p *models.NormalizedPosition, price float64) {
	p.CurrentPrice = price
	p.TodayChangeValue = finite(price - p.OpenPrice)
	p.TodayChangePercent = percentOf(p.TodayChangeValue, p.OpenPrice)

	p.CurrentYield = percentOf(p.AnnualDividend, price)
	p.MonthlyYield = p.CurrentYield / MonthsPerYear

	p.MarketValue = finite(price * p.Shares)
	p.UnrealizedPnL = finite(p.MarketValue - p.InvestmentValue)
	p.UnrealizedPnLPercent = percentOf(p.UnrealizedPnL, p.InvestmentValue)
	p.TotalReturnValue = finite(p.UnrealizedPnL + p.TotalDivReceived)
	p.TotalReturnPercent = percentOf(p.TotalReturnValue, p.InvestmentValue)

	p.TodayReturnValue = finite(p.TodayChangeValue * p.Shares)
	p.TodayReturnPercent = percentOf(p.TodayReturnValue, p.InvestmentValue)

	p.Trend = trendOf(p.TotalReturnValue)
}
