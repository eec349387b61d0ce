package metrics

import (
	"sort"

	"github.com/trogers1052/dividend-dashboard/internal/models"
)

// Aggregate folds normalized positions into portfolio totals. Yield on cost is
// weighted by investment value and current yield by market value.
func Aggregate(positions []models.NormalizedPosition) models.PortfolioTotals {
	var t models.PortfolioTotals
	var yocWeighted, yieldWeighted float64

	for _, p := range positions {
		t.TotalInvestment += p.InvestmentValue
		t.CurrentValue += p.MarketValue
		t.TotalDividendsReceived += p.TotalDivReceived
		t.TodayReturnValue += p.TodayReturnValue
		t.MonthlyDividendIncome += p.MonthlyDividend

		yocWeighted += p.YieldOnCost * p.InvestmentValue
		yieldWeighted += p.CurrentYield * p.MarketValue
	}

	t.TotalInvestment = finite(t.TotalInvestment)
	t.CurrentValue = finite(t.CurrentValue)
	t.TotalDividendsReceived = finite(t.TotalDividendsReceived)
	t.TodayReturnValue = finite(t.TodayReturnValue)
	t.MonthlyDividendIncome = finite(t.MonthlyDividendIncome)

	t.PositionCount = len(positions)
	t.UnrealizedPnL = finite(t.CurrentValue - t.TotalInvestment)
	t.UnrealizedPnLPercent = percentOf(t.UnrealizedPnL, t.TotalInvestment)
	t.TotalReturnValue = finite(t.UnrealizedPnL + t.TotalDividendsReceived)
	t.TotalReturnPercent = percentOf(t.TotalReturnValue, t.TotalInvestment)
	t.TodayReturnPercent = percentOf(t.TodayReturnValue, t.TotalInvestment)
	t.AnnualDividendIncome = finite(t.MonthlyDividendIncome * MonthsPerYear)
	t.WeightedYieldOnCost = weightedAverage(yocWeighted, t.TotalInvestment)
	t.WeightedCurrentYield = weightedAverage(yieldWeighted, t.CurrentValue)

	return t
}

func weightedAverage(weightedSum, totalWeight float64) float64 {
	if !(totalWeight > 0) {
		return 0
	}
	return finite(weightedSum / totalWeight)
}

// AggregateCash groups cash balances by person and then by account type.
// USD subtotals are converted at rate. People and their account types are
// ordered by name; breakdown lists drop empty groups and are ordered by
// descending CAD-equivalent value. Sums run in that order, so equal input
// always gives bit-identical totals.
func AggregateCash(accounts []models.CashAccount, rate float64) models.CashBalanceSummary {
	rate = NormalizeRate(rate)

	type key struct{ person, accountType string }
	groups := make(map[key]*models.CashGroup)
	byType := make(map[string]*models.CashGroup)

	for _, a := range accounts {
		k := key{a.Person, a.AccountType}
		g, ok := groups[k]
		if !ok {
			g = &models.CashGroup{Person: a.Person, AccountType: a.AccountType}
			groups[k] = g
		}
		tg, ok := byType[a.AccountType]
		if !ok {
			tg = &models.CashGroup{AccountType: a.AccountType}
			byType[a.AccountType] = tg
		}

		balance := finite(a.Balance)
		if ParseCurrency(string(a.Currency)) == models.CurrencyUSD {
			g.TotalUSD += balance
			tg.TotalUSD += balance
		} else {
			g.TotalCAD += balance
			tg.TotalCAD += balance
		}
	}

	ordered := make([]*models.CashGroup, 0, len(groups))
	for _, g := range groups {
		g.TotalInCAD = finite(g.TotalCAD + Convert(g.TotalUSD, models.CurrencyUSD, rate))
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Person != ordered[j].Person {
			return ordered[i].Person < ordered[j].Person
		}
		return ordered[i].AccountType < ordered[j].AccountType
	})

	summary := models.CashBalanceSummary{
		People:        []models.PersonCash{},
		ByAccountType: []models.CashGroup{},
		Rate:          rate,
	}
	for _, g := range ordered {
		n := len(summary.People)
		if n == 0 || summary.People[n-1].Person != g.Person {
			summary.People = append(summary.People, models.PersonCash{Person: g.Person})
			n++
		}
		pc := &summary.People[n-1]
		pc.TotalCAD += g.TotalCAD
		pc.TotalUSD += g.TotalUSD
		pc.TotalInCAD += g.TotalInCAD
		pc.AccountTypes = append(pc.AccountTypes, *g)
	}

	for i := range summary.People {
		pc := &summary.People[i]
		pc.TotalCAD = finite(pc.TotalCAD)
		pc.TotalUSD = finite(pc.TotalUSD)
		pc.TotalInCAD = finite(pc.TotalInCAD)
		pc.Breakdown = breakdown(pc.AccountTypes)
		summary.TotalCAD += pc.TotalCAD
		summary.TotalUSD += pc.TotalUSD
	}
	summary.TotalCAD = finite(summary.TotalCAD)
	summary.TotalUSD = finite(summary.TotalUSD)
	summary.TotalInCAD = finite(summary.TotalCAD + Convert(summary.TotalUSD, models.CurrencyUSD, rate))

	all := make([]models.CashGroup, 0, len(byType))
	for _, tg := range byType {
		tg.TotalInCAD = finite(tg.TotalCAD + Convert(tg.TotalUSD, models.CurrencyUSD, rate))
		all = append(all, *tg)
	}
	summary.ByAccountType = breakdown(all)

	return summary
}

// breakdown returns the non-empty groups ordered by descending CAD value,
// ties broken by account type
func breakdown(groups []models.CashGroup) []models.CashGroup {
	out := make([]models.CashGroup, 0, len(groups))
	for _, g := range groups {
		if g.TotalCAD == 0 && g.TotalUSD == 0 {
			continue
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalInCAD != out[j].TotalInCAD {
			return out[i].TotalInCAD > out[j].TotalInCAD
		}
		return out[i].AccountType < out[j].AccountType
	})
	return out
}
