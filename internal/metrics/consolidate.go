package metrics

import (
	"sort"
	"strings"

	"github.com/trogers1052/dividend-dashboard/internal/models"
)

// Consolidate merges positions in the same symbol and currency held across
// accounts into a single aggregated position for the "all accounts" view.
// Shares and dividends received are summed, the average entry price is
// weighted by shares, and prices and dividend rate come from the first record.
// The result is ordered by symbol.
func Consolidate(raws []models.RawPosition) []models.RawPosition {
	type key struct {
		symbol   string
		currency models.Currency
	}
	merged := make(map[key]*models.RawPosition)
	costs := make(map[key]float64)
	order := make([]key, 0, len(raws))

	for _, raw := range raws {
		k := key{strings.ToUpper(raw.Symbol), ParseCurrency(string(raw.Currency))}
		shares := nonNegative(raw.OpenQuantity)

		m, ok := merged[k]
		if !ok {
			first := raw
			first.OpenQuantity = 0
			first.TotalDividendsReceived = 0
			first.SourceAccounts = nil
			first.AccountID = ""
			first.AccountType = ""
			first.Person = ""
			m = &first
			merged[k] = m
			order = append(order, k)
		}

		m.OpenQuantity += shares
		m.TotalDividendsReceived += finite(raw.TotalDividendsReceived)
		costs[k] += finite(raw.AverageEntryPrice) * shares

		if len(raw.SourceAccounts) > 0 {
			m.SourceAccounts = append(m.SourceAccounts, raw.SourceAccounts...)
		} else {
			m.SourceAccounts = append(m.SourceAccounts, models.SourceAccount{
				AccountID:         raw.AccountID,
				AccountType:       raw.AccountType,
				Person:            raw.Person,
				Shares:            shares,
				AverageEntryPrice: finite(raw.AverageEntryPrice),
			})
		}
	}

	out := make([]models.RawPosition, 0, len(order))
	for _, k := range order {
		m := merged[k]
		m.AverageEntryPrice = 0
		if m.OpenQuantity > 0 {
			m.AverageEntryPrice = costs[k] / m.OpenQuantity
		}
		m.IsAggregated = true
		m.AccountCount = countAccounts(m.SourceAccounts)
		out = append(out, *m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToUpper(out[i].Symbol) < strings.ToUpper(out[j].Symbol)
	})
	return out
}

func countAccounts(accounts []models.SourceAccount) int {
	seen := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		seen[a.AccountID] = struct{}{}
	}
	return len(seen)
}
