package view

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/dividend-dashboard/internal/models"
)

func tablePositions() []models.NormalizedPosition {
	return []models.NormalizedPosition{
		{Symbol: "ZWC.TO", CompanyName: "BMO Canadian High Dividend Covered Call", Currency: models.CurrencyCAD, AccountType: "TFSA", Person: "A", MarketValue: 900, YieldOnCost: 7},
		{Symbol: "JEPI", CompanyName: "JPMorgan Equity Premium Income", Currency: models.CurrencyUSD, AccountType: "RRSP", Person: "B", MarketValue: 1500, YieldOnCost: 8},
		{Symbol: "HYLD.TO", CompanyName: "Hamilton Enhanced U.S. Covered Call", Currency: models.CurrencyCAD, IsAggregated: true,
			SourceAccounts: []models.SourceAccount{{AccountType: "FHSA", Person: "A"}, {AccountType: "TFSA", Person: "B"}},
			MarketValue: 5365, YieldOnCost: 9.77},
		{Symbol: "ENB.TO", CompanyName: "Enbridge", Currency: models.CurrencyCAD, AccountType: "Cash", Person: "A", MarketValue: 900, YieldOnCost: 6},
	}
}

func symbols(positions []models.NormalizedPosition) []string {
	out := make([]string, len(positions))
	for i, p := range positions {
		out[i] = p.Symbol
	}
	return out
}

func TestFilter_Apply(t *testing.T) {
	positions := tablePositions()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty filter keeps all", Filter{}, []string{"ZWC.TO", "JEPI", "HYLD.TO", "ENB.TO"}},
		{"symbol query", Filter{Query: "jep"}, []string{"JEPI"}},
		{"company query", Filter{Query: "covered call"}, []string{"ZWC.TO", "HYLD.TO"}},
		{"currency", Filter{Currency: "usd"}, []string{"JEPI"}},
		{"account type matches source accounts", Filter{AccountType: "tfsa"}, []string{"ZWC.TO", "HYLD.TO"}},
		{"person", Filter{Person: "B"}, []string{"JEPI", "HYLD.TO"}},
		{"combined", Filter{Person: "A", Query: ".TO", AccountType: "Cash"}, []string{"ENB.TO"}},
		{"no match", Filter{Query: "MSFT"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, symbols(tt.filter.Apply(positions)))
		})
	}
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, Sort{Key: SortMarketValue, Desc: true}, ParseSort("marketValue", "DESC"))
	assert.Equal(t, Sort{Key: SortYieldOnCost}, ParseSort("yieldOnCost", "asc"))
	assert.Equal(t, Sort{Key: SortSymbol}, ParseSort("dropTable", ""))
}

func TestSort_Apply(t *testing.T) {
	positions := tablePositions()

	assert.Equal(t, []string{"ENB.TO", "HYLD.TO", "JEPI", "ZWC.TO"}, symbols(ParseSort("symbol", "").Apply(positions)))
	assert.Equal(t, []string{"ZWC.TO", "JEPI", "HYLD.TO", "ENB.TO"}, symbols(positions), "input is not reordered")

	// equal market values keep their original order in both directions
	assert.Equal(t, []string{"ZWC.TO", "ENB.TO", "JEPI", "HYLD.TO"}, symbols(ParseSort("marketValue", "asc").Apply(positions)))
	assert.Equal(t, []string{"HYLD.TO", "JEPI", "ZWC.TO", "ENB.TO"}, symbols(ParseSort("marketValue", "desc").Apply(positions)))
	assert.Equal(t, []string{"HYLD.TO", "JEPI", "ZWC.TO", "ENB.TO"}, symbols(ParseSort("yieldOnCost", "desc").Apply(positions)))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	page := Paginate(items, PageRequest{Page: 2, PageSize: 3})
	assert.Equal(t, []int{4, 5, 6}, page.Data)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 7, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)

	last := Paginate(items, PageRequest{Page: 3, PageSize: 3})
	assert.Equal(t, []int{7}, last.Data)

	beyond := Paginate(items, PageRequest{Page: 9, PageSize: 3})
	assert.Empty(t, beyond.Data)
	assert.NotNil(t, beyond.Data)
}

func TestPaginate_hugePageIsEmptyNotPanic(t *testing.T) {
	items := []int{1, 2, 3}

	for _, page := range []int{1 << 62, math.MaxInt, math.MaxInt/100 + 2} {
		res := Paginate(items, PageRequest{Page: page, PageSize: 100})
		assert.Empty(t, res.Data)
		assert.Equal(t, page, res.Page)
		assert.Equal(t, 3, res.TotalItems)
	}

	req := PageRequest{Page: math.MaxInt, PageSize: 2}
	assert.Equal(t, math.MaxInt, req.Offset())
}

func TestPageRequest_Defaults(t *testing.T) {
	req := PageRequest{}
	req.Defaults()
	assert.Equal(t, PageRequest{Page: 1, PageSize: 20}, req)

	req = PageRequest{Page: -2, PageSize: 1000}
	req.Defaults()
	assert.Equal(t, PageRequest{Page: 1, PageSize: 100}, req)
	assert.Equal(t, 0, req.Offset())
}

func TestTableState_Apply(t *testing.T) {
	state := TableState{
		Filter: Filter{Currency: "CAD"},
		Sort:   ParseSort("marketValue", "desc"),
		Page:   PageRequest{Page: 1, PageSize: 2},
	}
	page := state.Apply(tablePositions())

	require.Len(t, page.Data, 2)
	assert.Equal(t, []string{"HYLD.TO", "ZWC.TO"}, symbols(page.Data))
	assert.Equal(t, 3, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
}
