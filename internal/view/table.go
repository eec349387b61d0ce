// Package view holds the holdings table state: filter, sort and pagination.
package view

import (
	"math"
	"sort"
	"strings"

	"github.com/trogers1052/dividend-dashboard/internal/metrics"
	"github.com/trogers1052/dividend-dashboard/internal/models"
)

// Sort key constants
const (
	SortSymbol        = "symbol"
	SortMarketValue   = "marketValue"
	SortInvestment    = "investmentValue"
	SortYieldOnCost   = "yieldOnCost"
	SortCurrentYield  = "currentYield"
	SortUnrealizedPnL = "unrealizedPnL"
	SortTotalReturn   = "totalReturn"
	SortTodayChange   = "todayChange"
)

var sortValues = map[string]func(models.NormalizedPosition) float64{
	SortMarketValue:   func(p models.NormalizedPosition) float64 { return p.MarketValue },
	SortInvestment:    func(p models.NormalizedPosition) float64 { return p.InvestmentValue },
	SortYieldOnCost:   func(p models.NormalizedPosition) float64 { return p.YieldOnCost },
	SortCurrentYield:  func(p models.NormalizedPosition) float64 { return p.CurrentYield },
	SortUnrealizedPnL: func(p models.NormalizedPosition) float64 { return p.UnrealizedPnL },
	SortTotalReturn:   func(p models.NormalizedPosition) float64 { return p.TotalReturnValue },
	SortTodayChange:   func(p models.NormalizedPosition) float64 { return p.TodayChangePercent },
}

// Filter narrows the table. Empty fields match everything.
type Filter struct {
	Query       string // substring of symbol or company name
	Currency    string
	AccountType string
	Person      string
}

// Apply returns the matching positions in their original order
func (f Filter) Apply(positions []models.NormalizedPosition) []models.NormalizedPosition {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.NormalizedPosition, 0, len(positions))
	for _, p := range positions {
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Symbol), query) &&
			!strings.Contains(strings.ToLower(p.CompanyName), query) {
			continue
		}
		if f.Currency != "" && metrics.ParseCurrency(f.Currency) != metrics.ParseCurrency(string(p.Currency)) {
			continue
		}
		if f.AccountType != "" && !matchesAccount(p, f.AccountType, func(a models.SourceAccount) string { return a.AccountType }, p.AccountType) {
			continue
		}
		if f.Person != "" && !matchesAccount(p, f.Person, func(a models.SourceAccount) string { return a.Person }, p.Person) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// matchesAccount checks the position's own account field, or any source
// account of an aggregated position
func matchesAccount(p models.NormalizedPosition, want string, field func(models.SourceAccount) string, own string) bool {
	if strings.EqualFold(own, want) {
		return true
	}
	for _, a := range p.SourceAccounts {
		if strings.EqualFold(field(a), want) {
			return true
		}
	}
	return false
}

// Sort orders the table by one column
type Sort struct {
	Key  string
	Desc bool
}

// ParseSort builds a Sort from query values. Unknown keys sort by symbol.
func ParseSort(key, direction string) Sort {
	if _, ok := sortValues[key]; !ok {
		key = SortSymbol
	}
	return Sort{Key: key, Desc: strings.EqualFold(direction, "desc")}
}

// Apply returns a sorted copy. Ties keep their original order.
func (s Sort) Apply(positions []models.NormalizedPosition) []models.NormalizedPosition {
	out := append([]models.NormalizedPosition(nil), positions...)
	value, byValue := sortValues[s.Key]

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if s.Desc {
			a, b = b, a
		}
		if !byValue {
			return strings.ToUpper(a.Symbol) < strings.ToUpper(b.Symbol)
		}
		return value(a) < value(b)
	})
	return out
}

// PageRequest holds pagination parameters
type PageRequest struct {
	Page     int
	PageSize int
}

// Defaults fills in and clamps page and page size
func (p *PageRequest) Defaults() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

// Offset returns the index of the first item on the page. Pages too far out
// to index saturate at math.MaxInt instead of overflowing.
func (p *PageRequest) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// PageResponse wraps a page of items with metadata
type PageResponse[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Paginate slices items to the requested page
func Paginate[T any](items []T, req PageRequest) PageResponse[T] {
	req.Defaults()

	start := req.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + req.PageSize
	if end > len(items) || end < start {
		end = len(items)
	}

	data := make([]T, end-start)
	copy(data, items[start:end])

	return PageResponse[T]{
		Data:       data,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalItems: len(items),
		TotalPages: int(math.Ceil(float64(len(items)) / float64(req.PageSize))),
	}
}

// TableState is the full state of the holdings table
type TableState struct {
	Filter Filter
	Sort   Sort
	Page   PageRequest
}

// Apply filters, sorts and paginates positions
func (s TableState) Apply(positions []models.NormalizedPosition) PageResponse[models.NormalizedPosition] {
	return Paginate(s.Sort.Apply(s.Filter.Apply(positions)), s.Page)
}
