package models

import (
	"strings"
	"time"
)

// Currency is the denomination of a raw monetary amount
type Currency string

// Supported currencies. CAD is the reporting currency.
const (
	CurrencyCAD Currency = "CAD"
	CurrencyUSD Currency = "USD"
)

// CurrencyCode trims and upper-cases a currency code as read from a feed or table
func CurrencyCode(code string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(code)))
}

// Trend constants drive the dot/arrow colouring of a holding
const (
	TrendPositive = "positive"
	TrendNegative = "negative"
)

// SourceAccount is one account's share of an aggregated position
type SourceAccount struct {
	AccountID         string  `json:"account_id"`
	AccountType       string  `json:"account_type,omitempty"`
	Person            string  `json:"person,omitempty"`
	Shares            float64 `json:"shares"`
	AverageEntryPrice float64 `json:"average_entry_price"`
}

// RawPosition is a holding as returned by the portfolio API, in its native currency.
// DividendPerShare is the per-period (monthly) distribution.
type RawPosition struct {
	Symbol                 string          `json:"symbol"`
	Currency               Currency        `json:"currency"`
	OpenQuantity           float64         `json:"open_quantity"`
	AverageEntryPrice      float64         `json:"average_entry_price"`
	CurrentPrice           float64         `json:"current_price"`
	OpenPrice              float64         `json:"open_price"`
	DividendPerShare       float64         `json:"dividend_per_share"`
	TotalDividendsReceived float64         `json:"total_dividends_received"`
	CompanyName            string          `json:"company_name,omitempty"`
	AccountID              string          `json:"account_id,omitempty"`
	AccountType            string          `json:"account_type,omitempty"`
	Person                 string          `json:"person,omitempty"`
	SourceAccounts         []SourceAccount `json:"source_accounts,omitempty"`
	IsAggregated           bool            `json:"is_aggregated,omitempty"`
	AccountCount           int             `json:"account_count,omitempty"`
}

// NormalizedPosition is a RawPosition with every monetary field in CAD plus the
// derived ratios shown in the holdings table. Percentages are in percent units.
type NormalizedPosition struct {
	Symbol         string          `json:"symbol"`
	Currency       Currency        `json:"currency"`
	CompanyName    string          `json:"company_name,omitempty"`
	AccountID      string          `json:"account_id,omitempty"`
	AccountType    string          `json:"account_type,omitempty"`
	Person         string          `json:"person,omitempty"`
	SourceAccounts []SourceAccount `json:"source_accounts,omitempty"`
	IsAggregated   bool            `json:"is_aggregated,omitempty"`
	AccountCount   int             `json:"account_count,omitempty"`

	Shares           float64 `json:"shares"`
	AvgCost          float64 `json:"avg_cost"`
	CurrentPrice     float64 `json:"current_price"`
	OpenPrice        float64 `json:"open_price"`
	DivPerShare      float64 `json:"div_per_share"`
	TotalDivReceived float64 `json:"total_div_received"`

	TodayChangeValue   float64 `json:"today_change_value"`
	TodayChangePercent float64 `json:"today_change_percent"`

	AnnualDividend  float64 `json:"annual_dividend"`
	MonthlyDividend float64 `json:"monthly_dividend"`
	CurrentYield    float64 `json:"current_yield"`
	MonthlyYield    float64 `json:"monthly_yield"`
	YieldOnCost     float64 `json:"yield_on_cost"`

	InvestmentValue      float64 `json:"investment_value"`
	MarketValue          float64 `json:"market_value"`
	UnrealizedPnL        float64 `json:"unrealized_pnl"`
	UnrealizedPnLPercent float64 `json:"unrealized_pnl_percent"`
	TotalReturnValue     float64 `json:"total_return_value"`
	TotalReturnPercent   float64 `json:"total_return_percent"`
	TodayReturnValue     float64 `json:"today_return_value"`
	TodayReturnPercent   float64 `json:"today_return_percent"`

	DivAdjCost  float64 `json:"div_adj_cost"`
	DivAdjYield float64 `json:"div_adj_yield"`

	Trend      string    `json:"trend"`
	LastUpdate time.Time `json:"last_update"`
}

// PortfolioTotals holds the portfolio-wide figures, all in CAD
type PortfolioTotals struct {
	PositionCount          int     `json:"position_count"`
	TotalInvestment        float64 `json:"total_investment"`
	CurrentValue           float64 `json:"current_value"`
	UnrealizedPnL          float64 `json:"unrealized_pnl"`
	UnrealizedPnLPercent   float64 `json:"unrealized_pnl_percent"`
	TotalDividendsReceived float64 `json:"total_dividends_received"`
	TotalReturnValue       float64 `json:"total_return_value"`
	TotalReturnPercent     float64 `json:"total_return_percent"`
	TodayReturnValue       float64 `json:"today_return_value"`
	TodayReturnPercent     float64 `json:"today_return_percent"`
	MonthlyDividendIncome  float64 `json:"monthly_dividend_income"`
	AnnualDividendIncome   float64 `json:"annual_dividend_income"`
	WeightedYieldOnCost    float64 `json:"weighted_yield_on_cost"`
	WeightedCurrentYield   float64 `json:"weighted_current_yield"`
}
