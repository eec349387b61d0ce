package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventPositionsSnapshot = "POSITIONS_SNAPSHOT"
	EventPortfolioUpdated  = "PORTFOLIO_UPDATED"
)

// PositionsEvent represents a Kafka message with a full positions snapshot from the portfolio API
type PositionsEvent struct {
	EventType string             `json:"event_type"`
	Source    string             `json:"source"`
	Timestamp string             `json:"timestamp"`
	Data      PositionsEventData `json:"data"`
}

// PositionsEventData contains the positions, cash balances and the rate the snapshot was taken at
type PositionsEventData struct {
	Positions    []PositionData `json:"positions"`
	Cash         []CashData     `json:"cash"`
	ExchangeRate string         `json:"exchange_rate"`
}

// PositionData represents a single position. Numerics arrive as strings.
type PositionData struct {
	Symbol                 string `json:"symbol"`
	Currency               string `json:"currency"`
	OpenQuantity           string `json:"open_quantity"`
	AverageEntryPrice      string `json:"average_entry_price"`
	CurrentPrice           string `json:"current_price"`
	OpenPrice              string `json:"open_price"`
	DividendPerShare       string `json:"dividend_per_share"`
	TotalDividendsReceived string `json:"total_dividends_received"`
	CompanyName            string `json:"company_name"`
	AccountID              string `json:"account_id"`
	AccountType            string `json:"account_type"`
	Person                 string `json:"person"`
}

// CashData represents one account's cash balance
type CashData struct {
	AccountID   string `json:"account_id"`
	Person      string `json:"person"`
	AccountType string `json:"account_type"`
	Balance     string `json:"balance"`
	Currency    string `json:"currency"`
}

// ToRawPosition converts the wire record, treating malformed numerics as 0
func (p PositionData) ToRawPosition() RawPosition {
	return RawPosition{
		Symbol:                 strings.TrimSpace(p.Symbol),
		Currency:               CurrencyCode(p.Currency),
		OpenQuantity:           ParseNumber(p.OpenQuantity),
		AverageEntryPrice:      ParseNumber(p.AverageEntryPrice),
		CurrentPrice:           ParseNumber(p.CurrentPrice),
		OpenPrice:              ParseNumber(p.OpenPrice),
		DividendPerShare:       ParseNumber(p.DividendPerShare),
		TotalDividendsReceived: ParseNumber(p.TotalDividendsReceived),
		CompanyName:            p.CompanyName,
		AccountID:              p.AccountID,
		AccountType:            p.AccountType,
		Person:                 p.Person,
	}
}

// ToCashAccount converts the wire record, treating a malformed balance as 0
func (c CashData) ToCashAccount() CashAccount {
	return CashAccount{
		AccountID:   c.AccountID,
		Person:      c.Person,
		AccountType: c.AccountType,
		Balance:     ParseNumber(c.Balance),
		Currency:    CurrencyCode(c.Currency),
	}
}

// PortfolioEvent is published after every effective recompute of the portfolio
type PortfolioEvent struct {
	EventType string          `json:"event_type"`
	Totals    PortfolioTotals `json:"totals"`
	CashInCAD float64         `json:"cash_in_cad"`
	Rate      float64         `json:"rate"`
	UpdatedAt time.Time       `json:"updated_at"`
	Timestamp time.Time       `json:"timestamp"`
}

// ParseNumber parses a decimal string, returning 0 for empty or malformed input
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}
