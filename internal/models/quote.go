package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a resolved live price for a symbol, in the symbol's native currency
type Quote struct {
	Symbol     string    `json:"symbol"`
	Price      float64   `json:"price"`
	ReceivedAt time.Time `json:"received_at"`
}

// QuoteEvent is a quote as delivered by the stream or the quotes topic.
// Feeds send either price or lastTradePrice, as a number or a string.
type QuoteEvent struct {
	Symbol         string              `json:"symbol"`
	Price          decimal.NullDecimal `json:"price"`
	LastTradePrice decimal.NullDecimal `json:"lastTradePrice"`
	Timestamp      string              `json:"timestamp,omitempty"`
}

// Resolve returns the quote carried by the event. ok is false when the event
// has no symbol or no positive price.
func (e QuoteEvent) Resolve(now time.Time) (Quote, bool) {
	symbol := strings.TrimSpace(e.Symbol)
	if symbol == "" {
		return Quote{}, false
	}

	var price decimal.Decimal
	switch {
	case e.Price.Valid && e.Price.Decimal.IsPositive():
		price = e.Price.Decimal
	case e.LastTradePrice.Valid && e.LastTradePrice.Decimal.IsPositive():
		price = e.LastTradePrice.Decimal
	default:
		return Quote{}, false
	}

	receivedAt := now
	if e.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
			receivedAt = ts
		}
	}

	return Quote{
		Symbol:     symbol,
		Price:      price.InexactFloat64(),
		ReceivedAt: receivedAt,
	}, true
}

// QuoteBatch is the envelope used by the streaming endpoint
type QuoteBatch struct {
	Quotes []QuoteEvent `json:"quotes"`
}
