package metrics

import (
	"math"
	"time"

	"github.com/trogers1052/dividend-dashboard/internal/models"
)

// QuoteEpsilon is the smallest CAD price move that ApplyQuote treats as a change
const QuoteEpsilon = 0.001

// ApplyQuote returns p repriced at quote. Only price-dependent fields are
// recomputed; cost basis, yield on cost and dividend-adjusted figures are kept.
// The input is returned unchanged when the quote has no usable price or moves
// the CAD price by less than QuoteEpsilon. The caller routes quotes by symbol.
func ApplyQuote(p models.NormalizedPosition, quote models.Quote, rate float64) models.NormalizedPosition {
	if !(quote.Price > 0) || math.IsInf(quote.Price, 0) {
		return p
	}

	price := finite(Convert(quote.Price, p.Currency, NormalizeRate(rate)))
	if !(price > 0) || math.Abs(price-p.CurrentPrice) < QuoteEpsilon {
		return p
	}

	next := p
	applyPrice(&next, price)

	next.LastUpdate = quote.ReceivedAt
	if next.LastUpdate.IsZero() {
		next.LastUpdate = time.Now()
	}
	return next
}
