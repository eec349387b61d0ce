// Package portfolio owns the live, display-ready view of the portfolio.
//
// The Store keeps an immutable Snapshot behind an atomic pointer. Writers are
// serialized and always build a new Snapshot, recomputing totals from the full
// position set, then swap it in. Readers never lock and must not modify what
// they receive.
package portfolio

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/dividend-dashboard/internal/metrics"
	"github.com/trogers1052/dividend-dashboard/internal/models"
)

// Snapshot is one consistent state of the portfolio
type Snapshot struct {
	Positions []models.NormalizedPosition `json:"positions"`
	Totals    models.PortfolioTotals      `json:"totals"`
	Cash      models.CashBalanceSummary   `json:"cash"`
	Rate      float64                     `json:"rate"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// Options configures a Store
type Options struct {
	// ConsolidateAccounts merges the same holding across accounts on reload
	ConsolidateAccounts bool
	// OnChange is called, outside the write lock, after every effective update.
	// Calls are serialized and always receive the snapshot current at call
	// time, so the last call carries the latest state.
	OnChange func(*Snapshot)
}

// Store holds the current Snapshot
type Store struct {
	current atomic.Pointer[Snapshot]

	mu     sync.Mutex
	raws   []models.RawPosition
	cash   []models.CashAccount
	quotes map[string]models.Quote

	consolidate bool
	pubMu       sync.Mutex
	onChange    func(*Snapshot)
	log         zerolog.Logger
	now         func() time.Time
}

// NewStore creates an empty store at rate
func NewStore(rate float64, opts Options, log zerolog.Logger) *Store {
	s := &Store{
		quotes:      make(map[string]models.Quote),
		consolidate: opts.ConsolidateAccounts,
		onChange:    opts.OnChange,
		log:         log.With().Str("component", "portfolio_store").Logger(),
		now:         time.Now,
	}
	rate = metrics.NormalizeRate(rate)
	s.current.Store(&Snapshot{
		Positions: []models.NormalizedPosition{},
		Cash:      metrics.AggregateCash(nil, rate),
		Rate:      rate,
	})
	return s
}

// Snapshot returns the current state
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Rate returns the rate the current snapshot was computed at
func (s *Store) Rate() float64 {
	return s.current.Load().Rate
}

// Symbols returns the distinct symbols currently held
func (s *Store) Symbols() []string {
	snap := s.current.Load()
	seen := make(map[string]struct{}, len(snap.Positions))
	symbols := make([]string, 0, len(snap.Positions))
	for _, p := range snap.Positions {
		if _, ok := seen[p.Symbol]; ok {
			continue
		}
		seen[p.Symbol] = struct{}{}
		symbols = append(symbols, p.Symbol)
	}
	return symbols
}

// Reload replaces every position. Quotes received before the reload are discarded.
func (s *Store) Reload(raws []models.RawPosition, rate float64) {
	s.mu.Lock()
	rate = metrics.NormalizeRate(rate)
	s.raws = append([]models.RawPosition(nil), raws...)
	s.quotes = make(map[string]models.Quote)
	next := s.rebuild(rate)
	s.mu.Unlock()

	s.log.Info().Int("positions", len(next.Positions)).Float64("rate", rate).Msg("Positions reloaded")
	s.publish()
}

// SetRate re-normalizes the retained positions and cash at rate, keeping live prices
func (s *Store) SetRate(rate float64) {
	s.mu.Lock()
	rate = metrics.NormalizeRate(rate)
	if rate == s.current.Load().Rate {
		s.mu.Unlock()
		return
	}
	s.rebuild(rate)
	s.mu.Unlock()

	s.log.Info().Float64("rate", rate).Msg("Exchange rate updated")
	s.publish()
}

// SetCash replaces the cash balances
func (s *Store) SetCash(accounts []models.CashAccount) {
	s.mu.Lock()
	s.cash = append([]models.CashAccount(nil), accounts...)
	prev := s.current.Load()
	next := &Snapshot{
		Positions: prev.Positions,
		Totals:    prev.Totals,
		Cash:      metrics.AggregateCash(s.cash, prev.Rate),
		Rate:      prev.Rate,
		UpdatedAt: s.now(),
	}
	s.current.Store(next)
	s.mu.Unlock()

	s.publish()
}

// ApplyQuote reprices every position in the quote's symbol and recomputes
// totals. It reports whether anything changed; quotes without a symbol or a
// positive price, and quotes for symbols not held, change nothing.
func (s *Store) ApplyQuote(q models.Quote) bool {
	if strings.TrimSpace(q.Symbol) == "" || !(q.Price > 0) {
		return false
	}

	s.mu.Lock()
	prev := s.current.Load()
	positions, changed := applyQuote(prev.Positions, q, prev.Rate)
	if !changed {
		s.mu.Unlock()
		return false
	}
	s.quotes[strings.ToUpper(q.Symbol)] = q

	next := &Snapshot{
		Positions: positions,
		Totals:    metrics.Aggregate(positions),
		Cash:      prev.Cash,
		Rate:      prev.Rate,
		UpdatedAt: s.now(),
	}
	s.current.Store(next)
	s.mu.Unlock()

	s.publish()
	return true
}

// rebuild normalizes the retained raws at rate, replays retained quotes and
// swaps in the result. Callers hold s.mu.
func (s *Store) rebuild(rate float64) *Snapshot {
	raws := s.raws
	if s.consolidate {
		raws = metrics.Consolidate(raws)
	}
	positions := metrics.NormalizeAll(raws, rate)
	for _, q := range s.quotes {
		positions, _ = applyQuote(positions, q, rate)
	}

	next := &Snapshot{
		Positions: positions,
		Totals:    metrics.Aggregate(positions),
		Cash:      metrics.AggregateCash(s.cash, rate),
		Rate:      rate,
		UpdatedAt: s.now(),
	}
	s.current.Store(next)
	return next
}

// publish hands the current snapshot to onChange. Writers that finish out of
// order still leave the newest snapshot as the last one delivered.
func (s *Store) publish() {
	if s.onChange == nil {
		return
	}
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.onChange(s.current.Load())
}

// applyQuote returns a new slice when any position changed, the input otherwise
func applyQuote(positions []models.NormalizedPosition, q models.Quote, rate float64) ([]models.NormalizedPosition, bool) {
	var out []models.NormalizedPosition
	for i, p := range positions {
		if !strings.EqualFold(p.Symbol, q.Symbol) {
			continue
		}
		updated := metrics.ApplyQuote(p, q, rate)
		// a repriced position always moves by at least metrics.QuoteEpsilon
		if updated.CurrentPrice == p.CurrentPrice {
			continue
		}
		if out == nil {
			out = append([]models.NormalizedPosition(nil), positions...)
		}
		out[i] = updated
	}
	if out == nil {
		return positions, false
	}
	return out, true
}
