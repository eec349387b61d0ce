package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/trogers1052/dividend-dashboard/internal/metrics"
	"github.com/trogers1052/dividend-dashboard/internal/models"
	"github.com/trogers1052/dividend-dashboard/internal/portfolio"
	"github.com/trogers1052/dividend-dashboard/internal/view"
)

// SnapshotSource provides the current portfolio state
type SnapshotSource interface {
	Snapshot() *portfolio.Snapshot
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	source SnapshotSource
	log    zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(source SnapshotSource, log zerolog.Logger) *Handler {
	return &Handler{
		source: source,
		log:    log.With().Str("component", "api").Logger(),
	}
}

// SummaryDisplay holds the totals rendered for display, all in CAD
type SummaryDisplay struct {
	TotalInvestment       string `json:"total_investment"`
	CurrentValue          string `json:"current_value"`
	UnrealizedPnL         string `json:"unrealized_pnl"`
	UnrealizedPnLPercent  string `json:"unrealized_pnl_percent"`
	TotalDividends        string `json:"total_dividends_received"`
	TotalReturn           string `json:"total_return"`
	TotalReturnPercent    string `json:"total_return_percent"`
	TodayReturn           string `json:"today_return"`
	TodayReturnPercent    string `json:"today_return_percent"`
	MonthlyDividendIncome string `json:"monthly_dividend_income"`
	AnnualDividendIncome  string `json:"annual_dividend_income"`
	WeightedYieldOnCost   string `json:"weighted_yield_on_cost"`
	WeightedCurrentYield  string `json:"weighted_current_yield"`
	Cash                  string `json:"cash"`
}

// SummaryResponse is the body of GET /api/v1/portfolio/summary
type SummaryResponse struct {
	Totals    models.PortfolioTotals `json:"totals"`
	Display   SummaryDisplay         `json:"display"`
	CashInCAD float64                `json:"cash_in_cad"`
	Rate      float64                `json:"rate"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// RateResponse is the body of GET /api/v1/rate
type RateResponse struct {
	Rate      float64   `json:"rate"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetSummary handles GET /api/v1/portfolio/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	snap := h.source.Snapshot()
	t := snap.Totals

	respondJSON(w, http.StatusOK, SummaryResponse{
		Totals: t,
		Display: SummaryDisplay{
			TotalInvestment:       cad(t.TotalInvestment),
			CurrentValue:          cad(t.CurrentValue),
			UnrealizedPnL:         cad(t.UnrealizedPnL),
			UnrealizedPnLPercent:  metrics.FormatSignedPercent(t.UnrealizedPnLPercent),
			TotalDividends:        cad(t.TotalDividendsReceived),
			TotalReturn:           cad(t.TotalReturnValue),
			TotalReturnPercent:    metrics.FormatSignedPercent(t.TotalReturnPercent),
			TodayReturn:           cad(t.TodayReturnValue),
			TodayReturnPercent:    metrics.FormatSignedPercent(t.TodayReturnPercent),
			MonthlyDividendIncome: cad(t.MonthlyDividendIncome),
			AnnualDividendIncome:  cad(t.AnnualDividendIncome),
			WeightedYieldOnCost:   metrics.FormatPercent(t.WeightedYieldOnCost),
			WeightedCurrentYield:  metrics.FormatPercent(t.WeightedCurrentYield),
			Cash:                  cad(snap.Cash.TotalInCAD),
		},
		CashInCAD: snap.Cash.TotalInCAD,
		Rate:      snap.Rate,
		UpdatedAt: snap.UpdatedAt,
	})
}

// GetPositions handles GET /api/v1/positions
// Query: q, currency, account_type, person, sort, dir, page, page_size
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	state := tableStateFromQuery(r)
	respondJSON(w, http.StatusOK, state.Apply(h.source.Snapshot().Positions))
}

// GetPosition handles GET /api/v1/positions/{symbol}. Unconsolidated
// portfolios may hold a symbol in several accounts, so a list is returned.
func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	var matches []models.NormalizedPosition
	for _, p := range h.source.Snapshot().Positions {
		if strings.EqualFold(p.Symbol, symbol) {
			matches = append(matches, p)
		}
	}

	if len(matches) == 0 {
		respondError(w, http.StatusNotFound, "position not found: "+symbol)
		return
	}

	respondJSON(w, http.StatusOK, matches)
}

// GetCash handles GET /api/v1/cash
func (h *Handler) GetCash(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.source.Snapshot().Cash)
}

// GetRate handles GET /api/v1/rate
func (h *Handler) GetRate(w http.ResponseWriter, r *http.Request) {
	snap := h.source.Snapshot()
	respondJSON(w, http.StatusOK, RateResponse{Rate: snap.Rate, UpdatedAt: snap.UpdatedAt})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func tableStateFromQuery(r *http.Request) view.TableState {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	return view.TableState{
		Filter: view.Filter{
			Query:       q.Get("q"),
			Currency:    q.Get("currency"),
			AccountType: q.Get("account_type"),
			Person:      q.Get("person"),
		},
		Sort: view.ParseSort(q.Get("sort"), q.Get("dir")),
		Page: view.PageRequest{Page: page, PageSize: pageSize},
	}
}

func cad(amount float64) string {
	return metrics.FormatMoney(amount, models.CurrencyCAD)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
