package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/dividend-dashboard/internal/models"
)

const defaultJobTimeout = 30 * time.Second

// PositionsRepository loads the raw records
type PositionsRepository interface {
	GetPositions(accountID string) ([]models.RawPosition, error)
	GetCashAccounts() ([]models.CashAccount, error)
}

// RateSource resolves the current USD->CAD rate
type RateSource interface {
	Rate(ctx context.Context) float64
}

// PortfolioStore is the part of portfolio.Store the jobs write to
type PortfolioStore interface {
	Reload(raws []models.RawPosition, rate float64)
	SetCash(accounts []models.CashAccount)
	SetRate(rate float64)
}

// ReloadPositionsJob reloads every position and cash balance from the database
type ReloadPositionsJob struct {
	repo    PositionsRepository
	rates   RateSource
	store   PortfolioStore
	timeout time.Duration
	log     zerolog.Logger
}

// NewReloadPositionsJob creates a reload job
func NewReloadPositionsJob(repo PositionsRepository, rates RateSource, store PortfolioStore, log zerolog.Logger) *ReloadPositionsJob {
	return &ReloadPositionsJob{
		repo:    repo,
		rates:   rates,
		store:   store,
		timeout: defaultJobTimeout,
		log:     log.With().Str("job", "reload_positions").Logger(),
	}
}

// Name returns the job name
func (j *ReloadPositionsJob) Name() string {
	return "reload_positions"
}

// Run loads positions and cash. When positions cannot be read the store keeps
// its current state; a cash failure keeps the current balances only.
func (j *ReloadPositionsJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	raws, err := j.repo.GetPositions("")
	if err != nil {
		return fmt.Errorf("failed to load positions: %w", err)
	}

	cash, err := j.repo.GetCashAccounts()
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to load cash balances, keeping current")
	} else {
		j.store.SetCash(cash)
	}

	j.store.Reload(raws, j.rates.Rate(ctx))
	return nil
}

// RefreshRateJob re-resolves the exchange rate and re-normalizes the store
type RefreshRateJob struct {
	rates   RateSource
	store   PortfolioStore
	timeout time.Duration
}

// NewRefreshRateJob creates a rate refresh job
func NewRefreshRateJob(rates RateSource, store PortfolioStore) *RefreshRateJob {
	return &RefreshRateJob{
		rates:   rates,
		store:   store,
		timeout: defaultJobTimeout,
	}
}

// Name returns the job name
func (j *RefreshRateJob) Name() string {
	return "refresh_rate"
}

// Run executes the refresh
func (j *RefreshRateJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	j.store.SetRate(j.rates.Rate(ctx))
	return nil
}
