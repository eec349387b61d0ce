package kafka

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/trogers1052/dividend-dashboard/internal/portfolio"
)

// SnapshotPublisher publishes one portfolio snapshot
type SnapshotPublisher interface {
	PublishPortfolioUpdated(ctx context.Context, snap *portfolio.Snapshot) error
}

// Publisher decouples store writers from the broker. Notify never blocks; when
// snapshots arrive faster than they can be published only the latest pending
// one is sent.
type Publisher struct {
	producer SnapshotPublisher
	pending  chan *portfolio.Snapshot
	log      zerolog.Logger
}

// NewPublisher creates a publisher for producer
func NewPublisher(producer SnapshotPublisher, log zerolog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		pending:  make(chan *portfolio.Snapshot, 1),
		log:      log.With().Str("component", "portfolio_publisher").Logger(),
	}
}

// Notify queues snap, replacing any snapshot not yet published
func (p *Publisher) Notify(snap *portfolio.Snapshot) {
	for {
		select {
		case p.pending <- snap:
			return
		default:
		}

		select {
		case <-p.pending:
		default:
		}
	}
}

// Run publishes queued snapshots until ctx is cancelled
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-p.pending:
			if err := p.producer.PublishPortfolioUpdated(ctx, snap); err != nil {
				p.log.Error().Err(err).Msg("Failed to publish portfolio update")
			}
		}
	}
}
