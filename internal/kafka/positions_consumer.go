package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/dividend-dashboard/internal/models"
)

// PositionsSink receives full snapshots
type PositionsSink interface {
	Reload(raws []models.RawPosition, rate float64)
	SetCash(accounts []models.CashAccount)
	Rate() float64
}

// PositionsConsumer handles position snapshot events. Each snapshot replaces
// every position held.
type PositionsConsumer struct {
	reader messageReader
	sink   PositionsSink
	log    zerolog.Logger
}

// NewPositionsConsumer creates a new Kafka consumer for position snapshots
func NewPositionsConsumer(brokers []string, topic, groupID string, sink PositionsSink, log zerolog.Logger) *PositionsConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &PositionsConsumer{
		reader: reader,
		sink:   sink,
		log:    log.With().Str("component", "positions_consumer").Logger(),
	}
}

// Start begins consuming messages from Kafka
func (c *PositionsConsumer) Start(ctx context.Context) error {
	return consume(ctx, c.reader, c.log, c.processMessage)
}

// processMessage handles a single snapshot message
func (c *PositionsConsumer) processMessage(msg kafka.Message) error {
	var event models.PositionsEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal positions event: %w", err)
	}

	if event.EventType != models.EventPositionsSnapshot {
		c.log.Debug().Str("event_type", event.EventType).Msg("Ignoring event type")
		return nil
	}

	raws := make([]models.RawPosition, 0, len(event.Data.Positions))
	for _, p := range event.Data.Positions {
		raw := p.ToRawPosition()
		if raw.Symbol == "" {
			continue
		}
		raws = append(raws, raw)
	}

	rate := models.ParseNumber(event.Data.ExchangeRate)
	if rate <= 0 {
		rate = c.sink.Rate()
	}

	if event.Data.Cash != nil {
		accounts := make([]models.CashAccount, 0, len(event.Data.Cash))
		for _, cd := range event.Data.Cash {
			accounts = append(accounts, cd.ToCashAccount())
		}
		c.sink.SetCash(accounts)
	}
	c.sink.Reload(raws, rate)

	c.log.Info().
		Str("source", event.Source).
		Int("positions", len(raws)).
		Float64("rate", rate).
		Msg("Applied positions snapshot")
	return nil
}

// Close closes the Kafka consumer
func (c *PositionsConsumer) Close() error {
	return c.reader.Close()
}
