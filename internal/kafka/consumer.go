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

// messageReader is the subset of *kafka.Reader the consumers use
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
	Config() kafka.ReaderConfig
}

// QuoteSink receives resolved live quotes
type QuoteSink interface {
	ApplyQuote(q models.Quote) bool
}

// QuoteConsumer handles consuming live quote events from Kafka
type QuoteConsumer struct {
	reader messageReader
	sink   QuoteSink
	log    zerolog.Logger
}

// NewQuoteConsumer creates a new Kafka consumer for quote events.
// Quotes are only useful while fresh, so a new group starts at the latest offset.
func NewQuoteConsumer(brokers []string, topic, groupID string, sink QuoteSink, log zerolog.Logger) *QuoteConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        500 * time.Millisecond,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
	})

	return &QuoteConsumer{
		reader: reader,
		sink:   sink,
		log:    log.With().Str("component", "quote_consumer").Logger(),
	}
}

// Start begins consuming messages from Kafka
func (c *QuoteConsumer) Start(ctx context.Context) error {
	return consume(ctx, c.reader, c.log, c.processMessage)
}

// processMessage handles a single quote message. Events without a symbol or a
// usable price are skipped.
func (c *QuoteConsumer) processMessage(msg kafka.Message) error {
	var event models.QuoteEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal quote event: %w", err)
	}

	quote, ok := event.Resolve(time.Now())
	if !ok {
		c.log.Debug().Str("symbol", event.Symbol).Msg("Ignoring quote without symbol or price")
		return nil
	}

	if c.sink.ApplyQuote(quote) {
		c.log.Debug().Str("symbol", quote.Symbol).Float64("price", quote.Price).Msg("Applied quote")
	}
	return nil
}

// Close closes the Kafka consumer
func (c *QuoteConsumer) Close() error {
	return c.reader.Close()
}

// consume runs the read loop shared by all consumers until ctx is cancelled.
// Processing errors are logged and do not stop the loop.
func consume(ctx context.Context, reader messageReader, log zerolog.Logger, process func(kafka.Message) error) error {
	log.Info().Str("topic", reader.Config().Topic).Msg("Starting Kafka consumer")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Kafka consumer shutting down")
			return reader.Close()
		default:
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return reader.Close()
				}
				log.Error().Err(err).Msg("Error reading message")
				continue
			}

			if err := process(msg); err != nil {
				log.Error().
					Err(err).
					Int("partition", msg.Partition).
					Int64("offset", msg.Offset).
					Msg("Error processing message")
			}
		}
	}
}
