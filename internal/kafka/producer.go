package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/dividend-dashboard/internal/models"
	"github.com/trogers1052/dividend-dashboard/internal/portfolio"
)

// messageWriter is the subset of *kafka.Writer the producer uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer handles publishing portfolio events to Kafka
type Producer struct {
	writer messageWriter
	key    string
}

// NewProducer creates a new Kafka producer. key partitions every event of one portfolio together.
func NewProducer(brokers []string, topic, key string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		key:    key,
	}
}

// PublishPortfolioUpdated publishes the totals of a snapshot
func (p *Producer) PublishPortfolioUpdated(ctx context.Context, snap *portfolio.Snapshot) error {
	event := models.PortfolioEvent{
		EventType: models.EventPortfolioUpdated,
		Totals:    snap.Totals,
		CashInCAD: snap.Cash.TotalInCAD,
		Rate:      snap.Rate,
		UpdatedAt: snap.UpdatedAt,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, event)
}

func (p *Producer) publish(ctx context.Context, event models.PortfolioEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(p.key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
