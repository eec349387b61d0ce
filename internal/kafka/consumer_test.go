package kafka

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/dividend-dashboard/internal/models"
)

type mockQuoteSink struct {
	mu     sync.Mutex
	quotes []models.Quote
	called chan struct{}
}

func (m *mockQuoteSink) ApplyQuote(q models.Quote) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.quotes = append(m.quotes, q)
	if m.called != nil {
		select {
		case m.called <- struct{}{}:
		default:
		}
	}
	return true
}

func (m *mockQuoteSink) Quotes() []models.Quote {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Quote(nil), m.quotes...)
}

func TestQuoteConsumer_processMessage(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantErr   bool
		wantQuote *models.Quote
	}{
		{
			name:      "numeric price",
			payload:   `{"symbol":"HYLD.TO","price":14.62}`,
			wantQuote: &models.Quote{Symbol: "HYLD.TO", Price: 14.62},
		},
		{
			name:      "string lastTradePrice",
			payload:   `{"symbol":"JEPI","lastTradePrice":"57.31"}`,
			wantQuote: &models.Quote{Symbol: "JEPI", Price: 57.31},
		},
		{
			name:      "price wins over lastTradePrice",
			payload:   `{"symbol":"ENB.TO","price":"55.10","lastTradePrice":"55.00"}`,
			wantQuote: &models.Quote{Symbol: "ENB.TO", Price: 55.10},
		},
		{
			name:      "zero price falls back to lastTradePrice",
			payload:   `{"symbol":"ENB.TO","price":0,"lastTradePrice":55}`,
			wantQuote: &models.Quote{Symbol: "ENB.TO", Price: 55},
		},
		{name: "missing symbol", payload: `{"price":12}`},
		{name: "missing price", payload: `{"symbol":"ZWC.TO"}`},
		{name: "null price", payload: `{"symbol":"ZWC.TO","price":null}`},
		{name: "malformed", payload: `{"symbol":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &mockQuoteSink{}
			consumer := &QuoteConsumer{sink: sink, log: zerolog.Nop()}

			err := consumer.processMessage(kafka.Message{Value: []byte(tt.payload)})
			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, sink.Quotes())
				return
			}
			require.NoError(t, err)

			if tt.wantQuote == nil {
				assert.Empty(t, sink.Quotes())
				return
			}
			quotes := sink.Quotes()
			require.Len(t, quotes, 1)
			assert.Equal(t, tt.wantQuote.Symbol, quotes[0].Symbol)
			assert.Equal(t, tt.wantQuote.Price, quotes[0].Price)
			assert.False(t, quotes[0].ReceivedAt.IsZero())
		})
	}
}

func TestQuoteConsumer_processMessage_usesEventTimestamp(t *testing.T) {
	sink := &mockQuoteSink{}
	consumer := &QuoteConsumer{sink: sink, log: zerolog.Nop()}

	payload := `{"symbol":"HYLD.TO","price":14.62,"timestamp":"2026-03-02T14:30:00Z"}`
	require.NoError(t, consumer.processMessage(kafka.Message{Value: []byte(payload)}))

	quotes := sink.Quotes()
	require.Len(t, quotes, 1)
	assert.Equal(t, time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC), quotes[0].ReceivedAt.UTC())
}

func TestQuoteConsumer_Start_continuesAfterBadMessages(t *testing.T) {
	sink := &mockQuoteSink{called: make(chan struct{}, 1)}
	reader := newMockReader("quotes", 2)
	consumer := &QuoteConsumer{reader: reader, sink: sink, log: zerolog.Nop()}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- consumer.Start(ctx)
	}()

	reader.msgs <- kafka.Message{Value: []byte(`not json`)}
	reader.msgs <- kafka.Message{Value: []byte(`{"symbol":"JEPI","price":57.31}`)}

	select {
	case <-sink.called:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for quote to be processed")
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for consumer to shut down")
	}

	quotes := sink.Quotes()
	require.Len(t, quotes, 1)
	assert.Equal(t, "JEPI", quotes[0].Symbol)
}
