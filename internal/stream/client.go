// Package stream receives live quotes over a WebSocket connection.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/dividend-dashboard/internal/cache"
	"github.com/trogers1052/dividend-dashboard/internal/models"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait   = 10 * time.Second
	dialTimeout = 30 * time.Second

	baseReconnectDelay = time.Second
	maxReconnectDelay  = time.Minute

	readLimit = 1 << 20
)

// QuoteSink receives resolved live quotes
type QuoteSink interface {
	ApplyQuote(q models.Quote) bool
}

type subscribeMessage struct {
	Action  string   `json:"action"`
	Symbols []string `json:"symbols"`
}

// Client keeps a quote stream open until its context is cancelled,
// reconnecting with exponential backoff
type Client struct {
	url     string
	symbols func() []string
	tokens  TokenSource
	sink    QuoteSink
	log     zerolog.Logger

	httpClient *http.Client
	baseDelay  time.Duration
	maxDelay   time.Duration
	now        func() time.Time

	refresh chan struct{}

	mu    sync.Mutex
	token cache.Expiring[string]
}

// NewClient creates a stream client. symbols is asked for the current symbol
// list on every (re)connect and after Refresh. tokens may be nil for
// unauthenticated streams.
func NewClient(url string, symbols func() []string, tokens TokenSource, sink QuoteSink, log zerolog.Logger) *Client {
	return &Client{
		url:        url,
		symbols:    symbols,
		tokens:     tokens,
		sink:       sink,
		log:        log.With().Str("component", "quote_stream").Logger(),
		httpClient: &http.Client{},
		baseDelay:  baseReconnectDelay,
		maxDelay:   maxReconnectDelay,
		now:        time.Now,
		refresh:    make(chan struct{}, 1),
	}
}

// Refresh asks the open connection to resubscribe if the symbol list has
// changed since the last subscription. It never blocks.
func (c *Client) Refresh() {
	select {
	case c.refresh <- struct{}{}:
	default:
	}
}

// Run connects and reads quotes until ctx is cancelled. It returns nil on
// cancellation; connection failures are logged and retried.
func (c *Client) Run(ctx context.Context) error {
	c.log.Info().Str("url", c.url).Msg("Starting quote stream")

	attempt := 0
	for {
		connected, err := c.session(ctx)
		if ctx.Err() != nil {
			c.log.Info().Msg("Quote stream stopped")
			return nil
		}
		if connected {
			attempt = 0
		}

		delay := c.backoff(attempt)
		attempt++
		c.log.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("Quote stream disconnected")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.log.Info().Msg("Quote stream stopped")
			return nil
		case <-timer.C:
		}
	}
}

// backoff doubles the delay per failed attempt up to maxDelay
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.baseDelay
	for i := 0; i < attempt && delay < c.maxDelay; i++ {
		delay *= 2
	}
	if delay > c.maxDelay {
		delay = c.maxDelay
	}
	return delay
}

// session runs one connection. connected reports whether the subscription
// was established before the connection ended.
func (c *Client) session(ctx context.Context) (connected bool, err error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(readLimit)

	subscribed := c.currentSymbols()
	if err := c.subscribe(ctx, conn, subscribed); err != nil {
		return false, err
	}

	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	readErr := make(chan error, 1)
	go func() { readErr <- c.readLoop(readCtx, conn) }()

	for {
		select {
		case err := <-readErr:
			return true, err
		case <-c.refresh:
			symbols := c.currentSymbols()
			if sameSymbols(symbols, subscribed) {
				continue
			}
			if err := c.subscribe(ctx, conn, symbols); err != nil {
				return true, err
			}
			subscribed = symbols
		}
	}
}

// readLoop forwards quotes until the connection fails or ctx is cancelled
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return fmt.Errorf("stream closed by server: %w", err)
			}
			return fmt.Errorf("failed to read from stream: %w", err)
		}

		if msgType != websocket.MessageText {
			continue
		}

		if err := c.handleMessage(data); err != nil {
			c.log.Error().Err(err).Msg("Failed to handle stream message")
		}
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, c.url, &websocket.DialOptions{
		HTTPClient: c.httpClient,
		HTTPHeader: header,
	})
	if err != nil {
		// A rejected token would be rejected again, so fetch a new one next time
		c.invalidateToken()
		return nil, fmt.Errorf("failed to dial quote stream: %w", err)
	}
	return conn, nil
}

// accessToken returns the cached token, refreshing it once stale
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.token.IsStale(now) {
		return c.token.Value, nil
	}

	token, expiresAt, err := c.tokens(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to refresh stream token: %w", err)
	}
	if expiresAt.IsZero() {
		expiresAt = now.Add(defaultTokenTTL)
	}
	c.token = cache.Expiring[string]{Value: token, ExpiresAt: expiresAt}
	return token, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = cache.Expiring[string]{}
	c.mu.Unlock()
}

func (c *Client) currentSymbols() []string {
	if c.symbols == nil {
		return nil
	}
	return c.symbols()
}

func (c *Client) subscribe(ctx context.Context, conn *websocket.Conn, symbols []string) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()

	msg := subscribeMessage{Action: "subscribe", Symbols: symbols}
	if err := wsjson.Write(writeCtx, conn, msg); err != nil {
		return fmt.Errorf("failed to send subscription message: %w", err)
	}

	c.log.Info().Int("symbols", len(symbols)).Msg("Subscribed to quote stream")
	return nil
}

// sameSymbols compares two symbol lists as sets
func sameSymbols(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// handleMessage accepts either a {"quotes": [...]} batch or a single quote
func (c *Client) handleMessage(data []byte) error {
	var batch models.QuoteBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return fmt.Errorf("failed to parse stream message: %w", err)
	}

	events := batch.Quotes
	if len(events) == 0 {
		var single models.QuoteEvent
		if err := json.Unmarshal(data, &single); err != nil {
			return fmt.Errorf("failed to parse quote: %w", err)
		}
		events = []models.QuoteEvent{single}
	}

	now := c.now()
	applied := 0
	for _, event := range events {
		quote, ok := event.Resolve(now)
		if !ok {
			continue
		}
		if c.sink.ApplyQuote(quote) {
			applied++
		}
	}

	if applied > 0 {
		c.log.Debug().Int("quotes", len(events)).Int("applied", applied).Msg("Applied stream quotes")
	}
	return nil
}
