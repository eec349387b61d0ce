package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// defaultTokenTTL applies when the token endpoint does not say when a token expires
const defaultTokenTTL = 15 * time.Minute

// TokenSource issues a stream access token and the instant it expires
type TokenSource func(ctx context.Context) (token string, expiresAt time.Time, err error)

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// HTTPTokenSource fetches tokens from a JSON endpoint returning
// {"token": "...", "expires_in": seconds}
func HTTPTokenSource(client *http.Client, url string) TokenSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return func(ctx context.Context) (string, time.Time, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("failed to create token request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("failed to fetch stream token: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", time.Time{}, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
		}

		var body tokenResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return "", time.Time{}, fmt.Errorf("failed to decode token response: %w", err)
		}
		if body.Token == "" {
			return "", time.Time{}, fmt.Errorf("token endpoint returned an empty token")
		}

		ttl := defaultTokenTTL
		if body.ExpiresIn > 0 {
			ttl = time.Duration(body.ExpiresIn) * time.Second
		}
		return body.Token, time.Now().Add(ttl), nil
	}
}
