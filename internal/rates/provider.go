// Package rates supplies the USD->CAD exchange rate used to normalize positions.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	yahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	yahooUA      = "Mozilla/5.0 (compatible; dividend-dashboard/1.0)"
	usdCADTicker = "USDCAD=X"
)

// Provider fetches a live USD->CAD rate
type Provider interface {
	FetchRate(ctx context.Context) (float64, error)
}

// YahooProvider reads the USDCAD=X chart from Yahoo Finance
type YahooProvider struct {
	httpClient *http.Client
	baseURL    string
}

// NewYahooProvider creates a provider. An empty baseURL uses Yahoo's chart endpoint.
func NewYahooProvider(httpClient *http.Client, baseURL string) *YahooProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = yahooBaseURL
	}
	return &YahooProvider{httpClient: httpClient, baseURL: baseURL}
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchRate returns the latest USD->CAD rate
func (p *YahooProvider) FetchRate(ctx context.Context) (float64, error) {
	url := p.baseURL + "/" + usdCADTicker + "?interval=1d&range=1d"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build rate request: %w", err)
	}
	req.Header.Set("User-Agent", yahooUA)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s: %w", usdCADTicker, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate request for %s: unexpected status %d", usdCADTicker, resp.StatusCode)
	}

	var chart yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return 0, fmt.Errorf("failed to decode rate response: %w", err)
	}
	if chart.Chart.Error != nil {
		return 0, fmt.Errorf("rate chart error: %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return 0, fmt.Errorf("no rate results for %s", usdCADTicker)
	}

	rate := chart.Chart.Result[0].Meta.RegularMarketPrice
	if rate <= 0 {
		return 0, fmt.Errorf("invalid rate for %s: %f", usdCADTicker, rate)
	}
	return rate, nil
}
