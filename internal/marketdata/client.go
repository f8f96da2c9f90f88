package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// Snapshot is the per-symbol market view joined onto watchlist rows. It is
// never persisted; absent figures stay nil and formatted fields carry their
// sentinel defaults.
type Snapshot struct {
	CurrentPrice    *float64 `json:"current_price,omitempty"`
	ChangePercent   *float64 `json:"change_percent,omitempty"`
	PriceFormatted  string   `json:"price_formatted,omitempty"`
	ChangeFormatted string   `json:"change_formatted,omitempty"`
	MarketCap       string   `json:"market_cap"`
	PERatio         string   `json:"pe_ratio"`
}

func defaultSnapshot() Snapshot {
	return Snapshot{
		MarketCap: notAvailable,
		PERatio:   notAvailable,
	}
}

type Client interface {
	FetchMarketData(ctx context.Context, symbol string) (Snapshot, error)
	SearchStocks(ctx context.Context, query string) []StockSearchResult
}

type FinnhubClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
	cache      *responseCache
	logger     *zap.Logger
}

func NewFinnhubClient(token string, logger *zap.Logger) *FinnhubClient {
	return &FinnhubClient{
		token:      token,
		baseURL:    finnhubBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      newResponseCache(),
		logger:     logger,
	}
}

// PurgeExpiredCache drops stale response-cache entries. Called from the
// periodic market-data scheduler.
func (c *FinnhubClient) PurgeExpiredCache() {
	c.cache.purgeExpired()
}

// fetchJSON issues a TTL-cached GET and decodes the body into out.
func (c *FinnhubClient) fetchJSON(ctx context.Context, rawURL string, ttl time.Duration, out interface{}) error {
	if payload, ok := c.cache.get(rawURL); ok {
		return json.Unmarshal(payload, out)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("error querying API: %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	c.cache.set(rawURL, payload, ttl)
	return json.Unmarshal(payload, out)
}

// FetchMarketData gathers quote, profile and fundamentals for one symbol.
// The three fetches run concurrently and are joined settle-all: each branch
// that fails degrades only its own fields, so a partial snapshot (price
// known, P/E unknown) is a normal outcome. The returned error is always nil;
// the signature keeps the per-row failure boundary explicit for callers that
// wrap this client.
func (c *FinnhubClient) FetchMarketData(ctx context.Context, symbol string) (Snapshot, error) {
	if c.token == "" {
		return defaultSnapshot(), nil
	}

	escaped := url.QueryEscape(symbol)

	var quote struct {
		C  *float64 `json:"c"`
		Dp *float64 `json:"dp"`
	}
	var profile struct {
		MarketCapitalization *float64 `json:"marketCapitalization"`
	}
	var metrics struct {
		Metric struct {
			PeBasicExclExtraTTM *float64 `json:"peBasicExclExtraTTM"`
			PeNormalizedAnnual  *float64 `json:"peNormalizedAnnual"`
		} `json:"metric"`
	}

	var wg sync.WaitGroup
	var quoteErr, profileErr, metricsErr error

	wg.Add(3)
	go func() {
		defer wg.Done()
		quoteErr = c.fetchJSON(ctx,
			fmt.Sprintf("%s/quote?symbol=%s&token=%s", c.baseURL, escaped, c.token),
			quoteTTL, &quote)
	}()
	go func() {
		defer wg.Done()
		profileErr = c.fetchJSON(ctx,
			fmt.Sprintf("%s/stock/profile2?symbol=%s&token=%s", c.baseURL, escaped, c.token),
			profileTTL, &profile)
	}()
	go func() {
		defer wg.Done()
		metricsErr = c.fetchJSON(ctx,
			fmt.Sprintf("%s/stock/metric?symbol=%s&metric=all&token=%s", c.baseURL, escaped, c.token),
			metricTTL, &metrics)
	}()
	wg.Wait()

	if quoteErr != nil {
		c.logger.Warn("quote fetch degraded", zap.String("symbol", symbol), zap.Error(quoteErr))
		quote.C, quote.Dp = nil, nil
	}
	if profileErr != nil {
		c.logger.Warn("profile fetch degraded", zap.String("symbol", symbol), zap.Error(profileErr))
		profile.MarketCapitalization = nil
	}
	if metricsErr != nil {
		c.logger.Warn("fundamentals fetch degraded", zap.String("symbol", symbol), zap.Error(metricsErr))
		metrics.Metric.PeBasicExclExtraTTM, metrics.Metric.PeNormalizedAnnual = nil, nil
	}

	snapshot := defaultSnapshot()
	snapshot.CurrentPrice = quote.C
	snapshot.ChangePercent = quote.Dp
	if quote.C != nil {
		snapshot.PriceFormatted = formatPrice(*quote.C)
	}
	snapshot.ChangeFormatted = formatChangePercent(quote.Dp)
	// The upstream reports capitalization in millions of dollars.
	if profile.MarketCapitalization != nil && *profile.MarketCapitalization != 0 {
		snapshot.MarketCap = formatMarketCapValue(*profile.MarketCapitalization * 1_000_000)
	}
	snapshot.PERatio = formatPeRatio(metrics.Metric.PeBasicExclExtraTTM, metrics.Metric.PeNormalizedAnnual)

	return snapshot, nil
}
