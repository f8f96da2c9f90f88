package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxSearchResults = 15

// Shown when the search box is empty; profiles are cached long enough that
// the list is effectively free after the first warm-up.
var popularSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA",
	"TSLA", "META", "NFLX", "JPM", "V",
}

type StockSearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Type     string `json:"type"`
}

// SearchStocks resolves a free-text query against the symbol directory. An
// empty query returns the popular list instead. Search feeds a suggestion
// dropdown, so every failure degrades to an empty result set.
func (c *FinnhubClient) SearchStocks(ctx context.Context, query string) []StockSearchResult {
	if c.token == "" {
		return []StockSearchResult{}
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return c.popularStocks(ctx)
	}

	var response struct {
		Result []struct {
			Symbol        string `json:"symbol"`
			Description   string `json:"description"`
			DisplaySymbol string `json:"displaySymbol"`
			Type          string `json:"type"`
		} `json:"result"`
	}
	searchURL := fmt.Sprintf("%s/search?q=%s&token=%s", c.baseURL, url.QueryEscape(query), c.token)
	if err := c.fetchJSON(ctx, searchURL, searchTTL, &response); err != nil {
		c.logger.Warn("stock search degraded", zap.String("query", query), zap.Error(err))
		return []StockSearchResult{}
	}

	results := make([]StockSearchResult, 0, maxSearchResults)
	for _, r := range response.Result {
		if r.Symbol == "" {
			continue
		}
		resultType := r.Type
		if resultType == "" {
			resultType = "Stock"
		}
		exchange := r.DisplaySymbol
		if exchange == "" {
			exchange = "US"
		}
		results = append(results, StockSearchResult{
			Symbol:   strings.ToUpper(r.Symbol),
			Name:     r.Description,
			Exchange: exchange,
			Type:     resultType,
		})
		if len(results) == maxSearchResults {
			break
		}
	}
	return results
}

// WarmPopularStocks pre-fills the profile cache for the default list.
func (c *FinnhubClient) WarmPopularStocks(ctx context.Context) {
	c.popularStocks(ctx)
}

func (c *FinnhubClient) popularStocks(ctx context.Context) []StockSearchResult {
	results := make([]StockSearchResult, len(popularSymbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(5)
	for i, symbol := range popularSymbols {
		i, symbol := i, symbol
		g.Go(func() error {
			var profile struct {
				Name     string `json:"name"`
				Exchange string `json:"exchange"`
			}
			profileURL := fmt.Sprintf("%s/stock/profile2?symbol=%s&token=%s", c.baseURL, url.QueryEscape(symbol), c.token)
			if err := c.fetchJSON(gctx, profileURL, profileTTL, &profile); err != nil {
				c.logger.Warn("popular profile fetch degraded", zap.String("symbol", symbol), zap.Error(err))
			}

			name := profile.Name
			if name == "" {
				name = symbol
			}
			exchange := profile.Exchange
			if exchange == "" {
				exchange = "US"
			}
			results[i] = StockSearchResult{
				Symbol:   symbol,
				Name:     name,
				Exchange: exchange,
				Type:     "Common Stock",
			}
			return nil
		})
	}
	g.Wait()

	return results
}
