package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchStocksMapsResults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "apple", r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"result":[
			{"symbol":"aapl","description":"Apple Inc","displaySymbol":"AAPL","type":"Common Stock"},
			{"symbol":"APLE","description":"Apple Hospitality REIT","displaySymbol":"","type":""},
			{"symbol":"","description":"broken row"}
		]}`)
	})

	client, _ := newTestClient(t, "test-token", mux)

	results := client.SearchStocks(context.Background(), "  apple ")
	assert.Len(t, results, 2)
	assert.Equal(t, StockSearchResult{Symbol: "AAPL", Name: "Apple Inc", Exchange: "AAPL", Type: "Common Stock"}, results[0])
	// Blank exchange and type fall back to defaults.
	assert.Equal(t, StockSearchResult{Symbol: "APLE", Name: "Apple Hospitality REIT", Exchange: "US", Type: "Stock"}, results[1])
}

func TestSearchStocksCapsResultCount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":[`)
		for i := 0; i < 30; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"symbol":"S%02d","description":"Stock %d"}`, i, i)
		}
		fmt.Fprint(w, `]}`)
	})

	client, _ := newTestClient(t, "test-token", mux)

	results := client.SearchStocks(context.Background(), "s")
	assert.Len(t, results, maxSearchResults)
}

func TestSearchStocksDegradesToEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	client, _ := newTestClient(t, "test-token", mux)

	results := client.SearchStocks(context.Background(), "apple")
	assert.Empty(t, results)
}

func TestSearchStocksEmptyQueryReturnsPopularList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/profile2", func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		fmt.Fprintf(w, `{"name":"%s Inc","exchange":"NASDAQ"}`, symbol)
	})

	client, _ := newTestClient(t, "test-token", mux)

	results := client.SearchStocks(context.Background(), "")
	assert.Len(t, results, len(popularSymbols))
	// Positional: results follow the popular list order.
	assert.Equal(t, "AAPL", results[0].Symbol)
	assert.Equal(t, "AAPL Inc", results[0].Name)
	assert.Equal(t, "NASDAQ", results[0].Exchange)
}

func TestSearchStocksPopularProfileFailureFallsBackToSymbol(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/profile2", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	client, _ := newTestClient(t, "test-token", mux)

	results := client.SearchStocks(context.Background(), "")
	assert.Len(t, results, len(popularSymbols))
	assert.Equal(t, "AAPL", results[0].Name)
	assert.Equal(t, "US", results[0].Exchange)
}

func TestSearchStocksWithoutToken(t *testing.T) {
	client, _ := newTestClient(t, "", http.NewServeMux())
	assert.Empty(t, client.SearchStocks(context.Background(), "apple"))
}
