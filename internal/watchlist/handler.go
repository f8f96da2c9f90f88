package watchlist

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mwielgus/StockWatch/internal/marketdata"
	"github.com/mwielgus/StockWatch/internal/user"
)

// StockWithWatchlistStatus decorates a search result with the caller's
// watchlist membership.
type StockWithWatchlistStatus struct {
	marketdata.StockSearchResult
	IsInWatchlist bool `json:"is_in_watchlist"`
}

type Handler struct {
	service      Service
	searcher     marketdata.Client
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string)
}

func NewHandler(
	service Service,
	searcher marketdata.Client,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string),
) *Handler {
	return &Handler{
		service:      service,
		searcher:     searcher,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *Handler) HandleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.GetWatchlistWithData(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, ErrLoadFailed.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   items,
	})
}

func (h *Handler) HandleGetSymbols(w http.ResponseWriter, r *http.Request) {
	symbols := h.service.GetWatchlistSymbols(r.Context())
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   symbols,
	})
}

func (h *Handler) HandleGetSymbolStatus(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	if symbol == "" {
		h.respondError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"symbol":          strings.ToUpper(strings.TrimSpace(symbol)),
			"is_in_watchlist": h.service.IsSymbolInWatchlist(r.Context(), symbol),
		},
	})
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol  string `json:"symbol"`
		Company string `json:"company"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Symbol == "" || req.Company == "" {
		h.respondError(w, http.StatusBadRequest, ErrSymbolRequired.Error())
		return
	}

	if err := h.service.AddToWatchlist(r.Context(), req.Symbol, req.Company); err != nil {
		h.respondWatchlistError(w, err, ErrAddFailed)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Stock added to watchlist",
	})
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	if symbol == "" {
		h.respondError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	if err := h.service.RemoveFromWatchlist(r.Context(), symbol); err != nil {
		h.respondWatchlistError(w, err, ErrRemoveFailed)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Stock removed from watchlist",
	})
}

// HandleSearch returns symbol-directory matches flagged with the caller's
// watchlist membership, compared case-insensitively.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results := h.searcher.SearchStocks(r.Context(), query)

	symbolSet := make(map[string]struct{})
	for _, symbol := range h.service.GetWatchlistSymbols(r.Context()) {
		symbolSet[strings.ToUpper(symbol)] = struct{}{}
	}

	flagged := make([]StockWithWatchlistStatus, 0, len(results))
	for _, result := range results {
		_, inWatchlist := symbolSet[strings.ToUpper(result.Symbol)]
		flagged = append(flagged, StockWithWatchlistStatus{
			StockSearchResult: result,
			IsInWatchlist:     inWatchlist,
		})
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   flagged,
	})
}

func (h *Handler) respondWatchlistError(w http.ResponseWriter, err error, fallback error) {
	switch {
	case errors.Is(err, ErrSymbolRequired):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrUnauthorized):
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, user.ErrAccountNotFound):
		h.respondError(w, http.StatusNotFound, user.ErrAccountNotFound.Error())
	default:
		h.respondError(w, http.StatusInternalServerError, fallback.Error())
	}
}
