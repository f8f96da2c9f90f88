package watchlist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mwielgus/StockWatch/internal/marketdata"
	"github.com/mwielgus/StockWatch/internal/user"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrSymbolRequired = errors.New("symbol and company are required")
	ErrAddFailed      = errors.New("failed to add to watchlist")
	ErrRemoveFailed   = errors.New("failed to remove from watchlist")
	ErrLoadFailed     = errors.New("failed to load watchlist")
)

// Upstream calls already carry a 10s timeout; the limit only stops a large
// watchlist from opening one connection burst per row.
const maxConcurrentEnrichments = 10

// StockWithData is a watchlist row joined with its live market snapshot.
// Reconstructed on every read, never persisted.
type StockWithData struct {
	UserID          string    `json:"user_id"`
	Symbol          string    `json:"symbol"`
	Company         string    `json:"company"`
	AddedAt         time.Time `json:"added_at"`
	CurrentPrice    *float64  `json:"current_price,omitempty"`
	ChangePercent   *float64  `json:"change_percent,omitempty"`
	PriceFormatted  string    `json:"price_formatted,omitempty"`
	ChangeFormatted string    `json:"change_formatted,omitempty"`
	MarketCap       string    `json:"market_cap"`
	PERatio         string    `json:"pe_ratio"`
}

type Service interface {
	GetWatchlistSymbols(ctx context.Context) []string
	GetWatchlistSymbolsByEmail(ctx context.Context, email string) []string
	IsSymbolInWatchlist(ctx context.Context, symbol string) bool
	AddToWatchlist(ctx context.Context, symbol, company string) error
	RemoveFromWatchlist(ctx context.Context, symbol string) error
	GetWatchlistWithData(ctx context.Context) ([]StockWithData, error)
}

type service struct {
	repo     Repository
	resolver user.Resolver
	market   marketdata.Client
	logger   *zap.Logger
}

func NewWatchlistService(repo Repository, resolver user.Resolver, market marketdata.Client, logger *zap.Logger) Service {
	return &service{
		repo:     repo,
		resolver: resolver,
		market:   market,
		logger:   logger,
	}
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// GetWatchlistSymbols never fails: the symbol list feeds UI badges, where a
// stale or empty display beats a broken page. Failures are logged and
// swallowed.
func (s *service) GetWatchlistSymbols(ctx context.Context) []string {
	resolved, err := s.resolver.ResolvePersistentUserID(ctx)
	if err != nil {
		s.logger.Warn("could not resolve user for symbol listing", zap.Error(err))
		return []string{}
	}

	symbols, err := s.repo.listSymbols(ctx, resolved.UserID)
	if err != nil {
		s.logger.Warn("could not list watchlist symbols",
			zap.String("user_id", resolved.UserID), zap.Error(err))
		return []string{}
	}

	normalized := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		normalized = append(normalized, strings.ToUpper(symbol))
	}
	return normalized
}

// GetWatchlistSymbolsByEmail is the session-less variant for background
// jobs; same degrade-to-empty contract.
func (s *service) GetWatchlistSymbolsByEmail(ctx context.Context, email string) []string {
	if email == "" {
		return []string{}
	}

	userID, err := s.resolver.ResolveUserIDByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) && !errors.Is(err, user.ErrAccountNotFound) {
			s.logger.Warn("could not resolve user by email for symbol listing", zap.Error(err))
		}
		return []string{}
	}

	symbols, err := s.repo.listSymbols(ctx, userID)
	if err != nil {
		s.logger.Warn("could not list watchlist symbols",
			zap.String("user_id", userID), zap.Error(err))
		return []string{}
	}

	normalized := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		normalized = append(normalized, strings.ToUpper(symbol))
	}
	return normalized
}

func (s *service) IsSymbolInWatchlist(ctx context.Context, symbol string) bool {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return false
	}

	resolved, err := s.resolver.ResolvePersistentUserID(ctx)
	if err != nil {
		return false
	}

	exists, err := s.repo.exists(ctx, resolved.UserID, symbol)
	if err != nil {
		s.logger.Warn("could not check watchlist membership",
			zap.String("symbol", symbol), zap.Error(err))
		return false
	}
	return exists
}

func (s *service) AddToWatchlist(ctx context.Context, symbol, company string) error {
	if strings.TrimSpace(symbol) == "" {
		return ErrSymbolRequired
	}

	resolved, err := s.resolver.ResolvePersistentUserID(ctx)
	if err != nil {
		return err
	}

	normalizedSymbol := normalizeSymbol(symbol)
	normalizedCompany := strings.TrimSpace(company)
	if normalizedCompany == "" {
		normalizedCompany = normalizedSymbol
	}

	if err := s.repo.upsert(ctx, resolved.UserID, normalizedSymbol, normalizedCompany); err != nil {
		s.logger.Error("watchlist add failed",
			zap.String("user_id", resolved.UserID),
			zap.String("symbol", normalizedSymbol),
			zap.Error(err))
		return ErrAddFailed
	}
	return nil
}

// RemoveFromWatchlist deletes the row; removing a symbol that is not there
// is not an error.
func (s *service) RemoveFromWatchlist(ctx context.Context, symbol string) error {
	if strings.TrimSpace(symbol) == "" {
		return ErrSymbolRequired
	}

	resolved, err := s.resolver.ResolvePersistentUserID(ctx)
	if err != nil {
		return err
	}

	normalizedSymbol := normalizeSymbol(symbol)
	if err := s.repo.delete(ctx, resolved.UserID, normalizedSymbol); err != nil {
		s.logger.Error("watchlist remove failed",
			zap.String("user_id", resolved.UserID),
			zap.String("symbol", normalizedSymbol),
			zap.Error(err))
		return ErrRemoveFailed
	}
	return nil
}

// GetWatchlistWithData loads the user's rows and joins each with live market
// data. Identity resolution and the raw list are structural: if either
// fails, the whole call fails. Enrichment is best-effort per row: one
// symbol's upstream trouble degrades that row to its defaults and leaves its
// siblings alone. Row order (added_at descending) is positional and survives
// the concurrent fan-out.
func (s *service) GetWatchlistWithData(ctx context.Context) ([]StockWithData, error) {
	resolved, err := s.resolver.ResolvePersistentUserID(ctx)
	if err != nil {
		s.logger.Error("could not resolve user for watchlist load", zap.Error(err))
		return nil, ErrLoadFailed
	}

	entries, err := s.repo.listAll(ctx, resolved.UserID)
	if err != nil {
		s.logger.Error("could not load watchlist entries",
			zap.String("user_id", resolved.UserID), zap.Error(err))
		return nil, ErrLoadFailed
	}

	enriched := make([]StockWithData, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEnrichments)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			symbol := strings.ToUpper(entry.Symbol)
			row := StockWithData{
				UserID:    resolved.UserID,
				Symbol:    symbol,
				Company:   entry.Company,
				AddedAt:   entry.AddedAt,
				MarketCap: "N/A",
				PERatio:   "N/A",
			}

			snapshot, err := s.market.FetchMarketData(gctx, symbol)
			if err != nil {
				s.logger.Warn("market data enrichment degraded",
					zap.String("symbol", symbol), zap.Error(err))
				enriched[i] = row
				return nil
			}

			row.CurrentPrice = snapshot.CurrentPrice
			row.ChangePercent = snapshot.ChangePercent
			row.PriceFormatted = snapshot.PriceFormatted
			row.ChangeFormatted = snapshot.ChangeFormatted
			row.MarketCap = snapshot.MarketCap
			row.PERatio = snapshot.PERatio
			enriched[i] = row
			return nil
		})
	}
	g.Wait()

	return enriched, nil
}
