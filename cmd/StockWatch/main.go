package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	database "github.com/mwielgus/StockWatch/db"
	"github.com/mwielgus/StockWatch/internal/auth"
	emailService "github.com/mwielgus/StockWatch/internal/email"
	"github.com/mwielgus/StockWatch/internal/marketdata"
	"github.com/mwielgus/StockWatch/internal/user"
	"github.com/mwielgus/StockWatch/internal/watchlist"
)

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

type Server struct {
	router           *http.ServeMux
	authHandler      *auth.Handler
	authService      auth.Service
	userHandler      *user.Handler
	watchlistHandler *watchlist.Handler
	dbHealth         func() map[string]string
}

func NewServer(authHandler *auth.Handler, authService auth.Service, userHandler *user.Handler, watchlistHandler *watchlist.Handler, dbHealth func() map[string]string) *Server {
	return &Server{
		authHandler:      authHandler,
		authService:      authService,
		userHandler:      userHandler,
		watchlistHandler: watchlistHandler,
		dbHealth:         dbHealth,
		router:           http.NewServeMux(),
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func checkConfiguration(logger *zap.Logger) error {
	err := godotenv.Load()
	if err != nil {
		logger.Info("no .env file found, continuing with system environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" {
		return errors.New("no JWT_SECRET Provided")
	}
	if os.Getenv("FINNHUB_API_KEY") == "" {
		logger.Warn("FINNHUB_API_KEY not set, market data will be served as N/A defaults")
	}
	return nil
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	stats := s.dbHealth()
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(stats)
}

func (s *Server) RegisterRoutes() {
	withSession := s.authService.SessionMiddleware()

	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("POST /api/auth/sign-up", http.HandlerFunc(s.authHandler.HandleSignUp))
	publicRoutes.Handle("POST /api/auth/sign-in", http.HandlerFunc(s.authHandler.HandleSignIn))
	publicRoutes.Handle("POST /api/auth/sign-out", http.HandlerFunc(s.authHandler.HandleSignOut))
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))

	// Protected routes (session cookie required)
	protectedRoutes := http.NewServeMux()
	protectedRoutes.Handle("GET /api/protected/profile",
		withSession(http.HandlerFunc(s.userHandler.HandleGetProfile)))

	// WATCHLIST API
	protectedRoutes.Handle("GET /api/protected/watchlist",
		withSession(http.HandlerFunc(s.watchlistHandler.HandleGetWatchlist)))
	protectedRoutes.Handle("GET /api/protected/watchlist/symbols",
		withSession(http.HandlerFunc(s.watchlistHandler.HandleGetSymbols)))
	protectedRoutes.Handle("GET /api/protected/watchlist/{symbol}",
		withSession(http.HandlerFunc(s.watchlistHandler.HandleGetSymbolStatus)))
	protectedRoutes.Handle("POST /api/protected/watchlist",
		withSession(http.HandlerFunc(s.watchlistHandler.HandleAdd)))
	protectedRoutes.Handle("DELETE /api/protected/watchlist/{symbol}",
		withSession(http.HandlerFunc(s.watchlistHandler.HandleRemove)))

	// STOCK SEARCH
	protectedRoutes.Handle("GET /api/protected/stocks/search",
		withSession(http.HandlerFunc(s.watchlistHandler.HandleSearch)))

	// Main router
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := checkConfiguration(logger); err != nil {
		logger.Fatal("missing configuration, update to start server", zap.Error(err))
	}

	dbService, err := database.NewDBService(os.Getenv("DB_CONNECTION_STRING"), logger)
	if err != nil {
		logger.Fatal("could not initialize database", zap.Error(err))
	}
	defer dbService.Close()

	marketClient := marketdata.NewFinnhubClient(os.Getenv("FINNHUB_API_KEY"), logger)
	newEmailService := emailService.NewEmailService(logger)

	userRepo := user.NewUserRepository(dbService.DB)
	userService := user.NewUserService(userRepo)
	userHandler := user.NewHandler(userService, respondJSON, respondError)

	jwtManager := auth.NewJWTManager(os.Getenv("JWT_SECRET"))
	authService := auth.NewAuthService(userService, jwtManager, newEmailService, logger)
	authHandler := auth.NewHandler(authService)

	watchlistRepo := watchlist.NewWatchlistRepository(dbService.DB)
	watchlistService := watchlist.NewWatchlistService(watchlistRepo, userService, marketClient, logger)
	watchlistHandler := watchlist.NewHandler(watchlistService, marketClient, respondJSON, respondError)

	server := NewServer(authHandler, authService, userHandler, watchlistHandler, dbService.Health)
	server.RegisterRoutes()

	// Warm the popular-stock profiles once so the first search is served
	// from cache.
	marketClient.WarmPopularStocks(context.Background())

	if err := StartMarketDataScheduler(marketClient, logger); err != nil {
		logger.Fatal("market data scheduler didn't start", zap.Error(err))
	}
	if err := StartDigestScheduler(userService, watchlistService, newEmailService, logger); err != nil {
		logger.Fatal("digest scheduler didn't start", zap.Error(err))
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	handler := loggingMiddleware(logger, server.router)
	logger.Info("server starting", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server failed to start", zap.Error(err))
	}
}

// StartMarketDataScheduler keeps the popular-profile cache warm and sweeps
// expired response-cache entries.
func StartMarketDataScheduler(client *marketdata.FinnhubClient, logger *zap.Logger) error {
	c := cron.New()
	_, err := c.AddFunc("@every 6h", func() {
		client.PurgeExpiredCache()
		client.WarmPopularStocks(context.Background())
		logger.Info("popular stock profiles refreshed")
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}

// StartDigestScheduler emails every user their current watchlist once a day.
func StartDigestScheduler(users user.Service, watchlistService watchlist.Service, emails emailService.EmailSender, logger *zap.Logger) error {
	c := cron.New()
	_, err := c.AddFunc("@daily", func() {
		ctx := context.Background()
		recipients, err := users.ListForNewsDelivery(ctx)
		if err != nil {
			logger.Error("could not list digest recipients", zap.Error(err))
			return
		}

		today := time.Now().Format("Monday, January 2")
		for _, recipient := range recipients {
			symbols := watchlistService.GetWatchlistSymbolsByEmail(ctx, recipient.Email)
			emails.QueueEmail(recipient.Email, emailService.DigestEmailData{
				UserName: recipient.Name,
				Date:     today,
				Symbols:  symbols,
			})
		}
		logger.Info("watchlist digest queued", zap.Int("recipients", len(recipients)))
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}
