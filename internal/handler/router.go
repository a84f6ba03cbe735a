package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/efreitasn/papertrade/internal/quote"
	"github.com/efreitasn/papertrade/internal/service"
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all routes registered, request logging,
// and Content-Type validation middleware.
func NewRouter(
	accountSvc *service.AccountService,
	executor *service.TradeExecutor,
	quotes quote.Source,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(requestLogging(logger))
	r.Use(contentTypeJSON)

	// Create handlers.
	accountH := NewAccountHandler(accountSvc)
	portfolioH := NewPortfolioHandler(executor)
	stockH := NewStockHandler(quotes)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Account routes.
	r.Post("/users", accountH.Open)
	r.Get("/users/{user_id}/balance", accountH.GetBalance)

	// Portfolio routes.
	r.Get("/users/{user_id}/portfolio", portfolioH.GetPortfolio)
	r.Post("/users/{user_id}/portfolio/buy", portfolioH.Buy)
	r.Post("/users/{user_id}/portfolio/sell", portfolioH.Sell)
	r.Get("/users/{user_id}/transactions", portfolioH.ListTransactions)

	// Stock routes.
	r.Get("/stocks/search", stockH.Search)
	r.Get("/stocks/batch", stockH.GetBatch)
	r.Get("/stocks/popular", stockH.GetPopular)
	r.Get("/stocks/trending", stockH.GetTrending)
	r.Get("/stocks/{symbol}/quote", stockH.GetQuote)

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// contentTypeJSON is middleware that validates Content-Type for POST, PUT,
// and PATCH requests before the handler runs.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if !hasJSONContentType(r) {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
