package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/efreitasn/papertrade/internal/service"
	"github.com/go-chi/chi/v5"
)

// PortfolioHandler handles HTTP requests for trading and portfolio
// endpoints.
type PortfolioHandler struct {
	executor *service.TradeExecutor
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(executor *service.TradeExecutor) *PortfolioHandler {
	return &PortfolioHandler{executor: executor}
}

// tradeRequest is the JSON request body for buy and sell endpoints.
type tradeRequest struct {
	Symbol   string  `json:"symbol"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

// positionResponse is a single position in portfolio and trade responses.
type positionResponse struct {
	Symbol        string  `json:"symbol"`
	Quantity      int64   `json:"quantity"`
	AveragePrice  float64 `json:"average_price"`
	TotalInvested float64 `json:"total_invested"`
}

// tradeResponse is the JSON response for buy and sell endpoints.
type tradeResponse struct {
	Balance   float64            `json:"balance"`
	Positions []positionResponse `json:"positions"`
}

// portfolioResponse is the JSON response for GET /users/{user_id}/portfolio.
type portfolioResponse struct {
	UserID    string             `json:"user_id"`
	Balance   float64            `json:"balance"`
	Positions []positionResponse `json:"positions"`
}

// transactionResponse is a single record in the history listing.
type transactionResponse struct {
	TransactionID string  `json:"transaction_id"`
	Type          string  `json:"type"`
	Symbol        string  `json:"symbol"`
	Quantity      int64   `json:"quantity"`
	Price         float64 `json:"price"`
	TotalAmount   float64 `json:"total_amount"`
	Timestamp     string  `json:"timestamp"`
}

// transactionListResponse is the JSON response for the history endpoint.
type transactionListResponse struct {
	Transactions []transactionResponse `json:"transactions"`
}

// Buy handles POST /users/{user_id}/portfolio/buy.
func (h *PortfolioHandler) Buy(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.executor.ExecuteBuy)
}

// Sell handles POST /users/{user_id}/portfolio/sell.
func (h *PortfolioHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.executor.ExecuteSell)
}

// tradeFunc is the shared shape of ExecuteBuy and ExecuteSell.
type tradeFunc func(ctx context.Context, userID, symbol string, quantity int64, price float64) (*service.TradeResult, error)

func (h *PortfolioHandler) trade(w http.ResponseWriter, r *http.Request, execute tradeFunc) {
	userID := chi.URLParam(r, "user_id")

	var req tradeRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := execute(r.Context(), userID, req.Symbol, req.Quantity, req.Price)
	if err != nil {
		mapTradeError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, tradeResponse{
		Balance:   result.Balance.InexactFloat64(),
		Positions: toPositionResponses(result.Positions),
	})
}

// GetPortfolio handles GET /users/{user_id}/portfolio.
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	view, err := h.executor.GetPortfolio(r.Context(), userID)
	if err != nil {
		mapTradeError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, portfolioResponse{
		UserID:    view.UserID,
		Balance:   view.Balance.InexactFloat64(),
		Positions: toPositionResponses(view.Positions),
	})
}

// ListTransactions handles GET /users/{user_id}/transactions.
func (h *PortfolioHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	symbol := r.URL.Query().Get("symbol")

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "limit must be a valid integer")
			return
		}
	}

	transactions, err := h.executor.GetTransactions(r.Context(), userID, symbol, limit)
	if err != nil {
		mapTradeError(w, err)
		return
	}

	records := make([]transactionResponse, len(transactions))
	for i, tx := range transactions {
		records[i] = transactionResponse{
			TransactionID: tx.TransactionID,
			Type:          string(tx.Type),
			Symbol:        tx.Symbol,
			Quantity:      tx.Quantity,
			Price:         tx.Price.InexactFloat64(),
			TotalAmount:   tx.TotalAmount.InexactFloat64(),
			Timestamp:     tx.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	WriteJSON(w, http.StatusOK, transactionListResponse{Transactions: records})
}

func toPositionResponses(positions []domain.Position) []positionResponse {
	result := make([]positionResponse, len(positions))
	for i, p := range positions {
		result[i] = positionResponse{
			Symbol:        p.Symbol,
			Quantity:      p.Quantity,
			AveragePrice:  p.AveragePrice.InexactFloat64(),
			TotalInvested: p.TotalInvested.InexactFloat64(),
		}
	}
	return result
}

// mapTradeError maps domain errors to HTTP responses for trading endpoints.
// Business-rule rejections carry a specific reason; only infrastructure
// faults collapse to a generic message.
func mapTradeError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		WriteError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, domain.ErrNoPortfolio):
		WriteError(w, http.StatusNotFound, "no_portfolio", err.Error())
	case errors.Is(err, domain.ErrPositionNotFound):
		WriteError(w, http.StatusNotFound, "position_not_found", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		WriteError(w, http.StatusConflict, "insufficient_funds", err.Error())
	case errors.Is(err, domain.ErrInsufficientShares):
		WriteError(w, http.StatusConflict, "insufficient_shares", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
