package handler

import (
	"errors"
	"net/http"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/efreitasn/papertrade/internal/service"
	"github.com/go-chi/chi/v5"
)

// AccountHandler handles HTTP requests for account endpoints.
type AccountHandler struct {
	accountSvc *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc *service.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// openAccountRequest is the JSON request body for POST /users.
type openAccountRequest struct {
	UserID string `json:"user_id"`
}

// accountResponse is the JSON response for account endpoints.
type accountResponse struct {
	UserID    string  `json:"user_id"`
	Balance   float64 `json:"balance"`
	CreatedAt string  `json:"created_at"`
}

// Open handles POST /users.
func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openAccountRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	account, err := h.accountSvc.Open(r.Context(), req.UserID)
	if err != nil {
		mapAccountError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, accountResponse{
		UserID:    account.UserID,
		Balance:   account.Balance.InexactFloat64(),
		CreatedAt: account.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	})
}

// GetBalance handles GET /users/{user_id}/balance.
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	account, err := h.accountSvc.GetBalance(r.Context(), userID)
	if err != nil {
		mapAccountError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, accountResponse{
		UserID:    account.UserID,
		Balance:   account.Balance.InexactFloat64(),
		CreatedAt: account.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	})
}

// mapAccountError maps domain errors to HTTP responses for account endpoints.
func mapAccountError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrUserAlreadyExists):
		WriteError(w, http.StatusConflict, "user_already_exists", err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		WriteError(w, http.StatusNotFound, "user_not_found", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
