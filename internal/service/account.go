package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/efreitasn/papertrade/internal/store"
	"github.com/shopspring/decimal"
)

// AccountService provisions paper-trading accounts and answers balance
// queries. Registration credentials live outside this service; all it needs
// is a user id.
type AccountService struct {
	store           store.Store
	startingBalance decimal.Decimal
	logger          *slog.Logger
}

// NewAccountService creates an AccountService. startingBalance is the
// virtual cash granted to every new account.
func NewAccountService(st store.Store, startingBalance decimal.Decimal, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:           st,
		startingBalance: startingBalance,
		logger:          logger,
	}
}

// Open creates an account with the default starting balance.
func (s *AccountService) Open(ctx context.Context, userID string) (*domain.Account, error) {
	if !userIDRegex.MatchString(userID) {
		return nil, &domain.ValidationError{
			Message: "user_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}

	account := &domain.Account{
		UserID:    userID,
		Balance:   s.startingBalance,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account opened",
		slog.String("user_id", userID),
		slog.String("balance", account.Balance.String()),
	)
	return account, nil
}

// GetBalance returns the user's account.
func (s *AccountService) GetBalance(ctx context.Context, userID string) (*domain.Account, error) {
	if !userIDRegex.MatchString(userID) {
		return nil, &domain.ValidationError{
			Message: "user_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	return s.store.GetAccount(ctx, userID)
}
