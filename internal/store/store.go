package store

import (
	"context"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/shopspring/decimal"
)

// ApplyTradeArgs carries the full set of writes for one executed trade.
// Exactly one of Position / RemoveSymbol is set: a non-nil Position is
// upserted, a non-empty RemoveSymbol deletes that position (a fully sold
// position is removed, never zeroed).
type ApplyTradeArgs struct {
	UserID       string
	NewBalance   decimal.Decimal
	Position     *domain.Position
	RemoveSymbol string
	Transaction  domain.Transaction
}

// Store is the persistence port for accounts, positions, and the
// transaction log. ApplyTrade must commit the balance, the position change,
// and the transaction record atomically: a trade either fully persists or
// leaves no trace.
type Store interface {
	// CreateAccount adds a new account. Returns domain.ErrUserAlreadyExists
	// if the user id is taken.
	CreateAccount(ctx context.Context, a *domain.Account) error

	// GetAccount retrieves an account by user id. Returns
	// domain.ErrUserNotFound if absent. A corrupted stored balance is reset
	// to the store's default rather than propagated.
	GetAccount(ctx context.Context, userID string) (*domain.Account, error)

	// GetPositions returns all positions for a user, sorted by symbol.
	// Returns an empty slice (and never writes) when the user holds nothing.
	GetPositions(ctx context.Context, userID string) ([]domain.Position, error)

	// GetPosition returns the user's position in one symbol, or
	// domain.ErrPositionNotFound.
	GetPosition(ctx context.Context, userID, symbol string) (*domain.Position, error)

	// ApplyTrade atomically commits a trade's writes.
	ApplyTrade(ctx context.Context, args ApplyTradeArgs) error

	// ListTransactions returns a user's transactions, most recent first,
	// optionally filtered by symbol, bounded to at most limit records.
	ListTransactions(ctx context.Context, userID, symbol string, limit int) ([]domain.Transaction, error)
}
