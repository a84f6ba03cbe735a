package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/efreitasn/papertrade/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

const (
	// DefaultTransactionLimit bounds a history listing when the caller
	// doesn't ask for a specific count.
	DefaultTransactionLimit = 50
	// MaxTransactionLimit is the largest count a caller may request.
	MaxTransactionLimit = 200
)

// TradeResult is the outcome of a successful buy or sell: the new cash
// balance and the full updated position set.
type TradeResult struct {
	Balance   decimal.Decimal
	Positions []domain.Position
}

// PortfolioView is the read model returned by GetPortfolio.
type PortfolioView struct {
	UserID    string
	Balance   decimal.Decimal
	Positions []domain.Position
}

// TradeExecutor executes buys and sells as single consistent units against
// a named user. All validation happens before the first mutation; once
// mutation begins, the store's atomic apply guarantees the balance, the
// position, and the transaction record land together or not at all.
type TradeExecutor struct {
	store  store.Store
	locks  *userLocks
	logger *slog.Logger
}

// NewTradeExecutor creates a TradeExecutor on the given store.
func NewTradeExecutor(st store.Store, logger *slog.Logger) *TradeExecutor {
	return &TradeExecutor{
		store:  st,
		locks:  newUserLocks(),
		logger: logger,
	}
}

// validateTradeInput normalizes and validates the shared buy/sell inputs.
// Quantity and price are always re-validated here even if a client already
// normalized them; client-computed totals are never trusted.
func validateTradeInput(userID, symbol string, quantity int64, price float64) (normSymbol string, priceDec decimal.Decimal, err error) {
	if !userIDRegex.MatchString(userID) {
		return "", decimal.Zero, &domain.ValidationError{
			Message: "user_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	normSymbol, err = domain.NormalizeSymbol(symbol)
	if err != nil {
		return "", decimal.Zero, err
	}
	if quantity <= 0 {
		return "", decimal.Zero, &domain.ValidationError{
			Message: "quantity must be a positive integer",
		}
	}
	priceDec, err = domain.ParseAmount(price)
	if err != nil {
		return "", decimal.Zero, &domain.ValidationError{
			Message: "price " + err.Error(),
		}
	}
	return normSymbol, priceDec, nil
}

// ExecuteBuy debits the user's cash by quantity×price, creates or
// re-averages the position, and appends a BUY transaction, all atomically.
func (e *TradeExecutor) ExecuteBuy(ctx context.Context, userID, symbol string, quantity int64, price float64) (*TradeResult, error) {
	sym, priceDec, err := validateTradeInput(userID, symbol, quantity, price)
	if err != nil {
		return nil, err
	}
	totalCost := priceDec.Mul(decimal.NewFromInt(quantity))

	// Serialize trades per user: without this, two concurrent buys could
	// both pass the sufficiency check against the same stale balance.
	unlock := e.locks.lock(userID)
	defer unlock()

	account, err := e.store.GetAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, e.persistence("load_account", userID, sym, quantity, priceDec, err)
	}

	if account.Balance.LessThan(totalCost) {
		return nil, domain.ErrInsufficientFunds
	}
	newBalance := account.Balance.Sub(totalCost)

	position, err := e.store.GetPosition(ctx, userID, sym)
	switch {
	case errors.Is(err, domain.ErrPositionNotFound):
		position = domain.NewPosition(sym, quantity, priceDec, totalCost)
	case err != nil:
		return nil, e.persistence("load_position", userID, sym, quantity, priceDec, err)
	default:
		position.AddLot(quantity, totalCost)
	}

	tx := e.newTransaction(userID, domain.TransactionBuy, sym, quantity, priceDec, totalCost)
	err = e.store.ApplyTrade(ctx, store.ApplyTradeArgs{
		UserID:      userID,
		NewBalance:  newBalance,
		Position:    position,
		Transaction: tx,
	})
	if err != nil {
		return nil, e.persistence("apply_trade", userID, sym, quantity, priceDec, err)
	}

	positions, err := e.store.GetPositions(ctx, userID)
	if err != nil {
		return nil, e.persistence("load_portfolio", userID, sym, quantity, priceDec, err)
	}
	return &TradeResult{Balance: newBalance, Positions: positions}, nil
}

// ExecuteSell credits the user's cash by quantity×price, reduces or removes
// the position, and appends a SELL transaction, all atomically.
func (e *TradeExecutor) ExecuteSell(ctx context.Context, userID, symbol string, quantity int64, price float64) (*TradeResult, error) {
	sym, priceDec, err := validateTradeInput(userID, symbol, quantity, price)
	if err != nil {
		return nil, err
	}
	totalRevenue := priceDec.Mul(decimal.NewFromInt(quantity))

	unlock := e.locks.lock(userID)
	defer unlock()

	positions, err := e.store.GetPositions(ctx, userID)
	if err != nil {
		return nil, e.persistence("load_portfolio", userID, sym, quantity, priceDec, err)
	}
	if len(positions) == 0 {
		return nil, domain.ErrNoPortfolio
	}

	var position *domain.Position
	for i := range positions {
		if positions[i].Symbol == sym {
			position = &positions[i]
			break
		}
	}
	if position == nil {
		return nil, domain.ErrPositionNotFound
	}
	if position.Quantity < quantity {
		return nil, domain.ErrInsufficientShares
	}

	account, err := e.store.GetAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, e.persistence("load_account", userID, sym, quantity, priceDec, err)
	}
	newBalance := account.Balance.Add(totalRevenue)

	args := store.ApplyTradeArgs{
		UserID:      userID,
		NewBalance:  newBalance,
		Transaction: e.newTransaction(userID, domain.TransactionSell, sym, quantity, priceDec, totalRevenue),
	}
	if position.ReduceLot(quantity) {
		args.RemoveSymbol = sym
	} else {
		args.Position = position
	}

	if err := e.store.ApplyTrade(ctx, args); err != nil {
		return nil, e.persistence("apply_trade", userID, sym, quantity, priceDec, err)
	}

	updated, err := e.store.GetPositions(ctx, userID)
	if err != nil {
		return nil, e.persistence("load_portfolio", userID, sym, quantity, priceDec, err)
	}
	return &TradeResult{Balance: newBalance, Positions: updated}, nil
}

// GetPortfolio returns the user's balance and position set. A user with no
// trades gets an empty set; the read never creates any record, so it is
// idempotent.
func (e *TradeExecutor) GetPortfolio(ctx context.Context, userID string) (*PortfolioView, error) {
	if !userIDRegex.MatchString(userID) {
		return nil, &domain.ValidationError{
			Message: "user_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}

	account, err := e.store.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	positions, err := e.store.GetPositions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PortfolioView{
		UserID:    userID,
		Balance:   account.Balance,
		Positions: positions,
	}, nil
}

// GetTransactions returns the user's transaction history, most recent
// first. symbolFilter narrows the listing to one symbol when non-empty.
// limit 0 means DefaultTransactionLimit.
func (e *TradeExecutor) GetTransactions(ctx context.Context, userID, symbolFilter string, limit int) ([]domain.Transaction, error) {
	if !userIDRegex.MatchString(userID) {
		return nil, &domain.ValidationError{
			Message: "user_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	if symbolFilter != "" {
		sym, err := domain.NormalizeSymbol(symbolFilter)
		if err != nil {
			return nil, err
		}
		symbolFilter = sym
	}
	if limit == 0 {
		limit = DefaultTransactionLimit
	}
	if limit < 0 || limit > MaxTransactionLimit {
		return nil, &domain.ValidationError{
			Message: "limit must be between 1 and 200",
		}
	}

	// Distinguish "no history" from "no such user".
	if _, err := e.store.GetAccount(ctx, userID); err != nil {
		return nil, err
	}

	return e.store.ListTransactions(ctx, userID, symbolFilter, limit)
}

func (e *TradeExecutor) newTransaction(userID string, txType domain.TransactionType, symbol string, quantity int64, price, total decimal.Decimal) domain.Transaction {
	return domain.Transaction{
		TransactionID: uuid.New().String(),
		UserID:        userID,
		Type:          txType,
		Symbol:        symbol,
		Quantity:      quantity,
		Price:         price,
		TotalAmount:   total,
		Timestamp:     time.Now().UTC(),
	}
}

// persistence logs a storage failure with full trade context and wraps it.
// By the time this fires the caller cannot tell whether a partial mutation
// occurred, so the log line is the reconciliation trail.
func (e *TradeExecutor) persistence(op, userID, symbol string, quantity int64, price decimal.Decimal, err error) error {
	e.logger.Error("trade persistence failure",
		slog.String("op", op),
		slog.String("user_id", userID),
		slog.String("symbol", symbol),
		slog.Int64("quantity", quantity),
		slog.String("price", price.String()),
		slog.String("error", err.Error()),
	)
	return &domain.PersistenceError{Op: op, Err: err}
}
