package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes buys from sells.
type TransactionType string

const (
	TransactionBuy  TransactionType = "BUY"
	TransactionSell TransactionType = "SELL"
)

// Transaction is an immutable record of one executed trade. Records are
// append-only: never updated, never deleted, independent of the current
// holdings state.
type Transaction struct {
	TransactionID string
	UserID        string
	Type          TransactionType
	Symbol        string
	Quantity      int64
	Price         decimal.Decimal
	TotalAmount   decimal.Decimal
	Timestamp     time.Time
}
