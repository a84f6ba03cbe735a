package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a user's cash balance. The balance is mutated only through
// trade execution and never goes negative.
type Account struct {
	UserID    string
	Balance   decimal.Decimal
	CreatedAt time.Time
}
