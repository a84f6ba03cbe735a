package domain

import "github.com/shopspring/decimal"

// Position represents a user's holding in a single stock symbol.
// A position with quantity 0 must not exist in a portfolio: the store
// removes it instead of keeping a zeroed entry, so "does the user own X"
// reduces to "a position for X exists".
type Position struct {
	Symbol        string
	Quantity      int64
	AveragePrice  decimal.Decimal
	TotalInvested decimal.Decimal
}

// NewPosition creates a position for a first buy of a symbol.
func NewPosition(symbol string, quantity int64, price, totalCost decimal.Decimal) *Position {
	return &Position{
		Symbol:        symbol,
		Quantity:      quantity,
		AveragePrice:  price,
		TotalInvested: totalCost,
	}
}

// AddLot folds an additional buy into the position. TotalInvested is
// maintained incrementally and the average cost basis is recomputed as
// the invested amount over the new total quantity.
func (p *Position) AddLot(quantity int64, totalCost decimal.Decimal) {
	p.Quantity += quantity
	p.TotalInvested = p.TotalInvested.Add(totalCost)
	p.AveragePrice = p.TotalInvested.Div(decimal.NewFromInt(p.Quantity))
}

// ReduceLot removes quantity shares from the position. The average price is
// unchanged on a sell; the invested amount is recomputed from it. Realized
// profit or loss is not tracked here, only implied by the cash delta.
// Returns true when the position is emptied and must be removed.
func (p *Position) ReduceLot(quantity int64) bool {
	p.Quantity -= quantity
	p.TotalInvested = p.AveragePrice.Mul(decimal.NewFromInt(p.Quantity))
	return p.Quantity == 0
}
