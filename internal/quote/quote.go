// Package quote provides price discovery for stock symbols. Quotes are
// display data only: trade execution never reads a quote directly, the
// caller resolves a price first and passes it in explicitly.
package quote

import (
	"context"
	"time"
)

// Quote is a point-in-time market snapshot for one symbol.
type Quote struct {
	Symbol        string
	Price         float64
	Open          float64
	High          float64
	Low           float64
	Volume        int64
	PreviousClose float64
	Change        float64
	ChangePercent float64
	AsOf          time.Time
}

// Source returns the current quote for a symbol. Implementations fail with
// domain.ErrQuoteUnavailable (possibly wrapped) when the symbol is unknown
// or the upstream provider is unreachable.
type Source interface {
	Get(ctx context.Context, symbol string) (*Quote, error)
}
