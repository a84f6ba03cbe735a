package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// TestProperty_CashConservation verifies that every successful BUY debits
// exactly quantity×price and every successful SELL credits exactly
// quantity×price, with no rounding drift, and that the balance never goes
// negative under any generated sequence of trades.
func TestProperty_CashConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		exec, _ := newTestExecutor(t, "u1", "1000000")
		ctx := context.Background()

		expected := dec("1000000")
		symbols := []string{"AAA", "BBB", "CCC"}
		held := make(map[string]int64)

		numOps := rapid.IntRange(1, 40).Draw(t, "numOps")
		for i := 0; i < numOps; i++ {
			sym := symbols[rapid.IntRange(0, len(symbols)-1).Draw(t, fmt.Sprintf("sym-%d", i))]
			qty := rapid.Int64Range(1, 50).Draw(t, fmt.Sprintf("qty-%d", i))
			priceCents := rapid.Int64Range(1, 50000).Draw(t, fmt.Sprintf("price-%d", i))
			price := float64(priceCents) / 100
			priceDec := decimal.New(priceCents, -2)
			total := priceDec.Mul(decimal.NewFromInt(qty))

			if rapid.Bool().Draw(t, fmt.Sprintf("buy-%d", i)) {
				res, err := exec.ExecuteBuy(ctx, "u1", sym, qty, price)
				if expected.LessThan(total) {
					if err != domain.ErrInsufficientFunds {
						t.Fatalf("expected insufficient funds, got %v", err)
					}
					continue
				}
				if err != nil {
					t.Fatalf("unexpected buy error: %v", err)
				}
				expected = expected.Sub(total)
				held[sym] += qty
				if !res.Balance.Equal(expected) {
					t.Fatalf("buy conservation violated: got %s, want %s", res.Balance, expected)
				}
			} else {
				res, err := exec.ExecuteSell(ctx, "u1", sym, qty, price)
				if held[sym] < qty {
					switch err {
					case domain.ErrNoPortfolio, domain.ErrPositionNotFound, domain.ErrInsufficientShares:
						continue
					default:
						t.Fatalf("expected oversell rejection, got %v", err)
					}
				}
				if err != nil {
					t.Fatalf("unexpected sell error: %v", err)
				}
				expected = expected.Add(total)
				held[sym] -= qty
				if !res.Balance.Equal(expected) {
					t.Fatalf("sell conservation violated: got %s, want %s", res.Balance, expected)
				}
			}

			if expected.IsNegative() {
				t.Fatalf("balance went negative: %s", expected)
			}
		}
	})
}

// TestProperty_AppendOnlyLog verifies that after N successful trades
// exactly N records exist, each matching the executed trade.
func TestProperty_AppendOnlyLog(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		exec, st := newTestExecutor(t, "u1", "100000000")
		ctx := context.Background()

		type executed struct {
			txType domain.TransactionType
			symbol string
			qty    int64
			total  decimal.Decimal
		}
		var log []executed

		numOps := rapid.IntRange(1, 25).Draw(t, "numOps")
		for i := 0; i < numOps; i++ {
			qty := rapid.Int64Range(1, 20).Draw(t, fmt.Sprintf("qty-%d", i))
			priceCents := rapid.Int64Range(1, 10000).Draw(t, fmt.Sprintf("price-%d", i))
			price := float64(priceCents) / 100
			total := decimal.New(priceCents, -2).Mul(decimal.NewFromInt(qty))

			if _, err := exec.ExecuteBuy(ctx, "u1", "XYZ", qty, price); err != nil {
				t.Fatalf("unexpected buy error: %v", err)
			}
			log = append(log, executed{domain.TransactionBuy, "XYZ", qty, total})
		}

		txs, err := st.ListTransactions(ctx, "u1", "", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(txs) != len(log) {
			t.Fatalf("got %d records, want %d", len(txs), len(log))
		}
		// Records come back newest first; the log was appended oldest first.
		for i, tx := range txs {
			want := log[len(log)-1-i]
			if tx.Type != want.txType || tx.Symbol != want.symbol ||
				tx.Quantity != want.qty || !tx.TotalAmount.Equal(want.total) {
				t.Fatalf("record %d mismatch: got %+v, want %+v", i, tx, want)
			}
		}
	})
}

// TestProperty_InvestedInvariantAcrossTrades verifies that after any
// sequence of trades, every surviving position satisfies
// total_invested == quantity × average_price within epsilon, and no
// position has quantity 0.
func TestProperty_InvestedInvariantAcrossTrades(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		exec, st := newTestExecutor(t, "u1", "100000000")
		ctx := context.Background()

		numOps := rapid.IntRange(1, 40).Draw(t, "numOps")
		for i := 0; i < numOps; i++ {
			qty := rapid.Int64Range(1, 30).Draw(t, fmt.Sprintf("qty-%d", i))
			priceCents := rapid.Int64Range(1, 10000).Draw(t, fmt.Sprintf("price-%d", i))
			price := float64(priceCents) / 100

			if rapid.Bool().Draw(t, fmt.Sprintf("buy-%d", i)) {
				_, err := exec.ExecuteBuy(ctx, "u1", "XYZ", qty, price)
				if err != nil && err != domain.ErrInsufficientFunds {
					t.Fatalf("unexpected buy error: %v", err)
				}
			} else {
				_, err := exec.ExecuteSell(ctx, "u1", "XYZ", qty, price)
				switch err {
				case nil, domain.ErrNoPortfolio, domain.ErrPositionNotFound, domain.ErrInsufficientShares:
				default:
					t.Fatalf("unexpected sell error: %v", err)
				}
			}

			positions, err := st.GetPositions(ctx, "u1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, p := range positions {
				if p.Quantity <= 0 {
					t.Fatalf("zero-quantity position survived: %+v", p)
				}
				derived := p.AveragePrice.Mul(decimal.NewFromInt(p.Quantity))
				if !domain.WithinEpsilon(p.TotalInvested, derived) {
					t.Fatalf("invariant violated: invested=%s, qty×avg=%s", p.TotalInvested, derived)
				}
			}
		}
	})
}
