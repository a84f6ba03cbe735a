package quote

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/efreitasn/papertrade/internal/domain"
)

// simBasePrices seeds the simulated market. Symbols outside the list get a
// generic base of 1000.
var simBasePrices = map[string]float64{
	"RELIANCE":   2450,
	"TCS":        3400,
	"HDFCBANK":   1650,
	"INFY":       1550,
	"HINDUNILVR": 2450,
	"ICICIBANK":  950,
	"SBIN":       600,
	"BHARTIARTL": 1150,
	"KOTAKBANK":  1750,
	"ITC":        430,
	"LT":         3200,
	"HCLTECH":    1300,
	"AXISBANK":   1050,
	"MARUTI":     10500,
	"ASIANPAINT": 2900,
	"SUNPHARMA":  1250,
	"TITAN":      3500,
	"ULTRACEMCO": 8500,
	"WIPRO":      450,
	"NESTLEIND":  24500,
	"CIPLA":      1200,
	"DRREDDY":    5500,
	"BIOCON":     250,
	"LUPIN":      1300,
	"AUROPHARMA": 600,
}

const (
	simDefaultBase  = 1000
	simVolatility   = 0.05  // ±5% around the base
	simMinChangePct = 0.005 // changes below 0.5% are bumped so they register
)

// SimSource generates plausible quotes around fixed base prices with a
// bounded random walk. It is the default provider for local development and
// tests, where hitting a real market-data API is unwanted.
type SimSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimSource creates a SimSource seeded from the current time.
func NewSimSource() *SimSource {
	return &SimSource{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Get returns a simulated quote for the symbol.
func (s *SimSource) Get(_ context.Context, symbol string) (*Quote, error) {
	sym, err := domain.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	base, ok := simBasePrices[sym]
	if !ok {
		base = simDefaultBase
	}

	s.mu.Lock()
	r := s.rng.Float64()
	r2 := s.rng.Float64()
	up := s.rng.Intn(2) == 0
	s.mu.Unlock()

	change := (r - 0.5) * 2 * simVolatility * base
	minChange := base * simMinChangePct
	if math.Abs(change) < minChange {
		change = minChange + r2*minChange
		if !up {
			change = -change
		}
	}
	change = round2(change)
	price := round2(base + change)

	q := &Quote{
		Symbol:        sym,
		Price:         price,
		Open:          base,
		High:          round2(math.Max(base, price) * 1.01),
		Low:           round2(math.Min(base, price) * 0.99),
		Volume:        100000 + int64(r*900000),
		PreviousClose: base,
		Change:        change,
		ChangePercent: round2(change / base * 100),
		AsOf:          time.Now().UTC(),
	}
	if q.Price <= 0 {
		// Can't happen with the configured volatility, but a quote must
		// never report a non-positive price.
		return nil, fmt.Errorf("%w: degenerate simulated price", domain.ErrQuoteUnavailable)
	}
	return q, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
