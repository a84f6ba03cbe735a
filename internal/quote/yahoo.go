package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/efreitasn/papertrade/internal/domain"
)

const defaultYahooBaseURL = "https://query2.finance.yahoo.com"

type cachedQuote struct {
	quote   Quote
	fetched time.Time
}

// YahooSource fetches quotes from the Yahoo Finance v8 chart endpoint with
// a per-symbol TTL cache, so bursts of lookups for the same symbol don't
// hammer the upstream.
type YahooSource struct {
	cli     *http.Client
	baseURL string
	ttl     time.Duration

	mu    sync.RWMutex
	cache map[string]cachedQuote
}

// NewYahooSource creates a YahooSource with the given cache TTL and request
// timeout.
func NewYahooSource(ttl, timeout time.Duration) *YahooSource {
	return &YahooSource{
		cli:     &http.Client{Timeout: timeout},
		baseURL: defaultYahooBaseURL,
		ttl:     ttl,
		cache:   make(map[string]cachedQuote),
	}
}

// Get returns the current quote for a symbol, from cache when fresh.
func (s *YahooSource) Get(ctx context.Context, symbol string) (*Quote, error) {
	sym, err := domain.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	if c, ok := s.cache[sym]; ok && time.Since(c.fetched) < s.ttl {
		s.mu.RUnlock()
		q := c.quote
		return &q, nil
	}
	s.mu.RUnlock()

	q, err := s.fetch(ctx, sym)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[sym] = cachedQuote{quote: *q, fetched: time.Now()}
	s.mu.Unlock()

	return q, nil
}

func (s *YahooSource) fetch(ctx context.Context, symbol string) (*Quote, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1m&range=1d", s.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}
	req.Header.Set("User-Agent", "papertrade/1.0")

	resp, err := s.cli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: yahoo http %d", domain.ErrQuoteUnavailable, resp.StatusCode)
	}

	var raw struct {
		Chart struct {
			Result []struct {
				Meta struct {
					RegularMarketPrice   float64 `json:"regularMarketPrice"`
					ChartPreviousClose   float64 `json:"chartPreviousClose"`
					RegularMarketTime    int64   `json:"regularMarketTime"`
					RegularMarketVolume  int64   `json:"regularMarketVolume"`
					RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
					RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
				} `json:"meta"`
				Indicators struct {
					Quote []struct {
						Open []float64 `json:"open"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error any `json:"error"`
		} `json:"chart"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrQuoteUnavailable, err)
	}
	if len(raw.Chart.Result) == 0 || raw.Chart.Result[0].Meta.RegularMarketPrice == 0 {
		return nil, fmt.Errorf("%w: no result for %s", domain.ErrQuoteUnavailable, symbol)
	}

	meta := raw.Chart.Result[0].Meta
	q := &Quote{
		Symbol:        symbol,
		Price:         meta.RegularMarketPrice,
		High:          meta.RegularMarketDayHigh,
		Low:           meta.RegularMarketDayLow,
		Volume:        meta.RegularMarketVolume,
		PreviousClose: meta.ChartPreviousClose,
		AsOf:          time.Unix(meta.RegularMarketTime, 0).UTC(),
	}
	if quotes := raw.Chart.Result[0].Indicators.Quote; len(quotes) > 0 {
		for _, open := range quotes[0].Open {
			if open > 0 {
				q.Open = open
				break
			}
		}
	}
	if q.PreviousClose > 0 {
		q.Change = round2(q.Price - q.PreviousClose)
		q.ChangePercent = round2(q.Change / q.PreviousClose * 100)
	}
	return q, nil
}
