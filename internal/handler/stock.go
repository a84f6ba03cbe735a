package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/efreitasn/papertrade/internal/quote"
	"github.com/go-chi/chi/v5"
)

// maxBatchSymbols bounds a single batch request.
const maxBatchSymbols = 20

// defaultBatchSymbols is the set served when a batch request names none.
var defaultBatchSymbols = []string{
	"RELIANCE", "TCS", "HDFCBANK", "INFY", "HINDUNILVR", "ICICIBANK", "SBIN",
}

// StockHandler handles HTTP requests for stock quote and discovery
// endpoints.
type StockHandler struct {
	quotes quote.Source
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(quotes quote.Source) *StockHandler {
	return &StockHandler{quotes: quotes}
}

// quoteResponse is the JSON shape of a single quote.
type quoteResponse struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	Price         float64 `json:"price"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        int64   `json:"volume"`
	PreviousClose float64 `json:"previous_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	AsOf          string  `json:"as_of"`
}

// quoteListResponse is the JSON response for batch, popular, and trending.
type quoteListResponse struct {
	Quotes []quoteResponse `json:"quotes"`
}

// listingResponse is a single search result.
type listingResponse struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
}

// searchResponse is the JSON response for GET /stocks/search.
type searchResponse struct {
	Results []listingResponse `json:"results"`
}

// GetQuote handles GET /stocks/{symbol}/quote.
func (h *StockHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	q, err := h.quotes.Get(r.Context(), symbol)
	if err != nil {
		mapQuoteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, toQuoteResponse(q))
}

// Search handles GET /stocks/search. Matching is case-insensitive over both
// symbols and company names.
func (h *StockHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "q must not be empty")
		return
	}

	listings := quote.Search(query)
	results := make([]listingResponse, len(listings))
	for i, l := range listings {
		results[i] = listingResponse{Symbol: l.Symbol, Name: l.Name, Exchange: l.Exchange}
	}
	WriteJSON(w, http.StatusOK, searchResponse{Results: results})
}

// GetBatch handles GET /stocks/batch. symbols is a comma-separated list; an
// empty list serves the default set.
func (h *StockHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	symbols := defaultBatchSymbols
	if raw := r.URL.Query().Get("symbols"); raw != "" {
		symbols = strings.Split(raw, ",")
	}
	if len(symbols) > maxBatchSymbols {
		WriteError(w, http.StatusBadRequest, "validation_error", "symbols must name at most 20 stocks")
		return
	}

	normalized := make([]string, len(symbols))
	for i, s := range symbols {
		sym, err := domain.NormalizeSymbol(s)
		if err != nil {
			mapQuoteError(w, err)
			return
		}
		normalized[i] = sym
	}

	h.writeQuoteList(w, r, normalized)
}

// GetPopular handles GET /stocks/popular.
func (h *StockHandler) GetPopular(w http.ResponseWriter, r *http.Request) {
	h.writeQuoteList(w, r, quote.Popular())
}

// GetTrending handles GET /stocks/trending.
func (h *StockHandler) GetTrending(w http.ResponseWriter, r *http.Request) {
	h.writeQuoteList(w, r, quote.Trending())
}

// writeQuoteList fetches quotes for a validated symbol list. Symbols the
// provider cannot quote right now are skipped rather than failing the whole
// listing; the response only errors when every fetch failed.
func (h *StockHandler) writeQuoteList(w http.ResponseWriter, r *http.Request, symbols []string) {
	quotes := make([]quoteResponse, 0, len(symbols))
	for _, sym := range symbols {
		q, err := h.quotes.Get(r.Context(), sym)
		if err != nil {
			continue
		}
		quotes = append(quotes, toQuoteResponse(q))
	}
	if len(quotes) == 0 && len(symbols) > 0 {
		WriteError(w, http.StatusBadGateway, "quote_unavailable", "no quotes available")
		return
	}

	WriteJSON(w, http.StatusOK, quoteListResponse{Quotes: quotes})
}

func toQuoteResponse(q *quote.Quote) quoteResponse {
	resp := quoteResponse{
		Symbol:        q.Symbol,
		Price:         q.Price,
		Open:          q.Open,
		High:          q.High,
		Low:           q.Low,
		Volume:        q.Volume,
		PreviousClose: q.PreviousClose,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		AsOf:          q.AsOf.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if l, ok := quote.Lookup(q.Symbol); ok {
		resp.Name = l.Name
	}
	return resp
}

func mapQuoteError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
	case errors.Is(err, domain.ErrQuoteUnavailable):
		WriteError(w, http.StatusBadGateway, "quote_unavailable", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
