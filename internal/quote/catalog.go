package quote

import (
	"sort"
	"strings"
)

// Listing is a catalog entry for a tradable stock.
type Listing struct {
	Symbol   string
	Name     string
	Exchange string
}

// catalog is the known NSE universe. Quotes work for any valid symbol, but
// search and the curated listings only cover these.
var catalog = map[string]Listing{
	"RELIANCE":   {"RELIANCE", "Reliance Industries Ltd", "NSE"},
	"TCS":        {"TCS", "Tata Consultancy Services Ltd", "NSE"},
	"HDFCBANK":   {"HDFCBANK", "HDFC Bank Ltd", "NSE"},
	"INFY":       {"INFY", "Infosys Ltd", "NSE"},
	"HINDUNILVR": {"HINDUNILVR", "Hindustan Unilever Ltd", "NSE"},
	"ICICIBANK":  {"ICICIBANK", "ICICI Bank Ltd", "NSE"},
	"SBIN":       {"SBIN", "State Bank of India", "NSE"},
	"BHARTIARTL": {"BHARTIARTL", "Bharti Airtel Ltd", "NSE"},
	"KOTAKBANK":  {"KOTAKBANK", "Kotak Mahindra Bank Ltd", "NSE"},
	"ITC":        {"ITC", "ITC Ltd", "NSE"},
	"LT":         {"LT", "Larsen & Toubro Ltd", "NSE"},
	"HCLTECH":    {"HCLTECH", "HCL Technologies Ltd", "NSE"},
	"AXISBANK":   {"AXISBANK", "Axis Bank Ltd", "NSE"},
	"MARUTI":     {"MARUTI", "Maruti Suzuki India Ltd", "NSE"},
	"ASIANPAINT": {"ASIANPAINT", "Asian Paints Ltd", "NSE"},
	"SUNPHARMA":  {"SUNPHARMA", "Sun Pharmaceutical Industries Ltd", "NSE"},
	"TITAN":      {"TITAN", "Titan Company Ltd", "NSE"},
	"ULTRACEMCO": {"ULTRACEMCO", "UltraTech Cement Ltd", "NSE"},
	"WIPRO":      {"WIPRO", "Wipro Ltd", "NSE"},
	"NESTLEIND":  {"NESTLEIND", "Nestle India Ltd", "NSE"},
	"CIPLA":      {"CIPLA", "Cipla Ltd", "NSE"},
	"DRREDDY":    {"DRREDDY", "Dr Reddys Laboratories Ltd", "NSE"},
	"BIOCON":     {"BIOCON", "Biocon Ltd", "NSE"},
	"LUPIN":      {"LUPIN", "Lupin Ltd", "NSE"},
	"AUROPHARMA": {"AUROPHARMA", "Aurobindo Pharma Ltd", "NSE"},
}

// popularSymbols is the curated front-page set.
var popularSymbols = []string{
	"RELIANCE", "TCS", "HDFCBANK", "INFY", "HINDUNILVR", "ICICIBANK", "SBIN", "BHARTIARTL",
}

// trendingSymbols is the smaller high-activity set.
var trendingSymbols = []string{
	"RELIANCE", "TCS", "HDFCBANK", "INFY", "ICICIBANK",
}

// Lookup returns the catalog entry for a symbol, if listed.
func Lookup(symbol string) (Listing, bool) {
	l, ok := catalog[symbol]
	return l, ok
}

// Search returns catalog entries whose symbol or company name contains the
// query, case-insensitively, sorted by symbol. An empty query matches
// nothing.
func Search(query string) []Listing {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Listing{}
	}

	result := make([]Listing, 0)
	for _, l := range catalog {
		if strings.Contains(strings.ToLower(l.Symbol), q) ||
			strings.Contains(strings.ToLower(l.Name), q) {
			result = append(result, l)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})
	return result
}

// Popular returns the curated popular symbol list.
func Popular() []string {
	return append([]string(nil), popularSymbols...)
}

// Trending returns the curated trending symbol list.
func Trending() []string {
	return append([]string(nil), trendingSymbols...)
}
