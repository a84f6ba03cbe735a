package domain

import (
	"regexp"
	"strings"
)

var symbolRegex = regexp.MustCompile(`^[A-Z]{1,10}$`)

// NormalizeSymbol trims and uppercases a stock symbol and validates it
// against ^[A-Z]{1,10}$. Matching is case-insensitive everywhere because
// symbols are normalized once, here, at the boundary.
func NormalizeSymbol(s string) (string, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	if !symbolRegex.MatchString(up) {
		return "", &ValidationError{
			Message: "symbol must match ^[A-Z]{1,10}$ after uppercasing",
		}
	}
	return up, nil
}
