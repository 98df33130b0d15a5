package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeSymbol trims and uppercases a raw ticker symbol
func NormalizeSymbol(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if symbol == "" {
		return "", ErrEmptySymbol
	}
	return symbol, nil
}

// ParseShares parses a raw share count, which must be a positive integer
func ParseShares(raw string) (int64, error) {
	shares, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, ErrNonIntegerShares
	}
	if shares <= 0 {
		return 0, ErrNonPositiveShares
	}
	return shares, nil
}

// MaxCash is the exclusive upper bound of a cash balance (users.cash is NUMERIC(16,2))
var MaxCash = decimal.New(1, 14)

// ParseAmount parses a raw cash top-up amount, which must be a positive
// integer below MaxCash
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || amount <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	d := decimal.NewFromInt(amount)
	if d.GreaterThanOrEqual(MaxCash) {
		return decimal.Zero, ErrBalanceLimit
	}
	return d, nil
}
