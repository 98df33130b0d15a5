package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time price for a symbol
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// QuoteProvider defines the interface for looking up stock quotes.
// Lookup returns ErrUnknownSymbol when the provider does not know the symbol.
type QuoteProvider interface {
	Lookup(ctx context.Context, symbol string) (*Quote, error)
}
