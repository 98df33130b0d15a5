package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is an immutable ledger entry. Shares is signed:
// positive for a buy, negative for a sell.
type Transaction struct {
	ID        int64           `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Shares    int64           `json:"shares"`
	Price     decimal.Decimal `json:"price"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
}

// TransactionType constants
const (
	TypeBuy  = "buy"
	TypeSell = "sell"
)

// Cost returns price × shares rounded to the cent: the cash a trade moves.
// Cash is stored with two decimal places, prices at full precision.
func Cost(price decimal.Decimal, shares int64) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(shares)).Round(2)
}

// Amount returns the signed cash value of the entry
func (t *Transaction) Amount() decimal.Decimal {
	return Cost(t.Price, t.Shares)
}

// IsBuy checks if the entry records a purchase
func (t *Transaction) IsBuy() bool {
	return t.Type == TypeBuy
}

// Holding is the net position of one symbol, derived from the ledger.
// Name and Price come from the symbol's most recent transaction.
type Holding struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Shares int64           `json:"shares"`
}

// Value returns shares × price
func (h Holding) Value() decimal.Decimal {
	return h.Price.Mul(decimal.NewFromInt(h.Shares))
}
