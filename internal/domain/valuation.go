package domain

import "github.com/shopspring/decimal"

// Portfolio is the derived view of a user's account
type Portfolio struct {
	Cash     decimal.Decimal `json:"cash"`
	Holdings []Holding       `json:"holdings"`
	Total    decimal.Decimal `json:"total"`
}

// NewPortfolio builds a portfolio and values it with NetWorth
func NewPortfolio(cash decimal.Decimal, holdings []Holding) *Portfolio {
	if holdings == nil {
		holdings = []Holding{}
	}
	return &Portfolio{
		Cash:     cash,
		Holdings: holdings,
		Total:    NetWorth(cash, holdings),
	}
}

// NetWorth returns cash + Σ(shares × price) over holdings.
// With no holdings the result is cash.
func NetWorth(cash decimal.Decimal, holdings []Holding) decimal.Decimal {
	total := cash
	for _, h := range holdings {
		total = total.Add(h.Value())
	}
	return total
}
