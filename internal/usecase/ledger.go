package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"papertrade/internal/domain"
)

// Ledger records buy/sell events and answers aggregate queries over them.
// It never touches cash; callers debit or credit the user in the same
// database transaction.
type Ledger struct {
	transactions domain.TransactionRepository
}

// NewLedger creates a ledger over a transaction repository
func NewLedger(transactions domain.TransactionRepository) *Ledger {
	return &Ledger{transactions: transactions}
}

// RecordBuy appends a buy of shares at the quoted price
func (l *Ledger) RecordBuy(ctx context.Context, userID uuid.UUID, quote *domain.Quote, shares int64) (*domain.Transaction, error) {
	if shares <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	return l.append(ctx, &domain.Transaction{
		UserID: userID,
		Symbol: quote.Symbol,
		Name:   quote.Name,
		Shares: shares,
		Price:  quote.Price,
		Type:   domain.TypeBuy,
	})
}

// RecordSell appends a sell of shares at the quoted price. The sell is
// rejected without mutation when it exceeds current holdings.
func (l *Ledger) RecordSell(ctx context.Context, userID uuid.UUID, quote *domain.Quote, shares int64) (*domain.Transaction, error) {
	if shares <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	held, err := l.CurrentHoldings(ctx, userID, quote.Symbol)
	if err != nil {
		return nil, err
	}
	if held < shares {
		return nil, domain.ErrInsufficientHoldings
	}

	return l.append(ctx, &domain.Transaction{
		UserID: userID,
		Symbol: quote.Symbol,
		Name:   quote.Name,
		Shares: -shares,
		Price:  quote.Price,
		Type:   domain.TypeSell,
	})
}

func (l *Ledger) append(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if err := l.transactions.Append(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record %s of %s: %w", tx.Type, tx.Symbol, err)
	}
	return tx, nil
}

// CurrentHoldings returns the net shares of symbol, 0 if never traded
func (l *Ledger) CurrentHoldings(ctx context.Context, userID uuid.UUID, symbol string) (int64, error) {
	shares, err := l.transactions.SumShares(ctx, userID, symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to get holdings of %s: %w", symbol, err)
	}
	return shares, nil
}

// Portfolio returns every symbol with non-zero holdings
func (l *Ledger) Portfolio(ctx context.Context, userID uuid.UUID) ([]domain.Holding, error) {
	holdings, err := l.transactions.Holdings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return holdings, nil
}

// History returns all transactions in recording order
func (l *Ledger) History(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	history, err := l.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return history, nil
}

// HeldSymbols returns the symbols the user currently holds
func (l *Ledger) HeldSymbols(ctx context.Context, userID uuid.UUID) ([]string, error) {
	holdings, err := l.Portfolio(ctx, userID)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if h.Shares > 0 {
			symbols = append(symbols, h.Symbol)
		}
	}
	return symbols, nil
}
