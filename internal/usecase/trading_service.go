package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

// TradingService handles buying, selling, quoting and cash top-ups.
// Every cash mutation runs in one store transaction that first locks the
// user's row, so concurrent requests for the same user are serialized.
type TradingService struct {
	store         domain.Store
	quotes        domain.QuoteProvider
	displayQuotes domain.QuoteProvider
}

// NewTradingService creates a new TradingService.
// quotes must be live: trades execute at the price it returns.
// displayQuotes serves the quote page and may be cached; nil means quotes.
func NewTradingService(store domain.Store, quotes, displayQuotes domain.QuoteProvider) *TradingService {
	if displayQuotes == nil {
		displayQuotes = quotes
	}
	return &TradingService{
		store:         store,
		quotes:        quotes,
		displayQuotes: displayQuotes,
	}
}

// Quote looks up a symbol for display. It never mutates state.
func (s *TradingService) Quote(ctx context.Context, rawSymbol string) (*domain.Quote, error) {
	symbol, err := domain.NormalizeSymbol(rawSymbol)
	if err != nil {
		return nil, err
	}
	return lookup(ctx, s.displayQuotes, symbol)
}

// Buy purchases shares at the current quote. No partial fills.
func (s *TradingService) Buy(ctx context.Context, userID uuid.UUID, rawSymbol, rawShares string) (*domain.Transaction, error) {
	symbol, err := domain.NormalizeSymbol(rawSymbol)
	if err != nil {
		return nil, err
	}
	shares, err := domain.ParseShares(rawShares)
	if err != nil {
		return nil, err
	}

	quote, err := lookup(ctx, s.quotes, symbol)
	if err != nil {
		return nil, err
	}
	cost := domain.Cost(quote.Price, shares)

	var recorded *domain.Transaction
	err = s.store.WithinTx(ctx, func(tx domain.Store) error {
		user, err := tx.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if !user.CanAfford(cost) {
			return domain.ErrInsufficientFunds
		}
		if err := tx.Users().UpdateCash(ctx, userID, user.Cash.Sub(cost)); err != nil {
			return err
		}
		recorded, err = NewLedger(tx.Transactions()).RecordBuy(ctx, userID, quote, shares)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[OK] BUY %d %s @ %s for user %s, cost %s", shares, symbol, quote.Price, userID, cost.StringFixed(2))
	return recorded, nil
}

// Sell sells shares at the current quote. Holdings are checked before the
// quote lookup and again under the user's row lock.
func (s *TradingService) Sell(ctx context.Context, userID uuid.UUID, rawSymbol, rawShares string) (*domain.Transaction, error) {
	symbol, err := domain.NormalizeSymbol(rawSymbol)
	if err != nil {
		return nil, err
	}
	shares, err := domain.ParseShares(rawShares)
	if err != nil {
		return nil, err
	}

	held, err := NewLedger(s.store.Transactions()).CurrentHoldings(ctx, userID, symbol)
	if err != nil {
		return nil, err
	}
	if held < shares {
		return nil, domain.ErrInsufficientHoldings
	}

	quote, err := lookup(ctx, s.quotes, symbol)
	if err != nil {
		return nil, err
	}
	proceeds := domain.Cost(quote.Price, shares)

	var recorded *domain.Transaction
	err = s.store.WithinTx(ctx, func(tx domain.Store) error {
		user, err := tx.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		balance := user.Cash.Add(proceeds)
		if balance.GreaterThanOrEqual(domain.MaxCash) {
			return domain.ErrBalanceLimit
		}
		recorded, err = NewLedger(tx.Transactions()).RecordSell(ctx, userID, quote, shares)
		if err != nil {
			return err
		}
		return tx.Users().UpdateCash(ctx, userID, balance)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[OK] SELL %d %s @ %s for user %s, proceeds %s", shares, symbol, quote.Price, userID, proceeds.StringFixed(2))
	return recorded, nil
}

// TopUp adds a positive integer amount to the user's cash and returns the
// new balance, which must stay below domain.MaxCash
func (s *TradingService) TopUp(ctx context.Context, userID uuid.UUID, rawAmount string) (decimal.Decimal, error) {
	amount, err := domain.ParseAmount(rawAmount)
	if err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err = s.store.WithinTx(ctx, func(tx domain.Store) error {
		user, err := tx.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		balance = user.Cash.Add(amount)
		if balance.GreaterThanOrEqual(domain.MaxCash) {
			return domain.ErrBalanceLimit
		}
		return tx.Users().UpdateCash(ctx, userID, balance)
	})
	if err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

// Portfolio returns the user's cash, holdings and net worth
func (s *TradingService) Portfolio(ctx context.Context, userID uuid.UUID) (*domain.Portfolio, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings, err := NewLedger(s.store.Transactions()).Portfolio(ctx, userID)
	if err != nil {
		return nil, err
	}

	return domain.NewPortfolio(user.Cash, holdings), nil
}

// History returns every transaction of the user, oldest first
func (s *TradingService) History(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	return NewLedger(s.store.Transactions()).History(ctx, userID)
}

// HeldSymbols returns the symbols offered on the sell form
func (s *TradingService) HeldSymbols(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return NewLedger(s.store.Transactions()).HeldSymbols(ctx, userID)
}

// lookup resolves symbol and pins the quote to the normalized symbol so
// ledger rows aggregate under one key
func lookup(ctx context.Context, quotes domain.QuoteProvider, symbol string) (*domain.Quote, error) {
	quote, err := quotes.Lookup(ctx, symbol)
	if err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}

	pinned := *quote
	pinned.Symbol = symbol
	return &pinned, nil
}
