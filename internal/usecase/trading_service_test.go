package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTradingScenario(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	quotes := newFakeQuotes(map[string]string{"AAA": "50"})
	svc := NewTradingService(store, quotes, nil)
	userID := store.addUser(10000)

	if _, err := svc.Buy(ctx, userID, "aaa", "10"); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if got := store.cash(userID); !got.Equal(dec("9500")) {
		t.Errorf("cash after buy: got %s, want 9500", got)
	}

	quotes.set("AAA", "60")
	if _, err := svc.Sell(ctx, userID, "AAA", "5"); err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if got := store.cash(userID); !got.Equal(dec("9800")) {
		t.Errorf("cash after sell: got %s, want 9800", got)
	}

	portfolio, err := svc.Portfolio(ctx, userID)
	if err != nil {
		t.Fatalf("portfolio failed: %v", err)
	}
	if len(portfolio.Holdings) != 1 || portfolio.Holdings[0].Shares != 5 {
		t.Fatalf("holdings mismatch: %+v", portfolio.Holdings)
	}
	if !portfolio.Total.Equal(dec("10100")) {
		t.Errorf("net worth: got %s, want 10100", portfolio.Total)
	}

	_, err = svc.Sell(ctx, userID, "AAA", "10")
	if !errors.Is(err, domain.ErrInsufficientHoldings) {
		t.Fatalf("expected ErrInsufficientHoldings, got %v", err)
	}
	if got := store.cash(userID); !got.Equal(dec("9800")) {
		t.Errorf("cash changed by rejected sell: %s", got)
	}

	history, err := svc.History(ctx, userID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length: got %d, want 2", len(history))
	}
	if history[0].Type != domain.TypeBuy || history[1].Shares != -5 {
		t.Errorf("history order or sign wrong: %+v %+v", history[0], history[1])
	}
}

func TestBuyRejections(t *testing.T) {
	tests := []struct {
		name    string
		symbol  string
		shares  string
		wantErr error
	}{
		{"empty symbol", " ", "1", domain.ErrEmptySymbol},
		{"non-integer shares", "AAA", "1.5", domain.ErrNonIntegerShares},
		{"zero shares", "AAA", "0", domain.ErrNonPositiveShares},
		{"unknown symbol", "ZZZZ", "1", domain.ErrUnknownSymbol},
		{"insufficient funds", "AAA", "201", domain.ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc := NewTradingService(store, newFakeQuotes(map[string]string{"AAA": "50"}), nil)
			userID := store.addUser(10000)

			_, err := svc.Buy(context.Background(), userID, tt.symbol, tt.shares)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error mismatch: got %v, want %v", err, tt.wantErr)
			}
			if got := store.cash(userID); !got.Equal(dec("10000")) {
				t.Errorf("cash changed: %s", got)
			}
			if n := store.ledgerLen(); n != 0 {
				t.Errorf("ledger rows written: %d", n)
			}
		})
	}
}

func TestBuyExactBalance(t *testing.T) {
	store := newMemStore()
	svc := NewTradingService(store, newFakeQuotes(map[string]string{"AAA": "50"}), nil)
	userID := store.addUser(10000)

	if _, err := svc.Buy(context.Background(), userID, "AAA", "200"); err != nil {
		t.Fatalf("buy of exact balance failed: %v", err)
	}
	if got := store.cash(userID); !got.IsZero() {
		t.Errorf("cash: got %s, want 0", got)
	}
}

func TestBuyRollsBackWhenLedgerWriteFails(t *testing.T) {
	store := newMemStore()
	store.failAppend = true
	svc := NewTradingService(store, newFakeQuotes(map[string]string{"AAA": "50"}), nil)
	userID := store.addUser(10000)

	if _, err := svc.Buy(context.Background(), userID, "AAA", "1"); err == nil {
		t.Fatal("expected error")
	}
	if got := store.cash(userID); !got.Equal(dec("10000")) {
		t.Errorf("cash not rolled back: %s", got)
	}
}

func TestSellWithoutHoldingsSkipsQuote(t *testing.T) {
	store := newMemStore()
	quotes := newFakeQuotes(map[string]string{"AAA": "50"})
	svc := NewTradingService(store, quotes, nil)
	userID := store.addUser(10000)

	_, err := svc.Sell(context.Background(), userID, "AAA", "1")
	if !errors.Is(err, domain.ErrInsufficientHoldings) {
		t.Fatalf("expected ErrInsufficientHoldings, got %v", err)
	}
	if quotes.calls != 0 {
		t.Errorf("quote provider called %d times", quotes.calls)
	}
}

func TestQuoteProviderFailureIsUnavailable(t *testing.T) {
	store := newMemStore()
	quotes := newFakeQuotes(nil)
	quotes.err = context.DeadlineExceeded
	svc := NewTradingService(store, quotes, nil)
	userID := store.addUser(10000)

	_, err := svc.Buy(context.Background(), userID, "AAA", "1")
	if !errors.Is(err, domain.ErrQuoteUnavailable) {
		t.Fatalf("expected ErrQuoteUnavailable, got %v", err)
	}
}

func TestQuoteUsesDisplayProvider(t *testing.T) {
	live := newFakeQuotes(map[string]string{"AAA": "50"})
	display := newFakeQuotes(map[string]string{"AAA": "49.5"})
	svc := NewTradingService(newMemStore(), live, display)

	quote, err := svc.Quote(context.Background(), " aaa")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if quote.Symbol != "AAA" || !quote.Price.Equal(dec("49.5")) {
		t.Errorf("unexpected quote: %+v", quote)
	}
	if live.calls != 0 {
		t.Error("quote page should not hit the live provider")
	}
}

func TestTopUp(t *testing.T) {
	store := newMemStore()
	svc := NewTradingService(store, newFakeQuotes(nil), nil)
	userID := store.addUser(100)

	balance, err := svc.TopUp(context.Background(), userID, "250")
	if err != nil {
		t.Fatalf("top-up failed: %v", err)
	}
	if !balance.Equal(dec("350")) || !store.cash(userID).Equal(dec("350")) {
		t.Errorf("balance mismatch: got %s", balance)
	}

	for _, raw := range []string{"0", "-5", "1.5", "abc"} {
		if _, err := svc.TopUp(context.Background(), userID, raw); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("TopUp(%q): expected ErrInvalidAmount, got %v", raw, err)
		}
	}
	if got := store.cash(userID); !got.Equal(dec("350")) {
		t.Errorf("rejected top-ups changed cash: %s", got)
	}
}

func TestConcurrentBuysNeverOverdraw(t *testing.T) {
	store := newMemStore()
	svc := NewTradingService(store, newFakeQuotes(map[string]string{"AAA": "60"}), nil)
	userID := store.addUser(10000)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Buy(context.Background(), userID, "AAA", "100"); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one buy to succeed, got %d", succeeded)
	}
	if got := store.cash(userID); !got.Equal(dec("4000")) {
		t.Errorf("cash: got %s, want 4000", got)
	}
}

func TestTradesSettleInWholeCents(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	quotes := newFakeQuotes(map[string]string{"AAA": "33.3333"})
	svc := NewTradingService(store, quotes, nil)
	userID := store.addUser(100)

	tx, err := svc.Buy(ctx, userID, "AAA", "1")
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if !tx.Price.Equal(dec("33.3333")) {
		t.Errorf("recorded price: got %s, want the quoted 33.3333", tx.Price)
	}
	if got := store.cash(userID); !got.Equal(dec("66.67")) {
		t.Errorf("cash after buy: got %s, want 66.67", got)
	}

	quotes.set("AAA", "10.005")
	if _, err := svc.Sell(ctx, userID, "AAA", "1"); err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if got := store.cash(userID); !got.Equal(dec("76.68")) {
		t.Errorf("cash after sell: got %s, want 76.68", got)
	}

	// cash moved by the ledger equals the change in balance
	history, err := svc.History(ctx, userID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	net := decimal.NewFromInt(100)
	for _, h := range history {
		net = net.Sub(h.Amount())
	}
	if got := store.cash(userID); !got.Equal(net) {
		t.Errorf("cash %s does not match ledger total %s", got, net)
	}
}

func TestTopUpBalanceLimit(t *testing.T) {
	store := newMemStore()
	svc := NewTradingService(store, newFakeQuotes(nil), nil)
	userID := store.addUser(100)

	for _, raw := range []string{"9223372036854775807", "100000000000000"} {
		_, err := svc.TopUp(context.Background(), userID, raw)
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("TopUp(%q): expected an invalid-amount error, got %v", raw, err)
		}
	}

	// below the limit on its own, above it once added to the balance
	_, err := svc.TopUp(context.Background(), userID, "99999999999950")
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Status != 400 {
		t.Fatalf("expected a 400 apology, got %v", err)
	}
	if got := store.cash(userID); !got.Equal(dec("100")) {
		t.Errorf("rejected top-up changed cash: %s", got)
	}
}

func TestQuoteUnknownSymbol(t *testing.T) {
	store := newMemStore()
	svc := NewTradingService(store, newFakeQuotes(map[string]string{"AAA": "50"}), nil)

	quote, err := svc.Quote(context.Background(), "zzzz")
	if !errors.Is(err, domain.ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
	if quote != nil {
		t.Errorf("no quote expected, got %+v", quote)
	}
	if n := store.ledgerLen(); n != 0 {
		t.Errorf("quote wrote %d ledger rows", n)
	}
}
