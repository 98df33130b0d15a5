package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

type stubProvider struct {
	calls int
}

func (p *stubProvider) Lookup(ctx context.Context, symbol string) (*domain.Quote, error) {
	p.calls++
	if symbol != "AAPL" {
		return nil, domain.ErrUnknownSymbol
	}
	return &domain.Quote{Symbol: "AAPL", Name: "Apple Inc.", Price: decimal.RequireFromString("190.5")}, nil
}

func TestNewQuoteCacheWithoutRedis(t *testing.T) {
	next := &stubProvider{}
	if got := NewQuoteCache(next, nil, time.Minute); got != domain.QuoteProvider(next) {
		t.Error("nil client should return the wrapped provider unchanged")
	}
}

func TestQuoteCacheFallsBackWhenRedisDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	next := &stubProvider{}
	c := NewQuoteCache(next, rdb, 0)

	quote, err := c.Lookup(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("lookup should succeed through the provider: %v", err)
	}
	if quote.Name != "Apple Inc." || next.calls != 1 {
		t.Errorf("unexpected result: %+v after %d calls", quote, next.calls)
	}

	if _, err := c.Lookup(context.Background(), "NOPE"); !errors.Is(err, domain.ErrUnknownSymbol) {
		t.Errorf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestQuoteKey(t *testing.T) {
	if got := quoteKey("MSFT"); got != "stock:MSFT:quote" {
		t.Errorf("quoteKey mismatch: got %s", got)
	}
}
