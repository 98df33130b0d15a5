package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"papertrade/internal/domain"
)

// DefaultQuoteTTL is how long a cached quote is served
const DefaultQuoteTTL = 5 * time.Minute

// QuoteCache serves quotes from Redis and falls back to the wrapped provider
type QuoteCache struct {
	next domain.QuoteProvider
	rdb  *redis.Client
	ttl  time.Duration
}

// NewQuoteCache wraps next with a Redis cache. A nil client returns next unchanged.
func NewQuoteCache(next domain.QuoteProvider, rdb *redis.Client, ttl time.Duration) domain.QuoteProvider {
	if rdb == nil {
		return next
	}
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	return &QuoteCache{next: next, rdb: rdb, ttl: ttl}
}

func quoteKey(symbol string) string {
	return fmt.Sprintf("stock:%s:quote", symbol)
}

// Lookup implements domain.QuoteProvider. Unknown symbols are not cached.
func (c *QuoteCache) Lookup(ctx context.Context, symbol string) (*domain.Quote, error) {
	key := quoteKey(symbol)

	cached, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var quote domain.Quote
		if err := json.Unmarshal(cached, &quote); err == nil {
			return &quote, nil
		}
		log.Printf("WARNING: Dropping unreadable cached quote %s", key)
	case !errors.Is(err, redis.Nil):
		log.Printf("WARNING: Quote cache read failed for %s: %v", symbol, err)
	}

	quote, err := c.next.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(quote)
	if err == nil {
		err = c.rdb.Set(ctx, key, payload, c.ttl).Err()
	}
	if err != nil {
		log.Printf("WARNING: Quote cache write failed for %s: %v", symbol, err)
	}

	return quote, nil
}
