package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crypto-exchange-wallet/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// QuoteCache implements ports.QuoteCache using Redis. Quotes are stored
// JSON-encoded under a key per oracle asset ID.
type QuoteCache struct {
	client *goredis.Client
	prefix string
}

// NewQuoteCache creates a new Redis-backed quote cache.
func NewQuoteCache(client *goredis.Client) *QuoteCache {
	return &QuoteCache{
		client: client,
		prefix: "quote:",
	}
}

// Get retrieves a cached quote by oracle asset ID.
// Returns nil, nil if the key does not exist.
func (c *QuoteCache) Get(ctx context.Context, oracleID string) (*domain.Quote, error) {
	val, err := c.client.Get(ctx, c.prefix+oracleID).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis quote get: %w", err)
	}

	var quote domain.Quote
	if err := json.Unmarshal(val, &quote); err != nil {
		return nil, fmt.Errorf("unmarshal cached quote: %w", err)
	}
	return &quote, nil
}

// Set stores a quote in the cache with TTL.
func (c *QuoteCache) Set(ctx context.Context, oracleID string, quote *domain.Quote, ttl time.Duration) error {
	val, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+oracleID, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis quote set: %w", err)
	}
	return nil
}
