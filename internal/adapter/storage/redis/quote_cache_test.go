package redis_test

import (
	"context"
	"testing"
	"time"

	"crypto-exchange-wallet/internal/adapter/storage/redis"
	"crypto-exchange-wallet/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteCache_SetAndGet(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewQuoteCache(client)
	ctx := context.Background()

	quote := &domain.Quote{
		Price:     50000.25,
		Change24h: 1.7,
		FetchedAt: time.Now().UTC().Truncate(time.Second),
	}

	err := cache.Set(ctx, "bitcoin", quote, time.Minute)
	require.NoError(t, err)

	got, err := cache.Get(ctx, "bitcoin")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, quote.Price, got.Price)
	assert.Equal(t, quote.Change24h, got.Change24h)
	assert.True(t, quote.FetchedAt.Equal(got.FetchedAt))
}

func TestQuoteCache_Get_Miss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewQuoteCache(client)

	got, err := cache.Get(context.Background(), "ethereum")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestQuoteCache_TTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewQuoteCache(client)
	ctx := context.Background()

	err := cache.Set(ctx, "litecoin", &domain.Quote{Price: 80}, 30*time.Second)
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)

	got, err := cache.Get(ctx, "litecoin")
	require.NoError(t, err)
	assert.Nil(t, got, "expired quote should read as a miss")
}

func TestQuoteCache_Get_CorruptPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewQuoteCache(client)

	require.NoError(t, mr.Set("quote:dogecoin", "not-json"))

	_, err := cache.Get(context.Background(), "dogecoin")
	assert.Error(t, err)
}
