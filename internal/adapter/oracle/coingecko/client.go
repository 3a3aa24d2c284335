package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crypto-exchange-wallet/config"
	"crypto-exchange-wallet/internal/core/domain"
	"crypto-exchange-wallet/internal/core/ports"
	"crypto-exchange-wallet/pkg/apperror"

	"github.com/rs/zerolog"
)

// Client implements ports.PriceOracle against the CoinGecko simple price
// API. Responses are cached in Redis; a quote older than the fresh TTL but
// inside the stale window is still served when the upstream is down.
type Client struct {
	baseURL  string
	http     *http.Client
	cache    ports.QuoteCache
	cacheTTL time.Duration
	staleTTL time.Duration
	log      zerolog.Logger
}

// NewClient creates a CoinGecko price oracle client.
func NewClient(cfg config.OracleConfig, cache ports.QuoteCache, log zerolog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     &http.Client{Timeout: cfg.Timeout},
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		staleTTL: cfg.StaleTTL,
		log:      log.With().Str("component", "oracle").Logger(),
	}
}

// simplePriceEntry mirrors one asset entry of the simple/price response.
type simplePriceEntry struct {
	USD       float64 `json:"usd"`
	Change24h float64 `json:"usd_24h_change"`
}

// Quote returns the current price for a single asset. Cache-fresh quotes
// are returned without touching the upstream.
func (c *Client) Quote(ctx context.Context, asset domain.SupportedAsset) (*domain.Quote, error) {
	now := time.Now().UTC()

	cached, err := c.cache.Get(ctx, asset.OracleID)
	if err != nil {
		c.log.Warn().Err(err).Str("asset", asset.Symbol).Msg("quote cache read failed")
	}
	if cached != nil && cached.Age(now) <= c.cacheTTL {
		return cached, nil
	}

	fetched, err := c.fetch(ctx, []string{asset.OracleID})
	if err != nil {
		// Upstream down: fall back to a stale cached quote inside the window.
		if cached != nil && cached.Age(now) <= c.staleTTL {
			c.log.Warn().Err(err).Str("asset", asset.Symbol).Msg("serving stale quote, upstream unavailable")
			return cached, nil
		}
		return nil, apperror.ErrPriceUnavailable(err)
	}

	quote, ok := fetched[asset.OracleID]
	if !ok {
		return nil, apperror.ErrPriceUnavailable(fmt.Errorf("no price returned for %s", asset.OracleID))
	}

	c.storeQuote(ctx, asset.OracleID, &quote)
	return &quote, nil
}

// Quotes returns current prices for the whole supported asset catalog,
// keyed by symbol.
func (c *Client) Quotes(ctx context.Context) (map[string]domain.Quote, error) {
	now := time.Now().UTC()

	ids := make([]string, 0, len(domain.SupportedAssets))
	cached := make(map[string]*domain.Quote, len(domain.SupportedAssets))
	allFresh := true
	for _, asset := range domain.SupportedAssets {
		ids = append(ids, asset.OracleID)
		q, err := c.cache.Get(ctx, asset.OracleID)
		if err != nil {
			c.log.Warn().Err(err).Str("asset", asset.Symbol).Msg("quote cache read failed")
		}
		cached[asset.OracleID] = q
		if q == nil || q.Age(now) > c.cacheTTL {
			allFresh = false
		}
	}

	if allFresh {
		return c.bySymbol(cached), nil
	}

	fetched, err := c.fetch(ctx, ids)
	if err != nil {
		// Fall back only if every asset has a usable stale quote.
		for _, asset := range domain.SupportedAssets {
			q := cached[asset.OracleID]
			if q == nil || q.Age(now) > c.staleTTL {
				return nil, apperror.ErrUpstreamUnavailable(err)
			}
		}
		c.log.Warn().Err(err).Msg("serving stale quotes, upstream unavailable")
		return c.bySymbol(cached), nil
	}

	result := make(map[string]domain.Quote, len(domain.SupportedAssets))
	for _, asset := range domain.SupportedAssets {
		quote, ok := fetched[asset.OracleID]
		if !ok {
			return nil, apperror.ErrPriceUnavailable(fmt.Errorf("no price returned for %s", asset.OracleID))
		}
		c.storeQuote(ctx, asset.OracleID, &quote)
		result[asset.Symbol] = quote
	}
	return result, nil
}

// fetch calls the simple/price endpoint for the given oracle IDs.
func (c *Client) fetch(ctx context.Context, ids []string) (map[string]domain.Quote, error) {
	endpoint := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true",
		c.baseURL, url.QueryEscape(strings.Join(ids, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price upstream returned status %d", resp.StatusCode)
	}

	var body map[string]simplePriceEntry
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding price response: %w", err)
	}

	now := time.Now().UTC()
	quotes := make(map[string]domain.Quote, len(body))
	for id, entry := range body {
		quotes[id] = domain.Quote{
			Price:     entry.USD,
			Change24h: entry.Change24h,
			FetchedAt: now,
		}
	}
	return quotes, nil
}

func (c *Client) storeQuote(ctx context.Context, oracleID string, quote *domain.Quote) {
	if err := c.cache.Set(ctx, oracleID, quote, c.staleTTL); err != nil {
		c.log.Warn().Err(err).Str("oracle_id", oracleID).Msg("quote cache write failed")
	}
}

func (c *Client) bySymbol(cached map[string]*domain.Quote) map[string]domain.Quote {
	result := make(map[string]domain.Quote, len(cached))
	for _, asset := range domain.SupportedAssets {
		if q := cached[asset.OracleID]; q != nil {
			result[asset.Symbol] = *q
		}
	}
	return result
}
