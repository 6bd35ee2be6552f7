// Package gamma is the market data source: an HTTP client for the
// Polymarket Gamma and CLOB APIs. All exported fetches degrade to empty
// results on transport errors or non-2xx statuses; a failed fetch means "no
// data this cycle", never an aborted scan.
package gamma

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/polyarb/arb-monitor/pkg/cache"
	"github.com/polyarb/arb-monitor/pkg/types"
	"go.uber.org/zap"
)

// MaxPageSize is the maximum number of markets per Gamma API request.
const MaxPageSize = 100

// tokenCacheTTL bounds how long a market's token-id mapping is reused.
const tokenCacheTTL = 24 * time.Hour

// Client fetches market and price data.
type Client struct {
	gammaURL   string
	clobURL    string
	httpClient *http.Client
	cache      cache.Cache
	logger     *zap.Logger
}

// Config holds client configuration. Cache is optional; when present,
// token-id lookups are cached per market.
type Config struct {
	GammaURL string
	ClobURL  string
	Timeout  time.Duration
	Cache    cache.Cache
	Logger   *zap.Logger
}

// NewClient creates a new market data client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		gammaURL:   cfg.GammaURL,
		clobURL:    cfg.ClobURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cfg.Cache,
		logger:     cfg.Logger,
	}
}

// FetchMarkets fetches up to limit markets, paginating at MaxPageSize per
// request. Markets below minVolume are filtered out; with activeOnly set,
// closed and resolved markets are dropped too. A page that fails to fetch
// ends pagination with whatever was already collected.
func (c *Client) FetchMarkets(ctx context.Context, limit, offset int, activeOnly bool, minVolume float64) []types.Market {
	if limit <= 0 {
		limit = MaxPageSize
	}

	var markets []types.Market

	// The offset advances by raw rows fetched, not by rows that survive the
	// filters. Advancing by the filtered count would refetch rows whenever a
	// page is partially filtered, and stall entirely on a page filtered to
	// zero.
	fetched := 0

	for len(markets) < limit {
		pageSize := limit - len(markets)
		if pageSize > MaxPageSize {
			pageSize = MaxPageSize
		}

		page, err := c.fetchMarketsPage(ctx, pageSize, offset+fetched)
		if err != nil {
			FetchErrorsTotal.WithLabelValues("markets").Inc()
			c.logger.Warn("markets-fetch-failed",
				zap.Int("fetched-so-far", len(markets)),
				zap.Error(err))
			break
		}

		fetched += len(page)

		for i := range page {
			m := page[i].ToMarket()
			if activeOnly && m.Status != types.StatusActive {
				continue
			}
			if m.Volume < minVolume {
				continue
			}
			markets = append(markets, m)
		}

		// Short page means no more data.
		if len(page) < pageSize {
			break
		}
	}

	MarketsFetchedTotal.Add(float64(len(markets)))
	c.logger.Debug("markets-fetched", zap.Int("count", len(markets)))

	return markets
}

// fetchMarketsPage fetches a single page from the Gamma API.
func (c *Client) fetchMarketsPage(ctx context.Context, limit, offset int) ([]types.GammaMarket, error) {
	params := url.Values{}
	params.Add("closed", "false")
	params.Add("active", "true")
	params.Add("limit", strconv.Itoa(limit))
	params.Add("offset", strconv.Itoa(offset))
	params.Add("order", "volume")
	params.Add("ascending", "false")

	requestURL := fmt.Sprintf("%s/markets?%s", c.gammaURL, params.Encode())

	var page []types.GammaMarket
	err := c.getJSON(ctx, requestURL, &page)
	if err != nil {
		return nil, err
	}

	return page, nil
}

// FetchTokenIDs resolves the CLOB token ids for a market's outcomes. Returns
// nil when the market has no token mapping or the lookup fails; both are
// expected for some markets and are not errors. Results are cached.
func (c *Client) FetchTokenIDs(ctx context.Context, market types.Market) []string {
	cacheKey := "tokens:" + market.ID

	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			if tokens, ok := cached.([]string); ok {
				return tokens
			}
		}
	}

	requestURL := fmt.Sprintf("%s/markets/%s", c.gammaURL, url.PathEscape(market.ID))

	var detail types.GammaMarket
	err := c.getJSON(ctx, requestURL, &detail)
	if err != nil {
		FetchErrorsTotal.WithLabelValues("token_ids").Inc()
		c.logger.Debug("token-ids-fetch-failed",
			zap.String("market-id", market.ID),
			zap.Error(err))
		return nil
	}

	tokens := detail.TokenIDs()

	if c.cache != nil && len(tokens) > 0 {
		c.cache.Set(cacheKey, tokens, tokenCacheTTL)
	}

	return tokens
}

// tokenValue is one entry of the CLOB batch price endpoints.
type tokenValue struct {
	TokenID string          `json:"token_id"`
	Spread  types.FlexFloat `json:"spread"`
	Price   types.FlexFloat `json:"price"`
}

// FetchSpreads batch-fetches bid-ask spreads for the given token ids.
// Missing tokens are simply absent from the result.
func (c *Client) FetchSpreads(ctx context.Context, tokenIDs []string) map[string]float64 {
	return c.fetchTokenValues(ctx, "spreads", tokenIDs, func(v tokenValue) float64 { return float64(v.Spread) })
}

// FetchMidpoints batch-fetches midpoint prices for the given token ids.
func (c *Client) FetchMidpoints(ctx context.Context, tokenIDs []string) map[string]float64 {
	return c.fetchTokenValues(ctx, "midpoints", tokenIDs, func(v tokenValue) float64 { return float64(v.Price) })
}

func (c *Client) fetchTokenValues(ctx context.Context, endpoint string, tokenIDs []string, pick func(tokenValue) float64) map[string]float64 {
	if len(tokenIDs) == 0 {
		return map[string]float64{}
	}

	params := url.Values{}
	for _, id := range tokenIDs {
		params.Add("token_id", id)
	}
	requestURL := fmt.Sprintf("%s/%s?%s", c.clobURL, endpoint, params.Encode())

	var values []tokenValue
	err := c.getJSON(ctx, requestURL, &values)
	if err != nil {
		FetchErrorsTotal.WithLabelValues(endpoint).Inc()
		c.logger.Warn("token-values-fetch-failed",
			zap.String("endpoint", endpoint),
			zap.Int("token-count", len(tokenIDs)),
			zap.Error(err))
		return map[string]float64{}
	}

	result := make(map[string]float64, len(values))
	for _, v := range values {
		result[v.TokenID] = pick(v)
	}

	return result
}

// getJSON performs a GET request and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, requestURL string, out any) error {
	start := time.Now()
	defer func() {
		RequestDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "arb-monitor/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
