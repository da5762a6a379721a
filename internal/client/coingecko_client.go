package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"treasury_api/internal/app/port"
	"treasury_api/internal/entity"
	"treasury_api/internal/pkg/metrics"
	"treasury_api/internal/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const coinGeckoSource = "coingecko"

// CoinGeckoOptions configures the CoinGecko client.
type CoinGeckoOptions struct {
	BaseURL             string
	APIKey              string
	Platform            string
	VsCurrency          string
	Timeout             time.Duration
	MaxTokensPerRequest int
}

// coinGeckoClientImpl is the primary price source.
type coinGeckoClientImpl struct {
	client *fasthttp.Client
	opts   CoinGeckoOptions
	logger *zap.Logger
}

// NewCoinGeckoClient creates a CoinGecko backed port.PrimaryPriceProvider.
func NewCoinGeckoClient(opts CoinGeckoOptions, logger *zap.Logger) port.PrimaryPriceProvider {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	opts.VsCurrency = strings.ToLower(opts.VsCurrency)
	return &coinGeckoClientImpl{
		client: &fasthttp.Client{Name: "treasury-api"},
		opts:   opts,
		logger: logger.Named("CoinGeckoClient"),
	}
}

// GetNativePrice implements port.PrimaryPriceProvider.
func (c *coinGeckoClientImpl) GetNativePrice(ctx context.Context, coinID string) (decimal.Decimal, error) {
	prices, err := c.get(ctx, "/simple/price", map[string]string{
		"ids":           coinID,
		"vs_currencies": c.opts.VsCurrency,
	})
	metrics.ObserveUpstream(coinGeckoSource, err)
	if err != nil {
		return decimal.Zero, err
	}
	price, ok := prices[coinID][c.opts.VsCurrency]
	if !ok {
		return decimal.Zero, fmt.Errorf("coingecko returned no %s price for %s", c.opts.VsCurrency, coinID)
	}
	return price, nil
}

// GetTokenPrices implements port.PrimaryPriceProvider. Any failed chunk fails the whole call.
func (c *coinGeckoClientImpl) GetTokenPrices(ctx context.Context, contractAddresses []string) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal, len(contractAddresses))
	if len(contractAddresses) == 0 {
		return result, nil
	}

	byLower := make(map[string]string, len(contractAddresses))
	lowered := make([]string, 0, len(contractAddresses))
	for _, addr := range contractAddresses {
		l := strings.ToLower(addr)
		if _, ok := byLower[l]; ok {
			continue
		}
		byLower[l] = addr
		lowered = append(lowered, l)
	}

	for _, batch := range utils.BatchStrings(lowered, c.opts.MaxTokensPerRequest) {
		prices, err := c.get(ctx, "/simple/token_price/"+c.opts.Platform, map[string]string{
			"contract_addresses": strings.Join(batch, ","),
			"vs_currencies":      c.opts.VsCurrency,
		})
		metrics.ObserveUpstream(coinGeckoSource, err)
		if err != nil {
			return nil, err
		}
		for key, quote := range prices {
			price, ok := quote[c.opts.VsCurrency]
			if !ok {
				continue
			}
			addr, known := byLower[strings.ToLower(key)]
			if !known {
				normalized, err := utils.NormalizeAddress(key)
				if err != nil {
					c.logger.Debug("Skipping unexpected key in token price response", zap.String("key", key))
					continue
				}
				addr = normalized
			}
			result[addr] = price
		}
	}

	c.logger.Debug("Token prices fetched", zap.Int("requested", len(lowered)), zap.Int("priced", len(result)))
	return result, nil
}

func (c *coinGeckoClientImpl) get(ctx context.Context, path string, query map[string]string) (entity.CoinGeckoPrices, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.opts.BaseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	args := req.URI().QueryArgs()
	for k, v := range query {
		args.Add(k, v)
	}
	if c.opts.APIKey != "" {
		args.Add("x_cg_pro_api_key", c.opts.APIKey)
	}

	c.logger.Debug("Requesting prices from CoinGecko", zap.String("path", path))
	if err := do(ctx, c.client, req, resp, c.opts.Timeout); err != nil {
		c.logger.Warn("Failed to execute request to CoinGecko", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request to coingecko %s: %w", path, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		var apiErr entity.CoinGeckoError
		msg := truncate(rawBody, 256)
		if err := json.Unmarshal(rawBody, &apiErr); err == nil {
			if apiErr.Error != "" {
				msg = apiErr.Error
			} else if apiErr.Status.ErrorMessage != "" {
				msg = apiErr.Status.ErrorMessage
			}
		}
		c.logger.Warn("CoinGecko API request failed", zap.String("path", path), zap.Int("statusCode", resp.StatusCode()), zap.String("message", msg))
		return nil, fmt.Errorf("coingecko %s failed with status %d: %s", path, resp.StatusCode(), msg)
	}

	var prices entity.CoinGeckoPrices
	if err := json.Unmarshal(rawBody, &prices); err != nil {
		return nil, fmt.Errorf("failed to unmarshal coingecko response from %s: %w", path, err)
	}
	return prices, nil
}
