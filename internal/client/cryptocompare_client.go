package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"treasury_api/internal/app/port"
	"treasury_api/internal/entity"
	"treasury_api/internal/pkg/metrics"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const cryptoCompareSource = "cryptocompare"

// cryptoCompareClientImpl is the secondary, symbol based price source.
type cryptoCompareClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewCryptoCompareClient creates a CryptoCompare backed port.SecondaryPriceProvider.
func NewCryptoCompareClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) port.SecondaryPriceProvider {
	return &cryptoCompareClientImpl{
		client:  &fasthttp.Client{Name: "treasury-api"},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("CryptoCompareClient"),
	}
}

// GetPriceBySymbol implements port.SecondaryPriceProvider.
func (c *cryptoCompareClientImpl) GetPriceBySymbol(ctx context.Context, symbol string) (decimal.Decimal, error) {
	price, err := c.getPrice(ctx, symbol)
	metrics.ObserveUpstream(cryptoCompareSource, err)
	return price, err
}

func (c *cryptoCompareClientImpl) getPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if strings.TrimSpace(symbol) == "" {
		return decimal.Zero, fmt.Errorf("symbol cannot be empty")
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/data/price")
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Apikey "+c.apiKey)
	}
	args := req.URI().QueryArgs()
	args.Add("fsym", symbol)
	args.Add("tsyms", "USD")

	if err := do(ctx, c.client, req, resp, c.timeout); err != nil {
		return decimal.Zero, fmt.Errorf("failed to execute request to cryptocompare for %s: %w", symbol, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		return decimal.Zero, fmt.Errorf("cryptocompare request for %s failed with status %d: %s", symbol, resp.StatusCode(), truncate(rawBody, 256))
	}

	var body entity.CryptoComparePrice
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return decimal.Zero, fmt.Errorf("failed to unmarshal cryptocompare response for %s: %w", symbol, err)
	}
	if strings.EqualFold(body.Response, "Error") {
		return decimal.Zero, fmt.Errorf("cryptocompare has no price for %s: %s", symbol, body.Message)
	}
	if body.USD == nil {
		return decimal.Zero, fmt.Errorf("cryptocompare response for %s has no USD price", symbol)
	}

	c.logger.Debug("Price fetched by symbol", zap.String("symbol", symbol), zap.String("price", body.USD.String()))
	return *body.USD, nil
}
