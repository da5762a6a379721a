package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"treasury_api/internal/entity"
	"treasury_api/internal/pkg/metrics"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const subgraphSource = "subgraph"

const positionsQuery = `query positions($owner: Bytes!) {
  positions(where: {owner: $owner, liquidity_gt: 0}) {
    id
    liquidity
    token0 { id symbol decimals }
    token1 { id symbol decimals }
    pool { id liquidity totalValueLockedToken0 totalValueLockedToken1 }
  }
}`

// SubgraphClient queries open LP positions.
type SubgraphClient interface {
	GetPositions(ctx context.Context, owner string) ([]entity.SubgraphPosition, error)
}

type subgraphClientImpl struct {
	client  *fasthttp.Client
	url     string
	timeout time.Duration
	logger  *zap.Logger
}

// NewSubgraphClient creates a new SubgraphClient for the given GraphQL endpoint.
func NewSubgraphClient(url string, timeout time.Duration, logger *zap.Logger) SubgraphClient {
	return &subgraphClientImpl{
		client:  &fasthttp.Client{Name: "treasury-api"},
		url:     url,
		timeout: timeout,
		logger:  logger.Named("SubgraphClient"),
	}
}

// GetPositions implements SubgraphClient.
func (c *subgraphClientImpl) GetPositions(ctx context.Context, owner string) ([]entity.SubgraphPosition, error) {
	positions, err := c.getPositions(ctx, owner)
	metrics.ObserveUpstream(subgraphSource, err)
	return positions, err
}

func (c *subgraphClientImpl) getPositions(ctx context.Context, owner string) ([]entity.SubgraphPosition, error) {
	payload, err := json.Marshal(entity.GraphQLRequest{
		Query:     positionsQuery,
		Variables: map[string]any{"owner": strings.ToLower(owner)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal positions query: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBody(payload)

	if err := do(ctx, c.client, req, resp, c.timeout); err != nil {
		return nil, fmt.Errorf("failed to execute positions query for %s: %w", owner, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("positions query for %s failed with status %d: %s", owner, resp.StatusCode(), truncate(rawBody, 256))
	}

	var body entity.SubgraphPositionsResponse
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return nil, fmt.Errorf("failed to unmarshal positions response for %s: %w", owner, err)
	}
	if len(body.Errors) > 0 {
		return nil, fmt.Errorf("positions query for %s returned errors: %s", owner, body.Errors[0].Message)
	}

	c.logger.Debug("Positions fetched", zap.String("owner", owner), zap.Int("count", len(body.Data.Positions)))
	return body.Data.Positions, nil
}
