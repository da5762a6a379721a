package restapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"treasury_api/internal/domain/entity"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	treasuryAddress = "0x78605Df79524164911C144801f41e9811B7DB73D"
	lpOwnerAddress  = "0x5C128d25A21f681e678cB050E551A895c9309945"
)

type fakePortfolioService struct {
	snapshot *entity.PortfolioSnapshot
	err      error
	requests []entity.PortfolioRequest
}

func (s *fakePortfolioService) GetPortfolio(_ context.Context, req entity.PortfolioRequest) (*entity.PortfolioSnapshot, error) {
	s.requests = append(s.requests, req)
	return s.snapshot, s.err
}

func testProfile() *entity.ChainProfile {
	return &entity.ChainProfile{
		Name:             "portfolio",
		Route:            "/api/v1/portfolio",
		DefaultAddresses: []string{treasuryAddress, lpOwnerAddress},
		MergeStrategy:    entity.MergeBySymbol,
	}
}

func testSnapshot() *entity.PortfolioSnapshot {
	return &entity.PortfolioSnapshot{
		TotalValueInUSD: decimal.NewFromInt(6500),
		Portfolio: []entity.TreasuryToken{
			{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", ParentAddress: treasuryAddress, Amount: decimal.NewFromInt(500),
				Decimals: 6, Name: "USD Coin", Symbol: "USDC", Price: decimal.NewFromInt(1), Value: decimal.NewFromInt(500), PercentOfHoldings: "7.69%"},
			{Address: "eth", ParentAddress: treasuryAddress, Amount: decimal.NewFromInt(2), Decimals: 18, Name: "Ethereum", Symbol: "ETH",
				Price: decimal.NewFromInt(3000), Value: decimal.NewFromInt(6000), PercentOfHoldings: "92.31%", IsNative: true},
		},
	}
}

func setupRouter(t *testing.T, svc *fakePortfolioService, defaultKey string, cache *ResponseCache) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)
	handler := NewPortfolioHandler(svc, defaultKey, 1800, cache, logger)
	return SetupRouter(handler, RouterOptions{
		Profiles:     []*entity.ChainProfile{testProfile()},
		AllowOrigins: []string{"*"},
		Logger:       logger,
	})
}

func perform(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetPortfolioSuccess(t *testing.T) {
	svc := &fakePortfolioService{snapshot: testSnapshot()}
	router := setupRouter(t, svc, "", nil)

	w := perform(router, http.MethodGet, "/api/v1/portfolio?alchemyApi=key")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s-maxage=1800, stale-while-revalidate=3600", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, 200, resp.StatusCode)
	require.NotNil(t, resp.Value)
	assert.Equal(t, 6500.0, resp.Value.TotalValueInUSD)
	require.Len(t, resp.Value.Portfolio, 2)
	assert.Equal(t, "92.31%", resp.Value.Portfolio[1].PercentOfHoldings)
	assert.Equal(t, 6000.0, resp.Value.Portfolio[1].Value)

	require.Len(t, svc.requests, 1)
	assert.Equal(t, "key", svc.requests[0].APIKey)
	assert.Equal(t, []string{treasuryAddress, lpOwnerAddress}, svc.requests[0].Addresses)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	item := raw["value"].(map[string]interface{})["portfolio"].([]interface{})[0].(map[string]interface{})
	for _, field := range []string{"address", "parentAddress", "amount", "decimals", "name", "symbol", "logo", "price", "value", "percentOfHoldings"} {
		assert.Contains(t, item, field)
	}
}

func TestGetPortfolioAddresses(t *testing.T) {
	svc := &fakePortfolioService{snapshot: testSnapshot()}
	router := setupRouter(t, svc, "default-key", nil)

	perform(router, http.MethodGet, "/api/v1/portfolio?addresses=0x5c128d25a21f681e678cb050e551a895c9309945")
	perform(router, http.MethodGet, "/api/v1/portfolio/"+treasuryAddress+","+lpOwnerAddress)

	require.Len(t, svc.requests, 2)
	assert.Equal(t, "default-key", svc.requests[0].APIKey)
	assert.Equal(t, []string{lpOwnerAddress}, svc.requests[0].Addresses)
	assert.Equal(t, []string{treasuryAddress, lpOwnerAddress}, svc.requests[1].Addresses)
}

func TestGetPortfolioMissingKey(t *testing.T) {
	svc := &fakePortfolioService{snapshot: testSnapshot()}
	router := setupRouter(t, svc, "", nil)

	w := perform(router, http.MethodGet, "/api/v1/portfolio")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, "alchemyApi not provided", resp.Message)
	assert.Empty(t, svc.requests)
	assert.Empty(t, w.Header().Get("Cache-Control"))
}

func TestGetPortfolioInvalidAddress(t *testing.T) {
	svc := &fakePortfolioService{snapshot: testSnapshot()}
	w := perform(setupRouter(t, svc, "key", nil), http.MethodGet, "/api/v1/portfolio?addresses=0x1234")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode(t, w).Success)
	assert.Empty(t, svc.requests)
}

func TestGetPortfolioErrors(t *testing.T) {
	t.Run("upstream", func(t *testing.T) {
		svc := &fakePortfolioService{err: entity.NewUpstreamError("failed to read balances", context.DeadlineExceeded)}
		w := perform(setupRouter(t, svc, "key", nil), http.MethodGet, "/api/v1/portfolio")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decode(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Contains(t, resp.Message, "failed to read balances")
	})

	t.Run("validation", func(t *testing.T) {
		svc := &fakePortfolioService{err: entity.NewValidationError("no addresses to value")}
		w := perform(setupRouter(t, svc, "key", nil), http.MethodGet, "/api/v1/portfolio")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "no addresses to value", decode(t, w).Message)
	})
}

func TestGetPortfolioCache(t *testing.T) {
	svc := &fakePortfolioService{snapshot: testSnapshot()}
	router := setupRouter(t, svc, "key", NewResponseCache(time.Minute))

	first := perform(router, http.MethodGet, "/api/v1/portfolio")
	second := perform(router, http.MethodGet, "/api/v1/portfolio")
	other := perform(router, http.MethodGet, "/api/v1/portfolio?alchemyApi=other")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "s-maxage=1800, stale-while-revalidate=3600", second.Header().Get("Cache-Control"))
	assert.Equal(t, http.StatusOK, other.Code)
	assert.Len(t, svc.requests, 2, "a different provider key is a different cache entry")
}

func TestGetPortfolioCacheSkipsFailures(t *testing.T) {
	svc := &fakePortfolioService{err: entity.NewUpstreamError("down", context.Canceled)}
	router := setupRouter(t, svc, "key", NewResponseCache(time.Minute))

	perform(router, http.MethodGet, "/api/v1/portfolio")
	perform(router, http.MethodGet, "/api/v1/portfolio")
	assert.Len(t, svc.requests, 2)
}

func TestOptions(t *testing.T) {
	router := setupRouter(t, &fakePortfolioService{}, "", nil)

	w := perform(router, http.MethodOptions, "/api/v1/portfolio")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/portfolio", nil)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	pre := httptest.NewRecorder()
	router.ServeHTTP(pre, req)
	assert.Equal(t, http.StatusOK, pre.Code)
	assert.Equal(t, "*", pre.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, pre.Header().Get("Access-Control-Allow-Credentials"), "wildcard origin never allows credentials")
}

func TestOptionsWithAddresses(t *testing.T) {
	router := setupRouter(t, &fakePortfolioService{}, "", nil)

	w := perform(router, http.MethodOptions, "/api/v1/portfolio/"+treasuryAddress+","+lpOwnerAddress)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")
}

func TestMetricsAndHealth(t *testing.T) {
	router := setupRouter(t, &fakePortfolioService{}, "", nil)
	assert.Equal(t, http.StatusOK, perform(router, http.MethodGet, "/healthz").Code)

	w := perform(router, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "treasury_http_request_duration_seconds")
}
