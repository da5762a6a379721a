package restapi

import (
	"errors"
	"fmt"
	"net/http"

	"treasury_api/internal/app/port"
	"treasury_api/internal/domain/entity"
	"treasury_api/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PortfolioHandler обрабатывает HTTP запросы, связанные с портфелями.
type PortfolioHandler struct {
	portfolioService port.PortfolioService
	defaultAPIKey    string
	cacheSeconds     int
	cache            *ResponseCache
	logger           *zap.Logger
}

// NewPortfolioHandler создает новый экземпляр PortfolioHandler. cache may be nil.
func NewPortfolioHandler(ps port.PortfolioService, defaultAPIKey string, cacheSeconds int, cache *ResponseCache, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: ps,
		defaultAPIKey:    defaultAPIKey,
		cacheSeconds:     cacheSeconds,
		cache:            cache,
		logger:           logger.Named("PortfolioHandler"),
	}
}

// GetPortfolioHandler values the addresses of a request under profile.
// Addresses come from the :addresses path segment, the addresses query parameter
// or the profile defaults, in that order.
func (h *PortfolioHandler) GetPortfolioHandler(profile *entity.ChainProfile) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.Query("alchemyApi")
		if apiKey == "" {
			apiKey = h.defaultAPIKey
		}
		if apiKey == "" {
			c.JSON(http.StatusOK, newErrorResponse("alchemyApi not provided"))
			return
		}

		addresses := utils.SplitAddressList(c.Param("addresses"))
		if len(addresses) == 0 {
			addresses = utils.SplitAddressList(c.Query("addresses"))
		}
		if len(addresses) == 0 {
			addresses = profile.DefaultAddresses
		}

		normalized, err := utils.NormalizeAddresses(addresses)
		if err != nil {
			c.JSON(http.StatusOK, newErrorResponse(err.Error()))
			return
		}
		key := cacheKey(profile.Name, normalized, apiKey)
		if cached, ok := h.cache.Get(key); ok {
			h.setCacheControl(c)
			c.JSON(http.StatusOK, cached)
			return
		}

		snapshot, err := h.portfolioService.GetPortfolio(c.Request.Context(), entity.PortfolioRequest{
			Profile:   profile,
			Addresses: normalized,
			APIKey:    apiKey,
		})
		if err != nil {
			h.writeError(c, profile, err)
			return
		}

		resp := newSuccessResponse(snapshot)
		h.cache.Set(key, resp)
		h.setCacheControl(c)
		c.JSON(http.StatusOK, resp)
	}
}

// OptionsHandler answers pre-flight requests that reach the router.
func (h *PortfolioHandler) OptionsHandler(c *gin.Context) {
	c.Header("Access-Control-Allow-Methods", "PUT, POST, PATCH, DELETE, GET")
	c.JSON(http.StatusOK, gin.H{})
}

func (h *PortfolioHandler) setCacheControl(c *gin.Context) {
	c.Header("Cache-Control", fmt.Sprintf("s-maxage=%d, stale-while-revalidate=%d", h.cacheSeconds, 2*h.cacheSeconds))
}

func (h *PortfolioHandler) writeError(c *gin.Context, profile *entity.ChainProfile, err error) {
	_ = c.Error(err)
	var pe *entity.PortfolioError
	if errors.As(err, &pe) && pe.Kind == entity.ValidationError {
		c.JSON(http.StatusOK, newErrorResponse(pe.Message))
		return
	}
	h.logger.Error("Portfolio request failed", zap.String("profile", profile.Name), zap.Error(err))
	c.JSON(http.StatusInternalServerError, newErrorResponse(err.Error()))
}
