package restapi

import (
	"net/http"
	"time"

	"treasury_api/internal/domain/entity"
	"treasury_api/internal/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// RouterOptions configures SetupRouter.
type RouterOptions struct {
	Profiles       []*entity.ChainProfile
	AllowOrigins   []string
	SwaggerEnabled bool
	SwaggerPath    string
	Logger         *zap.Logger
}

// SetupRouter настраивает и возвращает экземпляр Gin роутера.
// Every profile gets GET and OPTIONS on its route and on <route>/:addresses.
func SetupRouter(portfolioHandler *PortfolioHandler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(opts.Logger), Metrics(), corsMiddleware(opts.AllowOrigins))

	for _, profile := range opts.Profiles {
		router.GET(profile.Route, portfolioHandler.GetPortfolioHandler(profile))
		router.GET(profile.Route+"/:addresses", portfolioHandler.GetPortfolioHandler(profile))
		router.OPTIONS(profile.Route, portfolioHandler.OptionsHandler)
		router.OPTIONS(profile.Route+"/:addresses", portfolioHandler.OptionsHandler)
	}

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if opts.SwaggerEnabled && opts.SwaggerPath != "" {
		// Отдаем статический swagger.yaml и UI поверх него
		router.StaticFile("/docs/swagger.yaml", opts.SwaggerPath)
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/docs/swagger.yaml")))
	}
	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:              []string{"PUT", "POST", "PATCH", "DELETE", "GET", "OPTIONS"},
		AllowHeaders:              []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:             []string{requestIDHeader},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
