package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/medilens/backend/config"
)

// SetupRouter creates and configures the Gin router.
// A nil gatherer leaves /metrics unregistered.
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger, gatherer prometheus.Gatherer) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(SessionMiddleware())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", handler.HealthCheck)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		prescriptions := v1.Group("/prescriptions")
		prescriptions.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
		{
			prescriptions.POST("/analyze", handler.AnalyzePrescription)
			prescriptions.POST("/analyze-text", handler.AnalyzeText)
		}

		v1.GET("/products/search", handler.SearchProducts)

		cart := v1.Group("/cart")
		{
			cart.GET("", handler.GetCart)
			cart.POST("/items", handler.AddCartItem)
		}
	}

	return router
}
