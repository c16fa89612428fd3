package v1

import (
	"net/http"
	"time"

	"contact-relay/config"
	"contact-relay/internal/delivery/http/middleware"
	"contact-relay/internal/delivery/http/response"
	"contact-relay/internal/domain"
	"contact-relay/internal/usecase"
	"contact-relay/pkg/logger"
	"contact-relay/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	SubmissionUC domain.SubmissionUsecase
	HealthUC     usecase.HealthUsecase
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// ClientIP keys the rate limiter, so forwarded headers count only from known proxies
	if err := r.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		logger.Log.Warn("Invalid TRUSTED_PROXIES, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	// Global Middlewares
	r.Use(middleware.CORS(deps.Config.CORSAllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Not found", nil)
	})

	// Operational endpoints
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("")
	api.Use(middleware.SecurityHeadersMiddleware())
	api.Use(middleware.ErrorHandler(deps.Config.IsDevelopment()))

	// Health Check
	api.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "ok", deps.HealthUC.Check(c.Request.Context()))
	})

	// Public routes
	limiter := middleware.RateLimitMiddleware(middleware.ContactRateLimitConfig(
		deps.Config.RateLimitRequests,
		time.Duration(deps.Config.RateLimitWindowSeconds)*time.Second,
	))
	NewSubmissionHandler(api, deps.SubmissionUC, limiter)

	return r
}
