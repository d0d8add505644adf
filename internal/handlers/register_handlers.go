package handlers

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	portssvc "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/services"
	"github.com/mark-schultz-wu/envelope-buddy/internal/middleware"
	"github.com/mark-schultz-wu/envelope-buddy/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, middleware.UserHeader)
	r.Use(cors.New(corsConfig))

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	setupAPIV1Routes(r, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
) {
	// Every v1 route acts on behalf of a user named in the request header
	v1 := r.Group("/api/v1", middleware.RequireUser())

	// The monthly update walks every envelope; keep callers from hammering it
	rate, err := limiter.NewRateFromFormatted("10-M")
	if err != nil {
		panic(fmt.Sprintf("invalid rollover rate limit: %v", err))
	}
	rolloverLimiter := limiter.New(memory.NewStore(), rate)

	registerEnvelopeRoutes(v1, services.Envelope)
	registerTransactionRoutes(v1, services.Transaction)
	registerProductRoutes(v1, services.Product)
	registerReportingRoutes(v1, services.Reporting)

	rolloverGroup := v1.Group("", middleware.RateLimit(rolloverLimiter))
	registerRolloverRoutes(rolloverGroup, services.Rollover)
}
