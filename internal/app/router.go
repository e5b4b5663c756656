package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"loadhitch/internal/handler"
	"loadhitch/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	PaymentHandler *handler.PaymentHandler
	PricingHandler *handler.PricingHandler
	PayFastHandler *handler.PayFastHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Pricing routes.
		pricing := v1.Group("/pricing")
		{
			pricing.POST("/estimate", deps.PricingHandler.Estimate)
		}

		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.POST("", deps.PaymentHandler.InitiatePayment)
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
			payments.GET("/:id/checkout", deps.PaymentHandler.Checkout)
			payments.POST("/:id/release", deps.PaymentHandler.ReleasePayment)
			payments.POST("/:id/refund", deps.PaymentHandler.RefundPayment)
		}

		// Lookup routes.
		v1.GET("/loads/:id/payment", deps.PaymentHandler.GetLoadPayment)
		v1.GET("/customers/:id/payments", deps.PaymentHandler.ListCustomerPayments)
		v1.GET("/drivers/:id/earnings", deps.PaymentHandler.GetDriverEarnings)

		// Gateway callback routes.
		pf := v1.Group("/payfast")
		{
			pf.POST("/notify", deps.PayFastHandler.Notify)
			pf.GET("/return", deps.PayFastHandler.Return)
			pf.GET("/cancel", deps.PayFastHandler.Cancel)
		}
	}

	return router
}
