package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fleetflow/internal/handler"
	"fleetflow/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	CarrierHandler *handler.CarrierHandler
	QuoteHandler   *handler.QuoteHandler
	ShipperHandler *handler.ShipperHandler
	DriverHandler  *handler.DriverHandler
	LoadHandler    *handler.LoadHandler
	PortalHandler  *handler.PortalHandler
	RedisClient    *redis.Client // Optional: nil disables idempotency
	NewRelicApp    *newrelic.Application
	Logger         *zap.Logger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.NewRelicAttributes())
	}

	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient, deps.Logger))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Carrier routes.
		carriers := v1.Group("/carriers")
		{
			carriers.GET("/status", deps.CarrierHandler.Status)
			carriers.GET("/dot/:dot", deps.CarrierHandler.GetByDOT)
			carriers.GET("/mc/:mc", deps.CarrierHandler.GetByMC)
			carriers.GET("/mc/:mc/verify", deps.CarrierHandler.Verify)
			carriers.GET("/mc/:mc/risk", deps.CarrierHandler.Risk)
		}

		// Quote routes.
		quotes := v1.Group("/quotes")
		{
			quotes.POST("/freight", deps.QuoteHandler.Freight)
			quotes.POST("/warehouse", deps.QuoteHandler.Warehouse)
		}

		// Shipper routes.
		shippers := v1.Group("/shippers")
		{
			shippers.POST("", deps.ShipperHandler.Upsert)
			shippers.GET("", deps.ShipperHandler.Lookup)
			shippers.GET("/:id", deps.ShipperHandler.Get)
			shippers.GET("/:id/summary", deps.ShipperHandler.Summary)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.POST("/:id/online", deps.DriverHandler.GoOnline)
			drivers.POST("/:id/offline", deps.DriverHandler.GoOffline)
			drivers.POST("/:id/location", deps.DriverHandler.UpdateLocation)
			drivers.GET("/:id/loads", deps.DriverHandler.OfferedLoads)
			drivers.POST("/:id/accept", deps.DriverHandler.AcceptLoad)
			drivers.POST("/:id/decline", deps.DriverHandler.DeclineLoad)
		}

		// Load routes.
		loads := v1.Group("/loads")
		{
			loads.POST("", deps.LoadHandler.CreateLoad)
			loads.GET("", deps.LoadHandler.GetAll)
			loads.GET("/:id", deps.LoadHandler.GetLoad)
		}

		// Go with the Flow portal routes.
		gwf := v1.Group("/go-with-the-flow")
		{
			gwf.POST("/requests", deps.PortalHandler.Submit)
			gwf.GET("/metrics", deps.PortalHandler.Metrics)
			gwf.GET("/equipment", deps.PortalHandler.Equipment)
		}
	}

	return router
}
