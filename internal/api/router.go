package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jafarshop/marketorders/internal/api/handlers"
	"github.com/jafarshop/marketorders/internal/api/middleware"
	"github.com/jafarshop/marketorders/internal/config"
	"github.com/jafarshop/marketorders/internal/service"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services groups what the router dispatches to
type Services struct {
	Orders   service.OrderReader
	Actions  service.OrderActions
	Verifier middleware.TokenVerifier
	DB       Pinger
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, svc Services, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	router.GET("/health", handleHealth(svc.DB, logger))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes; the services answer not_authenticated themselves
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(svc.Verifier, logger))
	{
		v1.GET("/buyer/orders", handlers.HandleGetBuyerOrders(svc.Orders))
		v1.GET("/buyer/orders/:id", handlers.HandleGetBuyerOrder(svc.Orders))
		v1.GET("/orders/:id/conversation", handlers.HandleGetOrderConversation(svc.Orders))

		v1.GET("/seller/orders", handlers.HandleListSellerOrders(svc.Orders))
		v1.GET("/seller/orders/stats", handlers.HandleSellerOrderStats(svc.Orders))

		v1.POST("/order-items/:id/return", handlers.HandleRequestReturn(svc.Actions))
		v1.POST("/order-items/:id/cancel", handlers.HandleCancelOrderItem(svc.Actions))
		v1.POST("/order-items/:id/issues", handlers.HandleReportIssue(svc.Actions))
	}

	return router
}

func handleHealth(db Pinger, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
