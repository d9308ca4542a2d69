package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bakery-storefront/internal/handler"
	"bakery-storefront/internal/metrics"
	"bakery-storefront/internal/middleware"
	"bakery-storefront/internal/service"
)

// HealthChecker reports storage health for /health.
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

type Deps struct {
	Log            *slog.Logger
	Metrics        *metrics.Metrics
	Health         HealthChecker
	JWTSecret      []byte
	AllowedOrigins []string
	Orders         service.OrderService
	Cart           service.CartService
	Catalog        service.CatalogService
	Inventory      service.InventoryService
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(d.Log))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	r.Use(cors.New(corsConfig(d.AllowedOrigins)))

	r.GET("/health", func(c *gin.Context) {
		if d.Health == nil {
			c.JSON(http.StatusOK, gin.H{"status": "up"})
			return
		}
		stats := d.Health.Health(c.Request.Context())
		status := http.StatusOK
		if stats["status"] == "down" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, stats)
	})

	handler.NewBreadHandler(d.Log, d.Catalog).Register(r)

	authed := r.Group("", middleware.Auth(d.JWTSecret))
	handler.NewCartHandler(d.Log, d.Cart).Register(authed)
	handler.NewOrderHandler(d.Log, d.Orders, d.Metrics).Register(authed)

	artisan := authed.Group("", middleware.RequireRole("artisan", "admin"))
	handler.NewArtisanHandler(d.Log, d.Inventory).Register(artisan)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	cfg.ExposeHeaders = []string{middleware.RequestIDHeader}
	cfg.MaxAge = 12 * time.Hour
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func New(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
}
