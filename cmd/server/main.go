package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bakery-storefront/internal/config"
	"bakery-storefront/internal/database"
	"bakery-storefront/internal/logging"
	"bakery-storefront/internal/metrics"
	"bakery-storefront/internal/repo"
	"bakery-storefront/internal/repo/memstore"
	"bakery-storefront/internal/server"
	"bakery-storefront/internal/service"
)

type stores struct {
	tx        repo.Transactor
	orders    repo.OrderRepo
	carts     repo.CartRepo
	products  repo.ProductRepo
	addresses repo.AddressRepo
	health    server.HealthChecker
	close     func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, log, cfg)
	if err != nil {
		log.Error("storage init failed", "driver", cfg.Storage, "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Error("storage close failed", "err", err)
		}
	}()

	orderService := service.NewOrderService(log, st.tx, st.orders, st.carts, st.products, st.addresses)
	cartService := service.NewCartService(log, st.carts, st.products)
	catalogService := service.NewCatalogService(st.products)
	inventoryService := service.NewInventoryService(log, st.products)

	router := server.NewRouter(server.Deps{
		Log:            log,
		Metrics:        metrics.New("storefront"),
		Health:         st.health,
		JWTSecret:      []byte(cfg.JWTSecret),
		AllowedOrigins: cfg.AllowedOrigins,
		Orders:         orderService,
		Cart:           cartService,
		Catalog:        catalogService,
		Inventory:      inventoryService,
	})
	srv := server.New(cfg.HTTPAddr, router)

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "err", err)
	}
	log.Info("storefront shutdown complete")
}

func openStores(ctx context.Context, log *slog.Logger, cfg *config.Config) (*stores, error) {
	if cfg.Storage == config.StorageMemory {
		mem := memstore.New()
		mem.Seed()
		log.Warn("using in-memory storage; data is lost on restart")
		return &stores{
			tx:        mem,
			orders:    mem.Orders(),
			carts:     mem.Carts(),
			products:  mem.Products(),
			addresses: mem.Addresses(),
			close:     func() error { return nil },
		}, nil
	}

	db, err := database.New(ctx, log, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db.DB()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &stores{
		tx:        repo.NewTransactor(db.DB()),
		orders:    repo.NewOrderRepo(db.DB()),
		carts:     repo.NewCartRepo(db.DB()),
		products:  repo.NewProductRepo(db.DB()),
		addresses: repo.NewAddressRepo(db.DB()),
		health:    db,
		close:     db.Close,
	}, nil
}
