package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/admin"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/cart"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/catalog"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/checkout"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/config"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/dispatch"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/events"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/httpserver"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/logging"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/middleware/adminguard"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/middleware/csrf"
	loggingmw "github.com/abdelaziz-sekouti/beauty-ecom/internal/middleware/logging"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/pricing"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/storage"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/wishlist"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	primary, closeStore, err := openStore(initCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("store init error: %v", err)
	}
	kv := storage.NewDegrading(primary, logger)

	var publisher events.Publisher = events.Nop{}
	var kafkaPub *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers))
		publisher = kafkaPub
	}
	bus := events.NewBus(publisher, logger)
	bus.Subscribe(events.LogListener(logger))

	loadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	products, fallback := catalog.NewLoader(cfg.CatalogURL, logger).Load(loadCtx)
	cancel()
	cat := catalog.New(products)

	var searcher httpserver.Searcher
	if cfg.ESURL != "" {
		esClient, err := catalog.NewESClient(catalog.ESConfig{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		search := catalog.NewSearch(esClient, cfg.ESIndex, logger)
		idxCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := search.IndexProducts(idxCtx, cat.List()); err != nil {
			logger.Warn("catalog_index_failed", "reason", "search stays available on stale index", "error", err)
		}
		cancel()
		searcher = search
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	cartStore := cart.New(cat, kv, bus, logger)
	if err := cartStore.Load(startCtx); err != nil {
		logger.Warn("cart_load_failed", "reason", "starting with empty cart", "error", err)
	}
	wishStore := wishlist.New(cat, kv, bus, logger)
	if err := wishStore.Load(startCtx); err != nil {
		logger.Warn("wishlist_load_failed", "reason", "starting with empty wishlist", "error", err)
	}
	dashboard := admin.NewDashboard(kv, logger)
	if err := dashboard.Seed(startCtx); err != nil {
		logger.Warn("admin_seed_failed", "error", err)
	}
	cancel()

	flow := checkout.New(checkout.Deps{
		Cart:     cartStore,
		Engine:   pricing.NewEngine(cfg.TaxRate),
		Promos:   pricing.DefaultPromos(),
		Shipping: pricing.NewShippingRule(cfg.FreeShippingRegions, cfg.FlatShipping),
		Orders:   dashboard,
		Events:   bus,
		Delay:    cfg.OrderDelay,
		Log:      logger,
	})

	auth, err := admin.NewStaticAuthenticator(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("admin auth init error: %v", err)
	}
	sessions := admin.NewSessionStore(kv)
	tokens := admin.Tokens{Secret: cfg.JWTSecret}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(loggingmw.WithConfig(loggingmw.Config{
		Logger: logger,
		Quiet:  loggingmw.HealthProbes,
		Slow:   cfg.OrderDelay + time.Second,
	}))

	httpserver.Register(e, &httpserver.Deps{
		Catalog: &httpserver.CatalogHTTP{Catalog: cat, Index: searcher, Fallback: fallback},
		Shop: &httpserver.ShopHTTP{Dispatcher: &dispatch.Dispatcher{
			Cart:     cartStore,
			Wishlist: wishStore,
			Checkout: flow,
		}},
		Checkout: &httpserver.CheckoutHTTP{Flow: flow},
		Admin: &httpserver.AdminHTTP{
			Auth:         auth,
			Sessions:     sessions,
			Tokens:       tokens,
			Dashboard:    dashboard,
			SecureCookie: cfg.SecureCookies,
		},
		Guard: &adminguard.Guard{Tokens: tokens, Sessions: sessions},
		CSRF:  csrf.Middleware(csrf.Config{Secure: cfg.SecureCookies, EnforceSameOrigin: true}),
		Ready: func(ctx context.Context) error {
			if kv.Degraded() {
				return errors.New("storage degraded to memory")
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      cfg.OrderDelay + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		log.Printf("Starting storefront on %s (store=%s, catalog fallback=%t)...", srv.Addr, cfg.StoreDriver, fallback)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			log.Printf("kafka close: %v", err)
		}
	}
	if err := closeStore(); err != nil {
		log.Printf("store close: %v", err)
	}

	log.Println("Server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, func() error, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		s, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "postgres":
		config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
		s, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return storage.NewRedisStore(client), client.Close, nil
	case "memory":
		return storage.NewMemoryStore(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
