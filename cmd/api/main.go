package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"plugdrop/internal/config"
	"plugdrop/internal/db"
	"plugdrop/internal/event"
	"plugdrop/internal/httpserver"
	"plugdrop/internal/notify"
	orderrepo "plugdrop/internal/repository/order"
	productrepo "plugdrop/internal/repository/product"
	userrepo "plugdrop/internal/repository/user"
	"plugdrop/internal/seed"
	authsvc "plugdrop/internal/service/auth"
	cartsvc "plugdrop/internal/service/cart"
	catalogsvc "plugdrop/internal/service/catalog"
	ordersvc "plugdrop/internal/service/order"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()

	var (
		dbpool   *pgxpool.Pool
		products productrepo.Repository
		orders   orderrepo.Repository
		users    userrepo.Repository
	)
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer pool.Close()
		dbpool = pool
		products = productrepo.NewPostgres(pool, logger)
		orders = orderrepo.NewPostgres(pool, logger)
		users = userrepo.NewPostgres(pool)
	case config.BackendMemory:
		memProducts := productrepo.NewMemory()
		products = memProducts
		orders = orderrepo.NewMemory(memProducts)
		users = userrepo.NewMemory()
		// Memory state starts empty every boot, so load the demo data.
		if err := seed.Apply(ctx, users, products, logger); err != nil {
			logger.Fatalf("seed memory backend: %v", err)
		}
	default:
		logger.Fatalf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	var events event.Publisher = event.Nop{}
	if cfg.RedisAddr != "" {
		pub := event.NewRedis(cfg.RedisAddr)
		defer pub.Close()
		events = pub
		logger.Printf("change feed on redis %s", cfg.RedisAddr)
	}

	var notifier notify.Notifier = notify.NewLog(logger)
	if len(cfg.KafkaBrokers) > 0 {
		kn := notify.NewKafka(cfg.KafkaBrokers, cfg.NotifyTopic, logger)
		defer kn.Close()
		notifier = kn
		logger.Printf("notifications on kafka topic %s", cfg.NotifyTopic)
	}

	authService := authsvc.New(users)
	cartService := cartsvc.New(products)
	catalogService := catalogsvc.New(products, events)
	orderService := ordersvc.New(orders, products, cartService, notifier, events, logger)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Auth:    authService,
		Catalog: catalogService,
		Carts:   cartService,
		Orders:  orderService,
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s (backend=%s)", cfg.HTTPAddr, cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
