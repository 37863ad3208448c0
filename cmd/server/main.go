package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Skotchmaster/shop_backend/internal/config"
	"github.com/Skotchmaster/shop_backend/internal/db"
	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/httpserver"
	"github.com/Skotchmaster/shop_backend/internal/logging"
	"github.com/Skotchmaster/shop_backend/internal/metrics"
	authmw "github.com/Skotchmaster/shop_backend/internal/middleware/auth"
	"github.com/Skotchmaster/shop_backend/internal/repo"
	"github.com/Skotchmaster/shop_backend/internal/search"
	"github.com/Skotchmaster/shop_backend/internal/service"
)

func main() {
	cfg := config.Load()
	cfg.Validate()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var producer events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		producer = kp
	} else {
		logger.Warn("kafka disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var index service.ProductIndexer
	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 5*time.Second)
		pi, err := search.New(esCtx, search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		esCancel()
		if err != nil {
			logger.Warn("search disabled", "reason", "elasticsearch unavailable", "error", err)
		} else {
			index = pi
		}
	}

	m := metrics.NewServerMetrics(cfg.ServiceName, prometheus.DefaultRegisterer)

	r := repo.New(gdb)
	authSvc := &service.AuthService{
		Repo:          r,
		Events:        producer,
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}

	e := httpserver.New(logger, m, &httpserver.Deps{
		Auth:     &httpserver.AuthHTTP{Svc: authSvc},
		Users:    &httpserver.UserHTTP{Svc: &service.UserService{Repo: r, Events: producer}},
		Catalog:  &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: producer, Index: index}},
		Cart:     &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Events: producer}},
		Wishlist: &httpserver.WishlistHTTP{Svc: &service.WishlistService{Repo: r, Events: producer}},
		Orders: &httpserver.OrderHTTP{Svc: &service.OrderService{
			Repo:   r,
			Events: producer,
			Placed: m.Orders,
		}},
		AuthMW:         authmw.NewAutoRefreshMiddleware(authSvc),
		Ready:          r.Ping,
		MetricsHandler: metrics.Handler(prometheus.DefaultGatherer),
		LoginRate:      cfg.LoginRateLimit,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := producer.Close(); err != nil {
		logger.Error("producer close", "error", err)
	}
	db.Close(gdb)

	logger.Info("stopped")
}
