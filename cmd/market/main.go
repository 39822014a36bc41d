package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	cartapp "github.com/dwikikusuma/cosmo-market/internal/cart/app"
	cartadapter "github.com/dwikikusuma/cosmo-market/internal/cart/infra/adapter"
	cartstore "github.com/dwikikusuma/cosmo-market/internal/cart/infra/sqlstore"

	catalogapp "github.com/dwikikusuma/cosmo-market/internal/catalog/app"
	catalogstore "github.com/dwikikusuma/cosmo-market/internal/catalog/infra/sqlstore"

	cosmocatapp "github.com/dwikikusuma/cosmo-market/internal/cosmocat/app"

	orderapp "github.com/dwikikusuma/cosmo-market/internal/order/app"
	orderadapter "github.com/dwikikusuma/cosmo-market/internal/order/infra/adapter"
	orderstore "github.com/dwikikusuma/cosmo-market/internal/order/infra/sqlstore"

	"github.com/dwikikusuma/cosmo-market/internal/server"
	"github.com/dwikikusuma/cosmo-market/pkg/config"
	"github.com/dwikikusuma/cosmo-market/pkg/events"
	"github.com/dwikikusuma/cosmo-market/pkg/feature"
	"github.com/dwikikusuma/cosmo-market/pkg/idempotency"
	"github.com/dwikikusuma/cosmo-market/pkg/logger"
	"github.com/dwikikusuma/cosmo-market/pkg/shutdown"
	"github.com/dwikikusuma/cosmo-market/pkg/sqldb"
	"github.com/dwikikusuma/cosmo-market/pkg/tracing"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const serviceName = "cosmo-market"

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: serviceName, Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	stopTracing, err := tracing.Init(ctx, tracing.Options{
		Service:      serviceName,
		Env:          cfg.AppEnv,
		Exporter:     cfg.OTelExporter,
		OTLPEndpoint: cfg.OTelEndpoint,
	})
	if err != nil {
		log.Error("tracing init failed", slog.Any("err", err))
		os.Exit(1)
	}

	db, dialect := mustDB(ctx, log, cfg.DB)
	defer db.Close()

	publisher, closePublisher := newPublisher(log, cfg)
	defer closePublisher()

	idem, closeIdem := newIdempotencyStore(ctx, log, cfg)
	defer closeIdem()

	gate := feature.NewGate(map[string]bool{
		feature.CosmoCats:     cfg.CosmoCatsEnabled,
		feature.KittyProducts: cfg.KittyProductsEnabled,
	})

	// Catalog
	catalogSvc := catalogapp.NewService(catalogstore.NewProductRepo(db, dialect))

	// Cart
	cartSvc := cartapp.NewService(
		cartstore.NewCartRepo(db, dialect),
		cartadapter.NewCatalogServiceReader(catalogSvc),
		cartapp.WithPublisher(publisher),
		cartapp.WithLogger(log),
		cartapp.WithMaxConcurrent(cfg.CartPricingConcurrency),
	)

	// Order
	orderSvc := orderapp.NewService(
		orderstore.NewOrderRepo(db, dialect),
		orderadapter.NewCatalogServiceReader(catalogSvc),
		orderapp.WithPublisher(publisher),
		orderapp.WithLogger(log),
	)

	handler := server.NewRouter(server.Deps{
		Log:         log,
		Carts:       cartSvc,
		Orders:      orderSvc,
		Products:    catalogSvc,
		CosmoCats:   cosmocatapp.NewService(gate),
		Gate:        gate,
		Idempotency: idem,
		Ready:       db.PingContext,
	})

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Error("listen failed", slog.Any("err", err), slog.String("addr", grpcAddr))
		os.Exit(1)
	}

	healthSrv := health.NewServer()
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		log.Info("grpc starting", slog.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("grpc serve error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")
	healthSrv.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}
	if !shutdown.Graceful(cfg.ShutdownTimeout, grpcServer.GracefulStop, grpcServer.Stop) {
		log.Warn("graceful stop timeout, forcing stop")
	}

	wg.Wait()

	if err := stopTracing(shutdownCtx); err != nil {
		log.Warn("tracing shutdown error", slog.Any("err", err))
	}
	log.Info("bye")
}

func mustDB(ctx context.Context, log *slog.Logger, cfg sqldb.Config) (*sql.DB, sqldb.Dialect) {
	db, dialect, err := sqldb.Open(ctx, cfg)
	if err != nil {
		log.Error("db open failed", slog.Any("err", err), slog.String("driver", cfg.Driver))
		os.Exit(1)
	}
	if err := sqldb.Migrate(ctx, db, dialect); err != nil {
		log.Error("db migrate failed", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("database ready", slog.String("dialect", string(dialect)))
	return db, dialect
}

func newPublisher(log *slog.Logger, cfg config.Config) (events.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("kafka disabled, events are dropped")
		return events.NopPublisher{}, func() {}
	}

	w := events.NewKafkaWriter(cfg.KafkaBrokers)
	return events.NewKafkaPublisher(w, cfg.KafkaTopic), func() {
		if err := w.Close(); err != nil {
			log.Warn("kafka writer close error", slog.Any("err", err))
		}
	}
}

func newIdempotencyStore(ctx context.Context, log *slog.Logger, cfg config.Config) (idempotency.Store, func()) {
	if cfg.RedisAddr == "" {
		log.Info("redis disabled, Idempotency-Key is ignored")
		return nil, func() {}
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis ping failed", slog.Any("err", err), slog.String("addr", cfg.RedisAddr))
	}
	return idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL), func() { _ = rdb.Close() }
}
