package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/sagaasachin/MaanClothing/internal/cache"
	"github.com/sagaasachin/MaanClothing/internal/config"
	"github.com/sagaasachin/MaanClothing/internal/consumer"
	h "github.com/sagaasachin/MaanClothing/internal/http"
	"github.com/sagaasachin/MaanClothing/internal/logger"
	"github.com/sagaasachin/MaanClothing/internal/publisher"
	"github.com/sagaasachin/MaanClothing/internal/repository"
	s "github.com/sagaasachin/MaanClothing/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
		File:        cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck
	zap.ReplaceGlobals(zl)

	if err := run(cfg, zl); err != nil {
		zl.Fatal("storefront stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx := context.Background()

	// Set up MongoDB connection
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			zl.Warn("mongo disconnect failed", zap.Error(err))
		}
	}()
	zl.Info("connected to MongoDB", zap.String("database", cfg.MongoDBName))

	if err := repository.EnsureIndexes(ctx, mongoDB); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	var cartCache cache.CartCache = cache.Noop{}
	redisEnabled := cfg.RedisAddr != ""
	if redisEnabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		zl.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		cartCache = cache.NewRedisCache(redisClient)
	} else {
		zl.Info("REDIS_ADDR not set, cart cache disabled")
	}

	products := repository.NewProductRepository(mongoDB)
	carts := repository.NewCartRepository(mongoDB)
	wishlists := repository.NewWishlistRepository(mongoDB)
	profiles := repository.NewProfileRepository(mongoDB)
	orders := repository.NewOrderRepository(mongoDB)
	outbox := repository.NewOutboxRepository(mongoDB)

	cartService := s.NewCartService(carts, products, cartCache)
	checkoutService := s.NewCheckoutService(s.CheckoutDeps{
		Tx:           repository.NewTxRunner(mongoDB),
		Carts:        carts,
		Products:     products,
		Orders:       orders,
		Outbox:       outbox,
		CartCache:    cartService,
		DeliveryDays: cfg.DeliveryDays,
	})

	router := h.NewRouter(h.RouterConfig{
		Catalog:  s.NewCatalogService(products),
		Cart:     cartService,
		Wishlist: s.NewWishlistService(wishlists, products),
		Checkout: checkoutService,
		Orders:   s.NewOrderService(orders),
		Profile:  s.NewProfileService(profiles),
		Ping: func(ctx context.Context) error {
			return mongoDB.Client().Ping(ctx, nil)
		},
		Logger:             zl,
		JWTSecret:          []byte(cfg.JWTSecret),
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// gRPC carries health checks and reflection only
	healthServer := health.NewServer()
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port: %w", err)
	}

	pollCtx, stopPoller := context.WithCancel(ctx)
	defer stopPoller()
	pollerDone := make(chan struct{})
	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(outbox, zl, cfg.KafkaTopic, cfg.OutboxInterval, cfg.KafkaBrokers...)
		go func() {
			defer close(pollerDone)
			poller.Run(pollCtx)
		}()
		zl.Info("outbox poller started", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))

		if redisEnabled {
			evictor := consumer.NewCartEvictor(cartCache, zl, cfg.KafkaTopic, cfg.KafkaGroupID, cfg.KafkaBrokers...)
			go evictor.Run(pollCtx)
		}
	} else {
		close(pollerDone)
		zl.Warn("KAFKA_BROKERS not set, order events stay in the outbox")
	}

	errCh := make(chan error, 2)
	go func() {
		zl.Info("HTTP server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		zl.Info("gRPC server starting", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		zl.Info("shutting down", zap.String("signal", sig.String()))
	case runErr = <-errCh:
		zl.Error("server failed, shutting down", zap.Error(runErr))
	}

	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	stopPoller()
	select {
	case <-pollerDone:
	case <-shutdownCtx.Done():
		zl.Warn("outbox poller did not stop in time")
	}

	zl.Info("storefront stopped")
	return runErr
}
