package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/sagaasachin/MaanClothing/internal/config"
	"github.com/sagaasachin/MaanClothing/internal/logger"
	"github.com/sagaasachin/MaanClothing/internal/repository"
)

func main() {
	file := flag.String("file", "products.json", "JSON array of products to import")
	timeout := flag.Duration("timeout", time.Minute, "overall import timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	zl, err := logger.New(logger.Options{Level: cfg.LogLevel, Development: cfg.IsDevelopment()})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	f, err := os.Open(*file)
	if err != nil {
		zl.Fatal("failed to open product file", zap.String("file", *file), zap.Error(err))
	}
	defer f.Close()

	products, err := parseProducts(f)
	if err != nil {
		zl.Fatal("invalid product file", zap.String("file", *file), zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		zl.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer db.Client().Disconnect(context.Background()) //nolint:errcheck

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		zl.Fatal("failed to create indexes", zap.Error(err))
	}

	res, err := repository.NewProductRepository(db).Upsert(ctx, products)
	if err != nil {
		zl.Fatal("import failed", zap.Error(err))
	}
	zl.Info("products imported",
		zap.Int("read", len(products)),
		zap.Int64("inserted", res.Inserted),
		zap.Int64("updated", res.Updated))
}
