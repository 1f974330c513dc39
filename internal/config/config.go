package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	HTTPPort string
	GRPCPort string

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	KafkaBrokers   []string
	KafkaTopic     string
	KafkaGroupID   string
	OutboxInterval time.Duration

	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	DeliveryDays       int

	LogLevel string
	LogFile  string
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv != "production"
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	p := parser{}
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		GRPCPort:           getEnv("GRPC_PORT", "50060"),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		MongoDBName:        getEnv("MONGO_DB_NAME", "maanclothing"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            p.int("REDIS_DB", 0),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "order-events"),
		KafkaGroupID:       getEnv("KAFKA_GROUP_ID", "storefront-cart-cache"),
		OutboxInterval:     p.duration("OUTBOX_INTERVAL", time.Second),
		RequestTimeout:     p.duration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: 1 << 20, // 1MB
		DeliveryDays:       p.int("DELIVERY_DAYS", 7),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.DeliveryDays < 0 {
		return nil, fmt.Errorf("DELIVERY_DAYS must not be negative, got %d", cfg.DeliveryDays)
	}
	if cfg.OutboxInterval <= 0 {
		return nil, fmt.Errorf("OUTBOX_INTERVAL must be positive, got %s", cfg.OutboxInterval)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) int(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v
}

func (p *parser) duration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
