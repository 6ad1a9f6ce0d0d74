package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures process-level configuration. Optional backing services
// (Postgres, Redis, Kafka) are enabled by presence of their URL: an empty
// value selects the in-memory or no-op implementation so dev and tests run
// with zero infrastructure.
type Config struct {
	Addr        string
	MetricsAddr string

	DatabaseURL string
	RedisURL    string

	KafkaBrokers       []string
	KafkaActivityTopic string

	JWTSigningKey string
	TokenTTL      time.Duration

	StatsCacheTTL time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
// A .env file is honored when present (local development); real
// environments set variables directly.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:               getenv("ARDHI_ADDR", ":8080"),
		MetricsAddr:        getenv("ARDHI_METRICS_ADDR", ":9090"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		KafkaActivityTopic: getenv("KAFKA_ACTIVITY_TOPIC", "ardhi.activity"),
		JWTSigningKey:      getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenTTL:           getduration("ARDHI_TOKEN_TTL", 24*time.Hour),
		StatsCacheTTL:      getduration("ARDHI_STATS_CACHE_TTL", 30*time.Second),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
