package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Sheets SheetsConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Observ ObservabilityConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// SheetsConfig points at the remote tabular store holding the ledger.
type SheetsConfig struct {
	BaseURL       string
	SpreadsheetID string
	AccessToken   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	TopicLedger   string
	ConsumerGroup string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
	PrometheusPort string
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	cacheTTLSeconds, _ := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "300"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Sheets: SheetsConfig{
			BaseURL:       getEnv("SHEETS_BASE_URL", "https://sheets.googleapis.com/v4/spreadsheets"),
			SpreadsheetID: getEnv("SHEETS_SPREADSHEET_ID", ""),
			AccessToken:   getEnv("SHEETS_ACCESS_TOKEN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			CacheTTL: time.Duration(cacheTTLSeconds) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicLedger:   getEnv("KAFKA_TOPIC_LEDGER_EVENTS", "ledger-events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "ledger-service-group"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
			PrometheusPort: getEnv("PROMETHEUS_PORT", "9090"),
		},
	}

	log.Printf("Config loaded: env=%s, port=%s", cfg.Server.Env, cfg.Server.Port)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
