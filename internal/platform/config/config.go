package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	JWTSigningKey  string
	RequestTimeout time.Duration
	LogLevel       string
	LayoutFile     string
	// DevOperatorID authenticates every request as this operator when no
	// bearer token is sent. Only honoured when set.
	DevOperatorID string

	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	CoreBanking CoreBankingConfig
}

// DatabaseConfig selects PostgreSQL. An empty URL runs in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the layout cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LayoutTTL    time.Duration
}

// KafkaConfig configures the outbox relay. No brokers disables it.
type KafkaConfig struct {
	Brokers       []string
	Topic         string
	RelayInterval time.Duration
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// CoreBankingConfig points at the checkbook SOAP service.
type CoreBankingConfig struct {
	SOAPURL          string
	Timeout          time.Duration
	FailureThreshold int
	Cooldown         time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	timeout, err := durationEnv("REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return Server{}, err
	}
	soapTimeout, err := durationEnv("CORE_BANKING_TIMEOUT", 10*time.Second)
	if err != nil {
		return Server{}, err
	}
	layoutTTL, err := durationEnv("LAYOUT_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return Server{}, err
	}
	relayInterval, err := durationEnv("OUTBOX_RELAY_INTERVAL", 2*time.Second)
	if err != nil {
		return Server{}, err
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:           stringEnv("CHEQUEPRINT_ADDR", ":8080"),
		JWTSigningKey:  jwtSigningKey,
		RequestTimeout: timeout,
		LogLevel:       stringEnv("LOG_LEVEL", "info"),
		LayoutFile:     os.Getenv("LAYOUT_FILE"),
		DevOperatorID:  os.Getenv("DEV_OPERATOR_ID"),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			LayoutTTL:    layoutTTL,
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:         stringEnv("KAFKA_TOPIC", "chequeprint.events"),
			RelayInterval: relayInterval,
		},
		CoreBanking: CoreBankingConfig{
			SOAPURL:          os.Getenv("CORE_BANKING_SOAP_URL"),
			Timeout:          soapTimeout,
			FailureThreshold: 5,
			Cooldown:         30 * time.Second,
		},
	}, nil
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// durationEnv accepts Go durations ("15s") or whole seconds ("15").
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a positive duration", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
