package config

import (
	"os"
	"strings"
	"time"
)

// Config captures process-level configuration so main stays lean. Provider
// credentials are not here: they live per tenant in the provider store.
type Config struct {
	Addr            string
	PostgresDSN     string
	Redis           RedisConfig
	Kafka           KafkaConfig
	AdminTokenHash  string
	JWTSigningKey   string
	ShutdownTimeout time.Duration
}

// RedisConfig holds connection settings for the Redis client. An empty URL
// disables Redis and falls back to in-memory implementations.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds audit pipeline settings. Empty brokers disable Kafka
// publishing; audit events still go to the structured log.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// InitiationLockTTL bounds how long a per-user initiation lock may be held
// before it expires on its own (crash protection, not a correctness lever).
var InitiationLockTTL = 2 * time.Minute

// FromEnv builds a Config from environment variables with dev defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:            getenv("VERIFLOW_ADDR", ":8080"),
		PostgresDSN:     os.Getenv("VERIFLOW_POSTGRES_DSN"),
		AdminTokenHash:  os.Getenv("VERIFLOW_ADMIN_TOKEN_HASH"),
		JWTSigningKey:   getenv("VERIFLOW_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		ShutdownTimeout: 10 * time.Second,
	}

	cfg.Redis = RedisConfig{
		URL:          os.Getenv("VERIFLOW_REDIS_URL"),
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	if brokers := os.Getenv("VERIFLOW_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka = KafkaConfig{
			Brokers:    strings.Split(brokers, ","),
			AuditTopic: getenv("VERIFLOW_KAFKA_AUDIT_TOPIC", "veriflow.audit.v1"),
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
