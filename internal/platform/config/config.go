package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	PublicBaseURL string
	ServiceName   string
	LogLevel      string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	HTTPTimeout   time.Duration
	DIDCacheTTL   time.Duration
	// InsecureDIDResolution resolves did:web documents over plain HTTP. Local development only.
	InsecureDIDResolution bool
	DatabaseURL           string
	Redis                 RedisConfig
	Kafka                 KafkaConfig
}

// RedisConfig configures the shared Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the publish event sink. No brokers means events are
// only logged.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from ANONCREDS_* environment variables.
func FromEnv() Server {
	addr := getenv("ANONCREDS_ADDR", ":8080")
	return Server{
		Addr:                  addr,
		PublicBaseURL:         strings.TrimRight(getenv("ANONCREDS_PUBLIC_BASE_URL", "http://localhost"+addr), "/"),
		ServiceName:           getenv("ANONCREDS_SERVICE_NAME", "anoncreds"),
		LogLevel:              getenv("ANONCREDS_LOG_LEVEL", "info"),
		JWTSigningKey:         getenv("ANONCREDS_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:             getenv("ANONCREDS_JWT_ISSUER", "didweb-anoncreds"),
		JWTAudience:           getenv("ANONCREDS_JWT_AUDIENCE", "anoncreds-publishers"),
		HTTPTimeout:           duration("ANONCREDS_HTTP_TIMEOUT", 10*time.Second),
		DIDCacheTTL:           duration("ANONCREDS_DID_CACHE_TTL", 5*time.Minute),
		InsecureDIDResolution: os.Getenv("ANONCREDS_INSECURE_DID_RESOLUTION") == "true",
		DatabaseURL:           os.Getenv("ANONCREDS_DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("ANONCREDS_REDIS_URL"),
			PoolSize:     integer("ANONCREDS_REDIS_POOL_SIZE", 10),
			MinIdleConns: integer("ANONCREDS_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  duration("ANONCREDS_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  duration("ANONCREDS_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: duration("ANONCREDS_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: list("ANONCREDS_KAFKA_BROKERS"),
			Topic:   getenv("ANONCREDS_KAFKA_TOPIC", "anoncreds.resources"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func integer(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func list(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
