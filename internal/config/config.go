package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process configuration read from the environment
type Config struct {
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	HTTPPort      string
	NATSURL       string
	OTLPEndpoint  string
	ServiceName   string

	JWTSecret    string
	SigninSecret string
	TokenTTL     time.Duration

	CORSAllowedOrigins string
	FeedPollInterval   time.Duration

	Recommender RecommenderConfig
}

// Load reads an optional .env file and then the environment
func Load() *Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	return &Config{
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DB", "hornethelper"),
		RedisAddr:     strings.TrimPrefix(getEnv("REDIS_URI", "localhost:6379"), "redis://"),
		HTTPPort:      getEnv("PORT", "8080"),
		NATSURL:       getEnv("NATS_URL", ""),
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:   getEnv("SERVICE_NAME", "hornet-helper"),

		JWTSecret:    getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		SigninSecret: getEnv("SIGNIN_SECRET", "hornet-dev-signin"),
		TokenTTL:     getDuration("TOKEN_TTL", 24*time.Hour),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:4000"),
		FeedPollInterval:   getDuration("FEED_POLL_INTERVAL", 5*time.Second),

		Recommender: DefaultRecommenderConfig(),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
