package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config carries every runtime setting the service reads from the
// environment. A .env file is honored in local development.
type Config struct {
	Port        string
	DatabaseURL string

	// Base URL of the storefront UI, used to build payment redirect targets.
	UIBaseURL string

	MollieAPIKey string

	S3Bucket   string
	S3Region   string
	S3Endpoint string

	// OAuth token endpoint used by the auth bridge (password + refresh grants).
	OAuthTokenURL     string
	OAuthClientID     string
	OAuthClientSecret string

	// Secret used to verify bearer access tokens on incoming requests.
	JWTSecret string

	KafkaBrokers    []string
	KafkaOrderTopic string

	DefaultPageSize int

	// Timeout applied to every outbound call (payment provider, token
	// endpoint, object storage).
	ExternalTimeout time.Duration
}

func Load() *Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Warn().Err(err).Msg("failed to load .env file")
		}
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		UIBaseURL:         strings.TrimRight(getEnv("UI_BASE_URL", "http://localhost:3000"), "/"),
		MollieAPIKey:      getEnv("MOLLIE_API_TOKEN", ""),
		S3Bucket:          getEnv("S3_BUCKET", "tsb-storage"),
		S3Region:          getEnv("S3_REGION", "eu-west-3"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		OAuthTokenURL:     getEnv("OAUTH_TOKEN_URL", ""),
		OAuthClientID:     getEnv("OAUTH_CLIENT_ID", ""),
		OAuthClientSecret: getEnv("OAUTH_CLIENT_SECRET", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		KafkaBrokers:      splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaOrderTopic:   getEnv("KAFKA_ORDER_TOPIC", "orders.paid"),
		DefaultPageSize:   getEnvInt("DEFAULT_PAGE_SIZE", 20),
		ExternalTimeout:   getEnvDuration("EXTERNAL_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("invalid integer in environment, using fallback")
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("invalid duration in environment, using fallback")
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
