package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	Port       int
	DBURL      string
	DBMaxConns int32
	LogLevel   string

	// TokenSecret signs access tokens. Rotating it invalidates every issued token.
	TokenSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ResultsCacheTTL    time.Duration
	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	OTELEnabled     bool
	OTELEndpoint    string
	OTELSampleRatio float64
}

func Load() Config {
	// a missing .env is fine, real deployments set the environment directly
	_ = godotenv.Load()

	return Config{
		Env:                getEnv("APP_ENV", "dev"),
		Port:               getEnvInt("PORT", 3000),
		DBURL:              buildDBURL(),
		DBMaxConns:         int32(getEnvInt("DB_MAX_CONNS", 10)),
		LogLevel:           getEnv("LOG_LEVEL", ""),
		TokenSecret:        getEnv("TOKEN", "dev-secret-change-me"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		ResultsCacheTTL:    getEnvDuration("RESULTS_CACHE_TTL", 5*time.Second),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		OTELEnabled:        getEnv("OTEL_ENABLED", "false") == "true",
		OTELEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELSampleRatio:    getEnvFloat("OTEL_SAMPLE_RATIO", 1),
	}
}

// Validate rejects settings that are only acceptable for local development.
func (c Config) Validate() error {
	if c.Env != "dev" && c.Env != "test" && c.TokenSecret == "dev-secret-change-me" {
		return fmt.Errorf("config: TOKEN must be set when APP_ENV=%s", c.Env)
	}
	if c.Port <= 0 {
		return fmt.Errorf("config: invalid PORT %d", c.Port)
	}
	return nil
}

func buildDBURL() string {
	if url := getEnv("DATABASE_URL", ""); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "quizvote")
	pass := getEnv("DB_PASSWORD", "quizvote")
	name := getEnv("DB_NAME", "quizvote")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %s=%q is not an integer, using %d\n", key, v, fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)

		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %s=%q is not a number, using %g\n", key, v, fallback)
			return fallback
		}

		return f
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %s=%q is not a duration, using %s\n", key, v, fallback)
			return fallback
		}

		return d
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
