package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL string
	ServerPort  int
	LogLevel    slog.Level

	CORSAllowedOrigins []string

	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	LeaderboardCacheTTL time.Duration

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	ScoreMin int
	ScoreMax int
}

// CacheEnabled reports whether a redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// ArchiveEnabled reports whether every R2 setting is present.
func (c *Config) ArchiveEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = dsnFromParts()
	}
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	port, err := intFromEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(envOr("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	redisDB, err := intFromEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cacheTTL, err := time.ParseDuration(envOr("LEADERBOARD_CACHE_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEADERBOARD_CACHE_TTL environment variable: %w", err)
	}

	scoreMin, err := intFromEnv("SCORE_MIN", 5)
	if err != nil {
		return nil, err
	}
	scoreMax, err := intFromEnv("SCORE_MAX", 100)
	if err != nil {
		return nil, err
	}
	if scoreMin < 0 || scoreMin > scoreMax {
		return nil, fmt.Errorf("SCORE_MIN (%d) must be non-negative and not greater than SCORE_MAX (%d)", scoreMin, scoreMax)
	}

	cfg := &Config{
		DatabaseURL:         dbURL,
		ServerPort:          port,
		LogLevel:            level,
		CORSAllowedOrigins:  splitList(envOr("CORS_ALLOWED_ORIGINS", "*")),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             redisDB,
		LeaderboardCacheTTL: cacheTTL,
		R2AccountID:         os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:       os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:   os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:        os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:     os.Getenv("R2_PUBLIC_BASE_URL"),
		ScoreMin:            scoreMin,
		ScoreMax:            scoreMax,
	}

	return cfg, nil
}

// dsnFromParts собирает DSN из POSTGRES_* переменных, если DATABASE_URL не задан.
func dsnFromParts() string {
	user := os.Getenv("POSTGRES_USER")
	if user == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user,
		os.Getenv("POSTGRES_PASSWORD"),
		envOr("POSTGRES_HOSTNAME", "localhost"),
		envOr("DATABASE_PORT", "5432"),
		envOr("POSTGRES_DB", "bdd"),
		envOr("POSTGRES_SSLMODE", "disable"),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
