package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все параметры запуска приложения.
type Config struct {
	Env             string
	HTTPPort        string
	StrapiURL       string
	StrapiAPIToken  string
	AuthCookie      string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	MaxUploadSizeMB int64
	RateLimitLimit  int64
	RateLimitPeriod time.Duration
	LogLevel        string
}

// Load читает переменные окружения и возвращает готовую конфигурацию.
func Load() (*Config, error) {
	// Загружаем .env только если он существует, иначе используем системные переменные.
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("config: .env не найден, используем переменные окружения: %v", err)
	}

	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:            env,
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		StrapiURL:      strings.TrimRight(getEnv("STRAPI_URL", "http://localhost:1337"), "/"),
		StrapiAPIToken: getEnv("STRAPI_API_TOKEN", ""),
		AuthCookie:     getEnv("AUTH_COOKIE", "jwt"),
		LogLevel:       getEnv("LOG_LEVEL", ""),
	}

	if cfg.LogLevel == "" {
		if env == "development" {
			cfg.LogLevel = "debug"
		} else {
			cfg.LogLevel = "info"
		}
	}

	if cfg.StrapiURL == "" {
		return nil, fmt.Errorf("config: STRAPI_URL не может быть пустым")
	}

	// CORS allowed origins
	originsStr := getEnv("CORS_ALLOWED_ORIGINS", "")
	if originsStr == "" {
		if env == "production" {
			return nil, fmt.Errorf("config: CORS_ALLOWED_ORIGINS обязателен в production")
		}
		cfg.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	} else {
		cfg.AllowedOrigins = strings.Split(originsStr, ",")
		for i, origin := range cfg.AllowedOrigins {
			cfg.AllowedOrigins[i] = strings.TrimSpace(origin)
		}
	}

	cfg.RequestTimeout = mustParseDuration(getEnv("STRAPI_TIMEOUT", "30s"))
	cfg.MaxUploadSizeMB = mustParseInt64(getEnv("MAX_UPLOAD_MB", "10"))

	// Rate limiting настройки (для /api/auth)
	cfg.RateLimitLimit = mustParseInt64(getEnv("RATE_LIMIT_LIMIT", "10"))
	cfg.RateLimitPeriod = mustParseDuration(getEnv("RATE_LIMIT_PERIOD", "1m"))

	return cfg, nil
}

// SecureCookies сообщает, нужно ли ставить Secure флаг на auth cookie.
func (c *Config) SecureCookies() bool {
	return c.Env == "production"
}

// getEnv возвращает значение переменной окружения или дефолт.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// mustParseDuration безопасно парсит строку в duration.
func mustParseDuration(v string) time.Duration {
	dur, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: не удалось распарсить длительность %q: %v", v, err)
	}
	return dur
}

// mustParseInt64 безопасно парсит строку в int64.
func mustParseInt64(v string) int64 {
	num, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Fatalf("config: не удалось распарсить число %q: %v", v, err)
	}
	return num
}
