package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/solenne/shopcore/utils"
)

// Config carries everything the process needs from the environment. It is
// built once in main and handed to constructors; nothing else reads env vars.
type Config struct {
	Port        string
	Environment string

	MongoURI     string
	DatabaseName string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	GCSBucket       string
	CredentialsFile string

	AllowedOrigins []string

	AdminEmail    string
	AdminPassword string
}

func Load() (Config, error) {
	cfg := Config{
		Port:        envDefault("PORT", "8080"),
		Environment: envDefault("ENVIRONMENT", "development"),

		MongoURI:     os.Getenv("MONGODB_URI"),
		DatabaseName: envDefault("DATABASE_NAME", "shopcore"),

		RedisAddr:     envDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       utils.ParseIntDefault(os.Getenv("REDIS_DB"), 0),

		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		AccessTokenTTL:     accessTTL(),
		RefreshTokenTTL:    refreshTTL(),

		GCSBucket:       os.Getenv("GCS_BUCKET"),
		CredentialsFile: os.Getenv("CREDENTIALS_FILE_LOCATION"),

		AdminEmail:    strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if cfg.MongoURI == "" {
		return cfg, fmt.Errorf("config: MONGODB_URI is required")
	}
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return cfg, fmt.Errorf("config: ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}

	return cfg, nil
}

// IsProduction controls the Secure flag on auth cookies.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func accessTTL() time.Duration {
	min := utils.ParseIntDefault(os.Getenv("ACCESS_TOKEN_TTL_MINUTES"), 0)
	if min <= 0 {
		min = 15
	}
	return time.Duration(min) * time.Minute
}

func refreshTTL() time.Duration {
	days := utils.ParseIntDefault(os.Getenv("REFRESH_TOKEN_TTL_DAYS"), 0)
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}
