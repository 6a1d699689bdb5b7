package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "KarobarPay"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultTokenTTL       = 24 * time.Hour
	defaultSessionTTL     = 24 * time.Hour
	defaultIdempotencyTTL = 24 * time.Hour
	defaultPayoutMin      = 500
	defaultPayoutMax      = 1_000_000
)

// Platform captures runtime configuration for the platform API service.
type Platform struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	TokenSecret    string
	TokenTTL       time.Duration
	IdempotencyTTL time.Duration
	ShutdownPeriod time.Duration
	DBMaxConns     int32
	AdminEmail     string
	AdminPassword  string
}

// Console captures runtime configuration for the operator console.
type Console struct {
	AppName         string
	APIBaseURL      string
	RedisURL        string
	LogLevel        string
	SessionTTL      time.Duration
	PayoutMinAmount int64
	PayoutMaxAmount int64
}

// LoadPlatform reads platform service configuration from the environment.
func LoadPlatform() (Platform, error) {
	cfg := Platform{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		TokenSecret:    os.Getenv("TOKEN_SECRET"),
		TokenTTL:       defaultTokenTTL,
		IdempotencyTTL: defaultIdempotencyTTL,
		ShutdownPeriod: defaultShutdownDelay,
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
	}

	var err error
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", cfg.TokenTTL); err != nil {
		return Platform{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Platform{}, err
	}
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Platform{}, err
	}
	maxConns, err := int64Env("DB_MAX_CONNS", 0)
	if err != nil {
		return Platform{}, err
	}
	cfg.DBMaxConns = int32(maxConns)

	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return Platform{}, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	if cfg.TokenSecret == "" {
		if !IsDev(cfg.AppEnv) {
			return Platform{}, fmt.Errorf("TOKEN_SECRET must be set when APP_ENV=%s", cfg.AppEnv)
		}
		cfg.TokenSecret = "karobar-dev-secret"
	}

	if !IsDev(cfg.AppEnv) {
		if cfg.DatabaseURL == "" {
			return Platform{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Platform{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// LoadConsole reads operator console configuration from the environment.
func LoadConsole() (Console, error) {
	cfg := Console{
		AppName:         getEnv("APP_NAME", defaultAppName),
		APIBaseURL:      os.Getenv("API_BASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		SessionTTL:      defaultSessionTTL,
		PayoutMinAmount: defaultPayoutMin,
		PayoutMaxAmount: defaultPayoutMax,
	}

	var err error
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", cfg.SessionTTL); err != nil {
		return Console{}, err
	}
	if cfg.PayoutMinAmount, err = int64Env("PAYOUT_MIN_AMOUNT", cfg.PayoutMinAmount); err != nil {
		return Console{}, err
	}
	if cfg.PayoutMaxAmount, err = int64Env("PAYOUT_MAX_AMOUNT", cfg.PayoutMaxAmount); err != nil {
		return Console{}, err
	}

	if cfg.APIBaseURL == "" {
		return Console{}, fmt.Errorf("API_BASE_URL must be set")
	}
	if cfg.PayoutMinAmount <= 0 || cfg.PayoutMaxAmount < cfg.PayoutMinAmount {
		return Console{}, fmt.Errorf("invalid payout bounds: min=%d max=%d", cfg.PayoutMinAmount, cfg.PayoutMaxAmount)
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Platform) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the environment name denotes a local development setup.
func IsDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func int64Env(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
