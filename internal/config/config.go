package config

import (
	"os"
	"time"
)

type Config struct {
	ServerPort         int           `json:"server_port"`
	JWTSecretKey       string        `json:"jwt_secret_key"`
	JWTExpirationHours int           `json:"jwt_expiration_hours"`
	DefaultRateLimit   int           `json:"default_rate_limit"`
	GlobalRateLimit    int           `json:"global_rate_limit"`
	AutoMigrate        bool          `json:"auto_migrate"`
	SweepLockTTL       time.Duration `json:"sweep_lock_ttl"`
	Tenancy            TenancyConfig `json:"tenancy"`
	MetricsUsername    string        `json:"-"`
	MetricsPassword    string        `json:"-"`
}

// TenancyConfig holds the values a newly enrolled organization starts with.
type TenancyConfig struct {
	DefaultMonthlyTokenLimit int64 `json:"default_monthly_token_limit"`
	DefaultUsersPaid         int   `json:"default_users_paid"`
}

func DefaultTenancyConfig() TenancyConfig {
	return TenancyConfig{
		DefaultMonthlyTokenLimit: int64(getEnvInt("ORG_DEFAULT_MONTHLY_TOKEN_LIMIT", 1000)),
		DefaultUsersPaid:         getEnvInt("ORG_DEFAULT_USERS_PAID", 10),
	}
}

func Load() (*Config, error) {
	return &Config{
		ServerPort:         getEnvInt("SERVER_PORT", 10000),
		JWTSecretKey:       os.Getenv("JWT_SECRET_KEY"),
		JWTExpirationHours: getEnvInt("JWT_EXPIRATION_HOURS", 24),
		DefaultRateLimit:   getEnvInt("DEFAULT_RATE_LIMIT", 1000), // requests per minute per organization
		GlobalRateLimit:    getEnvInt("GLOBAL_RATE_LIMIT", 10000), // requests per minute per IP
		AutoMigrate:        getEnvBool("DB_AUTO_MIGRATE", false),
		SweepLockTTL:       getEnvDuration("SWEEP_LOCK_TTL", 5*time.Minute),
		Tenancy:            DefaultTenancyConfig(),
		MetricsUsername:    os.Getenv("METRICS_USERNAME"),
		MetricsPassword:    os.Getenv("METRICS_PASSWORD"),
	}, nil
}

// WorkerConfig sizes an SQS worker process.
type WorkerConfig struct {
	Count        int
	PollInterval time.Duration
}

func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Count:        getEnvInt("WORKER_COUNT", 1),
		PollInterval: getEnvDuration("WORKER_POLL_INTERVAL", 5*time.Second),
	}
}
