package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Roles of a database pool. Each reads its settings from POSTGRES_<ROLE>_*.
const (
	roleWriter = "writer"
	roleReader = "reader"
)

var gormLogLevels = map[string]logger.LogLevel{
	"silent": logger.Silent,
	"error":  logger.Error,
	"warn":   logger.Warn,
	"info":   logger.Info,
}

type DatabaseConfig struct {
	Role     string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Pool     ConnectionPoolConfig
}

type ConnectionPoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoadDatabaseConfig reads the settings of one pool role. Pool sizes fall back
// to the shared DB_* variables when no role specific value is set.
func LoadDatabaseConfig(role string) DatabaseConfig {
	env := func(name, fallback string) string {
		return getEnv("POSTGRES_"+strings.ToUpper(role)+"_"+name, fallback)
	}
	poolInt := func(name string, fallback int) int {
		return getEnvInt("DB_"+strings.ToUpper(role)+"_"+name, getEnvInt("DB_"+name, fallback))
	}

	return DatabaseConfig{
		Role:     role,
		Host:     env("HOST", "localhost"),
		Port:     env("PORT", "5432"),
		User:     env("USER", "postgres"),
		Password: env("PASSWORD", ""),
		DBName:   env("DB_NAME", "token_quota"),
		SSLMode:  env("SSL_MODE", "disable"),
		Pool: ConnectionPoolConfig{
			MaxOpenConns:    poolInt("MAX_OPEN_CONNS", 50),
			MaxIdleConns:    poolInt("MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
		},
	}
}

// DSN pins the session to UTC so CURRENT_DATE agrees with the daily windows.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC application_name=token-quota-%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode, c.Role)
}

// Open connects and applies the pool limits.
func (c DatabaseConfig) Open() (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(c.DSN()), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect %s database: %w", c.Role, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%s database handle: %w", c.Role, err)
	}
	sqlDB.SetMaxOpenConns(c.Pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(c.Pool.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(c.Pool.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(c.Pool.ConnMaxIdleTime)

	return db, nil
}

// gormConfig writes every timestamp in UTC because daily windows are UTC calendar days.
func gormConfig() *gorm.Config {
	level, ok := gormLogLevels[getEnv("DB_LOG_LEVEL", "warn")]
	if !ok {
		level = logger.Warn
	}
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// DatabaseConnections holds the writer pool and the read replica pool.
type DatabaseConnections struct {
	Writer *gorm.DB
	Reader *gorm.DB
}

func NewDatabaseConnections() (*DatabaseConnections, error) {
	writer, err := LoadDatabaseConfig(roleWriter).Open()
	if err != nil {
		return nil, err
	}

	reader, err := LoadDatabaseConfig(roleReader).Open()
	if err != nil {
		if sqlDB, dbErr := writer.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, err
	}

	return &DatabaseConnections{Writer: writer, Reader: reader}, nil
}

// NewSingleDatabaseConnections uses one pool for both roles, for tools that
// neither need nor have a read replica.
func NewSingleDatabaseConnections(db *gorm.DB) *DatabaseConnections {
	return &DatabaseConnections{Writer: db, Reader: db}
}

// Ping checks both pools.
func (dc *DatabaseConnections) Ping(ctx context.Context) error {
	var errs []error
	for role, db := range dc.pools() {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", role, err))
		}
	}
	return errors.Join(errs...)
}

func (dc *DatabaseConnections) Close() error {
	var errs []error
	for role, db := range dc.pools() {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("close %s database: %w", role, err))
		}
	}
	return errors.Join(errs...)
}

// pools lists each distinct pool once.
func (dc *DatabaseConnections) pools() map[string]*gorm.DB {
	pools := make(map[string]*gorm.DB, 2)
	if dc.Writer != nil {
		pools[roleWriter] = dc.Writer
	}
	if dc.Reader != nil && dc.Reader != dc.Writer {
		pools[roleReader] = dc.Reader
	}
	return pools
}
