// Package testutil opens throwaway sqlite databases with the production schema.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kingrain94/token-quota-api/internal/config"
	"github.com/kingrain94/token-quota-api/internal/repository/postgres"
)

// singleDefaultIndex mirrors the partial unique index of the SQL migrations.
const singleDefaultIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_pricing_plans_single_default
	ON pricing_plans (is_default) WHERE is_default`

// NewTestDB returns an in-memory database private to the calling test. It has
// a single connection, so transactions run one at a time the way row locks
// would serialize them on postgres.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error

	if err := postgres.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(singleDefaultIndex).Error; err != nil {
		t.Fatalf("create default plan index: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// NewTestConnections wraps NewTestDB for code that expects a writer and a reader.
func NewTestConnections(t testing.TB) *config.DatabaseConnections {
	t.Helper()
	return config.NewSingleDatabaseConnections(NewTestDB(t))
}
