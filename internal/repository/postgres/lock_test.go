package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	lockUserID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	lockOrgID  = "550e8400-e29b-41d4-a716-446655440000"
)

// dryRun opens a database that renders queries without sending them and
// records every SELECT it builds.
func dryRun(t *testing.T, dialector gorm.Dialector) (*gorm.DB, *[]string) {
	t.Helper()

	db, err := gorm.Open(dialector, &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	var statements []string
	err = db.Callback().Query().After("gorm:query").Register("test:record_sql", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	})
	require.NoError(t, err)
	return db, &statements
}

func dryRunPostgres(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()
	return dryRun(t, pgdriver.New(pgdriver.Config{
		DSN: "host=localhost user=meter dbname=meter sslmode=disable",
	}))
}

func TestMeteringTx_LocksUserThenOrganization(t *testing.T) {
	db, statements := dryRunPostgres(t)
	tx := &meteringTx{tx: db}

	_, err := tx.LockUser(lockUserID)
	require.NoError(t, err)
	_, err = tx.LockOrganization(lockOrgID)
	require.NoError(t, err)

	require.Len(t, *statements, 2)
	assert.Contains(t, (*statements)[0], `FROM "users"`)
	assert.Contains(t, (*statements)[0], "FOR UPDATE")
	assert.Contains(t, (*statements)[1], `FROM "organizations"`)
	assert.Contains(t, (*statements)[1], "FOR UPDATE")
}

func TestLockMembersThenOrganization(t *testing.T) {
	db, statements := dryRunPostgres(t)

	_, err := lockMembersThenOrganization(db, lockOrgID)
	require.NoError(t, err)

	require.Len(t, *statements, 2)
	assert.Contains(t, (*statements)[0], `FROM "users"`)
	assert.Contains(t, (*statements)[0], "organization_id =")
	assert.Contains(t, (*statements)[0], "FOR UPDATE")
	assert.Contains(t, (*statements)[1], `FROM "organizations"`)
	assert.Contains(t, (*statements)[1], "FOR UPDATE")
}

func TestForUpdate_SkippedOnSQLite(t *testing.T) {
	db, statements := dryRun(t, sqlite.Open("file::memory:"))

	_, err := lockOrganization(db, lockOrgID)
	require.NoError(t, err)

	require.Len(t, *statements, 1)
	assert.Contains(t, (*statements)[0], "organizations")
	assert.NotContains(t, (*statements)[0], "FOR UPDATE")
}
