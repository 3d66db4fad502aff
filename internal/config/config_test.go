package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DB_AUTO_MIGRATE", "")
	t.Setenv("SWEEP_LOCK_TTL", "")
	t.Setenv("ORG_DEFAULT_USERS_PAID", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.ServerPort)
	assert.Equal(t, 24, cfg.JWTExpirationHours)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, 5*time.Minute, cfg.SweepLockTTL)
	assert.Equal(t, int64(1000), cfg.Tenancy.DefaultMonthlyTokenLimit)
	assert.Equal(t, 10, cfg.Tenancy.DefaultUsersPaid)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("SWEEP_LOCK_TTL", "90s")
	t.Setenv("ORG_DEFAULT_USERS_PAID", "25")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 90*time.Second, cfg.SweepLockTTL)
	assert.Equal(t, 25, cfg.Tenancy.DefaultUsersPaid)
}

func TestOpenSearchConfig_IndexNames(t *testing.T) {
	cfg := &OpenSearchConfig{IndexPrefix: "usage_events"}
	at := time.Date(2025, 3, 31, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))

	assert.Equal(t, "usage_events_org1_2025_04", cfg.GetIndexName("org1", at))
	assert.Equal(t, "usage_events_org1_*", cfg.GetIndexPattern("org1"))
}

func TestS3Config_ArchiveKey(t *testing.T) {
	cfg := &S3Config{KeyPrefix: "usage-ledger"}

	key := cfg.ArchiveKey("org1", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "usage-ledger/2025/03/20/org1.json", key)
}

func TestDefaultWorkerConfig(t *testing.T) {
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("WORKER_POLL_INTERVAL", "250ms")

	cfg := DefaultWorkerConfig()

	assert.Equal(t, 4, cfg.Count)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
}

func TestLoadDatabaseConfig_RoleOverrides(t *testing.T) {
	t.Setenv("POSTGRES_READER_HOST", "replica.internal")
	t.Setenv("DB_MAX_OPEN_CONNS", "40")
	t.Setenv("DB_READER_MAX_OPEN_CONNS", "80")

	writer := LoadDatabaseConfig(roleWriter)
	reader := LoadDatabaseConfig(roleReader)

	assert.Equal(t, "localhost", writer.Host)
	assert.Equal(t, "replica.internal", reader.Host)
	assert.Equal(t, 40, writer.Pool.MaxOpenConns)
	assert.Equal(t, 80, reader.Pool.MaxOpenConns)
	assert.Contains(t, reader.DSN(), "TimeZone=UTC")
	assert.Contains(t, reader.DSN(), "application_name=token-quota-reader")
}

func TestAWSConfig_EndpointFallback(t *testing.T) {
	t.Setenv("AWS_ENDPOINT_URL", "http://localstack:4566")
	t.Setenv("AWS_SQS_ENDPOINT", "")
	t.Setenv("AWS_S3_ENDPOINT", "http://minio:9000")

	assert.Equal(t, "http://localstack:4566", DefaultSQSConfig().AWS.Endpoint)
	assert.Equal(t, "http://minio:9000", DefaultS3Config().AWS.Endpoint)
	assert.Nil(t, AWSConfig{}.baseEndpoint())
}
