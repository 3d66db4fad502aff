package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
	"github.com/kingrain94/token-quota-api/internal/clock"
	"github.com/kingrain94/token-quota-api/internal/config"
	"github.com/kingrain94/token-quota-api/internal/domain"
	"github.com/kingrain94/token-quota-api/internal/mocks"
	"github.com/kingrain94/token-quota-api/internal/repository"
	"github.com/kingrain94/token-quota-api/internal/repository/postgres"
	"github.com/kingrain94/token-quota-api/internal/testutil"
)

// sqliteRepository serves postgres reads and writes from sqlite and search from a mock.
type sqliteRepository struct {
	repository.PostgresRepository
	search repository.OpenSearchRepository
}

func (r *sqliteRepository) OpenSearch() repository.OpenSearchRepository {
	return r.search
}

type fixture struct {
	t      *testing.T
	db     *gorm.DB
	repo   *sqliteRepository
	search *mocks.OpenSearchRepository
	clock  *clock.FakeClock
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	search := new(mocks.OpenSearchRepository)
	return &fixture{
		t:  t,
		db: db,
		repo: &sqliteRepository{
			PostgresRepository: postgres.NewPostgresRepository(config.NewSingleDatabaseConnections(db)),
			search:             search,
		},
		search: search,
		clock:  clock.NewFakeClock(now),
	}
}

func (f *fixture) seedPlan(name string, dailyLimit int64, isDefault bool) *domain.PricingPlan {
	f.t.Helper()

	plan := &domain.PricingPlan{
		ID:                       uuid.NewString(),
		Name:                     name,
		Cost:                     decimal.RequireFromString("10.00"),
		MonthlyTokenLimitPerUser: dailyLimit * 30,
		DailyTokenLimitPerUser:   dailyLimit,
		IsActive:                 true,
		IsDefault:                isDefault,
	}
	require.NoError(f.t, f.db.Create(plan).Error)
	return plan
}

func (f *fixture) seedOrganization(plan *domain.PricingPlan) *domain.Organization {
	f.t.Helper()

	org := &domain.Organization{
		Name:              "Acme",
		TokenBalance:      decimal.Zero,
		MonthlyTokenLimit: 1000,
		NumberOfUsersPaid: 10,
	}
	if plan != nil {
		org.SelectedPricingPlanID = &plan.ID
	}
	require.NoError(f.t, f.repo.Organization().Create(context.Background(), org))
	return org
}

func (f *fixture) seedUser(org *domain.Organization, email string, dailyLimit int64) *domain.User {
	f.t.Helper()

	user := &domain.User{
		OrganizationID:  org.ID,
		Email:           email,
		Name:            email,
		DailyTokenLimit: dailyLimit,
	}
	require.NoError(f.t, f.repo.User().Create(context.Background(), user))
	return user
}

// setUserCounters overwrites a user's counters, bypassing the metering path.
func (f *fixture) setUserCounters(userID string, c domain.UsageCounters) {
	f.t.Helper()

	require.NoError(f.t, f.db.Model(&domain.User{}).Where("id = ?", userID).Updates(map[string]any{
		domain.ColumnChatTokensUsed:                    c.ChatTokensUsed,
		domain.ColumnEmbeddingTokensUsed:               c.EmbeddingTokensUsed,
		domain.ColumnDailyChatTokensUsed:               c.DailyChatTokensUsed,
		domain.ColumnDailyDocumentProcessingTokensUsed: c.DailyDocumentProcessingTokensUsed,
		domain.ColumnLastDailyReset:                    utcPtr(c.LastDailyReset),
	}).Error)
}

func (f *fixture) user(id string) *domain.User {
	f.t.Helper()

	var user domain.User
	require.NoError(f.t, f.db.First(&user, "id = ?", id).Error)
	return &user
}

func (f *fixture) organization(id string) *domain.Organization {
	f.t.Helper()

	var org domain.Organization
	require.NoError(f.t, f.db.First(&org, "id = ?", id).Error)
	return &org
}

func (f *fixture) eventCount(userID string) int64 {
	f.t.Helper()

	var n int64
	require.NoError(f.t, f.db.Model(&domain.UsageEvent{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

// ledgerSum adds up a user's ledger rows matching the given column and value.
func (f *fixture) ledgerSum(userID, column, value string) int64 {
	f.t.Helper()

	var sum int64
	require.NoError(f.t, f.db.Model(&domain.UsageEvent{}).
		Select("COALESCE(SUM(tokens_used), 0)").
		Where("user_id = ? AND "+column+" = ?", userID, value).
		Scan(&sum).Error)
	return sum
}

func chargeFor(user *domain.User, org *domain.Organization, tokens int64) dto.ChargeRequest {
	return dto.ChargeRequest{
		UserID:         user.ID,
		OrganizationID: org.ID,
		TokenType:      string(domain.TokenTypeChat),
		OperationType:  string(domain.OperationChatCompletion),
		TokensUsed:     tokens,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
