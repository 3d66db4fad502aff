package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kingrain94/token-quota-api/internal/domain"
	"github.com/kingrain94/token-quota-api/internal/repository"
	"github.com/kingrain94/token-quota-api/pkg/utils"
)

// MeteringRepository owns every write to the usage counters.
type MeteringRepository struct {
	writerDB *gorm.DB
}

func NewMeteringRepository(writerDB *gorm.DB) *MeteringRepository {
	return &MeteringRepository{writerDB: writerDB}
}

func (r *MeteringRepository) WithinTx(ctx context.Context, fn func(tx repository.MeteringTx) error) error {
	return r.writerDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&meteringTx{tx: tx})
	})
}

func (r *MeteringRepository) ResetStaleCounters(ctx context.Context, now time.Time) (*repository.SweepResult, error) {
	now = now.UTC()
	dayStart := utils.StartOfDay(now)
	db := r.writerDB.WithContext(ctx)

	// Each statement is atomic on its own and guarded by the same staleness
	// predicate the lazy reset uses, so a rerun or a concurrent lazy reset
	// matches no rows.
	users := db.Model(&domain.User{}).Where(stalePredicate, dayStart).Updates(resetColumns(now))
	if users.Error != nil {
		return nil, fmt.Errorf("failed to reset user counters: %w", users.Error)
	}

	orgs := db.Model(&domain.Organization{}).Where(stalePredicate, dayStart).Updates(resetColumns(now))
	if orgs.Error != nil {
		return nil, fmt.Errorf("failed to reset organization counters: %w", orgs.Error)
	}

	return &repository.SweepResult{
		UsersReset:         users.RowsAffected,
		OrganizationsReset: orgs.RowsAffected,
	}, nil
}

func resetColumns(now time.Time) map[string]any {
	return map[string]any{
		domain.ColumnDailyChatTokensUsed:               0,
		domain.ColumnDailyDocumentProcessingTokensUsed: 0,
		domain.ColumnLastDailyReset:                    now,
	}
}

type meteringTx struct {
	tx *gorm.DB
}

func (t *meteringTx) LockUser(userID string) (*domain.User, error) {
	var user domain.User
	if err := forUpdate(t.tx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (t *meteringTx) LockOrganization(organizationID string) (*domain.Organization, error) {
	org, err := lockOrganization(t.tx, organizationID)
	if err != nil {
		return nil, translateError(err)
	}
	return org, nil
}

func (t *meteringTx) ResetUserDaily(userID string, now time.Time) error {
	return t.resetDaily(&domain.User{}, userID, now)
}

func (t *meteringTx) ResetOrganizationDaily(organizationID string, now time.Time) error {
	return t.resetDaily(&domain.Organization{}, organizationID, now)
}

func (t *meteringTx) resetDaily(model any, id string, now time.Time) error {
	now = now.UTC()
	return t.tx.Model(model).
		Where("id = ?", id).
		Where(stalePredicate, utils.StartOfDay(now)).
		Updates(resetColumns(now)).Error
}

func (t *meteringTx) AppendEvent(event *domain.UsageEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	return translateError(t.tx.Create(event).Error)
}

func (t *meteringTx) IncrementUser(userID string, event *domain.UsageEvent) error {
	return t.increment(&domain.User{}, userID, event)
}

func (t *meteringTx) IncrementOrganization(organizationID string, event *domain.UsageEvent) error {
	return t.increment(&domain.Organization{}, organizationID, event)
}

func (t *meteringTx) increment(model any, id string, event *domain.UsageEvent) error {
	lifetime := domain.LifetimeColumn(event.TokenType)
	daily := domain.DailyColumn(event.OperationType)

	result := t.tx.Model(model).
		Where("id = ?", id).
		Updates(map[string]any{
			lifetime: gorm.Expr(lifetime+" + ?", event.TokensUsed),
			daily:    gorm.Expr(daily+" + ?", event.TokensUsed),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("increment counters of %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (t *meteringTx) LedgerTotals(userID string, dailySince *time.Time) (*domain.LedgerTotals, error) {
	type row struct {
		Name  string
		Total int64
	}
	totals := &domain.LedgerTotals{}

	var byType []row
	if err := t.tx.Model(&domain.UsageEvent{}).
		Select("token_type AS name, COALESCE(SUM(tokens_used), 0) AS total").
		Where("user_id = ?", userID).
		Group("token_type").
		Scan(&byType).Error; err != nil {
		return nil, err
	}
	for _, r := range byType {
		switch domain.TokenType(r.Name) {
		case domain.TokenTypeChat:
			totals.ChatTokens = r.Total
		case domain.TokenTypeEmbedding:
			totals.EmbeddingTokens = r.Total
		}
	}

	if dailySince == nil {
		return totals, nil
	}

	var byOperation []row
	if err := t.tx.Model(&domain.UsageEvent{}).
		Select("operation_type AS name, COALESCE(SUM(tokens_used), 0) AS total").
		Where("user_id = ? AND created_at >= ?", userID, dailySince.UTC()).
		Group("operation_type").
		Scan(&byOperation).Error; err != nil {
		return nil, err
	}
	for _, r := range byOperation {
		switch domain.OperationType(r.Name) {
		case domain.OperationChatCompletion:
			totals.ChatCompletionTokens = r.Total
		case domain.OperationDocumentProcessing:
			totals.DocumentProcessingTokens = r.Total
		}
	}

	return totals, nil
}
