package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kingrain94/token-quota-api/internal/domain"
)

// UsageEventRepository reads the ledger. Inserts only happen through the metering transaction.
type UsageEventRepository struct {
	readerDB *gorm.DB
}

func NewUsageEventRepository(readerDB *gorm.DB) *UsageEventRepository {
	return &UsageEventRepository{readerDB: readerDB}
}

func (r *UsageEventRepository) List(ctx context.Context, filter domain.UsageEventFilter) ([]domain.UsageEvent, error) {
	var events []domain.UsageEvent

	db := r.readerDB.WithContext(ctx)
	if filter.OrganizationID != "" {
		db = db.Where("organization_id = ?", filter.OrganizationID)
	} else {
		scoped, err := getOrganizationScope(r.readerDB, ctx)
		if err != nil {
			return nil, err
		}
		db = scoped
	}

	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Model != "" {
		db = db.Where("model = ?", filter.Model)
	}
	if filter.TokenType != "" {
		db = db.Where("token_type = ?", filter.TokenType)
	}
	if filter.OperationType != "" {
		db = db.Where("operation_type = ?", filter.OperationType)
	}
	if !filter.StartTime.IsZero() {
		db = db.Where("created_at >= ?", filter.StartTime.UTC())
	}
	if !filter.EndTime.IsZero() {
		db = db.Where("created_at <= ?", filter.EndTime.UTC())
	}

	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		db = db.Offset(filter.Offset)
	}

	if err := db.Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ListBetween returns one organization's events in [start, end), oldest first.
func (r *UsageEventRepository) ListBetween(ctx context.Context, organizationID string, start, end time.Time) ([]domain.UsageEvent, error) {
	var events []domain.UsageEvent
	err := r.readerDB.WithContext(ctx).
		Where("organization_id = ? AND created_at >= ? AND created_at < ?", organizationID, start.UTC(), end.UTC()).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *UsageEventRepository) OrganizationsWithEvents(ctx context.Context, start, end time.Time) ([]string, error) {
	var ids []string
	err := r.readerDB.WithContext(ctx).
		Model(&domain.UsageEvent{}).
		Where("created_at >= ? AND created_at < ?", start.UTC(), end.UTC()).
		Distinct("organization_id").
		Order("organization_id").
		Pluck("organization_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
