package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kingrain94/token-quota-api/internal/domain"
	"github.com/kingrain94/token-quota-api/internal/repository"
)

type PricingPlanRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewPricingPlanRepository(writerDB, readerDB *gorm.DB) *PricingPlanRepository {
	return &PricingPlanRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *PricingPlanRepository) Create(ctx context.Context, plan *domain.PricingPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	// The default flag is only ever granted by SetDefault.
	plan.IsDefault = false

	return translateError(r.writerDB.WithContext(ctx).Create(plan).Error)
}

// Update writes the editable columns. is_default is never written here.
func (r *PricingPlanRepository) Update(ctx context.Context, plan *domain.PricingPlan) error {
	result := r.writerDB.WithContext(ctx).
		Model(&domain.PricingPlan{}).
		Where("id = ?", plan.ID).
		Updates(map[string]any{
			"name":                         plan.Name,
			"cost":                         plan.Cost,
			"monthly_token_limit_per_user": plan.MonthlyTokenLimitPerUser,
			"daily_token_limit_per_user":   plan.DailyTokenLimitPerUser,
			"is_active":                    plan.IsActive,
			"updated_at":                   time.Now().UTC(),
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PricingPlanRepository) GetByID(ctx context.Context, id string) (*domain.PricingPlan, error) {
	var plan domain.PricingPlan
	if err := r.readerDB.WithContext(ctx).First(&plan, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &plan, nil
}

func (r *PricingPlanRepository) GetByName(ctx context.Context, name string) (*domain.PricingPlan, error) {
	var plan domain.PricingPlan
	if err := r.readerDB.WithContext(ctx).First(&plan, "name = ?", name).Error; err != nil {
		return nil, translateError(err)
	}
	return &plan, nil
}

func (r *PricingPlanRepository) GetDefault(ctx context.Context) (*domain.PricingPlan, error) {
	var plan domain.PricingPlan
	err := r.readerDB.WithContext(ctx).
		Where("is_default = ? AND is_active = ?", true, true).
		First(&plan).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &plan, nil
}

func (r *PricingPlanRepository) ListActive(ctx context.Context) ([]domain.PricingPlan, error) {
	var plans []domain.PricingPlan
	err := r.readerDB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *PricingPlanRepository) SetDefault(ctx context.Context, id string) error {
	err := r.writerDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Locking every plan row serializes concurrent SetDefault calls, so the
		// clear below always sees the previous winner's committed flag.
		var ids []string
		if err := forUpdate(tx.Model(&domain.PricingPlan{})).Order("id").Pluck("id", &ids).Error; err != nil {
			return err
		}
		found := false
		for _, planID := range ids {
			if planID == id {
				found = true
				break
			}
		}
		if !found {
			return repository.ErrNotFound
		}

		if err := tx.Model(&domain.PricingPlan{}).
			Where("is_default = ? AND id <> ?", true, id).
			Update("is_default", false).Error; err != nil {
			return err
		}

		return tx.Model(&domain.PricingPlan{}).
			Where("id = ?", id).
			Update("is_default", true).Error
	})
	return translateError(err)
}
