package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kingrain94/token-quota-api/internal/domain"
	"github.com/kingrain94/token-quota-api/internal/repository"
)

type OrganizationRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewOrganizationRepository(writerDB, readerDB *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *OrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	return translateError(r.writerDB.WithContext(ctx).Create(org).Error)
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	var org domain.Organization
	if err := r.readerDB.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &org, nil
}

func (r *OrganizationRepository) List(ctx context.Context) ([]domain.Organization, error) {
	var orgs []domain.Organization
	if err := r.readerDB.WithContext(ctx).Order("created_at").Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *OrganizationRepository) AssignPlan(
	ctx context.Context,
	organizationID string,
	plan *domain.PricingPlan,
	usersPaid int,
	startDate time.Time,
) (*repository.PlanAssignment, error) {
	result := &repository.PlanAssignment{}

	err := r.writerDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := lockMembersThenOrganization(tx, organizationID)
		if err != nil {
			return err
		}
		result.PlanChanged = org.PlanChanged(plan.ID)

		updates := map[string]any{
			"selected_pricing_plan_id": plan.ID,
			"subscription_start_date":  startDate.UTC(),
		}
		if usersPaid > 0 {
			updates["number_of_users_paid"] = usersPaid
		}
		if err := tx.Model(&domain.Organization{}).Where("id = ?", organizationID).Updates(updates).Error; err != nil {
			return err
		}

		// Covers members enrolled while this transaction waited on the organization lock.
		if result.PlanChanged {
			res := tx.Model(&domain.User{}).
				Where("organization_id = ?", organizationID).
				Update("daily_token_limit", plan.DailyTokenLimitPerUser)
			if res.Error != nil {
				return res.Error
			}
			result.UsersUpdated = res.RowsAffected
		}

		if err := tx.First(org, "id = ?", organizationID).Error; err != nil {
			return err
		}
		result.Organization = org
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}
	return result, nil
}

func (r *OrganizationRepository) EnrollMember(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	err := r.writerDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A cascade holding this lock either finishes first, so the plan read
		// below is the new one, or waits and then updates this user with the rest.
		org, err := lockOrganization(tx, user.OrganizationID)
		if err != nil {
			return err
		}

		user.DailyTokenLimit = 0
		if org.SelectedPricingPlanID != nil {
			var plan domain.PricingPlan
			if err := tx.First(&plan, "id = ?", *org.SelectedPricingPlanID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", repository.ErrMissingPlan, *org.SelectedPricingPlanID)
				}
				return err
			}
			user.DailyTokenLimit = plan.DailyTokenLimitPerUser
		}

		return tx.Create(user).Error
	})
	return translateError(err)
}

// lockMembersThenOrganization takes the row locks of a plan change. Members
// come first, then the organization: the same order a charge takes, so a
// cascade and a charge never wait on each other in a cycle.
func lockMembersThenOrganization(tx *gorm.DB, organizationID string) (*domain.Organization, error) {
	var memberIDs []string
	if err := forUpdate(tx.Model(&domain.User{})).
		Where("organization_id = ?", organizationID).
		Order("id").
		Pluck("id", &memberIDs).Error; err != nil {
		return nil, err
	}

	return lockOrganization(tx, organizationID)
}

func lockOrganization(tx *gorm.DB, organizationID string) (*domain.Organization, error) {
	var org domain.Organization
	if err := forUpdate(tx).First(&org, "id = ?", organizationID).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
