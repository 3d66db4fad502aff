package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
	"github.com/kingrain94/token-quota-api/internal/clock"
	"github.com/kingrain94/token-quota-api/internal/config"
	"github.com/kingrain94/token-quota-api/internal/domain"
	"github.com/kingrain94/token-quota-api/internal/metrics"
	"github.com/kingrain94/token-quota-api/internal/repository"
	"github.com/kingrain94/token-quota-api/pkg/logger"
)

type OrganizationService struct {
	repo    repository.Repository
	tenancy config.TenancyConfig
	clock   clock.Clock
	logger  *logger.Logger
}

func NewOrganizationService(repo repository.Repository, tenancy config.TenancyConfig, clk clock.Clock, logger *logger.Logger) *OrganizationService {
	return &OrganizationService{
		repo:    repo,
		tenancy: tenancy,
		clock:   clk,
		logger:  logger,
	}
}

// EnrollOrganization creates an organization on the current default plan.
func (s *OrganizationService) EnrollOrganization(ctx context.Context, req dto.CreateOrganizationRequest) (*dto.OrganizationResponse, error) {
	plan, err := s.repo.Plan().GetDefault(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoDefaultPlan
	}
	if err != nil {
		return nil, transientStoreFailure(err)
	}

	now := s.clock.Now()
	org := &domain.Organization{
		Name:                  req.Name,
		SelectedPricingPlanID: &plan.ID,
		TokenBalance:          decimal.Zero,
		MonthlyTokenLimit:     s.tenancy.DefaultMonthlyTokenLimit,
		NumberOfUsersPaid:     s.tenancy.DefaultUsersPaid,
		SubscriptionStartDate: &now,
	}
	if err := s.repo.Organization().Create(ctx, org); err != nil {
		return nil, transientStoreFailure(err)
	}

	return dto.FromOrganization(org), nil
}

// EnrollUser adds a user whose daily limit mirrors the organization's plan.
// The limit is read under the organization lock so a concurrent AssignPlan
// cannot leave the new user on the old plan.
func (s *OrganizationService) EnrollUser(ctx context.Context, organizationID string, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	user := &domain.User{
		OrganizationID: organizationID,
		Email:          req.Email,
		Name:           req.Name,
	}
	err := s.repo.Organization().EnrollMember(ctx, user)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrOrganizationNotFound
	case errors.Is(err, repository.ErrMissingPlan):
		return nil, fmt.Errorf("%w: %w", ErrPlanNotFound, err)
	case errors.Is(err, repository.ErrDuplicate):
		return nil, ErrEmailAlreadyExists
	default:
		return nil, transientStoreFailure(err)
	}

	return dto.FromUser(user), nil
}

// AssignPlan moves an organization to a plan. When the plan actually changes,
// every member's daily limit is updated in the same transaction or not at all.
func (s *OrganizationService) AssignPlan(ctx context.Context, organizationID string, req dto.AssignPlanRequest) (*dto.AssignPlanResponse, error) {
	if req.NumberOfUsersPaid < 0 {
		return nil, ErrInvalidUsersPaid
	}

	if !domain.ValidID(req.PlanID) {
		return nil, fmt.Errorf("%w: plan_id %q is not a UUID", ErrInvalidPlan, req.PlanID)
	}

	plan, err := s.repo.Plan().GetByID(ctx, req.PlanID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, transientStoreFailure(err)
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}

	assignment, err := s.repo.Organization().AssignPlan(ctx, organizationID, plan, req.NumberOfUsersPaid, s.clock.Now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		s.logger.Error("Plan assignment rolled back", err,
			zap.String("organization_id", organizationID),
			zap.String("plan_id", plan.ID))
		return nil, fmt.Errorf("%w: %w", ErrCascadeFailure, err)
	}

	if assignment.PlanChanged {
		metrics.PlanCascadeUsers.Observe(float64(assignment.UsersUpdated))
		s.logger.Info("Plan cascaded to members",
			zap.String("organization_id", organizationID),
			zap.String("plan_id", plan.ID),
			zap.Int64("users_updated", assignment.UsersUpdated),
			zap.Int64("daily_token_limit", plan.DailyTokenLimitPerUser))
	}

	return &dto.AssignPlanResponse{
		Organization: *dto.FromOrganization(assignment.Organization),
		PlanChanged:  assignment.PlanChanged,
		UsersUpdated: assignment.UsersUpdated,
		MonthlyCost:  plan.MonthlyCost(assignment.Organization.NumberOfUsersPaid),
	}, nil
}

func (s *OrganizationService) GetOrganization(ctx context.Context, id string) (*dto.OrganizationResponse, error) {
	org, err := s.repo.Organization().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, transientStoreFailure(err)
	}
	return dto.FromOrganization(org), nil
}

func (s *OrganizationService) ListUsers(ctx context.Context, organizationID string) ([]dto.UserResponse, error) {
	if _, err := s.GetOrganization(ctx, organizationID); err != nil {
		return nil, err
	}

	users, err := s.repo.User().ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, transientStoreFailure(err)
	}
	return dto.FromUsers(users), nil
}
