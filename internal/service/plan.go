package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
	"github.com/kingrain94/token-quota-api/internal/domain"
	"github.com/kingrain94/token-quota-api/internal/repository"
	"github.com/kingrain94/token-quota-api/pkg/logger"
)

var errDeactivateDefault = errors.New("the default plan cannot be deactivated")

type PlanService struct {
	repo   repository.Repository
	logger *logger.Logger
}

func NewPlanService(repo repository.Repository, logger *logger.Logger) *PlanService {
	return &PlanService{repo: repo, logger: logger}
}

// UpsertPlan updates the plan named by ID, or else by name, and creates it when
// neither exists. It never touches the default flag and never cascades to users.
func (s *PlanService) UpsertPlan(ctx context.Context, req dto.UpsertPlanRequest) (*dto.PlanResponse, error) {
	plan := req.ToPricingPlan()
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}

	existing, err := s.findExisting(ctx, plan)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		if err := s.repo.Plan().Create(ctx, plan); err != nil {
			return nil, planWriteFailed(err)
		}
		return dto.FromPricingPlan(plan), nil
	}

	if existing.IsDefault && !plan.IsActive {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, errDeactivateDefault)
	}

	plan.ID = existing.ID
	if err := s.repo.Plan().Update(ctx, plan); err != nil {
		return nil, planWriteFailed(err)
	}

	updated, err := s.repo.Plan().GetByID(ctx, plan.ID)
	if err != nil {
		return nil, transientStoreFailure(err)
	}
	return dto.FromPricingPlan(updated), nil
}

func (s *PlanService) findExisting(ctx context.Context, plan *domain.PricingPlan) (*domain.PricingPlan, error) {
	if plan.ID != "" {
		existing, err := s.repo.Plan().GetByID(ctx, plan.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		if err != nil {
			return nil, transientStoreFailure(err)
		}
		return existing, nil
	}

	existing, err := s.repo.Plan().GetByName(ctx, plan.Name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, transientStoreFailure(err)
	}
	return existing, nil
}

func planWriteFailed(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return ErrPlanNameTaken
	case errors.Is(err, repository.ErrNotFound):
		return ErrPlanNotFound
	default:
		return transientStoreFailure(err)
	}
}

// SetDefaultPlan makes id the only default plan.
func (s *PlanService) SetDefaultPlan(ctx context.Context, id string) error {
	plan, err := s.repo.Plan().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPlanNotFound
	}
	if err != nil {
		return transientStoreFailure(err)
	}
	if !plan.IsActive {
		return ErrPlanInactive
	}

	if err := s.repo.Plan().SetDefault(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return transientStoreFailure(err)
	}

	s.logger.Infof("Default pricing plan set to %s (%s)", plan.Name, plan.ID)
	return nil
}

func (s *PlanService) ListActivePlans(ctx context.Context) ([]dto.PlanResponse, error) {
	plans, err := s.repo.Plan().ListActive(ctx)
	if err != nil {
		return nil, transientStoreFailure(err)
	}
	return dto.FromPricingPlans(plans), nil
}

func (s *PlanService) GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error) {
	plan, err := s.repo.Plan().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, transientStoreFailure(err)
	}
	return dto.FromPricingPlan(plan), nil
}
