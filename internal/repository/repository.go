package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kingrain94/token-quota-api/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")

	// ErrMissingPlan means an organization points at a plan row that no longer exists.
	ErrMissingPlan = errors.New("organization plan not found")
)

//go:generate mockery --name PricingPlanRepository --output ../mocks
type PricingPlanRepository interface {
	Create(ctx context.Context, plan *domain.PricingPlan) error
	Update(ctx context.Context, plan *domain.PricingPlan) error
	GetByID(ctx context.Context, id string) (*domain.PricingPlan, error)
	GetByName(ctx context.Context, name string) (*domain.PricingPlan, error)
	GetDefault(ctx context.Context) (*domain.PricingPlan, error)
	ListActive(ctx context.Context) ([]domain.PricingPlan, error)
	// SetDefault clears the flag on every other plan and sets it on id in one transaction.
	SetDefault(ctx context.Context, id string) error
}

// PlanAssignment is the outcome of moving an organization to a plan.
type PlanAssignment struct {
	Organization *domain.Organization
	PlanChanged  bool
	UsersUpdated int64
}

//go:generate mockery --name OrganizationRepository --output ../mocks
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	List(ctx context.Context) ([]domain.Organization, error)
	// AssignPlan updates the subscription and, when the plan changed, every
	// member's daily limit. All of it commits or none of it does.
	AssignPlan(ctx context.Context, organizationID string, plan *domain.PricingPlan, usersPaid int, startDate time.Time) (*PlanAssignment, error)
	// EnrollMember inserts user into its organization with the daily limit of
	// the organization's current plan, holding the organization row lock that
	// AssignPlan also takes.
	EnrollMember(ctx context.Context, user *domain.User) error
}

//go:generate mockery --name UserRepository --output ../mocks
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]domain.User, error)
}

//go:generate mockery --name UsageEventRepository --output ../mocks
type UsageEventRepository interface {
	List(ctx context.Context, filter domain.UsageEventFilter) ([]domain.UsageEvent, error)
	ListBetween(ctx context.Context, organizationID string, start, end time.Time) ([]domain.UsageEvent, error)
	OrganizationsWithEvents(ctx context.Context, start, end time.Time) ([]string, error)
}

// MeteringTx is the set of writes a charge may perform. It is only reachable
// through MeteringRepository.WithinTx, which keeps the counters single-writer.
//
//go:generate mockery --name MeteringTx --output ../mocks
type MeteringTx interface {
	LockUser(userID string) (*domain.User, error)
	LockOrganization(organizationID string) (*domain.Organization, error)
	ResetUserDaily(userID string, now time.Time) error
	ResetOrganizationDaily(organizationID string, now time.Time) error
	AppendEvent(event *domain.UsageEvent) error
	IncrementUser(userID string, event *domain.UsageEvent) error
	IncrementOrganization(organizationID string, event *domain.UsageEvent) error
	LedgerTotals(userID string, dailySince *time.Time) (*domain.LedgerTotals, error)
}

type SweepResult struct {
	UsersReset         int64 `json:"users_reset"`
	OrganizationsReset int64 `json:"organizations_reset"`
}

//go:generate mockery --name MeteringRepository --output ../mocks
type MeteringRepository interface {
	// WithinTx runs fn in one writer transaction. Returning an error from fn rolls everything back.
	WithinTx(ctx context.Context, fn func(tx MeteringTx) error) error
	// ResetStaleCounters zeroes the daily counters of every user and organization
	// whose last reset is before the UTC day of now.
	ResetStaleCounters(ctx context.Context, now time.Time) (*SweepResult, error)
}

//go:generate mockery --name OpenSearchRepository --output ../mocks
type OpenSearchRepository interface {
	Index(ctx context.Context, event *domain.UsageEvent) error
	BulkIndex(ctx context.Context, events []domain.UsageEvent) error
	Search(ctx context.Context, filter *domain.UsageEventFilter) ([]domain.UsageEvent, error)
	CreateIndex(ctx context.Context, organizationID string, t time.Time) error
}

//go:generate mockery --name PostgresRepository --output ../mocks
type PostgresRepository interface {
	Plan() PricingPlanRepository
	Organization() OrganizationRepository
	User() UserRepository
	UsageEvent() UsageEventRepository
	Metering() MeteringRepository
}

//go:generate mockery --name Repository --output ../mocks
type Repository interface {
	PostgresRepository
	OpenSearch() OpenSearchRepository
}
