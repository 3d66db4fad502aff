package service

import (
	"errors"
	"fmt"

	"github.com/kingrain94/token-quota-api/internal/domain"
)

var (
	// Metering errors
	ErrInvalidUsageEvent     = errors.New("invalid usage event")
	ErrQuotaExceeded         = errors.New("daily token quota exceeded")
	ErrTransientStoreFailure = errors.New("transient store failure")
	ErrCascadeFailure        = errors.New("plan cascade failed")

	// Plan errors
	ErrPlanNotFound  = errors.New("pricing plan not found")
	ErrPlanInactive  = errors.New("pricing plan is not active")
	ErrInvalidPlan   = errors.New("invalid pricing plan")
	ErrPlanNameTaken = errors.New("pricing plan name already exists")
	ErrNoDefaultPlan = errors.New("no active default pricing plan")

	// Tenant errors
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrInvalidUsersPaid     = errors.New("number_of_users_paid must not be negative")
)

// QuotaExceededError carries the numbers behind a rejected charge.
type QuotaExceededError struct {
	UserID        string
	OperationType domain.OperationType
	Used          int64
	Requested     int64
	Limit         int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s: user %s has used %d of %d %s tokens today, %d more requested",
		ErrQuotaExceeded, e.UserID, e.Used, e.Limit, e.OperationType, e.Requested)
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

func transientStoreFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrTransientStoreFailure, err)
}

func invalidUsageEvent(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidUsageEvent, err)
}
