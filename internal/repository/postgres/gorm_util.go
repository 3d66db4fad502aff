package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kingrain94/token-quota-api/internal/repository"
	"github.com/kingrain94/token-quota-api/internal/utils"
)

// stalePredicate selects rows whose daily window started before the given UTC midnight.
const stalePredicate = "(last_daily_reset IS NULL OR last_daily_reset < ?)"

// forUpdate adds SELECT ... FOR UPDATE. SQLite has no row locks and serializes
// writers on the database lock instead, so the clause is skipped there.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// getOrganizationScope restricts a query to the organization in the request claims.
func getOrganizationScope(db *gorm.DB, ctx context.Context) (*gorm.DB, error) {
	organizationID, err := utils.GetOrganizationIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	return db.WithContext(ctx).Where("organization_id = ?", organizationID), nil
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", repository.ErrDuplicate, err)
	default:
		return err
	}
}
