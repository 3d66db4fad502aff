package postgres

import (
	"gorm.io/gorm"

	"github.com/kingrain94/token-quota-api/internal/config"
	"github.com/kingrain94/token-quota-api/internal/domain"
	"github.com/kingrain94/token-quota-api/internal/repository"
)

type postgresRepository struct {
	planRepo     repository.PricingPlanRepository
	orgRepo      repository.OrganizationRepository
	userRepo     repository.UserRepository
	eventRepo    repository.UsageEventRepository
	meteringRepo repository.MeteringRepository
}

func NewPostgresRepository(dbConnections *config.DatabaseConnections) repository.PostgresRepository {
	return &postgresRepository{
		planRepo:     NewPricingPlanRepository(dbConnections.Writer, dbConnections.Reader),
		orgRepo:      NewOrganizationRepository(dbConnections.Writer, dbConnections.Reader),
		userRepo:     NewUserRepository(dbConnections.Writer, dbConnections.Reader),
		eventRepo:    NewUsageEventRepository(dbConnections.Reader),
		meteringRepo: NewMeteringRepository(dbConnections.Writer),
	}
}

// Models lists the tables in dependency order, for AutoMigrate in tests and local tooling.
func Models() []any {
	return []any{
		&domain.PricingPlan{},
		&domain.Organization{},
		&domain.User{},
		&domain.UsageEvent{},
	}
}

// AutoMigrate creates the schema straight from the models. Production uses the SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func (r *postgresRepository) Plan() repository.PricingPlanRepository {
	return r.planRepo
}

func (r *postgresRepository) Organization() repository.OrganizationRepository {
	return r.orgRepo
}

func (r *postgresRepository) User() repository.UserRepository {
	return r.userRepo
}

func (r *postgresRepository) UsageEvent() repository.UsageEventRepository {
	return r.eventRepo
}

func (r *postgresRepository) Metering() repository.MeteringRepository {
	return r.meteringRepo
}
