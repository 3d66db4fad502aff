package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
	"github.com/kingrain94/token-quota-api/internal/clock"
	"github.com/kingrain94/token-quota-api/internal/config"
	"github.com/kingrain94/token-quota-api/internal/lock"
	"github.com/kingrain94/token-quota-api/internal/migrations"
	"github.com/kingrain94/token-quota-api/internal/repository/composite"
	"github.com/kingrain94/token-quota-api/internal/service"
	"github.com/kingrain94/token-quota-api/internal/service/queue"
	"github.com/kingrain94/token-quota-api/pkg/logger"
)

type PlanAdmin interface {
	UpsertPlan(ctx context.Context, req dto.UpsertPlanRequest) (*dto.PlanResponse, error)
	SetDefaultPlan(ctx context.Context, id string) error
	GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error)
}

type OrganizationAdmin interface {
	AssignPlan(ctx context.Context, organizationID string, req dto.AssignPlanRequest) (*dto.AssignPlanResponse, error)
}

type Sweeper interface {
	RunDailyResetSweep(ctx context.Context) (*dto.SweepResponse, error)
}

type ResetEnqueuer interface {
	SendDailyResetMessage(ctx context.Context) error
}

// app is everything the commands talk to. It is built lazily so commands
// like token run without a database.
type app struct {
	plans      PlanAdmin
	orgs       OrganizationAdmin
	sweeper    Sweeper
	resetQueue ResetEnqueuer
	migrate    func(ctx context.Context) error
	close      func()
}

type appLoader func(ctx context.Context) (*app, error)

func loadApp(ctx context.Context) (*app, error) {
	_ = godotenv.Load()

	appLogger := logger.NewLogger(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	dbConnections, err := config.NewDatabaseConnections()
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	repo := composite.NewPostgresOnlyRepository(dbConnections)
	clk := clock.SystemClock{}

	reset := service.NewResetService(repo, clk, appLogger)
	a := &app{
		plans:   service.NewPlanService(repo, appLogger),
		orgs:    service.NewOrganizationService(repo, cfg.Tenancy, clk, appLogger),
		sweeper: reset,
		migrate: func(ctx context.Context) error {
			sqlDB, err := dbConnections.Writer.DB()
			if err != nil {
				return err
			}
			return migrations.Up(sqlDB)
		},
	}
	closers := []func(){func() { dbConnections.Close() }}

	// Redis and SQS are optional for the CLI: without Redis the sweep runs
	// unlocked, without SQS --enqueue is unavailable.
	if redisClient, err := config.DefaultRedisConfig().GetClient(ctx); err == nil {
		reset.SetLocker(lock.NewLocker(redisClient), cfg.SweepLockTTL)
		closers = append(closers, func() { redisClient.Close() })
	} else {
		appLogger.Warn("Redis unavailable, sweep will run without the lock")
	}

	sqsConfig := config.DefaultSQSConfig()
	if sqsClient, err := sqsConfig.GetClient(ctx); err == nil {
		a.resetQueue = queue.NewSQSService(sqsClient, sqsConfig)
	}

	a.close = func() {
		for _, c := range closers {
			c()
		}
		appLogger.Sync()
	}
	return a, nil
}
