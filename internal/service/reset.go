package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
	"github.com/kingrain94/token-quota-api/internal/clock"
	"github.com/kingrain94/token-quota-api/internal/metrics"
	"github.com/kingrain94/token-quota-api/internal/repository"
	"github.com/kingrain94/token-quota-api/pkg/logger"
	"github.com/kingrain94/token-quota-api/pkg/utils"
)

const sweepLockKey = "lock:daily-reset-sweep"

//go:generate mockery --name SweepLocker --output ../mocks
type SweepLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

// ResetService runs the batch sweep that zeroes daily counters of every tenant
// whose day has turned over, including tenants with no traffic since.
type ResetService struct {
	repo    repository.Repository
	locker  SweepLocker
	lockTTL time.Duration
	clock   clock.Clock
	logger  *logger.Logger
}

func NewResetService(repo repository.Repository, clk clock.Clock, logger *logger.Logger) *ResetService {
	return &ResetService{
		repo:   repo,
		clock:  clk,
		logger: logger,
	}
}

// SetLocker makes replicas take turns running the sweep. Without it every
// caller sweeps, which is still correct.
func (s *ResetService) SetLocker(locker SweepLocker, ttl time.Duration) {
	s.locker = locker
	s.lockTTL = ttl
}

// RunDailyResetSweep is idempotent and safe to run concurrently with itself and with charges.
func (s *ResetService) RunDailyResetSweep(ctx context.Context) (*dto.SweepResponse, error) {
	now := s.clock.Now()

	if s.locker != nil {
		token, acquired, err := s.locker.TryLock(ctx, sweepLockKey, s.lockTTL)
		switch {
		case err != nil:
			// The staleness predicate keeps the sweep correct without the lock.
			s.logger.Warn("Sweep lock unavailable, sweeping without it", zap.Error(err))
		case !acquired:
			metrics.SweepRunsTotal.WithLabelValues("skipped").Inc()
			s.logger.Info("Daily reset sweep already running elsewhere")
			return &dto.SweepResponse{Skipped: true, RanAt: now}, nil
		default:
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), sweepLockKey, token); err != nil {
					s.logger.Error("Failed to release sweep lock", err)
				}
			}()
		}
	}

	result, err := s.repo.Metering().ResetStaleCounters(ctx, now)
	if err != nil {
		metrics.SweepRunsTotal.WithLabelValues("failed").Inc()
		s.logger.Error("Daily reset sweep failed", err)
		return nil, transientStoreFailure(err)
	}

	metrics.SweepRunsTotal.WithLabelValues("completed").Inc()
	metrics.SweepResetsTotal.WithLabelValues("user").Add(float64(result.UsersReset))
	metrics.SweepResetsTotal.WithLabelValues("organization").Add(float64(result.OrganizationsReset))
	s.logger.Info("Daily reset sweep completed",
		zap.Int64("users_reset", result.UsersReset),
		zap.Int64("organizations_reset", result.OrganizationsReset),
		zap.Time("day_start", utils.StartOfDay(now)))

	return &dto.SweepResponse{
		UsersReset:         result.UsersReset,
		OrganizationsReset: result.OrganizationsReset,
		RanAt:              now,
	}, nil
}
