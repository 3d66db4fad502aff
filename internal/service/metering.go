package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
	"github.com/kingrain94/token-quota-api/internal/clock"
	"github.com/kingrain94/token-quota-api/internal/domain"
	"github.com/kingrain94/token-quota-api/internal/metrics"
	"github.com/kingrain94/token-quota-api/internal/repository"
	"github.com/kingrain94/token-quota-api/internal/utils"
	"github.com/kingrain94/token-quota-api/pkg/logger"
	pkgutils "github.com/kingrain94/token-quota-api/pkg/utils"
)

var errUserNotInOrganization = errors.New("user does not belong to organization")

//go:generate mockery --name UsageBroadcaster --output ../mocks
type UsageBroadcaster interface {
	BroadcastUsage(event *dto.UsageEventResponse)
}

//go:generate mockery --name SQSService --output ../mocks
type SQSService interface {
	SendIndexMessage(ctx context.Context, event *domain.UsageEvent) error
	SendArchiveMessage(ctx context.Context, day time.Time) error
}

// MeteringService is the only writer of usage counters. Every accepted charge
// appends one ledger row and increments the user and organization counters in
// the same transaction.
type MeteringService struct {
	repo        repository.Repository
	sqsSvc      SQSService
	broadcaster UsageBroadcaster
	clock       clock.Clock
	logger      *logger.Logger
}

func NewMeteringService(repo repository.Repository, sqsSvc SQSService, clk clock.Clock, logger *logger.Logger) *MeteringService {
	return &MeteringService{
		repo:   repo,
		sqsSvc: sqsSvc,
		clock:  clk,
		logger: logger,
	}
}

// SetUsageBroadcaster sets the live usage feed
func (s *MeteringService) SetUsageBroadcaster(broadcaster UsageBroadcaster) {
	s.broadcaster = broadcaster
}

// Charge admits and records one usage event, or rejects it without changing any state.
func (s *MeteringService) Charge(ctx context.Context, req dto.ChargeRequest) (*dto.ChargeResponse, error) {
	start := time.Now()
	defer func() { metrics.ChargeDuration.Observe(time.Since(start).Seconds()) }()

	event, err := s.buildEvent(req)
	if err != nil {
		metrics.ChargesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	now := s.clock.Now()
	var (
		user                *domain.User
		userReset, orgReset bool
	)

	err = s.repo.Metering().WithinTx(ctx, func(tx repository.MeteringTx) error {
		var err error
		user, err = tx.LockUser(event.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return invalidUsageEvent(ErrUserNotFound)
		}
		if err != nil {
			return err
		}
		if user.OrganizationID != event.OrganizationID {
			return invalidUsageEvent(errUserNotInOrganization)
		}

		org, err := tx.LockOrganization(event.OrganizationID)
		if errors.Is(err, repository.ErrNotFound) {
			return invalidUsageEvent(ErrOrganizationNotFound)
		}
		if err != nil {
			return err
		}

		if user.IsStale(now) {
			if err := tx.ResetUserDaily(user.ID, now); err != nil {
				return err
			}
			user.ResetDaily(now)
			userReset = true
		}
		if org.IsStale(now) {
			if err := tx.ResetOrganizationDaily(org.ID, now); err != nil {
				return err
			}
			org.ResetDaily(now)
			orgReset = true
		}

		used := user.DailyUsed(event.OperationType)
		if domain.ExceedsLimit(user.DailyTokenLimit, used, event.TokensUsed) {
			return &QuotaExceededError{
				UserID:        user.ID,
				OperationType: event.OperationType,
				Used:          used,
				Requested:     event.TokensUsed,
				Limit:         user.DailyTokenLimit,
			}
		}

		event.CreatedAt = now
		if err := tx.AppendEvent(event); err != nil {
			return err
		}
		if err := tx.IncrementUser(user.ID, event); err != nil {
			return err
		}
		if err := tx.IncrementOrganization(org.ID, event); err != nil {
			return err
		}
		user.Apply(event)
		return nil
	})

	if err != nil {
		return nil, s.chargeFailed(event, err)
	}

	metrics.ChargesTotal.WithLabelValues("accepted").Inc()
	metrics.TokensChargedTotal.WithLabelValues(string(event.TokenType), string(event.OperationType)).Add(float64(event.TokensUsed))
	if userReset {
		metrics.LazyResetsTotal.WithLabelValues("user").Inc()
	}
	if orgReset {
		metrics.LazyResetsTotal.WithLabelValues("organization").Inc()
	}

	s.publish(ctx, event)

	used := user.DailyUsed(event.OperationType)
	return &dto.ChargeResponse{
		Event:          *dto.FromUsageEvent(event),
		DailyUsed:      used,
		DailyLimit:     user.DailyTokenLimit,
		DailyRemaining: domain.Remaining(user.DailyTokenLimit, used),
	}, nil
}

func (s *MeteringService) buildEvent(req dto.ChargeRequest) (*domain.UsageEvent, error) {
	event := req.ToUsageEvent()
	if err := event.Validate(); err != nil {
		return nil, invalidUsageEvent(err)
	}

	if req.Model != "" {
		spec, err := domain.ResolveModel(req.Model)
		if err != nil {
			return nil, invalidUsageEvent(err)
		}
		if spec.TokenType != event.TokenType {
			return nil, invalidUsageEvent(fmt.Errorf("model %s reports %s tokens, not %s", req.Model, spec.TokenType, event.TokenType))
		}
		event.Model = spec.ModelID
	}

	return event, nil
}

// chargeFailed classifies a rolled back charge. Anything that is not a caller
// error or a quota rejection came from the store and is safe to retry.
func (s *MeteringService) chargeFailed(event *domain.UsageEvent, err error) error {
	var quotaErr *QuotaExceededError
	switch {
	case errors.As(err, &quotaErr):
		metrics.ChargesTotal.WithLabelValues("rejected").Inc()
		s.logger.Warn("Charge rejected",
			zap.String("user_id", quotaErr.UserID),
			zap.String("bucket", string(quotaErr.OperationType)),
			zap.Int64("used", quotaErr.Used),
			zap.Int64("requested", quotaErr.Requested),
			zap.Int64("limit", quotaErr.Limit))
		return err
	case errors.Is(err, ErrInvalidUsageEvent):
		metrics.ChargesTotal.WithLabelValues("invalid").Inc()
		return err
	default:
		metrics.ChargesTotal.WithLabelValues("error").Inc()
		s.logger.Error("Charge transaction failed", err,
			zap.String("user_id", event.UserID),
			zap.String("organization_id", event.OrganizationID))
		return transientStoreFailure(err)
	}
}

// publish fans an accepted event out to the index queue and the live feed.
// The charge has already committed, so failures are only logged.
func (s *MeteringService) publish(ctx context.Context, event *domain.UsageEvent) {
	if s.sqsSvc != nil {
		if err := s.sqsSvc.SendIndexMessage(ctx, event); err != nil {
			s.logger.Error("Failed to send index message to SQS", err, zap.String("event_id", event.ID))
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastUsage(dto.FromUsageEvent(event))
	}
}

// CheckAllowance answers whether a charge of the given size would be admitted
// right now. It reads from the replica and never writes, so Charge stays authoritative.
func (s *MeteringService) CheckAllowance(ctx context.Context, req dto.AllowanceRequest) (*dto.AllowanceResponse, error) {
	op := domain.OperationType(req.OperationType)
	if !op.Valid() {
		return nil, invalidUsageEvent(fmt.Errorf("%w: %q", domain.ErrUnknownOperationType, req.OperationType))
	}
	if req.TokensUsed < 0 {
		return nil, invalidUsageEvent(fmt.Errorf("%w: got %d", domain.ErrNonPositiveTokens, req.TokensUsed))
	}
	if !domain.ValidID(req.UserID) {
		return nil, invalidUsageEvent(fmt.Errorf("%w: user_id %q", domain.ErrMalformedID, req.UserID))
	}

	user, err := s.visibleUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	used := user.Fresh(s.clock.Now()).DailyUsed(op)
	return &dto.AllowanceResponse{
		Allowed:   !domain.ExceedsLimit(user.DailyTokenLimit, used, req.TokensUsed),
		Used:      used,
		Limit:     user.DailyTokenLimit,
		Remaining: domain.Remaining(user.DailyTokenLimit, used),
	}, nil
}

func (s *MeteringService) GetUserUsage(ctx context.Context, userID string) (*dto.UserUsageResponse, error) {
	user, err := s.visibleUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.UserUsageResponse{
		UserID:          user.ID,
		OrganizationID:  user.OrganizationID,
		DailyTokenLimit: user.DailyTokenLimit,
		Counters:        dto.FromUsageCounters(user.Fresh(s.clock.Now())),
	}, nil
}

func (s *MeteringService) GetOrganizationUsage(ctx context.Context, organizationID string) (*dto.OrganizationUsageResponse, error) {
	if !canSee(ctx, organizationID) {
		return nil, ErrOrganizationNotFound
	}

	org, err := s.repo.Organization().GetByID(ctx, organizationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, transientStoreFailure(err)
	}

	return &dto.OrganizationUsageResponse{
		OrganizationID:    org.ID,
		MonthlyTokenLimit: org.MonthlyTokenLimit,
		TokenBalance:      org.TokenBalance,
		Counters:          dto.FromUsageCounters(org.Fresh(s.clock.Now())),
	}, nil
}

// ListUsageEvents reads the ledger. Filters on model or token/operation type
// are served by the search index; plain organization, user and time range
// listing goes to postgres.
func (s *MeteringService) ListUsageEvents(ctx context.Context, filter *domain.UsageEventFilter) ([]dto.UsageEventResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 50
	}
	filter.Limit = filter.PageSize
	filter.Offset = (filter.Page - 1) * filter.PageSize

	// Processes without a search index answer every filter from postgres.
	if search := s.repo.OpenSearch(); search != nil && hasSearchCriteria(filter) {
		events, err := search.Search(ctx, filter)
		if err != nil {
			return nil, transientStoreFailure(err)
		}
		return dto.FromUsageEvents(events), nil
	}

	events, err := s.repo.UsageEvent().List(ctx, *filter)
	if err != nil {
		return nil, transientStoreFailure(err)
	}
	return dto.FromUsageEvents(events), nil
}

func hasSearchCriteria(filter *domain.UsageEventFilter) bool {
	return filter.Model != "" ||
		filter.TokenType != "" ||
		filter.OperationType != ""
}

// ReconcileUser recomputes a user's counters from the ledger under the user's
// row lock and reports whether they match what is stored.
func (s *MeteringService) ReconcileUser(ctx context.Context, userID string) (*dto.ReconciliationResponse, error) {
	now := s.clock.Now()
	var (
		stored     domain.UsageCounters
		recomputed domain.UsageCounters
	)

	err := s.repo.Metering().WithinTx(ctx, func(tx repository.MeteringTx) error {
		user, err := tx.LockUser(userID)
		if err != nil {
			return err
		}
		stored = user.Fresh(now)

		var since *time.Time
		if !user.IsStale(now) {
			since = user.LastDailyReset
		}
		totals, err := tx.LedgerTotals(userID, since)
		if err != nil {
			return err
		}

		recomputed = domain.UsageCounters{
			ChatTokensUsed:                    totals.ChatTokens,
			EmbeddingTokensUsed:               totals.EmbeddingTokens,
			DailyChatTokensUsed:               totals.ChatCompletionTokens,
			DailyDocumentProcessingTokensUsed: totals.DocumentProcessingTokens,
			LastDailyReset:                    stored.LastDailyReset,
		}
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, transientStoreFailure(err)
	}

	inSync := stored.ChatTokensUsed == recomputed.ChatTokensUsed &&
		stored.EmbeddingTokensUsed == recomputed.EmbeddingTokensUsed &&
		stored.DailyChatTokensUsed == recomputed.DailyChatTokensUsed &&
		stored.DailyDocumentProcessingTokensUsed == recomputed.DailyDocumentProcessingTokensUsed
	if !inSync {
		s.logger.Warn("Usage counters drifted from ledger", zap.String("user_id", userID))
	}

	return &dto.ReconciliationResponse{
		UserID:     userID,
		Stored:     dto.FromUsageCounters(stored),
		Recomputed: dto.FromUsageCounters(recomputed),
		InSync:     inSync,
	}, nil
}

// ScheduleArchive enqueues an export of the ledger for the UTC day containing day.
func (s *MeteringService) ScheduleArchive(ctx context.Context, day time.Time) error {
	if s.sqsSvc == nil {
		return errors.New("archive queue is not configured")
	}
	return s.sqsSvc.SendArchiveMessage(ctx, pkgutils.StartOfDay(day))
}

func (s *MeteringService) visibleUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, transientStoreFailure(err)
	}
	if !canSee(ctx, user.OrganizationID) {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// canSee reports whether the caller may read an organization's data. Admins see
// everything; everyone else only their own organization. Calls without claims
// come from trusted in-process callers.
func canSee(ctx context.Context, organizationID string) bool {
	if ctx.Value(utils.ClaimsKey) == nil {
		return true
	}
	if utils.HasRole(ctx, string(domain.RoleAdmin)) {
		return true
	}
	callerOrg, err := utils.GetOrganizationIDFromContext(ctx)
	return err == nil && callerOrg == organizationID
}
