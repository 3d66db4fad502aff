package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
	"github.com/kingrain94/token-quota-api/internal/clock"
	"github.com/kingrain94/token-quota-api/internal/domain"
	"github.com/kingrain94/token-quota-api/internal/mocks"
	"github.com/kingrain94/token-quota-api/internal/repository"
	"github.com/kingrain94/token-quota-api/internal/utils"
	"github.com/kingrain94/token-quota-api/pkg/logger"
)

type MeteringServiceTestSuite struct {
	suite.Suite
	f           *fixture
	sqs         *mocks.SQSService
	broadcaster *mocks.UsageBroadcaster
	service     *MeteringService
	org         *domain.Organization
	user        *domain.User
}

func TestMeteringService(t *testing.T) {
	suite.Run(t, new(MeteringServiceTestSuite))
}

func (s *MeteringServiceTestSuite) SetupTest() {
	s.f = newFixture(s.T(), at("2025-03-21T10:00:00Z"))
	s.sqs = new(mocks.SQSService)
	s.sqs.On("SendIndexMessage", mock.Anything, mock.Anything).Return(nil).Maybe()
	s.broadcaster = new(mocks.UsageBroadcaster)
	s.broadcaster.On("BroadcastUsage", mock.Anything).Return().Maybe()

	s.service = NewMeteringService(s.f.repo, s.sqs, s.f.clock, logger.NewNop())
	s.service.SetUsageBroadcaster(s.broadcaster)

	plan := s.f.seedPlan("Team", 1000, true)
	s.org = s.f.seedOrganization(plan)
	s.user = s.f.seedUser(s.org, "jane@acme.io", 1000)
}

func (s *MeteringServiceTestSuite) charge(tokenType domain.TokenType, op domain.OperationType, tokens int64) (*dto.ChargeResponse, error) {
	return s.service.Charge(context.Background(), dto.ChargeRequest{
		UserID:         s.user.ID,
		OrganizationID: s.org.ID,
		TokenType:      string(tokenType),
		OperationType:  string(op),
		TokensUsed:     tokens,
	})
}

func (s *MeteringServiceTestSuite) TestCharge_Success() {
	resp, err := s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 350)

	s.Require().NoError(err)
	s.NotEmpty(resp.Event.ID)
	s.Equal(int64(350), resp.DailyUsed)
	s.Equal(int64(1000), resp.DailyLimit)
	s.Equal(int64(650), resp.DailyRemaining)

	user := s.f.user(s.user.ID)
	s.Equal(int64(350), user.ChatTokensUsed)
	s.Equal(int64(350), user.DailyChatTokensUsed)
	s.Zero(user.EmbeddingTokensUsed)
	s.Require().NotNil(user.LastDailyReset)

	org := s.f.organization(s.org.ID)
	s.Equal(int64(350), org.ChatTokensUsed)
	s.Equal(int64(350), org.DailyChatTokensUsed)

	s.Equal(int64(1), s.f.eventCount(s.user.ID))
	s.sqs.AssertCalled(s.T(), "SendIndexMessage", mock.Anything, mock.MatchedBy(func(e *domain.UsageEvent) bool {
		return e.ID == resp.Event.ID
	}))
	s.broadcaster.AssertNumberOfCalls(s.T(), "BroadcastUsage", 1)
}

func (s *MeteringServiceTestSuite) TestCharge_CountersMatchLedger() {
	charges := []struct {
		tokenType domain.TokenType
		op        domain.OperationType
		tokens    int64
	}{
		{domain.TokenTypeChat, domain.OperationChatCompletion, 120},
		{domain.TokenTypeEmbedding, domain.OperationDocumentProcessing, 300},
		{domain.TokenTypeChat, domain.OperationDocumentProcessing, 45},
		{domain.TokenTypeChat, domain.OperationChatCompletion, 80},
		{domain.TokenTypeEmbedding, domain.OperationChatCompletion, 7},
	}
	for _, c := range charges {
		_, err := s.charge(c.tokenType, c.op, c.tokens)
		s.Require().NoError(err)
	}

	user := s.f.user(s.user.ID)
	s.Equal(s.f.ledgerSum(s.user.ID, "token_type", "chat"), user.ChatTokensUsed)
	s.Equal(s.f.ledgerSum(s.user.ID, "token_type", "embedding"), user.EmbeddingTokensUsed)
	s.Equal(s.f.ledgerSum(s.user.ID, "operation_type", "chat_completion"), user.DailyChatTokensUsed)
	s.Equal(s.f.ledgerSum(s.user.ID, "operation_type", "document_processing"), user.DailyDocumentProcessingTokensUsed)
	s.Equal(int64(245), user.ChatTokensUsed)
	s.Equal(int64(307), user.EmbeddingTokensUsed)

	report, err := s.service.ReconcileUser(context.Background(), s.user.ID)
	s.Require().NoError(err)
	s.True(report.InSync)
	s.Equal(report.Stored, report.Recomputed)
}

func (s *MeteringServiceTestSuite) TestCharge_BucketsAreIndependent() {
	_, err := s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 1000)
	s.Require().NoError(err)

	resp, err := s.charge(domain.TokenTypeEmbedding, domain.OperationDocumentProcessing, 1000)
	s.Require().NoError(err)
	s.Equal(int64(1000), resp.DailyUsed)

	_, err = s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 1)
	s.ErrorIs(err, ErrQuotaExceeded)
}

func (s *MeteringServiceTestSuite) TestCharge_ReachingLimitExactlyIsAllowed() {
	_, err := s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 990)
	s.Require().NoError(err)

	resp, err := s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 10)
	s.Require().NoError(err)
	s.Equal(int64(1000), resp.DailyUsed)
	s.Zero(resp.DailyRemaining)
}

func (s *MeteringServiceTestSuite) TestCharge_RejectionLeavesNoTrace() {
	_, err := s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 995)
	s.Require().NoError(err)

	userBefore := s.f.user(s.user.ID)
	orgBefore := s.f.organization(s.org.ID)
	eventsBefore := s.f.eventCount(s.user.ID)

	_, err = s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 10)

	s.Require().ErrorIs(err, ErrQuotaExceeded)
	var quotaErr *QuotaExceededError
	s.Require().True(errors.As(err, &quotaErr))
	s.Equal(int64(995), quotaErr.Used)
	s.Equal(int64(10), quotaErr.Requested)
	s.Equal(int64(1000), quotaErr.Limit)
	s.Equal(domain.OperationChatCompletion, quotaErr.OperationType)

	s.Equal(userBefore.UsageCounters, s.f.user(s.user.ID).UsageCounters)
	s.Equal(orgBefore.UsageCounters, s.f.organization(s.org.ID).UsageCounters)
	s.Equal(eventsBefore, s.f.eventCount(s.user.ID))
	s.sqs.AssertNumberOfCalls(s.T(), "SendIndexMessage", 1)
}

func (s *MeteringServiceTestSuite) TestCharge_RejectionDiscardsLazyReset() {
	yesterday := at("2025-03-20T09:00:00Z")
	s.f.setUserCounters(s.user.ID, domain.UsageCounters{
		ChatTokensUsed:      500,
		DailyChatTokensUsed: 500,
		LastDailyReset:      &yesterday,
	})

	_, err := s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 1500)

	s.Require().ErrorIs(err, ErrQuotaExceeded)
	user := s.f.user(s.user.ID)
	s.Equal(int64(500), user.DailyChatTokensUsed)
	s.Require().NotNil(user.LastDailyReset)
	s.True(yesterday.Equal(*user.LastDailyReset))
}

func (s *MeteringServiceTestSuite) TestCharge_InvalidTokens() {
	userBefore := s.f.user(s.user.ID)

	for _, tokens := range []int64{0, -5} {
		_, err := s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, tokens)
		s.ErrorIs(err, ErrInvalidUsageEvent)
		s.ErrorIs(err, domain.ErrNonPositiveTokens)
	}

	s.Equal(userBefore.UsageCounters, s.f.user(s.user.ID).UsageCounters)
	s.Zero(s.f.eventCount(s.user.ID))
	s.sqs.AssertNotCalled(s.T(), "SendIndexMessage", mock.Anything, mock.Anything)
}

func (s *MeteringServiceTestSuite) TestCharge_InvalidRequests() {
	tests := []struct {
		name    string
		req     dto.ChargeRequest
		wantErr error
	}{
		{
			name:    "unknown token type",
			req:     dto.ChargeRequest{UserID: s.user.ID, OrganizationID: s.org.ID, TokenType: "image", OperationType: "chat_completion", TokensUsed: 5},
			wantErr: domain.ErrUnknownTokenType,
		},
		{
			name:    "unknown operation type",
			req:     dto.ChargeRequest{UserID: s.user.ID, OrganizationID: s.org.ID, TokenType: "chat", OperationType: "search", TokensUsed: 5},
			wantErr: domain.ErrUnknownOperationType,
		},
		{
			name:    "unknown user",
			req:     dto.ChargeRequest{UserID: "8d3c5e1a-0000-4000-8000-000000000000", OrganizationID: s.org.ID, TokenType: "chat", OperationType: "chat_completion", TokensUsed: 5},
			wantErr: ErrUserNotFound,
		},
		{
			name:    "user of another organization",
			req:     dto.ChargeRequest{UserID: s.user.ID, OrganizationID: "8d3c5e1a-0000-4000-8000-000000000001", TokenType: "chat", OperationType: "chat_completion", TokensUsed: 5},
			wantErr: errUserNotInOrganization,
		},
		{
			name:    "model reports a different token type",
			req:     dto.ChargeRequest{UserID: s.user.ID, OrganizationID: s.org.ID, TokenType: "chat", OperationType: "chat_completion", TokensUsed: 5, Model: "text_embedding"},
			wantErr: ErrInvalidUsageEvent,
		},
		{
			name:    "unknown model",
			req:     dto.ChargeRequest{UserID: s.user.ID, OrganizationID: s.org.ID, TokenType: "chat", OperationType: "chat_completion", TokensUsed: 5, Model: "mystery"},
			wantErr: ErrInvalidUsageEvent,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.Charge(context.Background(), tt.req)
			s.ErrorIs(err, ErrInvalidUsageEvent)
			s.ErrorIs(err, tt.wantErr)
		})
	}
	s.Zero(s.f.eventCount(s.user.ID))
}

func (s *MeteringServiceTestSuite) TestCharge_MalformedIDsAreNotRetryable() {
	bad := "doc-1; not a uuid"
	tests := []struct {
		name   string
		mutate func(req *dto.ChargeRequest)
	}{
		{"document", func(req *dto.ChargeRequest) { req.DocumentID = &bad }},
		{"chat", func(req *dto.ChargeRequest) { req.ChatID = &bad }},
		{"user", func(req *dto.ChargeRequest) { req.UserID = "jane" }},
		{"organization", func(req *dto.ChargeRequest) { req.OrganizationID = "acme" }},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := chargeFor(s.user, s.org, 5)
			tt.mutate(&req)

			_, err := s.service.Charge(context.Background(), req)

			s.ErrorIs(err, ErrInvalidUsageEvent)
			s.ErrorIs(err, domain.ErrMalformedID)
			s.NotErrorIs(err, ErrTransientStoreFailure)
		})
	}
	s.Zero(s.f.eventCount(s.user.ID))
	s.Zero(s.f.user(s.user.ID).ChatTokensUsed)
}

func (s *MeteringServiceTestSuite) TestCharge_KeepsDocumentReference() {
	doc := "3f2504e0-4f89-11d3-9a0c-0305e82c3301"
	req := chargeFor(s.user, s.org, 5)
	req.DocumentID = &doc

	resp, err := s.service.Charge(context.Background(), req)

	s.Require().NoError(err)
	s.Require().NotNil(resp.Event.DocumentID)
	s.Equal(doc, *resp.Event.DocumentID)
}

func (s *MeteringServiceTestSuite) TestCharge_ResolvesModel() {
	resp, err := s.service.Charge(context.Background(), dto.ChargeRequest{
		UserID:         s.user.ID,
		OrganizationID: s.org.ID,
		TokenType:      "embedding",
		OperationType:  "document_processing",
		TokensUsed:     64,
		Model:          "table_embedding",
	})

	s.Require().NoError(err)
	s.Equal("text-embedding-3-large", resp.Event.Model)
}

func (s *MeteringServiceTestSuite) TestCharge_ConcurrentWithinLimit() {
	const workers = 50

	var wg sync.WaitGroup
	var failures atomic.Int64
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 10); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Zero(failures.Load())
	user := s.f.user(s.user.ID)
	s.Equal(int64(500), user.DailyChatTokensUsed)
	s.Equal(int64(500), user.ChatTokensUsed)
	s.Equal(int64(500), s.f.organization(s.org.ID).DailyChatTokensUsed)
	s.Equal(int64(workers), s.f.eventCount(s.user.ID))
}

func (s *MeteringServiceTestSuite) TestCharge_ConcurrentNeverOvershoots() {
	tight := s.f.seedUser(s.org, "tight@acme.io", 200)

	const workers = 50
	var wg sync.WaitGroup
	var accepted, rejected atomic.Int64
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.Charge(context.Background(), dto.ChargeRequest{
				UserID:         tight.ID,
				OrganizationID: s.org.ID,
				TokenType:      "chat",
				OperationType:  "chat_completion",
				TokensUsed:     10,
			})
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, ErrQuotaExceeded):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int64(20), accepted.Load())
	s.Equal(int64(30), rejected.Load())
	s.Equal(int64(200), s.f.user(tight.ID).DailyChatTokensUsed)
	s.Equal(int64(20), s.f.eventCount(tight.ID))
}

func (s *MeteringServiceTestSuite) TestCharge_DayBoundary() {
	s.f.clock.Set(at("2025-03-21T23:59:59Z"))
	_, err := s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 500)
	s.Require().NoError(err)

	s.f.clock.Set(at("2025-03-22T00:00:01Z"))
	resp, err := s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 10)
	s.Require().NoError(err)
	s.Equal(int64(10), resp.DailyUsed)

	user := s.f.user(s.user.ID)
	s.Equal(int64(10), user.DailyChatTokensUsed)
	s.Equal(int64(510), user.ChatTokensUsed)
	s.True(at("2025-03-22T00:00:01Z").Equal(*user.LastDailyReset))

	org := s.f.organization(s.org.ID)
	s.Equal(int64(10), org.DailyChatTokensUsed)
	s.Equal(int64(510), org.ChatTokensUsed)
}

func (s *MeteringServiceTestSuite) TestCharge_SameDayDoesNotReset() {
	_, err := s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 100)
	s.Require().NoError(err)
	firstReset := *s.f.user(s.user.ID).LastDailyReset

	s.f.clock.Advance(6 * time.Hour)
	_, err = s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 100)
	s.Require().NoError(err)

	user := s.f.user(s.user.ID)
	s.Equal(int64(200), user.DailyChatTokensUsed)
	s.True(firstReset.Equal(*user.LastDailyReset))
}

func (s *MeteringServiceTestSuite) TestCharge_UnlimitedUser() {
	free := s.f.seedUser(s.org, "free@acme.io", 0)

	resp, err := s.service.Charge(context.Background(), dto.ChargeRequest{
		UserID:         free.ID,
		OrganizationID: s.org.ID,
		TokenType:      "chat",
		OperationType:  "chat_completion",
		TokensUsed:     1_000_000,
	})

	s.Require().NoError(err)
	s.Equal(int64(-1), resp.DailyRemaining)
}

func (s *MeteringServiceTestSuite) TestCheckAllowance() {
	_, err := s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 900)
	s.Require().NoError(err)

	resp, err := s.service.CheckAllowance(context.Background(), dto.AllowanceRequest{
		UserID: s.user.ID, OperationType: "chat_completion", TokensUsed: 100,
	})
	s.Require().NoError(err)
	s.True(resp.Allowed)
	s.Equal(int64(100), resp.Remaining)

	resp, err = s.service.CheckAllowance(context.Background(), dto.AllowanceRequest{
		UserID: s.user.ID, OperationType: "chat_completion", TokensUsed: 101,
	})
	s.Require().NoError(err)
	s.False(resp.Allowed)

	// A new day reads as zero usage before anything has been written.
	s.f.clock.Advance(24 * time.Hour)
	resp, err = s.service.CheckAllowance(context.Background(), dto.AllowanceRequest{
		UserID: s.user.ID, OperationType: "chat_completion", TokensUsed: 1000,
	})
	s.Require().NoError(err)
	s.True(resp.Allowed)
	s.Zero(resp.Used)
	s.Equal(int64(900), s.f.user(s.user.ID).DailyChatTokensUsed)
}

func (s *MeteringServiceTestSuite) TestCheckAllowance_MalformedUserID() {
	_, err := s.service.CheckAllowance(context.Background(), dto.AllowanceRequest{
		UserID: "jane@acme.io", OperationType: "chat_completion", TokensUsed: 1,
	})

	s.ErrorIs(err, ErrInvalidUsageEvent)
	s.ErrorIs(err, domain.ErrMalformedID)
}

func (s *MeteringServiceTestSuite) TestGetUserUsage_Visibility() {
	member := utils.WithClaims(context.Background(), map[string]any{
		"organization_id": "8d3c5e1a-0000-4000-8000-000000000001",
		"roles":           []any{"member"},
	})
	_, err := s.service.GetUserUsage(member, s.user.ID)
	s.ErrorIs(err, ErrUserNotFound)

	own := utils.WithClaims(context.Background(), map[string]any{
		"organization_id": s.org.ID,
		"roles":           []any{"member"},
	})
	resp, err := s.service.GetUserUsage(own, s.user.ID)
	s.Require().NoError(err)
	s.Equal(s.user.ID, resp.UserID)

	admin := utils.WithClaims(context.Background(), map[string]any{
		"organization_id": "8d3c5e1a-0000-4000-8000-000000000001",
		"roles":           []any{"admin"},
	})
	orgResp, err := s.service.GetOrganizationUsage(admin, s.org.ID)
	s.Require().NoError(err)
	s.Equal(s.org.ID, orgResp.OrganizationID)
}

func (s *MeteringServiceTestSuite) TestReconcileUser_DetectsDrift() {
	_, err := s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 100)
	s.Require().NoError(err)

	now := s.f.clock.Now()
	s.f.setUserCounters(s.user.ID, domain.UsageCounters{
		ChatTokensUsed:      150,
		DailyChatTokensUsed: 100,
		LastDailyReset:      &now,
	})

	report, err := s.service.ReconcileUser(context.Background(), s.user.ID)

	s.Require().NoError(err)
	s.False(report.InSync)
	s.Equal(int64(150), report.Stored.ChatTokensUsed)
	s.Equal(int64(100), report.Recomputed.ChatTokensUsed)
}

func (s *MeteringServiceTestSuite) TestReconcileUser_NotFound() {
	_, err := s.service.ReconcileUser(context.Background(), "8d3c5e1a-0000-4000-8000-000000000000")
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *MeteringServiceTestSuite) TestListUsageEvents_FromPostgres() {
	for i := 0; i < 3; i++ {
		_, err := s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 10)
		s.Require().NoError(err)
	}

	events, err := s.service.ListUsageEvents(context.Background(), &domain.UsageEventFilter{
		OrganizationID: s.org.ID,
		PageSize:       2,
	})

	s.Require().NoError(err)
	s.Len(events, 2)
	s.f.search.AssertNotCalled(s.T(), "Search", mock.Anything, mock.Anything)
}

func (s *MeteringServiceTestSuite) TestListUsageEvents_FromSearchIndex() {
	s.f.search.On("Search", mock.Anything, mock.MatchedBy(func(f *domain.UsageEventFilter) bool {
		return f.Model == "gpt-4o" && f.Page == 1 && f.PageSize == 50
	})).Return([]domain.UsageEvent{{ID: "e1", Model: "gpt-4o"}}, nil).Once()

	events, err := s.service.ListUsageEvents(context.Background(), &domain.UsageEventFilter{
		OrganizationID: s.org.ID,
		Model:          "gpt-4o",
	})

	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("e1", events[0].ID)
	s.f.search.AssertExpectations(s.T())
}

func (s *MeteringServiceTestSuite) TestListUsageEvents_WithoutSearchIndex() {
	s.f.repo.search = nil
	_, err := s.charge(domain.TokenTypeChat, domain.OperationChatCompletion, 10)
	s.Require().NoError(err)
	_, err = s.charge(domain.TokenTypeEmbedding, domain.OperationDocumentProcessing, 20)
	s.Require().NoError(err)

	events, err := s.service.ListUsageEvents(context.Background(), &domain.UsageEventFilter{
		OrganizationID: s.org.ID,
		TokenType:      domain.TokenTypeEmbedding,
	})

	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(int64(20), events[0].TokensUsed)
}

func (s *MeteringServiceTestSuite) TestListUsageEvents_SearchFailureIsTransient() {
	s.f.search.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("cluster red")).Once()

	_, err := s.service.ListUsageEvents(context.Background(), &domain.UsageEventFilter{
		OrganizationID: s.org.ID,
		OperationType:  domain.OperationChatCompletion,
	})

	s.ErrorIs(err, ErrTransientStoreFailure)
}

const (
	mockUserID = "5f0c8a52-1d2e-4b3f-9c4d-6e7f8a9b0c1d"
	mockOrgID  = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"
)

// Charge against mocked stores, for failure paths sqlite cannot produce.
func TestMeteringService_Charge_StoreFailureIsTransient(t *testing.T) {
	repo := new(mocks.Repository)
	metering := new(mocks.MeteringRepository)
	repo.On("Metering").Return(metering)
	metering.On("WithinTx", mock.Anything, mock.Anything).Return(errors.New("connection reset by peer"))

	svc := NewMeteringService(repo, nil, clock.NewFakeClock(at("2025-03-21T10:00:00Z")), logger.NewNop())
	_, err := svc.Charge(context.Background(), dto.ChargeRequest{
		UserID: mockUserID, OrganizationID: mockOrgID, TokenType: "chat", OperationType: "chat_completion", TokensUsed: 5,
	})

	assert.ErrorIs(t, err, ErrTransientStoreFailure)
	assert.NotErrorIs(t, err, ErrQuotaExceeded)
	assert.NotErrorIs(t, err, ErrInvalidUsageEvent)
}

func TestMeteringService_Charge_IncrementFailureRollsBack(t *testing.T) {
	now := at("2025-03-21T10:00:00Z")
	repo := new(mocks.Repository)
	metering := new(mocks.MeteringRepository)
	tx := new(mocks.MeteringTx)
	repo.On("Metering").Return(metering)
	metering.On("WithinTx", mock.Anything, mock.Anything).Return(func(_ context.Context, fn func(repository.MeteringTx) error) error {
		return fn(tx)
	})

	tx.On("LockUser", mockUserID).Return(&domain.User{ID: mockUserID, OrganizationID: mockOrgID, DailyTokenLimit: 100, UsageCounters: domain.UsageCounters{LastDailyReset: &now}}, nil)
	tx.On("LockOrganization", mockOrgID).Return(&domain.Organization{ID: mockOrgID, UsageCounters: domain.UsageCounters{LastDailyReset: &now}}, nil)
	tx.On("AppendEvent", mock.Anything).Return(nil)
	tx.On("IncrementUser", mockUserID, mock.Anything).Return(nil)
	tx.On("IncrementOrganization", mockOrgID, mock.Anything).Return(errors.New("deadlock detected"))

	sqsSvc := new(mocks.SQSService)
	svc := NewMeteringService(repo, sqsSvc, clock.NewFakeClock(now), logger.NewNop())
	_, err := svc.Charge(context.Background(), dto.ChargeRequest{
		UserID: mockUserID, OrganizationID: mockOrgID, TokenType: "chat", OperationType: "chat_completion", TokensUsed: 5,
	})

	assert.ErrorIs(t, err, ErrTransientStoreFailure)
	require.GreaterOrEqual(t, len(tx.Calls), 2)
	assert.Equal(t, "LockUser", tx.Calls[0].Method, "user row is locked before the organization row")
	assert.Equal(t, "LockOrganization", tx.Calls[1].Method)
	tx.AssertNotCalled(t, "ResetUserDaily", mock.Anything, mock.Anything)
	sqsSvc.AssertNotCalled(t, "SendIndexMessage", mock.Anything, mock.Anything)
}

func TestMeteringService_Charge_PublishFailureKeepsCharge(t *testing.T) {
	f := newFixture(t, at("2025-03-21T10:00:00Z"))
	plan := f.seedPlan("Team", 1000, true)
	org := f.seedOrganization(plan)
	user := f.seedUser(org, "jane@acme.io", 1000)

	sqsSvc := new(mocks.SQSService)
	sqsSvc.On("SendIndexMessage", mock.Anything, mock.Anything).Return(errors.New("queue unavailable"))

	svc := NewMeteringService(f.repo, sqsSvc, f.clock, logger.NewNop())
	resp, err := svc.Charge(context.Background(), dto.ChargeRequest{
		UserID: user.ID, OrganizationID: org.ID, TokenType: "chat", OperationType: "chat_completion", TokensUsed: 5,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.DailyUsed)
	assert.Equal(t, int64(1), f.eventCount(user.ID))
	sqsSvc.AssertExpectations(t)
}

func TestMeteringService_ScheduleArchive(t *testing.T) {
	sqsSvc := new(mocks.SQSService)
	sqsSvc.On("SendArchiveMessage", mock.Anything, at("2025-03-20T00:00:00Z")).Return(nil)

	svc := NewMeteringService(new(mocks.Repository), sqsSvc, clock.NewFakeClock(at("2025-03-21T10:00:00Z")), logger.NewNop())

	require.NoError(t, svc.ScheduleArchive(context.Background(), at("2025-03-20T17:45:00Z")))
	sqsSvc.AssertExpectations(t)
}
