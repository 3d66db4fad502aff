package integration

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrain94/token-quota-api/internal/api/dto"
)

func TestTenantLifecycle(t *testing.T) {
	s := newStack(t)
	admin := s.token(opsOrgID, "admin")

	// Plans and the default.
	var starter dto.PlanResponse
	s.decode(s.do(http.MethodPost, "/plans", admin, map[string]any{
		"name":                         "Starter",
		"cost":                         "10.00",
		"monthly_token_limit_per_user": 60000,
		"daily_token_limit_per_user":   2000,
	}), http.StatusOK, &starter)
	s.decode(s.do(http.MethodPost, "/plans/"+starter.ID+"/default", admin, nil), http.StatusOK, &starter)
	require.True(t, starter.IsDefault)

	// Enrollment picks up the default plan.
	var org dto.OrganizationResponse
	s.decode(s.do(http.MethodPost, "/organizations", admin, dto.CreateOrganizationRequest{Name: "Acme"}), http.StatusCreated, &org)
	require.NotNil(t, org.SelectedPricingPlanID)
	assert.Equal(t, starter.ID, *org.SelectedPricingPlanID)

	var user dto.UserResponse
	s.decode(s.do(http.MethodPost, "/organizations/"+org.ID+"/users", admin,
		dto.CreateUserRequest{Email: "jane@acme.io", Name: "Jane"}), http.StatusCreated, &user)
	assert.Equal(t, int64(2000), user.DailyTokenLimit)

	// 1000 concurrent charges of 5 tokens against a 2000 token day.
	metering := s.token(org.ID, "metering")
	charge := dto.ChargeRequest{
		UserID:         user.ID,
		OrganizationID: org.ID,
		TokenType:      "chat",
		OperationType:  "chat_completion",
		TokensUsed:     5,
	}

	var (
		mu       sync.Mutex
		accepted int
		rejected int
		wg       sync.WaitGroup
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				code := s.do(http.MethodPost, "/usage/charge", metering, charge).Code
				mu.Lock()
				switch code {
				case http.StatusCreated:
					accepted++
				case http.StatusTooManyRequests:
					rejected++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, accepted)
	assert.Equal(t, 600, rejected)

	// Counters agree with the ledger.
	member := s.token(org.ID, "member")
	var usage dto.UserUsageResponse
	s.decode(s.do(http.MethodGet, "/usage/users/"+user.ID, member, nil), http.StatusOK, &usage)
	assert.Equal(t, int64(2000), usage.Counters.DailyChatTokensUsed)
	assert.Equal(t, int64(2000), usage.Counters.ChatTokensUsed)

	var recon dto.ReconciliationResponse
	s.decode(s.do(http.MethodGet, "/usage/users/"+user.ID+"/reconcile", admin, nil), http.StatusOK, &recon)
	assert.True(t, recon.InSync)

	// Another organization's member cannot read these counters.
	outsider := s.token(opsOrgID, "member")
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/usage/users/"+user.ID, outsider, nil).Code)

	// Next UTC day: the sweep zeroes daily counters and keeps lifetime ones.
	s.clock.Advance(24 * time.Hour)
	var sweep dto.SweepResponse
	s.decode(s.do(http.MethodPost, "/admin/reset-sweep", admin, nil), http.StatusOK, &sweep)
	assert.Equal(t, int64(1), sweep.UsersReset)
	assert.Equal(t, int64(1), sweep.OrganizationsReset)

	var afterSweep dto.ChargeResponse
	s.decode(s.do(http.MethodPost, "/usage/charge", metering, charge), http.StatusCreated, &afterSweep)
	assert.Equal(t, int64(5), afterSweep.DailyUsed)

	s.decode(s.do(http.MethodGet, "/usage/users/"+user.ID, member, nil), http.StatusOK, &usage)
	assert.Equal(t, int64(2005), usage.Counters.ChatTokensUsed)

	// Moving to a tighter plan cascades to members right away.
	var lite dto.PlanResponse
	s.decode(s.do(http.MethodPost, "/plans", admin, map[string]any{
		"name":                       "Lite",
		"cost":                       "2.50",
		"daily_token_limit_per_user": 3,
	}), http.StatusOK, &lite)

	var assigned dto.AssignPlanResponse
	s.decode(s.do(http.MethodPut, "/organizations/"+org.ID+"/plan", admin,
		dto.AssignPlanRequest{PlanID: lite.ID, NumberOfUsersPaid: 4}), http.StatusOK, &assigned)
	assert.True(t, assigned.PlanChanged)
	assert.Equal(t, int64(1), assigned.UsersUpdated)
	assert.Equal(t, "10", assigned.MonthlyCost.String())

	one := charge
	one.TokensUsed = 1
	var quota dto.QuotaExceededResponse
	s.decode(s.do(http.MethodPost, "/usage/charge", metering, one), http.StatusTooManyRequests, &quota)
	assert.Equal(t, int64(3), quota.Limit)
	assert.Equal(t, int64(5), quota.Used)

	// Other buckets are independent of the chat bucket.
	doc := charge
	doc.OperationType = "document_processing"
	doc.TokensUsed = 3
	s.decode(s.do(http.MethodPost, "/usage/charge", metering, doc), http.StatusCreated, nil)

	var events []dto.UsageEventResponse
	s.decode(s.do(http.MethodGet, "/usage/events?user_id="+user.ID+"&page_size=1000", member, nil), http.StatusOK, &events)
	assert.Len(t, events, 402)
}

func TestChargeRejectsBadEvents(t *testing.T) {
	s := newStack(t)
	admin := s.token(opsOrgID, "admin")

	var plan dto.PlanResponse
	s.decode(s.do(http.MethodPost, "/plans", admin, map[string]any{"name": "Free", "daily_token_limit_per_user": 100}), http.StatusOK, &plan)
	s.decode(s.do(http.MethodPost, "/plans/"+plan.ID+"/default", admin, nil), http.StatusOK, nil)

	var org dto.OrganizationResponse
	s.decode(s.do(http.MethodPost, "/organizations", admin, dto.CreateOrganizationRequest{Name: "Beta"}), http.StatusCreated, &org)
	var user dto.UserResponse
	s.decode(s.do(http.MethodPost, "/organizations/"+org.ID+"/users", admin,
		dto.CreateUserRequest{Email: "bo@beta.io", Name: "Bo"}), http.StatusCreated, &user)

	metering := s.token(org.ID, "metering")
	badDocument := "doc-1; not a uuid"
	tests := []struct {
		name string
		req  dto.ChargeRequest
	}{
		{"zero tokens", dto.ChargeRequest{UserID: user.ID, OrganizationID: org.ID, TokenType: "chat", OperationType: "chat_completion"}},
		{"unknown token type", dto.ChargeRequest{UserID: user.ID, OrganizationID: org.ID, TokenType: "audio", OperationType: "chat_completion", TokensUsed: 1}},
		{"unknown user", dto.ChargeRequest{UserID: "7c9e6679-7425-40de-944b-e07fc1f90ae7", OrganizationID: org.ID, TokenType: "chat", OperationType: "chat_completion", TokensUsed: 1}},
		{"wrong organization", dto.ChargeRequest{UserID: user.ID, OrganizationID: opsOrgID, TokenType: "chat", OperationType: "chat_completion", TokensUsed: 1}},
		{"malformed document id", dto.ChargeRequest{UserID: user.ID, OrganizationID: org.ID, TokenType: "chat", OperationType: "chat_completion", TokensUsed: 1, DocumentID: &badDocument}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/usage/charge", metering, tt.req).Code)
		})
	}

	var usage dto.UserUsageResponse
	s.decode(s.do(http.MethodGet, "/usage/users/"+user.ID, admin, nil), http.StatusOK, &usage)
	assert.Zero(t, usage.Counters.ChatTokensUsed)
}
