package dto

import (
	"time"

	"github.com/kingrain94/token-quota-api/internal/domain"
)

// ToUsageEvent converts a ChargeRequest into an unsaved ledger entry.
func (r *ChargeRequest) ToUsageEvent() *domain.UsageEvent {
	return &domain.UsageEvent{
		UserID:         r.UserID,
		OrganizationID: r.OrganizationID,
		TokenType:      domain.TokenType(r.TokenType),
		OperationType:  domain.OperationType(r.OperationType),
		TokensUsed:     r.TokensUsed,
		DocumentID:     r.DocumentID,
		ChatID:         r.ChatID,
	}
}

func (r *UpsertPlanRequest) ToPricingPlan() *domain.PricingPlan {
	plan := &domain.PricingPlan{
		ID:                       r.ID,
		Name:                     r.Name,
		Cost:                     r.Cost,
		MonthlyTokenLimitPerUser: r.MonthlyTokenLimitPerUser,
		DailyTokenLimitPerUser:   r.DailyTokenLimitPerUser,
		IsActive:                 true,
	}
	if r.IsActive != nil {
		plan.IsActive = *r.IsActive
	}
	return plan
}

func FromUsageEvent(event *domain.UsageEvent) *UsageEventResponse {
	return &UsageEventResponse{
		ID:             event.ID,
		UserID:         event.UserID,
		OrganizationID: event.OrganizationID,
		TokenType:      string(event.TokenType),
		OperationType:  string(event.OperationType),
		TokensUsed:     event.TokensUsed,
		Model:          event.Model,
		DocumentID:     event.DocumentID,
		ChatID:         event.ChatID,
		CreatedAt:      event.CreatedAt,
	}
}

func FromUsageEvents(events []domain.UsageEvent) []UsageEventResponse {
	responses := make([]UsageEventResponse, len(events))
	for i := range events {
		responses[i] = *FromUsageEvent(&events[i])
	}
	return responses
}

func FromUsageCounters(c domain.UsageCounters) UsageCountersResponse {
	var lastReset *time.Time
	if c.LastDailyReset != nil {
		t := c.LastDailyReset.UTC()
		lastReset = &t
	}
	return UsageCountersResponse{
		ChatTokensUsed:                    c.ChatTokensUsed,
		EmbeddingTokensUsed:               c.EmbeddingTokensUsed,
		DailyChatTokensUsed:               c.DailyChatTokensUsed,
		DailyDocumentProcessingTokensUsed: c.DailyDocumentProcessingTokensUsed,
		LastDailyReset:                    lastReset,
	}
}

func FromPricingPlan(plan *domain.PricingPlan) *PlanResponse {
	return &PlanResponse{
		ID:                       plan.ID,
		Name:                     plan.Name,
		Cost:                     plan.Cost,
		MonthlyTokenLimitPerUser: plan.MonthlyTokenLimitPerUser,
		DailyTokenLimitPerUser:   plan.DailyTokenLimitPerUser,
		IsActive:                 plan.IsActive,
		IsDefault:                plan.IsDefault,
		CreatedAt:                plan.CreatedAt,
		UpdatedAt:                plan.UpdatedAt,
	}
}

func FromPricingPlans(plans []domain.PricingPlan) []PlanResponse {
	responses := make([]PlanResponse, len(plans))
	for i := range plans {
		responses[i] = *FromPricingPlan(&plans[i])
	}
	return responses
}

func FromOrganization(org *domain.Organization) *OrganizationResponse {
	return &OrganizationResponse{
		ID:                    org.ID,
		Name:                  org.Name,
		SelectedPricingPlanID: org.SelectedPricingPlanID,
		TokenBalance:          org.TokenBalance,
		MonthlyTokenLimit:     org.MonthlyTokenLimit,
		NumberOfUsersPaid:     org.NumberOfUsersPaid,
		SubscriptionStartDate: org.SubscriptionStartDate,
		CreatedAt:             org.CreatedAt,
		UpdatedAt:             org.UpdatedAt,
	}
}

func FromUser(user *domain.User) *UserResponse {
	return &UserResponse{
		ID:              user.ID,
		OrganizationID:  user.OrganizationID,
		Email:           user.Email,
		Name:            user.Name,
		DailyTokenLimit: user.DailyTokenLimit,
		CreatedAt:       user.CreatedAt,
	}
}

func FromUsers(users []domain.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = *FromUser(&users[i])
	}
	return responses
}
