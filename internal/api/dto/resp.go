package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageEventResponse is an accepted ledger entry. It is also the payload of the live usage feed.
type UsageEventResponse struct {
	ID             string    `json:"id" example:"a3bb189e-8bf9-3888-9912-ace4e6543002"`
	UserID         string    `json:"user_id" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	OrganizationID string    `json:"organization_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TokenType      string    `json:"token_type" example:"chat"`
	OperationType  string    `json:"operation_type" example:"chat_completion"`
	TokensUsed     int64     `json:"tokens_used" example:"350"`
	Model          string    `json:"model,omitempty" example:"gpt-4o"`
	DocumentID     *string   `json:"document_id,omitempty"`
	ChatID         *string   `json:"chat_id,omitempty"`
	CreatedAt      time.Time `json:"created_at" example:"2025-07-17T21:20:48Z"`
}

// ChargeResponse is returned for an accepted charge.
type ChargeResponse struct {
	Event          UsageEventResponse `json:"event"`
	DailyUsed      int64              `json:"daily_used" example:"4350"`
	DailyLimit     int64              `json:"daily_limit" example:"10000"`
	DailyRemaining int64              `json:"daily_remaining" example:"5650"`
}

// QuotaExceededResponse is the 429 body of a rejected charge.
type QuotaExceededResponse struct {
	Error         string `json:"error" example:"daily token quota exceeded"`
	UserID        string `json:"user_id" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	OperationType string `json:"operation_type" example:"chat_completion"`
	Used          int64  `json:"used" example:"9900"`
	Requested     int64  `json:"requested" example:"350"`
	Limit         int64  `json:"limit" example:"10000"`
}

type AllowanceResponse struct {
	Allowed   bool  `json:"allowed" example:"true"`
	Used      int64 `json:"used" example:"4000"`
	Limit     int64 `json:"limit" example:"10000"`
	Remaining int64 `json:"remaining" example:"6000"`
}

// UsageCountersResponse is the read-side view of a tenant's counters. Daily
// totals of a tenant whose day has turned over read as zero.
type UsageCountersResponse struct {
	ChatTokensUsed                    int64      `json:"chat_tokens_used" example:"125000"`
	EmbeddingTokensUsed               int64      `json:"embedding_tokens_used" example:"480000"`
	DailyChatTokensUsed               int64      `json:"daily_chat_tokens_used" example:"4000"`
	DailyDocumentProcessingTokensUsed int64      `json:"daily_document_processing_tokens_used" example:"1200"`
	LastDailyReset                    *time.Time `json:"last_daily_reset,omitempty" example:"2025-07-17T00:00:03Z"`
}

type UserUsageResponse struct {
	UserID          string                `json:"user_id"`
	OrganizationID  string                `json:"organization_id"`
	DailyTokenLimit int64                 `json:"daily_token_limit" example:"10000"`
	Counters        UsageCountersResponse `json:"counters"`
}

type OrganizationUsageResponse struct {
	OrganizationID    string                `json:"organization_id"`
	MonthlyTokenLimit int64                 `json:"monthly_token_limit" example:"1000"`
	TokenBalance      decimal.Decimal       `json:"token_balance" swaggertype:"string" example:"0"`
	Counters          UsageCountersResponse `json:"counters"`
}

// ReconciliationResponse compares stored counters with sums recomputed from the ledger.
type ReconciliationResponse struct {
	UserID     string                `json:"user_id"`
	Stored     UsageCountersResponse `json:"stored"`
	Recomputed UsageCountersResponse `json:"recomputed"`
	InSync     bool                  `json:"in_sync" example:"true"`
}

type PlanResponse struct {
	ID                       string          `json:"id"`
	Name                     string          `json:"name" example:"Team"`
	Cost                     decimal.Decimal `json:"cost" swaggertype:"string" example:"19.99"`
	MonthlyTokenLimitPerUser int64           `json:"monthly_token_limit_per_user" example:"300000"`
	DailyTokenLimitPerUser   int64           `json:"daily_token_limit_per_user" example:"10000"`
	IsActive                 bool            `json:"is_active" example:"true"`
	IsDefault                bool            `json:"is_default" example:"false"`
	CreatedAt                time.Time       `json:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at"`
}

type OrganizationResponse struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name" example:"Acme Corp"`
	SelectedPricingPlanID *string         `json:"selected_pricing_plan_id,omitempty"`
	TokenBalance          decimal.Decimal `json:"token_balance" swaggertype:"string" example:"0"`
	MonthlyTokenLimit     int64           `json:"monthly_token_limit" example:"1000"`
	NumberOfUsersPaid     int             `json:"number_of_users_paid" example:"10"`
	SubscriptionStartDate *time.Time      `json:"subscription_start_date,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

type AssignPlanResponse struct {
	Organization OrganizationResponse `json:"organization"`
	PlanChanged  bool                 `json:"plan_changed" example:"true"`
	UsersUpdated int64                `json:"users_updated" example:"12"`
	MonthlyCost  decimal.Decimal      `json:"monthly_cost" swaggertype:"string" example:"499.75"`
}

type UserResponse struct {
	ID              string    `json:"id"`
	OrganizationID  string    `json:"organization_id"`
	Email           string    `json:"email" example:"jane@acme.io"`
	Name            string    `json:"name" example:"Jane Doe"`
	DailyTokenLimit int64     `json:"daily_token_limit" example:"10000"`
	CreatedAt       time.Time `json:"created_at"`
}

type SweepResponse struct {
	Skipped            bool      `json:"skipped" example:"false"`
	UsersReset         int64     `json:"users_reset" example:"1520"`
	OrganizationsReset int64     `json:"organizations_reset" example:"48"`
	RanAt              time.Time `json:"ran_at"`
}
