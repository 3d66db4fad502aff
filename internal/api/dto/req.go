package dto

import (
	"github.com/shopspring/decimal"
)

// ChargeRequest reports the tokens an operation consumed. Token counts come
// from the provider's usage report; the service never prices anything.
type ChargeRequest struct {
	UserID         string  `json:"user_id" binding:"required,uuid" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	OrganizationID string  `json:"organization_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	TokenType      string  `json:"token_type" binding:"required" example:"chat"`
	OperationType  string  `json:"operation_type" binding:"required" example:"chat_completion"`
	TokensUsed     int64   `json:"tokens_used" example:"350"`
	Model          string  `json:"model,omitempty" example:"default_chat"`
	DocumentID     *string `json:"document_id,omitempty" binding:"omitempty,uuid"`
	ChatID         *string `json:"chat_id,omitempty" binding:"omitempty,uuid"`
}

type AllowanceRequest struct {
	UserID        string `json:"user_id" binding:"required,uuid" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	OperationType string `json:"operation_type" binding:"required" example:"document_processing"`
	TokensUsed    int64  `json:"tokens_used" example:"1200"`
}

type UpsertPlanRequest struct {
	ID                       string          `json:"-"`
	Name                     string          `json:"name" binding:"required" example:"Team"`
	Cost                     decimal.Decimal `json:"cost" swaggertype:"string" example:"19.99"`
	MonthlyTokenLimitPerUser int64           `json:"monthly_token_limit_per_user" example:"300000"`
	DailyTokenLimitPerUser   int64           `json:"daily_token_limit_per_user" example:"10000"`
	IsActive                 *bool           `json:"is_active,omitempty" example:"true"`
}

type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required" example:"Acme Corp"`
}

type AssignPlanRequest struct {
	PlanID            string `json:"plan_id" binding:"required,uuid" example:"9b2d6c1e-3f4a-4c55-9a0e-2f8c7e1d4b3a"`
	NumberOfUsersPaid int    `json:"number_of_users_paid" binding:"gte=0" example:"25"`
}

type CreateUserRequest struct {
	Email string `json:"email" binding:"required,email" example:"jane@acme.io"`
	Name  string `json:"name" binding:"required" example:"Jane Doe"`
}
