package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Organization struct {
	ID                    string          `gorm:"primaryKey;type:uuid" json:"id"`
	Name                  string          `gorm:"type:text;not null" json:"name"`
	SelectedPricingPlanID *string         `gorm:"type:uuid;index" json:"selected_pricing_plan_id"`
	TokenBalance          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"token_balance"`
	MonthlyTokenLimit     int64           `gorm:"not null" json:"monthly_token_limit"`
	NumberOfUsersPaid     int             `gorm:"not null" json:"number_of_users_paid"`
	SubscriptionStartDate *time.Time      `json:"subscription_start_date"`
	UsageCounters         `gorm:"embedded"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
	Plan                  *PricingPlan `gorm:"foreignKey:SelectedPricingPlanID" json:"-"`
}

func (Organization) TableName() string {
	return "organizations"
}

// PlanChanged reports whether assigning planID is a real plan change for the cascade.
func (o *Organization) PlanChanged(planID string) bool {
	if planID == "" {
		return false
	}
	return o.SelectedPricingPlanID == nil || *o.SelectedPricingPlanID != planID
}
