package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const maxPlanNameLength = 100

var (
	ErrPlanNameRequired = errors.New("plan name is required")
	ErrPlanNameTooLong  = errors.New("plan name is too long")
	ErrNegativeCost     = errors.New("plan cost must not be negative")
	ErrNegativeLimit    = errors.New("plan token limits must not be negative")
)

type PricingPlan struct {
	ID                       string          `gorm:"primaryKey;type:uuid" json:"id"`
	Name                     string          `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Cost                     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cost"`
	MonthlyTokenLimitPerUser int64           `gorm:"not null;default:0" json:"monthly_token_limit_per_user"`
	DailyTokenLimitPerUser   int64           `gorm:"not null;default:0" json:"daily_token_limit_per_user"`
	IsActive                 bool            `gorm:"not null" json:"is_active"`
	IsDefault                bool            `gorm:"not null" json:"is_default"`
	CreatedAt                time.Time       `json:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at"`
}

func (PricingPlan) TableName() string {
	return "pricing_plans"
}

func (p *PricingPlan) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ErrPlanNameRequired
	}
	if len(name) > maxPlanNameLength {
		return ErrPlanNameTooLong
	}
	if p.Cost.IsNegative() {
		return ErrNegativeCost
	}
	if p.MonthlyTokenLimitPerUser < 0 || p.DailyTokenLimitPerUser < 0 {
		return ErrNegativeLimit
	}
	return nil
}

// MonthlyCost is the subscription price for the given seat count.
func (p *PricingPlan) MonthlyCost(usersPaid int) decimal.Decimal {
	return p.Cost.Mul(decimal.NewFromInt(int64(usersPaid)))
}
