package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPricingPlan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		plan    PricingPlan
		wantErr error
	}{
		{
			name: "valid",
			plan: PricingPlan{Name: "Team", Cost: decimal.RequireFromString("12.50"), DailyTokenLimitPerUser: 1000},
		},
		{
			name: "free plan",
			plan: PricingPlan{Name: "Free"},
		},
		{
			name:    "blank name",
			plan:    PricingPlan{Name: "   "},
			wantErr: ErrPlanNameRequired,
		},
		{
			name:    "long name",
			plan:    PricingPlan{Name: strings.Repeat("x", 101)},
			wantErr: ErrPlanNameTooLong,
		},
		{
			name:    "negative cost",
			plan:    PricingPlan{Name: "Broken", Cost: decimal.NewFromInt(-1)},
			wantErr: ErrNegativeCost,
		},
		{
			name:    "negative daily limit",
			plan:    PricingPlan{Name: "Broken", DailyTokenLimitPerUser: -1},
			wantErr: ErrNegativeLimit,
		},
		{
			name:    "negative monthly limit",
			plan:    PricingPlan{Name: "Broken", MonthlyTokenLimitPerUser: -10},
			wantErr: ErrNegativeLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPricingPlan_MonthlyCost(t *testing.T) {
	plan := PricingPlan{Cost: decimal.RequireFromString("19.99")}

	assert.True(t, decimal.RequireFromString("199.90").Equal(plan.MonthlyCost(10)))
}

func TestOrganization_PlanChanged(t *testing.T) {
	p1 := "p1"
	org := Organization{}
	assert.True(t, org.PlanChanged("p1"))
	assert.False(t, org.PlanChanged(""))

	org.SelectedPricingPlanID = &p1
	assert.False(t, org.PlanChanged("p1"))
	assert.True(t, org.PlanChanged("p2"))
}
