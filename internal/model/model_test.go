package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestConvenienceBill_TotalAmount(t *testing.T) {
	bill := ConvenienceBill{
		TransportAmount: 20000,
		FoodAmount:      15000,
		OtherAmount:     5000,
		FuelCost:        30000,
		RentalCost:      100000,
	}
	assert.Equal(t, int64(170000), bill.TotalAmount())

	assert.Equal(t, int64(0), (&ConvenienceBill{}).TotalAmount())
}

func TestExpenseBudget_AvailableAmount(t *testing.T) {
	budget := ExpenseBudget{
		AllocatedAmount: 1000000,
		SpentAmount:     300000,
		CommittedAmount: 200000,
	}
	assert.Equal(t, int64(500000), budget.AvailableAmount())
}

func TestExpenseBudget_Utilization(t *testing.T) {
	budget := ExpenseBudget{
		AllocatedAmount: 1000000,
		SpentAmount:     700000,
		CommittedAmount: 100000,
	}
	assert.InDelta(t, 0.8, budget.Utilization(), 0.0001)

	// Overspend reports above 1.0 rather than clamping
	budget.SpentAmount = 1200000
	assert.Greater(t, budget.Utilization(), 1.0)

	// Zero allocation never divides by zero
	assert.Equal(t, 0.0, (&ExpenseBudget{}).Utilization())
}

func TestLeaveBalance_Available(t *testing.T) {
	balance := LeaveBalance{
		TotalEntitled:  decimal.NewFromInt(10),
		CarriedForward: decimal.NewFromInt(2),
		Used:           decimal.NewFromFloat(3.5),
		Pending:        decimal.NewFromFloat(0.5),
	}
	assert.True(t, balance.Available().Equal(decimal.NewFromInt(8)), "got %s", balance.Available())
}

func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleManager}).IsAdmin())
	assert.False(t, (&User{Role: RoleStaff}).IsAdmin())
}
