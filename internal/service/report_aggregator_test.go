package service

import (
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateExpenses_TotalsByStatus(t *testing.T) {
	expenses := []model.Expense{
		{Amount: 100000, Status: model.ExpenseStatusApproved},
		{Amount: 50000, Status: model.ExpenseStatusApproved},
		{Amount: 30000, Status: model.ExpenseStatusSubmitted},
		{Amount: 20000, Status: model.ExpenseStatusRejected},
		{Amount: 10000, Status: model.ExpenseStatusDraft},
	}

	summary := AggregateExpenses(expenses, nil)

	assert.Equal(t, int64(210000), summary.TotalExpenses)
	assert.Equal(t, int64(150000), summary.TotalApproved)
	assert.Equal(t, int64(30000), summary.TotalPending)
	assert.Equal(t, int64(20000), summary.TotalRejected)
	assert.Equal(t, 5, summary.ExpenseCount)

	assert.Equal(t, 2, summary.ByStatus[model.ExpenseStatusApproved])
	assert.Equal(t, 1, summary.ByStatus["pending"])
	assert.Equal(t, 1, summary.ByStatus[model.ExpenseStatusRejected])
	assert.Equal(t, 1, summary.ByStatus[model.ExpenseStatusDraft])
}

func TestAggregateExpenses_CategoryBreakdown(t *testing.T) {
	transport := model.ExpenseCategory{ID: uuid.New(), Name: "Transportation", Color: "#2196F3", IsActive: true}
	meals := model.ExpenseCategory{ID: uuid.New(), Name: "Meals & Entertainment", Color: "#FF9800", IsActive: true}
	categories := []model.ExpenseCategory{transport, meals}

	expenses := []model.Expense{
		{Amount: 40000, Status: model.ExpenseStatusApproved, CategoryID: &transport.ID},
		{Amount: 60000, Status: model.ExpenseStatusApproved, CategoryID: &transport.ID},
		{Amount: 25000, Status: model.ExpenseStatusSubmitted, CategoryID: &meals.ID},
	}

	summary := AggregateExpenses(expenses, categories)

	require.Contains(t, summary.ByCategory, "Transportation")
	assert.Equal(t, int64(100000), summary.ByCategory["Transportation"].Amount)
	assert.Equal(t, 2, summary.ByCategory["Transportation"].Count)
	assert.Equal(t, "#2196F3", summary.ByCategory["Transportation"].Color)

	require.Contains(t, summary.ByCategory, "Meals & Entertainment")
	assert.Equal(t, int64(25000), summary.ByCategory["Meals & Entertainment"].Amount)
}

func TestAggregateExpenses_UnknownCategoryFallsBack(t *testing.T) {
	goneID := uuid.New()
	expenses := []model.Expense{
		{Amount: 15000, Status: model.ExpenseStatusApproved, CategoryID: &goneID},
	}

	summary := AggregateExpenses(expenses, nil)

	require.Contains(t, summary.ByCategory, "Uncategorized")
	assert.Equal(t, int64(15000), summary.ByCategory["Uncategorized"].Amount)
	assert.Equal(t, uncategorizedColor, summary.ByCategory["Uncategorized"].Color)
}

func TestAggregateExpenses_NilCategorySkipsBreakdown(t *testing.T) {
	expenses := []model.Expense{
		{Amount: 15000, Status: model.ExpenseStatusApproved},
	}

	summary := AggregateExpenses(expenses, nil)
	assert.Empty(t, summary.ByCategory)
	assert.Equal(t, int64(15000), summary.TotalApproved)
}

func TestAggregateExpenses_Empty(t *testing.T) {
	summary := AggregateExpenses(nil, nil)
	assert.Equal(t, int64(0), summary.TotalExpenses)
	assert.Equal(t, 0, summary.ExpenseCount)
	assert.Empty(t, summary.ByCategory)
}
