package service

import (
	"backend/internal/model"

	"github.com/google/uuid"
)

// uncategorizedColor is used for expenses whose category row has gone away
const uncategorizedColor = "#9E9E9E"

// CategoryBreakdown accumulates amount and count per category name
type CategoryBreakdown struct {
	Amount int64  `json:"amount"`
	Count  int    `json:"count"`
	Color  string `json:"color"`
}

// ExpenseSummary is the in-memory aggregation over one report's expense set.
// All totals are integer paisa. Pending covers both submitted and legacy
// pending statuses.
type ExpenseSummary struct {
	TotalExpenses int64                        `json:"total_expenses"`
	TotalApproved int64                        `json:"total_approved"`
	TotalPending  int64                        `json:"total_pending"`
	TotalRejected int64                        `json:"total_rejected"`
	ExpenseCount  int                          `json:"expense_count"`
	ByCategory    map[string]CategoryBreakdown `json:"category_breakdown"`
	ByStatus      map[string]int               `json:"status_breakdown"`
}

// AggregateExpenses scans an already-filtered expense collection and computes
// totals per status bucket plus a per-category breakdown. The whole result
// set is materialized by the caller; report sizes are expected to stay small
// enough that in-memory iteration is fine.
func AggregateExpenses(expenses []model.Expense, categories []model.ExpenseCategory) ExpenseSummary {
	categoryByID := make(map[uuid.UUID]*model.ExpenseCategory, len(categories))
	for i := range categories {
		categoryByID[categories[i].ID] = &categories[i]
	}

	summary := ExpenseSummary{
		ExpenseCount: len(expenses),
		ByCategory:   make(map[string]CategoryBreakdown),
		ByStatus: map[string]int{
			model.ExpenseStatusApproved: 0,
			model.ExpenseStatusRejected: 0,
			model.ExpenseStatusDraft:    0,
			"pending":                   0,
		},
	}

	for _, expense := range expenses {
		summary.TotalExpenses += expense.Amount

		switch expense.Status {
		case model.ExpenseStatusApproved:
			summary.TotalApproved += expense.Amount
			summary.ByStatus[model.ExpenseStatusApproved]++
		case model.ExpenseStatusRejected:
			summary.TotalRejected += expense.Amount
			summary.ByStatus[model.ExpenseStatusRejected]++
		case model.ExpenseStatusSubmitted:
			summary.TotalPending += expense.Amount
			summary.ByStatus["pending"]++
		case model.ExpenseStatusDraft:
			summary.ByStatus[model.ExpenseStatusDraft]++
		}

		if expense.CategoryID == nil {
			continue
		}

		name := "Uncategorized"
		color := uncategorizedColor
		if category, ok := categoryByID[*expense.CategoryID]; ok {
			name = category.Name
			color = category.Color
		}

		breakdown := summary.ByCategory[name]
		breakdown.Amount += expense.Amount
		breakdown.Count++
		breakdown.Color = color
		summary.ByCategory[name] = breakdown
	}

	return summary
}
