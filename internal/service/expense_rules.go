package service

import (
	"backend/internal/model"
)

// ResolveExpenseStatus recomputes the aggregate expense status from its full
// approval set. A single rejection forces rejected immediately, regardless of
// level order. The expense becomes approved only once every row is non-pending
// with zero rejections. Otherwise it stays submitted.
func ResolveExpenseStatus(approvals []model.ExpenseApproval) string {
	if len(approvals) == 0 {
		return model.ExpenseStatusSubmitted
	}

	pending := 0
	for _, approval := range approvals {
		switch approval.Status {
		case model.ApprovalRejected:
			return model.ExpenseStatusRejected
		case model.ApprovalPending:
			pending++
		}
	}

	if pending == 0 {
		return model.ExpenseStatusApproved
	}
	return model.ExpenseStatusSubmitted
}

// CountPendingApprovals reports how many approval rows are still undecided
func CountPendingApprovals(approvals []model.ExpenseApproval) int {
	pending := 0
	for _, approval := range approvals {
		if approval.Status == model.ApprovalPending {
			pending++
		}
	}
	return pending
}
