package service

import (
	"backend/internal/model"
)

// SelectWorkflow walks the active workflows in creation order and returns the
// first one whose conditions admit the expense. First match wins, so workflow
// ordering is significant. When nothing matches it falls back to the workflow
// named "Standard Workflow"; nil means no workflow could be assigned.
// Workflows with malformed conditions are skipped (they are rejected at
// creation time, so this only guards hand-edited rows).
func SelectWorkflow(workflows []model.ApprovalWorkflow, amount int64, categoryName string) *model.ApprovalWorkflow {
	var fallback *model.ApprovalWorkflow

	for i := range workflows {
		workflow := &workflows[i]
		if workflow.Name == model.DefaultWorkflowName && fallback == nil {
			fallback = workflow
		}

		cond, err := workflow.ParseConditions()
		if err != nil {
			continue
		}

		if cond.AmountMin != nil && amount < *cond.AmountMin {
			continue
		}
		if cond.AmountMax != nil && amount > *cond.AmountMax {
			continue
		}
		if cond.Category != nil && categoryName != "" && categoryName != *cond.Category {
			continue
		}

		return workflow
	}

	return fallback
}
