package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultWorkflowName is the fallback workflow when no condition set matches
const DefaultWorkflowName = "Standard Workflow"

// WorkflowConditions is the typed form of a workflow's activation conditions.
// Absent fields mean "no constraint".
type WorkflowConditions struct {
	AmountMin *int64  `json:"amount_min,omitempty"` // Paisa, inclusive
	AmountMax *int64  `json:"amount_max,omitempty"` // Paisa, inclusive
	Category  *string `json:"category,omitempty"`   // Category name match
}

// ApprovalLevel is one step of an approval chain requiring a specific role
type ApprovalLevel struct {
	Level int    `json:"level"`
	Role  string `json:"role"`
}

// ApprovalWorkflow defines a multi-level approval chain activated by
// amount/category conditions. Creation order is significant: the selector
// returns the first active workflow whose conditions match.
type ApprovalWorkflow struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name           string    `gorm:"type:varchar(100);not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description"`
	Conditions     string    `gorm:"type:jsonb" json:"conditions"`               // Serialized WorkflowConditions
	ApprovalLevels string    `gorm:"type:jsonb;not null" json:"approval_levels"` // Serialized []ApprovalLevel
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ParseConditions decodes the jsonb condition set. An empty column means no
// constraints. Malformed configuration is rejected here, at load, rather than
// at lookup time.
func (w *ApprovalWorkflow) ParseConditions() (WorkflowConditions, error) {
	var cond WorkflowConditions
	if w.Conditions == "" {
		return cond, nil
	}
	if err := json.Unmarshal([]byte(w.Conditions), &cond); err != nil {
		return cond, fmt.Errorf("workflow %q has malformed conditions: %w", w.Name, err)
	}
	if cond.AmountMin != nil && cond.AmountMax != nil && *cond.AmountMin > *cond.AmountMax {
		return cond, fmt.Errorf("workflow %q has amount_min > amount_max", w.Name)
	}
	return cond, nil
}

// ParseLevels decodes the jsonb approval chain. Every workflow must declare at
// least one level.
func (w *ApprovalWorkflow) ParseLevels() ([]ApprovalLevel, error) {
	var levels []ApprovalLevel
	if err := json.Unmarshal([]byte(w.ApprovalLevels), &levels); err != nil {
		return nil, fmt.Errorf("workflow %q has malformed approval_levels: %w", w.Name, err)
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("workflow %q declares no approval levels", w.Name)
	}
	return levels, nil
}
