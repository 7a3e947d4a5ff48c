package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	// Expense workflow actions
	ActionCreateExpense  = "CREATE_EXPENSE"
	ActionSubmitExpense  = "SUBMIT_EXPENSE"
	ActionApproveExpense = "APPROVE_EXPENSE"
	ActionRejectExpense  = "REJECT_EXPENSE"
	ActionGenerateReport = "GENERATE_EXPENSE_REPORT"
	ActionCreateCategory = "CREATE_EXPENSE_CATEGORY"
	ActionCreateWorkflow = "CREATE_APPROVAL_WORKFLOW"

	// Convenience bill actions
	ActionCreateBill = "CREATE_BILL"
	ActionUpdateBill = "UPDATE_BILL"
	ActionDecideBill = "DECIDE_BILL"

	// Leave workflow actions
	ActionApplyLeave   = "APPLY_LEAVE"
	ActionApproveLeave = "APPROVE_LEAVE"
	ActionRejectLeave  = "REJECT_LEAVE"
	ActionInitBalances = "INITIALIZE_LEAVE_BALANCES"

	// Budget actions
	ActionCreateBudget = "CREATE_BUDGET"
	ActionBudgetAlert  = "BUDGET_ALERT"

	// Client and sales pipeline actions
	ActionCreateClient      = "CREATE_CLIENT"
	ActionUpdateClient      = "UPDATE_CLIENT"
	ActionCreateOpportunity = "CREATE_SALES_OPPORTUNITY"
	ActionUpdateOpportunity = "UPDATE_SALES_OPPORTUNITY"
	ActionCreateAssessment  = "CREATE_MEDDPICC_ASSESSMENT"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/number)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
