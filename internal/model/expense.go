package model

import (
	"time"

	"github.com/google/uuid"
)

// Expense status enum constants.
// Lifecycle: draft -> submitted -> approved | rejected (-> paid).
// approved and rejected are terminal for the approval flow.
const (
	ExpenseStatusDraft     = "draft"
	ExpenseStatusSubmitted = "submitted"
	ExpenseStatusApproved  = "approved"
	ExpenseStatusRejected  = "rejected"
	ExpenseStatusPaid      = "paid"
)

// Approval row status enum constants
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Expense is a single expense claim. All monetary amounts are integer paisa
// (1 BDT = 100 paisa); division by 100 for display is the caller's concern.
type Expense struct {
	ID            uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ExpenseNumber string           `gorm:"type:varchar(20);uniqueIndex" json:"expense_number"`
	CategoryID    *uuid.UUID       `gorm:"type:uuid;index" json:"category_id"`
	Category      *ExpenseCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	// Basic information
	Title         string    `gorm:"type:varchar(200);not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	Amount        int64     `gorm:"not null" json:"amount"` // Paisa
	Currency      string    `gorm:"type:varchar(3);default:'BDT'" json:"currency"`
	ExpenseDate   time.Time `gorm:"type:date;not null" json:"expense_date"`
	VendorName    string    `gorm:"type:varchar(200)" json:"vendor_name"`
	VendorContact string    `gorm:"type:varchar(50)" json:"vendor_contact"`

	// Location and travel
	LocationFrom   string `gorm:"type:varchar(200)" json:"location_from"`
	LocationTo     string `gorm:"type:varchar(200)" json:"location_to"`
	TravelDistance int    `json:"travel_distance"`

	// Project and client
	ProjectID  string `gorm:"type:varchar(100)" json:"project_id"`
	ClientName string `gorm:"type:varchar(200)" json:"client_name"`
	IsBillable bool   `gorm:"default:false" json:"is_billable"`

	// Receipts
	ReceiptUploaded bool   `gorm:"default:false" json:"receipt_uploaded"`
	ReceiptFiles    string `gorm:"type:jsonb" json:"receipt_files"`

	// Approval and status
	WorkflowID  *uuid.UUID        `gorm:"type:uuid" json:"workflow_id"`
	Workflow    *ApprovalWorkflow `gorm:"foreignKey:WorkflowID" json:"workflow,omitempty"`
	Status      string            `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	SubmittedAt *time.Time        `json:"submitted_at"`

	// Automation
	AutoCategorized bool    `gorm:"default:false" json:"auto_categorized"`
	ConfidenceScore float64 `gorm:"type:decimal(5,2);default:0" json:"confidence_score"`

	// Financial
	Reimbursable     bool  `gorm:"default:true" json:"reimbursable"`
	AdvanceDeduction int64 `gorm:"default:0" json:"advance_deduction"` // Paisa
	NetAmount        int64 `json:"net_amount"`                         // Paisa, amount - advance_deduction

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"created_by"`
}

// ExpenseApproval is one level's decision record for a submitted expense.
// A submitted expense carries exactly one row per workflow level.
type ExpenseApproval struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ExpenseID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"expense_id"`
	Expense       *Expense   `gorm:"foreignKey:ExpenseID" json:"expense,omitempty"`
	ApproverID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"approver_id"`
	Approver      *User      `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	ApprovalLevel int        `gorm:"not null" json:"approval_level"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Comments      string     `gorm:"type:text" json:"comments"`
	ApprovedAt    *time.Time `json:"approved_at"`
	CreatedAt     time.Time  `json:"created_at"`
}
