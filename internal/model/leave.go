package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Leave type enum constants (Bangladesh Labour Act leave types)
const (
	LeaveTypeCasual      = "casual"
	LeaveTypeSick        = "sick"
	LeaveTypeEarned      = "earned"
	LeaveTypeMaternity   = "maternity"
	LeaveTypePaternity   = "paternity"
	LeaveTypeBereavement = "bereavement"
	LeaveTypeStudy       = "study"
	LeaveTypeUnpaid      = "unpaid"
	LeaveTypeEmergency   = "emergency"
)

// Leave application status enum constants
const (
	LeaveStatusPending   = "pending"
	LeaveStatusApproved  = "approved"
	LeaveStatusRejected  = "rejected"
	LeaveStatusCancelled = "cancelled"
	LeaveStatusWithdrawn = "withdrawn"
)

// Accrual method enum constants
const (
	AccrualYearly        = "yearly"
	AccrualMonthly       = "monthly"
	AccrualPerWorkingDay = "per_working_day" // Earned leave: 1 day per 18 working days
)

// LeavePolicy configures entitlement and validation rules for one leave type
type LeavePolicy struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LeaveType   string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"leave_type"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`

	DaysPerYear        decimal.Decimal `gorm:"type:decimal(5,1);not null" json:"days_per_year"`
	AccrualMethod      string          `gorm:"type:varchar(50);default:'yearly'" json:"accrual_method"`
	MaxConsecutiveDays int             `json:"max_consecutive_days"` // 0 means unlimited
	MinNoticeDays      int             `gorm:"default:0" json:"min_notice_days"`
	MaxCarryForward    decimal.Decimal `gorm:"type:decimal(5,1);default:0" json:"max_carry_forward"`

	ApplicableGender string `gorm:"type:varchar(10);default:'all'" json:"applicable_gender"` // all, male, female

	RequiresMedicalCertificate bool `gorm:"default:false" json:"requires_medical_certificate"`
	MedicalCertAfterDays       int  `gorm:"default:3" json:"medical_cert_after_days"`

	IsMandatory      bool   `gorm:"default:true" json:"is_mandatory"` // As per Labour Act
	LabourActSection string `gorm:"type:varchar(20)" json:"labour_act_section"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LeaveBalance tracks one user's running balance for a leave type and year.
// Day quantities use decimal to keep 0.5-day precision exact.
type LeaveBalance struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_balance_user_type_year,unique" json:"user_id"`
	LeaveType string    `gorm:"type:varchar(30);not null;index:idx_balance_user_type_year,unique" json:"leave_type"`
	Year      int       `gorm:"not null;index:idx_balance_user_type_year,unique" json:"year"`

	TotalEntitled  decimal.Decimal `gorm:"type:decimal(5,1);default:0" json:"total_entitled"`
	Used           decimal.Decimal `gorm:"type:decimal(5,1);default:0" json:"used"`
	Pending        decimal.Decimal `gorm:"type:decimal(5,1);default:0" json:"pending"`
	CarriedForward decimal.Decimal `gorm:"type:decimal(5,1);default:0" json:"carried_forward"`
	Encashed       decimal.Decimal `gorm:"type:decimal(5,1);default:0" json:"encashed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Available is the spendable balance: entitled + carried_forward - used - pending
func (b *LeaveBalance) Available() decimal.Decimal {
	return b.TotalEntitled.Add(b.CarriedForward).Sub(b.Used).Sub(b.Pending)
}

// LeaveApplication is one leave request with up to three approver slots
type LeaveApplication struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	LeaveType string    `gorm:"type:varchar(30);not null" json:"leave_type"`

	StartDate     time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate       time.Time       `gorm:"type:date;not null" json:"end_date"`
	DaysRequested decimal.Decimal `gorm:"type:decimal(5,1);not null" json:"days_requested"`
	IsHalfDay     bool            `gorm:"default:false" json:"is_half_day"`
	HalfDayPeriod string          `gorm:"type:varchar(20)" json:"half_day_period"` // morning, afternoon

	Reason           string `gorm:"type:text;not null" json:"reason"`
	EmergencyContact string `gorm:"type:varchar(15)" json:"emergency_contact"`
	HandoverNotes    string `gorm:"type:text" json:"handover_notes"`

	Status string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	PrimaryApproverID   *uuid.UUID `gorm:"type:uuid;index" json:"primary_approver_id"`
	SecondaryApproverID *uuid.UUID `gorm:"type:uuid" json:"secondary_approver_id"`
	HRApproverID        *uuid.UUID `gorm:"type:uuid" json:"hr_approver_id"`

	FinalApprovedBy  *uuid.UUID `gorm:"type:uuid" json:"final_approved_by"`
	ApprovalDate     *time.Time `json:"approval_date"`
	ApprovalComments string     `gorm:"type:text" json:"approval_comments"`
	RejectionReason  string     `gorm:"type:text" json:"rejection_reason"`

	MedicalCertificateURL string `gorm:"type:varchar(500)" json:"medical_certificate_url"`

	AppliedDate time.Time `gorm:"autoCreateTime" json:"applied_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
