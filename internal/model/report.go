package model

import (
	"time"

	"github.com/google/uuid"
)

// Report type enum constants
const (
	ReportTypeWeekly  = "weekly"
	ReportTypeMonthly = "monthly"
	ReportTypeYearly  = "yearly"
	ReportTypeCustom  = "custom"
)

// ExpenseReport is a persisted snapshot of an on-demand expense aggregation.
// Amount totals are integer paisa.
type ExpenseReport struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReportType string     `gorm:"type:varchar(50);not null" json:"report_type"`
	Title      string     `gorm:"type:varchar(200);not null" json:"title"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`

	DateFrom time.Time `gorm:"type:date;not null" json:"date_from"`
	DateTo   time.Time `gorm:"type:date;not null" json:"date_to"`
	Filters  string    `gorm:"type:jsonb" json:"filters"`

	TotalExpenses int64 `json:"total_expenses"`
	TotalApproved int64 `json:"total_approved"`
	TotalPending  int64 `json:"total_pending"`
	TotalRejected int64 `json:"total_rejected"`
	ExpenseCount  int   `json:"expense_count"`

	SummaryData string `gorm:"type:jsonb" json:"summary_data"`

	Status      string     `gorm:"type:varchar(20);default:'generated'" json:"status"`
	GeneratedAt time.Time  `json:"generated_at"`
	GeneratedBy *uuid.UUID `gorm:"type:uuid" json:"generated_by"`
	CreatedAt   time.Time  `json:"created_at"`
}
