package model

import (
	"time"

	"github.com/google/uuid"
)

// Budget period enum constants
const (
	BudgetPeriodMonthly   = "monthly"
	BudgetPeriodQuarterly = "quarterly"
	BudgetPeriodYearly    = "yearly"
)

// ExpenseBudget tracks spend against an allocation for a category, user or
// both over a period. Submitted-but-undecided expenses count as committed;
// approved ones as spent. All amounts are integer paisa.
type ExpenseBudget struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string           `gorm:"type:varchar(200);not null" json:"name"`
	CategoryID *uuid.UUID       `gorm:"type:uuid;index" json:"category_id"`
	Category   *ExpenseCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	UserID     *uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`

	PeriodType  string    `gorm:"type:varchar(20);not null" json:"period_type"`
	PeriodStart time.Time `gorm:"type:date;not null" json:"period_start"`
	PeriodEnd   time.Time `gorm:"type:date;not null" json:"period_end"`

	AllocatedAmount int64 `gorm:"not null" json:"allocated_amount"`
	SpentAmount     int64 `gorm:"default:0" json:"spent_amount"`
	CommittedAmount int64 `gorm:"default:0" json:"committed_amount"`

	AlertThreshold   float64 `gorm:"type:decimal(3,2);default:0.80" json:"alert_threshold"`
	WarningThreshold float64 `gorm:"type:decimal(3,2);default:0.90" json:"warning_threshold"`
	AlertSent        bool    `gorm:"default:false" json:"alert_sent"`
	WarningSent      bool    `gorm:"default:false" json:"warning_sent"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AvailableAmount is the remaining allocation after spent and committed funds
func (b *ExpenseBudget) AvailableAmount() int64 {
	return b.AllocatedAmount - b.SpentAmount - b.CommittedAmount
}

// Utilization is the consumed fraction of the allocation in [0, +inf)
func (b *ExpenseBudget) Utilization() float64 {
	if b.AllocatedAmount == 0 {
		return 0
	}
	return float64(b.SpentAmount+b.CommittedAmount) / float64(b.AllocatedAmount)
}
