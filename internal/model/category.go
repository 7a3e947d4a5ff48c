package model

import (
	"time"

	"github.com/google/uuid"
)

// ExpenseCategory groups expenses for classification, budgets and reporting
type ExpenseCategory struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name             string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description      string    `gorm:"type:text" json:"description"`
	Icon             string    `gorm:"type:varchar(50)" json:"icon"`
	Color            string    `gorm:"type:varchar(20)" json:"color"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`
	RequiresReceipt  bool      `gorm:"default:false" json:"requires_receipt"`
	ReceiptThreshold int64     `gorm:"default:0" json:"receipt_threshold"` // Paisa; receipts mandatory above this amount
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
