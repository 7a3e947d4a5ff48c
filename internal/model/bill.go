package model

import (
	"time"

	"github.com/google/uuid"
)

// Convenience bill status enum constants
const (
	BillStatusPending  = "pending"
	BillStatusApproved = "approved"
	BillStatusRejected = "rejected"
)

// ConvenienceBill is an itemized day-to-day expense claim with a component
// cost breakdown. All amounts are integer paisa.
type ConvenienceBill struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BillDate time.Time `gorm:"type:date;not null" json:"bill_date"`

	// Cost breakdown
	TransportAmount      int64  `gorm:"default:0" json:"transport_amount"`
	TransportDescription string `gorm:"type:text" json:"transport_description"`
	FoodAmount           int64  `gorm:"default:0" json:"food_amount"`
	FoodDescription      string `gorm:"type:text" json:"food_description"`
	OtherAmount          int64  `gorm:"default:0" json:"other_amount"`
	OtherDescription     string `gorm:"type:text" json:"other_description"`
	FuelCost             int64  `gorm:"default:0" json:"fuel_cost"`
	RentalCost           int64  `gorm:"default:0" json:"rental_cost"`

	// Transportation details
	TransportFrom         string `gorm:"type:varchar(255)" json:"transport_from"`
	TransportTo           string `gorm:"type:varchar(255)" json:"transport_to"`
	MeansOfTransportation string `gorm:"type:varchar(255)" json:"means_of_transportation"`

	// Client information
	ClientCompanyName   string `gorm:"type:varchar(255)" json:"client_company_name"`
	ClientContactNumber string `gorm:"type:varchar(50)" json:"client_contact_number"`
	ExpensePurpose      string `gorm:"type:text" json:"expense_purpose"`
	ProjectReference    string `gorm:"type:varchar(255)" json:"project_reference"`
	IsBillable          bool   `gorm:"default:false" json:"is_billable"`

	GeneralDescription string     `gorm:"type:text" json:"general_description"`
	Status             string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ApprovedBy         *uuid.UUID `gorm:"type:uuid" json:"approved_by"`
	ApprovalDate       *time.Time `json:"approval_date"`
	ApprovalComments   string     `gorm:"type:text" json:"approval_comments"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TotalAmount is always recomputed from the component fields, never stored,
// so the stored breakdown and the total cannot drift apart.
func (b *ConvenienceBill) TotalAmount() int64 {
	return b.TransportAmount + b.FoodAmount + b.OtherAmount + b.FuelCost + b.RentalCost
}
