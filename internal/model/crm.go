package model

import (
	"time"

	"github.com/google/uuid"
)

// Sales funnel stage enum constants
const (
	StageLead        = "Lead"
	StageQualified   = "Qualified"
	StageProposal    = "Proposal"
	StageNegotiation = "Negotiation"
	StageClosedWon   = "Closed Won"
	StageClosedLost  = "Closed Lost"
)

// FunnelStages lists the pipeline stages in progression order
var FunnelStages = []string{
	StageLead,
	StageQualified,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// ValidFunnelStage reports whether s is one of the known pipeline stages
func ValidFunnelStage(s string) bool {
	for _, stage := range FunnelStages {
		if stage == s {
			return true
		}
	}
	return false
}

// Client is a customer account shared across the sales team
type Client struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyName   string     `gorm:"type:varchar(200);not null;index" json:"company_name"`
	ContactPerson string     `gorm:"type:varchar(200)" json:"contact_person"`
	ContactNumber string     `gorm:"type:varchar(50)" json:"contact_number"`
	Email         string     `gorm:"type:varchar(255)" json:"email"`
	Address       string     `gorm:"type:text" json:"address"`
	CreatedBy     *uuid.UUID `gorm:"type:uuid;index" json:"created_by"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SalesOpportunity is one deal moving through the pipeline. Amount is integer
// paisa like every other monetary field.
type SalesOpportunity struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OpportunityName string     `gorm:"type:varchar(200);not null" json:"opportunity_name"`
	ClientName      string     `gorm:"type:varchar(200)" json:"client_name"`
	Stage           string     `gorm:"type:varchar(30);not null;default:'Lead';index" json:"stage"`
	Probability     int        `gorm:"default:0" json:"probability"` // 0-100
	Amount          int64      `gorm:"default:0" json:"amount"`      // Paisa
	ClosingDate     *time.Time `gorm:"type:date" json:"closing_date"`
	Notes           string     `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// MEDDPICCAssessment is the qualification worksheet for one opportunity,
// one free-text field per letter of the framework.
type MEDDPICCAssessment struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ClientName       string    `gorm:"type:varchar(200)" json:"client_name"`
	OpportunityName  string    `gorm:"type:varchar(200)" json:"opportunity_name"`
	Metrics          string    `gorm:"type:text" json:"metrics"`
	EconomicBuyer    string    `gorm:"type:text" json:"economic_buyer"`
	DecisionCriteria string    `gorm:"type:text" json:"decision_criteria"`
	DecisionProcess  string    `gorm:"type:text" json:"decision_process"`
	PaperProcess     string    `gorm:"type:text" json:"paper_process"`
	IdentifyPain     string    `gorm:"type:text" json:"identify_pain"`
	Champion         string    `gorm:"type:text" json:"champion"`
	Competition      string    `gorm:"type:text" json:"competition"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
