package database

import (
	"log"

	"backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.ExpenseCategory{},
		&model.ApprovalWorkflow{},
		&model.Expense{},
		&model.ExpenseApproval{},
		&model.ExpenseReport{},
		&model.ExpenseBudget{},
		&model.ConvenienceBill{},
		&model.LeavePolicy{},
		&model.LeaveBalance{},
		&model.LeaveApplication{},
		&model.Client{},
		&model.SalesOpportunity{},
		&model.MEDDPICCAssessment{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
