package database

import (
	"backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seed inserts the default expense categories, approval workflows and leave
// policies. Existing rows are left untouched so it is safe to run at every
// startup.
func Seed(db *gorm.DB) error {
	if err := seedCategories(db); err != nil {
		return err
	}
	if err := seedWorkflows(db); err != nil {
		return err
	}
	return seedLeavePolicies(db)
}

func seedCategories(db *gorm.DB) error {
	categories := []model.ExpenseCategory{
		{Name: "Transportation", Description: "Travel and transportation costs", Icon: "DirectionsCar", Color: "#2196F3", RequiresReceipt: true, ReceiptThreshold: 5000},
		{Name: "Meals & Entertainment", Description: "Business meals and client entertainment", Icon: "Restaurant", Color: "#FF9800", RequiresReceipt: true, ReceiptThreshold: 3000},
		{Name: "Office Supplies", Description: "Office equipment and supplies", Icon: "BusinessCenter", Color: "#4CAF50", RequiresReceipt: true, ReceiptThreshold: 2000},
		{Name: "Travel & Accommodation", Description: "Business travel and hotel expenses", Icon: "Flight", Color: "#9C27B0", RequiresReceipt: true, ReceiptThreshold: 10000},
		{Name: "Communication", Description: "Phone, internet, and communication costs", Icon: "Phone", Color: "#00BCD4"},
		{Name: "Training & Development", Description: "Professional training and courses", Icon: "School", Color: "#8BC34A", RequiresReceipt: true, ReceiptThreshold: 5000},
		{Name: "Marketing & Advertising", Description: "Marketing campaigns and promotional activities", Icon: "Campaign", Color: "#E91E63", RequiresReceipt: true, ReceiptThreshold: 5000},
		{Name: "Equipment & Technology", Description: "IT equipment and technology purchases", Icon: "Computer", Color: "#607D8B", RequiresReceipt: true, ReceiptThreshold: 15000},
		{Name: "Professional Services", Description: "Legal, consulting, and professional fees", Icon: "AccountBalance", Color: "#795548", RequiresReceipt: true, ReceiptThreshold: 10000},
		{Name: "Miscellaneous", Description: "Other business expenses", Icon: "MoreHoriz", Color: "#9E9E9E", RequiresReceipt: true, ReceiptThreshold: 1000},
	}

	for i := range categories {
		categories[i].IsActive = true
		if err := db.Where("name = ?", categories[i].Name).FirstOrCreate(&categories[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedWorkflows(db *gorm.DB) error {
	workflows := []model.ApprovalWorkflow{
		{
			Name:           model.DefaultWorkflowName,
			Description:    "Standard approval for expenses under 10,000 BDT",
			Conditions:     `{"amount_max": 1000000}`,
			ApprovalLevels: `[{"level": 1, "role": "manager"}, {"level": 2, "role": "admin"}]`,
		},
		{
			Name:           "High Value Workflow",
			Description:    "Approval for expenses of 10,000 BDT and above",
			Conditions:     `{"amount_min": 1000000}`,
			ApprovalLevels: `[{"level": 1, "role": "manager"}, {"level": 2, "role": "hr"}, {"level": 3, "role": "admin"}]`,
		},
		{
			Name:           "Travel Workflow",
			Description:    "Special workflow for travel expenses",
			Conditions:     `{"category": "Travel & Accommodation"}`,
			ApprovalLevels: `[{"level": 1, "role": "manager"}, {"level": 2, "role": "admin"}]`,
		},
	}

	for i := range workflows {
		workflows[i].IsActive = true
		if err := db.Where("name = ?", workflows[i].Name).FirstOrCreate(&workflows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedLeavePolicies covers the Bangladesh Labour Act entitlements plus the
// customary company-policy leave types.
func seedLeavePolicies(db *gorm.DB) error {
	policies := []model.LeavePolicy{
		{
			LeaveType: model.LeaveTypeCasual, Name: "Casual Leave",
			Description: "Short-term personal needs and urgent matters",
			DaysPerYear: decimal.NewFromInt(10), AccrualMethod: model.AccrualYearly,
			MaxConsecutiveDays: 3, MinNoticeDays: 1,
			LabourActSection: "Section 103", IsMandatory: true,
		},
		{
			LeaveType: model.LeaveTypeSick, Name: "Sick Leave",
			Description: "Medical illness requiring rest",
			DaysPerYear: decimal.NewFromInt(14), AccrualMethod: model.AccrualYearly,
			MaxConsecutiveDays: 14, RequiresMedicalCertificate: true, MedicalCertAfterDays: 3,
			LabourActSection: "Section 104", IsMandatory: true,
		},
		{
			LeaveType: model.LeaveTypeEarned, Name: "Earned Leave",
			Description: "Privilege leave earned through service, 1 day per 18 days worked",
			DaysPerYear: decimal.NewFromInt(22), AccrualMethod: model.AccrualPerWorkingDay,
			MaxConsecutiveDays: 22, MinNoticeDays: 7, MaxCarryForward: decimal.NewFromInt(60),
			LabourActSection: "Section 106", IsMandatory: true,
		},
		{
			LeaveType: model.LeaveTypeMaternity, Name: "Maternity Leave",
			Description: "16 weeks maternity benefit",
			DaysPerYear: decimal.NewFromInt(112), AccrualMethod: model.AccrualYearly,
			MinNoticeDays: 30, ApplicableGender: "female",
			RequiresMedicalCertificate: true, MedicalCertAfterDays: 0,
			LabourActSection: "Section 107", IsMandatory: true,
		},
		{
			LeaveType: model.LeaveTypePaternity, Name: "Paternity Leave",
			Description: "Leave for new fathers",
			DaysPerYear: decimal.NewFromInt(5), AccrualMethod: model.AccrualYearly,
			MaxConsecutiveDays: 5, ApplicableGender: "male",
			LabourActSection: "Company Policy",
		},
		{
			LeaveType: model.LeaveTypeBereavement, Name: "Bereavement Leave",
			Description: "Death of immediate family member",
			DaysPerYear: decimal.NewFromInt(5), AccrualMethod: model.AccrualYearly,
			MaxConsecutiveDays: 5,
			LabourActSection:   "Company Policy",
		},
		{
			LeaveType: model.LeaveTypeStudy, Name: "Study Leave",
			Description: "For higher education and professional development",
			DaysPerYear: decimal.NewFromInt(30), AccrualMethod: model.AccrualYearly,
			MinNoticeDays:    15,
			LabourActSection: "Company Policy",
		},
		{
			LeaveType: model.LeaveTypeUnpaid, Name: "Unpaid Leave",
			Description: "Extended leave without pay",
			DaysPerYear: decimal.NewFromInt(0), AccrualMethod: model.AccrualYearly,
			LabourActSection: "With Approval",
		},
	}

	for i := range policies {
		policies[i].IsActive = true
		if policies[i].ApplicableGender == "" {
			policies[i].ApplicableGender = "all"
		}
		if err := db.Where("leave_type = ?", policies[i].LeaveType).FirstOrCreate(&policies[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
