package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApprovalRepository interface {
	CreateBatch(ctx context.Context, approvals []model.ExpenseApproval) error
	// FindPending returns the acting approver's pending row for an expense
	FindPending(ctx context.Context, expenseID, approverID uuid.UUID) (*model.ExpenseApproval, error)
	ListByExpense(ctx context.Context, expenseID uuid.UUID) ([]model.ExpenseApproval, error)
	ListPendingByApprover(ctx context.Context, approverID uuid.UUID) ([]model.ExpenseApproval, error)
	Update(ctx context.Context, approval *model.ExpenseApproval) error
}

type approvalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) CreateBatch(ctx context.Context, approvals []model.ExpenseApproval) error {
	return GetDB(ctx, r.db).Create(&approvals).Error
}

func (r *approvalRepository) FindPending(ctx context.Context, expenseID, approverID uuid.UUID) (*model.ExpenseApproval, error) {
	var approval model.ExpenseApproval
	err := GetDB(ctx, r.db).
		Where("expense_id = ? AND approver_id = ? AND status = ?", expenseID, approverID, model.ApprovalPending).
		Order("approval_level asc").
		First(&approval).Error
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *approvalRepository) ListByExpense(ctx context.Context, expenseID uuid.UUID) ([]model.ExpenseApproval, error) {
	var approvals []model.ExpenseApproval
	if err := GetDB(ctx, r.db).
		Where("expense_id = ?", expenseID).
		Order("approval_level asc").
		Find(&approvals).Error; err != nil {
		return nil, err
	}
	return approvals, nil
}

func (r *approvalRepository) ListPendingByApprover(ctx context.Context, approverID uuid.UUID) ([]model.ExpenseApproval, error) {
	var approvals []model.ExpenseApproval
	if err := GetDB(ctx, r.db).
		Preload("Expense").
		Where("approver_id = ? AND status = ?", approverID, model.ApprovalPending).
		Order("created_at asc").
		Find(&approvals).Error; err != nil {
		return nil, err
	}
	return approvals, nil
}

func (r *approvalRepository) Update(ctx context.Context, approval *model.ExpenseApproval) error {
	return GetDB(ctx, r.db).Save(approval).Error
}
