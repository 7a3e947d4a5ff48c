package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
)

type LeavePolicyRepository interface {
	Create(ctx context.Context, policy *model.LeavePolicy) error
	FindActiveByType(ctx context.Context, leaveType string) (*model.LeavePolicy, error)
	ListActive(ctx context.Context) ([]model.LeavePolicy, error)
}

type leavePolicyRepository struct {
	db *gorm.DB
}

func NewLeavePolicyRepository(db *gorm.DB) LeavePolicyRepository {
	return &leavePolicyRepository{db: db}
}

func (r *leavePolicyRepository) Create(ctx context.Context, policy *model.LeavePolicy) error {
	return GetDB(ctx, r.db).Create(policy).Error
}

func (r *leavePolicyRepository) FindActiveByType(ctx context.Context, leaveType string) (*model.LeavePolicy, error) {
	var policy model.LeavePolicy
	if err := GetDB(ctx, r.db).
		Where("leave_type = ? AND is_active = ?", leaveType, true).
		First(&policy).Error; err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *leavePolicyRepository) ListActive(ctx context.Context) ([]model.LeavePolicy, error) {
	var policies []model.LeavePolicy
	if err := GetDB(ctx, r.db).Where("is_active = ?", true).Order("leave_type asc").Find(&policies).Error; err != nil {
		return nil, err
	}
	return policies, nil
}
