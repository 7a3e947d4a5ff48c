package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaveBalanceRepository interface {
	Create(ctx context.Context, balance *model.LeaveBalance) error
	// Find returns (nil, nil) when no balance row exists yet; the service
	// lazily creates one from the policy in that case.
	Find(ctx context.Context, userID uuid.UUID, leaveType string, year int) (*model.LeaveBalance, error)
	FindForUpdate(ctx context.Context, userID uuid.UUID, leaveType string, year int) (*model.LeaveBalance, error)
	ListByUserYear(ctx context.Context, userID uuid.UUID, year int) ([]model.LeaveBalance, error)
	Update(ctx context.Context, balance *model.LeaveBalance) error
}

type leaveBalanceRepository struct {
	db *gorm.DB
}

func NewLeaveBalanceRepository(db *gorm.DB) LeaveBalanceRepository {
	return &leaveBalanceRepository{db: db}
}

func (r *leaveBalanceRepository) Create(ctx context.Context, balance *model.LeaveBalance) error {
	return GetDB(ctx, r.db).Create(balance).Error
}

func (r *leaveBalanceRepository) Find(ctx context.Context, userID uuid.UUID, leaveType string, year int) (*model.LeaveBalance, error) {
	var balance model.LeaveBalance
	err := GetDB(ctx, r.db).
		Where("user_id = ? AND leave_type = ? AND year = ?", userID, leaveType, year).
		First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *leaveBalanceRepository) FindForUpdate(ctx context.Context, userID uuid.UUID, leaveType string, year int) (*model.LeaveBalance, error) {
	var balance model.LeaveBalance
	err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND leave_type = ? AND year = ?", userID, leaveType, year).
		First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *leaveBalanceRepository) ListByUserYear(ctx context.Context, userID uuid.UUID, year int) ([]model.LeaveBalance, error) {
	var balances []model.LeaveBalance
	if err := GetDB(ctx, r.db).
		Where("user_id = ? AND year = ?", userID, year).
		Order("leave_type asc").
		Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

func (r *leaveBalanceRepository) Update(ctx context.Context, balance *model.LeaveBalance) error {
	return GetDB(ctx, r.db).Save(balance).Error
}
