package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BudgetRepository interface {
	Create(ctx context.Context, budget *model.ExpenseBudget) error
	List(ctx context.Context, page, limit int) ([]model.ExpenseBudget, int64, error)
	// FindMatchingForUpdate locks and returns active budgets covering the
	// given category/user on the given date. A budget matches when its
	// category and user constraints are either unset or equal.
	FindMatchingForUpdate(ctx context.Context, categoryID, userID *uuid.UUID, on time.Time) ([]model.ExpenseBudget, error)
	Update(ctx context.Context, budget *model.ExpenseBudget) error
}

type budgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) Create(ctx context.Context, budget *model.ExpenseBudget) error {
	return GetDB(ctx, r.db).Create(budget).Error
}

func (r *budgetRepository) List(ctx context.Context, page, limit int) ([]model.ExpenseBudget, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&model.ExpenseBudget{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var budgets []model.ExpenseBudget
	offset := (page - 1) * limit
	if err := db.Preload("Category").Order("period_start desc").Offset(offset).Limit(limit).Find(&budgets).Error; err != nil {
		return nil, 0, err
	}
	return budgets, total, nil
}

func (r *budgetRepository) FindMatchingForUpdate(ctx context.Context, categoryID, userID *uuid.UUID, on time.Time) ([]model.ExpenseBudget, error) {
	query := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("is_active = ?", true).
		Where("period_start <= ? AND period_end >= ?", on, on)

	if categoryID != nil {
		query = query.Where("category_id IS NULL OR category_id = ?", *categoryID)
	} else {
		query = query.Where("category_id IS NULL")
	}
	if userID != nil {
		query = query.Where("user_id IS NULL OR user_id = ?", *userID)
	} else {
		query = query.Where("user_id IS NULL")
	}

	var budgets []model.ExpenseBudget
	if err := query.Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

func (r *budgetRepository) Update(ctx context.Context, budget *model.ExpenseBudget) error {
	return GetDB(ctx, r.db).Save(budget).Error
}
