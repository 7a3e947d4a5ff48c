package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportRepository interface {
	Create(ctx context.Context, report *model.ExpenseReport) error
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.ExpenseReport, int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.ExpenseReport) error {
	return GetDB(ctx, r.db).Create(report).Error
}

func (r *reportRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.ExpenseReport, int64, error) {
	db := GetDB(ctx, r.db)
	query := db.Model(&model.ExpenseReport{}).Where("generated_by = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []model.ExpenseReport
	offset := (page - 1) * limit
	if err := query.Order("generated_at desc").Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}
