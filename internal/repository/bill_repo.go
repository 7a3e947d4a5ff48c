package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BillRepository interface {
	Create(ctx context.Context, bill *model.ConvenienceBill) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ConvenienceBill, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ConvenienceBill, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status string, page, limit int) ([]model.ConvenienceBill, int64, error)
	ListByStatus(ctx context.Context, status string, page, limit int) ([]model.ConvenienceBill, int64, error)
	Update(ctx context.Context, bill *model.ConvenienceBill) error
}

type billRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) Create(ctx context.Context, bill *model.ConvenienceBill) error {
	return GetDB(ctx, r.db).Create(bill).Error
}

func (r *billRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ConvenienceBill, error) {
	var bill model.ConvenienceBill
	if err := GetDB(ctx, r.db).First(&bill, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ConvenienceBill, error) {
	var bill model.ConvenienceBill
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&bill, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) ListByUser(ctx context.Context, userID uuid.UUID, status string, page, limit int) ([]model.ConvenienceBill, int64, error) {
	query := GetDB(ctx, r.db).Model(&model.ConvenienceBill{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return r.paginate(query, page, limit)
}

func (r *billRepository) ListByStatus(ctx context.Context, status string, page, limit int) ([]model.ConvenienceBill, int64, error) {
	query := GetDB(ctx, r.db).Model(&model.ConvenienceBill{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return r.paginate(query, page, limit)
}

func (r *billRepository) paginate(query *gorm.DB, page, limit int) ([]model.ConvenienceBill, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bills []model.ConvenienceBill
	offset := (page - 1) * limit
	if err := query.Order("bill_date desc").Offset(offset).Limit(limit).Find(&bills).Error; err != nil {
		return nil, 0, err
	}
	return bills, total, nil
}

func (r *billRepository) Update(ctx context.Context, bill *model.ConvenienceBill) error {
	return GetDB(ctx, r.db).Save(bill).Error
}
