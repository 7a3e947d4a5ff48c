package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeaveFilter narrows application listings
type LeaveFilter struct {
	UserID     *uuid.UUID
	Status     string
	LeaveType  string
	Department string
	Year       int
}

type LeaveRepository interface {
	Create(ctx context.Context, application *model.LeaveApplication) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.LeaveApplication, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.LeaveApplication, error)
	List(ctx context.Context, filter LeaveFilter) ([]model.LeaveApplication, error)
	ListPendingForApprover(ctx context.Context, approverID uuid.UUID, admin bool) ([]model.LeaveApplication, error)
	// HasOverlap reports whether the user already holds a pending or approved
	// application intersecting [start, end].
	HasOverlap(ctx context.Context, userID uuid.UUID, start, end time.Time) (bool, error)
	Update(ctx context.Context, application *model.LeaveApplication) error
}

type leaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) LeaveRepository {
	return &leaveRepository{db: db}
}

func (r *leaveRepository) Create(ctx context.Context, application *model.LeaveApplication) error {
	return GetDB(ctx, r.db).Create(application).Error
}

func (r *leaveRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.LeaveApplication, error) {
	var application model.LeaveApplication
	if err := GetDB(ctx, r.db).First(&application, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *leaveRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.LeaveApplication, error) {
	var application model.LeaveApplication
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&application, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *leaveRepository) List(ctx context.Context, filter LeaveFilter) ([]model.LeaveApplication, error) {
	query := GetDB(ctx, r.db).Model(&model.LeaveApplication{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.LeaveType != "" {
		query = query.Where("leave_type = ?", filter.LeaveType)
	}
	if filter.Department != "" {
		query = query.Joins("JOIN users ON users.id = leave_applications.user_id").
			Where("users.department = ?", filter.Department)
	}
	if filter.Year != 0 {
		yearStart := time.Date(filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		query = query.Where("start_date >= ? AND start_date < ?", yearStart, yearStart.AddDate(1, 0, 0))
	}

	var applications []model.LeaveApplication
	if err := query.Preload("User").Order("created_at desc").Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *leaveRepository) ListPendingForApprover(ctx context.Context, approverID uuid.UUID, admin bool) ([]model.LeaveApplication, error) {
	query := GetDB(ctx, r.db).Model(&model.LeaveApplication{}).
		Where("status = ?", model.LeaveStatusPending)

	if !admin {
		query = query.Where(
			"primary_approver_id = ? OR secondary_approver_id = ? OR hr_approver_id = ?",
			approverID, approverID, approverID,
		)
	}

	var applications []model.LeaveApplication
	if err := query.Preload("User").Order("applied_date asc").Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *leaveRepository) HasOverlap(ctx context.Context, userID uuid.UUID, start, end time.Time) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.LeaveApplication{}).
		Where("user_id = ?", userID).
		Where("status IN ?", []string{model.LeaveStatusPending, model.LeaveStatusApproved}).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *leaveRepository) Update(ctx context.Context, application *model.LeaveApplication) error {
	return GetDB(ctx, r.db).Save(application).Error
}
