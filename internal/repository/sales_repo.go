package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpportunityFilter narrows pipeline queries. A nil UserID means all users.
type OpportunityFilter struct {
	UserID *uuid.UUID
	Stage  string
}

type SalesRepository interface {
	CreateOpportunity(ctx context.Context, opportunity *model.SalesOpportunity) error
	FindOpportunityByID(ctx context.Context, id uuid.UUID) (*model.SalesOpportunity, error)
	ListOpportunities(ctx context.Context, filter OpportunityFilter) ([]model.SalesOpportunity, error)
	UpdateOpportunity(ctx context.Context, opportunity *model.SalesOpportunity) error

	CreateAssessment(ctx context.Context, assessment *model.MEDDPICCAssessment) error
	FindAssessmentByID(ctx context.Context, id uuid.UUID) (*model.MEDDPICCAssessment, error)
	ListAssessmentsByUser(ctx context.Context, userID uuid.UUID) ([]model.MEDDPICCAssessment, error)
	UpdateAssessment(ctx context.Context, assessment *model.MEDDPICCAssessment) error
}

type salesRepository struct {
	db *gorm.DB
}

func NewSalesRepository(db *gorm.DB) SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) CreateOpportunity(ctx context.Context, opportunity *model.SalesOpportunity) error {
	return GetDB(ctx, r.db).Create(opportunity).Error
}

func (r *salesRepository) FindOpportunityByID(ctx context.Context, id uuid.UUID) (*model.SalesOpportunity, error) {
	var opportunity model.SalesOpportunity
	if err := GetDB(ctx, r.db).First(&opportunity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &opportunity, nil
}

func (r *salesRepository) ListOpportunities(ctx context.Context, filter OpportunityFilter) ([]model.SalesOpportunity, error) {
	query := GetDB(ctx, r.db).Model(&model.SalesOpportunity{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Stage != "" {
		query = query.Where("stage = ?", filter.Stage)
	}

	var opportunities []model.SalesOpportunity
	err := query.Order("updated_at desc").Find(&opportunities).Error
	return opportunities, err
}

func (r *salesRepository) UpdateOpportunity(ctx context.Context, opportunity *model.SalesOpportunity) error {
	return GetDB(ctx, r.db).Save(opportunity).Error
}

func (r *salesRepository) CreateAssessment(ctx context.Context, assessment *model.MEDDPICCAssessment) error {
	return GetDB(ctx, r.db).Create(assessment).Error
}

func (r *salesRepository) FindAssessmentByID(ctx context.Context, id uuid.UUID) (*model.MEDDPICCAssessment, error) {
	var assessment model.MEDDPICCAssessment
	if err := GetDB(ctx, r.db).First(&assessment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *salesRepository) ListAssessmentsByUser(ctx context.Context, userID uuid.UUID) ([]model.MEDDPICCAssessment, error) {
	var assessments []model.MEDDPICCAssessment
	err := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&assessments).Error
	return assessments, err
}

func (r *salesRepository) UpdateAssessment(ctx context.Context, assessment *model.MEDDPICCAssessment) error {
	return GetDB(ctx, r.db).Save(assessment).Error
}
