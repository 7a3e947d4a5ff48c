package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkflowRepository interface {
	Create(ctx context.Context, workflow *model.ApprovalWorkflow) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalWorkflow, error)
	// ListActive returns active workflows in creation order. Ordering is
	// significant: the selector takes the first match.
	ListActive(ctx context.Context) ([]model.ApprovalWorkflow, error)
}

type workflowRepository struct {
	db *gorm.DB
}

func NewWorkflowRepository(db *gorm.DB) WorkflowRepository {
	return &workflowRepository{db: db}
}

func (r *workflowRepository) Create(ctx context.Context, workflow *model.ApprovalWorkflow) error {
	return GetDB(ctx, r.db).Create(workflow).Error
}

func (r *workflowRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalWorkflow, error) {
	var workflow model.ApprovalWorkflow
	if err := GetDB(ctx, r.db).First(&workflow, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *workflowRepository) ListActive(ctx context.Context) ([]model.ApprovalWorkflow, error) {
	var workflows []model.ApprovalWorkflow
	if err := GetDB(ctx, r.db).Where("is_active = ?", true).Order("created_at asc").Find(&workflows).Error; err != nil {
		return nil, err
	}
	return workflows, nil
}
