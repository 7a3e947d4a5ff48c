package service

import (
	"context"
	"encoding/json"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"
)

type CreateWorkflowRequest struct {
	Name        string                   `json:"name" binding:"required,max=100"`
	Description string                   `json:"description"`
	Conditions  model.WorkflowConditions `json:"conditions"`
	Levels      []model.ApprovalLevel    `json:"approval_levels" binding:"required,min=1"`
}

type WorkflowService interface {
	CreateWorkflow(ctx context.Context, userID string, req CreateWorkflowRequest) (*model.ApprovalWorkflow, error)
	ListWorkflows(ctx context.Context) ([]model.ApprovalWorkflow, error)
}

type workflowService struct {
	workflowRepo repository.WorkflowRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewWorkflowService(
	workflowRepo repository.WorkflowRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) WorkflowService {
	return &workflowService{
		workflowRepo: workflowRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

func (s *workflowService) CreateWorkflow(ctx context.Context, userID string, req CreateWorkflowRequest) (*model.ApprovalWorkflow, error) {
	if req.Conditions.AmountMin != nil && req.Conditions.AmountMax != nil &&
		*req.Conditions.AmountMin > *req.Conditions.AmountMax {
		return nil, apperr.Validation("amount_min must not exceed amount_max")
	}

	seen := make(map[int]bool, len(req.Levels))
	for _, level := range req.Levels {
		if level.Level < 1 {
			return nil, apperr.Validation("approval level numbers start at 1")
		}
		if level.Role == "" {
			return nil, apperr.Validation("approval level %d is missing a role", level.Level)
		}
		if seen[level.Level] {
			return nil, apperr.Validation("duplicate approval level %d", level.Level)
		}
		seen[level.Level] = true
	}

	conditionsJSON, err := json.Marshal(req.Conditions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode conditions: %w", err)
	}
	levelsJSON, err := json.Marshal(req.Levels)
	if err != nil {
		return nil, fmt.Errorf("failed to encode approval levels: %w", err)
	}

	workflow := &model.ApprovalWorkflow{
		Name:           req.Name,
		Description:    req.Description,
		Conditions:     string(conditionsJSON),
		ApprovalLevels: string(levelsJSON),
		IsActive:       true,
	}

	actorID := parseUUIDOrNil(userID)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.workflowRepo.Create(txCtx, workflow); createErr != nil {
			return fmt.Errorf("failed to create workflow: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{"levels": len(req.Levels)})
		entry := &model.AuditLog{
			UserID:     actorID,
			Action:     model.ActionCreateWorkflow,
			EntityID:   workflow.ID.String(),
			EntityName: workflow.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, entry); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return workflow, nil
}

func (s *workflowService) ListWorkflows(ctx context.Context) ([]model.ApprovalWorkflow, error) {
	return s.workflowRepo.ListActive(ctx)
}
