package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateBudgetRequest struct {
	Name             string  `json:"name" binding:"required,max=200"`
	CategoryID       string  `json:"category_id"`
	UserID           string  `json:"user_id"`
	PeriodType       string  `json:"period_type" binding:"required,oneof=monthly quarterly yearly"`
	PeriodStart      string  `json:"period_start" binding:"required"` // YYYY-MM-DD
	PeriodEnd        string  `json:"period_end" binding:"required"`
	AllocatedAmount  float64 `json:"allocated_amount" binding:"required,gt=0"` // BDT
	AlertThreshold   float64 `json:"alert_threshold"`
	WarningThreshold float64 `json:"warning_threshold"`
}

type BudgetResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	CategoryName     *string `json:"category_name"`
	PeriodType       string  `json:"period_type"`
	PeriodStart      string  `json:"period_start"`
	PeriodEnd        string  `json:"period_end"`
	AllocatedAmount  int64   `json:"allocated_amount"`
	SpentAmount      int64   `json:"spent_amount"`
	CommittedAmount  int64   `json:"committed_amount"`
	AvailableAmount  int64   `json:"available_amount"`
	Utilization      float64 `json:"utilization"`
	AlertThreshold   float64 `json:"alert_threshold"`
	WarningThreshold float64 `json:"warning_threshold"`
	IsActive         bool    `json:"is_active"`
}

// BudgetService owns budget CRUD plus the spend-tracking hooks the expense
// workflow calls inside its own transactions. CommitSpend and SettleSpend
// expect a transaction context and never open their own.
type BudgetService interface {
	CreateBudget(ctx context.Context, userID string, req CreateBudgetRequest) (*BudgetResponse, error)
	ListBudgets(ctx context.Context, page, limit int) ([]BudgetResponse, int64, error)
	CommitSpend(txCtx context.Context, expense *model.Expense) error
	SettleSpend(txCtx context.Context, expense *model.Expense, finalStatus string) error
}

type budgetService struct {
	budgetRepo repository.BudgetRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
	hub        *ws.Hub
	logger     *zap.Logger
}

func NewBudgetService(
	budgetRepo repository.BudgetRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
	logger *zap.Logger,
) BudgetService {
	return &budgetService{
		budgetRepo: budgetRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		hub:        hub,
		logger:     logger,
	}
}

func (s *budgetService) CreateBudget(ctx context.Context, userID string, req CreateBudgetRequest) (*BudgetResponse, error) {
	periodStart, err := time.Parse("2006-01-02", req.PeriodStart)
	if err != nil {
		return nil, apperr.Validation("invalid period_start %q", req.PeriodStart)
	}
	periodEnd, err := time.Parse("2006-01-02", req.PeriodEnd)
	if err != nil {
		return nil, apperr.Validation("invalid period_end %q", req.PeriodEnd)
	}
	if periodEnd.Before(periodStart) {
		return nil, apperr.Validation("period_end must not precede period_start")
	}

	budget := &model.ExpenseBudget{
		Name:             req.Name,
		PeriodType:       req.PeriodType,
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		AllocatedAmount:  int64(req.AllocatedAmount * 100),
		AlertThreshold:   0.80,
		WarningThreshold: 0.90,
		IsActive:         true,
	}
	if req.AlertThreshold > 0 {
		budget.AlertThreshold = req.AlertThreshold
	}
	if req.WarningThreshold > 0 {
		budget.WarningThreshold = req.WarningThreshold
	}
	if req.CategoryID != "" {
		parsed, parseErr := uuid.Parse(req.CategoryID)
		if parseErr != nil {
			return nil, apperr.Validation("invalid category_id")
		}
		budget.CategoryID = &parsed
	}
	if req.UserID != "" {
		parsed, parseErr := uuid.Parse(req.UserID)
		if parseErr != nil {
			return nil, apperr.Validation("invalid user_id")
		}
		budget.UserID = &parsed
	}

	actorID := parseUUIDOrNil(userID)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.budgetRepo.Create(txCtx, budget); createErr != nil {
			return fmt.Errorf("failed to create budget: %w", createErr)
		}
		return s.writeAudit(txCtx, actorID, model.ActionCreateBudget, budget.ID.String(), budget.Name, map[string]interface{}{
			"allocated_amount": budget.AllocatedAmount,
			"period_type":      budget.PeriodType,
		})
	})
	if err != nil {
		return nil, err
	}

	resp := toBudgetResponse(budget)
	return &resp, nil
}

func (s *budgetService) ListBudgets(ctx context.Context, page, limit int) ([]BudgetResponse, int64, error) {
	budgets, total, err := s.budgetRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch budgets: %w", err)
	}

	result := make([]BudgetResponse, 0, len(budgets))
	for i := range budgets {
		result = append(result, toBudgetResponse(&budgets[i]))
	}
	return result, total, nil
}

// CommitSpend reserves the expense's net amount against every matching
// budget. Called at submission time, inside the submit transaction.
func (s *budgetService) CommitSpend(txCtx context.Context, expense *model.Expense) error {
	budgets, err := s.budgetRepo.FindMatchingForUpdate(txCtx, expense.CategoryID, &expense.UserID, expense.ExpenseDate)
	if err != nil {
		return fmt.Errorf("failed to lock matching budgets: %w", err)
	}

	for i := range budgets {
		budget := &budgets[i]
		budget.CommittedAmount += expense.NetAmount
		if err := s.budgetRepo.Update(txCtx, budget); err != nil {
			return fmt.Errorf("failed to update budget: %w", err)
		}
		if err := s.checkThresholds(txCtx, budget); err != nil {
			return err
		}
	}
	return nil
}

// SettleSpend resolves a prior commitment once the expense reaches a terminal
// status: approval moves the amount from committed to spent, rejection simply
// releases it.
func (s *budgetService) SettleSpend(txCtx context.Context, expense *model.Expense, finalStatus string) error {
	if finalStatus != model.ExpenseStatusApproved && finalStatus != model.ExpenseStatusRejected {
		return nil
	}

	budgets, err := s.budgetRepo.FindMatchingForUpdate(txCtx, expense.CategoryID, &expense.UserID, expense.ExpenseDate)
	if err != nil {
		return fmt.Errorf("failed to lock matching budgets: %w", err)
	}

	for i := range budgets {
		budget := &budgets[i]
		budget.CommittedAmount -= expense.NetAmount
		if budget.CommittedAmount < 0 {
			budget.CommittedAmount = 0
		}
		if finalStatus == model.ExpenseStatusApproved {
			budget.SpentAmount += expense.NetAmount
		}
		if err := s.budgetRepo.Update(txCtx, budget); err != nil {
			return fmt.Errorf("failed to update budget: %w", err)
		}
		if err := s.checkThresholds(txCtx, budget); err != nil {
			return err
		}
	}
	return nil
}

// checkThresholds fires alert/warning notifications the first time
// utilization crosses each threshold. The sent flags keep alerts one-shot
// per budget period.
func (s *budgetService) checkThresholds(txCtx context.Context, budget *model.ExpenseBudget) error {
	utilization := budget.Utilization()

	fire := func(level string) error {
		if s.hub != nil {
			s.hub.BroadcastEvent("budget.alert", map[string]interface{}{
				"budget_id":   budget.ID.String(),
				"budget_name": budget.Name,
				"level":       level,
				"utilization": utilization,
			})
		}
		if s.logger != nil {
			s.logger.Warn("budget threshold crossed",
				zap.String("budget", budget.Name),
				zap.String("level", level),
				zap.Float64("utilization", utilization))
		}
		return s.writeAudit(txCtx, nil, model.ActionBudgetAlert, budget.ID.String(), budget.Name, map[string]interface{}{
			"level":       level,
			"utilization": utilization,
		})
	}

	if !budget.WarningSent && utilization >= budget.WarningThreshold {
		budget.WarningSent = true
		budget.AlertSent = true
		if err := s.budgetRepo.Update(txCtx, budget); err != nil {
			return fmt.Errorf("failed to persist warning flag: %w", err)
		}
		return fire("warning")
	}
	if !budget.AlertSent && utilization >= budget.AlertThreshold {
		budget.AlertSent = true
		if err := s.budgetRepo.Update(txCtx, budget); err != nil {
			return fmt.Errorf("failed to persist alert flag: %w", err)
		}
		return fire("alert")
	}
	return nil
}

func (s *budgetService) writeAudit(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func toBudgetResponse(b *model.ExpenseBudget) BudgetResponse {
	resp := BudgetResponse{
		ID:               b.ID.String(),
		Name:             b.Name,
		PeriodType:       b.PeriodType,
		PeriodStart:      b.PeriodStart.Format("2006-01-02"),
		PeriodEnd:        b.PeriodEnd.Format("2006-01-02"),
		AllocatedAmount:  b.AllocatedAmount,
		SpentAmount:      b.SpentAmount,
		CommittedAmount:  b.CommittedAmount,
		AvailableAmount:  b.AvailableAmount(),
		Utilization:      b.Utilization(),
		AlertThreshold:   b.AlertThreshold,
		WarningThreshold: b.WarningThreshold,
		IsActive:         b.IsActive,
	}
	if b.Category != nil {
		resp.CategoryName = &b.Category.Name
	}
	return resp
}
