package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateExpenseRequest struct {
	Title         string  `json:"title" binding:"required,min=3,max=200"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount" binding:"required,gt=0"` // BDT; stored as paisa
	CategoryID    string  `json:"category_id"`
	ExpenseDate   string  `json:"expense_date" binding:"required"` // YYYY-MM-DD
	VendorName    string  `json:"vendor_name"`
	VendorContact string  `json:"vendor_contact"`
	LocationFrom  string  `json:"location_from"`
	LocationTo    string  `json:"location_to"`
	ProjectID     string  `json:"project_id"`
	ClientName    string  `json:"client_name"`
	IsBillable    bool    `json:"is_billable"`
	Reimbursable  *bool   `json:"reimbursable"`
}

type ExpenseResponse struct {
	ID              string  `json:"id"`
	ExpenseNumber   string  `json:"expense_number"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Amount          int64   `json:"amount"`
	AmountBDT       float64 `json:"amount_bdt"`
	Currency        string  `json:"currency"`
	CategoryID      *string `json:"category_id"`
	CategoryName    *string `json:"category_name"`
	CategoryColor   *string `json:"category_color"`
	ExpenseDate     string  `json:"expense_date"`
	VendorName      string  `json:"vendor_name"`
	ClientName      string  `json:"client_name"`
	IsBillable      bool    `json:"is_billable"`
	Status          string  `json:"status"`
	SubmittedAt     *string `json:"submitted_at"`
	ReceiptUploaded bool    `json:"receipt_uploaded"`
	AutoCategorized bool    `json:"auto_categorized"`
	ConfidenceScore float64 `json:"confidence_score"`
	NetAmount       int64   `json:"net_amount"`
	CreatedAt       string  `json:"created_at"`
}

type CreateExpenseResult struct {
	ExpenseID       string  `json:"expense_id"`
	ExpenseNumber   string  `json:"expense_number"`
	AutoCategorized bool    `json:"auto_categorized"`
	ConfidenceScore float64 `json:"confidence_score"`
}

type SubmitExpenseResult struct {
	Status         string `json:"status"`
	ApprovalLevels int    `json:"approval_levels"`
}

type MyExpensesFilter struct {
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
}

type PendingApprovalResponse struct {
	ApprovalID    string  `json:"approval_id"`
	ExpenseID     string  `json:"expense_id"`
	ExpenseNumber string  `json:"expense_number"`
	Title         string  `json:"title"`
	Amount        int64   `json:"amount"`
	AmountBDT     float64 `json:"amount_bdt"`
	CategoryName  *string `json:"category_name"`
	SubmitterName string  `json:"submitter_name"`
	SubmittedAt   *string `json:"submitted_at"`
	ApprovalLevel int     `json:"approval_level"`
}

type ProcessApprovalRequest struct {
	ExpenseID string `json:"expense_id" binding:"required"`
	Action    string `json:"action" binding:"required,oneof=approved rejected"`
	Comments  string `json:"comments"`
}

type ProcessApprovalResult struct {
	ExpenseStatus      string `json:"expense_status"`
	RemainingApprovals int    `json:"remaining_approvals"`
}

type CreateCategoryRequest struct {
	Name             string `json:"name" binding:"required,max=100"`
	Description      string `json:"description"`
	Icon             string `json:"icon"`
	Color            string `json:"color"`
	RequiresReceipt  bool   `json:"requires_receipt"`
	ReceiptThreshold int64  `json:"receipt_threshold"`
}

// --- Interface ---

type ExpenseService interface {
	ListCategories(ctx context.Context) ([]model.ExpenseCategory, error)
	CreateCategory(ctx context.Context, userID string, req CreateCategoryRequest) (*model.ExpenseCategory, error)
	CreateExpense(ctx context.Context, userID string, req CreateExpenseRequest) (CreateExpenseResult, error)
	SubmitExpense(ctx context.Context, userID, expenseID string) (SubmitExpenseResult, error)
	GetMyExpenses(ctx context.Context, userID string, filter MyExpensesFilter) ([]ExpenseResponse, error)
	GetPendingApprovals(ctx context.Context, userID string) ([]PendingApprovalResponse, error)
	ProcessApproval(ctx context.Context, userID string, req ProcessApprovalRequest) (ProcessApprovalResult, error)
}

type expenseService struct {
	expenseRepo  repository.ExpenseRepository
	approvalRepo repository.ApprovalRepository
	categoryRepo repository.CategoryRepository
	workflowRepo repository.WorkflowRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	budgets      BudgetService
	hub          *ws.Hub
	logger       *zap.Logger
}

func NewExpenseService(
	expenseRepo repository.ExpenseRepository,
	approvalRepo repository.ApprovalRepository,
	categoryRepo repository.CategoryRepository,
	workflowRepo repository.WorkflowRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	budgets BudgetService,
	hub *ws.Hub,
	logger *zap.Logger,
) ExpenseService {
	return &expenseService{
		expenseRepo:  expenseRepo,
		approvalRepo: approvalRepo,
		categoryRepo: categoryRepo,
		workflowRepo: workflowRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		budgets:      budgets,
		hub:          hub,
		logger:       logger,
	}
}

// --- Implementation ---

func (s *expenseService) ListCategories(ctx context.Context) ([]model.ExpenseCategory, error) {
	return s.categoryRepo.ListActive(ctx)
}

func (s *expenseService) CreateCategory(ctx context.Context, userID string, req CreateCategoryRequest) (*model.ExpenseCategory, error) {
	category := &model.ExpenseCategory{
		Name:             req.Name,
		Description:      req.Description,
		Icon:             req.Icon,
		Color:            req.Color,
		IsActive:         true,
		RequiresReceipt:  req.RequiresReceipt,
		ReceiptThreshold: req.ReceiptThreshold,
	}

	actorID := parseUUIDOrNil(userID)
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.categoryRepo.Create(txCtx, category); createErr != nil {
			return fmt.Errorf("failed to create category: %w", createErr)
		}
		return s.writeAudit(txCtx, actorID, model.ActionCreateCategory, category.ID.String(), category.Name, map[string]interface{}{
			"name": req.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *expenseService) CreateExpense(ctx context.Context, userID string, req CreateExpenseRequest) (CreateExpenseResult, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return CreateExpenseResult{}, fmt.Errorf("invalid user id: %w", err)
	}

	expenseDate, err := time.Parse("2006-01-02", req.ExpenseDate)
	if err != nil {
		return CreateExpenseResult{}, apperr.Validation("invalid expense_date %q", req.ExpenseDate)
	}

	amountPaisa := int64(math.Round(req.Amount * 100))

	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return CreateExpenseResult{}, fmt.Errorf("failed to load categories: %w", err)
	}

	// Auto-categorize when the caller left the category blank
	var categoryID *uuid.UUID
	var categoryName string
	autoCategorized := false
	confidence := 0.0

	if req.CategoryID != "" {
		parsed, parseErr := uuid.Parse(req.CategoryID)
		if parseErr != nil {
			return CreateExpenseResult{}, apperr.Validation("invalid category_id")
		}
		categoryID = &parsed
		for i := range categories {
			if categories[i].ID == parsed {
				categoryName = categories[i].Name
			}
		}
	} else {
		if match, score := Classify(categories, req.Title, req.Description, amountPaisa); match != nil {
			categoryID = &match.ID
			categoryName = match.Name
			autoCategorized = true
			confidence = score
		}
	}

	workflows, err := s.workflowRepo.ListActive(ctx)
	if err != nil {
		return CreateExpenseResult{}, fmt.Errorf("failed to load workflows: %w", err)
	}
	workflow := SelectWorkflow(workflows, amountPaisa, categoryName)

	reimbursable := true
	if req.Reimbursable != nil {
		reimbursable = *req.Reimbursable
	}

	expense := &model.Expense{
		UserID:          ownerID,
		CategoryID:      categoryID,
		Title:           req.Title,
		Description:     req.Description,
		Amount:          amountPaisa,
		Currency:        "BDT",
		ExpenseDate:     expenseDate,
		VendorName:      req.VendorName,
		VendorContact:   req.VendorContact,
		LocationFrom:    req.LocationFrom,
		LocationTo:      req.LocationTo,
		ProjectID:       req.ProjectID,
		ClientName:      req.ClientName,
		IsBillable:      req.IsBillable,
		Reimbursable:    reimbursable,
		Status:          model.ExpenseStatusDraft,
		AutoCategorized: autoCategorized,
		ConfidenceScore: confidence,
		NetAmount:       amountPaisa, // no deductions at creation
		CreatedBy:       &ownerID,
	}
	if workflow != nil {
		expense.WorkflowID = &workflow.ID
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, numErr := s.expenseRepo.NextExpenseNumber(txCtx)
		if numErr != nil {
			return fmt.Errorf("failed to generate expense number: %w", numErr)
		}
		expense.ExpenseNumber = number

		if createErr := s.expenseRepo.Create(txCtx, expense); createErr != nil {
			return fmt.Errorf("failed to create expense: %w", createErr)
		}

		return s.writeAudit(txCtx, &ownerID, model.ActionCreateExpense, expense.ID.String(), expense.Title, map[string]interface{}{
			"expense_number":   expense.ExpenseNumber,
			"amount":           amountPaisa,
			"auto_categorized": autoCategorized,
		})
	})
	if err != nil {
		return CreateExpenseResult{}, err
	}

	return CreateExpenseResult{
		ExpenseID:       expense.ID.String(),
		ExpenseNumber:   expense.ExpenseNumber,
		AutoCategorized: autoCategorized,
		ConfidenceScore: confidence,
	}, nil
}

func (s *expenseService) SubmitExpense(ctx context.Context, userID, expenseID string) (SubmitExpenseResult, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return SubmitExpenseResult{}, fmt.Errorf("invalid user id: %w", err)
	}
	id, err := uuid.Parse(expenseID)
	if err != nil {
		return SubmitExpenseResult{}, apperr.Validation("invalid expense id")
	}

	var levelCount int
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		expense, findErr := s.expenseRepo.FindByIDForUpdate(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("expense %s", expenseID)
			}
			return findErr
		}

		if expense.UserID != ownerID {
			return apperr.Forbidden("only the owner may submit an expense")
		}
		if expense.Status != model.ExpenseStatusDraft {
			return apperr.Conflict("expense is already %s", expense.Status)
		}
		if expense.WorkflowID == nil {
			return apperr.Validation("expense has no approval workflow assigned")
		}

		workflow, wfErr := s.workflowRepo.FindByID(txCtx, *expense.WorkflowID)
		if wfErr != nil {
			return fmt.Errorf("failed to load workflow: %w", wfErr)
		}
		levels, lvlErr := workflow.ParseLevels()
		if lvlErr != nil {
			return lvlErr
		}
		levelCount = len(levels)

		// Approver assignment is deliberately simplified: every level goes to
		// the earliest-created admin rather than a per-role lookup.
		admin, adminErr := s.userRepo.FindFirstAdmin(txCtx)
		if adminErr != nil {
			return fmt.Errorf("no admin user available for approval assignment: %w", adminErr)
		}

		now := time.Now()
		expense.Status = model.ExpenseStatusSubmitted
		expense.SubmittedAt = &now
		if updateErr := s.expenseRepo.Update(txCtx, expense); updateErr != nil {
			return fmt.Errorf("failed to update expense: %w", updateErr)
		}

		approvals := make([]model.ExpenseApproval, 0, len(levels))
		for _, level := range levels {
			approvals = append(approvals, model.ExpenseApproval{
				ExpenseID:     expense.ID,
				ApproverID:    admin.ID,
				ApprovalLevel: level.Level,
				Status:        model.ApprovalPending,
			})
		}
		if batchErr := s.approvalRepo.CreateBatch(txCtx, approvals); batchErr != nil {
			return fmt.Errorf("failed to create approval rows: %w", batchErr)
		}

		if s.budgets != nil {
			if budgetErr := s.budgets.CommitSpend(txCtx, expense); budgetErr != nil {
				return budgetErr
			}
		}

		return s.writeAudit(txCtx, &ownerID, model.ActionSubmitExpense, expense.ID.String(), expense.Title, map[string]interface{}{
			"expense_number": expense.ExpenseNumber,
			"levels":         levelCount,
		})
	})
	if err != nil {
		return SubmitExpenseResult{}, err
	}

	return SubmitExpenseResult{Status: model.ExpenseStatusSubmitted, ApprovalLevels: levelCount}, nil
}

func (s *expenseService) GetMyExpenses(ctx context.Context, userID string, filter MyExpensesFilter) ([]ExpenseResponse, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	expenses, err := s.expenseRepo.List(ctx, repository.ExpenseFilter{
		UserID:   &ownerID,
		Status:   filter.Status,
		DateFrom: filter.DateFrom,
		DateTo:   filter.DateTo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expenses: %w", err)
	}

	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	categoryByID := make(map[uuid.UUID]*model.ExpenseCategory, len(categories))
	for i := range categories {
		categoryByID[categories[i].ID] = &categories[i]
	}

	result := make([]ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		result = append(result, toExpenseResponse(&expenses[i], categoryByID))
	}
	return result, nil
}

func (s *expenseService) GetPendingApprovals(ctx context.Context, userID string) ([]PendingApprovalResponse, error) {
	approverID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	approvals, err := s.approvalRepo.ListPendingByApprover(ctx, approverID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending approvals: %w", err)
	}

	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	categoryByID := make(map[uuid.UUID]*model.ExpenseCategory, len(categories))
	for i := range categories {
		categoryByID[categories[i].ID] = &categories[i]
	}

	result := make([]PendingApprovalResponse, 0, len(approvals))
	for _, approval := range approvals {
		if approval.Expense == nil {
			continue
		}
		expense := approval.Expense

		item := PendingApprovalResponse{
			ApprovalID:    approval.ID.String(),
			ExpenseID:     expense.ID.String(),
			ExpenseNumber: expense.ExpenseNumber,
			Title:         expense.Title,
			Amount:        expense.Amount,
			AmountBDT:     float64(expense.Amount) / 100,
			ApprovalLevel: approval.ApprovalLevel,
		}
		if expense.CategoryID != nil {
			if category, ok := categoryByID[*expense.CategoryID]; ok {
				item.CategoryName = &category.Name
			}
		}
		if expense.SubmittedAt != nil {
			submitted := expense.SubmittedAt.Format(time.RFC3339)
			item.SubmittedAt = &submitted
		}
		if submitter, userErr := s.userRepo.GetByID(ctx, expense.UserID.String()); userErr == nil {
			item.SubmitterName = submitter.Username
		}

		result = append(result, item)
	}
	return result, nil
}

func (s *expenseService) ProcessApproval(ctx context.Context, userID string, req ProcessApprovalRequest) (ProcessApprovalResult, error) {
	approverID, err := uuid.Parse(userID)
	if err != nil {
		return ProcessApprovalResult{}, fmt.Errorf("invalid user id: %w", err)
	}
	expenseID, err := uuid.Parse(req.ExpenseID)
	if err != nil {
		return ProcessApprovalResult{}, apperr.Validation("invalid expense_id")
	}

	var result ProcessApprovalResult
	var expense *model.Expense
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Lock the expense row first so concurrent decisions serialize here
		// instead of both observing zero remaining approvals.
		var findErr error
		expense, findErr = s.expenseRepo.FindByIDForUpdate(txCtx, expenseID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("expense %s", req.ExpenseID)
			}
			return findErr
		}

		if expense.Status != model.ExpenseStatusSubmitted {
			return apperr.Conflict("expense is already %s", expense.Status)
		}

		approval, apprErr := s.approvalRepo.FindPending(txCtx, expenseID, approverID)
		if apprErr != nil {
			if errors.Is(apprErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("no pending approval for this user on expense %s", req.ExpenseID)
			}
			return apprErr
		}

		now := time.Now()
		approval.Status = req.Action
		approval.Comments = req.Comments
		approval.ApprovedAt = &now
		if updateErr := s.approvalRepo.Update(txCtx, approval); updateErr != nil {
			return fmt.Errorf("failed to update approval: %w", updateErr)
		}

		approvals, listErr := s.approvalRepo.ListByExpense(txCtx, expenseID)
		if listErr != nil {
			return fmt.Errorf("failed to reload approvals: %w", listErr)
		}

		newStatus := ResolveExpenseStatus(approvals)
		result.RemainingApprovals = CountPendingApprovals(approvals)

		if newStatus != expense.Status {
			expense.Status = newStatus
			if updateErr := s.expenseRepo.Update(txCtx, expense); updateErr != nil {
				return fmt.Errorf("failed to update expense status: %w", updateErr)
			}

			if s.budgets != nil {
				if budgetErr := s.budgets.SettleSpend(txCtx, expense, newStatus); budgetErr != nil {
					return budgetErr
				}
			}
		}
		result.ExpenseStatus = expense.Status

		action := model.ActionApproveExpense
		if req.Action == model.ApprovalRejected {
			action = model.ActionRejectExpense
		}
		return s.writeAudit(txCtx, &approverID, action, expense.ID.String(), expense.Title, map[string]interface{}{
			"expense_number": expense.ExpenseNumber,
			"level":          approval.ApprovalLevel,
			"expense_status": expense.Status,
		})
	})
	if err != nil {
		return ProcessApprovalResult{}, err
	}

	if result.ExpenseStatus == model.ExpenseStatusApproved || result.ExpenseStatus == model.ExpenseStatusRejected {
		s.notify("expense.decided", map[string]interface{}{
			"expense_id":     expense.ID.String(),
			"expense_number": expense.ExpenseNumber,
			"status":         result.ExpenseStatus,
		})
	}

	return result, nil
}

// --- Helpers ---

func (s *expenseService) writeAudit(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
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

func (s *expenseService) notify(event string, payload map[string]interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(event, payload)
	if s.logger != nil {
		s.logger.Info("event broadcast", zap.String("event", event))
	}
}

func parseUUIDOrNil(id string) *uuid.UUID {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	return &parsed
}

func toExpenseResponse(e *model.Expense, categories map[uuid.UUID]*model.ExpenseCategory) ExpenseResponse {
	resp := ExpenseResponse{
		ID:              e.ID.String(),
		ExpenseNumber:   e.ExpenseNumber,
		Title:           e.Title,
		Description:     e.Description,
		Amount:          e.Amount,
		AmountBDT:       float64(e.Amount) / 100,
		Currency:        e.Currency,
		ExpenseDate:     e.ExpenseDate.Format("2006-01-02"),
		VendorName:      e.VendorName,
		ClientName:      e.ClientName,
		IsBillable:      e.IsBillable,
		Status:          e.Status,
		ReceiptUploaded: e.ReceiptUploaded,
		AutoCategorized: e.AutoCategorized,
		ConfidenceScore: e.ConfidenceScore,
		NetAmount:       e.NetAmount,
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
	}

	if e.CategoryID != nil {
		id := e.CategoryID.String()
		resp.CategoryID = &id
		if category, ok := categories[*e.CategoryID]; ok {
			resp.CategoryName = &category.Name
			resp.CategoryColor = &category.Color
		}
	}
	if e.SubmittedAt != nil {
		submitted := e.SubmittedAt.Format(time.RFC3339)
		resp.SubmittedAt = &submitted
	}

	return resp
}
