package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GenerateReportRequest struct {
	ReportType  string   `json:"report_type" binding:"required,oneof=weekly monthly yearly custom"`
	Title       string   `json:"title"`
	UserID      string   `json:"user_id"`   // Restrict to one user's expenses; admin only
	DateFrom    string   `json:"date_from"` // Required for custom reports
	DateTo      string   `json:"date_to"`
	Statuses    []string `json:"statuses"`
	CategoryIDs []string `json:"category_ids"`
}

type ReportResponse struct {
	ID            string          `json:"id"`
	ReportType    string          `json:"report_type"`
	Title         string          `json:"title"`
	DateFrom      string          `json:"date_from"`
	DateTo        string          `json:"date_to"`
	TotalExpenses int64           `json:"total_expenses"`
	TotalApproved int64           `json:"total_approved"`
	TotalPending  int64           `json:"total_pending"`
	TotalRejected int64           `json:"total_rejected"`
	ExpenseCount  int             `json:"expense_count"`
	Summary       *ExpenseSummary `json:"summary,omitempty"`
	GeneratedAt   string          `json:"generated_at"`
}

type ReportService interface {
	GenerateReport(ctx context.Context, actorID, actorRole string, req GenerateReportRequest) (*ReportResponse, error)
	ListMyReports(ctx context.Context, actorID string, page, limit int) ([]ReportResponse, int64, error)
}

type reportService struct {
	expenseRepo  repository.ExpenseRepository
	categoryRepo repository.CategoryRepository
	reportRepo   repository.ReportRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	logger       *zap.Logger
}

func NewReportService(
	expenseRepo repository.ExpenseRepository,
	categoryRepo repository.CategoryRepository,
	reportRepo repository.ReportRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		reportRepo:   reportRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

func (s *reportService) GenerateReport(ctx context.Context, actorID, actorRole string, req GenerateReportRequest) (*ReportResponse, error) {
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	dateFrom, dateTo, err := resolveReportPeriod(req.ReportType, req.DateFrom, req.DateTo, time.Now())
	if err != nil {
		return nil, err
	}

	filter := repository.ExpenseFilter{
		DateFrom: &dateFrom,
		DateTo:   &dateTo,
		Statuses: req.Statuses,
	}
	// Company-wide and cross-user reports are admin only; everyone else is
	// pinned to their own expenses.
	if actorRole != model.RoleAdmin {
		if req.UserID != "" && req.UserID != actorID {
			return nil, apperr.Forbidden("only admins may report on another user's expenses")
		}
		filter.UserID = &actor
	} else if req.UserID != "" {
		parsed, parseErr := uuid.Parse(req.UserID)
		if parseErr != nil {
			return nil, apperr.Validation("invalid user_id")
		}
		filter.UserID = &parsed
	}
	for _, raw := range req.CategoryIDs {
		parsed, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return nil, apperr.Validation("invalid category id %q", raw)
		}
		filter.CategoryIDs = append(filter.CategoryIDs, parsed)
	}

	expenses, err := s.expenseRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expenses: %w", err)
	}
	categories, err := s.categoryRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	summary := AggregateExpenses(expenses, categories)

	title := req.Title
	if title == "" {
		title = fmt.Sprintf("%s expense report %s to %s",
			req.ReportType, dateFrom.Format("2006-01-02"), dateTo.Format("2006-01-02"))
	}

	summaryJSON, _ := json.Marshal(summary)
	filtersJSON, _ := json.Marshal(map[string]interface{}{
		"user_id":      req.UserID,
		"statuses":     req.Statuses,
		"category_ids": req.CategoryIDs,
	})

	report := &model.ExpenseReport{
		ReportType:    req.ReportType,
		Title:         title,
		UserID:        filter.UserID,
		DateFrom:      dateFrom,
		DateTo:        dateTo,
		Filters:       string(filtersJSON),
		TotalExpenses: summary.TotalExpenses,
		TotalApproved: summary.TotalApproved,
		TotalPending:  summary.TotalPending,
		TotalRejected: summary.TotalRejected,
		ExpenseCount:  summary.ExpenseCount,
		SummaryData:   string(summaryJSON),
		Status:        "generated",
		GeneratedAt:   time.Now(),
		GeneratedBy:   &actor,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.reportRepo.Create(txCtx, report); createErr != nil {
			return fmt.Errorf("failed to persist report: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"report_type":   req.ReportType,
			"expense_count": summary.ExpenseCount,
		})
		entry := &model.AuditLog{
			UserID:     &actor,
			Action:     model.ActionGenerateReport,
			EntityID:   report.ID.String(),
			EntityName: title,
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

	resp := toReportResponse(report)
	resp.Summary = &summary
	return &resp, nil
}

func (s *reportService) ListMyReports(ctx context.Context, actorID string, page, limit int) ([]ReportResponse, int64, error) {
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid user id: %w", err)
	}

	reports, total, err := s.reportRepo.ListByUser(ctx, actor, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reports: %w", err)
	}

	result := make([]ReportResponse, 0, len(reports))
	for i := range reports {
		result = append(result, toReportResponse(&reports[i]))
	}
	return result, total, nil
}

// resolveReportPeriod maps the preset report types to date ranges anchored at
// now: weekly covers the last 7 days, monthly the current calendar month,
// yearly the current calendar year. Custom reports take both bounds verbatim.
func resolveReportPeriod(reportType, fromRaw, toRaw string, now time.Time) (time.Time, time.Time, error) {
	switch reportType {
	case model.ReportTypeWeekly:
		return now.AddDate(0, 0, -7), now, nil
	case model.ReportTypeMonthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, now, nil
	case model.ReportTypeYearly:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return start, now, nil
	case model.ReportTypeCustom:
		if fromRaw == "" || toRaw == "" {
			return time.Time{}, time.Time{}, apperr.Validation("custom reports require date_from and date_to")
		}
		from, err := time.Parse("2006-01-02", fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, apperr.Validation("invalid date_from %q", fromRaw)
		}
		to, err := time.Parse("2006-01-02", toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, apperr.Validation("invalid date_to %q", toRaw)
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, apperr.Validation("date_to must not precede date_from")
		}
		return from, to, nil
	default:
		return time.Time{}, time.Time{}, apperr.Validation("unknown report type %q", reportType)
	}
}

func toReportResponse(r *model.ExpenseReport) ReportResponse {
	return ReportResponse{
		ID:            r.ID.String(),
		ReportType:    r.ReportType,
		Title:         r.Title,
		DateFrom:      r.DateFrom.Format("2006-01-02"),
		DateTo:        r.DateTo.Format("2006-01-02"),
		TotalExpenses: r.TotalExpenses,
		TotalApproved: r.TotalApproved,
		TotalPending:  r.TotalPending,
		TotalRejected: r.TotalRejected,
		ExpenseCount:  r.ExpenseCount,
		GeneratedAt:   r.GeneratedAt.Format(time.RFC3339),
	}
}
