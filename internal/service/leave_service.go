package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ApplyLeaveRequest struct {
	LeaveType        string `json:"leave_type" binding:"required"`
	StartDate        string `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate          string `json:"end_date" binding:"required"`
	IsHalfDay        bool   `json:"is_half_day"`
	HalfDayPeriod    string `json:"half_day_period"`
	Reason           string `json:"reason" binding:"required,min=5"`
	EmergencyContact string `json:"emergency_contact"`
	HandoverNotes    string `json:"handover_notes"`
	MedicalCertURL   string `json:"medical_certificate_url"`
}

type LeaveApplicationResponse struct {
	ID               string  `json:"id"`
	UserID           string  `json:"user_id"`
	UserName         string  `json:"user_name,omitempty"`
	LeaveType        string  `json:"leave_type"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	DaysRequested    string  `json:"days_requested"`
	IsHalfDay        bool    `json:"is_half_day"`
	Reason           string  `json:"reason"`
	Status           string  `json:"status"`
	ApprovalComments string  `json:"approval_comments,omitempty"`
	RejectionReason  string  `json:"rejection_reason,omitempty"`
	AppliedDate      string  `json:"applied_date"`
	ApprovalDate     *string `json:"approval_date"`
}

type LeaveBalanceResponse struct {
	LeaveType      string `json:"leave_type"`
	PolicyName     string `json:"policy_name"`
	Year           int    `json:"year"`
	TotalEntitled  string `json:"total_entitled"`
	Used           string `json:"used"`
	Pending        string `json:"pending"`
	CarriedForward string `json:"carried_forward"`
	Available      string `json:"available"`
}

type DecideLeaveRequest struct {
	Action   string `json:"action" binding:"required,oneof=approved rejected"`
	Comments string `json:"comments"`
}

// LeaveTypeSummary breaks a year's applications down for one leave type.
type LeaveTypeSummary struct {
	Count    int    `json:"count"`
	Days     string `json:"days"`
	Approved int    `json:"approved"`
	Rejected int    `json:"rejected"`
	Pending  int    `json:"pending"`
}

// LeaveMonthSummary counts applications starting in one month; Days only
// accumulates approved applications.
type LeaveMonthSummary struct {
	Count int    `json:"count"`
	Days  string `json:"days"`
}

// LeaveSummary is the management report over a year's applications.
type LeaveSummary struct {
	Year                int                          `json:"year"`
	TotalApplications   int                          `json:"total_applications"`
	Approved            int                          `json:"approved"`
	Rejected            int                          `json:"rejected"`
	Pending             int                          `json:"pending"`
	TotalDaysTaken      string                       `json:"total_days_taken"`
	ByLeaveType         map[string]LeaveTypeSummary  `json:"by_leave_type"`
	ByMonth             map[string]LeaveMonthSummary `json:"by_month"`
	AverageApprovalDays float64                      `json:"average_approval_days"`
}

// LeaveSummaryFilter narrows the management report.
type LeaveSummaryFilter struct {
	Year       int
	LeaveType  string
	Department string
}

type LeaveService interface {
	ListPolicies(ctx context.Context) ([]model.LeavePolicy, error)
	GetBalances(ctx context.Context, userID string, year int) ([]LeaveBalanceResponse, error)
	ApplyLeave(ctx context.Context, userID string, req ApplyLeaveRequest) (*LeaveApplicationResponse, error)
	GetMyApplications(ctx context.Context, userID string, year int, status string) ([]LeaveApplicationResponse, error)
	GetPendingApprovals(ctx context.Context, approverID string) ([]LeaveApplicationResponse, error)
	DecideLeave(ctx context.Context, approverID, applicationID string, req DecideLeaveRequest) (*LeaveApplicationResponse, error)
	GetSummary(ctx context.Context, filter LeaveSummaryFilter) (*LeaveSummary, error)
	InitializeBalances(ctx context.Context, actorID string, year int) (int, error)
}

type leaveService struct {
	leaveRepo   repository.LeaveRepository
	balanceRepo repository.LeaveBalanceRepository
	policyRepo  repository.LeavePolicyRepository
	userRepo    repository.UserRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *ws.Hub
	logger      *zap.Logger
}

func NewLeaveService(
	leaveRepo repository.LeaveRepository,
	balanceRepo repository.LeaveBalanceRepository,
	policyRepo repository.LeavePolicyRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
	logger *zap.Logger,
) LeaveService {
	return &leaveService{
		leaveRepo:   leaveRepo,
		balanceRepo: balanceRepo,
		policyRepo:  policyRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
		logger:      logger,
	}
}

func (s *leaveService) ListPolicies(ctx context.Context) ([]model.LeavePolicy, error) {
	return s.policyRepo.ListActive(ctx)
}

func (s *leaveService) GetBalances(ctx context.Context, userID string, year int) ([]LeaveBalanceResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %s", userID)
		}
		return nil, err
	}

	policies, err := s.policyRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load leave policies: %w", err)
	}

	var result []LeaveBalanceResponse
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for i := range policies {
			policy := &policies[i]
			if !policyApplies(policy, user) {
				continue
			}

			balance, balErr := s.ensureBalance(txCtx, user, policy, year)
			if balErr != nil {
				return balErr
			}
			result = append(result, toBalanceResponse(balance, policy.Name))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *leaveService) ApplyLeave(ctx context.Context, userID string, req ApplyLeaveRequest) (*LeaveApplicationResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %s", userID)
		}
		return nil, err
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, apperr.Validation("invalid start_date %q", req.StartDate)
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, apperr.Validation("invalid end_date %q", req.EndDate)
	}
	if endDate.Before(startDate) {
		return nil, apperr.Validation("end_date must not precede start_date")
	}
	if req.IsHalfDay && !startDate.Equal(endDate) {
		return nil, apperr.Validation("half-day leave must start and end on the same date")
	}

	// Policy check comes first so an unknown leave type fails before any
	// date arithmetic surfaces a less helpful error.
	policy, err := s.policyRepo.FindActiveByType(ctx, req.LeaveType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("no active policy for leave type %q", req.LeaveType)
		}
		return nil, err
	}
	if !policyApplies(policy, user) {
		return nil, apperr.Validation("%s leave is not applicable for this user", req.LeaveType)
	}

	daysRequested := decimal.NewFromInt(int64(CalculateWorkingDays(startDate, endDate)))
	if req.IsHalfDay {
		daysRequested = decimal.NewFromFloat(0.5)
	}
	if daysRequested.IsZero() {
		return nil, apperr.Validation("requested range contains no working days")
	}

	today := time.Now().Truncate(24 * time.Hour)
	if err := ValidateLeaveRequest(policy, startDate, daysRequested, today); err != nil {
		return nil, err
	}

	if policy.RequiresMedicalCertificate &&
		daysRequested.GreaterThan(decimal.NewFromInt(int64(policy.MedicalCertAfterDays))) &&
		req.MedicalCertURL == "" {
		return nil, apperr.Validation("medical certificate required for %s leave beyond %d days",
			policy.LeaveType, policy.MedicalCertAfterDays)
	}

	application := &model.LeaveApplication{
		UserID:                user.ID,
		LeaveType:             req.LeaveType,
		StartDate:             startDate,
		EndDate:               endDate,
		DaysRequested:         daysRequested,
		IsHalfDay:             req.IsHalfDay,
		HalfDayPeriod:         req.HalfDayPeriod,
		Reason:                req.Reason,
		EmergencyContact:      req.EmergencyContact,
		HandoverNotes:         req.HandoverNotes,
		MedicalCertificateURL: req.MedicalCertURL,
		Status:                model.LeaveStatusPending,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Balance and overlap checks read current rows, so they run inside
		// the transaction after the pure policy checks passed.
		balance, balErr := s.ensureBalanceForUpdate(txCtx, user, policy, startDate.Year())
		if balErr != nil {
			return balErr
		}
		if policy.LeaveType != model.LeaveTypeUnpaid && balance.Available().LessThan(daysRequested) {
			return apperr.Validation("Insufficient balance. Available: %s days",
				balance.Available().StringFixed(1))
		}

		overlap, overlapErr := s.leaveRepo.HasOverlap(txCtx, user.ID, startDate, endDate)
		if overlapErr != nil {
			return fmt.Errorf("failed to check overlapping applications: %w", overlapErr)
		}
		if overlap {
			return apperr.Conflict("an overlapping leave application already exists")
		}

		// Approver assignment mirrors the expense flow's simplification.
		if admin, adminErr := s.userRepo.FindFirstAdmin(txCtx); adminErr == nil {
			application.PrimaryApproverID = &admin.ID
		}

		if createErr := s.leaveRepo.Create(txCtx, application); createErr != nil {
			return fmt.Errorf("failed to create leave application: %w", createErr)
		}

		balance.Pending = balance.Pending.Add(daysRequested)
		if updateErr := s.balanceRepo.Update(txCtx, balance); updateErr != nil {
			return fmt.Errorf("failed to update leave balance: %w", updateErr)
		}

		return s.writeAudit(txCtx, &user.ID, model.ActionApplyLeave, application.ID.String(), map[string]interface{}{
			"leave_type": req.LeaveType,
			"days":       daysRequested.String(),
			"start_date": req.StartDate,
			"end_date":   req.EndDate,
		})
	})
	if err != nil {
		return nil, err
	}

	resp := toLeaveResponse(application, user.Username)
	return &resp, nil
}

func (s *leaveService) GetMyApplications(ctx context.Context, userID string, year int, status string) ([]LeaveApplicationResponse, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	applications, err := s.leaveRepo.List(ctx, repository.LeaveFilter{
		UserID: &ownerID,
		Status: status,
		Year:   year,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applications: %w", err)
	}
	return toLeaveResponses(applications), nil
}

func (s *leaveService) GetPendingApprovals(ctx context.Context, approverID string) ([]LeaveApplicationResponse, error) {
	approver, err := s.userRepo.GetByID(ctx, approverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %s", approverID)
		}
		return nil, err
	}

	applications, err := s.leaveRepo.ListPendingForApprover(ctx, approver.ID, approver.IsAdmin())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending applications: %w", err)
	}
	return toLeaveResponses(applications), nil
}

func (s *leaveService) DecideLeave(ctx context.Context, approverID, applicationID string, req DecideLeaveRequest) (*LeaveApplicationResponse, error) {
	approver, err := s.userRepo.GetByID(ctx, approverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %s", approverID)
		}
		return nil, err
	}
	id, err := uuid.Parse(applicationID)
	if err != nil {
		return nil, apperr.Validation("invalid application id")
	}

	var application *model.LeaveApplication
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		application, findErr = s.leaveRepo.FindByIDForUpdate(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("leave application %s", applicationID)
			}
			return findErr
		}

		if application.Status != model.LeaveStatusPending {
			return apperr.Conflict("application is already %s", application.Status)
		}
		if !approver.IsAdmin() && !isAssignedApprover(application, approver.ID) {
			return apperr.Forbidden("user is not an approver for this application")
		}

		balance, balErr := s.balanceRepo.FindForUpdate(txCtx, application.UserID, application.LeaveType, application.StartDate.Year())
		if balErr != nil {
			return balErr
		}

		now := time.Now()
		application.FinalApprovedBy = &approver.ID
		application.ApprovalDate = &now

		action := model.ActionApproveLeave
		if req.Action == model.LeaveStatusApproved {
			application.Status = model.LeaveStatusApproved
			application.ApprovalComments = req.Comments
			if balance != nil {
				balance.Pending = balance.Pending.Sub(application.DaysRequested)
				if balance.Pending.IsNegative() {
					balance.Pending = decimal.Zero
				}
				balance.Used = balance.Used.Add(application.DaysRequested)
			}
		} else {
			action = model.ActionRejectLeave
			application.Status = model.LeaveStatusRejected
			application.RejectionReason = req.Comments
			if balance != nil {
				balance.Pending = balance.Pending.Sub(application.DaysRequested)
				if balance.Pending.IsNegative() {
					balance.Pending = decimal.Zero
				}
			}
		}

		if balance != nil {
			if updateErr := s.balanceRepo.Update(txCtx, balance); updateErr != nil {
				return fmt.Errorf("failed to update leave balance: %w", updateErr)
			}
		}
		if updateErr := s.leaveRepo.Update(txCtx, application); updateErr != nil {
			return fmt.Errorf("failed to update leave application: %w", updateErr)
		}

		return s.writeAudit(txCtx, &approver.ID, action, application.ID.String(), map[string]interface{}{
			"leave_type": application.LeaveType,
			"days":       application.DaysRequested.String(),
			"status":     application.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastEvent("leave.decided", map[string]interface{}{
			"application_id": application.ID.String(),
			"user_id":        application.UserID.String(),
			"status":         application.Status,
		})
	}

	resp := toLeaveResponse(application, "")
	return &resp, nil
}

// GetSummary builds the management report over a year's applications.
// Access is restricted to HR roles at the handler level.
func (s *leaveService) GetSummary(ctx context.Context, filter LeaveSummaryFilter) (*LeaveSummary, error) {
	if filter.Year == 0 {
		filter.Year = time.Now().Year()
	}

	applications, err := s.leaveRepo.List(ctx, repository.LeaveFilter{
		Year:       filter.Year,
		LeaveType:  filter.LeaveType,
		Department: filter.Department,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applications: %w", err)
	}

	return buildLeaveSummary(filter.Year, applications), nil
}

// buildLeaveSummary aggregates applications into status counts, per-type and
// per-month breakdowns and the mean days from filing to decision.
func buildLeaveSummary(year int, applications []model.LeaveApplication) *LeaveSummary {
	summary := &LeaveSummary{
		Year:              year,
		TotalApplications: len(applications),
		TotalDaysTaken:    decimal.Zero.String(),
		ByLeaveType:       make(map[string]LeaveTypeSummary),
		ByMonth:           make(map[string]LeaveMonthSummary),
	}

	totalDays := decimal.Zero
	byTypeDays := make(map[string]decimal.Decimal)
	byMonthDays := make(map[string]decimal.Decimal)
	approvalDays := 0
	decided := 0

	for i := range applications {
		app := &applications[i]

		typeSummary := summary.ByLeaveType[app.LeaveType]
		typeSummary.Count++
		byTypeDays[app.LeaveType] = byTypeDays[app.LeaveType].Add(app.DaysRequested)

		monthKey := app.StartDate.Month().String()
		monthSummary := summary.ByMonth[monthKey]
		monthSummary.Count++

		switch app.Status {
		case model.LeaveStatusApproved:
			summary.Approved++
			typeSummary.Approved++
			totalDays = totalDays.Add(app.DaysRequested)
			byMonthDays[monthKey] = byMonthDays[monthKey].Add(app.DaysRequested)
		case model.LeaveStatusRejected:
			summary.Rejected++
			typeSummary.Rejected++
		case model.LeaveStatusPending:
			summary.Pending++
			typeSummary.Pending++
		}

		if app.ApprovalDate != nil {
			approvalDays += int(app.ApprovalDate.Sub(app.AppliedDate).Hours() / 24)
			decided++
		}

		summary.ByLeaveType[app.LeaveType] = typeSummary
		summary.ByMonth[monthKey] = monthSummary
	}

	for leaveType, typeSummary := range summary.ByLeaveType {
		typeSummary.Days = byTypeDays[leaveType].String()
		summary.ByLeaveType[leaveType] = typeSummary
	}
	for month, monthSummary := range summary.ByMonth {
		monthSummary.Days = byMonthDays[month].String()
		summary.ByMonth[month] = monthSummary
	}

	summary.TotalDaysTaken = totalDays.String()
	if decided > 0 {
		summary.AverageApprovalDays = float64(approvalDays) / float64(decided)
	}
	return summary
}

// InitializeBalances creates the applicable balance rows for every user for a
// year. Admin-only at the handler level. Existing rows are left untouched.
func (s *leaveService) InitializeBalances(ctx context.Context, actorID string, year int) (int, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	for i := range users {
		if _, err := s.GetBalances(ctx, users[i].ID.String(), year); err != nil {
			return 0, err
		}
	}

	actor := parseUUIDOrNil(actorID)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.writeAudit(txCtx, actor, model.ActionInitBalances, "", map[string]interface{}{
			"year":  year,
			"users": len(users),
		})
	})
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

// --- Internals ---

// ensureBalance lazily creates the balance row with the pro-rated entitlement
// on first touch for a user, type and year.
func (s *leaveService) ensureBalance(txCtx context.Context, user *model.User, policy *model.LeavePolicy, year int) (*model.LeaveBalance, error) {
	balance, err := s.balanceRepo.Find(txCtx, user.ID, policy.LeaveType, year)
	if err != nil {
		return nil, err
	}
	if balance != nil {
		return balance, nil
	}
	return s.createBalance(txCtx, user, policy, year)
}

func (s *leaveService) ensureBalanceForUpdate(txCtx context.Context, user *model.User, policy *model.LeavePolicy, year int) (*model.LeaveBalance, error) {
	balance, err := s.balanceRepo.FindForUpdate(txCtx, user.ID, policy.LeaveType, year)
	if err != nil {
		return nil, err
	}
	if balance != nil {
		return balance, nil
	}
	return s.createBalance(txCtx, user, policy, year)
}

func (s *leaveService) createBalance(txCtx context.Context, user *model.User, policy *model.LeavePolicy, year int) (*model.LeaveBalance, error) {
	balance := &model.LeaveBalance{
		UserID:        user.ID,
		LeaveType:     policy.LeaveType,
		Year:          year,
		TotalEntitled: CalculateEntitlement(user.JoinedAt, policy, year),
	}
	if err := s.balanceRepo.Create(txCtx, balance); err != nil {
		return nil, fmt.Errorf("failed to create leave balance: %w", err)
	}
	return balance, nil
}

func (s *leaveService) writeAudit(ctx context.Context, userID *uuid.UUID, action, entityID string, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	entry := &model.AuditLog{
		UserID:   userID,
		Action:   action,
		EntityID: entityID,
		Details:  string(payload),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func policyApplies(policy *model.LeavePolicy, user *model.User) bool {
	if policy.ApplicableGender == "" || policy.ApplicableGender == "all" {
		return true
	}
	return policy.ApplicableGender == user.Gender
}

func isAssignedApprover(app *model.LeaveApplication, userID uuid.UUID) bool {
	for _, slot := range []*uuid.UUID{app.PrimaryApproverID, app.SecondaryApproverID, app.HRApproverID} {
		if slot != nil && *slot == userID {
			return true
		}
	}
	return false
}

func toBalanceResponse(b *model.LeaveBalance, policyName string) LeaveBalanceResponse {
	return LeaveBalanceResponse{
		LeaveType:      b.LeaveType,
		PolicyName:     policyName,
		Year:           b.Year,
		TotalEntitled:  b.TotalEntitled.String(),
		Used:           b.Used.String(),
		Pending:        b.Pending.String(),
		CarriedForward: b.CarriedForward.String(),
		Available:      b.Available().String(),
	}
}

func toLeaveResponses(applications []model.LeaveApplication) []LeaveApplicationResponse {
	result := make([]LeaveApplicationResponse, 0, len(applications))
	for i := range applications {
		name := ""
		if applications[i].User != nil {
			name = applications[i].User.Username
		}
		result = append(result, toLeaveResponse(&applications[i], name))
	}
	return result
}

func toLeaveResponse(a *model.LeaveApplication, userName string) LeaveApplicationResponse {
	resp := LeaveApplicationResponse{
		ID:               a.ID.String(),
		UserID:           a.UserID.String(),
		UserName:         userName,
		LeaveType:        a.LeaveType,
		StartDate:        a.StartDate.Format("2006-01-02"),
		EndDate:          a.EndDate.Format("2006-01-02"),
		DaysRequested:    a.DaysRequested.String(),
		IsHalfDay:        a.IsHalfDay,
		Reason:           a.Reason,
		Status:           a.Status,
		ApprovalComments: a.ApprovalComments,
		RejectionReason:  a.RejectionReason,
		AppliedDate:      a.AppliedDate.Format(time.RFC3339),
	}
	if a.ApprovalDate != nil {
		ts := a.ApprovalDate.Format(time.RFC3339)
		resp.ApprovalDate = &ts
	}
	return resp
}
