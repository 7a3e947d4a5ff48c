package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository doubles for exercising service orchestration without a
// database. Write paths mutate the shared structs so a second call observes
// the state left behind by the first, which is exactly what the lifecycle
// tests probe at the status transitions.

type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type stubAuditRepo struct {
	entries []model.AuditLog
}

func (r *stubAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubAuditRepo) List(_ context.Context, _ repository.AuditFilter) ([]model.AuditLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

type stubExpenseRepo struct {
	expenses   []*model.Expense
	lastFilter *repository.ExpenseFilter
	numberSeq  int
}

func (r *stubExpenseRepo) Create(_ context.Context, expense *model.Expense) error {
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	r.expenses = append(r.expenses, expense)
	return nil
}

func (r *stubExpenseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	return r.FindByIDForUpdate(ctx, id)
}

func (r *stubExpenseRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.Expense, error) {
	for _, expense := range r.expenses {
		if expense.ID == id {
			return expense, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubExpenseRepo) List(_ context.Context, filter repository.ExpenseFilter) ([]model.Expense, error) {
	r.lastFilter = &filter
	var result []model.Expense
	for _, expense := range r.expenses {
		if filter.UserID != nil && expense.UserID != *filter.UserID {
			continue
		}
		result = append(result, *expense)
	}
	return result, nil
}

func (r *stubExpenseRepo) Update(_ context.Context, _ *model.Expense) error { return nil }

func (r *stubExpenseRepo) NextExpenseNumber(_ context.Context) (string, error) {
	r.numberSeq++
	return fmt.Sprintf("EXP-%s-%05d", time.Now().Format("200601"), r.numberSeq), nil
}

type stubApprovalRepo struct {
	approvals []*model.ExpenseApproval
}

func (r *stubApprovalRepo) CreateBatch(_ context.Context, approvals []model.ExpenseApproval) error {
	for i := range approvals {
		approval := approvals[i]
		if approval.ID == uuid.Nil {
			approval.ID = uuid.New()
		}
		r.approvals = append(r.approvals, &approval)
	}
	return nil
}

func (r *stubApprovalRepo) FindPending(_ context.Context, expenseID, approverID uuid.UUID) (*model.ExpenseApproval, error) {
	for _, approval := range r.approvals {
		if approval.ExpenseID == expenseID && approval.ApproverID == approverID && approval.Status == model.ApprovalPending {
			return approval, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubApprovalRepo) ListByExpense(_ context.Context, expenseID uuid.UUID) ([]model.ExpenseApproval, error) {
	var result []model.ExpenseApproval
	for _, approval := range r.approvals {
		if approval.ExpenseID == expenseID {
			result = append(result, *approval)
		}
	}
	return result, nil
}

func (r *stubApprovalRepo) ListPendingByApprover(_ context.Context, approverID uuid.UUID) ([]model.ExpenseApproval, error) {
	var result []model.ExpenseApproval
	for _, approval := range r.approvals {
		if approval.ApproverID == approverID && approval.Status == model.ApprovalPending {
			result = append(result, *approval)
		}
	}
	return result, nil
}

func (r *stubApprovalRepo) Update(_ context.Context, _ *model.ExpenseApproval) error { return nil }

type stubCategoryRepo struct {
	categories []model.ExpenseCategory
}

func (r *stubCategoryRepo) Create(_ context.Context, category *model.ExpenseCategory) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	r.categories = append(r.categories, *category)
	return nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ExpenseCategory, error) {
	for i := range r.categories {
		if r.categories[i].ID == id {
			return &r.categories[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoryRepo) ListActive(_ context.Context) ([]model.ExpenseCategory, error) {
	return r.categories, nil
}

type stubWorkflowRepo struct {
	workflows []model.ApprovalWorkflow
}

func (r *stubWorkflowRepo) Create(_ context.Context, workflow *model.ApprovalWorkflow) error {
	if workflow.ID == uuid.Nil {
		workflow.ID = uuid.New()
	}
	r.workflows = append(r.workflows, *workflow)
	return nil
}

func (r *stubWorkflowRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ApprovalWorkflow, error) {
	for i := range r.workflows {
		if r.workflows[i].ID == id {
			return &r.workflows[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubWorkflowRepo) ListActive(_ context.Context) ([]model.ApprovalWorkflow, error) {
	return r.workflows, nil
}

type stubUserRepo struct {
	users []*model.User
}

func (r *stubUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users = append(r.users, user)
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, user := range r.users {
		if user.ID.String() == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) List(ctx context.Context, _, _ int) ([]model.User, int64, error) {
	users, err := r.ListAll(ctx)
	return users, int64(len(users)), err
}

func (r *stubUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	result := make([]model.User, 0, len(r.users))
	for _, user := range r.users {
		result = append(result, *user)
	}
	return result, nil
}

func (r *stubUserRepo) Update(_ context.Context, _ *model.User) error { return nil }

func (r *stubUserRepo) Delete(_ context.Context, _ string) error { return nil }

func (r *stubUserRepo) FindFirstAdmin(_ context.Context) (*model.User, error) {
	for _, user := range r.users {
		if user.Role == model.RoleAdmin {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubReportRepo struct {
	reports []*model.ExpenseReport
}

func (r *stubReportRepo) Create(_ context.Context, report *model.ExpenseReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	r.reports = append(r.reports, report)
	return nil
}

func (r *stubReportRepo) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]model.ExpenseReport, int64, error) {
	var result []model.ExpenseReport
	for _, report := range r.reports {
		if report.GeneratedBy != nil && *report.GeneratedBy == userID {
			result = append(result, *report)
		}
	}
	return result, int64(len(result)), nil
}

type stubBillRepo struct {
	bills []*model.ConvenienceBill
}

func (r *stubBillRepo) Create(_ context.Context, bill *model.ConvenienceBill) error {
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	r.bills = append(r.bills, bill)
	return nil
}

func (r *stubBillRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ConvenienceBill, error) {
	return r.FindByIDForUpdate(ctx, id)
}

func (r *stubBillRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.ConvenienceBill, error) {
	for _, bill := range r.bills {
		if bill.ID == id {
			return bill, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubBillRepo) ListByUser(_ context.Context, userID uuid.UUID, status string, _, _ int) ([]model.ConvenienceBill, int64, error) {
	var result []model.ConvenienceBill
	for _, bill := range r.bills {
		if bill.UserID != userID {
			continue
		}
		if status != "" && bill.Status != status {
			continue
		}
		result = append(result, *bill)
	}
	return result, int64(len(result)), nil
}

func (r *stubBillRepo) ListByStatus(_ context.Context, status string, _, _ int) ([]model.ConvenienceBill, int64, error) {
	var result []model.ConvenienceBill
	for _, bill := range r.bills {
		if status != "" && bill.Status != status {
			continue
		}
		result = append(result, *bill)
	}
	return result, int64(len(result)), nil
}

func (r *stubBillRepo) Update(_ context.Context, _ *model.ConvenienceBill) error { return nil }

type stubLeaveRepo struct {
	applications []*model.LeaveApplication
	overlap      bool
}

func (r *stubLeaveRepo) Create(_ context.Context, application *model.LeaveApplication) error {
	if application.ID == uuid.Nil {
		application.ID = uuid.New()
	}
	if application.AppliedDate.IsZero() {
		application.AppliedDate = time.Now()
	}
	r.applications = append(r.applications, application)
	return nil
}

func (r *stubLeaveRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.LeaveApplication, error) {
	return r.FindByIDForUpdate(ctx, id)
}

func (r *stubLeaveRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.LeaveApplication, error) {
	for _, application := range r.applications {
		if application.ID == id {
			return application, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubLeaveRepo) List(_ context.Context, filter repository.LeaveFilter) ([]model.LeaveApplication, error) {
	var result []model.LeaveApplication
	for _, application := range r.applications {
		if filter.UserID != nil && application.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && application.Status != filter.Status {
			continue
		}
		result = append(result, *application)
	}
	return result, nil
}

func (r *stubLeaveRepo) ListPendingForApprover(_ context.Context, approverID uuid.UUID, admin bool) ([]model.LeaveApplication, error) {
	var result []model.LeaveApplication
	for _, application := range r.applications {
		if application.Status != model.LeaveStatusPending {
			continue
		}
		if !admin && !isAssignedApprover(application, approverID) {
			continue
		}
		result = append(result, *application)
	}
	return result, nil
}

func (r *stubLeaveRepo) HasOverlap(_ context.Context, _ uuid.UUID, _, _ time.Time) (bool, error) {
	return r.overlap, nil
}

func (r *stubLeaveRepo) Update(_ context.Context, _ *model.LeaveApplication) error { return nil }

type stubLeaveBalanceRepo struct {
	balances []*model.LeaveBalance
}

func (r *stubLeaveBalanceRepo) Create(_ context.Context, balance *model.LeaveBalance) error {
	if balance.ID == uuid.Nil {
		balance.ID = uuid.New()
	}
	r.balances = append(r.balances, balance)
	return nil
}

func (r *stubLeaveBalanceRepo) Find(_ context.Context, userID uuid.UUID, leaveType string, year int) (*model.LeaveBalance, error) {
	for _, balance := range r.balances {
		if balance.UserID == userID && balance.LeaveType == leaveType && balance.Year == year {
			return balance, nil
		}
	}
	return nil, nil
}

func (r *stubLeaveBalanceRepo) FindForUpdate(ctx context.Context, userID uuid.UUID, leaveType string, year int) (*model.LeaveBalance, error) {
	return r.Find(ctx, userID, leaveType, year)
}

func (r *stubLeaveBalanceRepo) ListByUserYear(_ context.Context, userID uuid.UUID, year int) ([]model.LeaveBalance, error) {
	var result []model.LeaveBalance
	for _, balance := range r.balances {
		if balance.UserID == userID && balance.Year == year {
			result = append(result, *balance)
		}
	}
	return result, nil
}

func (r *stubLeaveBalanceRepo) Update(_ context.Context, _ *model.LeaveBalance) error { return nil }

type stubLeavePolicyRepo struct {
	policies []model.LeavePolicy
}

func (r *stubLeavePolicyRepo) Create(_ context.Context, policy *model.LeavePolicy) error {
	if policy.ID == uuid.Nil {
		policy.ID = uuid.New()
	}
	r.policies = append(r.policies, *policy)
	return nil
}

func (r *stubLeavePolicyRepo) FindActiveByType(_ context.Context, leaveType string) (*model.LeavePolicy, error) {
	for i := range r.policies {
		if r.policies[i].LeaveType == leaveType && r.policies[i].IsActive {
			return &r.policies[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubLeavePolicyRepo) ListActive(_ context.Context) ([]model.LeavePolicy, error) {
	return r.policies, nil
}
