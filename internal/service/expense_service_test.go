package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type expenseFixture struct {
	svc          ExpenseService
	expenseRepo  *stubExpenseRepo
	approvalRepo *stubApprovalRepo
	owner        *model.User
	admin        *model.User
	expense      *model.Expense
}

// newExpenseFixture wires the service against in-memory repositories with one
// draft expense routed through a two-level workflow.
func newExpenseFixture() *expenseFixture {
	owner := &model.User{ID: uuid.New(), Username: "staffer", Role: model.RoleStaff}
	admin := &model.User{ID: uuid.New(), Username: "boss", Role: model.RoleAdmin}

	workflow := model.ApprovalWorkflow{
		ID:             uuid.New(),
		Name:           model.DefaultWorkflowName,
		ApprovalLevels: `[{"level":1,"role":"manager"},{"level":2,"role":"admin"}]`,
		IsActive:       true,
	}
	expense := &model.Expense{
		ID:          uuid.New(),
		UserID:      owner.ID,
		Title:       "Client visit transport",
		Amount:      250_00,
		Status:      model.ExpenseStatusDraft,
		ExpenseDate: time.Now(),
		WorkflowID:  &workflow.ID,
	}

	expenseRepo := &stubExpenseRepo{expenses: []*model.Expense{expense}}
	approvalRepo := &stubApprovalRepo{}
	svc := NewExpenseService(
		expenseRepo,
		approvalRepo,
		&stubCategoryRepo{},
		&stubWorkflowRepo{workflows: []model.ApprovalWorkflow{workflow}},
		&stubUserRepo{users: []*model.User{owner, admin}},
		&stubAuditRepo{},
		stubTxManager{},
		nil,
		nil,
		zap.NewNop(),
	)

	return &expenseFixture{
		svc:          svc,
		expenseRepo:  expenseRepo,
		approvalRepo: approvalRepo,
		owner:        owner,
		admin:        admin,
		expense:      expense,
	}
}

func TestSubmitExpense_CreatesOneApprovalRowPerLevel(t *testing.T) {
	f := newExpenseFixture()

	result, err := f.svc.SubmitExpense(context.Background(), f.owner.ID.String(), f.expense.ID.String())
	require.NoError(t, err)

	assert.Equal(t, model.ExpenseStatusSubmitted, result.Status)
	assert.Equal(t, 2, result.ApprovalLevels)
	assert.Equal(t, model.ExpenseStatusSubmitted, f.expense.Status)
	require.NotNil(t, f.expense.SubmittedAt)

	require.Len(t, f.approvalRepo.approvals, 2)
	for i, approval := range f.approvalRepo.approvals {
		assert.Equal(t, f.expense.ID, approval.ExpenseID)
		assert.Equal(t, f.admin.ID, approval.ApproverID)
		assert.Equal(t, i+1, approval.ApprovalLevel)
		assert.Equal(t, model.ApprovalPending, approval.Status)
	}
}

func TestSubmitExpense_SecondSubmitConflicts(t *testing.T) {
	f := newExpenseFixture()

	_, err := f.svc.SubmitExpense(context.Background(), f.owner.ID.String(), f.expense.ID.String())
	require.NoError(t, err)

	_, err = f.svc.SubmitExpense(context.Background(), f.owner.ID.String(), f.expense.ID.String())
	assert.ErrorIs(t, err, apperr.ErrConflict)
	require.Len(t, f.approvalRepo.approvals, 2, "the failed re-submit must not add approval rows")
}

func TestSubmitExpense_OnlyOwnerMaySubmit(t *testing.T) {
	f := newExpenseFixture()

	_, err := f.svc.SubmitExpense(context.Background(), f.admin.ID.String(), f.expense.ID.String())
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestProcessApproval_FullChain(t *testing.T) {
	f := newExpenseFixture()
	ctx := context.Background()

	_, err := f.svc.SubmitExpense(ctx, f.owner.ID.String(), f.expense.ID.String())
	require.NoError(t, err)

	req := ProcessApprovalRequest{ExpenseID: f.expense.ID.String(), Action: model.ApprovalApproved}

	first, err := f.svc.ProcessApproval(ctx, f.admin.ID.String(), req)
	require.NoError(t, err)
	assert.Equal(t, model.ExpenseStatusSubmitted, first.ExpenseStatus)
	assert.Equal(t, 1, first.RemainingApprovals)

	second, err := f.svc.ProcessApproval(ctx, f.admin.ID.String(), req)
	require.NoError(t, err)
	assert.Equal(t, model.ExpenseStatusApproved, second.ExpenseStatus)
	assert.Equal(t, 0, second.RemainingApprovals)

	_, err = f.svc.ProcessApproval(ctx, f.admin.ID.String(), req)
	assert.ErrorIs(t, err, apperr.ErrConflict, "a decided expense must not accept further decisions")
}

func TestProcessApproval_RejectionIsTerminal(t *testing.T) {
	f := newExpenseFixture()
	ctx := context.Background()

	_, err := f.svc.SubmitExpense(ctx, f.owner.ID.String(), f.expense.ID.String())
	require.NoError(t, err)

	result, err := f.svc.ProcessApproval(ctx, f.admin.ID.String(), ProcessApprovalRequest{
		ExpenseID: f.expense.ID.String(),
		Action:    model.ApprovalRejected,
		Comments:  "no receipt",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ExpenseStatusRejected, result.ExpenseStatus)

	_, err = f.svc.ProcessApproval(ctx, f.admin.ID.String(), ProcessApprovalRequest{
		ExpenseID: f.expense.ID.String(),
		Action:    model.ApprovalApproved,
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}
