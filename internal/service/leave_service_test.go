package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type leaveFixture struct {
	svc         LeaveService
	leaveRepo   *stubLeaveRepo
	balanceRepo *stubLeaveBalanceRepo
	user        *model.User
	admin       *model.User
}

func newLeaveFixture(entitled int64, year int) *leaveFixture {
	user := &model.User{ID: uuid.New(), Username: "staffer", Role: model.RoleStaff, JoinedAt: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)}
	admin := &model.User{ID: uuid.New(), Username: "boss", Role: model.RoleAdmin, JoinedAt: user.JoinedAt}

	policy := model.LeavePolicy{
		ID:               uuid.New(),
		LeaveType:        model.LeaveTypeCasual,
		Name:             "Casual Leave",
		DaysPerYear:      decimal.NewFromInt(10),
		ApplicableGender: "all",
		IsActive:         true,
	}
	balance := &model.LeaveBalance{
		ID:            uuid.New(),
		UserID:        user.ID,
		LeaveType:     model.LeaveTypeCasual,
		Year:          year,
		TotalEntitled: decimal.NewFromInt(entitled),
	}

	leaveRepo := &stubLeaveRepo{}
	balanceRepo := &stubLeaveBalanceRepo{balances: []*model.LeaveBalance{balance}}
	svc := NewLeaveService(
		leaveRepo,
		balanceRepo,
		&stubLeavePolicyRepo{policies: []model.LeavePolicy{policy}},
		&stubUserRepo{users: []*model.User{user, admin}},
		&stubAuditRepo{},
		stubTxManager{},
		nil,
		zap.NewNop(),
	)

	return &leaveFixture{svc: svc, leaveRepo: leaveRepo, balanceRepo: balanceRepo, user: user, admin: admin}
}

// upcomingLeaveRange returns a future Sunday-anchored range spanning the given
// number of days, far enough out that notice checks cannot interfere and free
// of the Friday weekly holiday for spans up to five days.
func upcomingLeaveRange(days int) (time.Time, time.Time) {
	start := time.Now().AddDate(0, 0, 14)
	for start.Weekday() != time.Sunday {
		start = start.AddDate(0, 0, 1)
	}
	return start, start.AddDate(0, 0, days-1)
}

func TestApplyLeave_DebitsPendingBalance(t *testing.T) {
	start, end := upcomingLeaveRange(3)
	f := newLeaveFixture(10, start.Year())

	resp, err := f.svc.ApplyLeave(context.Background(), f.user.ID.String(), ApplyLeaveRequest{
		LeaveType: model.LeaveTypeCasual,
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Reason:    "family event out of town",
	})
	require.NoError(t, err)

	assert.Equal(t, model.LeaveStatusPending, resp.Status)
	assert.Equal(t, "3", resp.DaysRequested)
	require.Len(t, f.leaveRepo.applications, 1)
	assert.True(t, f.balanceRepo.balances[0].Pending.Equal(decimal.NewFromInt(3)))
}

func TestApplyLeave_InsufficientBalanceMessage(t *testing.T) {
	start, end := upcomingLeaveRange(3)
	f := newLeaveFixture(2, start.Year())

	_, err := f.svc.ApplyLeave(context.Background(), f.user.ID.String(), ApplyLeaveRequest{
		LeaveType: model.LeaveTypeCasual,
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Reason:    "family event out of town",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "Insufficient balance. Available: 2.0 days")
	require.Empty(t, f.leaveRepo.applications, "a rejected application must not be persisted")
}

func TestApplyLeave_OverlapConflicts(t *testing.T) {
	start, end := upcomingLeaveRange(2)
	f := newLeaveFixture(10, start.Year())
	f.leaveRepo.overlap = true

	_, err := f.svc.ApplyLeave(context.Background(), f.user.ID.String(), ApplyLeaveRequest{
		LeaveType: model.LeaveTypeCasual,
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Reason:    "family event out of town",
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestDecideLeave_SecondDecisionConflicts(t *testing.T) {
	start, end := upcomingLeaveRange(2)
	f := newLeaveFixture(10, start.Year())
	ctx := context.Background()

	application := &model.LeaveApplication{
		ID:                uuid.New(),
		UserID:            f.user.ID,
		LeaveType:         model.LeaveTypeCasual,
		StartDate:         start,
		EndDate:           end,
		DaysRequested:     decimal.NewFromInt(2),
		Reason:            "family event out of town",
		Status:            model.LeaveStatusPending,
		PrimaryApproverID: &f.admin.ID,
		AppliedDate:       time.Now(),
	}
	require.NoError(t, f.leaveRepo.Create(ctx, application))

	resp, err := f.svc.DecideLeave(ctx, f.admin.ID.String(), application.ID.String(), DecideLeaveRequest{
		Action: model.LeaveStatusApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, model.LeaveStatusApproved, resp.Status)

	_, err = f.svc.DecideLeave(ctx, f.admin.ID.String(), application.ID.String(), DecideLeaveRequest{
		Action: model.LeaveStatusRejected,
	})
	assert.ErrorIs(t, err, apperr.ErrConflict, "a decided application must not accept further decisions")
}

func TestDecideLeave_ApprovalMovesPendingToUsed(t *testing.T) {
	start, end := upcomingLeaveRange(2)
	f := newLeaveFixture(10, start.Year())
	ctx := context.Background()

	_, err := f.svc.ApplyLeave(ctx, f.user.ID.String(), ApplyLeaveRequest{
		LeaveType: model.LeaveTypeCasual,
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Reason:    "family event out of town",
	})
	require.NoError(t, err)
	require.Len(t, f.leaveRepo.applications, 1)

	_, err = f.svc.DecideLeave(ctx, f.admin.ID.String(), f.leaveRepo.applications[0].ID.String(), DecideLeaveRequest{
		Action: model.LeaveStatusApproved,
	})
	require.NoError(t, err)

	balance := f.balanceRepo.balances[0]
	assert.True(t, balance.Pending.IsZero())
	assert.True(t, balance.Used.Equal(decimal.NewFromInt(2)))
}
