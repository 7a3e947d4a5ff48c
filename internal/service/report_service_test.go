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

func TestResolveReportPeriod_Presets(t *testing.T) {
	now := time.Date(2026, time.September, 15, 10, 30, 0, 0, time.UTC)

	t.Run("weekly covers the last seven days", func(t *testing.T) {
		from, to, err := resolveReportPeriod("weekly", "", "", now)
		require.NoError(t, err)
		assert.Equal(t, now.AddDate(0, 0, -7), from)
		assert.Equal(t, now, to)
	})

	t.Run("monthly starts at the first of the month", func(t *testing.T) {
		from, to, err := resolveReportPeriod("monthly", "", "", now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), from)
		assert.Equal(t, now, to)
	})

	t.Run("yearly starts at january first", func(t *testing.T) {
		from, _, err := resolveReportPeriod("yearly", "", "", now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), from)
	})
}

func TestResolveReportPeriod_Custom(t *testing.T) {
	now := time.Now()

	t.Run("valid bounds", func(t *testing.T) {
		from, to, err := resolveReportPeriod("custom", "2026-01-01", "2026-03-31", now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), from)
		assert.Equal(t, time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), to)
	})

	t.Run("missing bounds", func(t *testing.T) {
		_, _, err := resolveReportPeriod("custom", "2026-01-01", "", now)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("inverted bounds", func(t *testing.T) {
		_, _, err := resolveReportPeriod("custom", "2026-03-31", "2026-01-01", now)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("malformed date", func(t *testing.T) {
		_, _, err := resolveReportPeriod("custom", "31/03/2026", "2026-04-01", now)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestResolveReportPeriod_UnknownType(t *testing.T) {
	_, _, err := resolveReportPeriod("quarterly", "", "", time.Now())
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func reportServiceForTest(expenses ...*model.Expense) (ReportService, *stubExpenseRepo) {
	expenseRepo := &stubExpenseRepo{expenses: expenses}
	svc := NewReportService(expenseRepo, &stubCategoryRepo{}, &stubReportRepo{}, &stubAuditRepo{}, stubTxManager{}, zap.NewNop())
	return svc, expenseRepo
}

func approvedExpense(userID uuid.UUID, amount int64) *model.Expense {
	return &model.Expense{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		Status:      model.ExpenseStatusApproved,
		ExpenseDate: time.Now(),
	}
}

func TestGenerateReport_NonAdminPinnedToOwnExpenses(t *testing.T) {
	staff := uuid.New()
	other := uuid.New()
	svc, expenseRepo := reportServiceForTest(
		approvedExpense(staff, 10_000),
		approvedExpense(other, 999_999),
	)

	report, err := svc.GenerateReport(context.Background(), staff.String(), model.RoleStaff,
		GenerateReportRequest{ReportType: model.ReportTypeMonthly})
	require.NoError(t, err)

	require.NotNil(t, expenseRepo.lastFilter)
	require.NotNil(t, expenseRepo.lastFilter.UserID, "query must be scoped to the caller")
	assert.Equal(t, staff, *expenseRepo.lastFilter.UserID)
	assert.Equal(t, 1, report.ExpenseCount)
	assert.Equal(t, int64(10_000), report.TotalExpenses, "another user's expenses must not leak into the total")
}

func TestGenerateReport_NonAdminCannotTargetAnotherUser(t *testing.T) {
	staff := uuid.New()
	other := uuid.New()
	svc, _ := reportServiceForTest(approvedExpense(other, 50_000))

	_, err := svc.GenerateReport(context.Background(), staff.String(), model.RoleStaff,
		GenerateReportRequest{ReportType: model.ReportTypeMonthly, UserID: other.String()})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestGenerateReport_NonAdminMayNameThemselves(t *testing.T) {
	staff := uuid.New()
	svc, expenseRepo := reportServiceForTest(approvedExpense(staff, 10_000))

	_, err := svc.GenerateReport(context.Background(), staff.String(), model.RoleManager,
		GenerateReportRequest{ReportType: model.ReportTypeMonthly, UserID: staff.String()})
	require.NoError(t, err)
	require.NotNil(t, expenseRepo.lastFilter.UserID)
	assert.Equal(t, staff, *expenseRepo.lastFilter.UserID)
}

func TestGenerateReport_AdminScope(t *testing.T) {
	admin := uuid.New()
	staff := uuid.New()

	t.Run("company-wide without user_id", func(t *testing.T) {
		svc, expenseRepo := reportServiceForTest(
			approvedExpense(admin, 10_000),
			approvedExpense(staff, 999_999),
		)

		report, err := svc.GenerateReport(context.Background(), admin.String(), model.RoleAdmin,
			GenerateReportRequest{ReportType: model.ReportTypeMonthly})
		require.NoError(t, err)
		assert.Nil(t, expenseRepo.lastFilter.UserID)
		assert.Equal(t, int64(1_009_999), report.TotalExpenses)
	})

	t.Run("targets a named user", func(t *testing.T) {
		svc, expenseRepo := reportServiceForTest(
			approvedExpense(admin, 10_000),
			approvedExpense(staff, 999_999),
		)

		report, err := svc.GenerateReport(context.Background(), admin.String(), model.RoleAdmin,
			GenerateReportRequest{ReportType: model.ReportTypeMonthly, UserID: staff.String()})
		require.NoError(t, err)
		require.NotNil(t, expenseRepo.lastFilter.UserID)
		assert.Equal(t, staff, *expenseRepo.lastFilter.UserID)
		assert.Equal(t, int64(999_999), report.TotalExpenses)
	})

	t.Run("rejects a malformed user_id", func(t *testing.T) {
		svc, _ := reportServiceForTest()

		_, err := svc.GenerateReport(context.Background(), admin.String(), model.RoleAdmin,
			GenerateReportRequest{ReportType: model.ReportTypeMonthly, UserID: "not-a-uuid"})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}
