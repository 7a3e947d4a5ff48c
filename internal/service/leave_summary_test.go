package service

import (
	"testing"
	"time"

	"backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaveApp(leaveType, status string, start time.Time, days float64) model.LeaveApplication {
	return model.LeaveApplication{
		LeaveType:     leaveType,
		Status:        status,
		StartDate:     start,
		EndDate:       start,
		DaysRequested: decimal.NewFromFloat(days),
		AppliedDate:   start.AddDate(0, 0, -7),
	}
}

func TestBuildLeaveSummary(t *testing.T) {
	march := date(2026, time.March, 10)
	april := date(2026, time.April, 2)

	approved := leaveApp(model.LeaveTypeCasual, model.LeaveStatusApproved, march, 2)
	decidedAt := march.AddDate(0, 0, -4) // 3 days after filing
	approved.ApprovalDate = &decidedAt

	rejected := leaveApp(model.LeaveTypeSick, model.LeaveStatusRejected, march, 1)
	rejectedAt := march.AddDate(0, 0, -2) // 5 days after filing
	rejected.ApprovalDate = &rejectedAt

	pending := leaveApp(model.LeaveTypeCasual, model.LeaveStatusPending, april, 0.5)

	summary := buildLeaveSummary(2026, []model.LeaveApplication{approved, rejected, pending})

	assert.Equal(t, 2026, summary.Year)
	assert.Equal(t, 3, summary.TotalApplications)
	assert.Equal(t, 1, summary.Approved)
	assert.Equal(t, 1, summary.Rejected)
	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, "2", summary.TotalDaysTaken)

	casual, ok := summary.ByLeaveType[model.LeaveTypeCasual]
	require.True(t, ok)
	assert.Equal(t, 2, casual.Count)
	assert.Equal(t, "2.5", casual.Days)
	assert.Equal(t, 1, casual.Approved)
	assert.Equal(t, 1, casual.Pending)

	sick := summary.ByLeaveType[model.LeaveTypeSick]
	assert.Equal(t, 1, sick.Rejected)

	// Only approved days count toward the month's taken days
	marchSummary := summary.ByMonth["March"]
	assert.Equal(t, 2, marchSummary.Count)
	assert.Equal(t, "2", marchSummary.Days)
	aprilSummary := summary.ByMonth["April"]
	assert.Equal(t, 1, aprilSummary.Count)
	assert.Equal(t, "0", aprilSummary.Days)

	// One decision took 3 days, the other 5
	assert.InDelta(t, 4.0, summary.AverageApprovalDays, 0.0001)
}

func TestBuildLeaveSummary_Empty(t *testing.T) {
	summary := buildLeaveSummary(2026, nil)
	assert.Equal(t, 0, summary.TotalApplications)
	assert.Equal(t, "0", summary.TotalDaysTaken)
	assert.Empty(t, summary.ByLeaveType)
	assert.Empty(t, summary.ByMonth)
	assert.Equal(t, 0.0, summary.AverageApprovalDays)
}
