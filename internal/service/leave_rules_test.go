package service

import (
	"testing"
	"time"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateWorkingDays_ExcludesFridaysOnly(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected int
	}{
		{
			// 2026-09-06 is a Sunday; the week contains one Friday (09-11)
			name:     "full week has six working days",
			start:    date(2026, time.September, 6),
			end:      date(2026, time.September, 12),
			expected: 6,
		},
		{
			name:     "saturday counts as a working day",
			start:    date(2026, time.September, 12), // Saturday
			end:      date(2026, time.September, 12),
			expected: 1,
		},
		{
			name:     "friday alone counts zero",
			start:    date(2026, time.September, 11), // Friday
			end:      date(2026, time.September, 11),
			expected: 0,
		},
		{
			name:     "two weeks exclude two fridays",
			start:    date(2026, time.September, 6),
			end:      date(2026, time.September, 19),
			expected: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateWorkingDays(tt.start, tt.end))
		})
	}
}

func TestCalculateEntitlement_FullYearForEarlyJoiners(t *testing.T) {
	policy := &model.LeavePolicy{
		LeaveType:     model.LeaveTypeCasual,
		DaysPerYear:   decimal.NewFromInt(10),
		AccrualMethod: model.AccrualYearly,
	}

	entitled := CalculateEntitlement(date(2020, time.March, 15), policy, 2026)
	assert.True(t, entitled.Equal(decimal.NewFromInt(10)), "got %s", entitled)
}

func TestCalculateEntitlement_MonthlyProRating(t *testing.T) {
	policy := &model.LeavePolicy{
		LeaveType:     model.LeaveTypeCasual,
		DaysPerYear:   decimal.NewFromInt(12),
		AccrualMethod: model.AccrualMonthly,
	}

	tests := []struct {
		name     string
		joined   time.Time
		expected int64
	}{
		{name: "july joiner gets six months", joined: date(2026, time.July, 10), expected: 6},
		{name: "december joiner gets one month", joined: date(2026, time.December, 1), expected: 1},
		{name: "february joiner gets eleven months", joined: date(2026, time.February, 20), expected: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entitled := CalculateEntitlement(tt.joined, policy, 2026)
			assert.True(t, entitled.Equal(decimal.NewFromInt(tt.expected)), "got %s", entitled)
		})
	}
}

func TestCalculateEntitlement_EarnedLeavePerWorkingDay(t *testing.T) {
	policy := &model.LeavePolicy{
		LeaveType:     model.LeaveTypeEarned,
		DaysPerYear:   decimal.NewFromInt(18),
		AccrualMethod: model.AccrualPerWorkingDay,
	}

	joined := date(2026, time.July, 1)
	workingDays := CalculateWorkingDays(joined, date(2026, time.December, 31))
	expected := decimal.NewFromInt(int64(workingDays)).
		Div(decimal.NewFromInt(18)).
		Round(1)

	entitled := CalculateEntitlement(joined, policy, 2026)
	assert.True(t, entitled.Equal(expected), "got %s want %s", entitled, expected)
}

func TestValidateLeaveRequest_MinimumNotice(t *testing.T) {
	policy := &model.LeavePolicy{MinNoticeDays: 3}
	today := date(2026, time.September, 1)

	err := ValidateLeaveRequest(policy, date(2026, time.September, 2), decimal.NewFromInt(1), today)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "Minimum 3 days notice")

	assert.NoError(t, ValidateLeaveRequest(policy, date(2026, time.September, 10), decimal.NewFromInt(1), today))
}

func TestValidateLeaveRequest_ConsecutiveDayCap(t *testing.T) {
	policy := &model.LeavePolicy{MaxConsecutiveDays: 5}
	today := date(2026, time.September, 1)
	start := date(2026, time.October, 1)

	err := ValidateLeaveRequest(policy, start, decimal.NewFromInt(6), today)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "Maximum 5 consecutive days")

	assert.NoError(t, ValidateLeaveRequest(policy, start, decimal.NewFromInt(5), today))
}

func TestValidateLeaveRequest_ZeroCapMeansUnlimited(t *testing.T) {
	policy := &model.LeavePolicy{MaxConsecutiveDays: 0}
	today := date(2026, time.September, 1)

	assert.NoError(t, ValidateLeaveRequest(policy, date(2026, time.October, 1), decimal.NewFromInt(90), today))
}

func TestDatesOverlap(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		expected                   bool
	}{
		{
			name:   "identical ranges overlap",
			aStart: date(2026, 9, 1), aEnd: date(2026, 9, 5),
			bStart: date(2026, 9, 1), bEnd: date(2026, 9, 5),
			expected: true,
		},
		{
			name:   "touching end dates overlap",
			aStart: date(2026, 9, 1), aEnd: date(2026, 9, 5),
			bStart: date(2026, 9, 5), bEnd: date(2026, 9, 10),
			expected: true,
		},
		{
			name:   "disjoint ranges do not overlap",
			aStart: date(2026, 9, 1), aEnd: date(2026, 9, 5),
			bStart: date(2026, 9, 6), bEnd: date(2026, 9, 10),
			expected: false,
		},
		{
			name:   "contained range overlaps",
			aStart: date(2026, 9, 2), aEnd: date(2026, 9, 3),
			bStart: date(2026, 9, 1), bEnd: date(2026, 9, 10),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DatesOverlap(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
		})
	}
}
