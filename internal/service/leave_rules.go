package service

import (
	"time"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/shopspring/decimal"
)

// earnedLeaveDivisor: earned leave accrues at 1 day per 18 working days served
const earnedLeaveDivisor = 18

// CalculateWorkingDays counts working days in [start, end] inclusive.
// Friday is the weekly holiday; Saturday counts as a full working day.
func CalculateWorkingDays(start, end time.Time) int {
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Friday {
			days++
		}
	}
	return days
}

// CalculateEntitlement computes the entitled days for a user and policy in a
// given year. Users who joined before the year start get the full allotment.
// Mid-year joiners are pro-rated: monthly accrual grants days_per_year/12 per
// remaining month (joining month inclusive); earned leave accrues 1 day per
// 18 working days between joining and year end.
func CalculateEntitlement(joinedAt time.Time, policy *model.LeavePolicy, year int) decimal.Decimal {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	if !joinedAt.After(yearStart) {
		return policy.DaysPerYear
	}

	switch policy.AccrualMethod {
	case model.AccrualMonthly:
		monthsServed := 12 - int(joinedAt.Month()) + 1
		return policy.DaysPerYear.
			Div(decimal.NewFromInt(12)).
			Mul(decimal.NewFromInt(int64(monthsServed)))
	case model.AccrualPerWorkingDay:
		if policy.LeaveType == model.LeaveTypeEarned {
			workingDays := CalculateWorkingDays(joinedAt, yearEnd)
			return decimal.NewFromInt(int64(workingDays)).
				Div(decimal.NewFromInt(earnedLeaveDivisor)).
				Round(1)
		}
	}

	return policy.DaysPerYear
}

// ValidateLeaveRequest applies the policy-level checks that need no further
// database state: minimum notice and the consecutive-day cap. The balance and
// overlap checks live in the service since they read current rows.
func ValidateLeaveRequest(policy *model.LeavePolicy, start time.Time, daysRequested decimal.Decimal, today time.Time) error {
	noticeDays := int(start.Sub(today).Hours() / 24)
	if noticeDays < policy.MinNoticeDays {
		return apperr.Validation("Minimum %d days notice required", policy.MinNoticeDays)
	}

	if policy.MaxConsecutiveDays > 0 && daysRequested.GreaterThan(decimal.NewFromInt(int64(policy.MaxConsecutiveDays))) {
		return apperr.Validation("Maximum %d consecutive days allowed", policy.MaxConsecutiveDays)
	}

	return nil
}

// DatesOverlap reports whether [aStart, aEnd] and [bStart, bEnd] intersect
func DatesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}
