package engine

import (
	"time"

	"credit-opportunity-engine/internal/models"
)

// Calculation is the eligibility math for a single contract.
// RawDays keeps the signed day distance (negative = overdue) for internal
// consumers; DaysUntilEligible is the clamped value surfaced to callers so
// "overdue by N days" can never be misread as "N days remaining".
type Calculation struct {
	EligibilityDate   time.Time
	RawDays           int
	DaysUntilEligible int
	IsEligible        bool
}

// Calculate computes the eligibility date and day distance for a contract
// given its resolved window. The caller supplies now, captured once per
// aggregation pass; the calculator never reads the clock itself.
// Returns models.ErrMissingPaymentDate when the contract cannot be
// classified; this is an expected condition, not a failure.
func Calculate(contract *models.Contract, windowMonths int, now time.Time) (Calculation, error) {
	if contract.PaymentDate == nil {
		return Calculation{}, models.ErrMissingPaymentDate
	}

	eligibilityDate := AddMonths(*contract.PaymentDate, windowMonths)
	rawDays := DaysBetween(now, eligibilityDate)

	days := rawDays
	if days < 0 {
		days = 0
	}

	return Calculation{
		EligibilityDate:   eligibilityDate,
		RawDays:           rawDays,
		DaysUntilEligible: days,
		IsEligible:        rawDays <= 0,
	}, nil
}

// AddMonths adds calendar months to a date, preserving the day-of-month
// where valid and clamping to month-end otherwise (Jan 31 + 1 month =
// Feb 28/29). time.AddDate is not used because it normalizes overflow into
// the next month instead of clamping.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days from..to (positive when to is
// later). Both instants are truncated to civil dates so time-of-day never
// shifts the count.
func DaysBetween(from, to time.Time) int {
	fromDate := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDate := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDate.Sub(fromDate).Hours() / 24)
}

// SameDay reports whether two instants fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
