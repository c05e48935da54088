package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-opportunity-engine/internal/engine"
	"credit-opportunity-engine/internal/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func contractPaidOn(paymentDate time.Time) *models.Contract {
	return &models.Contract{
		ContractID:  "CT-001",
		ClientName:  "Maria Silva",
		BankName:    "Banco Alfa",
		ProductType: models.ProductTypeRefinancing,
		PaymentDate: &paymentDate,
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		months   int
		expected time.Time
	}{
		{"plain addition", date(2024, time.March, 15), 6, date(2024, time.September, 15)},
		{"year rollover", date(2024, time.October, 10), 6, date(2025, time.April, 10)},
		{"month-end clamp into leap February", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"month-end clamp into non-leap February", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"clamp into 30-day month", date(2024, time.March, 31), 1, date(2024, time.April, 30)},
		{"twelve months keeps day", date(2024, time.May, 20), 12, date(2025, time.May, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, engine.AddMonths(tt.start, tt.months))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name     string
		from     time.Time
		to       time.Time
		expected int
	}{
		{"same day", date(2024, time.June, 1), date(2024, time.June, 1), 0},
		{"forward", date(2024, time.June, 1), date(2024, time.June, 11), 10},
		{"backward", date(2024, time.June, 11), date(2024, time.June, 1), -10},
		{"time of day ignored", time.Date(2024, time.June, 1, 23, 59, 0, 0, time.UTC), time.Date(2024, time.June, 2, 0, 1, 0, 0, time.UTC), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, engine.DaysBetween(tt.from, tt.to))
		})
	}
}

func TestCalculate_MissingPaymentDate(t *testing.T) {
	contract := &models.Contract{
		ContractID:  "CT-002",
		ClientName:  "João Souza",
		BankName:    "Banco Alfa",
		ProductType: models.ProductTypeRefinancing,
	}

	_, err := engine.Calculate(contract, 6, date(2024, time.June, 1))
	assert.ErrorIs(t, err, models.ErrMissingPaymentDate)
}

func TestCalculate_EligibilityDateClampedToMonthEnd(t *testing.T) {
	// Paid Jan 31 2024 with a 1-month window: eligibility lands on leap-day
	// Feb 29, not Mar 2.
	contract := contractPaidOn(date(2024, time.January, 31))

	calc, err := engine.Calculate(contract, 1, date(2024, time.June, 1))
	require.NoError(t, err)

	assert.Equal(t, date(2024, time.February, 29), calc.EligibilityDate)
	assert.True(t, calc.IsEligible)
}

func TestCalculate_FutureEligibility(t *testing.T) {
	contract := contractPaidOn(date(2024, time.January, 10))
	now := date(2024, time.June, 1)

	calc, err := engine.Calculate(contract, 6, now)
	require.NoError(t, err)

	assert.Equal(t, date(2024, time.July, 10), calc.EligibilityDate)
	assert.False(t, calc.IsEligible)
	assert.Equal(t, 39, calc.RawDays)
	assert.Equal(t, 39, calc.DaysUntilEligible)
}

func TestCalculate_OverdueClampsReportedDays(t *testing.T) {
	contract := contractPaidOn(date(2023, time.June, 1))
	now := date(2024, time.June, 1)

	calc, err := engine.Calculate(contract, 6, now)
	require.NoError(t, err)

	assert.True(t, calc.IsEligible)
	assert.Negative(t, calc.RawDays)
	assert.Equal(t, 0, calc.DaysUntilEligible)
}

func TestCalculate_EligibleExactlyToday(t *testing.T) {
	contract := contractPaidOn(date(2023, time.December, 1))
	now := date(2024, time.June, 1)

	calc, err := engine.Calculate(contract, 6, now)
	require.NoError(t, err)

	assert.Equal(t, now, calc.EligibilityDate)
	assert.Equal(t, 0, calc.RawDays)
	assert.True(t, calc.IsEligible, "rawDays == 0 means eligible now")
}

func TestCalculate_FuturePaymentDateDoesNotCrash(t *testing.T) {
	// Caller-data invariant violation: payment date after now. The engine
	// computes a large positive distance instead of rejecting the input.
	contract := contractPaidOn(date(2025, time.June, 1))
	now := date(2024, time.June, 1)

	calc, err := engine.Calculate(contract, 6, now)
	require.NoError(t, err)

	assert.False(t, calc.IsEligible)
	assert.Greater(t, calc.DaysUntilEligible, 365)
}
