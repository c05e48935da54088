package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-opportunity-engine/internal/engine"
	"credit-opportunity-engine/internal/models"
)

func amount(v float64) *float64 {
	return &v
}

// fixtureContracts builds a mixed portfolio around now = 2024-06-01:
//   - CT-1 refinancing, Banco Alfa, eligible (paid 2023-10-01, 6m rule)
//   - CT-2 refinancing, Banco Alfa, crossing today (paid 2023-12-01)
//   - CT-3 refinancing, Banco Beta, soon (5 days out, default 6m window)
//   - CT-4 portability, Banco Beta, eligible (paid 2023-05-01)
//   - CT-5 portability, Banco Gama, monitoring (paid 2023-08-15)
func fixtureContracts() []*models.Contract {
	paid := func(t time.Time) *time.Time { return &t }

	return []*models.Contract{
		{ContractID: "CT-1", ClientName: "Maria Silva", BankName: "Banco Alfa", ProductType: models.ProductTypeRefinancing,
			PaymentDate: paid(date(2023, time.October, 1)), PotentialValue: amount(1500)},
		{ContractID: "CT-2", ClientName: "João Souza", BankName: "Banco Alfa", ProductType: models.ProductTypeRefinancing,
			PaymentDate: paid(date(2023, time.December, 1)), PotentialValue: amount(800)},
		{ContractID: "CT-3", ClientName: "Ana Lima", BankName: "Banco Beta", ProductType: models.ProductTypeRefinancing,
			PaymentDate: paid(date(2023, time.December, 6))},
		{ContractID: "CT-4", ClientName: "Carlos Dias", BankName: "Banco Beta", ProductType: models.ProductTypePortability,
			PaymentDate: paid(date(2023, time.May, 1)), PotentialValue: amount(5000)},
		{ContractID: "CT-5", ClientName: "Paula Reis", BankName: "Banco Gama", ProductType: models.ProductTypePortability,
			PaymentDate: paid(date(2023, time.August, 15))},
	}
}

func fixtureRules() []*models.BankRule {
	return []*models.BankRule{
		rule("Banco Alfa", 6, true),
		rule("Banco Ocioso", 4, true), // configured, zero contracts
	}
}

func projectFixture(t *testing.T) (*engine.Projection, []*models.ClassifiedContract) {
	t.Helper()

	now := date(2024, time.June, 1)
	classifier := engine.NewClassifier(fixtureRules())
	classified, skipped := classifier.ClassifySet(fixtureContracts(), now)
	require.Zero(t, skipped)

	return engine.Project(classified, fixtureRules(), now), classified
}

func TestProject_Stats(t *testing.T) {
	projection, _ := projectFixture(t)

	assert.Equal(t, 5, projection.Stats.TotalMonitored)
	// CT-1, CT-2 (crossing today), CT-4 are eligible.
	assert.Equal(t, 3, projection.Stats.EligibleNow)
	assert.Equal(t, 1, projection.Stats.EligibleSoon)
	assert.Equal(t, 1, projection.Stats.EligibleToday)
	assert.Equal(t, 1, projection.Stats.PortabilityEligible)
	assert.Equal(t, 2, projection.Stats.RefinancingEligible)
}

func TestProject_EligibleTodayIsSubsetOfEligible(t *testing.T) {
	projection, _ := projectFixture(t)
	assert.LessOrEqual(t, projection.Stats.EligibleToday, projection.Stats.EligibleNow)
}

func TestProject_ByBank(t *testing.T) {
	projection, _ := projectFixture(t)

	byName := make(map[string]engine.BankRollup)
	for _, rollup := range projection.ByBank {
		byName[rollup.BankName] = rollup
	}

	alfa := byName["Banco Alfa"]
	assert.Equal(t, 2, alfa.TotalContracts)
	assert.Equal(t, 2, alfa.EligibleNow)
	assert.Equal(t, 0, alfa.EligibleSoon)
	assert.InDelta(t, 2300, alfa.PotentialValue, 0.001)

	beta := byName["Banco Beta"]
	assert.Equal(t, 2, beta.TotalContracts)
	assert.Equal(t, 1, beta.EligibleNow)
	assert.Equal(t, 1, beta.EligibleSoon)
	assert.InDelta(t, 5000, beta.PotentialValue, 0.001)

	gama := byName["Banco Gama"]
	assert.Equal(t, 1, gama.TotalContracts)
	assert.Equal(t, 0, gama.EligibleNow)

	// A configured rule with no contracts still surfaces.
	idle, ok := byName["Banco Ocioso"]
	assert.True(t, ok)
	assert.Equal(t, 0, idle.TotalContracts)
	assert.Equal(t, 0, idle.EligibleNow)
}

func TestProject_ByBankSortedByEligibleNowDesc(t *testing.T) {
	projection, _ := projectFixture(t)

	require.NotEmpty(t, projection.ByBank)
	for i := 1; i < len(projection.ByBank); i++ {
		assert.GreaterOrEqual(t,
			projection.ByBank[i-1].EligibleNow,
			projection.ByBank[i].EligibleNow,
			"rollups must be ordered by eligible-now count descending",
		)
	}
	assert.Equal(t, "Banco Alfa", projection.ByBank[0].BankName)
}

func TestProject_AggregateListConsistency(t *testing.T) {
	projection, classified := projectFixture(t)

	sumEligible := 0
	for _, rollup := range projection.ByBank {
		sumEligible += rollup.EligibleNow
	}
	assert.Equal(t, projection.Stats.EligibleNow, sumEligible)

	filtered := engine.Filter(classified, engine.FilterCriteria{Status: "eligible"})
	assert.Equal(t, projection.Stats.EligibleNow, len(filtered))
}

func TestProject_PortabilityBreakdown(t *testing.T) {
	now := date(2024, time.June, 1)
	paid := func(daysAgo int) *time.Time {
		t := now.AddDate(0, 0, -daysAgo)
		return &t
	}

	contracts := []*models.Contract{
		{ContractID: "P-9", ClientName: "A", BankName: "Banco Beta", ProductType: models.ProductTypePortability, PaymentDate: paid(9 * 30)},
		{ContractID: "P-10", ClientName: "B", BankName: "Banco Beta", ProductType: models.ProductTypePortability, PaymentDate: paid(10*30 + 5)},
		{ContractID: "P-11", ClientName: "C", BankName: "Banco Beta", ProductType: models.ProductTypePortability, PaymentDate: paid(11*30 + 1)},
		{ContractID: "P-12", ClientName: "D", BankName: "Banco Beta", ProductType: models.ProductTypePortability, PaymentDate: paid(13 * 30)},
		{ContractID: "P-young", ClientName: "E", BankName: "Banco Beta", ProductType: models.ProductTypePortability, PaymentDate: paid(60)},
		{ContractID: "R-1", ClientName: "F", BankName: "Banco Beta", ProductType: models.ProductTypeRefinancing, PaymentDate: paid(11 * 30)},
	}

	classifier := engine.NewClassifier(nil)
	classified, _ := classifier.ClassifySet(contracts, now)
	projection := engine.Project(classified, nil, now)

	assert.Equal(t, 1, projection.Portability.Month9)
	assert.Equal(t, 1, projection.Portability.Month10)
	assert.Equal(t, 1, projection.Portability.Month11)
	assert.Equal(t, 1, projection.Portability.Month12Plus)
	// Only the 11-installment portability contract counts; refinancing and
	// younger contracts stay out.
	assert.Equal(t, 1, projection.Portability.ReachingIn5Days)
}
