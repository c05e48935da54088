package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-opportunity-engine/internal/engine"
	"credit-opportunity-engine/internal/models"
)

func classifiedFixture() []*models.ClassifiedContract {
	return []*models.ClassifiedContract{
		{
			Contract: models.Contract{ContractID: "CT-1", ClientName: "Maria Silva", ClientTaxID: "123.456.789-09",
				ClientPhone: "(11) 98888-7777", BankName: "Banco Alfa", ProductType: models.ProductTypeRefinancing},
			DaysUntilEligible: 0, IsEligible: true,
			Status: models.StatusEligible, Priority: models.PriorityHigh,
		},
		{
			Contract: models.Contract{ContractID: "CT-2", ClientName: "João Souza", ClientTaxID: "987.654.321-00",
				ClientPhone: "(21) 97777-6666", BankName: "Banco Beta", ProductType: models.ProductTypePortability},
			DaysUntilEligible: 4, IsEligible: false,
			Status: models.StatusSoon, Priority: models.PriorityLow,
		},
		{
			Contract: models.Contract{ContractID: "CT-3", ClientName: "Ana Maria Lima", ClientTaxID: "111.222.333-44",
				ClientPhone: "(31) 96666-5555", BankName: "Banco Alfa", ProductType: models.ProductTypePortability},
			DaysUntilEligible: 2, IsEligible: false,
			Status: models.StatusSoon, Priority: models.PriorityMedium,
		},
		{
			Contract: models.Contract{ContractID: "CT-4", ClientName: "Carlos Dias", ClientTaxID: "555.666.777-88",
				ClientPhone: "(41) 95555-4444", BankName: "Banco Gama", ProductType: models.ProductTypeRefinancing},
			DaysUntilEligible: 40, IsEligible: false,
			Status: models.StatusMonitoring, Priority: models.PriorityLow,
		},
	}
}

func contractIDs(list []*models.ClassifiedContract) []string {
	ids := make([]string, len(list))
	for i, cc := range list {
		ids[i] = cc.ContractID
	}
	return ids
}

func TestFilter_Wildcards(t *testing.T) {
	fixture := classifiedFixture()

	for _, value := range []string{"", "all", "ALL", "  all  "} {
		criteria := engine.FilterCriteria{ProductType: value, Bank: value, Status: value, Priority: value}
		assert.Len(t, engine.Filter(fixture, criteria), len(fixture), "wildcard %q", value)
	}
}

func TestFilter_SingleCriteria(t *testing.T) {
	fixture := classifiedFixture()

	tests := []struct {
		name     string
		criteria engine.FilterCriteria
		want     []string
	}{
		{"by product type", engine.FilterCriteria{ProductType: "portability"}, []string{"CT-3", "CT-2"}},
		{"by bank case-insensitive", engine.FilterCriteria{Bank: "banco alfa"}, []string{"CT-1", "CT-3"}},
		{"by status", engine.FilterCriteria{Status: "soon"}, []string{"CT-3", "CT-2"}},
		{"by priority", engine.FilterCriteria{Priority: "low"}, []string{"CT-2", "CT-4"}},
		{"no match", engine.FilterCriteria{Bank: "Banco Delta"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Filter(fixture, tt.criteria)
			assert.Equal(t, tt.want, contractIDs(got))
		})
	}
}

func TestFilter_CriteriaAreANDCombined(t *testing.T) {
	fixture := classifiedFixture()

	// CT-2 and CT-3 are both "soon"; only CT-3 is also at Banco Alfa.
	got := engine.Filter(fixture, engine.FilterCriteria{Status: "soon", Bank: "Banco Alfa"})
	require.Len(t, got, 1)
	assert.Equal(t, "CT-3", got[0].ContractID)

	// Priority low + portability leaves only CT-2, excluding the low-priority
	// refinancing contract CT-4.
	got = engine.Filter(fixture, engine.FilterCriteria{Priority: "low", ProductType: "portability"})
	require.Len(t, got, 1)
	assert.Equal(t, "CT-2", got[0].ContractID)
}

func TestFilter_Search(t *testing.T) {
	fixture := classifiedFixture()

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"name substring case-insensitive", "maria", []string{"CT-1", "CT-3"}},
		{"tax id with punctuation", "987.654", []string{"CT-2"}},
		{"tax id bare digits", "987654321", []string{"CT-2"}},
		{"phone fragment", "98888", []string{"CT-1"}},
		{"letters not in any name", "xyz", []string{}},
		{"blank matches everything", "   ", []string{"CT-1", "CT-3", "CT-2", "CT-4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Filter(fixture, engine.FilterCriteria{Search: tt.search})
			assert.Equal(t, tt.want, contractIDs(got))
		})
	}
}

func TestFilter_SortedByDaysAscending(t *testing.T) {
	got := engine.Filter(classifiedFixture(), engine.FilterCriteria{})

	require.Len(t, got, 4)
	assert.Equal(t, []string{"CT-1", "CT-3", "CT-2", "CT-4"}, contractIDs(got))

	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].DaysUntilEligible, got[i].DaysUntilEligible)
	}
}

func TestFilter_StableOrderOnTies(t *testing.T) {
	twin := func(id string) *models.ClassifiedContract {
		return &models.ClassifiedContract{
			Contract:          models.Contract{ContractID: id, ClientName: "Cliente", BankName: "Banco Alfa", ProductType: models.ProductTypeRefinancing},
			DaysUntilEligible: 3,
			Status:            models.StatusSoon, Priority: models.PriorityMedium,
		}
	}
	fixture := []*models.ClassifiedContract{twin("CT-A"), twin("CT-B"), twin("CT-C")}

	for i := 0; i < 5; i++ {
		got := engine.Filter(fixture, engine.FilterCriteria{})
		assert.Equal(t, []string{"CT-A", "CT-B", "CT-C"}, contractIDs(got))
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	fixture := classifiedFixture()
	engine.Filter(fixture, engine.FilterCriteria{})
	assert.Equal(t, []string{"CT-1", "CT-2", "CT-3", "CT-4"}, contractIDs(fixture))
}
