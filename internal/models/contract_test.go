package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-opportunity-engine/internal/models"
)

func TestNormalizeProductType(t *testing.T) {
	tests := []struct {
		input string
		want  models.ProductType
	}{
		{"portability", models.ProductTypePortability},
		{"Portabilidade", models.ProductTypePortability},
		{"  PORT  ", models.ProductTypePortability},
		{"refinancing", models.ProductTypeRefinancing},
		{"Refinanciamento", models.ProductTypeRefinancing},
		{"refin", models.ProductTypeRefinancing},
		{"novo emprestimo", models.ProductTypeNewLoan},
		{"cartão", models.ProductTypeCard},
		{"credit_card", models.ProductTypeCard},
		{"consorcio", models.ProductType("consorcio")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, models.NormalizeProductType(tt.input))
		})
	}
}

func TestProductType_IsValid(t *testing.T) {
	for _, pt := range models.ValidProductTypes() {
		assert.True(t, pt.IsValid(), string(pt))
	}
	assert.False(t, models.ProductType("consorcio").IsValid())
	assert.False(t, models.ProductType("").IsValid())
}

func TestProductType_TracksEligibility(t *testing.T) {
	assert.True(t, models.ProductTypePortability.TracksEligibility())
	assert.True(t, models.ProductTypeRefinancing.TracksEligibility())
	assert.False(t, models.ProductTypeNewLoan.TracksEligibility())
	assert.False(t, models.ProductTypeCard.TracksEligibility())
}

func TestNormalizeBankName(t *testing.T) {
	assert.Equal(t, "banco alfa", models.NormalizeBankName("  Banco Alfa "))
	assert.Equal(t, models.NormalizeBankName("BANCO BETA"), models.NormalizeBankName("banco beta"))
	assert.Equal(t, "", models.NormalizeBankName("   "))
}

func TestCSVContractRow_ToContractCreate(t *testing.T) {
	paid := time.Date(2023, time.December, 6, 0, 0, 0, 0, time.UTC)
	value := 1500.0

	row := &models.CSVContractRow{
		ContractID:     "CT-2023-001",
		ClientName:     "Maria Silva",
		ClientTaxID:    "123.456.789-09",
		ClientPhone:    "(11) 98888-7777",
		BankName:       "Banco Alfa",
		ProductType:    "Refinanciamento",
		PaymentDate:    &paid,
		PotentialValue: &value,
	}

	create, err := row.ToContractCreate("batch-abc")
	require.NoError(t, err)
	assert.Equal(t, "CT-2023-001", create.ContractID)
	assert.Equal(t, models.ProductTypeRefinancing, create.ProductType)
	assert.Equal(t, "batch-abc", create.BatchID)
	require.NotNil(t, create.PaymentDate)
	assert.Equal(t, paid, *create.PaymentDate)
	require.NotNil(t, create.PotentialValue)
	assert.InDelta(t, 1500.0, *create.PotentialValue, 0.001)
}

func TestCSVContractRow_ToContractCreate_InvalidProductType(t *testing.T) {
	row := &models.CSVContractRow{
		ContractID:  "CT-2023-002",
		ClientName:  "João Souza",
		BankName:    "Banco Beta",
		ProductType: "consorcio",
	}

	_, err := row.ToContractCreate("batch-abc")
	assert.ErrorIs(t, err, models.ErrInvalidProductType)
}

func TestValidateContractCreate(t *testing.T) {
	valid := func() *models.ContractCreate {
		return &models.ContractCreate{
			ContractID:  "CT-1",
			ClientName:  "Maria Silva",
			BankName:    "Banco Alfa",
			ProductType: models.ProductTypePortability,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*models.ContractCreate)
		wantErr error
	}{
		{"valid", func(c *models.ContractCreate) {}, nil},
		{"blank contract id", func(c *models.ContractCreate) { c.ContractID = "  " }, models.ErrEmptyContractID},
		{"blank client name", func(c *models.ContractCreate) { c.ClientName = "" }, models.ErrEmptyClientName},
		{"blank bank name", func(c *models.ContractCreate) { c.BankName = "" }, models.ErrEmptyBankName},
		{"invalid product type", func(c *models.ContractCreate) { c.ProductType = "consorcio" }, models.ErrInvalidProductType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := models.ValidateContractCreate(c)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBankRuleCreate(t *testing.T) {
	assert.NoError(t, models.ValidateBankRuleCreate(&models.BankRuleCreate{
		BankName: "Banco Alfa", WindowMonths: 6, IsActive: true,
	}))

	assert.ErrorIs(t, models.ValidateBankRuleCreate(&models.BankRuleCreate{
		BankName: " ", WindowMonths: 6,
	}), models.ErrEmptyBankName)

	assert.ErrorIs(t, models.ValidateBankRuleCreate(&models.BankRuleCreate{
		BankName: "Banco Alfa", WindowMonths: 0,
	}), models.ErrInvalidWindowMonths)

	assert.ErrorIs(t, models.ValidateBankRuleCreate(&models.BankRuleCreate{
		BankName: "Banco Alfa", WindowMonths: -3,
	}), models.ErrInvalidWindowMonths)
}

func TestOpportunityStatusAndPriority_IsValid(t *testing.T) {
	for _, s := range models.ValidOpportunityStatuses() {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, models.OpportunityStatus("archived").IsValid())

	for _, p := range models.ValidOpportunityPriorities() {
		assert.True(t, p.IsValid(), string(p))
	}
	assert.False(t, models.OpportunityPriority("urgent").IsValid())
}
