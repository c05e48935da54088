// Package models defines the data structures for the credit opportunity engine.
package models

import (
	"strings"
	"time"
)

// ProductType represents the kind of credit operation a contract records.
type ProductType string

const (
	ProductTypePortability ProductType = "portability"
	ProductTypeRefinancing ProductType = "refinancing"
	ProductTypeNewLoan     ProductType = "new_loan"
	ProductTypeCard        ProductType = "card"
)

// ValidProductTypes returns all valid product type values.
func ValidProductTypes() []ProductType {
	return []ProductType{
		ProductTypePortability,
		ProductTypeRefinancing,
		ProductTypeNewLoan,
		ProductTypeCard,
	}
}

// IsValid checks if the product type is valid.
func (p ProductType) IsValid() bool {
	for _, valid := range ValidProductTypes() {
		if p == valid {
			return true
		}
	}
	return false
}

// TracksEligibility reports whether contracts of this product type are fed
// into the opportunity engine. Only portability and refinancing operations
// have a follow-up eligibility window.
func (p ProductType) TracksEligibility() bool {
	return p == ProductTypePortability || p == ProductTypeRefinancing
}

// NormalizeProductType maps common variations (including Portuguese source
// data) to a canonical ProductType.
func NormalizeProductType(s string) ProductType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "portability", "portabilidade", "port":
		return ProductTypePortability
	case "refinancing", "refinanciamento", "refin", "refi":
		return ProductTypeRefinancing
	case "new_loan", "new loan", "novo", "novo_emprestimo", "novo emprestimo":
		return ProductTypeNewLoan
	case "card", "cartao", "cartão", "credit_card":
		return ProductTypeCard
	default:
		return ProductType(strings.ToLower(strings.TrimSpace(s)))
	}
}

// Contract represents a single paid loan/financing operation.
type Contract struct {
	ID             int64       `json:"id" db:"id"`
	ContractID     string      `json:"contract_id" db:"contract_id"`
	ClientName     string      `json:"client_name" db:"client_name"`
	ClientTaxID    string      `json:"client_tax_id" db:"client_tax_id"`
	ClientPhone    string      `json:"client_phone" db:"client_phone"`
	BankName       string      `json:"bank_name" db:"bank_name"`
	ProductType    ProductType `json:"product_type" db:"product_type"`
	PaymentDate    *time.Time  `json:"payment_date" db:"payment_date"`
	PotentialValue *float64    `json:"potential_value,omitempty" db:"potential_value"`
	BatchID        string      `json:"batch_id,omitempty" db:"batch_id"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
	IsActive       bool        `json:"is_active" db:"is_active"`
}

// ContractCreate represents the data needed to register a contract.
type ContractCreate struct {
	ContractID     string      `json:"contract_id" validate:"required,min=1,max=50"`
	ClientName     string      `json:"client_name" validate:"required"`
	ClientTaxID    string      `json:"client_tax_id"`
	ClientPhone    string      `json:"client_phone"`
	BankName       string      `json:"bank_name" validate:"required"`
	ProductType    ProductType `json:"product_type" validate:"required"`
	PaymentDate    *time.Time  `json:"payment_date"`
	PotentialValue *float64    `json:"potential_value,omitempty"`
	BatchID        string      `json:"batch_id,omitempty"`
}

// CSVContractRow represents a row from an uploaded contract CSV file.
type CSVContractRow struct {
	ContractID     string     `csv:"contract_id"`
	ClientName     string     `csv:"client_name"`
	ClientTaxID    string     `csv:"client_tax_id"`
	ClientPhone    string     `csv:"client_phone"`
	BankName       string     `csv:"bank_name"`
	ProductType    string     `csv:"product_type"`
	PaymentDate    *time.Time `csv:"payment_date"`
	PotentialValue *float64   `csv:"potential_value"`
}

// ToContractCreate converts a CSV row to a ContractCreate model.
func (r *CSVContractRow) ToContractCreate(batchID string) (*ContractCreate, error) {
	productType := NormalizeProductType(r.ProductType)
	if !productType.IsValid() {
		return nil, ErrInvalidProductType
	}

	return &ContractCreate{
		ContractID:     r.ContractID,
		ClientName:     r.ClientName,
		ClientTaxID:    r.ClientTaxID,
		ClientPhone:    r.ClientPhone,
		BankName:       r.BankName,
		ProductType:    productType,
		PaymentDate:    r.PaymentDate,
		PotentialValue: r.PotentialValue,
		BatchID:        batchID,
	}, nil
}

// BulkInsertResult contains the results of a bulk insert operation.
type BulkInsertResult struct {
	InsertedCount int      `json:"inserted_count"`
	FailedCount   int      `json:"failed_count"`
	Errors        []string `json:"errors,omitempty"`
}
