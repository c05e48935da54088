// Package models defines the data structures for the credit opportunity engine.
package models

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrInvalidProductType  = errors.New("invalid product type")
	ErrMissingPaymentDate  = errors.New("contract has no payment date")
	ErrInvalidWindowMonths = errors.New("window months must be positive")
	ErrEmptyBankName       = errors.New("bank_name cannot be empty")
	ErrEmptyContractID     = errors.New("contract_id cannot be empty")
	ErrEmptyClientName     = errors.New("client_name cannot be empty")
)

// ValidateContractCreate validates contract registration data.
func ValidateContractCreate(c *ContractCreate) error {
	if strings.TrimSpace(c.ContractID) == "" {
		return ErrEmptyContractID
	}

	if strings.TrimSpace(c.ClientName) == "" {
		return ErrEmptyClientName
	}

	if strings.TrimSpace(c.BankName) == "" {
		return ErrEmptyBankName
	}

	if !c.ProductType.IsValid() {
		return ErrInvalidProductType
	}

	return nil
}

// ValidateBankRuleCreate validates bank rule registration data.
func ValidateBankRuleCreate(r *BankRuleCreate) error {
	if strings.TrimSpace(r.BankName) == "" {
		return ErrEmptyBankName
	}

	if r.WindowMonths <= 0 {
		return ErrInvalidWindowMonths
	}

	return nil
}
