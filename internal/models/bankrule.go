// Package models defines the data structures for the credit opportunity engine.
package models

import (
	"strings"
	"time"
)

// BankRule defines a bank-specific eligibility window for refinancing.
// Portability never consults these rules; its window is fixed by regulation.
type BankRule struct {
	ID           int64     `json:"id" db:"id"`
	BankName     string    `json:"bank_name" db:"bank_name"`
	WindowMonths int       `json:"window_months" db:"window_months"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// BankRuleCreate represents the data needed to register a bank rule.
type BankRuleCreate struct {
	BankName     string `json:"bank_name" validate:"required"`
	WindowMonths int    `json:"window_months" validate:"required,gte=1"`
	IsActive     bool   `json:"is_active"`
}

// NormalizeBankName produces the canonical form used for rule matching.
// Matching is trim + lower-case so "Banco Alfa " and "banco alfa" resolve
// to the same rule.
func NormalizeBankName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RuleSource indicates where a resolved eligibility window came from.
type RuleSource string

const (
	// RuleSourceFixed is the regulatory portability window.
	RuleSourceFixed RuleSource = "fixed"
	// RuleSourceBank is a configured bank-specific rule.
	RuleSourceBank RuleSource = "bank_rule"
	// RuleSourceDefault is the fallback used when no active rule matches.
	RuleSourceDefault RuleSource = "default"
)
