// Package engine implements the contract eligibility and opportunity
// aggregation pipeline: window resolution, eligibility calculation,
// classification, aggregation, and filtering. Every entry point is a pure
// function of (contracts, rules, now) and is safe for concurrent readers.
package engine

import (
	"credit-opportunity-engine/internal/models"
)

// Eligibility window constants. Single change point if business rules shift.
const (
	// PortabilityWindowMonths is the regulatory minimum-installments window
	// for portability. It is never overridden by bank rules.
	PortabilityWindowMonths = 12

	// DefaultRefinancingWindowMonths is the fallback window used when a bank
	// has no active rule configured.
	DefaultRefinancingWindowMonths = 6
)

// Resolution is the outcome of a window lookup. Source distinguishes an
// explicit rule match from the silent default fallback so callers can keep
// the fallback observable without treating it as an error.
type Resolution struct {
	WindowMonths int               `json:"window_months"`
	Source       models.RuleSource `json:"source"`
}

// RuleResolver resolves the applicable eligibility window for a contract.
// The rule index is built once at construction; lookups are O(1).
type RuleResolver struct {
	rulesByBank map[string]*models.BankRule
}

// NewRuleResolver builds a resolver over the given rule set. Inactive rules
// are excluded from the index so lookups fall through to the default.
func NewRuleResolver(rules []*models.BankRule) *RuleResolver {
	index := make(map[string]*models.BankRule, len(rules))
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		index[models.NormalizeBankName(rule.BankName)] = rule
	}
	return &RuleResolver{rulesByBank: index}
}

// Resolve returns the eligibility window for a product type and bank.
// Portability always gets the fixed regulatory window, even when a bank rule
// exists for that bank. Everything else uses the bank's active rule when one
// matches (case-insensitively), otherwise the default fallback.
func (r *RuleResolver) Resolve(productType models.ProductType, bankName string) Resolution {
	if productType == models.ProductTypePortability {
		return Resolution{
			WindowMonths: PortabilityWindowMonths,
			Source:       models.RuleSourceFixed,
		}
	}

	if rule, ok := r.rulesByBank[models.NormalizeBankName(bankName)]; ok {
		return Resolution{
			WindowMonths: rule.WindowMonths,
			Source:       models.RuleSourceBank,
		}
	}

	return Resolution{
		WindowMonths: DefaultRefinancingWindowMonths,
		Source:       models.RuleSourceDefault,
	}
}
