package engine

import (
	"sort"
	"strings"

	"credit-opportunity-engine/internal/models"
)

// FilterAll is the wildcard value for any filter criterion. An empty string
// is treated the same way so zero-value criteria select everything.
const FilterAll = "all"

// FilterCriteria selects a subset of classified contracts. Criteria are
// AND-combined; each field is an independent predicate.
type FilterCriteria struct {
	ProductType string `json:"product_type"`
	Bank        string `json:"bank"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Search      string `json:"search"`
}

// Filter applies the criteria and returns a display-ready list sorted
// ascending by days until eligibility (most urgent first). The sort is
// stable: ties keep the original contract order, so identical inputs always
// render in the same row order.
func Filter(classified []*models.ClassifiedContract, criteria FilterCriteria) []*models.ClassifiedContract {
	result := make([]*models.ClassifiedContract, 0, len(classified))
	for _, cc := range classified {
		if matches(cc, criteria) {
			result = append(result, cc)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DaysUntilEligible < result[j].DaysUntilEligible
	})

	return result
}

func matches(cc *models.ClassifiedContract, criteria FilterCriteria) bool {
	if !isWildcard(criteria.ProductType) &&
		models.NormalizeProductType(criteria.ProductType) != cc.ProductType {
		return false
	}

	if !isWildcard(criteria.Bank) &&
		models.NormalizeBankName(criteria.Bank) != models.NormalizeBankName(cc.BankName) {
		return false
	}

	if !isWildcard(criteria.Status) &&
		models.OpportunityStatus(strings.ToLower(strings.TrimSpace(criteria.Status))) != cc.Status {
		return false
	}

	if !isWildcard(criteria.Priority) &&
		models.OpportunityPriority(strings.ToLower(strings.TrimSpace(criteria.Priority))) != cc.Priority {
		return false
	}

	return matchesSearch(cc, criteria.Search)
}

// matchesSearch checks the free-text criterion: case-insensitive substring
// on the client name, digit-normalized substring on tax id and phone. The
// digit comparison only applies when the query actually contains digits;
// otherwise a stripped-empty query would match every contract.
func matchesSearch(cc *models.ClassifiedContract, search string) bool {
	query := strings.TrimSpace(search)
	if query == "" {
		return true
	}

	if strings.Contains(strings.ToLower(cc.ClientName), strings.ToLower(query)) {
		return true
	}

	digits := digitsOnly(query)
	if digits == "" {
		return false
	}

	return strings.Contains(digitsOnly(cc.ClientTaxID), digits) ||
		strings.Contains(digitsOnly(cc.ClientPhone), digits)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isWildcard(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "" || v == FilterAll
}
