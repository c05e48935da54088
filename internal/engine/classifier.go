package engine

import (
	"time"

	"credit-opportunity-engine/internal/models"
)

// Classification thresholds, in days until eligibility. The status threshold
// answers "which display bucket"; the priority threshold answers "how urgent
// to act" and is intentionally tighter. They are separate axes and must not
// be collapsed.
const (
	SoonThresholdDays    = 5
	UrgencyThresholdDays = 3
)

// Classifier assigns each contract a status and priority from its resolved
// window and the injected timestamp. It holds no mutable state.
type Classifier struct {
	resolver *RuleResolver
}

// NewClassifier creates a classifier over the given bank rule set.
func NewClassifier(rules []*models.BankRule) *Classifier {
	return &Classifier{resolver: NewRuleResolver(rules)}
}

// Classify produces the classified view of a single contract as of now.
// Returns models.ErrMissingPaymentDate for contracts that cannot be
// classified; callers exclude them from every view.
func (c *Classifier) Classify(contract *models.Contract, now time.Time) (*models.ClassifiedContract, error) {
	resolution := c.resolver.Resolve(contract.ProductType, contract.BankName)

	calc, err := Calculate(contract, resolution.WindowMonths, now)
	if err != nil {
		return nil, err
	}

	return &models.ClassifiedContract{
		Contract:          *contract,
		EligibilityDate:   calc.EligibilityDate,
		DaysUntilEligible: calc.DaysUntilEligible,
		IsEligible:        calc.IsEligible,
		Status:            statusFor(calc),
		Priority:          priorityFor(calc),
		WindowMonths:      resolution.WindowMonths,
		WindowSource:      resolution.Source,
	}, nil
}

// ClassifySet classifies a batch of contracts against one shared timestamp,
// skipping contracts without a payment date. The skipped count is returned
// so callers can account for silent exclusions.
func (c *Classifier) ClassifySet(contracts []*models.Contract, now time.Time) ([]*models.ClassifiedContract, int) {
	classified := make([]*models.ClassifiedContract, 0, len(contracts))
	skipped := 0

	for _, contract := range contracts {
		cc, err := c.Classify(contract, now)
		if err != nil {
			skipped++
			continue
		}
		classified = append(classified, cc)
	}

	return classified, skipped
}

func statusFor(calc Calculation) models.OpportunityStatus {
	switch {
	case calc.IsEligible:
		return models.StatusEligible
	case calc.DaysUntilEligible <= SoonThresholdDays:
		return models.StatusSoon
	default:
		return models.StatusMonitoring
	}
}

func priorityFor(calc Calculation) models.OpportunityPriority {
	switch {
	case calc.IsEligible:
		return models.PriorityHigh
	case calc.DaysUntilEligible <= UrgencyThresholdDays:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}
