package engine

import (
	"time"

	"go.uber.org/zap"

	"credit-opportunity-engine/internal/models"
	"credit-opportunity-engine/internal/utils"
)

// OpportunityView is the composite dashboard payload: the three aggregate
// projections plus the filtered flat list, all derived from one shared
// classification pass over one shared timestamp.
type OpportunityView struct {
	Stats       Stats                        `json:"stats"`
	ByBank      []BankRollup                 `json:"by_bank"`
	Portability PortabilityBreakdown         `json:"portability"`
	Contracts   []*models.ClassifiedContract `json:"contracts"`
	Skipped     int                          `json:"skipped_contracts"`
	AsOf        time.Time                    `json:"as_of"`
}

// BuildOpportunityView runs the full pipeline: classify every contract once,
// fold the classified set into the aggregates, and apply the filter for the
// flat list. now is captured once by the caller per refresh; it is threaded
// through every stage so a contract cannot flip eligibility mid-pass and
// desynchronize the aggregates from the list.
func BuildOpportunityView(contracts []*models.Contract, rules []*models.BankRule, now time.Time, criteria FilterCriteria) *OpportunityView {
	logger := utils.GetLogger()

	classifier := NewClassifier(rules)
	classified, skipped := classifier.ClassifySet(contracts, now)

	logger.Info("Classified contract set",
		zap.Int("contracts", len(contracts)),
		zap.Int("classified", len(classified)),
		zap.Int("skipped", skipped),
		zap.Time("as_of", now),
	)

	projection := Project(classified, rules, now)
	filtered := Filter(classified, criteria)

	logger.Info("Built opportunity view",
		zap.Int("eligible_now", projection.Stats.EligibleNow),
		zap.Int("eligible_soon", projection.Stats.EligibleSoon),
		zap.Int("banks", len(projection.ByBank)),
		zap.Int("filtered", len(filtered)),
	)

	return &OpportunityView{
		Stats:       projection.Stats,
		ByBank:      projection.ByBank,
		Portability: projection.Portability,
		Contracts:   filtered,
		Skipped:     skipped,
		AsOf:        now,
	}
}
