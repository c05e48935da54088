package engine

import (
	"sort"
	"time"

	"credit-opportunity-engine/internal/models"
)

// Stats holds the global counters for the opportunity dashboard.
type Stats struct {
	TotalMonitored      int `json:"total_monitored"`
	EligibleNow         int `json:"eligible_now"`
	EligibleSoon        int `json:"eligible_soon"`
	EligibleToday       int `json:"eligible_today"`
	PortabilityEligible int `json:"portability_eligible"`
	RefinancingEligible int `json:"refinancing_eligible"`
}

// BankRollup aggregates classified contracts for a single bank.
type BankRollup struct {
	BankName       string  `json:"bank_name"`
	TotalContracts int     `json:"total_contracts"`
	EligibleNow    int     `json:"eligible_now"`
	EligibleSoon   int     `json:"eligible_soon"`
	PotentialValue float64 `json:"potential_value"`
}

// PortabilityBreakdown buckets portability contracts by elapsed installments,
// approximated as floor(days since payment / 30). The approximation ignores
// irregular payment calendars; it is preserved as-is so bucket membership
// stays stable across the product.
type PortabilityBreakdown struct {
	Month9          int `json:"month_9"`
	Month10         int `json:"month_10"`
	Month11         int `json:"month_11"`
	Month12Plus     int `json:"month_12_plus"`
	ReachingIn5Days int `json:"reaching_in_5_days"`
}

// Projection is the full aggregate output: global stats, per-bank rollups,
// and the portability installment breakdown. All three are folded from the
// same classified set, so they can never disagree with each other or with
// the flat list.
type Projection struct {
	Stats       Stats                `json:"stats"`
	ByBank      []BankRollup         `json:"by_bank"`
	Portability PortabilityBreakdown `json:"portability"`
}

// Project folds a classified contract set into the three aggregate views.
// Rules are passed so banks with a configured rule but no contracts still
// appear in the rollup (surfacing rules nobody is using yet). now must be
// the same timestamp used for classification.
func Project(classified []*models.ClassifiedContract, rules []*models.BankRule, now time.Time) *Projection {
	p := &Projection{}

	rollups := make(map[string]*BankRollup)
	for _, rule := range rules {
		key := models.NormalizeBankName(rule.BankName)
		if _, ok := rollups[key]; !ok {
			rollups[key] = &BankRollup{BankName: rule.BankName}
		}
	}

	for _, cc := range classified {
		p.Stats.TotalMonitored++

		if cc.IsEligible {
			p.Stats.EligibleNow++
			switch cc.ProductType {
			case models.ProductTypePortability:
				p.Stats.PortabilityEligible++
			case models.ProductTypeRefinancing:
				p.Stats.RefinancingEligible++
			}
		}
		if cc.Status == models.StatusSoon {
			p.Stats.EligibleSoon++
		}
		if SameDay(cc.EligibilityDate, now) {
			p.Stats.EligibleToday++
		}

		key := models.NormalizeBankName(cc.BankName)
		rollup, ok := rollups[key]
		if !ok {
			rollup = &BankRollup{BankName: cc.BankName}
			rollups[key] = rollup
		}
		rollup.TotalContracts++
		if cc.IsEligible {
			rollup.EligibleNow++
		}
		if cc.Status == models.StatusSoon {
			rollup.EligibleSoon++
		}
		if cc.PotentialValue != nil {
			rollup.PotentialValue += *cc.PotentialValue
		}

		if cc.ProductType == models.ProductTypePortability && cc.PaymentDate != nil {
			bucketPortability(&p.Portability, DaysBetween(*cc.PaymentDate, now))
		}
	}

	p.ByBank = make([]BankRollup, 0, len(rollups))
	for _, rollup := range rollups {
		p.ByBank = append(p.ByBank, *rollup)
	}
	// Sales-relevant banks first: eligible-now descending, name as tiebreak
	// so output order is deterministic.
	sort.Slice(p.ByBank, func(i, j int) bool {
		if p.ByBank[i].EligibleNow != p.ByBank[j].EligibleNow {
			return p.ByBank[i].EligibleNow > p.ByBank[j].EligibleNow
		}
		return p.ByBank[i].BankName < p.ByBank[j].BankName
	})

	return p
}

func bucketPortability(b *PortabilityBreakdown, elapsedDays int) {
	switch installments := elapsedDays / 30; {
	case installments >= 12:
		b.Month12Plus++
	case installments == 11:
		b.Month11++
		b.ReachingIn5Days++
	case installments == 10:
		b.Month10++
	case installments == 9:
		b.Month9++
	}
}
