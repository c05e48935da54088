// Package models defines the data structures for the credit opportunity engine.
package models

import (
	"time"
)

// OpportunityStatus is the time bucket a classified contract falls into.
type OpportunityStatus string

const (
	StatusEligible   OpportunityStatus = "eligible"
	StatusSoon       OpportunityStatus = "soon"
	StatusMonitoring OpportunityStatus = "monitoring"
)

// ValidOpportunityStatuses returns all valid status values.
func ValidOpportunityStatuses() []OpportunityStatus {
	return []OpportunityStatus{StatusEligible, StatusSoon, StatusMonitoring}
}

// IsValid checks if the status is valid.
func (s OpportunityStatus) IsValid() bool {
	for _, valid := range ValidOpportunityStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// OpportunityPriority is the action-urgency tier of a classified contract.
// It is a separate axis from status: status drives display buckets, priority
// drives worklist ordering, and the two use different day thresholds.
type OpportunityPriority string

const (
	PriorityHigh   OpportunityPriority = "high"
	PriorityMedium OpportunityPriority = "medium"
	PriorityLow    OpportunityPriority = "low"
)

// ValidOpportunityPriorities returns all valid priority values.
func ValidOpportunityPriorities() []OpportunityPriority {
	return []OpportunityPriority{PriorityHigh, PriorityMedium, PriorityLow}
}

// IsValid checks if the priority is valid.
func (p OpportunityPriority) IsValid() bool {
	for _, valid := range ValidOpportunityPriorities() {
		if p == valid {
			return true
		}
	}
	return false
}

// ClassifiedContract is a contract annotated with its eligibility
// classification. Instances are recomputed on every refresh from an injected
// timestamp and are never persisted.
type ClassifiedContract struct {
	Contract
	EligibilityDate   time.Time           `json:"eligibility_date"`
	DaysUntilEligible int                 `json:"days_until_eligible"`
	IsEligible        bool                `json:"is_eligible"`
	Status            OpportunityStatus   `json:"status"`
	Priority          OpportunityPriority `json:"priority"`
	WindowMonths      int                 `json:"window_months"`
	WindowSource      RuleSource          `json:"window_source"`
}
