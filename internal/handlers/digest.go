// Package handlers provides Lambda handlers for the credit opportunity engine.
package handlers

import (
	"context"
	"fmt"
	"time"

	appConfig "credit-opportunity-engine/internal/config"
	"credit-opportunity-engine/internal/engine"
	"credit-opportunity-engine/internal/services/database"
	sesService "credit-opportunity-engine/internal/services/ses"
	"credit-opportunity-engine/internal/utils"
)

// DigestHandler builds the opportunity view on a schedule and mails the
// worklist summary to the sales team.
type DigestHandler struct {
	db           *database.DB
	contractRepo *database.ContractRepository
	ruleRepo     *database.BankRuleRepository
	mailer       *sesService.Service
	recipient    string
}

// NewDigestHandler creates a new digest handler.
func NewDigestHandler(ctx context.Context) (*DigestHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	mailer, err := sesService.NewService(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create SES service: %w", err)
	}

	return &DigestHandler{
		db:           db,
		contractRepo: database.NewContractRepository(db),
		ruleRepo:     database.NewBankRuleRepository(db),
		mailer:       mailer,
		recipient:    cfg.DigestRecipient,
	}, nil
}

// DigestResult summarizes a digest run.
type DigestResult struct {
	Message       string `json:"message"`
	EligibleNow   int    `json:"eligible_now"`
	EligibleSoon  int    `json:"eligible_soon"`
	TotalContacts int    `json:"total_monitored"`
	MessageID     string `json:"message_id,omitempty"`
}

// Handle runs one digest cycle. Triggered by an EventBridge schedule; the
// event payload is ignored.
func (h *DigestHandler) Handle(ctx context.Context) (DigestResult, error) {
	logger := utils.GetLogger()

	if h.recipient == "" {
		logger.Warn("Digest recipient not configured, skipping")
		return DigestResult{Message: "No recipient configured"}, nil
	}

	contracts, err := h.contractRepo.GetAllTracked(ctx)
	if err != nil {
		return DigestResult{}, fmt.Errorf("failed to load contracts: %w", err)
	}

	rules, err := h.ruleRepo.GetAllActive(ctx)
	if err != nil {
		return DigestResult{}, fmt.Errorf("failed to load bank rules: %w", err)
	}

	view := engine.BuildOpportunityView(contracts, rules, time.Now().UTC(), engine.FilterCriteria{})

	sent, err := h.mailer.SendWorklistDigest(ctx, h.recipient, view)
	if err != nil {
		return DigestResult{}, fmt.Errorf("failed to send digest: %w", err)
	}

	logger.Info("Sent worklist digest",
		utils.String("recipient", h.recipient),
		utils.Int("eligible_now", view.Stats.EligibleNow),
		utils.String("message_id", sent.MessageID))

	return DigestResult{
		Message:       "Digest sent",
		EligibleNow:   view.Stats.EligibleNow,
		EligibleSoon:  view.Stats.EligibleSoon,
		TotalContacts: view.Stats.TotalMonitored,
		MessageID:     sent.MessageID,
	}, nil
}

// Close cleans up resources.
func (h *DigestHandler) Close() {
	if h.db != nil {
		h.db.Close()
	}
}
