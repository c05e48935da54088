// Package handlers provides Lambda handlers for the credit opportunity engine.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	appConfig "credit-opportunity-engine/internal/config"
	"credit-opportunity-engine/internal/engine"
	"credit-opportunity-engine/internal/services/database"
	"credit-opportunity-engine/internal/utils"
)

// OpportunityHandler serves the opportunity dashboard view.
type OpportunityHandler struct {
	db           *database.DB
	contractRepo *database.ContractRepository
	ruleRepo     *database.BankRuleRepository
}

// NewOpportunityHandler creates a new opportunity view handler.
func NewOpportunityHandler() (*OpportunityHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &OpportunityHandler{
		db:           db,
		contractRepo: database.NewContractRepository(db),
		ruleRepo:     database.NewBankRuleRepository(db),
	}, nil
}

// Handle processes API Gateway requests for the opportunity view. Filter
// criteria come from query parameters; the timestamp is captured once here
// and threaded through the entire view build.
func (h *OpportunityHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger()

	headers := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "GET,OPTIONS",
		"Content-Type":                 "application/json",
	}

	if request.HTTPMethod == "OPTIONS" {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	view, err := h.buildView(ctx, CriteriaFromParams(request.QueryStringParameters))
	if err != nil {
		logger.Error("Failed to build opportunity view", utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to build opportunity view")
	}

	body, _ := json.Marshal(view)

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

func (h *OpportunityHandler) buildView(ctx context.Context, criteria engine.FilterCriteria) (*engine.OpportunityView, error) {
	contracts, err := h.contractRepo.GetAllTracked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load contracts: %w", err)
	}

	rules, err := h.ruleRepo.GetAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank rules: %w", err)
	}

	return engine.BuildOpportunityView(contracts, rules, time.Now().UTC(), criteria), nil
}

// Close cleans up resources.
func (h *OpportunityHandler) Close() {
	if h.db != nil {
		h.db.Close()
	}
}

// CriteriaFromParams maps query parameters onto filter criteria. Unknown
// parameters are ignored; missing ones default to the wildcard.
func CriteriaFromParams(params map[string]string) engine.FilterCriteria {
	return engine.FilterCriteria{
		ProductType: params["product_type"],
		Bank:        params["bank"],
		Status:      params["status"],
		Priority:    params["priority"],
		Search:      params["search"],
	}
}
