// Package handlers provides Lambda handlers for the credit opportunity engine.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"

	appConfig "credit-opportunity-engine/internal/config"
	"credit-opportunity-engine/internal/services/database"
)

// HealthHandler reports service and database health. Database connectivity
// is optional at construction so the endpoint still answers when Postgres
// is down.
type HealthHandler struct {
	db           *database.DB
	contractRepo *database.ContractRepository
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() (*HealthHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return &HealthHandler{}, nil
	}

	db, err := database.New(cfg)
	if err != nil {
		return &HealthHandler{}, nil
	}

	return &HealthHandler{
		db:           db,
		contractRepo: database.NewContractRepository(db),
	}, nil
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status             string `json:"status"`
	Timestamp          string `json:"timestamp"`
	Service            string `json:"service"`
	Version            string `json:"version"`
	Stage              string `json:"stage"`
	Database           string `json:"database,omitempty"`
	MonitoredContracts *int64 `json:"monitored_contracts,omitempty"`
}

// Handle processes health check requests. A reachable database upgrades the
// payload with the monitored contract count; an unreachable one degrades the
// status and the HTTP code.
func (h *HealthHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := map[string]string{
		"Access-Control-Allow-Origin": "*",
		"Content-Type":                "application/json",
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "credit-opportunity-engine",
		Version:   getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
		Stage:     getEnvOrDefault("STAGE", "unknown"),
	}

	switch {
	case h.db == nil:
		response.Database = "not configured"
	case h.db.HealthCheck(ctx) != nil:
		response.Database = "disconnected"
		response.Status = "degraded"
	default:
		response.Database = "connected"
		if count, err := h.contractRepo.Count(ctx); err == nil {
			response.MonitoredContracts = &count
		}
	}

	statusCode := http.StatusOK
	if response.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	body, _ := json.Marshal(response)

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// Close cleans up resources.
func (h *HealthHandler) Close() {
	if h.db != nil {
		h.db.Close()
	}
}

// getEnvOrDefault returns environment variable or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
