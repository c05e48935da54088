// Package handlers provides Lambda handlers for the credit opportunity engine.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	s3service "credit-opportunity-engine/internal/services/s3"
	"credit-opportunity-engine/internal/utils"
)

const uploadURLExpiryMinutes = 60

// PresignedURLHandler issues presigned S3 PUT URLs for contract CSV uploads.
// Objects land under uploads/contracts/<yyyy/mm/dd>/; the bucket notification
// then routes them to the CSV processor Lambda.
type PresignedURLHandler struct {
	storage *s3service.Service
}

// NewPresignedURLHandler creates a new presigned URL handler.
func NewPresignedURLHandler() (*PresignedURLHandler, error) {
	storage, err := s3service.NewService(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 service: %w", err)
	}

	return &PresignedURLHandler{storage: storage}, nil
}

// PresignedURLResponse is the response structure for presigned URL requests.
type PresignedURLResponse struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Handle processes API Gateway requests for upload URLs. The filename query
// parameter is optional; a generated name is used when absent.
func (h *PresignedURLHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
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

	filename := request.QueryStringParameters["filename"]
	if filename == "" {
		filename = "contracts_" + uuid.New().String()[:8] + ".csv"
	}

	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return errorResponse(headers, http.StatusBadRequest, "Only CSV files are accepted")
	}

	key := fmt.Sprintf("uploads/contracts/%s/%s_%s",
		time.Now().UTC().Format("2006/01/02"),
		uuid.New().String(),
		sanitizeFilename(filename))

	result, err := h.storage.GeneratePresignedUploadURL(ctx, key, "text/csv", uploadURLExpiryMinutes)
	if err != nil {
		logger.Error("Failed to generate upload URL", utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to generate upload URL")
	}

	body, _ := json.Marshal(PresignedURLResponse{
		UploadURL: result.URL,
		Key:       result.Key,
		ExpiresAt: result.ExpiresAt,
	})

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// sanitizeFilename strips characters that are unsafe in S3 keys and caps the
// length so client-supplied names cannot blow up the key.
func sanitizeFilename(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}

	safe := b.String()
	if len(safe) > 100 {
		safe = safe[:100]
	}
	return safe
}

// errorResponse creates a JSON error response with the given status.
func errorResponse(headers map[string]string, statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(map[string]string{
		"error":   http.StatusText(statusCode),
		"message": message,
	})

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}
