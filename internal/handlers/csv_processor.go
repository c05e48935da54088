// Package handlers provides Lambda handlers for the credit opportunity engine.
package handlers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appConfig "credit-opportunity-engine/internal/config"
	"credit-opportunity-engine/internal/services/database"
	"credit-opportunity-engine/internal/utils"
)

// CSVProcessorHandler handles S3 events for contract CSV ingestion.
type CSVProcessorHandler struct {
	s3Client     *s3.Client
	db           *database.DB
	contractRepo *database.ContractRepository
}

// NewCSVProcessorHandler creates a new CSV processor handler.
func NewCSVProcessorHandler() (*CSVProcessorHandler, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &CSVProcessorHandler{
		s3Client:     s3.NewFromConfig(awsCfg),
		db:           db,
		contractRepo: database.NewContractRepository(db),
	}, nil
}

// CSVProcessResult is the result of processing a contract CSV file.
type CSVProcessResult struct {
	Message  string   `json:"message"`
	BatchID  string   `json:"batch_id"`
	Inserted int      `json:"inserted"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Handle processes S3 events for uploaded contract CSV files.
func (h *CSVProcessorHandler) Handle(ctx context.Context, s3Event events.S3Event) (CSVProcessResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		return CSVProcessResult{Message: "No records to process"}, nil
	}

	record := s3Event.Records[0]
	bucket := record.S3.Bucket.Name
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return CSVProcessResult{}, fmt.Errorf("failed to decode S3 key: %w", err)
	}

	logger.Info("Processing contract CSV",
		utils.String("bucket", bucket),
		utils.String("key", key))

	csvContent, err := h.downloadCSV(ctx, bucket, key)
	if err != nil {
		logger.Error("Failed to download CSV", utils.Error(err))
		return CSVProcessResult{}, fmt.Errorf("failed to download CSV: %w", err)
	}

	batchID := generateBatchID(key)

	parser := utils.NewCSVParser()
	contracts, parseErrors := parser.ParseContracts(csvContent, batchID)

	if len(contracts) == 0 {
		errMsgs := make([]string, len(parseErrors))
		for i, e := range parseErrors {
			errMsgs[i] = e.Error()
		}
		return CSVProcessResult{
			Message: "No valid contracts found in CSV",
			BatchID: batchID,
			Errors:  errMsgs,
		}, nil
	}

	logger.Info("Parsed contract CSV",
		utils.String("batchID", batchID),
		utils.Int("validContracts", len(contracts)),
		utils.Int("parseErrors", len(parseErrors)))

	result, err := h.contractRepo.BulkInsert(ctx, contracts)
	if err != nil {
		logger.Error("Failed to insert contracts", utils.Error(err))
		return CSVProcessResult{}, fmt.Errorf("failed to insert contracts: %w", err)
	}

	logger.Info("Inserted contracts",
		utils.String("batchID", batchID),
		utils.Int("inserted", result.InsertedCount),
		utils.Int("failed", result.FailedCount))

	// Combine parse errors with insert errors
	allErrors := make([]string, 0)
	for _, e := range parseErrors {
		allErrors = append(allErrors, e.Error())
	}
	allErrors = append(allErrors, result.Errors...)

	// Limit errors in response
	if len(allErrors) > 10 {
		allErrors = allErrors[:10]
	}

	return CSVProcessResult{
		Message:  "CSV processed successfully",
		BatchID:  batchID,
		Inserted: result.InsertedCount,
		Failed:   result.FailedCount + len(parseErrors),
		Errors:   allErrors,
	}, nil
}

// downloadCSV downloads CSV content from S3.
func (h *CSVProcessorHandler) downloadCSV(ctx context.Context, bucket, key string) (string, error) {
	output, err := h.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return "", err
	}
	defer output.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, output.Body); err != nil {
		return "", err
	}

	content := buf.String()
	if content == "" {
		return "", fmt.Errorf("CSV file is empty")
	}

	return content, nil
}

// generateBatchID generates a unique batch ID for this upload.
func generateBatchID(key string) string {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	hash := sha256.Sum256([]byte(key + timestamp))
	return hex.EncodeToString(hash[:])[:16]
}
