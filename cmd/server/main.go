// Package main provides a local HTTP server for development and testing.
// It exposes the opportunity dashboard API: the classified contract worklist,
// the aggregate views, bank rule management, and contract CSV ingestion.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"credit-opportunity-engine/internal/config"
	"credit-opportunity-engine/internal/engine"
	"credit-opportunity-engine/internal/models"
	"credit-opportunity-engine/internal/services/database"
	"credit-opportunity-engine/internal/utils"
)

// Server holds all dependencies
type Server struct {
	db           *database.DB
	contractRepo *database.ContractRepository
	ruleRepo     *database.BankRuleRepository
	config       *config.Config
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// UploadResponse contains CSV upload processing results
type UploadResponse struct {
	BatchID        string   `json:"batch_id"`
	TotalRows      int      `json:"total_rows"`
	ValidContracts int      `json:"valid_contracts"`
	Inserted       int      `json:"inserted"`
	Errors         int      `json:"errors"`
	ErrorSample    []string `json:"error_sample,omitempty"`
	ProcessingMs   int64    `json:"processing_ms"`
}

func main() {
	// Initialize logger first
	if err := utils.InitLogger("info"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load config from environment: %v", err)
		cfg = &config.Config{}
	}

	// Initialize database
	db, err := database.New(cfg)
	if err != nil {
		log.Printf("Warning: Could not connect to database: %v", err)
		log.Println("Server will run in demo mode without database")
	}

	server := &Server{
		db:     db,
		config: cfg,
	}

	if db != nil {
		server.contractRepo = database.NewContractRepository(db)
		server.ruleRepo = database.NewBankRuleRepository(db)
	}

	// Setup routes
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", server.healthHandler)
	mux.HandleFunc("/api/health", server.healthHandler)

	// Opportunity views
	mux.HandleFunc("/api/opportunities", server.opportunitiesHandler)
	mux.HandleFunc("/api/opportunities/stats", server.statsHandler)
	mux.HandleFunc("/api/banks", server.banksHandler)

	// Bank rules
	mux.HandleFunc("/api/rules", server.rulesHandler)

	// Contract CSV ingestion
	mux.HandleFunc("/api/upload", server.uploadHandler)

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	port := getEnvOrDefault("PORT", "8080")
	addr := fmt.Sprintf("0.0.0.0:%s", port)

	log.Printf("Credit Opportunity Engine API Server")
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("Health: http://localhost:%s/health", port)

	serverErr := http.ListenAndServe(addr, handler)
	if serverErr != nil {
		log.Fatalf("Server failed: %v", serverErr)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	dbStatus := "disconnected"
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err == nil {
			dbStatus = "connected"
		}
	}

	response := Response{
		Success: true,
		Message: "Credit Opportunity Engine API is running",
		Data: map[string]interface{}{
			"status":    "healthy",
			"database":  dbStatus,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
		},
	}

	writeJSON(w, http.StatusOK, response)
}

// opportunitiesHandler serves the full dashboard view. The timestamp is
// captured once per request and threaded through the whole build so the
// aggregates and the flat list always agree.
func (s *Server) opportunitiesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view, err := s.buildView(r.Context(), criteriaFromQuery(r))
	if err != nil {
		log.Printf("Error building opportunity view: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to build opportunity view",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    view,
	})
}

// statsHandler serves the global counters only.
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view, err := s.buildView(r.Context(), engine.FilterCriteria{})
	if err != nil {
		log.Printf("Error building stats: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to build stats",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"stats":       view.Stats,
			"portability": view.Portability,
			"as_of":       view.AsOf,
		},
	})
}

// banksHandler serves the per-bank rollup.
func (s *Server) banksHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view, err := s.buildView(r.Context(), engine.FilterCriteria{})
	if err != nil {
		log.Printf("Error building bank rollup: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to build bank rollup",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    view.ByBank,
	})
}

func (s *Server) buildView(ctx context.Context, criteria engine.FilterCriteria) (*engine.OpportunityView, error) {
	if s.contractRepo == nil || s.ruleRepo == nil {
		// Demo mode: empty view
		return engine.BuildOpportunityView(nil, nil, time.Now().UTC(), criteria), nil
	}

	contracts, err := s.contractRepo.GetAllTracked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load contracts: %w", err)
	}

	rules, err := s.ruleRepo.GetAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank rules: %w", err)
	}

	return engine.BuildOpportunityView(contracts, rules, time.Now().UTC(), criteria), nil
}

// rulesHandler lists bank rules on GET and upserts one on POST.
func (s *Server) rulesHandler(w http.ResponseWriter, r *http.Request) {
	if s.ruleRepo == nil {
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Data:    []models.BankRule{},
		})
		return
	}

	switch r.Method {
	case http.MethodGet:
		rules, err := s.ruleRepo.GetAll(r.Context())
		if err != nil {
			log.Printf("Error fetching rules: %v", err)
			writeJSON(w, http.StatusInternalServerError, Response{
				Success: false,
				Error:   "Failed to fetch bank rules",
			})
			return
		}
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Data:    rules,
		})

	case http.MethodPost:
		var rule models.BankRuleCreate
		if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
			writeJSON(w, http.StatusBadRequest, Response{
				Success: false,
				Error:   "Invalid request body",
			})
			return
		}

		id, err := s.ruleRepo.Upsert(r.Context(), &rule)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Response{
				Success: false,
				Error:   err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Bank rule saved",
			Data:    map[string]int64{"id": id},
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	log.Printf("CSV upload request received")

	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10MB max
		log.Printf("Failed to parse form: %v", err)
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Failed to parse form: " + err.Error(),
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "No file provided",
		})
		return
	}
	defer file.Close()

	log.Printf("Processing file: %s (%.2f KB)", header.Filename, float64(header.Size)/1024)

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Only CSV files are allowed",
		})
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to read file",
		})
		return
	}

	result, err := s.processCSVContent(r.Context(), content)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "CSV processed successfully",
		Data:    result,
	})
}

func (s *Server) processCSVContent(ctx context.Context, content []byte) (*UploadResponse, error) {
	startTime := time.Now()
	batchID := "batch_" + uuid.New().String()[:8]

	parser := utils.NewCSVParser()
	contracts, parseErrors := parser.ParseContracts(string(content), batchID)

	log.Printf("Parsed: %d valid contracts, %d errors (batch %s)", len(contracts), len(parseErrors), batchID)

	errorSample := make([]string, 0, 5)
	for i, err := range parseErrors {
		if i >= 5 {
			break
		}
		errorSample = append(errorSample, err.Error())
	}

	result := &UploadResponse{
		BatchID:        batchID,
		TotalRows:      len(contracts) + len(parseErrors),
		ValidContracts: len(contracts),
		Errors:         len(parseErrors),
		ErrorSample:    errorSample,
	}

	// If no database connection, report the parse outcome only
	if s.db == nil || s.contractRepo == nil {
		result.ProcessingMs = time.Since(startTime).Milliseconds()
		return result, nil
	}

	insertResult, err := s.contractRepo.BulkInsert(ctx, contracts)
	if err != nil {
		return nil, fmt.Errorf("failed to insert contracts: %w", err)
	}

	result.Inserted = insertResult.InsertedCount
	result.Errors += insertResult.FailedCount
	result.ProcessingMs = time.Since(startTime).Milliseconds()

	return result, nil
}

// criteriaFromQuery maps query parameters onto filter criteria.
func criteriaFromQuery(r *http.Request) engine.FilterCriteria {
	q := r.URL.Query()
	return engine.FilterCriteria{
		ProductType: q.Get("product_type"),
		Bank:        q.Get("bank"),
		Status:      q.Get("status"),
		Priority:    q.Get("priority"),
		Search:      q.Get("search"),
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
