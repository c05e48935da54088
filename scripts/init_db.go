package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

const schema = `
CREATE TABLE IF NOT EXISTS contracts (
	id BIGSERIAL PRIMARY KEY,
	contract_id TEXT NOT NULL UNIQUE,
	client_name TEXT NOT NULL,
	client_tax_id TEXT NOT NULL DEFAULT '',
	client_phone TEXT NOT NULL DEFAULT '',
	bank_name TEXT NOT NULL,
	product_type TEXT NOT NULL,
	payment_date DATE,
	potential_value NUMERIC(14, 2),
	batch_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	is_active BOOLEAN NOT NULL DEFAULT true
);

CREATE INDEX IF NOT EXISTS idx_contracts_product_type ON contracts (product_type) WHERE is_active;
CREATE INDEX IF NOT EXISTS idx_contracts_batch_id ON contracts (batch_id);

CREATE TABLE IF NOT EXISTS bank_rules (
	id BIGSERIAL PRIMARY KEY,
	bank_name TEXT NOT NULL UNIQUE,
	window_months INTEGER NOT NULL CHECK (window_months > 0),
	is_active BOOLEAN NOT NULL DEFAULT true,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

INSERT INTO bank_rules (bank_name, window_months, is_active) VALUES
	('banco alfa', 6, true),
	('banco beta', 9, true),
	('banco gama', 3, true)
ON CONFLICT (bank_name) DO NOTHING;
`

func main() {
	fmt.Println("=== Database Initialization Script ===")
	fmt.Println()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Could not load .env file: %v\n", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("Connecting to database...")
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	fmt.Println("Executing schema...")
	if _, err := conn.Exec(ctx, schema); err != nil {
		fmt.Printf("Failed to execute schema: %v\n", err)
		os.Exit(1)
	}

	var ruleCount int
	if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM bank_rules").Scan(&ruleCount); err != nil {
		fmt.Printf("Warning: Could not count bank rules: %v\n", err)
	} else {
		fmt.Printf("Bank rules in database: %d\n", ruleCount)
	}

	var contractCount int
	if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM contracts").Scan(&contractCount); err != nil {
		fmt.Printf("Warning: Could not count contracts: %v\n", err)
	} else {
		fmt.Printf("Contracts in database: %d\n", contractCount)
	}

	fmt.Println("Database initialization complete")
}
