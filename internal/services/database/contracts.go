// Package database provides database operations for the credit opportunity engine.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"credit-opportunity-engine/internal/models"
)

// ContractRepository handles contract database operations.
type ContractRepository struct {
	db *DB
}

// NewContractRepository creates a new contract repository.
func NewContractRepository(db *DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// Create inserts a new contract into the database.
func (r *ContractRepository) Create(ctx context.Context, contract *models.ContractCreate) (int64, error) {
	query := `
		INSERT INTO contracts (
			contract_id, client_name, client_tax_id, client_phone, bank_name,
			product_type, payment_date, potential_value, batch_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (contract_id) DO UPDATE SET
			client_name = EXCLUDED.client_name,
			client_tax_id = EXCLUDED.client_tax_id,
			client_phone = EXCLUDED.client_phone,
			bank_name = EXCLUDED.bank_name,
			product_type = EXCLUDED.product_type,
			payment_date = EXCLUDED.payment_date,
			potential_value = EXCLUDED.potential_value,
			batch_id = EXCLUDED.batch_id,
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		contract.ContractID,
		contract.ClientName,
		contract.ClientTaxID,
		contract.ClientPhone,
		contract.BankName,
		string(contract.ProductType),
		contract.PaymentDate,
		contract.PotentialValue,
		contract.BatchID,
		time.Now().UTC(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create contract: %w", err)
	}

	return id, nil
}

// BulkInsert inserts multiple contracts into the database.
func (r *ContractRepository) BulkInsert(ctx context.Context, contracts []*models.ContractCreate) (*models.BulkInsertResult, error) {
	result := &models.BulkInsertResult{
		InsertedCount: 0,
		FailedCount:   0,
		Errors:        []string{},
	}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		now := time.Now().UTC()
		for _, contract := range contracts {
			_, err := tx.Exec(ctx, `
				INSERT INTO contracts (
					contract_id, client_name, client_tax_id, client_phone, bank_name,
					product_type, payment_date, potential_value, batch_id,
					created_at, updated_at, is_active
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10, true)
				ON CONFLICT (contract_id) DO UPDATE SET
					client_name = EXCLUDED.client_name,
					client_tax_id = EXCLUDED.client_tax_id,
					client_phone = EXCLUDED.client_phone,
					bank_name = EXCLUDED.bank_name,
					product_type = EXCLUDED.product_type,
					payment_date = EXCLUDED.payment_date,
					potential_value = EXCLUDED.potential_value,
					batch_id = EXCLUDED.batch_id,
					updated_at = EXCLUDED.updated_at`,
				contract.ContractID,
				contract.ClientName,
				contract.ClientTaxID,
				contract.ClientPhone,
				contract.BankName,
				string(contract.ProductType),
				contract.PaymentDate,
				contract.PotentialValue,
				contract.BatchID,
				now,
			)

			if err != nil {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("contract %s: %v", contract.ContractID, err))
				continue
			}
			result.InsertedCount++
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("bulk insert failed: %w", err)
	}

	return result, nil
}

// GetAllTracked returns the active contracts that feed the opportunity
// engine: paid or pending portability and refinancing operations. Other
// product types are stored but have no eligibility window to track.
func (r *ContractRepository) GetAllTracked(ctx context.Context) ([]*models.Contract, error) {
	query := `
		SELECT id, contract_id, client_name, client_tax_id, client_phone, bank_name,
		       product_type, payment_date, potential_value, batch_id,
		       created_at, updated_at, is_active
		FROM contracts
		WHERE is_active = true
		  AND product_type IN ($1, $2)
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query,
		string(models.ProductTypePortability),
		string(models.ProductTypeRefinancing),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked contracts: %w", err)
	}
	defer rows.Close()

	return scanContracts(rows)
}

// GetByBatch returns all contracts imported under a batch ID.
func (r *ContractRepository) GetByBatch(ctx context.Context, batchID string) ([]*models.Contract, error) {
	query := `
		SELECT id, contract_id, client_name, client_tax_id, client_phone, bank_name,
		       product_type, payment_date, potential_value, batch_id,
		       created_at, updated_at, is_active
		FROM contracts
		WHERE batch_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts by batch: %w", err)
	}
	defer rows.Close()

	return scanContracts(rows)
}

// Count returns the total number of active contracts.
func (r *ContractRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contracts WHERE is_active = true`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count contracts: %w", err)
	}
	return count, nil
}

// Deactivate soft-deletes a contract by its external contract ID.
func (r *ContractRepository) Deactivate(ctx context.Context, contractID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE contracts SET is_active = false, updated_at = $2
		WHERE contract_id = $1`,
		contractID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to deactivate contract: %w", err)
	}
	return nil
}

// scanContracts reads contract rows into models.
func scanContracts(rows pgx.Rows) ([]*models.Contract, error) {
	var contracts []*models.Contract

	for rows.Next() {
		var c models.Contract
		var productType string

		err := rows.Scan(
			&c.ID,
			&c.ContractID,
			&c.ClientName,
			&c.ClientTaxID,
			&c.ClientPhone,
			&c.BankName,
			&productType,
			&c.PaymentDate,
			&c.PotentialValue,
			&c.BatchID,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}

		c.ProductType = models.ProductType(productType)
		contracts = append(contracts, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contracts: %w", err)
	}

	return contracts, nil
}
