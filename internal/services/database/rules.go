// Package database provides database operations for the credit opportunity engine.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"credit-opportunity-engine/internal/models"
)

// BankRuleRepository handles bank rule database operations.
type BankRuleRepository struct {
	db *DB
}

// NewBankRuleRepository creates a new bank rule repository.
func NewBankRuleRepository(db *DB) *BankRuleRepository {
	return &BankRuleRepository{db: db}
}

// Upsert creates or updates the rule for a bank.
func (r *BankRuleRepository) Upsert(ctx context.Context, rule *models.BankRuleCreate) (int64, error) {
	if err := models.ValidateBankRuleCreate(rule); err != nil {
		return 0, err
	}

	query := `
		INSERT INTO bank_rules (bank_name, window_months, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (bank_name) DO UPDATE SET
			window_months = EXCLUDED.window_months,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		models.NormalizeBankName(rule.BankName),
		rule.WindowMonths,
		rule.IsActive,
		time.Now().UTC(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to upsert bank rule: %w", err)
	}

	return id, nil
}

// GetAll returns every configured bank rule, active or not.
func (r *BankRuleRepository) GetAll(ctx context.Context) ([]*models.BankRule, error) {
	return r.query(ctx, `
		SELECT id, bank_name, window_months, is_active, created_at, updated_at
		FROM bank_rules
		ORDER BY bank_name`)
}

// GetAllActive returns the rules eligible for window lookup.
func (r *BankRuleRepository) GetAllActive(ctx context.Context) ([]*models.BankRule, error) {
	return r.query(ctx, `
		SELECT id, bank_name, window_months, is_active, created_at, updated_at
		FROM bank_rules
		WHERE is_active = true
		ORDER BY bank_name`)
}

// Deactivate disables a rule; lookups for that bank fall through to the
// default window.
func (r *BankRuleRepository) Deactivate(ctx context.Context, bankName string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE bank_rules SET is_active = false, updated_at = $2
		WHERE bank_name = $1`,
		models.NormalizeBankName(bankName), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to deactivate bank rule: %w", err)
	}
	return nil
}

func (r *BankRuleRepository) query(ctx context.Context, sql string) ([]*models.BankRule, error) {
	rows, err := r.db.QueryContext(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank rules: %w", err)
	}
	defer rows.Close()

	return scanBankRules(rows)
}

// scanBankRules reads rule rows into models.
func scanBankRules(rows pgx.Rows) ([]*models.BankRule, error) {
	var rules []*models.BankRule

	for rows.Next() {
		var rule models.BankRule
		err := rows.Scan(
			&rule.ID,
			&rule.BankName,
			&rule.WindowMonths,
			&rule.IsActive,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank rule: %w", err)
		}
		rules = append(rules, &rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bank rules: %w", err)
	}

	return rules, nil
}
