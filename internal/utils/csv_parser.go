// Package utils provides utility functions for the credit opportunity engine.
package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"credit-opportunity-engine/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
	ErrInvalidDate    = errors.New("invalid date value")
)

// RequiredColumns defines the columns that must be present in the CSV.
// Tax id, phone, payment date, and potential value are optional: contracts
// without a payment date are stored but never classified.
var RequiredColumns = []string{
	"contract_id",
	"client_name",
	"bank_name",
	"product_type",
}

// ColumnAliases maps alternative column names to standard names. Source
// exports from the sales CRM use Portuguese headers.
var ColumnAliases = map[string]string{
	// contract_id aliases
	"contractid":  "contract_id",
	"contract id": "contract_id",
	"contract":    "contract_id",
	"contrato":    "contract_id",
	"id_contrato": "contract_id",
	"operation":   "contract_id",
	"operacao":    "contract_id",

	// client_name aliases
	"clientname":   "client_name",
	"client name":  "client_name",
	"client":       "client_name",
	"name":         "client_name",
	"cliente":      "client_name",
	"nome":         "client_name",
	"nome_cliente": "client_name",

	// client_tax_id aliases
	"clienttaxid":   "client_tax_id",
	"client tax id": "client_tax_id",
	"tax_id":        "client_tax_id",
	"taxid":         "client_tax_id",
	"cpf":           "client_tax_id",
	"document":      "client_tax_id",
	"documento":     "client_tax_id",

	// client_phone aliases
	"clientphone": "client_phone",
	"phone":       "client_phone",
	"telefone":    "client_phone",
	"celular":     "client_phone",
	"mobile":      "client_phone",

	// bank_name aliases
	"bankname":  "bank_name",
	"bank name": "bank_name",
	"bank":      "bank_name",
	"banco":     "bank_name",
	"creditor":  "bank_name",
	"credor":    "bank_name",

	// product_type aliases
	"producttype":  "product_type",
	"product type": "product_type",
	"product":      "product_type",
	"produto":      "product_type",
	"tipo":         "product_type",
	"tipo_produto": "product_type",

	// payment_date aliases
	"paymentdate":    "payment_date",
	"payment date":   "payment_date",
	"paid_date":      "payment_date",
	"paid_at":        "payment_date",
	"data_pagamento": "payment_date",
	"pagamento":      "payment_date",

	// potential_value aliases
	"potentialvalue":  "potential_value",
	"potential value": "potential_value",
	"potential":       "potential_value",
	"troco":           "potential_value",
	"cash_out":        "potential_value",
	"valor_troco":     "potential_value",
}

// dateLayouts are tried in order when parsing payment dates. Brazilian
// day-first format comes after ISO to keep unambiguous values unambiguous.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	time.RFC3339,
}

// CSVParser handles parsing of contract CSV files.
type CSVParser struct {
	columnMapping map[string]int
}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{
		columnMapping: make(map[string]int),
	}
}

// ParseContracts parses CSV content and returns a slice of ContractCreate
// objects plus per-row errors. A row failure never aborts the batch.
func (p *CSVParser) ParseContracts(content string, batchID string) ([]*models.ContractCreate, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	var contracts []*models.ContractCreate
	var parseErrors []error
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		contract, err := p.parseRow(record, batchID)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		if err := models.ValidateContractCreate(contract); err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		contracts = append(contracts, contract)
	}

	if len(contracts) == 0 && len(parseErrors) > 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return contracts, parseErrors
}

// buildColumnMapping creates a mapping of standard column names to their indices.
func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)

	for i, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
		if alias, ok := ColumnAliases[normalized]; ok {
			normalized = alias
		}
		p.columnMapping[normalized] = i
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

// parseRow parses a single CSV row into a ContractCreate object.
func (p *CSVParser) parseRow(record []string, batchID string) (*models.ContractCreate, error) {
	getValue := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	productType := models.NormalizeProductType(getValue("product_type"))

	var paymentDate *time.Time
	if raw := getValue("payment_date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid payment_date %q: %w", raw, err)
		}
		paymentDate = &parsed
	}

	var potentialValue *float64
	if raw := getValue("potential_value"); raw != "" {
		parsed, err := parseAmount(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid potential_value %q: %w", raw, err)
		}
		potentialValue = &parsed
	}

	return &models.ContractCreate{
		ContractID:     getValue("contract_id"),
		ClientName:     getValue("client_name"),
		ClientTaxID:    getValue("client_tax_id"),
		ClientPhone:    getValue("client_phone"),
		BankName:       getValue("bank_name"),
		ProductType:    productType,
		PaymentDate:    paymentDate,
		PotentialValue: potentialValue,
		BatchID:        batchID,
	}, nil
}

// parseDate parses a payment date in any of the accepted layouts.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// parseAmount parses a monetary string, handling common formats. Brazilian
// exports use "1.234,56"; the comma is treated as the decimal separator when
// it appears after the last dot.
func parseAmount(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)

	if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	return strconv.ParseFloat(s, 64)
}
