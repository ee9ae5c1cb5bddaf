// Package csv provides delimited statement parsing for taxease.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rumor-ml/taxease/internal/domain"
	"github.com/rumor-ml/taxease/internal/parser"
)

// Parser implements delimited statement parsing with a stateless design.
type Parser struct{}

var parserInstance = &Parser{}

// NewParser returns the shared CSV parser instance.
func NewParser() *Parser {
	return parserInstance
}

// Name returns the parser identifier
func (p *Parser) Name() string {
	return "csv"
}

// CanParse checks extension first, then sniffs the header for a delimited
// table with a date column.
func (p *Parser) CanParse(path string, header []byte) bool {
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return true
	}
	firstLine := string(header)
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	return strings.Count(firstLine, ",") >= 2 &&
		strings.Contains(strings.ToLower(firstLine), "date")
}

// Column header synonyms, matched case-insensitively after trimming.
var (
	datePatterns       = []string{"date", "txn date", "transaction date", "value dt"}
	descPatterns       = []string{"narration", "description", "particulars", "details"}
	withdrawalPatterns = []string{"withdrawal amt.", "withdrawal", "debit", "dr", "debit amount"}
	depositPatterns    = []string{"deposit amt.", "deposit", "credit", "cr", "credit amount"}
)

type columns struct {
	date       int
	desc       int
	withdrawal int
	deposit    int
	amount     int
}

// Parse extracts transactions from a delimited statement. The header row is
// located by its column names; leading junk rows before it are skipped.
// Data rows that fail to parse are counted, never fatal.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*domain.Statement, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV content: %w", err)
	}

	headerIdx, cols := findHeader(records)
	if headerIdx < 0 {
		return nil, fmt.Errorf("%w: no header row with date and description columns", domain.ErrEmptyInput)
	}

	var txns []domain.Transaction
	diag := domain.ParseDiagnostics{}
	for _, record := range records[headerIdx+1:] {
		if isBlankRow(record) {
			continue
		}
		diag.LinesSeen++
		txn, ok := parseRow(record, cols)
		if !ok {
			continue
		}
		diag.LinesParsed++
		txns = append(txns, *txn)
	}

	if diag.LinesParsed == 0 {
		return nil, fmt.Errorf("%w: no parseable transactions in %d rows", domain.ErrEmptyInput, diag.LinesSeen)
	}

	return domain.NewStatement(txns, diag), nil
}

func isBlankRow(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// findHeader scans the leading rows for one whose fields match the expected
// column names. Exports often carry bank headers and summary rows first.
func findHeader(records [][]string) (int, columns) {
	for i, record := range records {
		if i >= 20 {
			break
		}
		cols := columns{date: -1, desc: -1, withdrawal: -1, deposit: -1, amount: -1}
		for j, field := range record {
			name := strings.ToLower(strings.TrimSpace(field))
			switch {
			case cols.date < 0 && matchesAny(name, datePatterns):
				cols.date = j
			case cols.desc < 0 && matchesAny(name, descPatterns):
				cols.desc = j
			case cols.withdrawal < 0 && matchesAny(name, withdrawalPatterns):
				cols.withdrawal = j
			case cols.deposit < 0 && matchesAny(name, depositPatterns):
				cols.deposit = j
			case cols.amount < 0 && strings.Contains(name, "amount"):
				cols.amount = j
			}
		}
		if cols.date >= 0 && cols.desc >= 0 && (cols.withdrawal >= 0 || cols.deposit >= 0 || cols.amount >= 0) {
			return i, cols
		}
	}
	return -1, columns{}
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if name == p {
			return true
		}
	}
	return false
}

// parseRow converts one data row to a transaction.
// Separate withdrawal/deposit columns take precedence; a lone amount column
// falls back to sign for direction, defaulting to debit.
func parseRow(record []string, cols columns) (*domain.Transaction, bool) {
	field := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, ok := parser.ParseDate(field(cols.date))
	if !ok {
		return nil, false
	}
	description := field(cols.desc)
	if description == "" {
		return nil, false
	}

	var amount float64
	direction := domain.DirectionDebit

	withdrawal, _, wOK := parser.ParseAmount(field(cols.withdrawal))
	deposit, _, dOK := parser.ParseAmount(field(cols.deposit))
	switch {
	case wOK && withdrawal > 0:
		amount = withdrawal
	case dOK && deposit > 0:
		amount = deposit
		direction = domain.DirectionCredit
	default:
		// Single amount column: rows default to debit, which is how these
		// exports record spending. ParseAmount strips any sign.
		v, _, ok := parser.ParseAmount(field(cols.amount))
		if !ok || v == 0 {
			return nil, false
		}
		amount = v
	}

	txn, err := domain.NewTransaction(date, description, amount, direction)
	if err != nil {
		return nil, false
	}
	return txn, true
}
