// Package text provides free-text statement parsing for taxease.
package text

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rumor-ml/taxease/internal/domain"
	"github.com/rumor-ml/taxease/internal/parser"
)

// Parser implements line-oriented free-text parsing with a stateless design.
// Each method operates solely on the input data provided, making the parser
// safe for concurrent use without locking.
type Parser struct{}

var parserInstance = &Parser{}

// NewParser returns the shared free-text parser instance.
func NewParser() *Parser {
	return parserInstance
}

// Name returns the parser identifier
func (p *Parser) Name() string {
	return "text"
}

// CanParse accepts any input: the free-text parser is the fallback and must
// be registered last.
func (p *Parser) CanParse(path string, header []byte) bool {
	return true
}

// Parse extracts transactions from line-oriented statement text.
// Lines that do not yield a date, a non-empty description, and a parseable
// amount are dropped silently but counted in the diagnostics. The returned
// statement's sequence is lazy and restartable: each pass re-scans the
// retained lines in original order.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*domain.Statement, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	lines, err := readLines(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement text: %w", err)
	}

	// One counting pass for diagnostics and the empty-input check.
	diag := domain.ParseDiagnostics{}
	for _, line := range lines {
		diag.LinesSeen++
		if _, ok := parseLine(line); ok {
			diag.LinesParsed++
		}
	}

	if diag.LinesParsed == 0 {
		return nil, fmt.Errorf("%w: no parseable transactions in %d lines", domain.ErrEmptyInput, diag.LinesSeen)
	}

	seq := func(yield func(domain.Transaction) bool) {
		for _, line := range lines {
			txn, ok := parseLine(line)
			if !ok {
				continue
			}
			if !yield(*txn) {
				return
			}
		}
	}

	return domain.NewLazyStatement(seq, diag), nil
}

// readLines returns the non-blank lines of the input.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// directionMarkers map trailing tokens to a transaction direction.
var directionMarkers = map[string]domain.Direction{
	"DR":     domain.DirectionDebit,
	"DEBIT":  domain.DirectionDebit,
	"CR":     domain.DirectionCredit,
	"CREDIT": domain.DirectionCredit,
}

// parseLine extracts one transaction from a statement line.
// Expected shape: date token(s), description, amount, then optional
// DR/CR marker and balance columns.
func parseLine(line string) (*domain.Transaction, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, false
	}

	date, dateTokens := findDate(fields)
	if dateTokens == 0 {
		return nil, false
	}
	rest := fields[dateTokens:]

	amountIdx := findAmountIndex(rest)
	if amountIdx <= 0 {
		// No amount, or no description tokens before it.
		return nil, false
	}

	amount, negative, _ := parser.ParseAmount(rest[amountIdx])

	// Default everything to debit, like the source statements do; a trailing
	// CR marker or an explicitly positive deposit flips it.
	direction := domain.DirectionDebit
	if !negative {
		for _, tok := range rest[amountIdx+1:] {
			if d, ok := directionMarkers[strings.ToUpper(tok)]; ok {
				direction = d
				break
			}
		}
	}

	description := strings.Join(rest[:amountIdx], " ")
	if description == "" {
		return nil, false
	}

	txn, err := domain.NewTransaction(date, description, amount, direction)
	if err != nil {
		return nil, false
	}
	return txn, true
}

// findDate tries the leading tokens as a date. Month-name formats span
// multiple tokens ("02 Jan 2006", "Jan 02, 2006"), so joined prefixes of up
// to three tokens are tried before the single-token layouts.
func findDate(fields []string) (string, int) {
	if len(fields) >= 3 {
		if date, ok := parser.ParseDate(strings.Join(fields[:3], " ")); ok {
			return date, 3
		}
	}
	if date, ok := parser.ParseDate(fields[0]); ok {
		return date, 1
	}
	return "", 0
}

// findAmountIndex locates the transaction amount among the trailing tokens.
// Scanning runs from the end; when a line ends with a run of numeric columns
// (amount followed by running balance) the first of the run is the amount.
func findAmountIndex(fields []string) int {
	last := -1
	for i := len(fields) - 1; i >= 0; i-- {
		if _, _, ok := parser.ParseAmount(fields[i]); ok {
			if last != -1 && i != last-1 {
				break
			}
			last = i
			continue
		}
		if last != -1 {
			break
		}
	}
	return last
}
