// Package ofx provides OFX/QFX statement parsing for taxease.
package ofx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/rumor-ml/taxease/internal/domain"
)

// Parser implements OFX/QFX parsing with a stateless design.
// Each method operates solely on the input data provided, making the parser
// safe for concurrent use without locking.
type Parser struct{}

var parserInstance = &Parser{}

// NewParser returns the shared OFX parser instance.
func NewParser() *Parser {
	return parserInstance
}

// Name returns the parser identifier
func (p *Parser) Name() string {
	return "ofx"
}

// CanParse checks if this parser can handle the file based on extension and header
func (p *Parser) CanParse(path string, header []byte) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".ofx" && ext != ".qfx" {
		return false
	}

	headerUpper := strings.ToUpper(string(header))

	// Look for OFX header markers (both v1 SGML and v2 XML formats)
	return strings.Contains(headerUpper, "OFXHEADER") ||
		strings.Contains(headerUpper, "<?OFX") ||
		strings.Contains(headerUpper, "<OFX>")
}

// Parse extracts transactions from an OFX/QFX download. Bank and credit card
// statements are supported; the first statement of either kind is used.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*domain.Statement, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX content: %w", err)
	}

	// ofxgo.ParseResponse does not support context cancellation, so this
	// check only catches cancellation between file read and parsing.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	response, err := ofxgo.ParseResponse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file (%d bytes): %w", len(content), err)
	}

	tranList, err := transactionList(response)
	if err != nil {
		return nil, err
	}

	var txns []domain.Transaction
	diag := domain.ParseDiagnostics{}
	for _, ofxTxn := range tranList.Transactions {
		diag.LinesSeen++
		txn, ok := extractTransaction(ofxTxn)
		if !ok {
			continue
		}
		diag.LinesParsed++
		txns = append(txns, *txn)
	}

	if diag.LinesParsed == 0 {
		return nil, fmt.Errorf("%w: no parseable transactions in %d OFX entries", domain.ErrEmptyInput, diag.LinesSeen)
	}

	return domain.NewStatement(txns, diag), nil
}

// transactionList locates the first supported statement in the response.
func transactionList(resp *ofxgo.Response) (*ofxgo.TransactionList, error) {
	if len(resp.Bank) > 0 {
		bankStmt, ok := resp.Bank[0].(*ofxgo.StatementResponse)
		if !ok {
			return nil, fmt.Errorf("failed to type assert bank statement: expected *ofxgo.StatementResponse, got %T", resp.Bank[0])
		}
		if bankStmt.BankTranList == nil {
			return nil, fmt.Errorf("%w: missing transaction list in bank statement", domain.ErrEmptyInput)
		}
		return bankStmt.BankTranList, nil
	}

	if len(resp.CreditCard) > 0 {
		ccStmt, ok := resp.CreditCard[0].(*ofxgo.CCStatementResponse)
		if !ok {
			return nil, fmt.Errorf("failed to type assert credit card statement: expected *ofxgo.CCStatementResponse, got %T", resp.CreditCard[0])
		}
		if ccStmt.BankTranList == nil {
			return nil, fmt.Errorf("%w: missing transaction list in credit card statement", domain.ErrEmptyInput)
		}
		return ccStmt.BankTranList, nil
	}

	return nil, fmt.Errorf("%w: no bank (BANKMSGSRSV1) or credit card (CREDITCARDMSGSRSV1) statement found in OFX file",
		domain.ErrEmptyInput)
}

// extractTransaction converts one OFX transaction. Entries missing a date,
// a description, or a usable amount are skipped.
func extractTransaction(txn ofxgo.Transaction) (*domain.Transaction, bool) {
	// Use posted date; if not available, fall back to user date.
	date := txn.DtPosted.Time
	if date.IsZero() {
		date = txn.DtUser.Time
	}
	if date.IsZero() {
		return nil, false
	}

	// Use Name field for description; if empty, fall back to Memo.
	description := strings.TrimSpace(txn.Name.String())
	if description == "" {
		description = strings.TrimSpace(txn.Memo.String())
	}
	if description == "" {
		return nil, false
	}

	// OFX amounts are signed: negative means money out of the account.
	amount, _ := txn.TrnAmt.Float64()
	direction := domain.DirectionCredit
	if amount < 0 {
		direction = domain.DirectionDebit
		amount = -amount
	}
	if amount == 0 {
		return nil, false
	}

	out, err := domain.NewTransaction(date.Format("2006-01-02"), description, amount, direction)
	if err != nil {
		return nil, false
	}
	return out, true
}
