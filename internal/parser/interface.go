// Package parser defines the strategy interface for statement parsers.
package parser

import (
	"context"
	"io"

	"github.com/rumor-ml/taxease/internal/domain"
)

// Parser is the strategy interface for all statement format parsers
type Parser interface {
	// Name returns parser identifier (e.g., "text", "csv", "ofx")
	Name() string

	// CanParse checks if parser can handle this input.
	// header holds the first bytes of the input for format sniffing.
	CanParse(path string, header []byte) bool

	// Parse extracts transactions from the input. Malformed lines are
	// recoverable (skipped and counted in the statement diagnostics);
	// input with no parseable content fails with domain.ErrEmptyInput.
	Parse(ctx context.Context, r io.Reader) (*domain.Statement, error)
}
