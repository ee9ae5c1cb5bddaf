// Package registry selects a statement parser by format sniffing.
package registry

import (
	"fmt"
	"io"
	"os"

	"github.com/rumor-ml/taxease/internal/parser"
	"github.com/rumor-ml/taxease/internal/parsers/csv"
	"github.com/rumor-ml/taxease/internal/parsers/ofx"
	"github.com/rumor-ml/taxease/internal/parsers/text"
)

// Registry holds all registered parsers
type Registry struct {
	parsers []parser.Parser
}

// New creates a registry with all built-in parsers. Order matters: the
// free-text parser accepts anything, so it goes last as the fallback.
func New() *Registry {
	return &Registry{
		parsers: []parser.Parser{
			ofx.NewParser(),
			csv.NewParser(),
			text.NewParser(),
		},
	}
}

// Register adds a custom parser (for extensibility)
func (r *Registry) Register(p parser.Parser) {
	r.parsers = append(r.parsers, p)
}

// FindParser returns the best parser for this file.
// Reads first 512 bytes for format detection via header inspection.
func (r *Registry) FindParser(path string) (parser.Parser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 512)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}
	// EOF is OK - small statement files may be < 512 bytes. Parsers receive
	// whatever was read and handle variable header sizes.
	header = header[:n]

	return r.FindParserFor(path, header)
}

// FindParserFor selects a parser from an already-read header, for callers
// that hold the content in memory (stdin, tests).
func (r *Registry) FindParserFor(path string, header []byte) (parser.Parser, error) {
	for _, p := range r.parsers {
		if p.CanParse(path, header) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no parser found for file: %s", path)
}

// ListParsers returns all registered parser names
func (r *Registry) ListParsers() []string {
	names := make([]string, len(r.parsers))
	for i, p := range r.parsers {
		names[i] = p.Name()
	}
	return names
}
