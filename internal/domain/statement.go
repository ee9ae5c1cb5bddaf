package domain

import "iter"

// ParseDiagnostics counts parser line outcomes. Lines that fail to parse are
// skipped silently but never thrown away from the count.
type ParseDiagnostics struct {
	LinesSeen   int `json:"linesSeen"`
	LinesParsed int `json:"linesParsed"`
}

// Statement is a parsed bank statement: a finite, restartable sequence of
// transactions in original line order, plus parse diagnostics.
type Statement struct {
	seq  iter.Seq[Transaction]
	diag ParseDiagnostics
}

// NewStatement creates a statement backed by an in-memory transaction slice.
func NewStatement(txns []Transaction, diag ParseDiagnostics) *Statement {
	stored := append([]Transaction(nil), txns...)
	return &Statement{
		seq: func(yield func(Transaction) bool) {
			for _, txn := range stored {
				if !yield(txn) {
					return
				}
			}
		},
		diag: diag,
	}
}

// NewLazyStatement creates a statement backed by a caller-supplied sequence.
// The sequence must be finite and yield the same transactions on every
// invocation (restartable).
func NewLazyStatement(seq iter.Seq[Transaction], diag ParseDiagnostics) *Statement {
	return &Statement{seq: seq, diag: diag}
}

// Transactions returns the transaction sequence. Each range over the result
// is an independent pass in original line order.
func (s *Statement) Transactions() iter.Seq[Transaction] {
	return s.seq
}

// Collect materializes the sequence into a slice.
func (s *Statement) Collect() []Transaction {
	var txns []Transaction
	for txn := range s.seq {
		txns = append(txns, txn)
	}
	return txns
}

// Diagnostics returns the parse diagnostics for this statement.
func (s *Statement) Diagnostics() ParseDiagnostics {
	return s.diag
}
