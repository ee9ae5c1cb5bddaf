package classifier

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/rumor-ml/taxease/internal/domain"
)

// Diagnostics reports what Summarize dropped while aggregating.
type Diagnostics struct {
	DuplicatesSkipped int `json:"duplicatesSkipped"`
}

// Fingerprint creates a SHA256 hash identifying a transaction.
// Format: SHA256("{date}|{amount}|{normalizedDescription}") with the amount
// formatted to 2 decimal places for consistency.
func Fingerprint(txn domain.Transaction) string {
	input := fmt.Sprintf("%s|%.2f|%s", txn.Date, txn.Amount, Normalize(txn.Description))
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

// Summarize aggregates amount and count per assigned category. Unassigned
// transactions land in the unclassified bucket rather than being dropped.
//
// Transactions with an identical fingerprint are counted once; repeats are
// tallied in the diagnostics so recurring statement entries cannot inflate
// a deduction total silently. An empty input yields an empty summary.
func Summarize(classified []domain.ClassifiedTransaction) (*domain.DeductionSummary, Diagnostics) {
	summary := domain.NewDeductionSummary()
	diag := Diagnostics{}

	seen := make(map[string]bool, len(classified))
	for _, ct := range classified {
		fp := Fingerprint(ct.Transaction)
		if seen[fp] {
			diag.DuplicatesSkipped++
			continue
		}
		seen[fp] = true

		if !ct.Assigned() {
			summary.Unclassified.Total += ct.Amount
			summary.Unclassified.Count++
			continue
		}

		total := summary.Categories[ct.Category]
		total.Total += ct.Amount
		total.Count++
		summary.Categories[ct.Category] = total
	}

	return summary, diag
}
