// Package classifier scores transactions against deduction category rules
// and aggregates per-category totals.
package classifier

import (
	"iter"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rumor-ml/taxease/internal/domain"
	"github.com/rumor-ml/taxease/internal/rules"
)

// DefaultThreshold is the acceptance score below which no category is
// assigned. Callers may override it; the constant is a starting heuristic,
// not a calibrated value.
const DefaultThreshold = 0.3

// stripMarks removes combining marks after NFD decomposition so that
// accented descriptions match plain-ASCII patterns.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases a description, strips diacritics, and collapses
// runs of whitespace. All matching and fingerprinting operate on this form.
func Normalize(description string) string {
	lowered := strings.ToLower(strings.TrimSpace(description))
	if stripped, _, err := transform.String(stripMarks, lowered); err == nil {
		lowered = stripped
	}
	return strings.Join(strings.Fields(lowered), " ")
}

// Classify scores every transaction against the category rules and assigns
// at most one category each. Deterministic: the same input and rules always
// produce the same assignments.
//
// A transaction stays unassigned when its description hits an exclude
// keyword, when no rule matches its direction, or when the best score falls
// strictly below threshold. Ties at the best score resolve to the
// lexicographically smallest label, a stable choice that keeps reports
// reproducible across runs.
func Classify(transactions iter.Seq[domain.Transaction], registry *rules.Registry, threshold float64) []domain.ClassifiedTransaction {
	categoryRules := registry.Rules()

	var classified []domain.ClassifiedTransaction
	for txn := range transactions {
		classified = append(classified, classifyOne(txn, categoryRules, registry, threshold))
	}
	return classified
}

func classifyOne(txn domain.Transaction, categoryRules []rules.CategoryRule, registry *rules.Registry, threshold float64) domain.ClassifiedTransaction {
	out := domain.ClassifiedTransaction{Transaction: txn}

	normalized := Normalize(txn.Description)
	if registry.Excluded(normalized) {
		return out
	}

	bestScore := 0.0
	bestLabel := ""
	var bestMatched []string
	for _, rule := range categoryRules {
		if rule.Direction != txn.Direction {
			continue
		}
		score, matched := scoreRule(normalized, rule)
		if score > bestScore || (score == bestScore && score > 0 && (bestLabel == "" || rule.Label < bestLabel)) {
			bestScore = score
			bestLabel = rule.Label
			bestMatched = matched
		}
	}

	if bestLabel == "" || bestScore < threshold {
		return out
	}

	out.Category = bestLabel
	out.Confidence = bestScore
	out.MatchedPatterns = bestMatched
	return out
}

// scoreRule computes weight * matched/total, clamped to [0,1], and returns
// the patterns that matched in sorted order.
func scoreRule(normalizedDesc string, rule rules.CategoryRule) (float64, []string) {
	var matched []string
	for _, pattern := range rule.Patterns {
		if strings.Contains(normalizedDesc, pattern) {
			matched = append(matched, pattern)
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}
	sort.Strings(matched)

	score := rule.Weight * float64(len(matched)) / float64(len(rule.Patterns))
	if score > 1 {
		score = 1
	}
	return score, matched
}
