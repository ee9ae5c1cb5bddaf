package classifier

import (
	"testing"

	"github.com/rumor-ml/taxease/internal/domain"
	"github.com/rumor-ml/taxease/internal/rules"
)

func loadRules(t *testing.T, yaml string) *rules.Registry {
	t.Helper()
	reg, err := rules.Load([]byte(yaml))
	if err != nil {
		t.Fatalf("rules.Load() error: %v", err)
	}
	return reg
}

func txn(t *testing.T, date, desc string, amount float64, dir domain.Direction) domain.Transaction {
	t.Helper()
	out, err := domain.NewTransaction(date, desc, amount, dir)
	if err != nil {
		t.Fatal(err)
	}
	return *out
}

func seqOf(txns ...domain.Transaction) func(func(domain.Transaction) bool) {
	return func(yield func(domain.Transaction) bool) {
		for _, t := range txns {
			if !yield(t) {
				return
			}
		}
	}
}

const insuranceRule = `
categories:
  - label: Insurance
    weight: 1
    patterns: [LIC, PREMIUM, INSURANCE]
`

func TestClassifyInsuranceExample(t *testing.T) {
	// "POS DEBIT LIC PREMIUM" matches 2 of 3 patterns: score 0.667,
	// comfortably above the 0.3 threshold.
	reg := loadRules(t, insuranceRule)
	input := txn(t, "2024-05-03", "POS DEBIT LIC PREMIUM", 12000.00, domain.DirectionDebit)

	got := Classify(seqOf(input), reg, 0.3)
	if len(got) != 1 {
		t.Fatalf("Classify() returned %d results, want 1", len(got))
	}
	if got[0].Category != "Insurance" {
		t.Errorf("Category = %q, want Insurance", got[0].Category)
	}
	if got[0].Confidence < 0.66 || got[0].Confidence > 0.67 {
		t.Errorf("Confidence = %f, want ~0.667", got[0].Confidence)
	}
	if len(got[0].MatchedPatterns) != 2 {
		t.Errorf("MatchedPatterns = %v, want 2 entries", got[0].MatchedPatterns)
	}
}

func TestClassifyBelowThreshold(t *testing.T) {
	reg := loadRules(t, insuranceRule)
	input := txn(t, "2024-05-03", "POS DEBIT LIC STORE", 500, domain.DirectionDebit)

	// 1 of 3 patterns gives 0.333: assigned at 0.3, unassigned at 0.5.
	low := Classify(seqOf(input), reg, 0.3)
	if !low[0].Assigned() {
		t.Errorf("at threshold 0.3: unassigned, confidence would be %f", low[0].Confidence)
	}

	high := Classify(seqOf(input), reg, 0.5)
	if high[0].Assigned() {
		t.Errorf("at threshold 0.5: assigned %q, want none", high[0].Category)
	}
	if high[0].Confidence != 0 {
		t.Errorf("unassigned Confidence = %f, want 0", high[0].Confidence)
	}
}

func TestClassifyCreditExcluded(t *testing.T) {
	// Deduction categories only consider debits; an insurance refund credit
	// must stay unassigned.
	reg := loadRules(t, insuranceRule)
	input := txn(t, "2024-05-03", "LIC PREMIUM REFUND", 2000, domain.DirectionCredit)

	got := Classify(seqOf(input), reg, 0.3)
	if got[0].Assigned() {
		t.Errorf("credit transaction assigned %q, want none", got[0].Category)
	}
}

func TestClassifyExcludeKeywords(t *testing.T) {
	reg := loadRules(t, `
exclude: [salary, transfer]
categories:
  - label: Insurance
    weight: 3
    patterns: [premium, policy, insurance]
`)
	input := txn(t, "2024-05-03", "SALARY DEDUCTION GROUP INSURANCE PREMIUM", 1500, domain.DirectionDebit)

	got := Classify(seqOf(input), reg, 0.3)
	if got[0].Assigned() {
		t.Errorf("excluded transaction assigned %q, want none", got[0].Category)
	}
}

func TestClassifyTieBreakLexicographic(t *testing.T) {
	// Two categories matching identically must resolve to the smaller label
	// so reports stay reproducible.
	reg := loadRules(t, `
categories:
  - label: Utilities
    weight: 1
    patterns: [broadband]
  - label: Connectivity
    weight: 1
    patterns: [broadband]
`)
	input := txn(t, "2024-05-03", "AIRTEL BROADBAND BILL", 1200, domain.DirectionDebit)

	for i := 0; i < 5; i++ {
		got := Classify(seqOf(input), reg, 0.3)
		if got[0].Category != "Connectivity" {
			t.Fatalf("run %d: Category = %q, want Connectivity (lexicographically smallest)", i, got[0].Category)
		}
	}
}

func TestClassifyStrictlyHighestWins(t *testing.T) {
	reg := loadRules(t, `
categories:
  - label: Alpha
    weight: 1
    patterns: [rent, deposit]
  - label: Beta
    weight: 1
    patterns: [rent]
`)
	// Beta scores 1.0, Alpha 0.5: Beta wins despite the larger label.
	input := txn(t, "2024-05-03", "RENT PAYMENT", 18000, domain.DirectionDebit)

	got := Classify(seqOf(input), reg, 0.3)
	if got[0].Category != "Beta" {
		t.Errorf("Category = %q, want Beta", got[0].Category)
	}
	if got[0].Confidence != 1.0 {
		t.Errorf("Confidence = %f, want 1.0", got[0].Confidence)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	reg, err := rules.LoadEmbedded()
	if err != nil {
		t.Fatal(err)
	}
	txns := []domain.Transaction{
		txn(t, "2024-05-03", "POS DEBIT LIC PREMIUM", 12000, domain.DirectionDebit),
		txn(t, "2024-05-04", "APOLLO PHARMACY", 650.50, domain.DirectionDebit),
		txn(t, "2024-05-05", "AIRTEL BROADBAND BILL", 1200, domain.DirectionDebit),
		txn(t, "2024-05-06", "UNKNOWN MERCHANT 42", 99, domain.DirectionDebit),
	}

	first := Classify(seqOf(txns...), reg, DefaultThreshold)
	second := Classify(seqOf(txns...), reg, DefaultThreshold)
	if len(first) != len(second) {
		t.Fatalf("result lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Category != second[i].Category || first[i].Confidence != second[i].Confidence {
			t.Errorf("run mismatch at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestClassifyEmptySequence(t *testing.T) {
	reg := loadRules(t, insuranceRule)
	if got := Classify(seqOf(), reg, 0.3); len(got) != 0 {
		t.Errorf("Classify(empty) returned %d results, want 0", len(got))
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  POS   DEBIT\tLIC  PREMIUM ", "pos debit lic premium"},
		{"CAFÉ MONDEGAR", "cafe mondegar"},
		{"already lower", "already lower"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
