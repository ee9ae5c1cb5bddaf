package domain

import (
	"fmt"
	"sort"
	"time"
)

// Direction represents the transaction direction enum.
// Use ValidateDirection to ensure validity before use.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

var validDirections = map[Direction]struct{}{
	DirectionDebit: {}, DirectionCredit: {},
}

// ValidateDirection checks if direction is valid
func ValidateDirection(d Direction) bool {
	_, ok := validDirections[d]
	return ok
}

// Transaction is a single normalized statement entry.
// Amount is always non-negative; Direction carries the flow.
type Transaction struct {
	Date        string    `json:"date"` // ISO format YYYY-MM-DD
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Direction   Direction `json:"direction"`
}

// NewTransaction creates a validated transaction
func NewTransaction(date, description string, amount float64, direction Direction) (*Transaction, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date format: %w", err)
	}
	if description == "" {
		return nil, fmt.Errorf("description cannot be empty")
	}
	if amount < 0 {
		return nil, fmt.Errorf("amount must be non-negative, got %f", amount)
	}
	if !ValidateDirection(direction) {
		return nil, fmt.Errorf("invalid direction: %s", direction)
	}

	return &Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Direction:   direction,
	}, nil
}

// IncomeProfile holds the income figures supplied by the caller.
// Immutable once passed to the calculator; Validate must pass first.
type IncomeProfile struct {
	Salary      float64            `json:"salary"`
	OtherIncome map[string]float64 `json:"otherIncome,omitempty"`
	Exemptions  float64            `json:"exemptions"`
}

// Validate checks the profile invariants: every amount must be non-negative.
func (p *IncomeProfile) Validate() error {
	if p.Salary < 0 {
		return fmt.Errorf("%w: salary must be non-negative, got %.2f", ErrInvalidInput, p.Salary)
	}
	if p.Exemptions < 0 {
		return fmt.Errorf("%w: exemptions must be non-negative, got %.2f", ErrInvalidInput, p.Exemptions)
	}
	for source, amount := range p.OtherIncome {
		if source == "" {
			return fmt.Errorf("%w: income source label cannot be empty", ErrInvalidInput)
		}
		if amount < 0 {
			return fmt.Errorf("%w: income source %q must be non-negative, got %.2f", ErrInvalidInput, source, amount)
		}
	}
	return nil
}

// GrossIncome sums salary and all other income sources.
func (p *IncomeProfile) GrossIncome() float64 {
	total := p.Salary
	for _, amount := range p.OtherIncome {
		total += amount
	}
	return total
}

// Sources returns the other-income source labels in sorted order.
func (p *IncomeProfile) Sources() []string {
	labels := make([]string, 0, len(p.OtherIncome))
	for source := range p.OtherIncome {
		labels = append(labels, source)
	}
	sort.Strings(labels)
	return labels
}

// AdvanceInstallment is one installment of the advance-tax schedule.
type AdvanceInstallment struct {
	DueDate           string  `json:"dueDate"`
	CumulativePercent int     `json:"cumulativePercent"`
	Installment       float64 `json:"installment"`
	Cumulative        float64 `json:"cumulative"`
}

// TaxBreakdown is the calculator output. Derived, never mutated after
// creation. Invariant: TotalTax = TaxAfterRebate + Cess, all components >= 0.
type TaxBreakdown struct {
	GrossIncome       float64 `json:"grossIncome"`
	StandardDeduction float64 `json:"standardDeduction"`
	TaxableIncome     float64 `json:"taxableIncome"`
	TaxBeforeRebate   float64 `json:"taxBeforeRebate"`
	RebateApplied     float64 `json:"rebateApplied"`
	TaxAfterRebate    float64 `json:"taxAfterRebate"`
	Cess              float64 `json:"cess"`
	TotalTax          float64 `json:"totalTax"`

	// AdvanceSchedule is populated when TotalTax meets the advance-tax
	// threshold; empty otherwise.
	AdvanceSchedule []AdvanceInstallment `json:"advanceSchedule,omitempty"`
}

// ClassifiedTransaction wraps a Transaction with its category assignment.
// Invariant: Category is empty iff no rule met the acceptance threshold
// (or the transaction was excluded by direction or keyword).
type ClassifiedTransaction struct {
	Transaction
	Category        string   `json:"category,omitempty"`
	Confidence      float64  `json:"confidence"`
	MatchedPatterns []string `json:"matchedPatterns,omitempty"`
}

// Assigned reports whether the transaction received a category.
func (c *ClassifiedTransaction) Assigned() bool {
	return c.Category != ""
}

// CategoryTotal is the aggregate for one deduction category.
type CategoryTotal struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// DeductionSummary aggregates classified transactions per category.
// Recomputed fully on each analysis run.
type DeductionSummary struct {
	Categories   map[string]CategoryTotal `json:"categories"`
	Unclassified CategoryTotal            `json:"unclassified"`
}

// NewDeductionSummary creates an empty summary with an initialized map
func NewDeductionSummary() *DeductionSummary {
	return &DeductionSummary{Categories: make(map[string]CategoryTotal)}
}

// CategoryLabels returns assigned category labels in sorted order.
func (s *DeductionSummary) CategoryLabels() []string {
	labels := make([]string, 0, len(s.Categories))
	for label := range s.Categories {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// TotalDeductible sums the totals of all assigned categories.
func (s *DeductionSummary) TotalDeductible() float64 {
	var total float64
	for _, ct := range s.Categories {
		total += ct.Total
	}
	return total
}

// ReportMeta identifies a generated report.
type ReportMeta struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generatedAt"`
	Regime      string    `json:"regime"`
	FiscalYear  string    `json:"fiscalYear"`
}

// TaxReport combines the breakdown and deduction summary with metadata.
// Read-only once assembled.
type TaxReport struct {
	Meta       ReportMeta       `json:"meta"`
	Breakdown  TaxBreakdown     `json:"breakdown"`
	Deductions DeductionSummary `json:"deductions"`
}
