// Package calculator turns an income profile into a tax liability breakdown.
package calculator

import (
	"fmt"
	"math"

	"github.com/rumor-ml/taxease/internal/domain"
	"github.com/rumor-ml/taxease/internal/taxrules"
)

// AdvanceTaxThreshold is the liability above which advance-tax installments
// apply, per section 208.
const AdvanceTaxThreshold = 10000.0

// Compute applies a rule set to an income profile. Pure and re-entrant: no
// shared state, so callers may invoke it repeatedly with different rule sets
// for regime comparison.
func Compute(profile *domain.IncomeProfile, rules *taxrules.RuleSet) (*domain.TaxBreakdown, error) {
	if profile == nil {
		return nil, fmt.Errorf("%w: profile cannot be nil", domain.ErrInvalidInput)
	}
	if rules == nil {
		return nil, fmt.Errorf("%w: rule set cannot be nil", domain.ErrInvalidInput)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	gross := profile.GrossIncome()

	// Standard deduction applies to salaried income only.
	standardDeduction := 0.0
	if profile.Salary > 0 {
		standardDeduction = rules.StandardDeduction
	}

	taxable := gross - standardDeduction - profile.Exemptions
	if taxable < 0 {
		taxable = 0
	}

	taxBeforeRebate := bracketTax(taxable, rules.Brackets)

	rebate := 0.0
	if taxable <= rules.RebateThreshold {
		rebate = rules.RebateAmount
	}
	taxAfterRebate := taxBeforeRebate - rebate
	if taxAfterRebate < 0 {
		taxAfterRebate = 0
	}

	cess := roundToPaise(taxAfterRebate * rules.CessRate)
	total := taxAfterRebate + cess

	breakdown := &domain.TaxBreakdown{
		GrossIncome:       gross,
		StandardDeduction: standardDeduction,
		TaxableIncome:     taxable,
		TaxBeforeRebate:   taxBeforeRebate,
		RebateApplied:     rebate,
		TaxAfterRebate:    taxAfterRebate,
		Cess:              cess,
		TotalTax:          total,
	}

	if total >= AdvanceTaxThreshold {
		breakdown.AdvanceSchedule = advanceSchedule(total, rules.AdvanceTaxDue)
	}

	return breakdown, nil
}

// bracketTax walks the slab schedule, taxing the portion of taxable income
// covered by each bracket. Brackets entirely above taxable income contribute
// nothing; the walk stops once income is exhausted.
func bracketTax(taxable float64, brackets []taxrules.Bracket) float64 {
	var tax float64
	for _, b := range brackets {
		if taxable <= b.Lower {
			break
		}
		top := math.Min(taxable, b.Upper)
		tax += (top - b.Lower) * b.Rate
	}
	return tax
}

// roundToPaise rounds to the smallest currency unit using round-half-up.
func roundToPaise(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// advanceSchedule splits the liability into cumulative installments.
// Installments sum to the total by construction (final percent is 100).
func advanceSchedule(totalTax float64, due []taxrules.AdvanceDue) []domain.AdvanceInstallment {
	if len(due) == 0 {
		return nil
	}
	schedule := make([]domain.AdvanceInstallment, 0, len(due))
	prevCumulative := 0.0
	for _, d := range due {
		cumulative := roundToPaise(totalTax * float64(d.CumulativePercent) / 100)
		schedule = append(schedule, domain.AdvanceInstallment{
			DueDate:           d.DueDate,
			CumulativePercent: d.CumulativePercent,
			Installment:       roundToPaise(cumulative - prevCumulative),
			Cumulative:        cumulative,
		})
		prevCumulative = cumulative
	}
	return schedule
}
