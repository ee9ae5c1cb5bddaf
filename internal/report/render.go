package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rumor-ml/taxease/internal/domain"
)

// printer renders numbers with Indian digit grouping (1,20,000.00).
var printer = message.NewPrinter(language.MustParse("en-IN"))

func rupees(v float64) string {
	return printer.Sprintf("₹%.2f", v)
}

// Render produces the text form of a report. Deterministic: the same report
// always renders to the same bytes. sections maps a category label to its
// income-tax sections and may be nil.
func Render(report *domain.TaxReport, sections func(label string) []string) string {
	var b strings.Builder
	rule := strings.Repeat("=", 39)

	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "INDIAN TAX CALCULATION REPORT (FY %s)\n", report.Meta.FiscalYear)
	fmt.Fprintf(&b, "%s TAX REGIME\n", strings.ToUpper(report.Meta.Regime))
	fmt.Fprintf(&b, "%s\n\n", rule)

	bd := report.Breakdown
	fmt.Fprintf(&b, "INCOME DETAILS:\n")
	fmt.Fprintf(&b, "Gross Income: %s\n", rupees(bd.GrossIncome))
	fmt.Fprintf(&b, "Standard Deduction: %s\n", rupees(bd.StandardDeduction))
	fmt.Fprintf(&b, "\nTOTAL TAXABLE INCOME: %s\n\n", rupees(bd.TaxableIncome))

	fmt.Fprintf(&b, "TAX CALCULATION:\n")
	fmt.Fprintf(&b, "Tax Before Rebate: %s\n", rupees(bd.TaxBeforeRebate))
	fmt.Fprintf(&b, "Rebate u/s 87A: %s\n", rupees(bd.RebateApplied))
	fmt.Fprintf(&b, "Tax After Rebate: %s\n", rupees(bd.TaxAfterRebate))
	fmt.Fprintf(&b, "Health and Education Cess: %s\n", rupees(bd.Cess))
	fmt.Fprintf(&b, "\nTOTAL TAX LIABILITY: %s\n", rupees(bd.TotalTax))

	if len(bd.AdvanceSchedule) > 0 {
		fmt.Fprintf(&b, "\nADVANCE TAX SCHEDULE:\n")
		for _, inst := range bd.AdvanceSchedule {
			fmt.Fprintf(&b, "%s - %s (%d%% cumulative)\n",
				inst.DueDate, rupees(inst.Installment), inst.CumulativePercent)
		}
	}

	renderDeductions(&b, &report.Deductions, sections)

	fmt.Fprintf(&b, "\nIMPORTANT NOTES:\n")
	fmt.Fprintf(&b, "1. Deduction analysis is based on keyword matching and may not be 100%% accurate.\n")
	fmt.Fprintf(&b, "2. Not all identified expenses may qualify for tax deductions.\n")
	fmt.Fprintf(&b, "3. Most deductions like 80C and 80D are not available in the new tax regime.\n")
	fmt.Fprintf(&b, "4. Please consult a tax professional for accurate advice.\n")

	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "This is a computer-generated report and does not require a signature.\n")
	fmt.Fprintf(&b, "Report %s generated on: %s\n", report.Meta.ID,
		report.Meta.GeneratedAt.Format("02-01-2006 15:04:05"))
	fmt.Fprintf(&b, "%s\n", rule)

	return b.String()
}

func renderDeductions(b *strings.Builder, summary *domain.DeductionSummary, sections func(label string) []string) {
	labels := summary.CategoryLabels()
	if len(labels) == 0 && summary.Unclassified.Count == 0 {
		return
	}

	fmt.Fprintf(b, "\nPOTENTIALLY DEDUCTIBLE EXPENSES BY CATEGORY:\n")
	for _, label := range labels {
		ct := summary.Categories[label]
		line := fmt.Sprintf("- %s: %s (%d transactions)", label, rupees(ct.Total), ct.Count)
		if sections != nil {
			if secs := sections(label); len(secs) > 0 {
				line += fmt.Sprintf(" (Applicable Sections: %s)", strings.Join(secs, ", "))
			}
		}
		fmt.Fprintf(b, "%s\n", line)
	}
	fmt.Fprintf(b, "\nTotal Potentially Deductible: %s\n", rupees(summary.TotalDeductible()))

	if summary.Unclassified.Count > 0 {
		fmt.Fprintf(b, "Unclassified: %s (%d transactions)\n",
			rupees(summary.Unclassified.Total), summary.Unclassified.Count)
	}
}
