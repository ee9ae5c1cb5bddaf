// Package report assembles, renders, and persists tax reports.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rumor-ml/taxease/internal/domain"
)

// NewMeta builds report metadata with a fresh identifier.
func NewMeta(regime, fiscalYear string) domain.ReportMeta {
	return domain.ReportMeta{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Regime:      regime,
		FiscalYear:  fiscalYear,
	}
}

// Assemble combines a tax breakdown and deduction summary into a report.
// Pure composition: the inputs are copied verbatim, never recomputed or
// altered. Absent prerequisites fail with ErrMissingComponent.
func Assemble(breakdown *domain.TaxBreakdown, summary *domain.DeductionSummary, meta domain.ReportMeta) (*domain.TaxReport, error) {
	if breakdown == nil {
		return nil, fmt.Errorf("%w: tax breakdown is required", domain.ErrMissingComponent)
	}
	if summary == nil {
		return nil, fmt.Errorf("%w: deduction summary is required", domain.ErrMissingComponent)
	}

	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now().UTC()
	}

	return &domain.TaxReport{
		Meta:       meta,
		Breakdown:  *breakdown,
		Deductions: *summary,
	}, nil
}
