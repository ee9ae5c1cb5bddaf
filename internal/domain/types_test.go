package domain

import (
	"errors"
	"testing"
)

func TestNewTransaction(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		desc      string
		amount    float64
		direction Direction
		wantErr   bool
	}{
		{
			name:      "valid debit",
			date:      "2024-05-03",
			desc:      "POS DEBIT LIC PREMIUM",
			amount:    12000.00,
			direction: DirectionDebit,
		},
		{
			name:      "valid credit",
			date:      "2024-04-01",
			desc:      "SALARY CREDIT",
			amount:    85000,
			direction: DirectionCredit,
		},
		{
			name:      "invalid date format",
			date:      "03/05/2024",
			desc:      "POS DEBIT",
			amount:    100,
			direction: DirectionDebit,
			wantErr:   true,
		},
		{
			name:      "empty description",
			date:      "2024-05-03",
			desc:      "",
			amount:    100,
			direction: DirectionDebit,
			wantErr:   true,
		},
		{
			name:      "negative amount",
			date:      "2024-05-03",
			desc:      "POS DEBIT",
			amount:    -5,
			direction: DirectionDebit,
			wantErr:   true,
		},
		{
			name:      "invalid direction",
			date:      "2024-05-03",
			desc:      "POS DEBIT",
			amount:    100,
			direction: Direction("sideways"),
			wantErr:   true,
		},
		{
			name:      "zero amount allowed",
			date:      "2024-05-03",
			desc:      "ZERO VALUE ENTRY",
			amount:    0,
			direction: DirectionDebit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := NewTransaction(tt.date, tt.desc, tt.amount, tt.direction)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewTransaction() expected error, got %+v", txn)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTransaction() unexpected error: %v", err)
			}
			if txn.Date != tt.date || txn.Amount != tt.amount {
				t.Errorf("NewTransaction() = %+v, want date %s amount %f", txn, tt.date, tt.amount)
			}
		})
	}
}

func TestIncomeProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile IncomeProfile
		wantErr bool
	}{
		{
			name:    "valid simple",
			profile: IncomeProfile{Salary: 700000},
		},
		{
			name: "valid with sources",
			profile: IncomeProfile{
				Salary:      500000,
				OtherIncome: map[string]float64{"rental": 120000, "interest": 8000},
				Exemptions:  25000,
			},
		},
		{
			name:    "negative salary",
			profile: IncomeProfile{Salary: -1},
			wantErr: true,
		},
		{
			name:    "negative exemptions",
			profile: IncomeProfile{Salary: 100, Exemptions: -10},
			wantErr: true,
		},
		{
			name: "negative income source",
			profile: IncomeProfile{
				Salary:      100,
				OtherIncome: map[string]float64{"rental": -5},
			},
			wantErr: true,
		},
		{
			name: "empty source label",
			profile: IncomeProfile{
				OtherIncome: map[string]float64{"": 100},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("Validate() = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestIncomeProfileGrossIncome(t *testing.T) {
	profile := IncomeProfile{
		Salary:      500000,
		OtherIncome: map[string]float64{"rental": 120000, "interest": 8000},
	}
	if got := profile.GrossIncome(); got != 628000 {
		t.Errorf("GrossIncome() = %f, want 628000", got)
	}
}

func TestIncomeProfileSourcesSorted(t *testing.T) {
	profile := IncomeProfile{
		OtherIncome: map[string]float64{"rental": 1, "dividends": 2, "interest": 3},
	}
	got := profile.Sources()
	want := []string{"dividends", "interest", "rental"}
	if len(got) != len(want) {
		t.Fatalf("Sources() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sources()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDeductionSummaryTotals(t *testing.T) {
	summary := NewDeductionSummary()
	summary.Categories["Medical"] = CategoryTotal{Total: 5000, Count: 2}
	summary.Categories["Insurance"] = CategoryTotal{Total: 12000, Count: 1}
	summary.Unclassified = CategoryTotal{Total: 800, Count: 3}

	if got := summary.TotalDeductible(); got != 17000 {
		t.Errorf("TotalDeductible() = %f, want 17000", got)
	}

	labels := summary.CategoryLabels()
	if len(labels) != 2 || labels[0] != "Insurance" || labels[1] != "Medical" {
		t.Errorf("CategoryLabels() = %v, want [Insurance Medical]", labels)
	}
}
