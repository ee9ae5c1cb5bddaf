package csv

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rumor-ml/taxease/internal/domain"
)

func TestCanParse(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		header string
		want   bool
	}{
		{
			name: "csv extension",
			path: "statement.csv",
			want: true,
		},
		{
			name: "uppercase extension",
			path: "STATEMENT.CSV",
			want: true,
		},
		{
			name:   "delimited header with date column",
			path:   "export.txt",
			header: "Date,Narration,Withdrawal Amt.,Deposit Amt.,Balance",
			want:   true,
		},
		{
			name:   "free text",
			path:   "notes.txt",
			header: "2024-05-03 POS DEBIT LIC PREMIUM 12000.00",
			want:   false,
		},
		{
			name:   "commas but no date column",
			path:   "data.txt",
			header: "a,b,c",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewParser().CanParse(tt.path, []byte(tt.header)); got != tt.want {
				t.Errorf("CanParse(%q, %q) = %v, want %v", tt.path, tt.header, got, tt.want)
			}
		})
	}
}

func TestParseWithdrawalDepositColumns(t *testing.T) {
	input := strings.Join([]string{
		"Date,Narration,Withdrawal Amt.,Deposit Amt.,Balance",
		"03/05/2024,LIC PREMIUM PAYMENT,12000.00,,45230.50",
		"05/05/2024,SALARY FOR APRIL,,85000.00,130230.50",
	}, "\n")

	stmt, err := NewParser().Parse(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	txns := stmt.Collect()
	if len(txns) != 2 {
		t.Fatalf("parsed %d transactions, want 2", len(txns))
	}
	if txns[0].Date != "2024-05-03" || txns[0].Direction != domain.DirectionDebit || txns[0].Amount != 12000.00 {
		t.Errorf("withdrawal row = %+v", txns[0])
	}
	if txns[1].Direction != domain.DirectionCredit || txns[1].Amount != 85000.00 {
		t.Errorf("deposit row = %+v", txns[1])
	}
}

func TestParseSkipsLeadingJunkRows(t *testing.T) {
	input := strings.Join([]string{
		"HDFC Bank Statement",
		"Account: XXXX1234,,,",
		",,,",
		"Date,Description,Amount",
		"03/05/2024,APOLLO PHARMACY,650.50",
	}, "\n")

	stmt, err := NewParser().Parse(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	txns := stmt.Collect()
	if len(txns) != 1 {
		t.Fatalf("parsed %d transactions, want 1", len(txns))
	}
	if txns[0].Description != "APOLLO PHARMACY" || txns[0].Amount != 650.50 {
		t.Errorf("transaction = %+v", txns[0])
	}
}

func TestParseCountsBadRows(t *testing.T) {
	input := strings.Join([]string{
		"Date,Narration,Withdrawal Amt.,Deposit Amt.",
		"03/05/2024,LIC PREMIUM,12000.00,",
		"not-a-date,BROKEN ROW,50.00,",
		"04/05/2024,,100.00,",
	}, "\n")

	stmt, err := NewParser().Parse(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	diag := stmt.Diagnostics()
	if diag.LinesSeen != 3 || diag.LinesParsed != 1 {
		t.Errorf("diagnostics = %+v, want 3 seen / 1 parsed", diag)
	}
}

func TestParseNoHeader(t *testing.T) {
	input := "just,some,values\n1,2,3\n"
	_, err := NewParser().Parse(context.Background(), strings.NewReader(input))
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Errorf("Parse() = %v, want ErrEmptyInput", err)
	}
}

func TestParseHeaderButNoRows(t *testing.T) {
	input := "Date,Narration,Withdrawal Amt.,Deposit Amt.\n"
	_, err := NewParser().Parse(context.Background(), strings.NewReader(input))
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Errorf("Parse() = %v, want ErrEmptyInput", err)
	}
}
