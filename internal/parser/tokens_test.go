package parser

import "testing"

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-05-03", "2024-05-03", true},
		{"2024/05/03", "2024-05-03", true},
		{"03/05/2024", "2024-05-03", true},
		{"03-05-2024", "2024-05-03", true},
		{"03/05/24", "2024-05-03", true},
		{"03-May-2024", "2024-05-03", true},
		{"03 May 2024", "2024-05-03", true},
		{"May 03, 2024", "2024-05-03", true},
		{"  2024-05-03  ", "2024-05-03", true},
		{"not-a-date", "", false},
		{"", "", false},
		{"2024-13-40", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseDate(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in       string
		want     float64
		negative bool
		ok       bool
	}{
		{"12000.00", 12000.00, false, true},
		{"12,000.00", 12000.00, false, true},
		{"1,20,000.50", 120000.50, false, true},
		{"₹500", 500, false, true},
		{"Rs.500", 500, false, true},
		{"Rs 500", 500, false, true},
		{"INR 2500.75", 2500.75, false, true},
		{"-450.25", 450.25, true, true},
		{"+450.25", 450.25, false, true},
		{"450.25-", 450.25, true, true},
		{"(300.00)", 300.00, true, true},
		{"0", 0, false, true},
		{"", 0, false, false},
		{"abc", 0, false, false},
		{"12.34.56", 0, false, false},
		{"1e5", 0, false, false},
		{"DR", 0, false, false},
	}

	for _, tt := range tests {
		got, negative, ok := ParseAmount(tt.in)
		if ok != tt.ok || got != tt.want || negative != tt.negative {
			t.Errorf("ParseAmount(%q) = %f, %v, %v; want %f, %v, %v",
				tt.in, got, negative, ok, tt.want, tt.negative, tt.ok)
		}
	}
}
