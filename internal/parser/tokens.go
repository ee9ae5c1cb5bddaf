package parser

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts lists accepted date formats. Day-first layouts come before
// month-first because Indian statements are day-first.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"02/01/06",
	"02-Jan-2006",
	"02 Jan 2006",
	"Jan 02, 2006",
}

// ParseDate tries the accepted layouts and returns the ISO form.
func ParseDate(token string) (string, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// currencyPrefixes are stripped before numeric parsing.
var currencyPrefixes = []string{"₹", "Rs.", "Rs", "INR", "$"}

// ParseAmount extracts a numeric amount from a token. Handles currency
// symbols, thousands separators, parenthesized negatives, and leading or
// trailing signs. Returns the absolute value plus a negative flag.
func ParseAmount(token string) (amount float64, negative bool, ok bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, false, false
	}

	if strings.HasPrefix(token, "(") && strings.HasSuffix(token, ")") {
		negative = true
		token = strings.TrimSuffix(strings.TrimPrefix(token, "("), ")")
	}

	for _, prefix := range currencyPrefixes {
		if strings.HasPrefix(token, prefix) {
			token = strings.TrimSpace(strings.TrimPrefix(token, prefix))
			break
		}
	}

	if strings.HasPrefix(token, "-") {
		negative = true
		token = token[1:]
	} else if strings.HasPrefix(token, "+") {
		token = token[1:]
	}
	if strings.HasSuffix(token, "-") {
		negative = true
		token = token[:len(token)-1]
	}

	token = strings.ReplaceAll(token, ",", "")
	if token == "" {
		return 0, false, false
	}

	// Reject tokens with stray characters; strconv alone would accept
	// exponents and hex floats that never appear in statements.
	sawDigit := false
	dots := 0
	for _, r := range token {
		switch {
		case r >= '0' && r <= '9':
			sawDigit = true
		case r == '.':
			dots++
			if dots > 1 {
				return 0, false, false
			}
		default:
			return 0, false, false
		}
	}
	if !sawDigit {
		return 0, false, false
	}

	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false, false
	}
	return v, negative, true
}
