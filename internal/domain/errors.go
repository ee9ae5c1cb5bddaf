package domain

import "errors"

// Sentinel errors
var (
	// ErrInvalidInput is returned when a caller supplies a value that fails validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyInput is returned when a statement or document yields no usable data
	ErrEmptyInput = errors.New("empty input")

	// ErrUnknownRuleSet is returned when no rule set matches the requested regime and fiscal year
	ErrUnknownRuleSet = errors.New("unknown rule set")

	// ErrMissingComponent is returned when report assembly is attempted without a required part
	ErrMissingComponent = errors.New("missing component")

	// ErrExternalService is returned when the assistant endpoint fails or is unreachable
	ErrExternalService = errors.New("external service failure")
)
