// Package rules provides a YAML-based rule registry for deduction
// categorization.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rumor-ml/taxease/internal/domain"
)

//go:embed rules.yaml
var embeddedRules []byte

// MaxWeight bounds rule weights; scores are clamped to [0,1] downstream, so
// weights far above 1 only serve to force a category through sparse matches.
const MaxWeight = 10.0

// CategoryRule represents one deduction category.
//
// Rules should be created via YAML loading (LoadEmbedded, LoadFromFile,
// Load), which validates all invariants:
//   - Label must be non-empty and unique within the set
//   - Weight in range (0, 10]
//   - At least one non-empty pattern
//   - Direction must be a valid domain.Direction (defaults to debit)
//
// Direct struct construction bypasses validation. Fields are exported for
// YAML unmarshaling and testing.
type CategoryRule struct {
	Label     string           `yaml:"label"`
	Patterns  []string         `yaml:"patterns"`
	Weight    float64          `yaml:"weight"`
	Direction domain.Direction `yaml:"direction"`
	Sections  []string         `yaml:"sections"`
}

// Registry holds the validated rule set plus the global exclude list.
type Registry struct {
	rules   []CategoryRule
	exclude []string
}

type rulesFile struct {
	Exclude    []string       `yaml:"exclude"`
	Categories []CategoryRule `yaml:"categories"`
}

// Load parses and validates rules from YAML data.
func Load(data []byte) (*Registry, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules YAML: %w", err)
	}

	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("rules file contains no categories")
	}

	seen := make(map[string]bool, len(file.Categories))
	rules := make([]CategoryRule, 0, len(file.Categories))
	for i, rule := range file.Categories {
		rule.Label = strings.TrimSpace(rule.Label)
		if rule.Label == "" {
			return nil, fmt.Errorf("category %d: label cannot be empty", i)
		}
		if seen[rule.Label] {
			return nil, fmt.Errorf("category %d (%s): duplicate label", i, rule.Label)
		}
		seen[rule.Label] = true

		if rule.Weight <= 0 || rule.Weight > MaxWeight {
			return nil, fmt.Errorf("category %d (%s): weight must be in (0, %g], got %g",
				i, rule.Label, MaxWeight, rule.Weight)
		}

		if rule.Direction == "" {
			rule.Direction = domain.DirectionDebit
		}
		if !domain.ValidateDirection(rule.Direction) {
			return nil, fmt.Errorf("category %d (%s): invalid direction %q",
				i, rule.Label, rule.Direction)
		}

		if len(rule.Patterns) == 0 {
			return nil, fmt.Errorf("category %d (%s): at least one pattern required", i, rule.Label)
		}
		patterns := make([]string, 0, len(rule.Patterns))
		for j, p := range rule.Patterns {
			p = strings.ToLower(strings.TrimSpace(p))
			if p == "" {
				return nil, fmt.Errorf("category %d (%s): pattern %d is empty", i, rule.Label, j)
			}
			patterns = append(patterns, p)
		}
		rule.Patterns = patterns

		rules = append(rules, rule)
	}

	exclude := make([]string, 0, len(file.Exclude))
	for i, kw := range file.Exclude {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			return nil, fmt.Errorf("exclude keyword %d is empty", i)
		}
		exclude = append(exclude, kw)
	}

	return &Registry{rules: rules, exclude: exclude}, nil
}

// LoadEmbedded loads the rules shipped with the binary.
func LoadEmbedded() (*Registry, error) {
	return Load(embeddedRules)
}

// LoadFromFile loads rules from a user-supplied YAML file.
func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	registry, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return registry, nil
}

// Rules returns the validated category rules in file order.
func (r *Registry) Rules() []CategoryRule {
	out := make([]CategoryRule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Excluded reports whether a normalized description contains an exclude
// keyword. Excluded transactions are never assigned a category.
func (r *Registry) Excluded(normalizedDesc string) bool {
	for _, kw := range r.exclude {
		if strings.Contains(normalizedDesc, kw) {
			return true
		}
	}
	return false
}

// SectionsFor returns the income-tax sections mapped to a category label,
// or nil when the label is unknown.
func (r *Registry) SectionsFor(label string) []string {
	for _, rule := range r.rules {
		if rule.Label == label {
			out := make([]string, len(rule.Sections))
			copy(out, rule.Sections)
			return out
		}
	}
	return nil
}
