// Package taxrules provides versioned tax rule sets loaded from YAML.
package taxrules

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rumor-ml/taxease/internal/domain"
)

//go:embed taxrules.yaml
var embeddedRules []byte

// Bracket is one slab of the progressive schedule. Upper is the exclusive
// upper bound; math.Inf(1) marks the unbounded top bracket.
type Bracket struct {
	Lower float64
	Upper float64
	Rate  float64
}

// AdvanceDue is one advance-tax deadline with its cumulative percentage.
type AdvanceDue struct {
	DueDate           string
	CumulativePercent int
}

// RuleSet describes one regime/fiscal-year variant. Immutable after load.
type RuleSet struct {
	Regime            string
	FiscalYear        string
	StandardDeduction float64
	RebateThreshold   float64
	RebateAmount      float64
	CessRate          float64
	Brackets          []Bracket
	AdvanceTaxDue     []AdvanceDue
}

// Registry holds rule sets keyed by regime and fiscal year.
type Registry struct {
	sets map[string]*RuleSet
}

func key(regime, fiscalYear string) string {
	return regime + "|" + fiscalYear
}

// yamlBracket uses a pointer upper so the top bracket can omit it.
type yamlBracket struct {
	Upper *float64 `yaml:"upper"`
	Rate  float64  `yaml:"rate"`
}

type yamlAdvanceDue struct {
	Due               string `yaml:"due"`
	CumulativePercent int    `yaml:"cumulative_percent"`
}

type yamlRuleSet struct {
	Regime            string           `yaml:"regime"`
	FiscalYear        string           `yaml:"fiscal_year"`
	StandardDeduction float64          `yaml:"standard_deduction"`
	RebateThreshold   float64          `yaml:"rebate_threshold"`
	RebateAmount      float64          `yaml:"rebate_amount"`
	CessRate          float64          `yaml:"cess_rate"`
	Brackets          []yamlBracket    `yaml:"brackets"`
	AdvanceTax        []yamlAdvanceDue `yaml:"advance_tax"`
}

type yamlFile struct {
	RuleSets []yamlRuleSet `yaml:"rulesets"`
}

// Load creates a registry from YAML data, validating every rule set.
func Load(data []byte) (*Registry, error) {
	var file yamlFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML tax rules (check syntax, indentation, and field names): %w", err)
	}
	if len(file.RuleSets) == 0 {
		return nil, fmt.Errorf("tax rules file contains no rule sets")
	}

	reg := &Registry{sets: make(map[string]*RuleSet)}
	for i, raw := range file.RuleSets {
		rs, err := buildRuleSet(raw)
		if err != nil {
			return nil, fmt.Errorf("ruleset %d (%s %s): %w", i, raw.Regime, raw.FiscalYear, err)
		}
		k := key(rs.Regime, rs.FiscalYear)
		if _, exists := reg.sets[k]; exists {
			return nil, fmt.Errorf("ruleset %d: duplicate regime/fiscal-year pair %s/%s", i, rs.Regime, rs.FiscalYear)
		}
		reg.sets[k] = rs
	}
	return reg, nil
}

func buildRuleSet(raw yamlRuleSet) (*RuleSet, error) {
	if raw.Regime == "" {
		return nil, fmt.Errorf("regime cannot be empty")
	}
	if raw.FiscalYear == "" {
		return nil, fmt.Errorf("fiscal year cannot be empty")
	}
	if raw.StandardDeduction < 0 {
		return nil, fmt.Errorf("standard deduction must be non-negative, got %f", raw.StandardDeduction)
	}
	if raw.RebateThreshold < 0 || raw.RebateAmount < 0 {
		return nil, fmt.Errorf("rebate threshold and amount must be non-negative")
	}
	if raw.CessRate < 0 || raw.CessRate > 1 {
		return nil, fmt.Errorf("cess rate must be in [0,1], got %f", raw.CessRate)
	}
	if len(raw.Brackets) == 0 {
		return nil, fmt.Errorf("at least one bracket is required")
	}

	brackets := make([]Bracket, 0, len(raw.Brackets))
	lower := 0.0
	for i, b := range raw.Brackets {
		if b.Rate < 0 || b.Rate > 1 {
			return nil, fmt.Errorf("bracket %d: rate must be in [0,1], got %f", i, b.Rate)
		}
		upper := math.Inf(1)
		if b.Upper != nil {
			upper = *b.Upper
			if i == len(raw.Brackets)-1 {
				return nil, fmt.Errorf("bracket %d: top bracket must be unbounded (omit upper)", i)
			}
		} else if i != len(raw.Brackets)-1 {
			return nil, fmt.Errorf("bracket %d: only the top bracket may omit upper", i)
		}
		if upper <= lower {
			return nil, fmt.Errorf("bracket %d: upper bound %f must exceed lower bound %f", i, upper, lower)
		}
		brackets = append(brackets, Bracket{Lower: lower, Upper: upper, Rate: b.Rate})
		lower = upper
	}

	due := make([]AdvanceDue, 0, len(raw.AdvanceTax))
	prevPercent := 0
	for i, d := range raw.AdvanceTax {
		if _, err := time.Parse("2006-01-02", d.Due); err != nil {
			return nil, fmt.Errorf("advance tax %d: invalid due date %q: %w", i, d.Due, err)
		}
		if d.CumulativePercent <= prevPercent || d.CumulativePercent > 100 {
			return nil, fmt.Errorf("advance tax %d: cumulative percent must increase and stay within 100, got %d after %d", i, d.CumulativePercent, prevPercent)
		}
		prevPercent = d.CumulativePercent
		due = append(due, AdvanceDue{DueDate: d.Due, CumulativePercent: d.CumulativePercent})
	}

	return &RuleSet{
		Regime:            raw.Regime,
		FiscalYear:        raw.FiscalYear,
		StandardDeduction: raw.StandardDeduction,
		RebateThreshold:   raw.RebateThreshold,
		RebateAmount:      raw.RebateAmount,
		CessRate:          raw.CessRate,
		Brackets:          brackets,
		AdvanceTaxDue:     due,
	}, nil
}

// LoadEmbedded loads the embedded taxrules.yaml file
func LoadEmbedded() (*Registry, error) {
	reg, err := Load(embeddedRules)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded tax rules (possible binary corruption): %w", err)
	}
	return reg, nil
}

// LoadFromFile loads rule sets from a filesystem path
func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tax rules file: %w", err)
	}
	reg, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load tax rules from %q: %w", path, err)
	}
	return reg, nil
}

// Lookup returns the rule set for a regime and fiscal year.
// Fails with domain.ErrUnknownRuleSet when absent; callers must fall back
// or surface the error.
func (r *Registry) Lookup(regime, fiscalYear string) (*RuleSet, error) {
	rs, ok := r.sets[key(regime, fiscalYear)]
	if !ok {
		return nil, fmt.Errorf("%w: no rules for regime %q fiscal year %q", domain.ErrUnknownRuleSet, regime, fiscalYear)
	}
	return rs, nil
}

// RuleSets returns all loaded rule sets (order unspecified).
func (r *Registry) RuleSets() []*RuleSet {
	out := make([]*RuleSet, 0, len(r.sets))
	for _, rs := range r.sets {
		out = append(out, rs)
	}
	return out
}
