package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rumor-ml/taxease/internal/assistant"
	"github.com/rumor-ml/taxease/internal/calculator"
	"github.com/rumor-ml/taxease/internal/classifier"
	"github.com/rumor-ml/taxease/internal/domain"
	"github.com/rumor-ml/taxease/internal/registry"
	"github.com/rumor-ml/taxease/internal/report"
	"github.com/rumor-ml/taxease/internal/rules"
	"github.com/rumor-ml/taxease/internal/session"
	"github.com/rumor-ml/taxease/internal/store"
	"github.com/rumor-ml/taxease/internal/taxrules"
	"github.com/rumor-ml/taxease/internal/ui"
)

const (
	version = "0.1.0"
)

var (
	// Global flags
	versionFlag = flag.Bool("version", false, "Show version")
	verbose     = flag.Bool("verbose", false, "Show detailed processing logs")

	// Tax calculation flags
	profileFile  = flag.String("profile", "", "Income profile JSON file")
	regime       = flag.String("regime", "new", "Tax regime")
	fiscalYear   = flag.String("year", "2024-25", "Fiscal year (e.g. 2024-25)")
	taxRulesFile = flag.String("tax-rules", "", "Tax rule sets YAML file (default: embedded)")

	// Statement analysis flags
	statementFile = flag.String("statement", "", "Bank statement file to analyze")
	rulesFile     = flag.String("rules", "", "Category rules YAML file (default: embedded)")
	threshold     = flag.Float64("threshold", classifier.DefaultThreshold, "Classification acceptance threshold")

	// Output and persistence flags
	outputFile  = flag.String("output", "", "Output JSON report file (default: text to stdout)")
	storeFile   = flag.String("store", "", "History database file")
	sessionFile = flag.String("session", "", "Session state file")
	pan         = flag.String("pan", "", "PAN to key stored profiles and reports")

	// Assistant flags
	askQuestion    = flag.String("ask", "", "Ask the tax assistant a question")
	assistantURL   = flag.String("assistant-url", "http://localhost:11434", "Assistant service base URL")
	assistantModel = flag.String("assistant-model", "llama3", "Assistant model name")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `taxease - Indian income tax calculator and statement analyzer

Usage:
  taxease [flags]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr, `
Examples:
  # Compute tax liability from an income profile
  taxease -profile income.json

  # Analyze a bank statement for deductible expenses
  taxease -statement statement.csv

  # Full report: liability plus deduction analysis, saved as JSON
  taxease -profile income.json -statement statement.csv -output report.json

  # Ask the tax assistant a question
  taxease -ask "What are the advance tax deadlines?"

`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("taxease version %s\n", version)
		os.Exit(0)
	}

	if *profileFile == "" && *statementFile == "" && *askQuestion == "" && *sessionFile == "" {
		fmt.Fprintf(os.Stderr, "Error: at least one of -profile, -statement, -session, or -ask is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	ui.Header(fmt.Sprintf("TaxEase (FY %s, %s regime)", *fiscalYear, *regime))

	// Session state is caller-owned: loaded here, threaded through, saved at
	// the end. The core packages never see it.
	var sess *session.Session
	if *sessionFile != "" {
		loaded, err := session.Load(*sessionFile)
		switch {
		case err == nil:
			sess = loaded
			ui.Info(fmt.Sprintf("Loaded session from %s", *sessionFile))
		case os.IsNotExist(err):
			sess = session.New()
		default:
			return err
		}
	}

	profile, err := loadProfile(sess)
	if err != nil {
		return err
	}

	totalSteps := countSteps(profile)
	step := 0

	// Statement analysis runs first so the deduction summary can ride along
	// in the report.
	summary := domain.NewDeductionSummary()
	var categoryRules *rules.Registry
	if *statementFile != "" {
		step++
		ui.Step(step, totalSteps, "Analyzing bank statement")
		categoryRules, err = loadCategoryRules()
		if err != nil {
			return err
		}
		summary, err = analyzeStatement(ctx, categoryRules)
		if err != nil {
			return err
		}
	}

	var taxReport *domain.TaxReport
	if profile != nil {
		step++
		ui.Step(step, totalSteps, "Computing tax liability")
		taxReport, err = computeReport(profile, summary)
		if err != nil {
			return err
		}

		step++
		ui.Step(step, totalSteps, "Writing report")
		if err := emitReport(taxReport, categoryRules); err != nil {
			return err
		}
	}

	if *storeFile != "" && (profile != nil || taxReport != nil) {
		if err := persistHistory(ctx, profile, taxReport); err != nil {
			return err
		}
	}

	if sess != nil {
		if profile != nil {
			sess.Profile = profile
		}
		if taxReport != nil {
			sess.Report = taxReport
		}
		if err := sess.Save(*sessionFile); err != nil {
			return err
		}
		ui.Success(fmt.Sprintf("Session saved to %s", *sessionFile))
	}

	// The assistant call is isolated: a failure here never invalidates the
	// report computed above, so it runs last and only warns unless it was
	// the sole requested action.
	if *askQuestion != "" {
		step++
		ui.Step(step, totalSteps, "Consulting tax assistant")
		client := assistant.NewClient(*assistantURL, *assistantModel)
		answer, err := client.Ask(ctx, *askQuestion)
		if err != nil {
			if profile == nil && *statementFile == "" {
				return err
			}
			ui.Warning(fmt.Sprintf("Assistant unavailable: %v", err))
		} else {
			fmt.Println()
			ui.BlueText("Assistant:")
			fmt.Println(answer)
		}
	}

	return nil
}

// loadProfile resolves the income profile: an explicit -profile file wins,
// otherwise the session's saved profile is reused.
func loadProfile(sess *session.Session) (*domain.IncomeProfile, error) {
	if *profileFile == "" {
		if sess != nil && sess.Profile != nil {
			return sess.Profile, nil
		}
		return nil, nil
	}

	data, err := os.ReadFile(*profileFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", *profileFile, err)
	}
	var profile domain.IncomeProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("%w: invalid profile JSON in %s: %v", domain.ErrInvalidInput, *profileFile, err)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

func countSteps(profile *domain.IncomeProfile) int {
	total := 0
	if *statementFile != "" {
		total++
	}
	if profile != nil {
		total += 2
	}
	if *askQuestion != "" {
		total++
	}
	return total
}

func loadCategoryRules() (*rules.Registry, error) {
	if *rulesFile != "" {
		return rules.LoadFromFile(*rulesFile)
	}
	return rules.LoadEmbedded()
}

func loadTaxRules() (*taxrules.Registry, error) {
	if *taxRulesFile != "" {
		return taxrules.LoadFromFile(*taxRulesFile)
	}
	return taxrules.LoadEmbedded()
}

// analyzeStatement parses, classifies, and summarizes the statement file.
func analyzeStatement(ctx context.Context, categoryRules *rules.Registry) (*domain.DeductionSummary, error) {
	reg := registry.New()
	p, err := reg.FindParser(*statementFile)
	if err != nil {
		return nil, err
	}
	if *verbose {
		ui.Info(fmt.Sprintf("Using %s parser for %s", p.Name(), *statementFile))
	}

	f, err := os.Open(*statementFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open statement %s: %w", *statementFile, err)
	}
	defer f.Close()

	stmt, err := p.Parse(ctx, f)
	if err != nil {
		return nil, err
	}

	diag := stmt.Diagnostics()
	if diag.LinesParsed < diag.LinesSeen {
		ui.Warning(fmt.Sprintf("Parsed %d of %d lines; %d skipped",
			diag.LinesParsed, diag.LinesSeen, diag.LinesSeen-diag.LinesParsed))
	} else {
		ui.Success(fmt.Sprintf("Parsed %d transactions", diag.LinesParsed))
	}

	classified := classifier.Classify(stmt.Transactions(), categoryRules, *threshold)
	summary, classDiag := classifier.Summarize(classified)
	if classDiag.DuplicatesSkipped > 0 {
		ui.Info(fmt.Sprintf("Skipped %d duplicate transactions", classDiag.DuplicatesSkipped))
	}
	if *verbose {
		for _, ct := range classified {
			if ct.Assigned() {
				ui.Info(fmt.Sprintf("%s  %s → %s (%.2f)", ct.Date, ct.Description, ct.Category, ct.Confidence))
			}
		}
	}

	return summary, nil
}

// computeReport runs the calculator and assembles the final report.
func computeReport(profile *domain.IncomeProfile, summary *domain.DeductionSummary) (*domain.TaxReport, error) {
	taxRegistry, err := loadTaxRules()
	if err != nil {
		return nil, err
	}
	ruleSet, err := taxRegistry.Lookup(*regime, *fiscalYear)
	if err != nil {
		return nil, err
	}

	breakdown, err := calculator.Compute(profile, ruleSet)
	if err != nil {
		return nil, err
	}

	return report.Assemble(breakdown, summary, report.NewMeta(*regime, *fiscalYear))
}

// emitReport renders the report as text and optionally writes the JSON form.
func emitReport(taxReport *domain.TaxReport, categoryRules *rules.Registry) error {
	var sections func(string) []string
	if categoryRules != nil {
		sections = categoryRules.SectionsFor
	}
	fmt.Println()
	fmt.Print(report.Render(taxReport, sections))

	if *outputFile != "" {
		if err := report.WriteReportToFile(taxReport, *outputFile); err != nil {
			return err
		}
		ui.Success(fmt.Sprintf("Report written to %s", *outputFile))
	}
	return nil
}

// persistHistory records the profile and report in the local store.
func persistHistory(ctx context.Context, profile *domain.IncomeProfile, taxReport *domain.TaxReport) error {
	st, err := store.Open(*storeFile)
	if err != nil {
		return err
	}
	defer st.Close()

	if profile != nil && *pan != "" {
		if err := st.SaveProfile(ctx, *pan, "", profile); err != nil {
			if !errors.Is(err, domain.ErrInvalidInput) {
				return err
			}
			ui.Warning(fmt.Sprintf("Profile not stored: %v", err))
		}
	}
	if taxReport != nil {
		if err := st.SaveReport(ctx, *pan, taxReport); err != nil {
			return err
		}
		ui.Success(fmt.Sprintf("Report recorded in %s", *storeFile))
	}
	return nil
}
