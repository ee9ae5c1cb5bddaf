// Package store keeps a local history of profiles and generated reports.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rumor-ml/taxease/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	pan        TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	data       BLOB NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS reports (
	id           TEXT PRIMARY KEY,
	pan          TEXT NOT NULL DEFAULT '',
	generated_at TEXT NOT NULL,
	regime       TEXT NOT NULL,
	fiscal_year  TEXT NOT NULL,
	body         BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_pan ON reports(pan, generated_at);
`

// Store is a SQLite-backed history of profiles and reports.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history store %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveProfile upserts an income profile keyed by PAN.
func (s *Store) SaveProfile(ctx context.Context, pan, name string, profile *domain.IncomeProfile) error {
	if pan == "" {
		return fmt.Errorf("%w: PAN cannot be empty", domain.ErrInvalidInput)
	}
	if profile == nil {
		return fmt.Errorf("%w: profile cannot be nil", domain.ErrInvalidInput)
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (pan, name, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(pan) DO UPDATE SET name = excluded.name, data = excluded.data, updated_at = excluded.updated_at`,
		pan, name, data, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save profile for %s: %w", pan, err)
	}
	return nil
}

// LoadProfile fetches a stored income profile by PAN.
// Returns sql.ErrNoRows when the PAN has no saved profile.
func (s *Store) LoadProfile(ctx context.Context, pan string) (*domain.IncomeProfile, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM profiles WHERE pan = ?`, pan).Scan(&data)
	if err != nil {
		return nil, err // Preserve sql.ErrNoRows for caller
	}

	var profile domain.IncomeProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile for %s: %w", pan, err)
	}
	return &profile, nil
}

// SaveReport records a generated report, optionally linked to a PAN.
func (s *Store) SaveReport(ctx context.Context, pan string, rep *domain.TaxReport) error {
	if rep == nil {
		return fmt.Errorf("%w: report cannot be nil", domain.ErrInvalidInput)
	}
	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (id, pan, generated_at, regime, fiscal_year, body)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rep.Meta.ID, pan, rep.Meta.GeneratedAt.UTC().Format(time.RFC3339),
		rep.Meta.Regime, rep.Meta.FiscalYear, body)
	if err != nil {
		return fmt.Errorf("failed to save report %s: %w", rep.Meta.ID, err)
	}
	return nil
}

// ReportRecord summarizes one stored report.
type ReportRecord struct {
	ID          string
	PAN         string
	GeneratedAt time.Time
	Regime      string
	FiscalYear  string
}

// ListReports returns stored report records for a PAN, newest first.
// An empty PAN lists every report.
func (s *Store) ListReports(ctx context.Context, pan string) ([]ReportRecord, error) {
	query := `SELECT id, pan, generated_at, regime, fiscal_year FROM reports`
	args := []any{}
	if pan != "" {
		query += ` WHERE pan = ?`
		args = append(args, pan)
	}
	query += ` ORDER BY generated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var records []ReportRecord
	for rows.Next() {
		var rec ReportRecord
		var generatedAt string
		if err := rows.Scan(&rec.ID, &rec.PAN, &generatedAt, &rec.Regime, &rec.FiscalYear); err != nil {
			return nil, fmt.Errorf("failed to scan report record: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, generatedAt); err == nil {
			rec.GeneratedAt = t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read report records: %w", err)
	}
	return records, nil
}

// LoadReport fetches a full stored report by ID.
// Returns sql.ErrNoRows when the ID is unknown.
func (s *Store) LoadReport(ctx context.Context, id string) (*domain.TaxReport, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM reports WHERE id = ?`, id).Scan(&body)
	if err != nil {
		return nil, err // Preserve sql.ErrNoRows for caller
	}

	var rep domain.TaxReport
	if err := json.Unmarshal(body, &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %s: %w", id, err)
	}
	return &rep, nil
}
