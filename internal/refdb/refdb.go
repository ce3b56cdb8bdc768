// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refdb provides read-only access to the reference database the
// imported project is linked against: the coded process records
// ("activities") and the elementary-flow list. The data lives in a local
// SQLite file with an FTS5 index over activity names so the matching
// cascade can run filtered searches before falling back to full scans.
package refdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/CIRAIG/bw-Simporter/pkg/types"
)

const defaultMaxResults = 25

// Activity is one coded process record in the reference database.
type Activity struct {
	Code             string
	Name             string
	ReferenceProduct string
	Location         string
	Unit             string
}

// Flow is one elementary flow in the reference flow list. Categories
// holds the compartment and, when specified, the subcompartment.
type Flow struct {
	Code       string
	Name       string
	Categories []string
}

// DB wraps the reference database connection.
type DB struct {
	db         *sql.DB
	maxResults int
}

// Open opens the reference database file. The connection is treated as
// read-only by the matching stages; CreateSchema and the Add helpers
// exist for loaders and test fixtures.
func Open(cfg types.RefDBConfig) (*DB, error) {
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening reference database: %w", err)
	}

	maxResults := cfg.MaxSearchResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	return &DB{db: db, maxResults: maxResults}, nil
}

// Close releases the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// CreateSchema creates the activity and flow tables with their FTS5
// index. Existing tables are left alone.
func (d *DB) CreateSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS activities (
			code TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			reference_product TEXT NOT NULL,
			location TEXT NOT NULL,
			unit TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_location ON activities(location)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS activities_fts USING fts5(
			name, reference_product,
			content='activities', content_rowid='rowid'
		)`,
		`CREATE TRIGGER IF NOT EXISTS activities_ai AFTER INSERT ON activities BEGIN
			INSERT INTO activities_fts(rowid, name, reference_product)
			VALUES (new.rowid, new.name, new.reference_product);
		END`,
		`CREATE TRIGGER IF NOT EXISTS activities_ad AFTER DELETE ON activities BEGIN
			INSERT INTO activities_fts(activities_fts, rowid, name, reference_product)
			VALUES ('delete', old.rowid, old.name, old.reference_product);
		END`,
		`CREATE TABLE IF NOT EXISTS flows (
			code TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			categories TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_flows_name ON flows(name)`,
		`CREATE INDEX IF NOT EXISTS idx_flows_categories ON flows(categories)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS flows_fts USING fts5(
			name,
			content='flows', content_rowid='rowid'
		)`,
		`CREATE TRIGGER IF NOT EXISTS flows_ai AFTER INSERT ON flows BEGIN
			INSERT INTO flows_fts(rowid, name) VALUES (new.rowid, new.name);
		END`,
	}

	for _, stmt := range statements {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// AddActivity inserts one activity record.
func (d *DB) AddActivity(ctx context.Context, a Activity) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO activities (code, name, reference_product, location, unit)
		 VALUES (?, ?, ?, ?, ?)`,
		a.Code, a.Name, a.ReferenceProduct, a.Location, a.Unit)
	if err != nil {
		return fmt.Errorf("inserting activity %s: %w", a.Code, err)
	}
	return nil
}

// AddFlow inserts one elementary flow record.
func (d *DB) AddFlow(ctx context.Context, f Flow) error {
	cats, err := json.Marshal(f.Categories)
	if err != nil {
		return fmt.Errorf("encoding categories: %w", err)
	}
	if _, err := d.db.ExecContext(ctx,
		`INSERT INTO flows (code, name, categories) VALUES (?, ?, ?)`,
		f.Code, f.Name, string(cats)); err != nil {
		return fmt.Errorf("inserting flow %s: %w", f.Code, err)
	}
	return nil
}

// SearchActivities runs an FTS name/product search, optionally narrowed
// to one location, and returns up to MaxSearchResults candidates. The
// caller applies its own exactness predicate over the candidates.
func (d *DB) SearchActivities(ctx context.Context, term, location string) ([]Activity, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT a.code, a.name, a.reference_product, a.location, a.unit
		 FROM activities_fts
		 JOIN activities a ON a.rowid = activities_fts.rowid
		 WHERE activities_fts MATCH ?`)
	args = append(args, ftsQuery(term))

	if location != "" {
		qb.WriteString(` AND a.location = ?`)
		args = append(args, location)
	}

	qb.WriteString(` ORDER BY activities_fts.rank LIMIT ?`)
	args = append(args, d.maxResults)

	return d.queryActivities(ctx, qb.String(), args...)
}

// FindActivities returns the records matching name and reference product
// case-insensitively and the location exactly. This is the full-table
// equality scan the cascade falls back to when filtered search misses.
func (d *DB) FindActivities(ctx context.Context, name, refProduct, location string) ([]Activity, error) {
	return d.queryActivities(ctx,
		`SELECT code, name, reference_product, location, unit
		 FROM activities
		 WHERE LOWER(name) = LOWER(?)
		   AND LOWER(reference_product) = LOWER(?)
		   AND location = ?`,
		name, refProduct, location)
}

// EachActivity streams every activity record to fn, stopping on the
// first error fn returns.
func (d *DB) EachActivity(ctx context.Context, fn func(Activity) error) error {
	rows, err := d.db.QueryContext(ctx,
		`SELECT code, name, reference_product, location, unit FROM activities`)
	if err != nil {
		return fmt.Errorf("iterating activities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a Activity
		var unit sql.NullString
		if err := rows.Scan(&a.Code, &a.Name, &a.ReferenceProduct, &a.Location, &unit); err != nil {
			return fmt.Errorf("scanning activity: %w", err)
		}
		a.Unit = unit.String
		if err := fn(a); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (d *DB) queryActivities(ctx context.Context, query string, args ...any) ([]Activity, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		var unit sql.NullString
		if err := rows.Scan(&a.Code, &a.Name, &a.ReferenceProduct, &a.Location, &unit); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		a.Unit = unit.String
		out = append(out, a)
	}
	return out, rows.Err()
}

// FindFlows returns the flows with the exact name and category path.
func (d *DB) FindFlows(ctx context.Context, name string, categories []string) ([]Flow, error) {
	cats, err := json.Marshal(categories)
	if err != nil {
		return nil, fmt.Errorf("encoding categories: %w", err)
	}
	return d.queryFlows(ctx,
		`SELECT code, name, categories FROM flows WHERE name = ? AND categories = ?`,
		name, string(cats))
}

// SearchFlows runs an FTS search over flow names.
func (d *DB) SearchFlows(ctx context.Context, term string) ([]Flow, error) {
	return d.queryFlows(ctx,
		`SELECT f.code, f.name, f.categories
		 FROM flows_fts
		 JOIN flows f ON f.rowid = flows_fts.rowid
		 WHERE flows_fts MATCH ?
		 ORDER BY flows_fts.rank LIMIT ?`,
		ftsQuery(term), d.maxResults)
}

func (d *DB) queryFlows(ctx context.Context, query string, args ...any) ([]Flow, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying flows: %w", err)
	}
	defer rows.Close()

	var out []Flow
	for rows.Next() {
		var f Flow
		var cats string
		if err := rows.Scan(&f.Code, &f.Name, &cats); err != nil {
			return nil, fmt.Errorf("scanning flow: %w", err)
		}
		if err := json.Unmarshal([]byte(cats), &f.Categories); err != nil {
			return nil, fmt.Errorf("decoding categories for %s: %w", f.Code, err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ftsQuery turns a free-text name into an FTS5 phrase query. Activity
// names are full of commas and braces that FTS5 would otherwise parse as
// operators, so the whole term is quoted.
func ftsQuery(term string) string {
	return `"` + strings.ReplaceAll(term, `"`, ``) + `"`
}
