// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package persist writes a fully resolved project into a SQLite project
// database: the coded processes, their exchanges as (input, output)
// coded edges, and the database- and activity-level parameters. The
// parameter layout follows the target system's grouping model: every
// parametrized activity gets its own parameter group with a unit anchor
// parameter.
package persist

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/CIRAIG/bw-Simporter/pkg/types"
)

// Store manages the output project database.
type Store struct {
	db     *sql.DB
	dbName string
}

// WriteResult summarizes what a persistence run wrote.
type WriteResult struct {
	Processes          int
	Exchanges          int
	SkippedExchanges   int
	DatabaseParameters int
	ActivityParameters int
}

// Open opens or creates the project database at path. dbName is the
// name the imported database carries inside the project.
func Open(path, dbName string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening project database: %w", err)
	}

	s := &Store{db: db, dbName: dbName}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS processes (
			code TEXT PRIMARY KEY,
			database TEXT NOT NULL,
			name TEXT NOT NULL,
			reference_product TEXT,
			unit TEXT,
			production_amount REAL
		)`,
		`CREATE TABLE IF NOT EXISTS exchanges (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			process_code TEXT NOT NULL REFERENCES processes(code),
			name TEXT NOT NULL,
			amount REAL NOT NULL,
			kind TEXT NOT NULL,
			unit TEXT,
			formula TEXT,
			original_amount REAL,
			input_database TEXT NOT NULL,
			input_code TEXT NOT NULL,
			output_database TEXT NOT NULL,
			output_code TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exchanges_process ON exchanges(process_code)`,
		`CREATE TABLE IF NOT EXISTS database_parameters (
			name TEXT PRIMARY KEY,
			amount REAL NOT NULL,
			formula TEXT,
			comment TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS activity_parameters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			param_group TEXT NOT NULL,
			name TEXT NOT NULL,
			database TEXT NOT NULL,
			code TEXT NOT NULL,
			amount REAL NOT NULL,
			formula TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_parameters_code ON activity_parameters(code)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// WriteProcesses persists the process list. Exchanges still lacking a
// resolved link are skipped and counted; the pruner has already warned
// about them, and a partial edge cannot be written.
func (s *Store) WriteProcesses(ctx context.Context, procs []*types.Process) (WriteResult, error) {
	var res WriteResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, proc := range procs {
		if proc.Code == "" {
			return res, fmt.Errorf("process %q has no code; was decomposition run?", proc.Name)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO processes
			 (code, database, name, reference_product, unit, production_amount)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			proc.Code, s.dbName, proc.Name, proc.ReferenceProduct, proc.Unit, proc.ProductionAmount); err != nil {
			return res, fmt.Errorf("inserting process %q: %w", proc.Name, err)
		}
		res.Processes++

		for _, exc := range proc.Exchanges {
			if !exc.Linked() || exc.Output == nil {
				res.SkippedExchanges++
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO exchanges
				 (process_code, name, amount, kind, unit, formula, original_amount,
				  input_database, input_code, output_database, output_code)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				proc.Code, exc.Name, exc.Amount, string(exc.Kind), exc.Unit,
				exc.Formula, exc.OriginalAmount,
				exc.Input.Database, exc.Input.Code,
				exc.Output.Database, exc.Output.Code); err != nil {
				return res, fmt.Errorf("inserting exchange %q of %q: %w", exc.Name, proc.Name, err)
			}
			res.Exchanges++
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("committing processes: %w", err)
	}
	return res, nil
}

// WriteDatabaseParameters replaces the project-global parameters.
func (s *Store) WriteDatabaseParameters(ctx context.Context, params types.ParameterSet) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM database_parameters`); err != nil {
		return 0, fmt.Errorf("clearing database parameters: %w", err)
	}

	for _, p := range params {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO database_parameters (name, amount, formula, comment)
			 VALUES (?, ?, ?, ?)`,
			p.Name, p.Amount, p.Formula, p.Comment); err != nil {
			return 0, fmt.Errorf("inserting database parameter %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing database parameters: %w", err)
	}
	return len(params), nil
}

// WriteActivityParameters writes per-process parameter groups. Every
// parametrized process gets an "<base>_1" anchor parameter with amount 1
// so the target system can activate the group, followed by the process's
// own parameters, all under a uuid-suffixed group name.
func (s *Store) WriteActivityParameters(ctx context.Context, procs []*types.Process) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	written := 0
	for _, proc := range procs {
		if len(proc.Parameters) == 0 {
			continue
		}

		base := paramGroupBase(proc.Name)
		group, err := s.parameterGroup(ctx, tx, proc.Code, base)
		if err != nil {
			return written, err
		}

		rows := []types.Parameter{{Name: base + "_1", Amount: 1}}
		rows = append(rows, proc.Parameters...)

		for _, p := range rows {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO activity_parameters
				 (param_group, name, database, code, amount, formula)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				group, p.Name, s.dbName, proc.Code, p.Amount, p.Formula); err != nil {
				return written, fmt.Errorf("inserting activity parameter %q of %q: %w", p.Name, proc.Name, err)
			}
			written++
		}
	}

	if err := tx.Commit(); err != nil {
		return written, fmt.Errorf("committing activity parameters: %w", err)
	}
	return written, nil
}

// parameterGroup reuses the group an earlier run created for the same
// process code, or mints a new uuid-suffixed one.
func (s *Store) parameterGroup(ctx context.Context, tx *sql.Tx, code, base string) (string, error) {
	var group string
	err := tx.QueryRowContext(ctx,
		`SELECT param_group FROM activity_parameters WHERE code = ? LIMIT 1`, code).Scan(&group)
	switch {
	case err == sql.ErrNoRows:
		return base + "_" + strings.ReplaceAll(uuid.NewString(), "-", ""), nil
	case err != nil:
		return "", fmt.Errorf("looking up parameter group for %s: %w", code, err)
	}
	return group, nil
}

var reDigits = regexp.MustCompile(`\d`)

// paramGroupBase sanitizes a process name into a group identifier:
// dashes become underscores, digits are removed, remaining words are
// joined with underscores.
func paramGroupBase(name string) string {
	s := strings.ReplaceAll(name, "-", "_")
	s = reDigits.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), "_")
}
