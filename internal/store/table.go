package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const schemaVersion = 1

func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= schemaVersion {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	stmts := []string{`
CREATE TABLE IF NOT EXISTS companies (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  about TEXT NOT NULL,
  industry TEXT NOT NULL,
  sub_industry TEXT NOT NULL,
  stage TEXT NOT NULL,
  size TEXT NOT NULL,
  culture_tags TEXT NOT NULL DEFAULT '[]',
  tech_stack TEXT NOT NULL DEFAULT '[]',
  updated_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS roles (
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  location TEXT NOT NULL,
  salary_min INTEGER,
  salary_max INTEGER,
  required_skills TEXT NOT NULL DEFAULT '[]',
  nice_to_have_skills TEXT NOT NULL DEFAULT '[]',
  visa_sponsorship INTEGER NOT NULL DEFAULT 0,
  min_experience_years INTEGER NOT NULL DEFAULT 0,
  extra TEXT NOT NULL DEFAULT '{}'
);`, `
CREATE TABLE IF NOT EXISTS audit_runs (
  id TEXT PRIMARY KEY,
  created_at TEXT NOT NULL,
  score REAL NOT NULL,
  issue_count INTEGER NOT NULL,
  companies INTEGER NOT NULL,
  repairs TEXT NOT NULL DEFAULT '{}'
);`, `
CREATE TABLE IF NOT EXISTS audit_issues (
  run_id TEXT NOT NULL REFERENCES audit_runs(id) ON DELETE CASCADE,
  seq INTEGER NOT NULL,
  category TEXT NOT NULL,
  severity TEXT NOT NULL,
  subject TEXT NOT NULL,
  role_index INTEGER,
  message TEXT NOT NULL,
  PRIMARY KEY (run_id, seq)
);`,

		// ---- Schema v1: indexes ----

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_companies_name ON companies(name);`,
		`CREATE INDEX IF NOT EXISTS idx_roles_company ON roles(company_id, position);`,
		`CREATE INDEX IF NOT EXISTS idx_audit_runs_created ON audit_runs(created_at);`,
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return err
		}
	}

	// older dev databases predate the company extra column
	if !columnExists(ctx, tx, "companies", "extra") {
		if _, err := tx.ExecContext(ctx, `ALTER TABLE companies ADD COLUMN extra TEXT NOT NULL DEFAULT '{}';`); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

func columnExists(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, table, col string) bool {
	query := fmt.Sprintf(`
SELECT 1
FROM pragma_table_info('%s')
WHERE name = ?
LIMIT 1;
`, table)

	var one int
	err := q.QueryRowContext(ctx, query, col).Scan(&one)
	return err == nil
}

// CleanupOldRuns deletes audit runs (and their issues) older than keep.
func CleanupOldRuns(ctx context.Context, db *sql.DB, keep time.Duration) (deleted int64, err error) {
	cutoff := time.Now().UTC().Add(-keep).Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `DELETE FROM audit_runs WHERE created_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup old runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
