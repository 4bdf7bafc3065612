package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"companyclean-engine/internal/audit"
	"companyclean-engine/internal/domain"
)

type Run struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	Score      float64   `json:"score"`
	IssueCount int       `json:"issueCount"`
	Companies  int       `json:"companies"`
}

// SaveReport stores one audit run with its issues and returns the run id.
func SaveReport(ctx context.Context, db *sql.DB, rep audit.Report, companies int) (string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.NewString()
	repairs, _ := json.Marshal(rep.Repairs)
	if _, err := tx.ExecContext(ctx, `
INSERT INTO audit_runs (id, created_at, score, issue_count, companies, repairs)
VALUES (?, ?, ?, ?, ?, ?);`,
		id, time.Now().UTC().Format(time.RFC3339), rep.Score, rep.IssueCount, companies, string(repairs),
	); err != nil {
		return "", fmt.Errorf("insert audit run: %w", err)
	}

	for i, is := range rep.Issues {
		var role sql.NullInt64
		if is.RoleIndex != nil {
			role = sql.NullInt64{Int64: int64(*is.RoleIndex), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO audit_issues (run_id, seq, category, severity, subject, role_index, message)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
			id, i, string(is.Category), string(is.Severity), is.Subject, role, is.Message,
		); err != nil {
			return "", fmt.Errorf("insert issue %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// LoadReport rebuilds the report of a stored run.
func LoadReport(ctx context.Context, db *sql.DB, runID string) (audit.Report, error) {
	var (
		rep     audit.Report
		repairs string
	)
	err := db.QueryRowContext(ctx, `SELECT score, issue_count, repairs FROM audit_runs WHERE id = ?;`, runID).
		Scan(&rep.Score, &rep.IssueCount, &repairs)
	if errors.Is(err, sql.ErrNoRows) {
		return audit.Report{}, fmt.Errorf("audit run %s: not found", runID)
	}
	if err != nil {
		return audit.Report{}, err
	}
	rep.Repairs = map[string]int{}
	_ = json.Unmarshal([]byte(repairs), &rep.Repairs)

	rows, err := db.QueryContext(ctx, `
SELECT category, severity, subject, role_index, message
FROM audit_issues
WHERE run_id = ?
ORDER BY seq;`, runID)
	if err != nil {
		return audit.Report{}, err
	}
	defer rows.Close()

	rep.Issues = []domain.QualityIssue{}
	rep.Summary = audit.Summary{ByCategory: map[domain.Category]int{}, BySeverity: map[domain.Severity]int{}}
	for rows.Next() {
		var (
			is       domain.QualityIssue
			cat, sev string
			role     sql.NullInt64
		)
		if err := rows.Scan(&cat, &sev, &is.Subject, &role, &is.Message); err != nil {
			return audit.Report{}, err
		}
		is.Category, is.Severity = domain.Category(cat), domain.Severity(sev)
		if role.Valid {
			is.RoleIndex = domain.RoleRef(int(role.Int64))
		}
		rep.Issues = append(rep.Issues, is)
		rep.Summary.ByCategory[is.Category]++
		rep.Summary.BySeverity[is.Severity]++
	}
	return rep, rows.Err()
}

// ListRuns returns the most recent runs first.
func ListRuns(ctx context.Context, db *sql.DB, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, created_at, score, issue_count, companies
FROM audit_runs
ORDER BY created_at DESC, rowid DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			created string
		)
		if err := rows.Scan(&r.ID, &created, &r.Score, &r.IssueCount, &r.Companies); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, r)
	}
	return out, rows.Err()
}
