package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companyclean-engine/internal/audit"
	"companyclean-engine/internal/domain"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sample() []domain.Company {
	return []domain.Company{
		{
			Name:        "Globex",
			About:       "Ships things.",
			Industry:    "Logistics",
			SubIndustry: domain.Unknown,
			Stage:       domain.StagePublic,
			Size:        domain.SizeEnterprise,
			CultureTags: []string{"Established"},
			TechStack:   []string{"Java"},
			Extra:       map[string]json.RawMessage{"founded": json.RawMessage(`1989`)},
			Roles: []domain.Role{
				{
					Title: "Dispatcher", Description: "Dispatches.", Location: "Chicago, IL",
					SalaryRange:      &domain.SalaryRange{Min: 50000, Max: 70000},
					RequiredSkills:   []string{"Radio"},
					NiceToHaveSkills: []string{},
					VisaSponsorship:  true,
					Extra:            map[string]json.RawMessage{"shift": json.RawMessage(`"night"`)},
				},
				{
					Title: "Driver", Description: "Drives.", Location: domain.LocationMultiple,
					RequiredSkills:     []string{"CDL"},
					NiceToHaveSkills:   []string{"Hazmat"},
					MinExperienceYears: 2,
				},
			},
		},
		{
			Name: "Acme", About: "Makes anvils.", Industry: "Manufacturing", SubIndustry: "Tools",
			Stage: domain.StagePrivate, Size: domain.SizeSmall,
			CultureTags: []string{}, TechStack: []string{}, Roles: []domain.Role{},
		},
	}
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := openTemp(t)
	require.NoError(t, Migrate(context.Background(), db.Pool))

	var v int
	require.NoError(t, db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, schemaVersion, v)
	assert.True(t, columnExists(context.Background(), db.Pool, "companies", "extra"))
}

func TestSaveAndLoadBatch(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	n, err := SaveBatch(ctx, db.Pool, sample())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := LoadCompanies(ctx, db.Pool)
	require.NoError(t, err)
	want := sample()
	want[0], want[1] = want[1], want[0] // ordered by name
	assert.Empty(t, cmp.Diff(want, got, cmpopts.EquateEmpty()))
}

func TestSaveBatchUpserts(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	_, err := SaveBatch(ctx, db.Pool, sample())
	require.NoError(t, err)

	again := sample()[:1]
	again[0].About = "Ships more things."
	again[0].Roles = again[0].Roles[:1]
	_, err = SaveBatch(ctx, db.Pool, again)
	require.NoError(t, err)

	got, err := LoadCompanies(ctx, db.Pool)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ships more things.", got[1].About)
	assert.Len(t, got[1].Roles, 1)

	var roles int
	require.NoError(t, db.Pool.QueryRow(`SELECT COUNT(*) FROM roles;`).Scan(&roles))
	assert.Equal(t, 1, roles)
}

func TestLoadCompaniesReportsCorruptRows(t *testing.T) {
	ctx := context.Background()

	db := openTemp(t)
	_, err := SaveBatch(ctx, db.Pool, sample())
	require.NoError(t, err)
	_, err = db.Pool.ExecContext(ctx, `UPDATE companies SET culture_tags = '["Established"' WHERE name = 'Globex';`)
	require.NoError(t, err)
	_, err = LoadCompanies(ctx, db.Pool)
	assert.ErrorContains(t, err, "culture_tags")

	db = openTemp(t)
	_, err = SaveBatch(ctx, db.Pool, sample())
	require.NoError(t, err)
	_, err = db.Pool.ExecContext(ctx, `UPDATE roles SET required_skills = 'not json' WHERE title = 'Driver';`)
	require.NoError(t, err)
	_, err = LoadCompanies(ctx, db.Pool)
	assert.ErrorContains(t, err, "required_skills")
}

func TestCompanyIDIsStable(t *testing.T) {
	assert.Equal(t, CompanyID("Acme"), CompanyID(" acme "))
	assert.NotEqual(t, CompanyID("Acme"), CompanyID("Globex"))
}

func TestSaveAndLoadReport(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	rep := audit.Report{
		IssueCount: 2,
		Issues: []domain.QualityIssue{
			{Category: domain.CategorySalaryAnomaly, Severity: domain.SeverityWarning, Subject: "Acme", RoleIndex: domain.RoleRef(1), Message: "intern role with minimum salary 150000 above 100000"},
			{Category: domain.CategorySimilarity, Severity: domain.SeverityInfo, Subject: "Acme", Message: "kept apart"},
		},
		Score: 89.5,
		Summary: audit.Summary{
			ByCategory: map[domain.Category]int{domain.CategorySalaryAnomaly: 1, domain.CategorySimilarity: 1},
			BySeverity: map[domain.Severity]int{domain.SeverityWarning: 1, domain.SeverityInfo: 1},
		},
		Repairs: map[string]int{"widen": 3},
	}
	id, err := SaveReport(ctx, db.Pool, rep, 2)
	require.NoError(t, err)

	got, err := LoadReport(ctx, db.Pool, id)
	require.NoError(t, err)
	assert.Equal(t, rep, got)

	runs, err := ListRuns(ctx, db.Pool, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, 2, runs[0].Companies)

	_, err = LoadReport(ctx, db.Pool, "missing")
	assert.Error(t, err)

	deleted, err := CleanupOldRuns(ctx, db.Pool, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	deleted, err = CleanupOldRuns(ctx, db.Pool, -time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	var issues int
	require.NoError(t, db.Pool.QueryRow(`SELECT COUNT(*) FROM audit_issues;`).Scan(&issues))
	assert.Zero(t, issues, "issues cascade with their run")
}
