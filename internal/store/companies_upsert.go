package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"companyclean-engine/internal/domain"
)

// namespace for deterministic row ids
var companySpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("companyclean-engine/company"))

// CompanyID is stable for a company name across runs, so saving a batch
// again updates rows instead of duplicating them.
func CompanyID(name string) string {
	return uuid.NewSHA1(companySpace, []byte(strings.ToLower(strings.TrimSpace(name)))).String()
}

func roleID(companyID string, position int) string {
	return uuid.NewSHA1(uuid.MustParse(companyID), []byte(fmt.Sprint(position))).String()
}

// SaveBatch upserts every company and replaces its roles. It returns the
// number of companies written.
func SaveBatch(ctx context.Context, db *sql.DB, companies []domain.Company) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, c := range companies {
		id := CompanyID(c.Name)
		if _, err := tx.ExecContext(ctx, `
INSERT INTO companies (id, name, about, industry, sub_industry, stage, size, culture_tags, tech_stack, extra, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  name = excluded.name,
  about = excluded.about,
  industry = excluded.industry,
  sub_industry = excluded.sub_industry,
  stage = excluded.stage,
  size = excluded.size,
  culture_tags = excluded.culture_tags,
  tech_stack = excluded.tech_stack,
  extra = excluded.extra,
  updated_at = excluded.updated_at;`,
			id, c.Name, c.About, c.Industry, c.SubIndustry, string(c.Stage), string(c.Size),
			jsonList(c.CultureTags), jsonList(c.TechStack), jsonExtra(c.Extra), now,
		); err != nil {
			return 0, fmt.Errorf("upsert company %q: %w", c.Name, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM roles WHERE company_id = ?;`, id); err != nil {
			return 0, fmt.Errorf("clear roles of %q: %w", c.Name, err)
		}
		for i, r := range c.Roles {
			var lo, hi sql.NullInt64
			if r.SalaryRange != nil {
				lo = sql.NullInt64{Int64: int64(r.SalaryRange.Min), Valid: true}
				hi = sql.NullInt64{Int64: int64(r.SalaryRange.Max), Valid: true}
			}
			if _, err := tx.ExecContext(ctx, `
INSERT INTO roles (id, company_id, position, title, description, location, salary_min, salary_max,
                   required_skills, nice_to_have_skills, visa_sponsorship, min_experience_years, extra)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
				roleID(id, i), id, i, r.Title, r.Description, r.Location, lo, hi,
				jsonList(r.RequiredSkills), jsonList(r.NiceToHaveSkills), r.VisaSponsorship, r.MinExperienceYears,
				jsonExtra(r.Extra),
			); err != nil {
				return 0, fmt.Errorf("insert role %d of %q: %w", i, c.Name, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(companies), nil
}

// LoadCompanies reads every stored company with its roles, ordered by name.
func LoadCompanies(ctx context.Context, db *sql.DB) ([]domain.Company, error) {
	rows, err := db.QueryContext(ctx, `
SELECT id, name, about, industry, sub_industry, stage, size, culture_tags, tech_stack, extra
FROM companies
ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out []domain.Company
		ids []string
	)
	for rows.Next() {
		var (
			c                     domain.Company
			id, stage, size       string
			tags, stack, extraRaw string
		)
		if err := rows.Scan(&id, &c.Name, &c.About, &c.Industry, &c.SubIndustry, &stage, &size, &tags, &stack, &extraRaw); err != nil {
			return nil, err
		}
		c.Stage, c.Size = domain.Stage(stage), domain.SizeBracket(size)
		var err error
		if c.CultureTags, err = parseList(tags); err != nil {
			return nil, fmt.Errorf("company %q culture_tags: %w", c.Name, err)
		}
		if c.TechStack, err = parseList(stack); err != nil {
			return nil, fmt.Errorf("company %q tech_stack: %w", c.Name, err)
		}
		if c.Extra, err = parseExtra(extraRaw); err != nil {
			return nil, fmt.Errorf("company %q extra: %w", c.Name, err)
		}
		c.Roles = []domain.Role{}
		out = append(out, c)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i, id := range ids {
		roles, err := loadRoles(ctx, db, id)
		if err != nil {
			return nil, fmt.Errorf("roles of %q: %w", out[i].Name, err)
		}
		out[i].Roles = roles
	}
	return out, nil
}

func loadRoles(ctx context.Context, db *sql.DB, companyID string) ([]domain.Role, error) {
	rows, err := db.QueryContext(ctx, `
SELECT title, description, location, salary_min, salary_max, required_skills, nice_to_have_skills,
       visa_sponsorship, min_experience_years, extra
FROM roles
WHERE company_id = ?
ORDER BY position;`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Role{}
	for rows.Next() {
		var (
			r                   domain.Role
			lo, hi              sql.NullInt64
			req, nice, extraRaw string
		)
		if err := rows.Scan(&r.Title, &r.Description, &r.Location, &lo, &hi, &req, &nice,
			&r.VisaSponsorship, &r.MinExperienceYears, &extraRaw); err != nil {
			return nil, err
		}
		if lo.Valid && hi.Valid {
			r.SalaryRange = &domain.SalaryRange{Min: int(lo.Int64), Max: int(hi.Int64)}
		}
		var err error
		if r.RequiredSkills, err = parseList(req); err != nil {
			return nil, fmt.Errorf("role %q required_skills: %w", r.Title, err)
		}
		if r.NiceToHaveSkills, err = parseList(nice); err != nil {
			return nil, fmt.Errorf("role %q nice_to_have_skills: %w", r.Title, err)
		}
		if r.Extra, err = parseExtra(extraRaw); err != nil {
			return nil, fmt.Errorf("role %q extra: %w", r.Title, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func jsonList(xs []string) string {
	if xs == nil {
		xs = []string{}
	}
	b, _ := json.Marshal(xs)
	return string(b)
}

func jsonExtra(m map[string]json.RawMessage) string {
	if len(m) == 0 {
		return "{}"
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func parseList(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var xs []string
	if err := json.Unmarshal([]byte(s), &xs); err != nil {
		return nil, fmt.Errorf("decode stored list: %w", err)
	}
	return xs, nil
}

func parseExtra(s string) (map[string]json.RawMessage, error) {
	if s == "" {
		return nil, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("decode stored extra: %w", err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}
