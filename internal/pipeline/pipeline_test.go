package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"companyclean-engine/internal/config"
	"companyclean-engine/internal/domain"
	"companyclean-engine/internal/events"
	"companyclean-engine/internal/recovery"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newPipeline() *Pipeline {
	return New(config.Default(), zap.NewNop(), nil)
}

func issuesFor(rep []domain.QualityIssue, cat domain.Category, sev domain.Severity) []domain.QualityIssue {
	var out []domain.QualityIssue
	for _, is := range rep {
		if is.Category == cat && is.Severity == sev {
			out = append(out, is)
		}
	}
	return out
}

const scenarios = `[
{"company_name":"Acme Inc.","industry":"Technology","about":"Builds robots for warehouses.",
 "roles":[{"title":"Engineer","salary_range":[90000, 40000],"required_skills":["Go"]}]},
{"company_name":"Acme, Inc","industry":"technology","size":"3,000 employees",
 "roles":[{"title":"Summer Intern","salary_range":[150000, 180000],"description":"Learn."}]},
{"company_name":"Broken Co","about":"cut off mid
{"company_name":"Globex","industry":"Retail","about":"Sells things.","company_stage":"NYSE listed",
 "roles":[{"title":"Store Manager","location":"austin, texas","salary_range":[60000, 90000]}]}
]`

func TestRunScenarios(t *testing.T) {
	p := newPipeline()
	res, err := p.Run(context.Background(), []byte(scenarios))
	require.NoError(t, err)

	// E: the truncated record is dropped and counted
	assert.Equal(t, 1, res.Stats.Discarded)
	assert.Equal(t, 3, res.Stats.Records)
	require.Len(t, res.Companies, 2)

	// A: the duplicates resolve into the more complete record
	acme := res.Companies[0]
	assert.Equal(t, "Acme Inc.", acme.Name)
	assert.Equal(t, 2, res.Stats.Groups)
	require.Len(t, acme.Roles, 2)

	// B: inverted salary is widened
	assert.Equal(t, domain.SalaryRange{Min: 90000, Max: 120000}, *acme.Roles[0].SalaryRange)

	// C: implausible intern pay is flagged, not changed
	assert.Equal(t, domain.SalaryRange{Min: 150000, Max: 180000}, *acme.Roles[1].SalaryRange)
	anomalies := issuesFor(res.Report.Issues, domain.CategorySalaryAnomaly, domain.SeverityWarning)
	require.Len(t, anomalies, 1)
	assert.Equal(t, "Acme Inc.", anomalies[0].Subject)
	require.NotNil(t, anomalies[0].RoleIndex)
	assert.Equal(t, 1, *anomalies[0].RoleIndex)

	// D: size text lands in a bracket, backfilled from the other member
	assert.Equal(t, domain.SizeVeryLarge, acme.Size)

	globex := res.Companies[1]
	assert.Equal(t, domain.StagePublic, globex.Stage)
	assert.Equal(t, "Austin, TX", globex.Roles[0].Location)

	assert.Equal(t, 1, res.Report.Repairs["widen"])
	assert.Equal(t, 1, res.Stats.Corrections)
	assert.Equal(t, 3, res.Stats.Roles)
	assert.Equal(t, map[string]int{"Technology": 1, "Retail": 1}, res.Stats.Industries)
}

func TestRunEmptyInput(t *testing.T) {
	var empty *recovery.EmptyInputError

	_, err := newPipeline().Run(context.Background(), []byte("   "))
	require.True(t, errors.As(err, &empty), "got %v", err)

	_, err = newPipeline().Run(context.Background())
	require.True(t, errors.As(err, &empty), "got %v", err)

	_, err = newPipeline().Run(context.Background(), []byte(`[{"about":"nameless","industry":"Retail"}]`))
	require.True(t, errors.As(err, &empty), "got %v", err)
	assert.Equal(t, 1, empty.Discarded)
}

func TestRunSeveralInputs(t *testing.T) {
	res, err := newPipeline().Run(context.Background(),
		[]byte(`[{"company_name":"Initech LLC","industry":"Software","roles":[{"title":"Engineer"}]}]`),
		[]byte(`no records in this one`),
		[]byte(`[{"company_name":"Initech","roles":[{"title":"Engineer","salary_range":[100000,130000]}]}]`),
	)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Stats.Inputs)
	require.Len(t, res.Companies, 1)
	require.Len(t, res.Companies[0].Roles, 1, "duplicate role collapsed")
	assert.Equal(t, domain.SalaryRange{Min: 100000, Max: 130000}, *res.Companies[0].Roles[0].SalaryRange,
		"richer duplicate role wins")
}

func TestRunReportsShapeProblemsAgainstMergedCompany(t *testing.T) {
	in := `[
{"company_name":"Acme Inc.","industry":"Technology","about":"Builds robots for warehouses.","roles":[{"title":"Engineer"}]},
{"company_name":"Acme","culture_tags":"Remote, Flat","roles":[{"title":"Analyst","salary_range":"lots"}]}
]`
	res, err := newPipeline().Run(context.Background(), []byte(in))
	require.NoError(t, err)
	require.Len(t, res.Companies, 1)

	mismatches := issuesFor(res.Report.Issues, domain.CategoryTypeMismatch, domain.SeverityCritical)
	require.Len(t, mismatches, 2)
	for _, is := range mismatches {
		assert.Equal(t, res.Companies[0].Name, is.Subject)
	}
	assert.Equal(t, []string{"Remote", "Flat"}, res.Companies[0].CultureTags)
}

func TestRunRegistryMergesNameCollisions(t *testing.T) {
	in := `[{"company_name":"<b>Vandelay</b>","roles":[{"title":"Importer"}]},{"company_name":"Vandelay","roles":[{"title":"Exporter"}]}]`
	p := newPipeline()
	res, err := p.Run(context.Background(), []byte(in))
	require.NoError(t, err)

	require.Len(t, res.Companies, 1)
	assert.Equal(t, "Vandelay", res.Companies[0].Name)
	assert.Len(t, res.Companies[0].Roles, 2)
	assert.Equal(t, 1, res.Stats.Collisions)
	assert.Equal(t, 1, p.Journal().Count(events.TypeRegistryCollision))
	assert.Len(t, issuesFor(res.Report.Issues, domain.CategoryDuplicate, domain.SeverityInfo), 1)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newPipeline().Run(ctx, []byte(scenarios))
	assert.ErrorIs(t, err, context.Canceled)
}

// fakeBatch renders n messy companies as JSON. Every third company is
// repeated under a legal-suffix variant with fewer fields.
func fakeBatch(seed int64, n int) []byte {
	f := gofakeit.New(seed)
	var recs []map[string]any
	for i := 0; i < n; i++ {
		name := f.Company()
		var roles []map[string]any
		for r := f.Number(0, 3); r > 0; r-- {
			lo, hi := f.Number(-20000, 200000), f.Number(-20000, 700000)
			role := map[string]any{
				"title":    f.RandomString([]string{f.JobTitle(), "Senior " + f.JobTitle(), "Intern", ""}),
				"location": f.RandomString([]string{f.City() + ", " + f.StateAbr(), f.City() + ", " + f.State(), "remote", "", "global"}),
			}
			if f.Bool() {
				role["salary_range"] = []int{lo, hi}
			}
			if f.Bool() {
				role["required_skills"] = []string{f.HackerNoun(), f.HackerVerb()}
			}
			if f.Bool() {
				role["min_experience_years"] = f.Number(-3, 10)
			}
			roles = append(roles, role)
		}
		rec := map[string]any{
			"company_name":  name,
			"about":         f.Sentence(12),
			"industry":      f.RandomString([]string{"software", "Retail", "fintech", "", "Biotech", "unknown"}),
			"sub_industry":  f.RandomString([]string{"", "Payments", "software"}),
			"company_stage": f.RandomString([]string{"Series B", "NASDAQ", "", "family owned", "mature"}),
			"size":          f.RandomString([]string{"12 employees", "3,000 employees", "", "10k+", "mid-size"}),
			"tech_stack":    []string{f.ProgrammingLanguage(), f.ProgrammingLanguage()},
			"roles":         roles,
		}
		recs = append(recs, rec)
		if i%3 == 0 {
			recs = append(recs, map[string]any{
				"company_name": name + " Inc",
				"industry":     rec["industry"],
				"roles":        []map[string]any{{"title": "Analyst"}},
			})
		}
	}
	b, err := json.Marshal(recs)
	if err != nil {
		panic(err)
	}
	return b
}

func TestRunInvariants(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		res, err := newPipeline().Run(context.Background(), fakeBatch(seed, 40))
		require.NoError(t, err)

		names := map[string]bool{}
		for _, c := range res.Companies {
			key := strings.ToLower(c.Name)
			require.False(t, names[key], "duplicate name %q", c.Name)
			names[key] = true

			assert.True(t, c.Stage.Known(), c.Stage)
			assert.True(t, c.Size.Known(), c.Size)
			assert.NotEmpty(t, c.About)
			assert.NotEmpty(t, c.Industry)
			assert.NotEmpty(t, c.SubIndustry)
			assert.NotEmpty(t, c.CultureTags)
			for _, r := range c.Roles {
				require.NotNil(t, r.SalaryRange)
				sr := *r.SalaryRange
				require.True(t, sr.Min >= 0 && sr.Min < sr.Max && sr.Max <= 500000, "%s: %s", c.Name, sr)
				assert.NotEmpty(t, r.Title)
				assert.NotEmpty(t, r.Location)
				assert.NotEmpty(t, r.Description)
				assert.NotEmpty(t, r.RequiredSkills)
				assert.GreaterOrEqual(t, r.MinExperienceYears, 0)
			}
		}
		assert.GreaterOrEqual(t, res.Report.Score, 0.0)
		assert.LessOrEqual(t, res.Report.Score, 100.0)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	for seed := int64(10); seed < 13; seed++ {
		first, err := newPipeline().Run(context.Background(), fakeBatch(seed, 30))
		require.NoError(t, err)

		out, err := json.Marshal(first.Companies)
		require.NoError(t, err)
		second, err := newPipeline().Run(context.Background(), out)
		require.NoError(t, err)

		require.Empty(t, cmp.Diff(first.Companies, second.Companies, cmpopts.EquateEmpty()), "seed %d", seed)
		assert.Zero(t, second.Stats.Corrections)
	}
}

func TestRunChainedNamesSettleInOnePass(t *testing.T) {
	sub := func(s string, at ...int) string {
		b := []byte(s)
		for _, i := range at {
			b[i] = 'z'
		}
		return string(b)
	}
	// neighbours are 0.97 similar, the two ends only 0.94
	base := strings.Repeat("abcdefghij", 10)
	names := []string{base, sub(base, 10, 20, 30), sub(base, 10, 20, 30, 40, 50, 60)}
	var in []map[string]any
	for _, n := range names {
		in = append(in, map[string]any{
			"company_name": n,
			"roles":        []map[string]any{{"title": "Analyst", "salary_range": []int{60000, 80000}}},
		})
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	first, err := newPipeline().Run(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, first.Companies, 1)
	assert.Empty(t, issuesFor(first.Report.Issues, domain.CategorySimilarity, domain.SeverityWarning))

	out, err := json.Marshal(first.Companies)
	require.NoError(t, err)
	second, err := newPipeline().Run(context.Background(), out)
	require.NoError(t, err)
	assert.Len(t, second.Companies, 1)
	assert.Equal(t, first.Companies[0].Name, second.Companies[0].Name)
}

func TestAuditLeavesBatchAlone(t *testing.T) {
	res, err := newPipeline().Run(context.Background(), fakeBatch(3, 20))
	require.NoError(t, err)
	out, err := json.Marshal(res.Companies)
	require.NoError(t, err)

	companies, rep, err := newPipeline().Audit(context.Background(), out)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(res.Companies, companies, cmpopts.EquateEmpty()))
	assert.Empty(t, rep.Repairs)
	assert.Empty(t, issuesFor(rep.Issues, domain.CategoryDuplicate, domain.SeverityCritical))

	_, rep, err = newPipeline().Audit(context.Background(),
		[]byte(`[{"company_name":"Acme","culture_tags":"Remote","roles":[]}]`))
	require.NoError(t, err)
	assert.Len(t, issuesFor(rep.Issues, domain.CategoryTypeMismatch, domain.SeverityCritical), 1)
	assert.Len(t, issuesFor(rep.Issues, domain.CategoryMissingField, domain.SeverityCritical), 1)
}
