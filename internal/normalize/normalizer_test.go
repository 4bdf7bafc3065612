package normalize

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"companyclean-engine/internal/config"
	"companyclean-engine/internal/domain"
	"companyclean-engine/internal/events"
)

func newNormalizer() (*Normalizer, *events.Journal) {
	j := events.NewJournal()
	return New(config.Default().Normalize, zap.NewNop(), j), j
}

func TestStage(t *testing.T) {
	n, _ := newNormalizer()
	tests := map[string]domain.Stage{
		"Public":                     domain.StagePublic,
		"publicly traded on NASDAQ":  domain.StagePublic,
		"Listed (LSE)":               domain.StagePublic,
		"Series B":                   domain.StageStartup,
		"seed-funded startup":        domain.StageStartup,
		"Non-profit":                 domain.StageNonProfit,
		"Charitable Foundation":      domain.StageNonProfit,
		"Government agency":          domain.StageGovernment,
		"state-owned enterprise":     domain.StageGovernment,
		"Privately held":             domain.StagePrivate,
		"Subsidiary of Globex":       domain.StagePrivate,
		"Mature":                     domain.StageEstablished,
		"rapidly growing":            domain.StageGrowth,
		"":                           domain.StageUnknown,
		"Unknown":                    domain.StageUnknown,
		"something else entirely":    domain.StageUnknown,
		"public benefit corporation": domain.StagePublic,
	}
	for in, want := range tests {
		assert.Equal(t, want, n.Stage(in), in)
	}

	// every stage label maps to itself
	for _, s := range []domain.Stage{
		domain.StagePublic, domain.StagePrivate, domain.StageStartup, domain.StageNonProfit,
		domain.StageGovernment, domain.StageEstablished, domain.StageGrowth, domain.StageUnknown,
	} {
		assert.Equal(t, s, n.Stage(string(s)))
	}
}

func TestSize(t *testing.T) {
	tests := map[string]domain.SizeBracket{
		"3,000 employees":                domain.SizeVeryLarge,
		"99999999999999999999 employees": domain.SizeEnterprise,
		"12":                             domain.SizeSmall,
		"50-200 employees":               domain.SizeLarge,
		"about 150 people":               domain.SizeMedium,
		"10k+":                           domain.SizeEnterprise,
		"1.2k staff":                     domain.SizeVeryLarge,
		"999":                            domain.SizeLarge,
		"5000":                           domain.SizeEnterprise,
		"Enterprise":                     domain.SizeEnterprise,
		"very large":                     domain.SizeVeryLarge,
		"Mid-size company":               domain.SizeMedium,
		"small team":                     domain.SizeSmall,
		"no idea":                        domain.SizeUnknown,
		"":                               domain.SizeUnknown,
		"Unknown":                        domain.SizeUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, Size(in), in)
	}

	for _, b := range []domain.SizeBracket{
		domain.SizeSmall, domain.SizeMedium, domain.SizeLarge, domain.SizeVeryLarge, domain.SizeEnterprise,
	} {
		assert.Equal(t, b, Size(string(b)), "bracket labels are fixed points")
	}
}

func TestLocation(t *testing.T) {
	n, _ := newNormalizer()
	tests := []struct{ in, want string }{
		{"", domain.LocationNotSpecified},
		{"N/A", domain.LocationNotSpecified},
		{"various locations", domain.LocationMultiple},
		{"Global", domain.LocationMultiple},
		{"Various US cities", domain.LocationMultiple},
		{"remote", domain.LocationRemote},
		{"Remote (US only)", domain.LocationRemote},
		{"Work from home", domain.LocationRemote},
		{"san francisco, ca", "San Francisco, CA"},
		{"Austin, Texas", "Austin, TX"},
		{"new york, ny", "New York, NY"},
		{"new york, new york", "New York"},
		{"Seattle, WA, USA", "Seattle, WA"},
		{"london, uk", "London, UK"},
		{"Chicago, united states", "Chicago, USA"},
		{"berlin, germany", "Berlin, Germany"},
		{"Toronto, Ontario, Canada", "Toronto, Canada"},
		{"Location: Denver, co", "Denver, CO"},
		{"  Boston ,  MA ", "Boston, MA"},
		{"usa", "USA"},
		{"paris", "Paris"},
	}
	for _, tt := range tests {
		got := n.Location(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, got, n.Location(got), "idempotent for %q", tt.in)
	}
}

func TestIndustry(t *testing.T) {
	n, _ := newNormalizer()
	assert.Equal(t, "Technology", n.Industry("software"))
	assert.Equal(t, "Technology", n.Industry("IT"))
	assert.Equal(t, "Financial Services", n.Industry("FinTech"))
	assert.Equal(t, "Renewable Energy", n.Industry("renewable energy"))
	assert.Equal(t, "Real Estate", n.Industry("commercial real estate"))
	assert.Equal(t, "Real Estate", n.Industry("REAL ESTATE"))
	assert.Equal(t, "Biotechnology", n.Industry("Biotech"))
	assert.Equal(t, "Biotechnology", n.Industry("biotechnology research"))
	assert.Equal(t, "IT consulting", n.Industry("IT consulting"))
	assert.Equal(t, "SaaS Tools", n.Industry("SaaS Tools"))
	assert.Equal(t, domain.Unknown, n.Industry("  "))
	assert.Equal(t, domain.Unknown, n.Industry("unknown"))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Builds rockets. Fast & cheap.", CleanText("<p>Builds <b>rockets</b>.</p><p>Fast &amp; cheap.</p>"))
	assert.Equal(t, "a b", CleanText(" a  \n b "))
	assert.Equal(t, "revenue < 5M", CleanText("revenue < 5M"))
	assert.Equal(t, "Café", CleanText("Café"))
	assert.Equal(t, "ok", CleanText("<script>alert(1)</script>ok"))
}

func TestCultureTags(t *testing.T) {
	n, _ := newNormalizer()

	tags, synth := n.CultureTags(domain.Company{Industry: "Technology", Stage: domain.StageStartup})
	assert.True(t, synth)
	assert.Equal(t, []string{"Innovative", "Tech-Driven", "Fast-Paced"}, tags)

	tags, _ = n.CultureTags(domain.Company{Industry: "Mining", Stage: domain.StagePrivate})
	assert.Equal(t, []string{"Collaborative", "Growth-Oriented", "Professional"}, tags)

	tags, synth = n.CultureTags(domain.Company{CultureTags: []string{"Remote", "remote ", "", "Flat"}})
	assert.False(t, synth)
	assert.Equal(t, []string{"Remote", "Flat"}, tags)

	many := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	tags, _ = n.CultureTags(domain.Company{CultureTags: many})
	assert.Len(t, tags, 8)
}

func TestNormalizeFillsDefaults(t *testing.T) {
	n, j := newNormalizer()
	c := domain.Company{
		Name:        "  Acme  ",
		Industry:    "software",
		SubIndustry: "technology",
		Stage:       "Series A",
		Size:        "3,000 employees",
		TechStack:   []string{"Go", "go", " "},
		Roles: []domain.Role{
			{Title: "Senior Software Engineer", Location: "austin, tx"},
			{Title: "", Description: "<p>Does things</p>", RequiredSkills: []string{"Excel"}},
		},
	}
	n.Normalize(&c)

	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, domain.Unknown, c.About)
	assert.Equal(t, "Technology", c.Industry)
	assert.Equal(t, domain.Unknown, c.SubIndustry, "sub_industry may not repeat industry")
	assert.Equal(t, domain.StageStartup, c.Stage)
	assert.Equal(t, domain.SizeVeryLarge, c.Size)
	assert.Equal(t, []string{"Go"}, c.TechStack)
	assert.Equal(t, []string{"Innovative", "Tech-Driven", "Fast-Paced"}, c.CultureTags)

	r := c.Roles[0]
	assert.Equal(t, "Austin, TX", r.Location)
	assert.Equal(t, "Work as a Senior Software Engineer at Acme, contributing to Technology industry operations and growth.", r.Description)
	assert.Equal(t, []string{"Programming", "Problem Solving", "Software Development", "Communication", "Teamwork"}, r.RequiredSkills)
	assert.NotNil(t, r.NiceToHaveSkills)

	r = c.Roles[1]
	assert.Equal(t, domain.Unknown, r.Title)
	assert.Equal(t, "Does things", r.Description)
	assert.Equal(t, domain.LocationNotSpecified, r.Location)
	assert.Equal(t, []string{"Excel"}, r.RequiredSkills)

	// culture tags, role 0 description and role 0 skills
	assert.Equal(t, 3, j.Count(events.TypeNormalizeDefault))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n, _ := newNormalizer()
	f := gofakeit.New(99)
	for i := 0; i < 50; i++ {
		c := domain.Company{
			Name:        f.Company(),
			About:       f.Sentence(10),
			Industry:    f.RandomString([]string{"tech", "Retail", "", "finance", "biotech"}),
			SubIndustry: f.RandomString([]string{"", "payments", "Retail"}),
			Stage:       domain.Stage(f.RandomString([]string{"Series C", "NYSE", "", "family owned", "government"})),
			Size:        domain.SizeBracket(f.RandomString([]string{"120", "2,500 employees", "", "huge", "10k"})),
			Roles: []domain.Role{{
				Title:    f.JobTitle(),
				Location: f.City() + ", " + f.RandomString([]string{f.StateAbr(), f.State(), "usa", "uk", f.Country()}),
			}},
		}
		n.Normalize(&c)
		once := c.Clone()
		n.Normalize(&c)
		require.Empty(t, cmp.Diff(once, c, cmpopts.EquateEmpty()), "normalizing twice changed %q", once.Name)
	}
}
