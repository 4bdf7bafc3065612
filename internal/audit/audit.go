package audit

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"companyclean-engine/internal/config"
	"companyclean-engine/internal/domain"
	"companyclean-engine/internal/events"
	"companyclean-engine/internal/resolve"
)

// Problem is a decode shape problem found for one company.
type Problem struct {
	Subject string
	domain.FieldProblem
}

// Auditor runs every check over a finished batch. It never modifies its
// input.
type Auditor struct {
	cfg       config.Audit
	maxTags   int
	ceiling   int
	sentinels map[string]bool

	resolver     *resolve.Resolver
	placeholders []phrase
	intern       *regexp.Regexp
	entry        *regexp.Regexp
	senior       *regexp.Regexp
	executive    *regexp.Regexp

	log     *zap.Logger
	journal *events.Journal
}

type phrase struct {
	text string
	re   *regexp.Regexp
}

// New builds an auditor. Info issues and repair counts are read from j when
// it is non-nil.
func New(cfg config.Config, log *zap.Logger, j *events.Journal) *Auditor {
	if log == nil {
		log = zap.L()
	}
	a := &Auditor{
		cfg:       cfg.Audit,
		maxTags:   cfg.Normalize.MaxCultureTags,
		ceiling:   cfg.Repair.Ceiling,
		sentinels: map[string]bool{},
		// the auditor only reads edges; near misses were journaled by the run
		resolver:  resolve.New(cfg.Resolver, log, nil),
		intern:    words("intern", "internship"),
		entry:     words("entry", "entry-level", "entry level"),
		senior:    words("senior", "sr", "sr."),
		executive: words("ceo", "cto", "cfo", "coo", "chief", "president"),
		log:       log.With(zap.String("component", "audit")),
		journal:   j,
	}
	for _, s := range cfg.Normalize.LocationSentinels {
		a.sentinels[s] = true
	}
	a.sentinels[domain.LocationMultiple] = true
	a.sentinels[domain.LocationRemote] = true
	a.sentinels[domain.LocationNotSpecified] = true
	for _, p := range cfg.Audit.PlaceholderPhrases {
		a.placeholders = append(a.placeholders, phrase{text: p, re: words(p)})
	}
	return a
}

// words matches any of ws as whole words, case-insensitively.
func words(ws ...string) *regexp.Regexp {
	quoted := make([]string, 0, len(ws))
	for _, w := range ws {
		quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(w))))
	}
	return regexp.MustCompile(`(?i)(^|[^\pL\pN])(` + strings.Join(quoted, "|") + `)($|[^\pL\pN])`)
}

// Audit checks companies and scores the result. The only error is the
// context's.
func (a *Auditor) Audit(ctx context.Context, companies []domain.Company, problems []Problem) (Report, error) {
	issues := []domain.QualityIssue{}
	add := func(cat domain.Category, sev domain.Severity, subject string, role *int, format string, args ...any) {
		issues = append(issues, domain.QualityIssue{
			Category:  cat,
			Severity:  sev,
			Subject:   subject,
			RoleIndex: role,
			Message:   fmt.Sprintf(format, args...),
		})
	}

	byCompany := map[string][]Problem{}
	for _, p := range problems {
		byCompany[p.Subject] = append(byCompany[p.Subject], p)
	}

	edges, err := a.resolver.Edges(ctx, companies)
	if err != nil {
		return Report{}, fmt.Errorf("audit near duplicates: %w", err)
	}
	near := map[int][]resolve.Edge{}
	for _, e := range edges {
		near[e.A] = append(near[e.A], e)
	}

	seen := map[string]int{}
	for i, c := range companies {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		name := c.Name

		// duplicates
		if key := a.resolver.Key(name); key != "" {
			if first, dup := seen[key]; dup {
				add(domain.CategoryDuplicate, domain.SeverityCritical, name, nil,
					"duplicate of record %d (%q)", first, companies[first].Name)
			} else {
				seen[key] = i
			}
		}
		for _, e := range near[i] {
			add(domain.CategorySimilarity, domain.SeverityWarning, name, nil,
				"near duplicate of %q (similarity %.2f, %s)", companies[e.B].Name, e.Similarity, e.Rule)
		}

		// shape
		for _, p := range byCompany[name] {
			var role *int
			if p.Role >= 0 {
				role = domain.RoleRef(p.Role)
			}
			add(domain.CategoryTypeMismatch, domain.SeverityCritical, name, role, "%s", p.FieldProblem.String())
		}

		a.checkCompany(c, add)
		for j, r := range c.Roles {
			a.checkRole(c, j, r, add)
		}
	}

	if a.journal != nil {
		issues = append(issues, a.journal.Issues()...)
	}
	repairs := map[string]int{}
	if a.journal != nil {
		repairs = a.journal.Repairs()
	}

	rep := Report{
		IssueCount: len(issues),
		Issues:     issues,
		Score: Score(issues, len(companies),
			a.cfg.PointsPerCompany, a.cfg.CriticalPenalty, a.cfg.WarningPenalty),
		Summary: summarize(issues),
		Repairs: repairs,
	}
	a.log.Info("audit complete",
		zap.Int("companies", len(companies)),
		zap.Int("issues", rep.IssueCount),
		zap.Float64("score", rep.Score),
	)
	return rep, nil
}

type addFunc func(cat domain.Category, sev domain.Severity, subject string, role *int, format string, args ...any)

func (a *Auditor) checkCompany(c domain.Company, add addFunc) {
	name := c.Name
	if domain.IsBlank(name) {
		add(domain.CategoryMissingField, domain.SeverityCritical, name, nil, "company_name is empty")
	}
	if len(c.Roles) == 0 {
		add(domain.CategoryMissingField, domain.SeverityCritical, name, nil, "company has no roles")
	}

	if p, ok := a.placeholder(c.About); ok {
		add(domain.CategoryPlaceholder, domain.SeverityWarning, name, nil, "about contains placeholder text %q", p)
	}
	if p, ok := a.placeholder(name); ok {
		add(domain.CategoryPlaceholder, domain.SeverityWarning, name, nil, "company_name contains placeholder text %q", p)
	}

	switch {
	case c.Stage == domain.StageStartup && c.Size == domain.SizeEnterprise:
		add(domain.CategoryLogicMismatch, domain.SeverityWarning, name, nil, "startup with %s size", c.Size)
	case c.Stage == domain.StagePublic && c.Size == domain.SizeSmall:
		add(domain.CategoryLogicMismatch, domain.SeverityWarning, name, nil, "public company with %s size", c.Size)
	}
	if c.Size == domain.SizeSmall && len(c.Roles) > a.cfg.SmallMaxRoles {
		add(domain.CategoryLogicMismatch, domain.SeverityWarning, name, nil,
			"%s company with %d roles", c.Size, len(c.Roles))
	}
	if c.Size == domain.SizeEnterprise && len(c.Roles) < a.cfg.EnterpriseMinRoles {
		add(domain.CategoryLogicMismatch, domain.SeverityWarning, name, nil,
			"%s company with only %d roles", c.Size, len(c.Roles))
	}
	if !domain.IsBlank(c.Industry) && strings.EqualFold(strings.TrimSpace(c.Industry), strings.TrimSpace(c.SubIndustry)) {
		add(domain.CategoryLogicMismatch, domain.SeverityWarning, name, nil, "sub_industry repeats industry %q", c.Industry)
	}

	tags := map[string]bool{}
	for _, t := range c.CultureTags {
		k := strings.ToLower(strings.TrimSpace(t))
		if tags[k] {
			add(domain.CategoryLogicMismatch, domain.SeverityWarning, name, nil, "duplicate culture tag %q", t)
			break
		}
		tags[k] = true
	}
	if a.maxTags > 0 && len(c.CultureTags) > a.maxTags {
		add(domain.CategoryLogicMismatch, domain.SeverityWarning, name, nil,
			"%d culture tags, more than %d", len(c.CultureTags), a.maxTags)
	}
}

func (a *Auditor) checkRole(c domain.Company, j int, r domain.Role, add addFunc) {
	name := c.Name
	ref := domain.RoleRef(j)
	missing := func(field string) {
		add(domain.CategoryMissingField, domain.SeverityCritical, name, ref, "role %s is empty", field)
	}
	if domain.IsBlank(r.Title) {
		missing("title")
	}
	if domain.IsBlank(r.Description) {
		missing("description")
	}
	if len(r.RequiredSkills) == 0 {
		missing("required_skills")
	}
	if r.SalaryRange == nil {
		missing("salary_range")
	}

	if p, ok := a.placeholder(r.Title); ok {
		add(domain.CategoryPlaceholder, domain.SeverityWarning, name, ref, "role title contains placeholder text %q", p)
	}
	if p, ok := a.placeholder(r.Description); ok {
		add(domain.CategoryPlaceholder, domain.SeverityWarning, name, ref, "role description contains placeholder text %q", p)
	}

	if sr := r.SalaryRange; sr != nil {
		a.checkSalary(name, ref, r.Title, *sr, add)
	}
	if r.MinExperienceYears < 0 {
		add(domain.CategoryLogicMismatch, domain.SeverityWarning, name, ref,
			"negative min_experience_years %d", r.MinExperienceYears)
	}

	loc := strings.TrimSpace(r.Location)
	if loc != "" && !a.sentinels[loc] && !strings.Contains(loc, ",") && len(strings.Fields(loc)) > 3 {
		add(domain.CategoryLocationAnomaly, domain.SeverityWarning, name, ref, "malformed location %q", loc)
	}
}

func (a *Auditor) checkSalary(name string, ref *int, title string, sr domain.SalaryRange, add addFunc) {
	if sr.Min < 0 || sr.Min >= sr.Max || sr.Max > a.ceiling {
		add(domain.CategorySalaryAnomaly, domain.SeverityCritical, name, ref, "invalid salary_range %s", sr)
		return
	}
	warn := func(format string, args ...any) {
		add(domain.CategorySalaryAnomaly, domain.SeverityWarning, name, ref, format, args...)
	}
	switch {
	case a.intern.MatchString(title) && sr.Min > a.cfg.InternMinCap:
		warn("intern role with minimum salary %d above %d", sr.Min, a.cfg.InternMinCap)
	case a.entry.MatchString(title) && sr.Min > a.cfg.EntryMinCap:
		warn("entry-level role with minimum salary %d above %d", sr.Min, a.cfg.EntryMinCap)
	case a.executive.MatchString(title) && sr.Max < a.cfg.ExecutiveMaxFloor:
		warn("executive role with maximum salary %d below %d", sr.Max, a.cfg.ExecutiveMaxFloor)
	case a.senior.MatchString(title) && sr.Max < a.cfg.SeniorMaxFloor:
		warn("senior role with maximum salary %d below %d", sr.Max, a.cfg.SeniorMaxFloor)
	}
	if sr.Min < a.cfg.SalaryFloor {
		warn("minimum salary %d below %d", sr.Min, a.cfg.SalaryFloor)
	}
}

func (a *Auditor) placeholder(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	for _, p := range a.placeholders {
		if p.re.MatchString(text) {
			return p.text, true
		}
	}
	return "", false
}
