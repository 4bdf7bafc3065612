package normalize

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"companyclean-engine/internal/config"
	"companyclean-engine/internal/domain"
	"companyclean-engine/internal/events"
)

// Normalizer maps free-text company fields onto the controlled vocabularies.
// Every method is total: unmatched input ends as Unknown (or the matching
// sentinel), never as an empty string.
type Normalizer struct {
	cfg       config.Normalize
	stages    []rule
	industry  map[string]string
	culture   []tagRule
	skills    []tagRule
	locations locationTable
	log       *zap.Logger
	journal   *events.Journal
}

func New(cfg config.Normalize, log *zap.Logger, j *events.Journal) *Normalizer {
	if log == nil {
		log = zap.L()
	}
	return &Normalizer{
		cfg:       cfg,
		stages:    compileRules(cfg.StageRules),
		industry:  industryAliases(cfg.IndustryRules),
		culture:   compileTagRules(cfg.CultureRules),
		skills:    compileTagRules(cfg.SkillRules),
		locations: newLocationTable(cfg.LocationSentinels, cfg.StateCodes, cfg.CountryAliases),
		log:       log.With(zap.String("component", "normalize")),
		journal:   j,
	}
}

// Normalize rewrites c in place.
func (n *Normalizer) Normalize(c *domain.Company) {
	c.Name = CleanText(c.Name)
	c.About = orUnknown(CleanText(c.About))
	c.Industry = n.Industry(c.Industry)
	c.SubIndustry = orUnknown(tidyCase(CleanText(c.SubIndustry)))
	if strings.EqualFold(c.SubIndustry, c.Industry) {
		c.SubIndustry = domain.Unknown
	}
	c.Stage = n.Stage(string(c.Stage))
	c.Size = Size(CleanText(string(c.Size)))
	c.TechStack = uniq(cleanAll(c.TechStack))

	tags, synthesized := n.CultureTags(*c)
	c.CultureTags = tags
	if synthesized {
		n.note(c.Name, -1, "culture_tags", strings.Join(tags, ", "))
	}

	if c.Roles == nil {
		c.Roles = []domain.Role{}
	}
	for i := range c.Roles {
		n.normalizeRole(c, i)
	}
}

// Stage maps free text onto the stage vocabulary with the first matching
// rule.
func (n *Normalizer) Stage(text string) domain.Stage {
	if tag, ok := firstTag(n.stages, CleanText(text)); ok {
		if s := domain.Stage(tag); s.Known() {
			return s
		}
	}
	return domain.StageUnknown
}

// Industry returns the canonical name for a known alias, and the cleaned
// input otherwise.
func (n *Normalizer) Industry(text string) string {
	text = CleanText(text)
	if domain.IsBlank(text) {
		return domain.Unknown
	}
	// whole-value match; "IT consulting" is not "Technology"
	if canon, ok := n.industry[strings.ToLower(text)]; ok {
		return canon
	}
	return tidyCase(text)
}

// CultureTags returns the cleaned tag set, or a synthesized one when c has
// none. The second result reports synthesis.
func (n *Normalizer) CultureTags(c domain.Company) ([]string, bool) {
	tags := uniq(cleanAll(c.CultureTags))
	if len(tags) > 0 {
		if limit := n.cfg.MaxCultureTags; limit > 0 && len(tags) > limit {
			tags = tags[:limit]
		}
		return tags, false
	}

	base, ok := firstTags(n.culture, c.Industry)
	if !ok {
		base = n.cfg.DefaultCultureTags
	}
	tags = append([]string(nil), base...)
	if st, ok := n.cfg.StageTags[string(c.Stage)]; ok {
		tags = append(tags, st)
	} else {
		tags = append(tags, "Professional")
	}
	tags = uniq(tags)
	if limit := n.cfg.MaxCultureTags; limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags, true
}

// Location normalizes one role location.
func (n *Normalizer) Location(loc string) string { return n.locations.Location(loc) }

func (n *Normalizer) normalizeRole(c *domain.Company, i int) {
	r := &c.Roles[i]
	r.Title = orUnknown(CleanText(r.Title))
	r.Location = n.Location(r.Location)
	r.RequiredSkills = uniq(cleanAll(r.RequiredSkills))
	r.NiceToHaveSkills = uniq(cleanAll(r.NiceToHaveSkills))

	if desc := CleanText(r.Description); !domain.IsBlank(desc) {
		r.Description = desc
	} else {
		r.Description = n.describe(c, r)
		n.note(c.Name, i, "description", r.Description)
	}
	if len(r.RequiredSkills) == 0 {
		r.RequiredSkills = n.Skills(r.Title)
		n.note(c.Name, i, "required_skills", strings.Join(r.RequiredSkills, ", "))
	}
	if r.NiceToHaveSkills == nil {
		r.NiceToHaveSkills = []string{}
	}
}

// Skills synthesizes required skills from title keywords plus the default
// set.
func (n *Normalizer) Skills(title string) []string {
	matched, _ := firstTags(n.skills, title)
	return uniq(append(append([]string(nil), matched...), n.cfg.DefaultSkills...))
}

func (n *Normalizer) describe(c *domain.Company, r *domain.Role) string {
	title := r.Title
	if domain.IsBlank(title) {
		title = "Professional"
	}
	if domain.IsBlank(c.Industry) {
		return fmt.Sprintf("Work as a %s at %s.", title, c.Name)
	}
	return fmt.Sprintf("Work as a %s at %s, contributing to %s industry operations and growth.", title, c.Name, c.Industry)
}

func (n *Normalizer) note(company string, role int, field, value string) {
	e := events.MakeEvent(events.TypeNormalizeDefault, company, fmt.Sprintf("synthesized %s: %s", field, value), nil)
	if role >= 0 {
		e = e.ForRole(role)
	}
	n.journal.Record(e)
}

func industryAliases(rules []config.Rule) map[string]string {
	m := map[string]string{}
	for _, r := range rules {
		m[strings.ToLower(r.Tag)] = r.Tag
	}
	for _, r := range rules {
		for _, a := range r.Any {
			a = strings.ToLower(strings.TrimSpace(a))
			if _, taken := m[a]; !taken {
				m[a] = r.Tag
			}
		}
	}
	return m
}

func cleanAll(xs []string) []string {
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		out = append(out, CleanText(x))
	}
	return out
}
