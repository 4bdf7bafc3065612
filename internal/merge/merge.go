package merge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"companyclean-engine/internal/config"
	"companyclean-engine/internal/domain"
	"companyclean-engine/internal/events"
)

type Merger struct {
	cfg     config.Merge
	log     *zap.Logger
	journal *events.Journal
}

func New(cfg config.Merge, log *zap.Logger, j *events.Journal) *Merger {
	if log == nil {
		log = zap.L()
	}
	return &Merger{cfg: cfg, log: log.With(zap.String("component", "merge")), journal: j}
}

type ranked struct {
	c     domain.Company
	score float64
	canon []byte
}

// Merge collapses one match group into a canonical company. The result does
// not depend on the order of members: the base is chosen by completeness,
// with the canonical encoding as tie-break, and every union walks members
// in that same ranked order.
func (m *Merger) Merge(members []domain.Company) domain.Company {
	if len(members) == 0 {
		return domain.Company{}
	}
	rs := m.rank(members)
	base := rs[0].c.Clone()

	if len(rs) > 1 {
		m.backfill(&base, rs[1:])
		base.TechStack = unionOrdered(base.TechStack, rs[1:], func(c domain.Company) []string { return c.TechStack })
		base.CultureTags = unionOrdered(base.CultureTags, rs[1:], func(c domain.Company) []string { return c.CultureTags })
		for _, r := range rs[1:] {
			for k, v := range r.c.Extra {
				if _, ok := base.Extra[k]; ok {
					continue
				}
				if base.Extra == nil {
					base.Extra = map[string]json.RawMessage{}
				}
				base.Extra[k] = append(json.RawMessage(nil), v...)
			}
		}
	} else {
		base.TechStack = unionOrdered(base.TechStack, nil, nil)
		base.CultureTags = unionOrdered(base.CultureTags, nil, nil)
	}

	var roles []domain.Role
	for _, r := range rs {
		roles = append(roles, r.c.Roles...)
	}
	base.Roles = m.unionRoles(base.Name, roles)

	if len(rs) > 1 {
		m.log.Debug("merged group",
			zap.String("company", base.Name),
			zap.Int("members", len(rs)),
			zap.Float64("base_score", rs[0].score),
			zap.Int("roles", len(base.Roles)),
		)
	}
	return base
}

func (m *Merger) rank(members []domain.Company) []ranked {
	maxAbout := 0
	for _, c := range members {
		if n := aboutLen(c); n > maxAbout {
			maxAbout = n
		}
	}
	rs := make([]ranked, len(members))
	for i, c := range members {
		canon, _ := json.Marshal(c)
		rs[i] = ranked{c: c, score: Completeness(c, maxAbout, m.cfg), canon: canon}
	}
	sort.SliceStable(rs, func(a, b int) bool {
		if rs[a].score != rs[b].score {
			return rs[a].score > rs[b].score
		}
		return bytes.Compare(rs[a].canon, rs[b].canon) < 0
	})
	return rs
}

type scalar struct {
	name string
	get  func(*domain.Company) string
	set  func(*domain.Company, string)
	// report disagreements between members
	audit bool
}

var scalars = []scalar{
	{"about", func(c *domain.Company) string { return c.About }, func(c *domain.Company, v string) { c.About = v }, false},
	{"industry", func(c *domain.Company) string { return c.Industry }, func(c *domain.Company, v string) { c.Industry = v }, true},
	{"sub_industry", func(c *domain.Company) string { return c.SubIndustry }, func(c *domain.Company, v string) { c.SubIndustry = v }, true},
	{"company_stage", func(c *domain.Company) string { return string(c.Stage) }, func(c *domain.Company, v string) { c.Stage = domain.Stage(v) }, true},
	{"size", func(c *domain.Company) string { return string(c.Size) }, func(c *domain.Company, v string) { c.Size = domain.SizeBracket(v) }, true},
}

// backfill fills blank scalars of base from the first ranked member that has
// one, and records members that disagree with the value kept.
func (m *Merger) backfill(base *domain.Company, rest []ranked) {
	for _, f := range scalars {
		if domain.IsBlank(f.get(base)) {
			for _, r := range rest {
				if v := f.get(&r.c); !domain.IsBlank(v) {
					f.set(base, v)
					break
				}
			}
		}
		if !f.audit {
			continue
		}
		kept := f.get(base)
		for _, r := range rest {
			v := f.get(&r.c)
			if domain.IsBlank(v) || domain.IsBlank(kept) || strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(kept)) {
				continue
			}
			msg := fmt.Sprintf("duplicates disagree on %s: kept %q, dropped %q from %q", f.name, kept, v, r.c.Name)
			m.journal.Record(events.MakeEvent(events.TypeMergeConflict, base.Name, msg, map[string]string{
				"field": f.name, "kept": kept, "dropped": v,
			}).AsIssue(domain.CategoryDuplicate))
		}
	}
}

// unionOrdered keeps first's order, drops exact repeats (case-insensitive)
// and appends novel items from rest in ranked order.
func unionOrdered(first []string, rest []ranked, get func(domain.Company) []string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(xs []string) {
		for _, x := range xs {
			x = strings.TrimSpace(x)
			k := strings.ToLower(x)
			if x == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, x)
		}
	}
	add(first)
	for _, r := range rest {
		add(get(r.c))
	}
	return out
}

// unionRoles removes roles whose normalized title repeats an earlier one.
// The survivor keeps the first position but takes the content of the more
// populated duplicate.
func (m *Merger) unionRoles(company string, roles []domain.Role) []domain.Role {
	out := make([]domain.Role, 0, len(roles))
	at := map[string]int{}
	for _, r := range roles {
		key := r.TitleKey()
		if domain.IsBlank(key) {
			out = append(out, r.Clone())
			continue
		}
		i, dup := at[key]
		if !dup {
			at[key] = len(out)
			out = append(out, r.Clone())
			continue
		}
		if r.Populated() > out[i].Populated() {
			out[i] = r.Clone()
		}
		m.journal.Record(events.MakeEvent(events.TypeMergeRoleDup, company,
			fmt.Sprintf("dropped duplicate role %q", r.Title), nil).ForRole(i))
	}
	return out
}
