package normalize

import (
	"regexp"
	"strings"

	"companyclean-engine/internal/config"
)

// term matches a keyword on word boundaries, so "it" does not hit "digital"
// and "private" does not hit "privately".
type term struct {
	re *regexp.Regexp
}

func compileTerm(t string) term {
	t = strings.ToLower(strings.TrimSpace(t))
	return term{re: regexp.MustCompile(`(^|[^\pL\pN])` + regexp.QuoteMeta(t) + `($|[^\pL\pN])`)}
}

func (t term) in(text string) bool { return t.re.MatchString(text) }

type rule struct {
	tag   string
	terms []term
}

type tagRule struct {
	tags  []string
	terms []term
}

func compileRules(rs []config.Rule) []rule {
	out := make([]rule, 0, len(rs))
	for _, r := range rs {
		cr := rule{tag: r.Tag}
		for _, a := range r.Any {
			cr.terms = append(cr.terms, compileTerm(a))
		}
		out = append(out, cr)
	}
	return out
}

func compileTagRules(rs []config.TagRule) []tagRule {
	out := make([]tagRule, 0, len(rs))
	for _, r := range rs {
		cr := tagRule{tags: r.Tags}
		for _, a := range r.Any {
			cr.terms = append(cr.terms, compileTerm(a))
		}
		out = append(out, cr)
	}
	return out
}

// firstTag returns the tag of the first rule with any matching term.
func firstTag(rules []rule, text string) (string, bool) {
	text = strings.ToLower(text)
	for _, r := range rules {
		for _, t := range r.terms {
			if t.in(text) {
				return r.tag, true
			}
		}
	}
	return "", false
}

// firstTags is firstTag for rules that yield several tags.
func firstTags(rules []tagRule, text string) ([]string, bool) {
	text = strings.ToLower(text)
	for _, r := range rules {
		for _, t := range r.terms {
			if t.in(text) {
				return r.tags, true
			}
		}
	}
	return nil, false
}

func uniq(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		k := strings.ToLower(t)
		if t == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out
}
