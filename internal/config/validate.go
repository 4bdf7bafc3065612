package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a copy with phrase lists trimmed and deduped
// and lookup keys lowercased, plus the findings.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}
	lowerKeys := func(m map[string]string) map[string]string {
		if m == nil {
			return nil
		}
		n := make(map[string]string, len(m))
		for k, v := range m {
			n[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
		}
		return n
	}

	out.Resolver.LegalSuffixes = trimList(out.Resolver.LegalSuffixes)
	out.Audit.PlaceholderPhrases = trimList(out.Audit.PlaceholderPhrases)
	out.Normalize.DefaultCultureTags = trimList(out.Normalize.DefaultCultureTags)
	out.Normalize.DefaultSkills = trimList(out.Normalize.DefaultSkills)
	out.Normalize.LocationSentinels = lowerKeys(out.Normalize.LocationSentinels)
	out.Normalize.StateCodes = lowerKeys(out.Normalize.StateCodes)
	out.Normalize.CountryAliases = lowerKeys(out.Normalize.CountryAliases)

	// ---- Validation rules ----

	r := out.Resolver
	for name, v := range map[string]float64{
		"resolver.name_threshold":         r.NameThreshold,
		"resolver.corroborated_threshold": r.CorroboratedThreshold,
		"resolver.description_threshold":  r.DescriptionThreshold,
	} {
		if v <= 0 || v > 1 {
			res.addErr("%s must be in (0, 1], got %.2f", name, v)
		}
	}
	if r.CorroboratedThreshold > r.NameThreshold {
		res.addErr("resolver.corroborated_threshold (%.2f) must not exceed name_threshold (%.2f)", r.CorroboratedThreshold, r.NameThreshold)
	}
	if r.NameThreshold > 0 && r.NameThreshold < 0.85 {
		res.addWarn("resolver.name_threshold is low (%.2f); distinct companies with similar names may be merged.", r.NameThreshold)
	}
	if r.AmbiguityMargin < 0 || r.AmbiguityMargin > 0.2 {
		res.addWarn("resolver.ambiguity_margin %.2f is outside the useful range 0..0.2", r.AmbiguityMargin)
	}
	if r.Workers < 0 {
		res.addErr("resolver.workers must be >= 0 (0 means one per CPU)")
	} else if r.Workers > 64 {
		res.addWarn("resolver.workers is very high (%d).", r.Workers)
	}
	if len(r.LegalSuffixes) == 0 {
		res.addWarn("resolver.legal_suffixes is empty; \"Acme\" and \"Acme Inc\" will not share a key.")
	}

	if out.Normalize.MaxCultureTags <= 0 {
		res.addErr("normalize.max_culture_tags must be > 0")
	}
	if len(out.Normalize.DefaultCultureTags) > out.Normalize.MaxCultureTags {
		res.addWarn("normalize.default_culture_tags has more entries than max_culture_tags")
	}
	if len(out.Normalize.DefaultSkills) == 0 {
		res.addErr("normalize.default_skills must not be empty; roles need at least one required skill")
	}
	for name, code := range out.Normalize.StateCodes {
		if len(code) != 2 {
			res.addErr("normalize.state_codes[%q] must be a 2-letter code, got %q", name, code)
		}
	}

	rp := out.Repair
	if rp.DefaultMin < 0 || rp.DefaultMin >= rp.DefaultMax {
		res.addErr("repair.default_min must be >= 0 and below default_max")
	}
	if rp.DefaultMax > rp.Ceiling {
		res.addErr("repair.default_max must not exceed repair.ceiling")
	}
	if rp.Widen <= 0 {
		res.addErr("repair.widen must be > 0")
	}
	if rp.CeilingMin <= 0 || rp.CeilingMin >= rp.Ceiling {
		res.addErr("repair.ceiling_min must be in (0, ceiling)")
	}

	if out.Audit.PointsPerCompany <= 0 {
		res.addErr("audit.points_per_company must be > 0")
	}
	if out.Audit.CriticalPenalty < out.Audit.WarningPenalty {
		res.addWarn("audit.critical_penalty is below warning_penalty; Critical issues will weigh less than Warnings.")
	}
	if len(out.Audit.PlaceholderPhrases) == 0 {
		res.addWarn("audit.placeholder_phrases is empty; placeholder text will not be detected.")
	}

	// a phrase that is also a sentinel would flag every normalized role
	sentinels := map[string]bool{}
	for _, v := range out.Normalize.LocationSentinels {
		sentinels[strings.ToLower(v)] = true
	}
	for _, p := range out.Audit.PlaceholderPhrases {
		if sentinels[strings.ToLower(p)] {
			res.addWarn("placeholder phrase %q is also a location sentinel", p)
		}
	}

	return out, res
}
