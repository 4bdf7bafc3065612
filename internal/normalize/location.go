package normalize

import (
	"sort"
	"strings"

	"companyclean-engine/internal/domain"
)

type sentinelPhrase struct {
	term     term
	phrase   string
	sentinel string
}

// locationTable is the compiled form of the location vocabulary.
type locationTable struct {
	exact     map[string]string
	contained []sentinelPhrase
	states    map[string]string // full name -> code
	codes     map[string]bool
	countries map[string]string
}

func newLocationTable(sentinels, states, countries map[string]string) locationTable {
	t := locationTable{
		exact:     map[string]string{},
		states:    map[string]string{},
		codes:     map[string]bool{},
		countries: map[string]string{},
	}
	for k, v := range sentinels {
		k = strings.ToLower(strings.TrimSpace(k))
		t.exact[k] = v
		// "Remote (US)" and "Various US cities" still read as sentinels;
		// "not specified" phrases only count when they are the whole value
		if v != domain.LocationNotSpecified {
			t.contained = append(t.contained, sentinelPhrase{term: compileTerm(k), phrase: k, sentinel: v})
		}
	}
	sort.Slice(t.contained, func(a, b int) bool {
		ca, cb := t.contained[a], t.contained[b]
		if (ca.sentinel == domain.LocationMultiple) != (cb.sentinel == domain.LocationMultiple) {
			return ca.sentinel == domain.LocationMultiple
		}
		if len(ca.phrase) != len(cb.phrase) {
			return len(ca.phrase) > len(cb.phrase)
		}
		return ca.phrase < cb.phrase
	})
	for name, code := range states {
		code = strings.ToUpper(strings.TrimSpace(code))
		t.states[strings.ToLower(strings.TrimSpace(name))] = code
		t.codes[code] = true
	}
	for k, v := range countries {
		t.countries[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return t
}

// Location rewrites a role location into "City, Region" or one of the
// sentinels. Blank input is Not Specified.
func (t locationTable) Location(loc string) string {
	loc = CleanText(loc)
	for _, prefix := range []string{"location:", "locations:", "job location:"} {
		if strings.HasPrefix(strings.ToLower(loc), prefix) {
			loc = strings.TrimSpace(loc[len(prefix):])
		}
	}
	if loc == "" {
		return domain.LocationNotSpecified
	}

	low := strings.ToLower(loc)
	if s, ok := t.exact[low]; ok {
		return s
	}
	for _, p := range t.contained {
		if p.term.in(low) {
			return p.sentinel
		}
	}

	var parts []string
	seen := map[string]bool{}
	for _, p := range strings.Split(loc, ",") {
		p = strings.TrimSpace(p)
		k := strings.ToLower(p)
		if p == "" || seen[k] {
			continue
		}
		seen[k] = true
		parts = append(parts, p)
	}

	switch len(parts) {
	case 0:
		return domain.LocationNotSpecified
	case 1:
		if c, ok := t.country(parts[0]); ok {
			return c
		}
		return titleCase(parts[0])
	}

	city := titleCase(parts[0])
	if code, ok := t.state(parts[1]); ok {
		return city + ", " + code
	}
	last := parts[len(parts)-1]
	if c, ok := t.country(last); ok {
		return city + ", " + c
	}
	return city + ", " + titleCase(last)
}

func (t locationTable) state(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 2 && t.codes[strings.ToUpper(s)] {
		return strings.ToUpper(s), true
	}
	code, ok := t.states[strings.ToLower(s)]
	return code, ok
}

func (t locationTable) country(s string) (string, bool) {
	c, ok := t.countries[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}
