package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// KeyNormalizer turns a company name into its resolution key: NFKC-folded,
// punctuation replaced by spaces, whitespace collapsed and trailing legal
// suffixes removed ("Acme, Inc." and "ACME Corp" both become "acme").
type KeyNormalizer struct {
	suffixes map[string]bool
}

func NewKeyNormalizer(suffixes []string) KeyNormalizer {
	m := make(map[string]bool, len(suffixes))
	for _, s := range suffixes {
		s = strings.Trim(strings.ToLower(strings.TrimSpace(s)), ".")
		if s != "" {
			m[s] = true
		}
	}
	return KeyNormalizer{suffixes: m}
}

func (k KeyNormalizer) Key(name string) string {
	s := cases.Fold().String(norm.NFKC.String(name))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\'' || r == '’':
			// O'Reilly -> oreilly
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	// a name that is only a suffix ("Group") keeps it
	for len(fields) > 1 && k.suffixes[fields[len(fields)-1]] {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}
