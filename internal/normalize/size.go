package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"companyclean-engine/internal/domain"
)

// thousands groups ("3,000") or plain digits, optional decimals, optional k
var countRe = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})+|\d+)(\.\d+)?\s*(k\b)?`)

// larger counts are read as this many
const maxHeadcount = 1e9

// Bracket maps a headcount to its size bracket.
func Bracket(n int) domain.SizeBracket {
	switch {
	case n < 50:
		return domain.SizeSmall
	case n < 200:
		return domain.SizeMedium
	case n < 1000:
		return domain.SizeLarge
	case n < 5000:
		return domain.SizeVeryLarge
	default:
		return domain.SizeEnterprise
	}
}

// largestCount returns the largest number mentioned in s.
func largestCount(s string) (int, bool) {
	best, found := 0, false
	for _, m := range countRe.FindAllStringSubmatch(s, -1) {
		f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "")+m[2], 64)
		if err != nil {
			continue
		}
		if m[3] != "" {
			f *= 1000
		}
		f = math.Min(f, maxHeadcount)
		if n := int(f); !found || n > best {
			best, found = n, true
		}
	}
	return best, found
}

var sizeKeywords = []struct {
	word    string
	bracket domain.SizeBracket
}{
	{"enterprise", domain.SizeEnterprise},
	{"very large", domain.SizeVeryLarge},
	{"large", domain.SizeLarge},
	{"medium", domain.SizeMedium},
	{"mid-size", domain.SizeMedium},
	{"midsize", domain.SizeMedium},
	{"small", domain.SizeSmall},
}

// Size reads a size bracket from free text: the largest number wins,
// then keywords, then Unknown. Bracket labels map to themselves.
func Size(text string) domain.SizeBracket {
	if n, ok := largestCount(text); ok {
		return Bracket(n)
	}
	low := strings.ToLower(text)
	for _, k := range sizeKeywords {
		if strings.Contains(low, k.word) {
			return k.bracket
		}
	}
	return domain.SizeUnknown
}
