package merge

import (
	"unicode/utf8"

	"companyclean-engine/internal/config"
	"companyclean-engine/internal/domain"
)

// Completeness scores how much information c carries relative to the other
// members of its group. maxAbout is the longest description in the group,
// in runes.
func Completeness(c domain.Company, maxAbout int, w config.Merge) float64 {
	scalars := 0
	for _, s := range []string{c.Name, c.About, c.Industry, c.SubIndustry, string(c.Stage), string(c.Size)} {
		if !domain.IsBlank(s) {
			scalars++
		}
	}
	score := w.ScalarWeight * float64(scalars)
	if maxAbout > 0 && !domain.IsBlank(c.About) {
		score += w.DescriptionWeight * float64(aboutLen(c)) / float64(maxAbout)
	}
	score += w.RoleWeight * float64(len(c.Roles))
	score += w.TechWeight * float64(len(c.TechStack))
	return score
}

func aboutLen(c domain.Company) int {
	if domain.IsBlank(c.About) {
		return 0
	}
	return utf8.RuneCountInString(c.About)
}
