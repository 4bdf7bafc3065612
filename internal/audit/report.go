package audit

import (
	"math"

	"companyclean-engine/internal/domain"
)

type Summary struct {
	ByCategory map[domain.Category]int `json:"by_category"`
	BySeverity map[domain.Severity]int `json:"by_severity"`
}

// Report is the outcome of one audit. Issues keep the order they were found
// in: per company in batch order, then the Info issues of the run journal.
type Report struct {
	IssueCount int                   `json:"issue_count"`
	Issues     []domain.QualityIssue `json:"issues"`
	Score      float64               `json:"score"`
	Summary    Summary               `json:"summary"`
	Repairs    map[string]int        `json:"repairs"`
}

// Score is the single scoring function:
//
//	max(0, 100 - 100*defects/points) - (critical*cp + warning*wp), floored at 0
//
// where defects counts Critical and Warning issues and points is
// pointsPerCompany for every company. Info issues do not count.
func Score(issues []domain.QualityIssue, companies int, pointsPerCompany, criticalPenalty, warningPenalty float64) float64 {
	var critical, warning int
	for _, is := range issues {
		switch is.Severity {
		case domain.SeverityCritical:
			critical++
		case domain.SeverityWarning:
			warning++
		}
	}
	defects := float64(critical + warning)
	points := pointsPerCompany * float64(companies)

	base := 100.0
	switch {
	case points > 0:
		base = math.Max(0, 100-100*defects/points)
	case defects > 0:
		base = 0
	}
	score := base - (criticalPenalty*float64(critical) + warningPenalty*float64(warning))
	return math.Round(math.Max(0, score)*100) / 100
}

func summarize(issues []domain.QualityIssue) Summary {
	s := Summary{
		ByCategory: map[domain.Category]int{},
		BySeverity: map[domain.Severity]int{},
	}
	for _, is := range issues {
		s.ByCategory[is.Category]++
		s.BySeverity[is.Severity]++
	}
	return s
}
