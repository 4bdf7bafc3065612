package pipeline

import "companyclean-engine/internal/domain"

// Stats summarizes one run.
type Stats struct {
	Inputs      int `json:"inputs"`
	Bytes       int `json:"bytes"`
	Salvaged    int `json:"salvaged"`
	Discarded   int `json:"discarded"`
	Records     int `json:"records"`
	Nameless    int `json:"nameless"`
	Groups      int `json:"groups"`
	Collisions  int `json:"collisions"`
	Companies   int `json:"companies"`
	Roles       int `json:"roles"`
	Corrections int `json:"corrections"`

	Industries map[string]int             `json:"industries"`
	Stages     map[domain.Stage]int       `json:"stages"`
	Sizes      map[domain.SizeBracket]int `json:"sizes"`
}

func (s *Stats) tally(companies []domain.Company) {
	s.Companies = len(companies)
	s.Industries = map[string]int{}
	s.Stages = map[domain.Stage]int{}
	s.Sizes = map[domain.SizeBracket]int{}
	for _, c := range companies {
		s.Roles += len(c.Roles)
		s.Industries[c.Industry]++
		s.Stages[c.Stage]++
		s.Sizes[c.Size]++
	}
}
