package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	LocationMultiple     = "Multiple Locations"
	LocationRemote       = "Remote"
	LocationNotSpecified = "Not Specified"
)

type Role struct {
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	Location           string       `json:"location"`
	SalaryRange        *SalaryRange `json:"salary_range"`
	RequiredSkills     []string     `json:"required_skills"`
	NiceToHaveSkills   []string     `json:"nice_to_have_skills"`
	VisaSponsorship    bool         `json:"visa_sponsorship"`
	MinExperienceYears int          `json:"min_experience_years"`

	Extra map[string]json.RawMessage `json:"-"`
}

// TitleKey is the identity of a role inside its company.
func (r Role) TitleKey() string {
	return strings.Join(strings.Fields(strings.ToLower(r.Title)), " ")
}

// Populated counts informative fields; used to keep the richer of two
// duplicate roles.
func (r Role) Populated() int {
	n := 0
	for _, s := range []string{r.Title, r.Description, r.Location} {
		if !IsBlank(s) {
			n++
		}
	}
	if r.SalaryRange != nil {
		n++
	}
	if len(r.RequiredSkills) > 0 {
		n++
	}
	if len(r.NiceToHaveSkills) > 0 {
		n++
	}
	if r.VisaSponsorship {
		n++
	}
	if r.MinExperienceYears > 0 {
		n++
	}
	return n + len(r.Extra)
}

func (r Role) Clone() Role {
	out := r
	if r.SalaryRange != nil {
		sr := *r.SalaryRange
		out.SalaryRange = &sr
	}
	out.RequiredSkills = append([]string(nil), r.RequiredSkills...)
	out.NiceToHaveSkills = append([]string(nil), r.NiceToHaveSkills...)
	out.Extra = cloneExtra(r.Extra)
	return out
}

type roleJSON Role

func (r Role) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(roleJSON(r))
	if err != nil {
		return nil, err
	}
	return appendExtra(b, r.Extra)
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var raw RawRecord
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r, _ = decodeRole(raw, 0)
	return nil
}

// SalaryRange is encoded on the wire as a two-element array [min, max].
type SalaryRange struct {
	Min int
	Max int
}

func (s SalaryRange) String() string { return fmt.Sprintf("[%d, %d]", s.Min, s.Max) }

func (s SalaryRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Min, s.Max})
}

func (s *SalaryRange) UnmarshalJSON(b []byte) error {
	sr, ok := decodeSalary(b)
	if !ok || sr == nil {
		return fmt.Errorf("salary_range: want [min, max], got %s", kindOf(b))
	}
	*s = *sr
	return nil
}
