package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawRecord is one object salvaged from input text, before any typing.
type RawRecord map[string]json.RawMessage

// Name returns the trimmed company_name if it is a string.
func (r RawRecord) Name() string {
	var s string
	if err := json.Unmarshal(r["company_name"], &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// FieldProblem describes a value that had the wrong JSON shape and was
// coerced (or dropped) while decoding.
type FieldProblem struct {
	Field string
	Role  int // -1 for company fields
	Want  string
	Got   string
}

func (p FieldProblem) String() string {
	if p.Role >= 0 {
		return fmt.Sprintf("roles[%d].%s: want %s, got %s", p.Role, p.Field, p.Want, p.Got)
	}
	return fmt.Sprintf("%s: want %s, got %s", p.Field, p.Want, p.Got)
}

var companyKeys = map[string]bool{
	"company_name": true, "about": true, "industry": true, "sub_industry": true,
	"company_stage": true, "size": true, "culture_tags": true, "tech_stack": true, "roles": true,
}

var roleKeys = map[string]bool{
	"title": true, "description": true, "location": true, "salary_range": true,
	"required_skills": true, "nice_to_have_skills": true, "visa_sponsorship": true,
	"min_experience_years": true,
}

// DecodeCompany types a raw record. It never fails: values with the wrong
// shape are coerced where a reading is obvious and reported as problems.
func DecodeCompany(raw RawRecord) (Company, []FieldProblem) {
	var (
		c     Company
		probs []FieldProblem
	)
	text := func(field string) string {
		s, ok := decodeText(raw[field])
		if !ok {
			probs = append(probs, FieldProblem{Field: field, Role: -1, Want: "string", Got: kindOf(raw[field])})
		}
		return s
	}
	list := func(field string) []string {
		xs, ok := decodeList(raw[field])
		if !ok {
			probs = append(probs, FieldProblem{Field: field, Role: -1, Want: "array of strings", Got: kindOf(raw[field])})
		}
		return xs
	}

	c.Name = strings.TrimSpace(text("company_name"))
	c.About = text("about")
	c.Industry = text("industry")
	c.SubIndustry = text("sub_industry")
	c.Stage = Stage(text("company_stage"))
	c.Size = SizeBracket(text("size"))
	c.CultureTags = list("culture_tags")
	c.TechStack = list("tech_stack")

	roles, rprobs := decodeRoles(raw["roles"])
	c.Roles = roles
	probs = append(probs, rprobs...)

	for k, v := range raw {
		if companyKeys[k] {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]json.RawMessage)
		}
		c.Extra[k] = v
	}
	return c, probs
}

func decodeRoles(b json.RawMessage) ([]Role, []FieldProblem) {
	var probs []FieldProblem
	switch kindOf(b) {
	case "absent", "null":
		return nil, nil
	case "object":
		// a lone role object instead of a list
		var raw RawRecord
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, []FieldProblem{{Field: "roles", Role: -1, Want: "array of objects", Got: "invalid object"}}
		}
		r, rp := decodeRole(raw, 0)
		probs = append(probs, FieldProblem{Field: "roles", Role: -1, Want: "array of objects", Got: "object"})
		return []Role{r}, append(probs, rp...)
	case "array":
	default:
		return nil, []FieldProblem{{Field: "roles", Role: -1, Want: "array of objects", Got: kindOf(b)}}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, []FieldProblem{{Field: "roles", Role: -1, Want: "array of objects", Got: "invalid array"}}
	}
	roles := make([]Role, 0, len(items))
	for i, it := range items {
		var raw RawRecord
		if kindOf(it) != "object" || json.Unmarshal(it, &raw) != nil {
			probs = append(probs, FieldProblem{Field: "roles", Role: i, Want: "object", Got: kindOf(it)})
			continue
		}
		r, rp := decodeRole(raw, i)
		roles = append(roles, r)
		probs = append(probs, rp...)
	}
	return roles, probs
}

func decodeRole(raw RawRecord, idx int) (Role, []FieldProblem) {
	var (
		r     Role
		probs []FieldProblem
	)
	bad := func(field, want string) {
		probs = append(probs, FieldProblem{Field: field, Role: idx, Want: want, Got: kindOf(raw[field])})
	}

	var ok bool
	if r.Title, ok = decodeText(raw["title"]); !ok {
		bad("title", "string")
	}
	r.Title = strings.TrimSpace(r.Title)
	if r.Description, ok = decodeText(raw["description"]); !ok {
		bad("description", "string")
	}
	if r.Location, ok = decodeText(raw["location"]); !ok {
		bad("location", "string")
	}
	if r.SalaryRange, ok = decodeSalary(raw["salary_range"]); !ok {
		bad("salary_range", "[min, max]")
	}
	if r.RequiredSkills, ok = decodeList(raw["required_skills"]); !ok {
		bad("required_skills", "array of strings")
	}
	if r.NiceToHaveSkills, ok = decodeList(raw["nice_to_have_skills"]); !ok {
		bad("nice_to_have_skills", "array of strings")
	}
	if r.VisaSponsorship, ok = decodeBool(raw["visa_sponsorship"]); !ok {
		bad("visa_sponsorship", "boolean")
	}
	if r.MinExperienceYears, ok = decodeInt(raw["min_experience_years"]); !ok {
		bad("min_experience_years", "integer")
	}

	for k, v := range raw {
		if roleKeys[k] {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage)
		}
		r.Extra[k] = v
	}
	return r, probs
}

func kindOf(b json.RawMessage) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return "absent"
	}
	switch b[0] {
	case '"':
		return "string"
	case '[':
		return "array"
	case '{':
		return "object"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

func decodeText(b json.RawMessage) (string, bool) {
	switch kindOf(b) {
	case "absent", "null":
		return "", true
	case "string":
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false
		}
		return s, true
	case "number", "boolean":
		return string(bytes.TrimSpace(b)), false
	case "array":
		// ["Public", "NYSE"] -> "Public NYSE"
		xs, _ := decodeList(b)
		return strings.Join(xs, " "), false
	default:
		return "", false
	}
}

func decodeList(b json.RawMessage) ([]string, bool) {
	switch kindOf(b) {
	case "absent", "null":
		return nil, true
	case "string":
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, false
		}
		var out []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, false
	case "array":
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return nil, false
		}
		ok := true
		out := make([]string, 0, len(items))
		for _, it := range items {
			s, good := decodeText(it)
			if !good {
				ok = false
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, ok
	default:
		return nil, false
	}
}

func decodeBool(b json.RawMessage) (bool, bool) {
	switch kindOf(b) {
	case "absent", "null":
		return false, true
	case "boolean":
		var v bool
		err := json.Unmarshal(b, &v)
		return v, err == nil
	case "string":
		var s string
		_ = json.Unmarshal(b, &s)
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "y", "1":
			return true, false
		}
		return false, false
	case "number":
		n, ok := decodeInt(b)
		return ok && n != 0, false
	default:
		return false, false
	}
}

func decodeInt(b json.RawMessage) (int, bool) {
	switch kindOf(b) {
	case "absent", "null":
		return 0, true
	case "number":
		var f float64
		if err := json.Unmarshal(b, &f); err != nil || !coercible(f) {
			return 0, false
		}
		return int(f), true
	case "string":
		var s string
		_ = json.Unmarshal(b, &s)
		n, ok := ParseAmount(s)
		return n, ok
	default:
		return 0, false
	}
}

// decodeSalary returns nil with ok=true when the range is absent, and nil
// with ok=false when it is present but not two coercible integers.
func decodeSalary(b json.RawMessage) (*SalaryRange, bool) {
	switch kindOf(b) {
	case "absent", "null":
		return nil, true
	case "array":
	default:
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil || len(items) != 2 {
		return nil, false
	}
	lo, ok1 := decodeInt(items[0])
	hi, ok2 := decodeInt(items[1])
	if !ok1 || !ok2 || kindOf(items[0]) == "null" || kindOf(items[1]) == "null" {
		return nil, false
	}
	return &SalaryRange{Min: lo, Max: hi}, true
}

// ParseAmount reads money-ish text such as "90000", "$90,000" or "90k".
func ParseAmount(s string) (int, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	mult := 1.0
	if strings.HasSuffix(s, "k") {
		mult = 1000
		s = strings.TrimSuffix(s, "k")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !coercible(f*mult) {
		return 0, false
	}
	return int(f * mult), true
}

// maxAmount bounds every number read as an int; anything larger is noise.
const maxAmount = 1e12

func coercible(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) <= maxAmount
}
