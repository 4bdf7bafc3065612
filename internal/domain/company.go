package domain

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Unknown is the terminal value for any text field that has nothing better.
const Unknown = "Unknown"

type Stage string

const (
	StagePublic      Stage = "Public"
	StagePrivate     Stage = "Private"
	StageStartup     Stage = "Startup"
	StageNonProfit   Stage = "Non-Profit"
	StageGovernment  Stage = "Government"
	StageEstablished Stage = "Established"
	StageGrowth      Stage = "Growth"
	StageUnknown     Stage = Unknown
)

var knownStages = map[Stage]bool{
	StagePublic: true, StagePrivate: true, StageStartup: true, StageNonProfit: true,
	StageGovernment: true, StageEstablished: true, StageGrowth: true, StageUnknown: true,
}

// Known reports whether s is one of the controlled stage values.
func (s Stage) Known() bool { return knownStages[s] }

type SizeBracket string

const (
	SizeSmall      SizeBracket = "Small (1-49)"
	SizeMedium     SizeBracket = "Medium (50-199)"
	SizeLarge      SizeBracket = "Large (200-999)"
	SizeVeryLarge  SizeBracket = "Very Large (1,000-4,999)"
	SizeEnterprise SizeBracket = "Enterprise (5,000+)"
	SizeUnknown    SizeBracket = Unknown
)

var sizeRank = map[SizeBracket]int{
	SizeSmall: 1, SizeMedium: 2, SizeLarge: 3, SizeVeryLarge: 4, SizeEnterprise: 5,
}

// Rank orders brackets from Small (1) to Enterprise (5); 0 for Unknown and
// anything outside the vocabulary.
func (b SizeBracket) Rank() int { return sizeRank[b] }

func (b SizeBracket) Known() bool { return b == SizeUnknown || sizeRank[b] > 0 }

type Company struct {
	Name        string      `json:"company_name"`
	About       string      `json:"about"`
	Industry    string      `json:"industry"`
	SubIndustry string      `json:"sub_industry"`
	Stage       Stage       `json:"company_stage"`
	Size        SizeBracket `json:"size"`
	CultureTags []string    `json:"culture_tags"`
	TechStack   []string    `json:"tech_stack"`
	Roles       []Role      `json:"roles"`

	// Extra carries input keys the engine does not interpret.
	Extra map[string]json.RawMessage `json:"-"`
}

// IsBlank reports whether a text value carries no information: empty after
// trimming, or the Unknown sentinel.
func IsBlank(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, Unknown)
}

// Clone returns a deep copy so stages can mutate without aliasing input.
func (c Company) Clone() Company {
	out := c
	out.CultureTags = append([]string(nil), c.CultureTags...)
	out.TechStack = append([]string(nil), c.TechStack...)
	if c.Roles != nil {
		out.Roles = make([]Role, len(c.Roles))
		for i, r := range c.Roles {
			out.Roles[i] = r.Clone()
		}
	}
	out.Extra = cloneExtra(c.Extra)
	return out
}

type companyJSON Company

func (c Company) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(companyJSON(c))
	if err != nil {
		return nil, err
	}
	return appendExtra(b, c.Extra)
}

func (c *Company) UnmarshalJSON(b []byte) error {
	var raw RawRecord
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*c, _ = DecodeCompany(raw)
	return nil
}

func cloneExtra(in map[string]json.RawMessage) map[string]json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// appendExtra splices preserved keys into an encoded object, sorted by key so
// output is stable.
func appendExtra(obj []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return obj, nil
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(obj[:len(obj)-1])
	for _, k := range keys {
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
