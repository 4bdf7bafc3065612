// engine/internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule maps any of its terms to Tag. Rules are evaluated in order and the
// first hit wins.
type Rule struct {
	Tag string   `yaml:"tag"`
	Any []string `yaml:"any"`
}

// TagRule yields several tags when any term matches.
type TagRule struct {
	Any  []string `yaml:"any"`
	Tags []string `yaml:"tags"`
}

type Recovery struct {
	AnchorKey string `yaml:"anchor_key"`
}

type Resolver struct {
	NameThreshold         float64  `yaml:"name_threshold"`
	CorroboratedThreshold float64  `yaml:"corroborated_threshold"`
	DescriptionThreshold  float64  `yaml:"description_threshold"`
	AmbiguityMargin       float64  `yaml:"ambiguity_margin"`
	DescriptionMaxRunes   int      `yaml:"description_max_runes"`
	LegalSuffixes         []string `yaml:"legal_suffixes"`
	Workers               int      `yaml:"workers"`
	ParallelMinKeys       int      `yaml:"parallel_min_keys"`
}

type Merge struct {
	ScalarWeight      float64 `yaml:"scalar_weight"`
	DescriptionWeight float64 `yaml:"description_weight"`
	RoleWeight        float64 `yaml:"role_weight"`
	TechWeight        float64 `yaml:"tech_weight"`
}

type Normalize struct {
	StageRules         []Rule            `yaml:"stage_rules"`
	IndustryRules      []Rule            `yaml:"industry_rules"`
	CultureRules       []TagRule         `yaml:"culture_rules"`
	DefaultCultureTags []string          `yaml:"default_culture_tags"`
	StageTags          map[string]string `yaml:"stage_tags"`
	MaxCultureTags     int               `yaml:"max_culture_tags"`
	LocationSentinels  map[string]string `yaml:"location_sentinels"`
	StateCodes         map[string]string `yaml:"state_codes"`
	CountryAliases     map[string]string `yaml:"country_aliases"`
	SkillRules         []TagRule         `yaml:"skill_rules"`
	DefaultSkills      []string          `yaml:"default_skills"`
}

type Repair struct {
	DefaultMin int `yaml:"default_min"`
	DefaultMax int `yaml:"default_max"`
	Widen      int `yaml:"widen"`
	Ceiling    int `yaml:"ceiling"`
	CeilingMin int `yaml:"ceiling_min"`
}

type Audit struct {
	PlaceholderPhrases []string `yaml:"placeholder_phrases"`
	PointsPerCompany   float64  `yaml:"points_per_company"`
	CriticalPenalty    float64  `yaml:"critical_penalty"`
	WarningPenalty     float64  `yaml:"warning_penalty"`
	SalaryFloor        int      `yaml:"salary_floor"`
	InternMinCap       int      `yaml:"intern_min_cap"`
	EntryMinCap        int      `yaml:"entry_min_cap"`
	SeniorMaxFloor     int      `yaml:"senior_max_floor"`
	ExecutiveMaxFloor  int      `yaml:"executive_max_floor"`
	SmallMaxRoles      int      `yaml:"small_max_roles"`
	EnterpriseMinRoles int      `yaml:"enterprise_min_roles"`
}

type Store struct {
	Path string `yaml:"path"`
}

type Config struct {
	Recovery  Recovery  `yaml:"recovery"`
	Resolver  Resolver  `yaml:"resolver"`
	Merge     Merge     `yaml:"merge"`
	Normalize Normalize `yaml:"normalize"`
	Repair    Repair    `yaml:"repair"`
	Audit     Audit     `yaml:"audit"`
	Store     Store     `yaml:"store"`
}

// Load reads path on top of Default, so a config file only needs the keys it
// changes.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
