// config/overlay.go
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// VocabularyFile extends the built-in vocabulary without restating the rest
// of the config.
type VocabularyFile struct {
	PlaceholderPhrases []string          `yaml:"placeholder_phrases"`
	CountryAliases     map[string]string `yaml:"country_aliases"`
	StateCodes         map[string]string `yaml:"state_codes"`
	LocationSentinels  map[string]string `yaml:"location_sentinels"`
	IndustryRules      []Rule            `yaml:"industry_rules"`
	CultureRules       []TagRule         `yaml:"culture_rules"`
	LegalSuffixes      []string          `yaml:"legal_suffixes"`
}

// OverlayVocabulary appends list entries and merges map entries from path.
// Rules from the file are placed ahead of the built-in ones so they win.
func OverlayVocabulary(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		// Missing vocabulary file should not kill startup
		return nil
	}

	var vf VocabularyFile
	if err := yaml.Unmarshal(b, &vf); err != nil {
		return err
	}

	cfg.Audit.PlaceholderPhrases = append(cfg.Audit.PlaceholderPhrases, vf.PlaceholderPhrases...)
	cfg.Resolver.LegalSuffixes = append(cfg.Resolver.LegalSuffixes, vf.LegalSuffixes...)

	mergeInto := func(dst *map[string]string, src map[string]string) {
		if len(src) == 0 {
			return
		}
		if *dst == nil {
			*dst = map[string]string{}
		}
		for k, v := range src {
			(*dst)[strings.ToLower(strings.TrimSpace(k))] = v
		}
	}
	mergeInto(&cfg.Normalize.CountryAliases, vf.CountryAliases)
	mergeInto(&cfg.Normalize.StateCodes, vf.StateCodes)
	mergeInto(&cfg.Normalize.LocationSentinels, vf.LocationSentinels)

	if len(vf.IndustryRules) > 0 {
		cfg.Normalize.IndustryRules = append(append([]Rule(nil), vf.IndustryRules...), cfg.Normalize.IndustryRules...)
	}
	if len(vf.CultureRules) > 0 {
		cfg.Normalize.CultureRules = append(append([]TagRule(nil), vf.CultureRules...), cfg.Normalize.CultureRules...)
	}
	return nil
}
