package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))

	_, v := NormalizeAndValidate(Default())
	assert.True(t, v.OK())
	assert.Empty(t, v.Warnings)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
resolver:
  name_threshold: 0.9
normalize:
  country_aliases:
    deutschland: Germany
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Resolver.NameThreshold)
	assert.Equal(t, 0.80, cfg.Resolver.CorroboratedThreshold, "untouched keys keep defaults")
	assert.Equal(t, "Germany", cfg.Normalize.CountryAliases["deutschland"])
	assert.Equal(t, "USA", cfg.Normalize.CountryAliases["usa"], "maps merge instead of replacing")
	assert.Equal(t, 50000, cfg.Repair.DefaultMin)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"threshold out of range", func(c *Config) { c.Resolver.NameThreshold = 1.5 }, "resolver.name_threshold"},
		{"corroborated above name", func(c *Config) { c.Resolver.CorroboratedThreshold = 0.99 }, "corroborated_threshold"},
		{"bad defaults", func(c *Config) { c.Repair.DefaultMin = 90000 }, "repair.default_min"},
		{"empty rule tag", func(c *Config) { c.Normalize.StageRules[0].Tag = "" }, "stage_rules[0].tag"},
		{"empty tag rule", func(c *Config) { c.Normalize.CultureRules[0].Tags = nil }, "culture_rules[0].tags"},
		{"bad state code", func(c *Config) { c.Normalize.StateCodes["ontario"] = "ONT" }, "state_codes"},
		{"no skills", func(c *Config) { c.Normalize.DefaultSkills = nil }, "default_skills"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNormalizeAndValidateCleansLists(t *testing.T) {
	cfg := Default()
	cfg.Audit.PlaceholderPhrases = []string{" Lorem Ipsum ", "lorem ipsum", "", "tbd"}
	cfg.Normalize.CountryAliases = map[string]string{" USA ": "USA"}

	out, v := NormalizeAndValidate(cfg)
	assert.True(t, v.OK())
	assert.Equal(t, []string{"Lorem Ipsum", "tbd"}, out.Audit.PlaceholderPhrases)
	assert.Equal(t, map[string]string{"usa": "USA"}, out.Normalize.CountryAliases)
	// input untouched
	assert.Len(t, cfg.Audit.PlaceholderPhrases, 4)
}

func TestSaveAtomicAndEnsureUserConfig(t *testing.T) {
	dir := t.TempDir()

	path, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.FileExists(t, path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg.Audit.PointsPerCompany = 10
	require.NoError(t, SaveAtomic(path, cfg))
	assert.FileExists(t, path+".bak")

	again, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, path, again)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10.0, reloaded.Audit.PointsPerCompany, "existing file is not overwritten")
}

func TestSaveAtomicRefusesInvalid(t *testing.T) {
	cfg := Default()
	cfg.Audit.PointsPerCompany = 0
	path := filepath.Join(t.TempDir(), "config.yml")
	require.Error(t, SaveAtomic(path, cfg))
	assert.NoFileExists(t, path)
}

func TestOverlayVocabulary(t *testing.T) {
	cfg := Default()
	require.NoError(t, OverlayVocabulary(&cfg, filepath.Join(t.TempDir(), "missing.yml")))

	path := filepath.Join(t.TempDir(), "vocab.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
placeholder_phrases: ["coming soon"]
country_aliases:
  Deutschland: Germany
industry_rules:
  - tag: Biotechnology
    any: [biotech]
`), 0o644))
	require.NoError(t, OverlayVocabulary(&cfg, path))

	assert.Contains(t, cfg.Audit.PlaceholderPhrases, "coming soon")
	assert.Contains(t, cfg.Audit.PlaceholderPhrases, "lorem ipsum")
	assert.Equal(t, "Germany", cfg.Normalize.CountryAliases["deutschland"])
	assert.Equal(t, "Biotechnology", cfg.Normalize.IndustryRules[0].Tag)
	require.NoError(t, Validate(cfg))
}
