package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, src string) (Company, []FieldProblem) {
	t.Helper()
	var raw RawRecord
	require.NoError(t, json.Unmarshal([]byte(src), &raw))
	return DecodeCompany(raw)
}

func TestDecodeSalaryRejectsHugeNumbers(t *testing.T) {
	tests := []string{
		`[9223372036854774000, 1]`,
		`[1e30, 1e30]`,
		`[-1e30, 5]`,
		`["$2000000000000", 90000]`,
		`[50000, "999999999999k"]`,
	}
	for _, in := range tests {
		c, probs := decode(t, `{"company_name":"Acme","roles":[{"title":"Engineer","salary_range":`+in+`}]}`)
		require.Len(t, c.Roles, 1, in)
		assert.Nil(t, c.Roles[0].SalaryRange, in)
		require.Len(t, probs, 1, in)
		assert.Equal(t, "salary_range", probs[0].Field, in)
	}
}

func TestDecodeSalaryCoercesText(t *testing.T) {
	c, probs := decode(t, `{"company_name":"Acme","roles":[{"salary_range":["$90,000", "120k"],"min_experience_years":"3"}]}`)
	assert.Empty(t, probs)
	require.Len(t, c.Roles, 1)
	assert.Equal(t, &SalaryRange{Min: 90000, Max: 120000}, c.Roles[0].SalaryRange)
	assert.Equal(t, 3, c.Roles[0].MinExperienceYears)
}

func TestDecodeExperienceRejectsHugeNumbers(t *testing.T) {
	c, probs := decode(t, `{"company_name":"Acme","roles":[{"title":"Engineer","min_experience_years":1e300}]}`)
	require.Len(t, c.Roles, 1)
	assert.Zero(t, c.Roles[0].MinExperienceYears)
	require.Len(t, probs, 1)
	assert.Equal(t, "min_experience_years", probs[0].Field)
}

func TestDecodeKeepsUnknownKeys(t *testing.T) {
	c, _ := decode(t, `{"company_name":"Acme","parent_company":{"company_name":"Holdco"},"roles":[{"title":"x","team":"core"}]}`)
	assert.JSONEq(t, `{"company_name":"Holdco"}`, string(c.Extra["parent_company"]))
	require.Len(t, c.Roles, 1)
	assert.JSONEq(t, `"core"`, string(c.Roles[0].Extra["team"]))
}
