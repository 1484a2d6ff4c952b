package transliteration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOverrides(t *testing.T) {
	table := DefaultOverrides()
	require.Equal(t, 2, table.Len())

	assert.Equal(t, []string{"Khud", "khud"}, table.Lookup("\u0916\u093C\u0941\u0926"))
	assert.Equal(t, []string{"Khud", "khud"}, table.Lookup("\u0959\u0941\u0926"), "pre-composed nukta")
	assert.Equal(t, []string{"Zindagi", "zindagi", "zindagee"}, table.Lookup("\u091C\u093C\u093F\u0928\u094D\u0926\u0917\u0940"))
	assert.Equal(t, []string{"Zindagi", "zindagi", "zindagee"}, table.Lookup("\u095B\u093F\u0928\u094D\u0926\u0917\u0940"), "pre-composed nukta")
}

func TestLookupSubstringAndOrder(t *testing.T) {
	table := DefaultOverrides()

	// both triggers inside a phrase, reported in table order
	phrase := "\u091C\u093C\u093F\u0928\u094D\u0926\u0917\u0940 \u0916\u093C\u0941\u0926 \u0915\u0940"
	assert.Equal(t, []string{"Khud", "khud", "Zindagi", "zindagi", "zindagee"}, table.Lookup(phrase))

	assert.Empty(t, table.Lookup("नमस्ते"))
	assert.Empty(t, table.Lookup(""))
}

func TestLookupNilTable(t *testing.T) {
	var table *OverrideTable
	assert.Nil(t, table.Lookup("\u0916\u093C\u0941\u0926"))
	assert.Zero(t, table.Len())
}

func TestLoadOverrides(t *testing.T) {
	doc := `
overrides:
  - trigger: "दिल"
    spellings: [dil, Dil]
`
	table, err := LoadOverrides(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"dil", "Dil"}, table.Lookup("मेरा दिल"))
}

func TestLoadOverridesEmptyDocument(t *testing.T) {
	table, err := LoadOverrides(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}

func TestLoadOverridesRejectsUnknownFields(t *testing.T) {
	doc := `
overrides:
  - trigger: "दिल"
    spelling: [dil]
`
	_, err := LoadOverrides(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestLoadOverridesReportsEveryProblem(t *testing.T) {
	doc := `
overrides:
  - trigger: ""
    spellings: [x]
  - trigger: "दिल"
    spellings: []
  - trigger: "घर"
    spellings: [ghar, "  "]
`
	_, err := LoadOverrides(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overrides[0]: trigger is required")
	assert.Contains(t, err.Error(), "overrides[1]")
	assert.Contains(t, err.Error(), "spellings[1] is blank")
}

func TestLoadOverridesFileMissing(t *testing.T) {
	_, err := LoadOverridesFile("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}
