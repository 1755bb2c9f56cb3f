package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderedDoc = `{
  "Technology": [
    {"name": "Microsoft", "ticker": "MSFT", "market_cap": 3100000000000, "revenue": 245000000000},
    {"name": "Alphabet", "ticker": "GOOG", "market_cap": null}
  ],
  "Financials": [
    {"name": "JPMorgan Chase", "ticker": "JPM", "market_cap": 570000000000, "revenue": 158000000000}
  ],
  "Alpha": []
}`

func TestCorporateStructurePreservesOrder(t *testing.T) {
	var cs CorporateStructure
	require.NoError(t, json.Unmarshal([]byte(orderedDoc), &cs))

	require.Len(t, cs.Sectors, 3)
	assert.Equal(t, "Technology", cs.Sectors[0].Name)
	assert.Equal(t, "Financials", cs.Sectors[1].Name)
	assert.Equal(t, "Alpha", cs.Sectors[2].Name)

	out, err := json.Marshal(cs)
	require.NoError(t, err)
	assert.Regexp(t, `^\{"Technology":.*"Financials":.*"Alpha":\[\]\}$`, string(out))
}

func TestCorporateStructureNullMetrics(t *testing.T) {
	var cs CorporateStructure
	require.NoError(t, json.Unmarshal([]byte(orderedDoc), &cs))

	tech, ok := cs.Sector("Technology")
	require.True(t, ok)
	assert.Nil(t, tech[1].MarketCap)
	assert.Nil(t, tech[1].Revenue, "an absent field decodes like null")

	out, err := json.Marshal(tech[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Alphabet","ticker":"GOOG","market_cap":null,"revenue":null}`, string(out))
}

func TestCorporateStructureSectorIsCaseSensitive(t *testing.T) {
	var cs CorporateStructure
	require.NoError(t, json.Unmarshal([]byte(orderedDoc), &cs))

	_, ok := cs.Sector("technology")
	assert.False(t, ok)
	_, ok = cs.Sector("")
	assert.False(t, ok)
}

func TestCorporateStructureRejectsInvalidDocuments(t *testing.T) {
	tests := map[string]string{
		"not an object":      `[1,2]`,
		"sector not array":   `{"Tech": {"name": "x"}}`,
		"sector null":        `{"Tech": null}`,
		"missing ticker":     `{"Tech": [{"name": "Microsoft"}]}`,
		"empty name":         `{"Tech": [{"name": "", "ticker": "MSFT"}]}`,
		"string market cap":  `{"Tech": [{"name": "Microsoft", "ticker": "MSFT", "market_cap": "big"}]}`,
		"duplicate sector":   `{"Tech": [], "Tech": []}`,
		"company not object": `{"Tech": [42]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			var cs CorporateStructure
			assert.Error(t, json.Unmarshal([]byte(doc), &cs))
		})
	}
}

func TestNewCorporateStructure(t *testing.T) {
	cs, err := NewCorporateStructure(
		Sector{Name: "Energy", Companies: []Company{{Name: "Exxon", Ticker: "XOM"}}},
		Sector{Name: "Utilities"},
	)
	require.NoError(t, err)

	utilities, ok := cs.Sector("Utilities")
	require.True(t, ok)
	assert.NotNil(t, utilities)
	assert.Empty(t, utilities)

	_, err = NewCorporateStructure(Sector{Name: "Energy"}, Sector{Name: "Energy"})
	assert.Error(t, err)
}

func TestCompanyMatchFlattensCompany(t *testing.T) {
	marketCap := 1.5
	out, err := json.Marshal(CompanyMatch{Company: Company{Name: "Microsoft", Ticker: "MSFT", MarketCap: &marketCap}, Sector: "Technology"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Microsoft","ticker":"MSFT","market_cap":1.5,"revenue":null,"sector":"Technology"}`, string(out))
}
