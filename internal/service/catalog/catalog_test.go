package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedCatalog(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 50)

	got := c.Search("reliance", 0)
	require.Len(t, got, 1)
	assert.Equal(t, "RELIANCE.NS", got[0].Symbol)
	assert.Equal(t, "NSE", got[0].Exchange)
}

func TestSearch(t *testing.T) {
	c, err := FromJSON([]byte(`[
		{"symbol":"AAPL","name":"Apple Inc.","exchange":"NASDAQ"},
		{"symbol":"MSFT","name":"Microsoft Corporation","exchange":"NASDAQ"},
		{"symbol":"APD","name":"Air Products","exchange":"NYSE"},
		{"symbol":"TCS.NS","name":"Tata Consultancy Services","exchange":"NSE"}
	]`))
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{"symbol prefix", "ap", 10, []string{"AAPL", "APD"}},
		{"case insensitive name", "MICRO", 10, []string{"MSFT"}},
		{"suffix", ".ns", 10, []string{"TCS.NS"}},
		{"limit keeps order", "a", 2, []string{"AAPL", "MSFT"}},
		{"empty query", "", 10, []string{"AAPL", "MSFT", "APD", "TCS.NS"}},
		{"no match", "zzz", 10, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Search(tt.query, tt.limit)
			syms := make([]string, 0, len(got))
			for _, s := range got {
				syms = append(syms, s.Symbol)
			}
			assert.Equal(t, tt.want, syms)
		})
	}
}

func TestSearchLimitBounds(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	assert.Len(t, c.Search("", 0), DefaultLimit)
	assert.Len(t, c.Search("", 500), MaxLimit)
}

func TestFromJSONInvalid(t *testing.T) {
	_, err := FromJSON([]byte(`{`))
	assert.Error(t, err)
}
