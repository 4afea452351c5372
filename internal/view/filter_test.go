package view

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrefixes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"single", "book_004", []string{"book_004"}},
		{"several", "book_004,art_9", []string{"book_004", "art_9"}},
		{"whitespace trimmed", "  book_004 ,  art_9  ", []string{"book_004", "art_9"}},
		{"empty entries dropped", "book_004,,  ,art_9,", []string{"book_004", "art_9"}},
		{"only separators", " , ,, ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrefixes(tt.text)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildRequestWireBody(t *testing.T) {
	criteria := Criteria{
		Types:            []string{"book"},
		Tiers:            []int{1, 2},
		SourceIDPrefixes: []string{"book_004"},
	}

	body, err := json.Marshal(BuildRequest(criteria, 1, 20))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"types":["book"],"tiers":[1,2],"sourceIdPrefixes":["book_004"],"page":1,"limit":20}`,
		string(body))
}

func TestBuildRequestEmptyCriteriaEncodesArrays(t *testing.T) {
	// An empty selection is valid and must reach the wire as [], never null.
	body, err := json.Marshal(BuildRequest(Criteria{}, 3, 50))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"types":[],"tiers":[],"sourceIdPrefixes":[],"page":3,"limit":50}`,
		string(body))
}

func TestBuildRequestIsPure(t *testing.T) {
	criteria := Criteria{Types: []string{"book", "article"}, Tiers: []int{1}}

	first := BuildRequest(criteria, 2, 20)
	first.Types[0] = "mutated"
	first.Tiers[0] = 99

	second := BuildRequest(criteria, 2, 20)
	assert.Equal(t, []string{"book", "article"}, second.Types, "criteria must not alias request slices")
	assert.Equal(t, []int{1}, second.Tiers)
	assert.Equal(t, BuildRequest(criteria, 2, 20), second, "identical inputs produce identical bodies")
}
