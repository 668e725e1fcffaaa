package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankNames(t *testing.T) {
	known := []string{"Vital Status", "Gender", "HTAN Participant ID", "Ethnicity"}

	ranked := RankNames("HTAN Participant Id", known)
	require.Len(t, ranked, 4)
	assert.Equal(t, "HTAN Participant ID", ranked[0].Name)
	assert.InDelta(t, 1.0, ranked[0].Score, 1e-9)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestRankNamesTieBreak(t *testing.T) {
	ranked := RankNames("ab", []string{"ay", "ax"})
	require.Len(t, ranked, 2)
	assert.Equal(t, "ax", ranked[0].Name)
	assert.Equal(t, "ay", ranked[1].Name)
}

func TestSuggest(t *testing.T) {
	known := []string{"Vital Status", "Gender", "Genders", "Ethnicity"}

	assert.Equal(t, []string{"Gender", "Genders"}, Suggest("gendr", known, DefaultSuggestionThreshold, 3))
	assert.Equal(t, []string{"Gender"}, Suggest("gendr", known, DefaultSuggestionThreshold, 1))
	assert.Empty(t, Suggest("zzzz", known, DefaultSuggestionThreshold, 3))
}
