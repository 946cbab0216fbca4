package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMetadataJSONFenced(t *testing.T) {
	raw := "```json\n{\"title\":\"Attention Is All You Need\",\"authors\":[\"A. Vaswani\",\"N. Shazeer\"],\"keywords\":[\"transformer\"],\"abstract\":\"We propose...\",\"year\":\"2017\"}\n```"
	md, err := ParseMetadataJSON(raw)
	require.NoError(t, err)
	require.Equal(t, "Attention Is All You Need", md.Title)
	require.Equal(t, []string{"A. Vaswani", "N. Shazeer"}, md.Authors)
	require.Equal(t, []string{"transformer"}, md.Keywords)
	require.Equal(t, "2017", md.Year)
}

func TestParseMetadataJSONLenientShapes(t *testing.T) {
	md, err := ParseMetadataJSON(`{"title":"T","authors":"Alice, Bob","year":2024}`)
	require.NoError(t, err)
	require.Equal(t, []string{"Alice", "Bob"}, md.Authors)
	require.Equal(t, []string{}, md.Keywords)
	require.Equal(t, "2024", md.Year)
	require.Equal(t, "", md.Abstract)
}

func TestParseMetadataJSONBlankTitleStaysBlank(t *testing.T) {
	md, err := ParseMetadataJSON("```\n{\"authors\":[]}\n```")
	require.NoError(t, err)
	require.Equal(t, "", md.Title)
	require.Equal(t, []string{}, md.Authors)
}

func TestParseMetadataJSONRejectsProse(t *testing.T) {
	_, err := ParseMetadataJSON("Sure! The title is X.")
	require.Error(t, err)
	_, err = ParseMetadataJSON("   ")
	require.Error(t, err)
}

func TestBuildExtractionPromptTruncates(t *testing.T) {
	long := make([]rune, 2500)
	for i := range long {
		long[i] = '文'
	}
	p := BuildExtractionPrompt(string(long))
	require.Contains(t, p, string(long[:2000]))
	require.NotContains(t, p, string(long[:2001]))
	require.Contains(t, p, `"title": "Paper Title"`)
}
