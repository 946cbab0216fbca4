package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"paperqa/internal/util"

	"github.com/stretchr/testify/require"
)

func TestExtractTextMissingFile(t *testing.T) {
	_, err := ExtractText(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "open pdf")
}

func TestExtractTextInvalidPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is plain text, not a pdf"), 0o644))
	_, err := ExtractText(path)
	require.Error(t, err)
}

func TestProcessTextCleansAndChunks(t *testing.T) {
	raw := "Attention   is\tall you need!  @#$ Transformers (2017)\n\nrevisited."
	doc, err := ProcessText(raw, 4, 1)
	require.NoError(t, err)
	require.Equal(t, raw, doc.RawText)
	require.Equal(t, "Attention is all you need! Transformers (2017) revisited.", doc.CleanedText)
	require.Equal(t, []string{
		"Attention is all you",
		"you need! Transformers (2017)",
		"(2017) revisited.",
	}, doc.Chunks)
	require.Equal(t, 3, doc.ChunkCount)
}

func TestProcessTextRejectsBadChunking(t *testing.T) {
	_, err := ProcessText("a b c", 5, 5)
	require.True(t, errors.Is(err, util.ErrInvalidChunking))
}

func TestProcessUsesExtractor(t *testing.T) {
	p := &Processor{extract: func(string) (string, error) {
		return strings.Repeat("word ", 12), nil
	}}
	doc, err := p.Process("paper.pdf", DefaultChunkSize, DefaultChunkOverlap)
	require.NoError(t, err)
	require.Equal(t, 1, doc.ChunkCount)

	p = &Processor{extract: func(string) (string, error) { return "", util.ErrNoExtractableText }}
	_, err = p.Process("paper.pdf", DefaultChunkSize, DefaultChunkOverlap)
	require.True(t, errors.Is(err, util.ErrNoExtractableText))
}
