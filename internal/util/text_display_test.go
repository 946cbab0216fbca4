package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplaySnippet(t *testing.T) {
	out := DisplaySnippet("Hello\x00   world \n\t again", 100)
	require.Equal(t, "Hello world again", out)

	long := DisplaySnippet(strings.Repeat("ab ", 100), 10)
	require.Equal(t, "ab ab ab a...", long)
}

func TestDisplayEvidenceSnippet(t *testing.T) {
	chunk := "This paper studies edge computing in cloud schedulers. It evaluates latency reduction for edge workloads. Unrelated appendix text."
	q := "What are edge workload latency results?"
	out := DisplayEvidenceSnippet(chunk, q, 200)
	if !strings.Contains(strings.ToLower(out), "latency") {
		t.Fatalf("expected relevance to latency in snippet, got: %q", out)
	}
	require.NotContains(t, out, "appendix")
}

func TestDisplayEvidenceSnippetNoTerms(t *testing.T) {
	require.Equal(t, "Short chunk.", DisplayEvidenceSnippet("Short   chunk.", "is it?", 50))
}
