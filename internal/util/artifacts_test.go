package util

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteJSONAtomicCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "meta.json")
	require.NoError(t, WriteJSONAtomic(path, map[string]any{"title": "x"}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	require.Equal(t, "x", got["title"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteJSONLinesAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.jsonl")
	require.NoError(t, WriteJSONLinesAtomic(path, []string{"one", "two"}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var lines []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	require.Equal(t, []string{`"one"`, `"two"`}, lines)
}

func TestWriteTextAtomicOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.txt")
	require.NoError(t, WriteTextAtomic(path, "first version"))
	require.NoError(t, WriteTextAtomic(path, "second"))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(b))
}

func TestSHA256File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.pdf")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))
	sum, err := SHA256File(path)
	require.NoError(t, err)
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)

	want, err := SHA256HexFromReader(strings.NewReader("abc"))
	require.NoError(t, err)
	require.Equal(t, want, sum)
}
