package util

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitIntoChunks(t *testing.T) {
	text := "w0 w1 w2 w3 w4 w5 w6 w7 w8 w9"
	chunks, err := SplitIntoChunks(text, 5, 2)
	require.NoError(t, err)
	require.Equal(t, []string{
		"w0 w1 w2 w3 w4",
		"w3 w4 w5 w6 w7",
		"w6 w7 w8 w9",
		"w9",
	}, chunks)
}

func TestSplitIntoChunksNoOverlap(t *testing.T) {
	chunks, err := SplitIntoChunks("a b c d e", 2, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"a b", "c d", "e"}, chunks)
}

func TestSplitIntoChunksEmpty(t *testing.T) {
	chunks, err := SplitIntoChunks("   \n\t ", 500, 50)
	require.NoError(t, err)
	require.Empty(t, chunks)
}

func TestSplitIntoChunksRejectsBadConfig(t *testing.T) {
	for _, tc := range []struct{ size, overlap int }{{10, 10}, {10, 11}, {0, 0}, {-1, 0}, {10, -1}} {
		_, err := SplitIntoChunks("a b c", tc.size, tc.overlap)
		if !errors.Is(err, ErrInvalidChunking) {
			t.Fatalf("size=%d overlap=%d: expected ErrInvalidChunking, got %v", tc.size, tc.overlap, err)
		}
	}
}

func TestValidateChunking(t *testing.T) {
	require.NoError(t, ValidateChunking(500, 50))
	require.NoError(t, ValidateChunking(1, 0))
	require.ErrorIs(t, ValidateChunking(100, 200), ErrInvalidChunking)
	require.ErrorIs(t, ValidateChunking(0, 0), ErrInvalidChunking)
}

func TestSplitIntoChunksKeepsEveryWord(t *testing.T) {
	for _, n := range []int{1, 7, 49, 50, 51, 500, 1234} {
		for _, cfg := range []struct{ size, overlap int }{{500, 50}, {10, 3}, {5, 4}, {3, 0}} {
			words := make([]string, n)
			for i := range words {
				words[i] = "t" + strconv.Itoa(i)
			}
			chunks, err := SplitIntoChunks(strings.Join(words, " "), cfg.size, cfg.overlap)
			require.NoError(t, err)

			step := cfg.size - cfg.overlap
			var rebuilt []string
			for i, c := range chunks {
				f := strings.Fields(c)
				if i < len(chunks)-1 && len(f) > step {
					f = f[:step]
				}
				rebuilt = append(rebuilt, f...)
			}
			require.Equal(t, words, rebuilt[:len(words)], "n=%d cfg=%+v", n, cfg)
		}
	}
}
