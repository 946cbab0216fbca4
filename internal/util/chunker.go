package util

import (
	"fmt"
	"strings"
)

// SplitIntoChunks groups the whitespace-delimited words of text into windows of
// chunkSize words. Consecutive windows share overlap words, so the window start
// advances by chunkSize-overlap. Trailing windows may be shorter.
func SplitIntoChunks(text string, chunkSize, overlap int) ([]string, error) {
	if err := ValidateChunking(chunkSize, overlap); err != nil {
		return nil, err
	}
	words := strings.Fields(text)
	step := chunkSize - overlap
	out := make([]string, 0, len(words)/step+1)
	for i := 0; i < len(words); i += step {
		end := i + chunkSize
		if end > len(words) {
			end = len(words)
		}
		part := strings.Join(words[i:end], " ")
		if part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}

// ValidateChunking reports ErrInvalidChunking unless chunkSize > 0 and
// 0 <= overlap < chunkSize.
func ValidateChunking(chunkSize, overlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidChunking, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidChunking, overlap, chunkSize)
	}
	return nil
}
