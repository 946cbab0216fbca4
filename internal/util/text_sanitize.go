package util

import (
	"regexp"
	"strings"
)

// SanitizeText removes NUL bytes and non-printing controls that some PDF
// extractors emit, keeping common whitespace. Vertical tabs, form feeds and the
// file/group/record/unit separators become spaces so adjacent words stay apart.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x00", "")

	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if isSeparatorControl(ch) {
			r = append(r, ' ')
			continue
		}
		if ch < 0x20 {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}

func isSeparatorControl(ch rune) bool {
	return ch == '\v' || ch == '\f' || ch == 0x85 || (ch >= 0x1c && ch <= 0x1f)
}

var (
	disallowedRunes = regexp.MustCompile(`[^\p{L}\p{N}_\s\v\x{1c}-\x{1f}\x{85}\p{Z}\x{4e00}-\x{9fff}.,;:!?()，。；：！？（）、]`)
	whitespaceRuns  = regexp.MustCompile(`[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]+`)
)

// CleanText keeps word characters, CJK ideographs and a fixed set of Latin and
// CJK punctuation, collapses whitespace to single spaces and trims the result.
// Removal runs before collapsing so that CleanText(CleanText(x)) == CleanText(x).
func CleanText(text string) string {
	text = disallowedRunes.ReplaceAllString(text, "")
	text = whitespaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
