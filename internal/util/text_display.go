package util

import (
	"sort"
	"strings"
	"unicode"
)

// DisplaySnippet flattens s to a single printable line of at most maxRunes runes.
func DisplaySnippet(s string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = 420
	}
	s = SanitizeText(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > maxRunes {
		return strings.TrimSpace(string(runes[:maxRunes])) + "..."
	}
	return s
}

// DisplayEvidenceSnippet picks the sentence(s) of a retrieved chunk that share
// the most terms with the question.
func DisplayEvidenceSnippet(chunkText, query string, maxRunes int) string {
	chunkText = DisplaySnippet(chunkText, 4000)
	if chunkText == "" {
		return ""
	}
	terms := queryTerms(query)
	sentences := splitSentences(chunkText)
	if len(terms) == 0 || len(sentences) == 0 {
		return DisplaySnippet(chunkText, maxRunes)
	}

	type scored struct {
		idx   int
		score int
	}
	list := make([]scored, len(sentences))
	for i, s := range sentences {
		low := strings.ToLower(s)
		n := 0
		for _, term := range terms {
			if strings.Contains(low, term) {
				n++
			}
		}
		list[i] = scored{idx: i, score: n}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].score > list[j].score })

	best := sentences[list[0].idx]
	if len(list) > 1 && list[1].score > 0 {
		first, second := list[0].idx, list[1].idx
		if second < first {
			first, second = second, first
		}
		best = sentences[first] + " " + sentences[second]
	}
	return DisplaySnippet(best, maxRunes)
}

func splitSentences(s string) []string {
	out := make([]string, 0, 8)
	var b strings.Builder
	flush := func() {
		if x := strings.TrimSpace(b.String()); x != "" {
			out = append(out, x)
		}
		b.Reset()
	}
	for _, r := range s {
		b.WriteRune(r)
		switch r {
		case '.', '!', '?', '。', '！', '？':
			flush()
		}
	}
	flush()
	return out
}

var stopTerms = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "was": {}, "were": {}, "what": {}, "how": {},
	"why": {}, "which": {}, "that": {}, "this": {}, "these": {}, "those": {}, "with": {}, "from": {},
	"does": {}, "paper": {}, "about": {},
}

func queryTerms(q string) []string {
	seen := map[string]struct{}{}
	terms := make([]string, 0, 8)
	for _, f := range strings.Fields(strings.ToLower(CleanText(q))) {
		f = strings.TrimFunc(f, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsNumber(r) })
		if len([]rune(f)) < 3 {
			continue
		}
		if _, ok := stopTerms[f]; ok {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}
