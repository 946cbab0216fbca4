package metadata

import "strings"

// MaxPromptRunes is how much of the paper text is shown to the model.
const MaxPromptRunes = 2000

const extractionPromptTemplate = `Extract metadata information from the following paper text and return it in JSON format.

Paper text (first 2000 characters):
{{TEXT}}

Please extract the following information:
1. Paper title (title)
2. Author list (authors), as an array
3. Keyword list (keywords), as an array
4. Abstract (abstract)
5. Publication year (year)

Return only JSON format, no other explanatory text. Format as follows:
{
    "title": "Paper Title",
    "authors": ["Author 1", "Author 2"],
    "keywords": ["Keyword 1", "Keyword 2"],
    "abstract": "Abstract content",
    "year": "2024"
}`

func BuildExtractionPrompt(text string) string {
	return strings.Replace(extractionPromptTemplate, "{{TEXT}}", truncateRunes(text, MaxPromptRunes), 1)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
