package document

import (
	"fmt"
	"strings"

	"paperqa/internal/models"
	"paperqa/internal/util"

	"github.com/ledongthuc/pdf"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// Processor turns a PDF on disk into cleaned text and overlapping word chunks.
type Processor struct {
	extract func(path string) (string, error)
}

func NewProcessor() *Processor {
	return &Processor{extract: ExtractText}
}

func (p *Processor) Process(path string, chunkSize, overlap int) (models.ProcessedDocument, error) {
	raw, err := p.extract(path)
	if err != nil {
		return models.ProcessedDocument{}, err
	}
	return ProcessText(raw, chunkSize, overlap)
}

// ProcessText runs the cleaning and chunking steps on already extracted text.
func ProcessText(raw string, chunkSize, overlap int) (models.ProcessedDocument, error) {
	cleaned := util.CleanText(raw)
	chunks, err := util.SplitIntoChunks(cleaned, chunkSize, overlap)
	if err != nil {
		return models.ProcessedDocument{}, err
	}
	return models.ProcessedDocument{
		RawText:     raw,
		CleanedText: cleaned,
		Chunks:      chunks,
		ChunkCount:  len(chunks),
	}, nil
}

// ExtractText concatenates the plain text of every page in order.
func ExtractText(path string) (text string, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	// the pdf reader panics on some malformed streams
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("extract pdf text: %v", rec)
		}
	}()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract pdf text page %d: %w", i, err)
		}
		b.WriteString(content)
	}
	text = util.SanitizeText(b.String())
	if strings.TrimSpace(text) == "" {
		return "", util.ErrNoExtractableText
	}
	return text, nil
}
