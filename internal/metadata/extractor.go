package metadata

import (
	"context"
	"log"

	"paperqa/internal/models"
	"paperqa/internal/providers"
)

const OperationExtract = "extract_metadata"

// Extractor asks a chat model for a paper's bibliographic record.
type Extractor struct {
	llm providers.LLMProvider
}

func NewExtractor(llm providers.LLMProvider) *Extractor {
	return &Extractor{llm: llm}
}

// Extract never fails: any error is logged and the default record returned.
func (e *Extractor) Extract(ctx context.Context, text string) models.Metadata {
	if e == nil || e.llm == nil {
		log.Printf("metadata extraction failed: no provider configured")
		return models.DefaultMetadata()
	}
	resp, info, err := e.llm.Generate(ctx, providers.GenerateRequest{
		Operation:   OperationExtract,
		Prompt:      BuildExtractionPrompt(text),
		Temperature: 0.3,
	})
	if err != nil {
		log.Printf("metadata extraction failed provider=%s model=%s: %v", info.Name, info.Model, err)
		return models.DefaultMetadata()
	}
	md, err := ParseMetadataJSON(resp.Text)
	if err != nil {
		log.Printf("metadata extraction failed provider=%s model=%s: %v", info.Name, info.Model, err)
		return models.DefaultMetadata()
	}
	return md
}
