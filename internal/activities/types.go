package activities

import "paperqa/internal/models"

type ComputePaperIDInput struct {
	PaperPath string `json:"paper_path"`
}

type ComputePaperIDOutput struct {
	PaperID string `json:"paper_id"`
}

type ProcessDocumentInput struct {
	PaperPath    string `json:"paper_path"`
	ChunkSize    int    `json:"chunk_size"`
	ChunkOverlap int    `json:"chunk_overlap"`
}

type ProcessDocumentOutput struct {
	CleanedText string   `json:"cleaned_text"`
	Chunks      []string `json:"chunks"`
}

type ExtractMetadataInput struct {
	Text string `json:"text"`
}

type ExtractMetadataOutput struct {
	Metadata models.Metadata `json:"metadata"`
}

type EmbedChunksInput struct {
	Chunks []string `json:"chunks"`
}

type EmbedChunksOutput struct {
	Vectors [][]float32 `json:"vectors"`
}

type AddDocumentsInput struct {
	Chunks   []string        `json:"chunks"`
	Vectors  [][]float32     `json:"vectors"`
	Metadata models.Metadata `json:"metadata"`
}

type AddDocumentsOutput struct {
	Stats models.StoreStats `json:"stats"`
}

type WritePaperArtifactsInput struct {
	PaperID     string          `json:"paper_id"`
	CleanedText string          `json:"cleaned_text"`
	Chunks      []string        `json:"chunks"`
	Metadata    models.Metadata `json:"metadata"`
}
