package workflows

import "paperqa/internal/models"

type PaperIngestInput struct {
	PaperPath    string `json:"paper_path"`
	ChunkSize    int    `json:"chunk_size"`
	ChunkOverlap int    `json:"chunk_overlap"`
}

type PaperStatus struct {
	PaperID     string            `json:"paper_id"`
	PaperPath   string            `json:"paper_path"`
	CurrentStep string            `json:"current_step"`
	Status      string            `json:"status"`
	FailReason  string            `json:"fail_reason,omitempty"`
	Title       string            `json:"title,omitempty"`
	ChunkCount  int               `json:"chunk_count"`
	Stats       models.StoreStats `json:"stats"`
	Steps       map[string]string `json:"steps"`
}
