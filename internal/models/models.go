package models

// Metadata is the bibliographic record attached to stored chunks.
type Metadata struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Keywords []string `json:"keywords"`
	Abstract string   `json:"abstract"`
	Year     string   `json:"year"`
}

// DefaultMetadata is returned whenever metadata extraction fails.
func DefaultMetadata() Metadata {
	return Metadata{
		Title:    "Unknown Title",
		Authors:  []string{},
		Keywords: []string{},
		Abstract: "",
		Year:     "",
	}
}

type Record struct {
	Document string    `json:"document"`
	Vector   []float32 `json:"vector"`
	Metadata Metadata  `json:"metadata"`
}

type SearchResult struct {
	Document string   `json:"document"`
	Metadata Metadata `json:"metadata"`
	Score    float64  `json:"score"`
}

type StoreStats struct {
	TotalDocuments int `json:"total_documents"`
	TotalVectors   int `json:"total_vectors"`
}

type Answer struct {
	Answer   string         `json:"answer"`
	Sources  []SearchResult `json:"sources"`
	Question string         `json:"question"`
}

type ProcessedDocument struct {
	RawText     string   `json:"raw_text"`
	CleanedText string   `json:"cleaned_text"`
	Chunks      []string `json:"chunks"`
	ChunkCount  int      `json:"chunk_count"`
}

type IngestResult struct {
	PaperID    string     `json:"paper_id,omitempty"`
	Path       string     `json:"path"`
	Title      string     `json:"title"`
	ChunkCount int        `json:"chunk_count"`
	Metadata   Metadata   `json:"metadata"`
	Stats      StoreStats `json:"stats"`
}
