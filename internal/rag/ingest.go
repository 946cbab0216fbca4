package rag

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"paperqa/internal/models"
	"paperqa/internal/util"
)

type DocumentProcessor interface {
	Process(path string, chunkSize, overlap int) (models.ProcessedDocument, error)
}

type MetadataExtractor interface {
	Extract(ctx context.Context, text string) models.Metadata
}

type DocumentEmbedder interface {
	EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error)
}

type DocumentStore interface {
	Add(docs []string, vectors [][]float32, meta models.Metadata) error
	Stats() models.StoreStats
}

type PipelineOptions struct {
	ChunkSize    int
	ChunkOverlap int
	// ArtifactsDir, when set, receives <paper-id>/{metadata.json,chunks.jsonl,cleaned.txt}.
	ArtifactsDir string
}

// Pipeline ingests one PDF at a time: process, extract metadata, embed, store.
type Pipeline struct {
	processor DocumentProcessor
	extractor MetadataExtractor
	embedder  DocumentEmbedder
	store     DocumentStore
	opts      PipelineOptions
}

func NewPipeline(p DocumentProcessor, x MetadataExtractor, e DocumentEmbedder, s DocumentStore, opts PipelineOptions) *Pipeline {
	return &Pipeline{processor: p, extractor: x, embedder: e, store: s, opts: opts}
}

type chunkRow struct {
	PaperID    string `json:"paper_id"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
}

func (p *Pipeline) IngestFile(ctx context.Context, path string) (models.IngestResult, error) {
	return p.IngestFileWith(ctx, path, p.opts.ChunkSize, p.opts.ChunkOverlap)
}

// IngestFileWith is IngestFile with an explicit chunking configuration.
func (p *Pipeline) IngestFileWith(ctx context.Context, path string, chunkSize, overlap int) (models.IngestResult, error) {
	doc, err := p.processor.Process(path, chunkSize, overlap)
	if err != nil {
		return models.IngestResult{}, fmt.Errorf("process %s: %w", filepath.Base(path), err)
	}
	if doc.ChunkCount == 0 {
		return models.IngestResult{}, fmt.Errorf("process %s: %w", filepath.Base(path), util.ErrNoExtractableText)
	}
	md := p.extractor.Extract(ctx, doc.CleanedText)

	vectors, err := p.embedder.EmbedDocuments(ctx, doc.Chunks)
	if err != nil {
		return models.IngestResult{}, fmt.Errorf("embed %s: %w", filepath.Base(path), err)
	}
	if err := p.store.Add(doc.Chunks, vectors, md); err != nil {
		return models.IngestResult{}, fmt.Errorf("store %s: %w", filepath.Base(path), err)
	}

	res := models.IngestResult{
		Path:       path,
		Title:      md.Title,
		ChunkCount: doc.ChunkCount,
		Metadata:   md,
		Stats:      p.store.Stats(),
	}
	if p.opts.ArtifactsDir != "" {
		paperID, err := util.SHA256File(path)
		if err != nil {
			log.Printf("ingest %s: artifacts skipped: %v", path, err)
			return res, nil
		}
		res.PaperID = paperID
		if err := WriteArtifacts(filepath.Join(p.opts.ArtifactsDir, paperID), paperID, doc, md); err != nil {
			log.Printf("ingest %s: %v", path, err)
		}
	}
	log.Printf("ingested path=%s title=%q chunks=%d total=%d", path, md.Title, doc.ChunkCount, res.Stats.TotalDocuments)
	return res, nil
}

// WriteArtifacts writes the per-paper debug outputs into dir.
func WriteArtifacts(dir, paperID string, doc models.ProcessedDocument, md models.Metadata) error {
	if err := util.WriteJSONAtomic(filepath.Join(dir, "metadata.json"), md); err != nil {
		return fmt.Errorf("write metadata artifact: %w", err)
	}
	rows := make([]chunkRow, 0, len(doc.Chunks))
	for i, c := range doc.Chunks {
		rows = append(rows, chunkRow{PaperID: paperID, ChunkIndex: i, Text: c})
	}
	if err := util.WriteJSONLinesAtomic(filepath.Join(dir, "chunks.jsonl"), rows); err != nil {
		return fmt.Errorf("write chunks artifact: %w", err)
	}
	if err := util.WriteTextAtomic(filepath.Join(dir, "cleaned.txt"), doc.CleanedText); err != nil {
		return fmt.Errorf("write cleaned text artifact: %w", err)
	}
	return nil
}
