package activities

import (
	"context"
	"path/filepath"

	"paperqa/internal/config"
	"paperqa/internal/models"
	"paperqa/internal/rag"
	"paperqa/internal/util"
)

// Activities exposes the ingestion steps to a Temporal worker. The store is a
// single file, so the worker must run these one at a time.
type Activities struct {
	cfg       config.Config
	processor rag.DocumentProcessor
	extractor rag.MetadataExtractor
	embedder  rag.DocumentEmbedder
	store     rag.DocumentStore
}

func New(cfg config.Config, p rag.DocumentProcessor, x rag.MetadataExtractor, e rag.DocumentEmbedder, s rag.DocumentStore) *Activities {
	return &Activities{cfg: cfg, processor: p, extractor: x, embedder: e, store: s}
}

func (a *Activities) ComputePaperIDActivity(ctx context.Context, in ComputePaperIDInput) (ComputePaperIDOutput, error) {
	_ = ctx
	id, err := util.SHA256File(in.PaperPath)
	if err != nil {
		return ComputePaperIDOutput{}, err
	}
	return ComputePaperIDOutput{PaperID: id}, nil
}

func (a *Activities) ProcessDocumentActivity(ctx context.Context, in ProcessDocumentInput) (ProcessDocumentOutput, error) {
	_ = ctx
	// a zero chunk size means the caller left chunking unset
	if in.ChunkSize == 0 {
		in.ChunkSize = a.cfg.ChunkSize
		if in.ChunkOverlap == 0 {
			in.ChunkOverlap = a.cfg.ChunkOverlap
		}
	}
	doc, err := a.processor.Process(in.PaperPath, in.ChunkSize, in.ChunkOverlap)
	if err != nil {
		return ProcessDocumentOutput{}, err
	}
	if doc.ChunkCount == 0 {
		return ProcessDocumentOutput{}, util.ErrNoExtractableText
	}
	return ProcessDocumentOutput{CleanedText: doc.CleanedText, Chunks: doc.Chunks}, nil
}

func (a *Activities) ExtractMetadataActivity(ctx context.Context, in ExtractMetadataInput) (ExtractMetadataOutput, error) {
	return ExtractMetadataOutput{Metadata: a.extractor.Extract(ctx, in.Text)}, nil
}

func (a *Activities) EmbedChunksActivity(ctx context.Context, in EmbedChunksInput) (EmbedChunksOutput, error) {
	vectors, err := a.embedder.EmbedDocuments(ctx, in.Chunks)
	if err != nil {
		return EmbedChunksOutput{}, err
	}
	return EmbedChunksOutput{Vectors: vectors}, nil
}

type refresher interface {
	Refresh() error
}

func (a *Activities) AddDocumentsActivity(ctx context.Context, in AddDocumentsInput) (AddDocumentsOutput, error) {
	_ = ctx
	// the API process may have written the file since this worker last did
	if r, ok := a.store.(refresher); ok {
		if err := r.Refresh(); err != nil {
			return AddDocumentsOutput{}, err
		}
	}
	if err := a.store.Add(in.Chunks, in.Vectors, in.Metadata); err != nil {
		return AddDocumentsOutput{}, err
	}
	return AddDocumentsOutput{Stats: a.store.Stats()}, nil
}

func (a *Activities) WritePaperArtifactsActivity(ctx context.Context, in WritePaperArtifactsInput) error {
	_ = ctx
	if a.cfg.DataOutRoot == "" {
		return nil
	}
	doc := models.ProcessedDocument{CleanedText: in.CleanedText, Chunks: in.Chunks, ChunkCount: len(in.Chunks)}
	return rag.WriteArtifacts(filepath.Join(a.cfg.DataOutRoot, in.PaperID), in.PaperID, doc, in.Metadata)
}
