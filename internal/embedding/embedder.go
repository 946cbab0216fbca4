package embedding

import (
	"context"
	"fmt"
	"log"

	"paperqa/internal/providers"
)

const (
	OperationEmbedChunks = "embed_chunks"
	OperationEmbedQuery  = "embed_query"
)

type Options struct {
	// MaxRunes caps each input before it is sent; 0 means 512.
	MaxRunes int
	// BatchSize is the number of documents per EmbedDocuments request; 0 means 1.
	BatchSize int
}

// Embedder turns text into vectors through an embedding provider.
type Embedder struct {
	provider  providers.EmbeddingProvider
	maxRunes  int
	batchSize int
}

func New(p providers.EmbeddingProvider, opts Options) *Embedder {
	if opts.MaxRunes <= 0 {
		opts.MaxRunes = 512
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	return &Embedder{provider: p, maxRunes: opts.MaxRunes, batchSize: opts.BatchSize}
}

// EmbedText embeds all texts in one request and returns vectors in input order.
func (e *Embedder) EmbedText(ctx context.Context, texts []string) ([][]float32, error) {
	return e.embed(ctx, OperationEmbedChunks, texts)
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embed(ctx, OperationEmbedQuery, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedDocuments sends docs in batches of BatchSize and concatenates the
// results. The first failing batch aborts the whole call.
func (e *Embedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	out := make([][]float32, 0, len(docs))
	for start, batch := 0, 1; start < len(docs); start, batch = start+e.batchSize, batch+1 {
		end := start + e.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		vecs, err := e.embed(ctx, OperationEmbedChunks, docs[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d: %w", batch, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *Embedder) embed(ctx context.Context, op string, texts []string) ([][]float32, error) {
	if e.provider == nil {
		return nil, fmt.Errorf("no embedding provider configured")
	}
	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = truncateRunes(t, e.maxRunes)
	}
	vecs, info, err := e.provider.Embed(ctx, providers.EmbedRequest{Operation: op, Inputs: inputs})
	if err != nil {
		log.Printf("embedding failed provider=%s model=%s inputs=%d: %v", info.Name, info.Model, len(inputs), err)
		return nil, err
	}
	if len(vecs) != len(inputs) {
		err := fmt.Errorf("embedding count mismatch: got %d want %d", len(vecs), len(inputs))
		log.Printf("embedding failed provider=%s model=%s: %v", info.Name, info.Model, err)
		return nil, err
	}
	return vecs, nil
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
