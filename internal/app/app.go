package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"paperqa/internal/config"
	"paperqa/internal/document"
	"paperqa/internal/embedding"
	"paperqa/internal/metadata"
	"paperqa/internal/providers"
	"paperqa/internal/rag"
	"paperqa/internal/storage"
	"paperqa/internal/vector"
)

// App holds the components shared by the CLI, the API server and the worker.
type App struct {
	Config    config.Config
	Providers *providers.Manager
	Store     *vector.Store
	Processor *document.Processor
	Extractor *metadata.Extractor
	Embedder  *embedding.Embedder
	Pipeline  *rag.Pipeline
	Engine    *rag.Engine

	db *storage.DB
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	pm, err := providers.NewManager(cfg)
	if err != nil {
		return nil, err
	}
	store, err := vector.Open(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Providers: pm, Store: store}

	if cfg.PostgresURL != "" {
		if err := a.enableAudit(ctx); err != nil {
			log.Printf("llm audit disabled: %v", err)
		}
	}

	embedProvider, _ := pm.Embedder()
	metaLLM, _ := pm.MetadataLLM()
	answerLLM, _ := pm.AnswerLLM()

	a.Processor = document.NewProcessor()
	a.Extractor = metadata.NewExtractor(metaLLM)
	a.Embedder = embedding.New(embedProvider, embedding.Options{MaxRunes: cfg.EmbedMaxChars, BatchSize: cfg.EmbedBatchSize})
	a.Pipeline = rag.NewPipeline(a.Processor, a.Extractor, a.Embedder, a.Store, rag.PipelineOptions{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		ArtifactsDir: cfg.DataOutRoot,
	})
	a.Engine = rag.NewEngine(a.Embedder, a.Store, answerLLM)
	return a, nil
}

func (a *App) enableAudit(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, a.Config.PostgresURL)
	if err != nil {
		return err
	}
	repo := storage.NewLLMAuditRepo(db.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return fmt.Errorf("audit schema: %w", err)
	}
	a.db = db
	a.Providers.WithAuditor(repo)
	return nil
}

// Describe is a one-line summary of the resolved providers for startup logs.
func (a *App) Describe() string {
	_, e := a.Providers.Embedder()
	_, m := a.Providers.MetadataLLM()
	_, q := a.Providers.AnswerLLM()
	return fmt.Sprintf("embed=%s metadata=%s answer=%s store=%s audit=%t", e.Raw, m.Raw, q.Raw, a.Store.Path(), a.db != nil)
}

func (a *App) Close() {
	a.db.Close()
}
