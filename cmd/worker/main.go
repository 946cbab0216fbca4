package main

import (
	"context"
	"log"

	"paperqa/internal/activities"
	"paperqa/internal/app"
	"paperqa/internal/config"
	"paperqa/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load(".env")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.TemporalAddress == "" {
		log.Fatal("PAPERQA_TEMPORAL_ADDRESS is required for the worker")
	}
	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	// one activity at a time: the vector store is a single-writer file
	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{MaxConcurrentActivityExecutionSize: 1})
	workflows.Register(w)
	activities.Register(w, activities.New(cfg, a.Processor, a.Extractor, a.Embedder, a.Store))

	log.Printf("paperqa worker listening on %s queue=%s %s", cfg.TemporalAddress, cfg.TemporalTaskQueue, a.Describe())
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal(err)
	}
}
