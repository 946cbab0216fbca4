package main

import (
	"context"
	"log"
	"net/http"

	"paperqa/internal/api"
	"paperqa/internal/app"
	"paperqa/internal/config"

	"github.com/joho/godotenv"
	tclient "go.temporal.io/sdk/client"
)

func main() {
	_ = godotenv.Load(".env")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	var wc api.WorkflowClient
	if cfg.TemporalAddress != "" {
		c, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
		if err != nil {
			log.Fatal(err)
		}
		defer c.Close()
		wc = c
	}
	h := api.NewServer(cfg, a.Pipeline, a.Engine, a.Store, wc)
	log.Printf("paperqa api listening on %s temporal=%q %s", cfg.APIAddr, cfg.TemporalAddress, a.Describe())
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
