package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"paperqa/internal/app"
	"paperqa/internal/config"
	"paperqa/internal/tui"
)

const usage = `Usage: paperqa [-config paperqa.yaml] <command> [args]

Commands:
  ingest [-chunk-size N] [-overlap N] file.pdf...   add papers to the knowledge base
  ask [-top-k N] question...                        answer a question from the stored papers
  stats                                             show store counts
  clear                                             remove every stored chunk
  chat [-top-k N]                                   interactive question answering
`

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; PAPERQA_CONFIG is used otherwise)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("init failed: %v", err)
	}
	defer a.Close()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "ingest":
		err = runIngest(ctx, a, args)
	case "ask":
		err = runAsk(ctx, a, args)
	case "stats":
		err = printJSON(a.Store.Stats())
	case "clear":
		if err = a.Store.Clear(); err == nil {
			fmt.Println("vector store cleared")
		}
	case "chat":
		err = runChat(ctx, a, args)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		a.Close()
		log.Fatal(err)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func runIngest(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	chunkSize := fs.Int("chunk-size", a.Config.ChunkSize, "words per chunk")
	overlap := fs.Int("overlap", a.Config.ChunkOverlap, "words shared by consecutive chunks")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("ingest: no PDF files given")
	}
	failed := 0
	for _, path := range fs.Args() {
		res, err := a.Pipeline.IngestFileWith(ctx, path, *chunkSize, *overlap)
		if err != nil {
			log.Printf("ingest %s failed: %v", path, err)
			failed++
			continue
		}
		fmt.Printf("%s: %q, %d chunks (store: %d)\n", path, res.Title, res.ChunkCount, res.Stats.TotalDocuments)
	}
	if failed > 0 {
		return fmt.Errorf("ingest: %d of %d files failed", failed, fs.NArg())
	}
	return nil
}

func runAsk(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	topK := fs.Int("top-k", a.Config.TopK, "number of chunks to retrieve")
	_ = fs.Parse(args)
	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		return fmt.Errorf("ask: question is required")
	}
	return printJSON(a.Engine.AnswerQuestion(ctx, question, *topK))
}

func runChat(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	topK := fs.Int("top-k", a.Config.TopK, "number of chunks to retrieve")
	_ = fs.Parse(args)
	st := a.Store.Stats()
	summary := fmt.Sprintf("%d chunks in %s", st.TotalDocuments, a.Store.Path())
	p := tea.NewProgram(tui.New(ctx, a.Engine, *topK, summary), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
