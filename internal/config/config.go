package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIAddr           string `yaml:"api_addr"`
	TemporalAddress   string `yaml:"temporal_address"`
	TemporalTaskQueue string `yaml:"temporal_task_queue"`
	PostgresURL       string `yaml:"postgres_url"`
	DataInRoot        string `yaml:"data_in"`
	DataOutRoot       string `yaml:"data_out"`
	StorePath         string `yaml:"store_path"`

	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`

	SiliconFlowAPIKey  string `yaml:"siliconflow_api_key"`
	SiliconFlowAPIBase string `yaml:"siliconflow_api_base"`
	DeepSeekAPIKey     string `yaml:"deepseek_api_key"`
	DeepSeekAPIBase    string `yaml:"deepseek_api_base"`
	OpenAIAPIKey       string `yaml:"openai_api_key"`
	OpenAIAPIBase      string `yaml:"openai_api_base"`
	GroqAPIKey         string `yaml:"groq_api_key"`
	GroqAPIBase        string `yaml:"groq_api_base"`
	OllamaBaseURL      string `yaml:"ollama_base_url"`

	EmbedProviders    string `yaml:"embed_providers"`
	MetadataProviders string `yaml:"metadata_providers"`
	AnswerProviders   string `yaml:"answer_providers"`

	EmbedModel     string `yaml:"embed_model"`
	EmbedBatchSize int    `yaml:"embed_batch_size"`
	EmbedMaxChars  int    `yaml:"embed_max_chars"`
	EmbedDim       int    `yaml:"embed_dim"`

	EmbedTimeoutSecs    int `yaml:"embed_timeout_secs"`
	MetadataTimeoutSecs int `yaml:"metadata_timeout_secs"`
	AnswerTimeoutSecs   int `yaml:"answer_timeout_secs"`
}

func Default() Config {
	return Config{
		APIAddr:             ":8080",
		TemporalTaskQueue:   "paperqa",
		DataInRoot:          "./data/in",
		StorePath:           "./data/vector_db/vector_store.json",
		ChunkSize:           500,
		ChunkOverlap:        50,
		TopK:                3,
		SiliconFlowAPIBase:  "https://api.siliconflow.cn/v1",
		DeepSeekAPIBase:     "https://api.deepseek.com/v1",
		OpenAIAPIBase:       "https://api.openai.com/v1",
		GroqAPIBase:         "https://api.groq.com/openai/v1",
		OllamaBaseURL:       "http://localhost:11434/v1",
		EmbedProviders:      "siliconflow",
		MetadataProviders:   "siliconflow|deepseek",
		AnswerProviders:     "deepseek",
		EmbedModel:          "BAAI/bge-large-zh-v1.5",
		EmbedBatchSize:      1,
		EmbedMaxChars:       512,
		EmbedDim:            1024,
		EmbedTimeoutSecs:    30,
		MetadataTimeoutSecs: 30,
		AnswerTimeoutSecs:   60,
	}
}

// Load returns the defaults overridden by the environment. When PAPERQA_CONFIG
// names a YAML file it is applied between the two.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("PAPERQA_CONFIG"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadFile is Load with an explicit YAML path. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := applyFile(&cfg, path); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.APIAddr = getenv("PAPERQA_API_ADDR", cfg.APIAddr)
	cfg.TemporalAddress = getenv("PAPERQA_TEMPORAL_ADDRESS", cfg.TemporalAddress)
	cfg.TemporalTaskQueue = getenv("PAPERQA_TEMPORAL_TASK_QUEUE", cfg.TemporalTaskQueue)
	cfg.PostgresURL = getenv("PAPERQA_POSTGRES_URL", cfg.PostgresURL)
	cfg.DataInRoot = getenv("PAPERQA_DATA_IN", cfg.DataInRoot)
	cfg.DataOutRoot = getenv("PAPERQA_DATA_OUT", cfg.DataOutRoot)
	cfg.StorePath = getenv("PAPERQA_STORE_PATH", cfg.StorePath)
	cfg.ChunkSize = getenvInt("PAPERQA_CHUNK_SIZE", cfg.ChunkSize)
	cfg.ChunkOverlap = getenvInt("PAPERQA_CHUNK_OVERLAP", cfg.ChunkOverlap)
	cfg.TopK = getenvInt("PAPERQA_TOP_K", cfg.TopK)
	cfg.SiliconFlowAPIKey = getenv("SILICONFLOW_API_KEY", cfg.SiliconFlowAPIKey)
	cfg.SiliconFlowAPIBase = getenv("SILICONFLOW_API_BASE", cfg.SiliconFlowAPIBase)
	cfg.DeepSeekAPIKey = getenv("DEEPSEEK_API_KEY", cfg.DeepSeekAPIKey)
	cfg.DeepSeekAPIBase = getenv("DEEPSEEK_API_BASE", cfg.DeepSeekAPIBase)
	cfg.OpenAIAPIKey = getenv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIAPIBase = getenv("OPENAI_API_BASE", cfg.OpenAIAPIBase)
	cfg.GroqAPIKey = getenv("GROQ_API_KEY", cfg.GroqAPIKey)
	cfg.GroqAPIBase = getenv("GROQ_API_BASE", cfg.GroqAPIBase)
	cfg.OllamaBaseURL = getenv("PAPERQA_OLLAMA_BASE_URL", cfg.OllamaBaseURL)
	cfg.EmbedProviders = getenv("PAPERQA_EMBED_PROVIDERS", cfg.EmbedProviders)
	cfg.MetadataProviders = getenv("PAPERQA_METADATA_PROVIDERS", cfg.MetadataProviders)
	cfg.AnswerProviders = getenv("PAPERQA_ANSWER_PROVIDERS", cfg.AnswerProviders)
	cfg.EmbedModel = getenv("PAPERQA_EMBED_MODEL", cfg.EmbedModel)
	cfg.EmbedBatchSize = getenvInt("PAPERQA_EMBED_BATCH_SIZE", cfg.EmbedBatchSize)
	cfg.EmbedMaxChars = getenvInt("PAPERQA_EMBED_MAX_CHARS", cfg.EmbedMaxChars)
	cfg.EmbedDim = getenvInt("PAPERQA_EMBED_DIM", cfg.EmbedDim)
	cfg.EmbedTimeoutSecs = getenvInt("PAPERQA_EMBED_TIMEOUT_SECONDS", cfg.EmbedTimeoutSecs)
	cfg.MetadataTimeoutSecs = getenvInt("PAPERQA_METADATA_TIMEOUT_SECONDS", cfg.MetadataTimeoutSecs)
	cfg.AnswerTimeoutSecs = getenvInt("PAPERQA_ANSWER_TIMEOUT_SECONDS", cfg.AnswerTimeoutSecs)
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
