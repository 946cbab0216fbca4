package providers

import (
	"fmt"
	"time"

	"paperqa/internal/config"
	"paperqa/internal/util"
)

type endpoint struct {
	baseURL    string
	apiKey     string
	chatModel  string
	embedModel string
	keyless    bool
}

// Manager resolves the configured provider lists into one provider per role.
// For each role the first listed provider with an API key wins; when none has
// a key the last entry is used and its calls fail at the remote end.
type Manager struct {
	cfg       config.Config
	endpoints map[string]endpoint

	embed       EmbeddingProvider
	embedRef    ProviderRef
	metadata    LLMProvider
	metadataRef ProviderRef
	answer      LLMProvider
	answerRef   ProviderRef
}

func NewManager(cfg config.Config) (*Manager, error) {
	m := &Manager{cfg: cfg, endpoints: knownEndpoints(cfg)}

	ref, p, err := m.build(cfg.EmbedProviders, secs(cfg.EmbedTimeoutSecs, 30), true)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	embed, ok := p.(EmbeddingProvider)
	if !ok {
		return nil, fmt.Errorf("provider %s does not support embeddings", ref.Raw)
	}
	m.embed, m.embedRef = embed, ref

	ref, p, err = m.build(cfg.MetadataProviders, secs(cfg.MetadataTimeoutSecs, 30), false)
	if err != nil {
		return nil, fmt.Errorf("metadata provider: %w", err)
	}
	m.metadata, m.metadataRef = p.(LLMProvider), ref

	ref, p, err = m.build(cfg.AnswerProviders, secs(cfg.AnswerTimeoutSecs, 60), false)
	if err != nil {
		return nil, fmt.Errorf("answer provider: %w", err)
	}
	m.answer, m.answerRef = p.(LLMProvider), ref
	return m, nil
}

func (m *Manager) Embedder() (EmbeddingProvider, ProviderRef) { return m.embed, m.embedRef }

func (m *Manager) MetadataLLM() (LLMProvider, ProviderRef) { return m.metadata, m.metadataRef }

func (m *Manager) AnswerLLM() (LLMProvider, ProviderRef) { return m.answer, m.answerRef }

// WithAuditor wraps both chat providers so every call is reported to a.
func (m *Manager) WithAuditor(a Auditor) *Manager {
	if a == nil {
		return m
	}
	m.metadata = NewAuditedProvider(m.metadata, a)
	m.answer = NewAuditedProvider(m.answer, a)
	return m
}

func (m *Manager) build(list string, timeout time.Duration, forEmbedding bool) (ProviderRef, any, error) {
	refs := ParseProviderList(list)
	if len(refs) == 0 {
		return ProviderRef{}, nil, util.ErrNoProvider
	}
	for _, ref := range refs {
		if _, ok := m.endpoints[ref.Name]; !ok && ref.Name != "mock" {
			return ProviderRef{}, nil, fmt.Errorf("unsupported provider: %s", ref.Name)
		}
	}
	chosen := refs[len(refs)-1]
	for _, ref := range refs {
		if m.hasCredentials(ref.Name) {
			chosen = ref
			break
		}
	}
	if chosen.Name == "mock" {
		return chosen, NewMockProvider(m.cfg.EmbedDim), nil
	}
	ep := m.endpoints[chosen.Name]
	model := ep.chatModel
	if forEmbedding {
		model = ep.embedModel
	}
	if chosen.Model != "" {
		model = chosen.Model
	}
	if model == "" {
		return ProviderRef{}, nil, fmt.Errorf("provider %s has no default model for this role", chosen.Name)
	}
	return chosen, NewOpenAIProvider(OpenAIConfig{
		Name:    chosen.Name,
		BaseURL: ep.baseURL,
		APIKey:  ep.apiKey,
		Model:   model,
		Timeout: timeout,
	}), nil
}

func (m *Manager) hasCredentials(name string) bool {
	if name == "mock" {
		return true
	}
	ep, ok := m.endpoints[name]
	return ok && (ep.keyless || ep.apiKey != "")
}

func knownEndpoints(cfg config.Config) map[string]endpoint {
	return map[string]endpoint{
		"siliconflow": {baseURL: cfg.SiliconFlowAPIBase, apiKey: cfg.SiliconFlowAPIKey, chatModel: "Qwen/Qwen2.5-7B-Instruct", embedModel: cfg.EmbedModel},
		"deepseek":    {baseURL: cfg.DeepSeekAPIBase, apiKey: cfg.DeepSeekAPIKey, chatModel: "deepseek-chat"},
		"openai":      {baseURL: cfg.OpenAIAPIBase, apiKey: cfg.OpenAIAPIKey, chatModel: "gpt-4o-mini", embedModel: "text-embedding-3-small"},
		"groq":        {baseURL: cfg.GroqAPIBase, apiKey: cfg.GroqAPIKey, chatModel: "llama-3.1-8b-instant"},
		"ollama":      {baseURL: cfg.OllamaBaseURL, chatModel: "llama3.1", embedModel: "nomic-embed-text", keyless: true},
	}
}

func secs(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}
