package providers

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// MockProvider is an offline stand-in for both the chat and the embedding
// APIs. Vectors are derived from a hash of the input, so identical inputs
// embed identically.
type MockProvider struct {
	dim int
}

func NewMockProvider(dim int) *MockProvider {
	if dim <= 0 {
		dim = 1024
	}
	return &MockProvider{dim: dim}
}

func (m *MockProvider) info(model string) ProviderInfo {
	return ProviderInfo{Name: "mock", Model: model, Key: "mock"}
}

func (m *MockProvider) Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	_ = ctx
	vectors := make([][]float32, 0, len(req.Inputs))
	for _, input := range req.Inputs {
		vectors = append(vectors, deterministicVector(input, m.dim))
	}
	return vectors, m.info(fmt.Sprintf("mock-embed-%d", m.dim)), nil
}

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	_ = ctx
	text := "Mock answer based on the retrieved paper segments."
	if strings.Contains(strings.ToLower(req.Operation), "metadata") {
		title, authors := heuristicTitleAndAuthors(promptExcerpt(req.Prompt))
		b, _ := json.Marshal(map[string]any{
			"title":    title,
			"authors":  authors,
			"keywords": []string{},
			"abstract": "",
			"year":     "",
		})
		text = "```json\n" + string(b) + "\n```"
	}
	return GenerateResponse{Text: text}, m.info("mock-llm-v1"), nil
}

// promptExcerpt returns the paper text embedded in a metadata prompt: the lines
// between the first blank line and the next one.
func promptExcerpt(prompt string) string {
	parts := strings.SplitN(prompt, "\n\n", 3)
	if len(parts) < 2 {
		return prompt
	}
	lines := strings.SplitN(parts[1], "\n", 2)
	if len(lines) == 2 {
		return lines[1]
	}
	return parts[1]
}

func heuristicTitleAndAuthors(text string) (string, []string) {
	s := bufio.NewScanner(strings.NewReader(text))
	nonEmpty := make([]string, 0, 2)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		nonEmpty = append(nonEmpty, line)
		if len(nonEmpty) == 2 {
			break
		}
	}
	title := "Unknown Title"
	authors := []string{}
	if len(nonEmpty) > 0 {
		title = nonEmpty[0]
	}
	if len(nonEmpty) > 1 {
		for _, a := range strings.Split(nonEmpty[1], ",") {
			if a = strings.TrimSpace(a); a != "" {
				authors = append(authors, a)
			}
		}
	}
	return title, authors
}

func deterministicVector(input string, dim int) []float32 {
	vec := make([]float32, dim)
	seed := []byte(input)
	if len(seed) == 0 {
		seed = []byte("empty")
	}
	for i := 0; i < dim; i++ {
		h := sha256.Sum256(append(seed, byte(i%251), byte(i/251)))
		u := binary.BigEndian.Uint32(h[:4])
		vec[i] = float32(u%2000)/1000.0 - 1.0
	}
	return normalize(vec)
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
	return v
}
