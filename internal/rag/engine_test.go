package rag

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"paperqa/internal/models"
	"paperqa/internal/providers"
	"paperqa/internal/vector"

	"github.com/stretchr/testify/require"
)

// keywordEmbedder maps text to a one-hot vector keyed by the first known word it contains.
type keywordEmbedder struct {
	axes []string
	err  error
}

func (k keywordEmbedder) vec(text string) []float32 {
	v := make([]float32, len(k.axes)+1)
	for i, a := range k.axes {
		if strings.Contains(strings.ToLower(text), a) {
			v[i] = 1
			return v
		}
	}
	v[len(k.axes)] = 1
	return v
}

func (k keywordEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if k.err != nil {
		return nil, k.err
	}
	return k.vec(text), nil
}

func (k keywordEmbedder) EmbedDocuments(_ context.Context, docs []string) ([][]float32, error) {
	if k.err != nil {
		return nil, k.err
	}
	out := make([][]float32, 0, len(docs))
	for _, d := range docs {
		out = append(out, k.vec(d))
	}
	return out, nil
}

type recordingLLM struct {
	reply string
	err   error
	req   providers.GenerateRequest
	calls int
}

func (r *recordingLLM) Generate(_ context.Context, req providers.GenerateRequest) (providers.GenerateResponse, providers.ProviderInfo, error) {
	r.req = req
	r.calls++
	return providers.GenerateResponse{Text: r.reply}, providers.ProviderInfo{Name: "deepseek", Model: "deepseek-chat"}, r.err
}

func openStore(t *testing.T) *vector.Store {
	t.Helper()
	s, err := vector.Open(filepath.Join(t.TempDir(), "vector_store.json"))
	require.NoError(t, err)
	return s
}

func TestAnswerQuestionEmptyStore(t *testing.T) {
	llm := &recordingLLM{reply: "unused"}
	e := NewEngine(keywordEmbedder{axes: []string{"x"}}, openStore(t), llm)
	ans := e.AnswerQuestion(context.Background(), "what?", 3)
	require.Equal(t, NoResultsAnswer, ans.Answer)
	require.Empty(t, ans.Sources)
	require.NotNil(t, ans.Sources)
	require.Equal(t, "what?", ans.Question)
	require.Equal(t, 0, llm.calls)
}

func TestAnswerQuestionBuildsPrompt(t *testing.T) {
	store := openStore(t)
	md := models.DefaultMetadata()
	md.Title = "Graph Networks"
	require.NoError(t, store.Add([]string{"graphs are sets of nodes"}, [][]float32{{1, 0}}, md))

	llm := &recordingLLM{reply: "Graphs have nodes."}
	e := NewEngine(keywordEmbedder{axes: []string{"graph"}}, store, llm)
	ans := e.AnswerQuestion(context.Background(), "What is a graph?", 0)
	require.Equal(t, "Graphs have nodes.", ans.Answer)
	require.Len(t, ans.Sources, 1)
	require.Equal(t, OperationAnswer, llm.req.Operation)
	require.Equal(t, answerSystemPrompt, llm.req.System)
	require.InDelta(t, 0.7, llm.req.Temperature, 1e-9)
	require.Equal(t, 2000, llm.req.MaxTokens)
	require.Contains(t, llm.req.Prompt, "[Document Segment 1]\nTitle: Graph Networks\nContent: graphs are sets of nodes\n")
	require.Contains(t, llm.req.Prompt, "User question: What is a graph?")
}

func TestAnswerQuestionErrorsBecomeAnswers(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Add([]string{"doc"}, [][]float32{{1, 0}}, models.DefaultMetadata()))

	llm := &recordingLLM{err: &providers.APIError{Provider: "deepseek", StatusCode: 401, Body: "bad key"}}
	ans := NewEngine(keywordEmbedder{axes: []string{"doc"}}, store, llm).AnswerQuestion(context.Background(), "doc?", 3)
	require.Equal(t, "Error generating answer: API returned status code 401", ans.Answer)
	require.Len(t, ans.Sources, 1)

	llm = &recordingLLM{err: errors.New("dial tcp: i/o timeout")}
	ans = NewEngine(keywordEmbedder{axes: []string{"doc"}}, store, llm).AnswerQuestion(context.Background(), "doc?", 3)
	require.Equal(t, "Error generating answer: dial tcp: i/o timeout", ans.Answer)

	ans = NewEngine(keywordEmbedder{err: errors.New("embedding down")}, store, &recordingLLM{}).AnswerQuestion(context.Background(), "doc?", 3)
	require.Equal(t, "Error generating answer: embedding down", ans.Answer)
	require.Empty(t, ans.Sources)
}

func TestBuildContextUnknownTitle(t *testing.T) {
	got := BuildContext([]models.SearchResult{
		{Document: "first", Metadata: models.Metadata{Title: "A"}},
		{Document: "second"},
	})
	require.Equal(t, "[Document Segment 1]\nTitle: A\nContent: first\n\n[Document Segment 2]\nTitle: Unknown\nContent: second\n", got)
}
