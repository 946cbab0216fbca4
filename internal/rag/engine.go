package rag

import (
	"context"
	"errors"
	"fmt"
	"log"

	"paperqa/internal/models"
	"paperqa/internal/providers"
	"paperqa/internal/vector"
)

const OperationAnswer = "answer_question"

type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type Searcher interface {
	Search(query []float32, topK int) []models.SearchResult
}

// Engine answers questions from the chunks held in a store.
type Engine struct {
	embedder QueryEmbedder
	store    Searcher
	llm      providers.LLMProvider
}

func NewEngine(embedder QueryEmbedder, store Searcher, llm providers.LLMProvider) *Engine {
	return &Engine{embedder: embedder, store: store, llm: llm}
}

// AnswerQuestion never returns an error; failures become the answer text.
func (e *Engine) AnswerQuestion(ctx context.Context, question string, topK int) models.Answer {
	if topK <= 0 {
		topK = vector.DefaultTopK
	}
	out := models.Answer{Question: question, Sources: []models.SearchResult{}}

	qv, err := e.embedder.EmbedQuery(ctx, question)
	if err != nil {
		log.Printf("answer question: embed query failed: %v", err)
		out.Answer = answerError(err)
		return out
	}
	results := e.store.Search(qv, topK)
	if len(results) == 0 {
		out.Answer = NoResultsAnswer
		return out
	}
	out.Sources = results
	out.Answer = e.generate(ctx, question, BuildContext(results))
	return out
}

func (e *Engine) generate(ctx context.Context, question, contextText string) string {
	if e.llm == nil {
		return answerError(errors.New("no answer provider configured"))
	}
	resp, info, err := e.llm.Generate(ctx, providers.GenerateRequest{
		Operation:   OperationAnswer,
		System:      answerSystemPrompt,
		Prompt:      buildAnswerPrompt(question, contextText),
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		log.Printf("answer question failed provider=%s model=%s: %v", info.Name, info.Model, err)
		return answerError(err)
	}
	return resp.Text
}

func answerError(err error) string {
	var apiErr *providers.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("Error generating answer: API returned status code %d", apiErr.StatusCode)
	}
	return "Error generating answer: " + err.Error()
}
