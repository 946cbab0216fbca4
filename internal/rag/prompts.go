package rag

import (
	"fmt"
	"strings"

	"paperqa/internal/models"
)

const (
	NoResultsAnswer = "Sorry, no relevant content found in the knowledge base. Please upload PDF papers first."

	answerSystemPrompt = "You are a professional academic paper Q&A assistant, skilled at understanding and explaining academic paper content. Always respond in English."
)

// BuildContext renders search results as numbered document segments.
func BuildContext(results []models.SearchResult) string {
	parts := make([]string, 0, len(results)*4)
	for i, r := range results {
		title := r.Metadata.Title
		if title == "" {
			title = "Unknown"
		}
		parts = append(parts,
			fmt.Sprintf("[Document Segment %d]", i+1),
			"Title: "+title,
			"Content: "+r.Document,
			"",
		)
	}
	return strings.Join(parts, "\n")
}

func buildAnswerPrompt(question, context string) string {
	return `You are a professional academic paper Q&A assistant. Please answer the user's question based on the provided paper content.

Relevant paper content:
` + context + `

User question: ` + question + `

Please provide an accurate and detailed answer based on the above paper content. If the paper content does not contain relevant information, please state it clearly. Answer in English.`
}
