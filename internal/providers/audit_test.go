package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingAuditor struct {
	recs []CallRecord
	err  error
}

func (a *recordingAuditor) Record(_ context.Context, rec CallRecord) error {
	a.recs = append(a.recs, rec)
	return a.err
}

type failingLLM struct{ err error }

func (f failingLLM) Generate(context.Context, GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	return GenerateResponse{}, ProviderInfo{Name: "deepseek", Model: "deepseek-chat"}, f.err
}

func TestAuditedProviderRecordsSuccess(t *testing.T) {
	a := &recordingAuditor{}
	p := NewAuditedProvider(NewMockProvider(8), a)
	resp, _, err := p.Generate(context.Background(), GenerateRequest{Operation: "answer_question", Prompt: "q"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Text)
	require.Len(t, a.recs, 1)
	require.Equal(t, "ok", a.recs[0].Status)
	require.Equal(t, "answer_question", a.recs[0].Operation)
	require.Equal(t, "mock", a.recs[0].ProviderName)
	require.Len(t, a.recs[0].CallID, 36)
}

func TestAuditedProviderRecordsFailureType(t *testing.T) {
	a := &recordingAuditor{}
	p := NewAuditedProvider(failingLLM{err: &APIError{Provider: "deepseek", StatusCode: 429}}, a)
	_, _, err := p.Generate(context.Background(), GenerateRequest{Operation: "extract_metadata"})
	require.Error(t, err)
	require.Len(t, a.recs, 1)
	require.Equal(t, "failed", a.recs[0].Status)
	require.Equal(t, string(ErrorRate), a.recs[0].ErrorType)
}

func TestAuditedProviderIgnoresAuditErrors(t *testing.T) {
	a := &recordingAuditor{err: errors.New("db down")}
	p := NewAuditedProvider(NewMockProvider(8), a)
	_, _, err := p.Generate(context.Background(), GenerateRequest{Operation: "answer_question"})
	require.NoError(t, err)
}
