package providers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

type CallRecord struct {
	CallID       string
	Operation    string
	ProviderName string
	Model        string
	Status       string
	ErrorType    string
	LatencyMs    int64
}

type Auditor interface {
	Record(ctx context.Context, rec CallRecord) error
}

// AuditedProvider reports every Generate call to an Auditor. Audit failures are
// logged and never change the outcome of the call.
type AuditedProvider struct {
	next    LLMProvider
	auditor Auditor
	now     func() time.Time
}

func NewAuditedProvider(next LLMProvider, a Auditor) *AuditedProvider {
	return &AuditedProvider{next: next, auditor: a, now: time.Now}
}

func (p *AuditedProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	start := p.now()
	resp, info, err := p.next.Generate(ctx, req)
	rec := CallRecord{
		CallID:       uuid.NewString(),
		Operation:    req.Operation,
		ProviderName: info.Name,
		Model:        info.Model,
		Status:       "ok",
		LatencyMs:    p.now().Sub(start).Milliseconds(),
	}
	if err != nil {
		rec.Status = "failed"
		rec.ErrorType = string(ClassifyError(err))
	}
	// The call's own context may already be cancelled; the audit row is still wanted.
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if aerr := p.auditor.Record(actx, rec); aerr != nil && !errors.Is(aerr, context.Canceled) {
		log.Printf("llm audit %s/%s failed: %v", rec.Operation, rec.CallID, aerr)
	}
	return resp, info, err
}
