package storage

import (
	"context"
	"fmt"

	"paperqa/internal/providers"
)

const llmCallsSchema = `
CREATE TABLE IF NOT EXISTS llm_calls (
  call_id       UUID PRIMARY KEY,
  operation     TEXT NOT NULL,
  provider_name TEXT NOT NULL,
  model         TEXT NOT NULL,
  status        TEXT NOT NULL,
  error_type    TEXT,
  latency_ms    BIGINT NOT NULL DEFAULT 0,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// LLMAuditRepo stores one row per chat call. It satisfies providers.Auditor.
type LLMAuditRepo struct {
	db Execer
}

func NewLLMAuditRepo(db Execer) *LLMAuditRepo {
	return &LLMAuditRepo{db: db}
}

func (r *LLMAuditRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, llmCallsSchema); err != nil {
		return fmt.Errorf("create llm_calls: %w", err)
	}
	return nil
}

func (r *LLMAuditRepo) Record(ctx context.Context, rec providers.CallRecord) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO llm_calls(call_id, operation, provider_name, model, status, error_type, latency_ms)
VALUES ($1::uuid, $2, $3, $4, $5, NULLIF($6,''), $7)`,
		rec.CallID, rec.Operation, rec.ProviderName, rec.Model, rec.Status, rec.ErrorType, rec.LatencyMs)
	if err != nil {
		return fmt.Errorf("insert llm call: %w", err)
	}
	return nil
}
