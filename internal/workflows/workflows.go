package workflows

import (
	"strings"
	"time"

	"paperqa/internal/activities"
	"paperqa/internal/util"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	QueryGetPaperStatus = "GetPaperStatus"

	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"
)

// PaperIngestWorkflow runs one PDF through process, metadata, embed and store.
// Nothing is retried: remote calls already carry their own timeouts.
func PaperIngestWorkflow(ctx workflow.Context, input PaperIngestInput) (string, error) {
	status := PaperStatus{
		PaperPath:   input.PaperPath,
		CurrentStep: "init",
		Status:      StatusProcessing,
		Steps:       map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetPaperStatus, func() (PaperStatus, error) {
		return status, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	logger := workflow.GetLogger(ctx)

	begin := func(step string) {
		status.CurrentStep = step
		status.Steps[step] = StatusProcessing
	}
	fail := func(err error) (string, error) {
		status.Status = StatusFailed
		status.FailReason = err.Error()
		status.Steps[status.CurrentStep] = StatusFailed
		return "", err
	}

	begin("compute_paper_id")
	var idOut activities.ComputePaperIDOutput
	if err := workflow.ExecuteActivity(ctx, "ComputePaperIDActivity", activities.ComputePaperIDInput{PaperPath: input.PaperPath}).Get(ctx, &idOut); err != nil {
		return fail(err)
	}
	status.PaperID = idOut.PaperID
	status.Steps[status.CurrentStep] = "done"

	begin("process_document")
	var procOut activities.ProcessDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "ProcessDocumentActivity", activities.ProcessDocumentInput{
		PaperPath:    input.PaperPath,
		ChunkSize:    input.ChunkSize,
		ChunkOverlap: input.ChunkOverlap,
	}).Get(ctx, &procOut); err != nil {
		if isNoTextError(err) {
			status.Status = StatusFailed
			status.FailReason = "no extractable text found (OCR not enabled)"
			status.Steps[status.CurrentStep] = StatusFailed
			logger.Warn("paper has no extractable text", "paper_path", input.PaperPath)
			return status.Status, nil
		}
		if isInvalidChunkingError(err) {
			status.Status = StatusFailed
			status.FailReason = "invalid chunking configuration"
			status.Steps[status.CurrentStep] = StatusFailed
			logger.Warn("rejected chunking configuration", "chunk_size", input.ChunkSize, "chunk_overlap", input.ChunkOverlap)
			return status.Status, nil
		}
		return fail(err)
	}
	status.ChunkCount = len(procOut.Chunks)
	status.Steps[status.CurrentStep] = "done"

	begin("extract_metadata")
	var metaOut activities.ExtractMetadataOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractMetadataActivity", activities.ExtractMetadataInput{Text: procOut.CleanedText}).Get(ctx, &metaOut); err != nil {
		return fail(err)
	}
	status.Title = metaOut.Metadata.Title
	status.Steps[status.CurrentStep] = "done"

	begin("embed_chunks")
	var embedOut activities.EmbedChunksOutput
	if err := workflow.ExecuteActivity(ctx, "EmbedChunksActivity", activities.EmbedChunksInput{Chunks: procOut.Chunks}).Get(ctx, &embedOut); err != nil {
		return fail(err)
	}
	status.Steps[status.CurrentStep] = "done"

	begin("add_documents")
	var addOut activities.AddDocumentsOutput
	if err := workflow.ExecuteActivity(ctx, "AddDocumentsActivity", activities.AddDocumentsInput{
		Chunks:   procOut.Chunks,
		Vectors:  embedOut.Vectors,
		Metadata: metaOut.Metadata,
	}).Get(ctx, &addOut); err != nil {
		return fail(err)
	}
	status.Stats = addOut.Stats
	status.Steps[status.CurrentStep] = "done"

	begin("write_artifacts")
	if err := workflow.ExecuteActivity(ctx, "WritePaperArtifactsActivity", activities.WritePaperArtifactsInput{
		PaperID:     idOut.PaperID,
		CleanedText: procOut.CleanedText,
		Chunks:      procOut.Chunks,
		Metadata:    metaOut.Metadata,
	}).Get(ctx, nil); err != nil {
		// artifacts are for inspection only
		logger.Warn("write paper artifacts failed", "paper_id", idOut.PaperID, "error", err)
		status.Steps[status.CurrentStep] = StatusFailed
	} else {
		status.Steps[status.CurrentStep] = "done"
	}

	status.CurrentStep = "done"
	status.Status = StatusProcessed
	return status.Status, nil
}

func isNoTextError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no extractable text")
}

func isInvalidChunkingError(err error) bool {
	return strings.Contains(err.Error(), util.ErrInvalidChunking.Error())
}
