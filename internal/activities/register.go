package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ComputePaperIDActivity)
	w.RegisterActivity(a.ProcessDocumentActivity)
	w.RegisterActivity(a.ExtractMetadataActivity)
	w.RegisterActivity(a.EmbedChunksActivity)
	w.RegisterActivity(a.AddDocumentsActivity)
	w.RegisterActivity(a.WritePaperArtifactsActivity)
}
