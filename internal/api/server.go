package api

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"paperqa/internal/config"
	"paperqa/internal/models"
	"paperqa/internal/providers"
	"paperqa/internal/util"
	"paperqa/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"
)

type Ingester interface {
	IngestFileWith(ctx context.Context, path string, chunkSize, overlap int) (models.IngestResult, error)
}

type Answerer interface {
	AnswerQuestion(ctx context.Context, question string, topK int) models.Answer
}

type StoreAdmin interface {
	Stats() models.StoreStats
	Clear() error
	// Refresh picks up writes made by the ingestion worker.
	Refresh() error
}

// WorkflowClient is the part of the Temporal client the server uses.
type WorkflowClient interface {
	ExecuteWorkflow(ctx context.Context, options tclient.StartWorkflowOptions, workflow interface{}, args ...interface{}) (tclient.WorkflowRun, error)
	QueryWorkflow(ctx context.Context, workflowID string, runID string, queryType string, args ...interface{}) (converter.EncodedValue, error)
}

type Server struct {
	cfg      config.Config
	ingester Ingester
	answerer Answerer
	store    StoreAdmin
	temporal WorkflowClient
}

// NewServer builds the HTTP API. When tc is nil uploads are ingested inline.
func NewServer(cfg config.Config, ing Ingester, ans Answerer, store StoreAdmin, tc WorkflowClient) *Server {
	return &Server{cfg: cfg, ingester: ing, answerer: ans, store: store, temporal: tc}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/papers", s.handlePapers)
	mux.HandleFunc("/papers/", s.handlePaperStatus)
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/store", s.handleStore)
	return withCORS(withRequestID(mux))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type uploadResult struct {
	Filename   string               `json:"filename"`
	PaperID    string               `json:"paper_id"`
	WorkflowID string               `json:"workflow_id,omitempty"`
	RunID      string               `json:"run_id,omitempty"`
	Result     *models.IngestResult `json:"result,omitempty"`
}

func (s *Server) handlePapers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if err := r.ParseMultipartForm(128 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}
	chunkSize, err := formInt(r, "chunk_size", s.cfg.ChunkSize)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	overlap, err := formInt(r, "chunk_overlap", s.cfg.ChunkOverlap)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if err := util.ValidateChunking(chunkSize, overlap); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		if single, ok := firstSingleFile(r.MultipartForm.File); ok {
			files = append(files, single)
		}
	}
	if len(files) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
		return
	}
	if err := util.EnsureDir(s.cfg.DataInRoot); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]uploadResult, 0, len(files))
	for _, fh := range files {
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
			continue
		}
		paperID, savedPath, err := saveUploadedFile(s.cfg.DataInRoot, fh)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		res := uploadResult{Filename: filepath.Base(fh.Filename), PaperID: paperID}

		if s.temporal != nil {
			wfID := "paper-" + paperID
			we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
				ID:                    wfID,
				TaskQueue:             s.cfg.TemporalTaskQueue,
				WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
			}, workflows.PaperIngestWorkflow, workflows.PaperIngestInput{
				PaperPath:    savedPath,
				ChunkSize:    chunkSize,
				ChunkOverlap: overlap,
			})
			if err != nil {
				writeErr(w, http.StatusBadGateway, fmt.Errorf("start workflow: %w", err))
				return
			}
			res.WorkflowID, res.RunID = we.GetID(), we.GetRunID()
			out = append(out, res)
			continue
		}

		ingested, err := s.ingester.IngestFileWith(r.Context(), savedPath, chunkSize, overlap)
		if err != nil {
			log.Printf("ingest %s failed: %v", savedPath, err)
			writeErr(w, ingestStatus(err), err)
			return
		}
		ingested.PaperID = paperID
		res.Result = &ingested
		out = append(out, res)
	}
	if len(out) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
		return
	}
	code := http.StatusOK
	if s.temporal != nil {
		code = http.StatusAccepted
	}
	writeJSON(w, code, map[string]any{"papers": out, "stats": s.store.Stats()})
}

func (s *Server) handlePaperStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	paperID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/papers/"), "/")
	if paperID == "" || s.temporal == nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	val, err := s.temporal.QueryWorkflow(r.Context(), "paper-"+paperID, "", workflows.QueryGetPaperStatus)
	if err != nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("query paper status: %w", err))
		return
	}
	var st workflows.PaperStatus
	if err := val.Get(&st); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Question string `json:"question"`
		TopK     int    `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("question is required"))
		return
	}
	if req.TopK <= 0 {
		req.TopK = s.cfg.TopK
	}
	s.refreshStore()
	writeJSON(w, http.StatusOK, s.answerer.AnswerQuestion(r.Context(), req.Question, req.TopK))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	s.refreshStore()
	writeJSON(w, http.StatusOK, s.store.Stats())
}

func (s *Server) refreshStore() {
	if err := s.store.Refresh(); err != nil {
		log.Printf("refresh vector store: %v", err)
	}
}

func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if err := s.store.Clear(); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "stats": s.store.Stats()})
}

func ingestStatus(err error) int {
	var apiErr *providers.APIError
	switch {
	case errors.Is(err, util.ErrNoExtractableText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, util.ErrInvalidChunking):
		return http.StatusBadRequest
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	case strings.Contains(strings.ToLower(err.Error()), "open pdf"):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func formInt(r *http.Request, key string, fallback int) (int, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func saveUploadedFile(dstDir string, fh *multipart.FileHeader) (paperID, path string, err error) {
	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dstDir, "upload-*.pdf")
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	h := sha256.New()
	if _, err = io.Copy(io.MultiWriter(tmp, h), src); err != nil {
		return "", "", fmt.Errorf("write upload: %w", err)
	}

	paperID = fmt.Sprintf("%x", h.Sum(nil))
	// keyed by content so same-named uploads never replace each other
	finalPath := util.SafeJoin(dstDir, paperID+"-"+filepath.Base(fh.Filename))
	if err = tmp.Close(); err != nil {
		return "", "", err
	}
	if err = os.Rename(tmp.Name(), finalPath); err != nil {
		return "", "", fmt.Errorf("atomic move upload: %w", err)
	}
	return paperID, finalPath, nil
}

func firstSingleFile(m map[string][]*multipart.FileHeader) (*multipart.FileHeader, bool) {
	for _, v := range m {
		if len(v) > 0 {
			return v[0], true
		}
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":       apiErr.Code,
			"message":    apiErr.Message,
			"request_id": w.Header().Get("X-Request-ID"),
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "PQ-API-4000"

	switch {
	case status == http.StatusBadGateway:
		return apiError{
			Code:    "PQ-API-5020",
			Message: "Upstream provider unavailable. Retry shortly.",
		}
	case status >= 500:
		return apiError{
			Code:    "PQ-API-5000",
			Message: "Internal server error. Please retry or check service logs.",
		}
	case status == http.StatusBadRequest:
		code = "PQ-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "PQ-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusMethodNotAllowed:
		code = "PQ-API-4005"
		msg = "This endpoint does not support the requested method."
	case status == http.StatusUnprocessableEntity:
		code = "PQ-PDF-4220"
		msg = "The PDF could not be read or has no extractable text."
	}

	// For 4xx, keep user-safe validation context only.
	if status >= 400 && status < 500 && err != nil {
		low := strings.ToLower(err.Error())
		switch {
		case strings.Contains(low, "question is required"):
			msg = "A question is required."
		case strings.Contains(low, "no files provided"):
			msg = "No PDF files were provided."
		case strings.Contains(low, "invalid json"):
			msg = "Malformed JSON request body."
		case strings.Contains(low, "invalid chunk"), strings.Contains(low, "invalid chunking"):
			msg = "Chunk size must be positive and overlap must be smaller than chunk size."
		}
	}
	return apiError{Code: code, Message: msg}
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
