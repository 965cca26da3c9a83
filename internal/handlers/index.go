package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"medichat/internal/contextutil"
	"medichat/internal/indexer"
	"medichat/internal/service"
)

// maxUploadMemory is the multipart memory limit; larger uploads spill to temp files.
const maxUploadMemory = 32 << 20

// IndexHandler handles document uploads and index status.
type IndexHandler struct {
	chatService service.ChatService
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(chatService service.ChatService) *IndexHandler {
	return &IndexHandler{chatService: chatService}
}

// FileStatus reports the outcome for one uploaded file.
type FileStatus struct {
	Name   string `json:"name"`
	Chunks int    `json:"chunks"`
	Error  string `json:"error,omitempty"`
}

// IngestResponse is returned after documents were processed.
type IngestResponse struct {
	Files       []FileStatus `json:"files"`
	NewChunks   int          `json:"new_chunks"`
	TotalChunks int          `json:"total_chunks"`
	Reused      bool         `json:"reused"`
	Fingerprint string       `json:"fingerprint"`
}

// IndexStatusResponse describes the loaded index.
type IndexStatusResponse struct {
	Loaded      bool               `json:"loaded"`
	Fingerprint string             `json:"fingerprint,omitempty"`
	Chunks      int                `json:"chunks"`
	Stats       indexer.ChunkStats `json:"stats"`
}

// Upload processes the PDFs posted in the multipart field "files".
func (h *IndexHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.WarnContext(ctx, "invalid multipart body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded in field \"files\"")
		return
	}

	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			logger.WarnContext(ctx, "failed to read uploaded file", "file", fh.Filename, "error", err)
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read %s", fh.Filename))
			return
		}
		uploads = append(uploads, service.Upload{Name: fh.Filename, Data: data})
	}

	logger.InfoContext(ctx, "processing uploaded documents", "files", len(uploads))

	result, err := h.chatService.ProcessDocuments(ctx, uploads)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to process documents")
		return
	}

	resp := IngestResponse{
		Files:       make([]FileStatus, 0, len(result.Files)),
		NewChunks:   result.NewChunks,
		TotalChunks: result.TotalChunks,
		Reused:      result.Reused,
		Fingerprint: result.Fingerprint,
	}
	for _, f := range result.Files {
		status := FileStatus{Name: f.Name, Chunks: f.Chunks}
		if f.Err != nil {
			status.Error = f.Err.Error()
		}
		resp.Files = append(resp.Files, status)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Status reports the loaded index.
func (h *IndexHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.chatService.IndexStatus(r.Context())
	writeJSON(w, http.StatusOK, IndexStatusResponse{
		Loaded:      status.Loaded,
		Fingerprint: status.Fingerprint,
		Chunks:      status.Chunks,
		Stats:       status.Stats,
	})
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return io.ReadAll(f)
}
