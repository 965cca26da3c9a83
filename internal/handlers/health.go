package handlers

import (
	"net/http"
	"time"

	"medichat/internal/service"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	chatService service.ChatService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(chatService service.ChatService) *HealthHandler {
	return &HealthHandler{chatService: chatService}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status, always "healthy" while the process serves requests.
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`
}

// ServeHTTP reports liveness and whether documents have been indexed.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"index": "empty"}
	if h.chatService.IndexStatus(r.Context()).Loaded {
		checks["index"] = "loaded"
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}
