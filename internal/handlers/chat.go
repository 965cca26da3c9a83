package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"medichat/internal/chatstore"
	"medichat/internal/contextutil"
	"medichat/internal/service"
)

// ChatHandler handles HTTP requests for chat sessions.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// CreateChatResponse is returned when a chat is started.
type CreateChatResponse struct {
	ID string `json:"id"`
}

// ChatSummary is one entry of the recent chats list.
type ChatSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListChatsResponse lists recent chats, newest first.
type ListChatsResponse struct {
	Chats []ChatSummary `json:"chats"`
}

// MessageResponse is one chat message. HTML is only set for assistant messages.
type MessageResponse struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	HTML      string `json:"html,omitempty"`
}

// ChatHistoryResponse holds every message of a chat.
type ChatHistoryResponse struct {
	ID       string            `json:"id"`
	Messages []MessageResponse `json:"messages"`
}

// SendMessageRequest represents the HTTP request payload for a question.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// Citation is a retrieved passage the answer was grounded on.
type Citation struct {
	Rank     int     `json:"rank"`
	Position int     `json:"position"`
	Score    float32 `json:"score"`
	Text     string  `json:"text"`
}

// SendMessageResponse represents the HTTP response payload for a question.
type SendMessageResponse struct {
	Answer     string     `json:"answer"`
	AnswerHTML string     `json:"answer_html"`
	Timestamp  string     `json:"timestamp"`
	Citations  []Citation `json:"citations"`
	Title      string     `json:"title,omitempty"`
}

// Create starts a new chat.
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := h.chatService.NewSession(r.Context())
	writeJSON(w, http.StatusCreated, CreateChatResponse{ID: sess.ID})
}

// List returns recent chats. ?limit=n overrides the default count.
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid limit", "limit", raw)
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.chatService.RecentChats(ctx, limit)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list chats")
		return
	}

	resp := ListChatsResponse{Chats: make([]ChatSummary, 0, len(entries))}
	for _, e := range entries {
		resp.Chats = append(resp.Chats, ChatSummary{ID: e.ID, Title: e.Title})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns the messages of a chat. Unknown chats are empty.
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	messages, err := h.chatService.History(ctx, id)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load chat")
		return
	}

	resp := ChatHistoryResponse{ID: id, Messages: make([]MessageResponse, 0, len(messages))}
	for _, m := range messages {
		msg := MessageResponse{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp}
		if m.Role == chatstore.RoleAssistant {
			msg.HTML = renderMarkdown(m.Content)
		}
		resp.Messages = append(resp.Messages, msg)
	}
	writeJSON(w, http.StatusOK, resp)
}

// SendMessage answers a question within a chat.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	id := chi.URLParam(r, "id")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.chatService.OpenSession(ctx, id)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load chat")
		return
	}

	reply, err := h.chatService.Send(ctx, sess, req.Message)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to process chat request")
		return
	}

	resp := SendMessageResponse{
		Answer:     reply.Answer,
		AnswerHTML: renderMarkdown(reply.Answer),
		Timestamp:  reply.Timestamp,
		Citations:  make([]Citation, 0, len(reply.Passages)),
		Title:      reply.Title,
	}
	for _, p := range reply.Passages {
		resp.Citations = append(resp.Citations, Citation{Rank: p.Rank, Position: p.Position, Score: p.Score, Text: p.Text})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Clear removes every message of a chat but keeps its title.
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.chatService.OpenSession(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load chat")
		return
	}
	if err := h.chatService.Clear(ctx, sess); err != nil {
		handleServiceError(w, ctx, err, "Failed to clear chat")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a chat and its index entry.
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.chatService.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, ctx, err, "Failed to delete chat")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
