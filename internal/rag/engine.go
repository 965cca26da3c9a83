package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks medichat/internal/rag LLMClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks medichat/internal/rag Engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"medichat/internal/chatstore"
	"medichat/internal/contextutil"
	"medichat/internal/index"
	"medichat/internal/llm"
)

const (
	// DefaultHistoryWindow is the number of trailing messages included in answer prompts.
	DefaultHistoryWindow = 12
	// DefaultTitleWindow is the number of trailing messages used to title a chat.
	DefaultTitleWindow = 8
	// DefaultTemperature is the sampling temperature for every model call.
	DefaultTemperature float32 = 0.7
)

// ErrModel is returned when the hosted chat model fails or returns nothing usable.
var ErrModel = errors.New("chat model error")

// LLMClient sends a single prompt to a chat model.
type LLMClient interface {
	Complete(ctx context.Context, prompt string, params llm.ChatParams) (string, error)
}

// Engine answers questions grounded in retrieved passages and titles chats.
type Engine interface {
	// Answer asks the model to answer query from retrieved, using the trailing history.
	Answer(ctx context.Context, query string, history []chatstore.Message, retrieved []index.Passage) (string, error)
	// SummarizeTitle produces a short title for a conversation.
	SummarizeTitle(ctx context.Context, history []chatstore.Message) (string, error)
}

// Options tune the engine. Zero values fall back to the defaults.
type Options struct {
	Model         string
	Temperature   float32
	HistoryWindow int
	TitleWindow   int
}

type ragEngine struct {
	client LLMClient
	opts   Options
	logger *slog.Logger
}

// NewEngine creates an answering engine on top of client.
func NewEngine(client LLMClient, opts Options) Engine {
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = DefaultHistoryWindow
	}
	if opts.TitleWindow <= 0 {
		opts.TitleWindow = DefaultTitleWindow
	}
	return &ragEngine{
		client: client,
		opts:   opts,
		logger: slog.Default(),
	}
}

func (e *ragEngine) getLogger(ctx context.Context) *slog.Logger {
	return contextutil.LoggerOr(ctx, e.logger)
}

func (e *ragEngine) params() llm.ChatParams {
	return llm.ChatParams{
		Model:       e.opts.Model, // empty uses the client default
		Temperature: e.opts.Temperature,
	}
}

// Answer builds the grounding prompt and sends it to the model.
func (e *ragEngine) Answer(ctx context.Context, query string, history []chatstore.Message, retrieved []index.Passage) (string, error) {
	logger := e.getLogger(ctx)

	prompt := BuildPrompt(query, history, retrieved, e.opts.HistoryWindow)

	logger.InfoContext(ctx, "sending request to LLM",
		"query_length", len(query),
		"history_messages", min(len(history), e.opts.HistoryWindow),
		"passages", len(retrieved),
		"prompt_length", len(prompt),
	)
	logger.DebugContext(ctx, "LLM prompt", "prompt", prompt)

	answer, err := e.client.Complete(ctx, prompt, e.params())
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		return "", fmt.Errorf("%w: %w", ErrModel, err)
	}

	logger.InfoContext(ctx, "received LLM response", "answer_length", len(answer))
	return answer, nil
}

// SummarizeTitle asks the model for a 5-7 word title.
func (e *ragEngine) SummarizeTitle(ctx context.Context, history []chatstore.Message) (string, error) {
	prompt := BuildTitlePrompt(history, e.opts.TitleWindow)

	raw, err := e.client.Complete(ctx, prompt, e.params())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrModel, err)
	}

	title := cleanTitle(raw)
	if title == "" {
		return "", fmt.Errorf("%w: empty title", ErrModel)
	}

	e.getLogger(ctx).DebugContext(ctx, "generated chat title", "title", title)
	return title, nil
}

// BuildPrompt assembles the answer prompt. The output depends only on its
// arguments: the last window messages of history as "ROLE: content" lines and
// the passages joined by blank lines in ranking order.
func BuildPrompt(query string, history []chatstore.Message, retrieved []index.Passage, window int) string {
	lines := make([]string, 0, window)
	for _, m := range tail(history, window) {
		lines = append(lines, strings.ToUpper(m.Role)+": "+m.Content)
	}

	docs := make([]string, len(retrieved))
	for i, p := range retrieved {
		docs[i] = p.Text
	}

	var b strings.Builder
	b.WriteString("You are MediChat Pro, an intelligent medical document assistant.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Use ALL relevant conversation context.\n")
	b.WriteString("- Answer strictly from the provided medical documents.\n")
	b.WriteString("- Be medically accurate and clear.\n")
	b.WriteString("- If information is missing, explicitly say so.\n")
	b.WriteString("- Do not hallucinate.\n\n")
	b.WriteString("Conversation History:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nMedical Documents:\n")
	b.WriteString(strings.Join(docs, "\n\n"))
	b.WriteString("\n\nUser Question:\n")
	b.WriteString(query)
	b.WriteString("\n\nProvide a detailed, helpful answer:")
	return b.String()
}

// BuildTitlePrompt assembles the title prompt from the last window messages.
func BuildTitlePrompt(history []chatstore.Message, window int) string {
	lines := make([]string, 0, window)
	for _, m := range tail(history, window) {
		lines = append(lines, m.Role+": "+m.Content)
	}

	var b strings.Builder
	b.WriteString("Create a short, clear title (5–7 words) summarizing this medical conversation.\n")
	b.WriteString("Do not use quotes.\n\n")
	b.WriteString("Conversation:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nTitle:")
	return b.String()
}

func tail(messages []chatstore.Message, n int) []chatstore.Message {
	if n <= 0 {
		return nil
	}
	if len(messages) > n {
		return messages[len(messages)-n:]
	}
	return messages
}

func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.TrimSpace(strings.Trim(title, "\"'“”‘’"))
	return title
}
