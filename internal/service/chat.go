package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_chunker.go -package=mocks medichat/internal/service DocumentChunker
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_index_store.go -package=mocks medichat/internal/service IndexStore
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService medichat/internal/service ChatService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"medichat/internal/chatstore"
	"medichat/internal/contextutil"
	"medichat/internal/index"
	"medichat/internal/indexer"
	"medichat/internal/rag"
)

// TimestampLayout formats message timestamps as HH:MM.
const TimestampLayout = "15:04"

const (
	DefaultRetrievalK  = 3
	DefaultRecentChats = 5
)

// DocumentChunker turns uploaded documents into chunk texts.
type DocumentChunker interface {
	ChunkDocuments(ctx context.Context, docs []indexer.Document) (*indexer.Result, error)
}

// IndexStore builds, reopens and queries the persisted vector index.
type IndexStore interface {
	BuildOrReuse(ctx context.Context, chunks []string) (*index.Index, bool, error)
	Load(ctx context.Context) (*index.Index, error)
	Query(ctx context.Context, idx *index.Index, text string, k int) ([]index.Passage, error)
}

// Upload is one uploaded file.
type Upload = indexer.Document

// Session is the explicit context of one conversation.
type Session struct {
	ID       string
	Messages []chatstore.Message
}

// IngestResult summarizes a ProcessDocuments call.
type IngestResult struct {
	Files       []indexer.FileResult
	NewChunks   int
	TotalChunks int
	Reused      bool
	Fingerprint string
}

// Failures returns the files that could not be extracted.
func (r IngestResult) Failures() []indexer.FileResult {
	var failed []indexer.FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Reply is the outcome of one exchange.
type Reply struct {
	Answer    string
	Timestamp string
	Passages  []index.Passage
	// Title is set when this exchange created the chat index entry.
	Title string
}

// IndexStatus describes the currently loaded index.
type IndexStatus struct {
	Loaded      bool
	Fingerprint string
	Chunks      int
	Stats       indexer.ChunkStats
}

// ChatService runs the upload and question flows over chat sessions.
type ChatService interface {
	// LoadIndex reopens the persisted index, if any.
	LoadIndex(ctx context.Context) error
	// IndexStatus reports the loaded index.
	IndexStatus(ctx context.Context) IndexStatus
	// ProcessDocuments extracts, chunks and indexes uploads on top of the loaded index.
	ProcessDocuments(ctx context.Context, uploads []Upload) (IngestResult, error)

	// NewSession starts an empty conversation with a fresh id.
	NewSession(ctx context.Context) *Session
	// OpenSession returns the conversation with the given id, loading it from disk when needed.
	OpenSession(ctx context.Context, id string) (*Session, error)
	// History returns a copy of the messages of a conversation.
	History(ctx context.Context, id string) ([]chatstore.Message, error)
	// Send answers query in sess and persists both messages.
	Send(ctx context.Context, sess *Session, query string) (Reply, error)
	// Clear empties a conversation.
	Clear(ctx context.Context, sess *Session) error
	// Delete removes a conversation and its index entry.
	Delete(ctx context.Context, id string) error
	// RecentChats returns the newest titled chats first.
	RecentChats(ctx context.Context, limit int) ([]chatstore.IndexEntry, error)
}

// Options tune the chat service. Zero values fall back to the defaults.
type Options struct {
	RetrievalK  int
	RecentChats int
}

type chatService struct {
	chunker DocumentChunker
	index   IndexStore
	engine  rag.Engine
	store   chatstore.SessionStore
	opts    Options

	// mu serializes every mutation of idx, sessions and the persisted state.
	mu       sync.Mutex
	idx      *index.Index
	sessions map[string]*Session

	now    func() time.Time
	logger *slog.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(
	chunker DocumentChunker,
	indexStore IndexStore,
	engine rag.Engine,
	store chatstore.SessionStore,
	opts Options,
) ChatService {
	if opts.RetrievalK <= 0 {
		opts.RetrievalK = DefaultRetrievalK
	}
	if opts.RecentChats <= 0 {
		opts.RecentChats = DefaultRecentChats
	}
	return &chatService{
		chunker:  chunker,
		index:    indexStore,
		engine:   engine,
		store:    store,
		opts:     opts,
		sessions: make(map[string]*Session),
		now:      time.Now,
		logger:   slog.Default(),
	}
}

func (s *chatService) getLogger(ctx context.Context) *slog.Logger {
	return contextutil.LoggerOr(ctx, s.logger)
}

// LoadIndex reopens the persisted index. A missing index is not an error.
func (s *chatService) LoadIndex(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.index.Load(ctx)
	if errors.Is(err, index.ErrNoIndex) {
		s.getLogger(ctx).InfoContext(ctx, "no persisted index, upload documents to start")
		s.idx = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	s.idx = idx
	s.getLogger(ctx).InfoContext(ctx, "loaded persisted index", "fingerprint", idx.Fingerprint, "chunks", idx.Len())
	return nil
}

func (s *chatService) IndexStatus(ctx context.Context) IndexStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idx == nil {
		return IndexStatus{}
	}
	return IndexStatus{
		Loaded:      true,
		Fingerprint: s.idx.Fingerprint,
		Chunks:      s.idx.Len(),
		Stats:       indexer.ComputeChunkStats(s.idx.Chunks),
	}
}

// ProcessDocuments chunks uploads and rebuilds the index over the previously
// indexed chunks followed by the new ones. Files that fail extraction are
// reported in the result; the others are still indexed.
func (s *chatService) ProcessDocuments(ctx context.Context, uploads []Upload) (IngestResult, error) {
	logger := s.getLogger(ctx)

	if len(uploads) == 0 {
		return IngestResult{}, &ValidationError{Field: "files", Message: "at least one file is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	chunked, err := s.chunker.ChunkDocuments(ctx, uploads)
	if err != nil {
		return IngestResult{}, WrapError(err, "failed to chunk documents")
	}

	result := IngestResult{
		Files:     chunked.Files,
		NewChunks: len(chunked.Chunks),
	}

	if len(chunked.Chunks) == 0 {
		if failures := chunked.Failures(); len(failures) > 0 {
			return result, failures[0].Err
		}
		return result, index.ErrEmptyCorpus
	}

	var merged []string
	if s.idx != nil {
		merged = make([]string, 0, s.idx.Len()+len(chunked.Chunks))
		merged = append(merged, s.idx.Chunks...)
	}
	merged = append(merged, chunked.Chunks...)

	idx, reused, err := s.index.BuildOrReuse(ctx, merged)
	if err != nil {
		logger.ErrorContext(ctx, "failed to build index", "chunks", len(merged), "error", err)
		return result, WrapError(err, "failed to build index")
	}

	s.idx = idx
	result.TotalChunks = idx.Len()
	result.Reused = reused
	result.Fingerprint = idx.Fingerprint

	logger.InfoContext(ctx, "documents processed",
		"files", len(uploads),
		"failed", len(chunked.Failures()),
		"new_chunks", result.NewChunks,
		"total_chunks", result.TotalChunks,
		"reused", reused,
	)
	return result, nil
}

func (s *chatService) NewSession(ctx context.Context) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{ID: uuid.NewString(), Messages: []chatstore.Message{}}
	s.sessions[sess.ID] = sess
	return sess
}

func (s *chatService) OpenSession(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked(ctx, id)
}

func (s *chatService) openLocked(ctx context.Context, id string) (*Session, error) {
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}

	messages, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	sess := &Session{ID: id, Messages: messages}
	s.sessions[id] = sess
	return sess, nil
}

func (s *chatService) History(ctx context.Context, id string) ([]chatstore.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.openLocked(ctx, id)
	if err != nil {
		return nil, err
	}
	return append([]chatstore.Message{}, sess.Messages...), nil
}

// Send runs one exchange. The user message is persisted before retrieval, so
// it survives every later failure; the assistant message is only appended on
// success. The chat is titled after its first completed exchange.
func (s *chatService) Send(ctx context.Context, sess *Session, query string) (Reply, error) {
	logger := s.getLogger(ctx)

	if sess == nil {
		return Reply{}, &ValidationError{Field: "chat", Message: "session is required"}
	}
	if strings.TrimSpace(query) == "" {
		logger.WarnContext(ctx, "empty message in chat request")
		return Reply{}, &ValidationError{Field: "message", Message: "cannot be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	timestamp := s.now().Format(TimestampLayout)

	sess.Messages = append(sess.Messages, chatstore.Message{
		Role:      chatstore.RoleUser,
		Content:   query,
		Timestamp: timestamp,
	})
	if err := s.store.Save(ctx, sess.ID, sess.Messages); err != nil {
		return Reply{}, WrapError(err, "failed to save user message")
	}

	if s.idx == nil {
		logger.WarnContext(ctx, "question sent before documents were processed", "chat_id", sess.ID)
		return Reply{}, ErrNoDocuments
	}

	passages, err := s.index.Query(ctx, s.idx, query, s.opts.RetrievalK)
	if err != nil {
		logger.ErrorContext(ctx, "failed to retrieve passages", "chat_id", sess.ID, "error", err)
		return Reply{}, WrapError(err, "failed to retrieve passages")
	}

	answer, err := s.engine.Answer(ctx, query, sess.Messages, passages)
	if err != nil {
		return Reply{}, WrapError(err, "failed to answer")
	}

	sess.Messages = append(sess.Messages, chatstore.Message{
		Role:      chatstore.RoleAssistant,
		Content:   answer,
		Timestamp: timestamp,
	})
	if err := s.store.Save(ctx, sess.ID, sess.Messages); err != nil {
		return Reply{}, WrapError(err, "failed to save assistant message")
	}

	reply := Reply{
		Answer:    answer,
		Timestamp: timestamp,
		Passages:  passages,
		Title:     s.titleOnce(ctx, sess),
	}

	logger.InfoContext(ctx, "chat request processed successfully",
		"chat_id", sess.ID,
		"message_length", len(query),
		"reply_length", len(answer),
		"passages", len(passages),
	)
	return reply, nil
}

// titleOnce creates the chat index entry if there is none yet. Failures are
// logged; without an entry the next exchange tries again.
func (s *chatService) titleOnce(ctx context.Context, sess *Session) string {
	logger := s.getLogger(ctx)

	has, err := s.store.HasIndexEntry(ctx, sess.ID)
	if err != nil {
		logger.WarnContext(ctx, "failed to read chat index", "chat_id", sess.ID, "error", err)
		return ""
	}
	if has {
		return ""
	}

	title, err := s.engine.SummarizeTitle(ctx, sess.Messages)
	if err != nil {
		logger.WarnContext(ctx, "failed to generate chat title", "chat_id", sess.ID, "error", err)
		return ""
	}

	if err := s.store.AppendIndexEntry(ctx, chatstore.IndexEntry{ID: sess.ID, Title: title}); err != nil {
		logger.WarnContext(ctx, "failed to save chat title", "chat_id", sess.ID, "error", err)
		return ""
	}
	return title
}

func (s *chatService) Clear(ctx context.Context, sess *Session) error {
	if sess == nil {
		return &ValidationError{Field: "chat", Message: "session is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess.Messages = []chatstore.Message{}
	if err := s.store.Save(ctx, sess.ID, sess.Messages); err != nil {
		return WrapError(err, "failed to clear chat")
	}

	s.getLogger(ctx).InfoContext(ctx, "cleared chat", "chat_id", sess.ID)
	return nil
}

func (s *chatService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return WrapError(err, "failed to delete chat")
	}
	delete(s.sessions, id)
	return nil
}

func (s *chatService) RecentChats(ctx context.Context, limit int) ([]chatstore.IndexEntry, error) {
	if limit <= 0 {
		limit = s.opts.RecentChats
	}
	entries, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, WrapError(err, "failed to list chats")
	}
	return entries, nil
}
