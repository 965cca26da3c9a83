package chatstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_session_store.go -package=mocks medichat/internal/chatstore SessionStore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"medichat/internal/contextutil"
)

// IndexFileName is the chat index file inside the memory directory.
const IndexFileName = "chat_index.json"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrStorage is returned when chat files cannot be read or written.
	ErrStorage = errors.New("chat storage error")
	// ErrInvalidID is returned for session ids that are unsafe to use in file names.
	ErrInvalidID = errors.New("invalid chat id")
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Message is one chat message as persisted on disk.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"` // HH:MM
}

// IndexEntry is one titled chat in the chat index.
type IndexEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SessionStore persists chat sessions and the chat index.
type SessionStore interface {
	ListIndex(ctx context.Context) ([]IndexEntry, error)
	Recent(ctx context.Context, n int) ([]IndexEntry, error)
	HasIndexEntry(ctx context.Context, id string) (bool, error)
	AppendIndexEntry(ctx context.Context, entry IndexEntry) error
	Load(ctx context.Context, id string) ([]Message, error)
	Save(ctx context.Context, id string, messages []Message) error
	Delete(ctx context.Context, id string) error
}

// Store keeps one JSON file per session plus the chat index in dir.
type Store struct {
	dir    string
	mu     sync.Mutex // guards the index file
	logger *slog.Logger
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		logger: slog.Default(),
	}
}

func (s *Store) getLogger(ctx context.Context) *slog.Logger {
	return contextutil.LoggerOr(ctx, s.logger)
}

// ValidateID reports whether id may be used as a session id.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// SessionPath returns the file holding the messages of session id.
func (s *Store) SessionPath(id string) string {
	return filepath.Join(s.dir, "chat_"+id+".json")
}

// IndexPath returns the chat index file.
func (s *Store) IndexPath() string {
	return filepath.Join(s.dir, IndexFileName)
}

// ListIndex returns all index entries in creation order.
// A missing index file is an empty index.
func (s *Store) ListIndex(ctx context.Context) ([]IndexEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readIndex()
}

// Recent returns the last n index entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]IndexEntry, error) {
	entries, err := s.ListIndex(ctx)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []IndexEntry{}, nil
	}

	start := max(len(entries)-n, 0)
	recent := make([]IndexEntry, 0, len(entries)-start)
	for i := len(entries) - 1; i >= start; i-- {
		recent = append(recent, entries[i])
	}
	return recent, nil
}

// HasIndexEntry reports whether id already has an index entry.
func (s *Store) HasIndexEntry(ctx context.Context, id string) (bool, error) {
	entries, err := s.ListIndex(ctx)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// AppendIndexEntry adds entry at the end of the index. It does not check for
// an existing entry with the same id; callers use HasIndexEntry first.
func (s *Store) AppendIndexEntry(ctx context.Context, entry IndexEntry) error {
	if err := ValidateID(entry.ID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readIndex()
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	if err := s.writeJSON(s.IndexPath(), entries); err != nil {
		return err
	}

	s.getLogger(ctx).InfoContext(ctx, "added chat to index", "chat_id", entry.ID, "title", entry.Title)
	return nil
}

// Load returns the messages of session id. A missing file is an empty session.
func (s *Store) Load(ctx context.Context, id string) ([]Message, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	messages := []Message{}
	if err := s.readJSON(s.SessionPath(id), &messages); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Message{}, nil
		}
		return nil, err
	}
	if messages == nil {
		messages = []Message{}
	}
	return messages, nil
}

// Save overwrites the messages of session id atomically.
func (s *Store) Save(ctx context.Context, id string, messages []Message) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if messages == nil {
		messages = []Message{}
	}
	if err := s.writeJSON(s.SessionPath(id), messages); err != nil {
		return err
	}

	s.getLogger(ctx).DebugContext(ctx, "saved chat", "chat_id", id, "messages", len(messages))
	return nil
}

// Delete removes the session file and its index entry. Deleting an unknown
// session is a no-op and leaves the index file untouched.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	if err := os.Remove(s.SessionPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: failed to remove chat file: %w", ErrStorage, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readIndex()
	if err != nil {
		return err
	}

	kept := make([]IndexEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}

	if err := s.writeJSON(s.IndexPath(), kept); err != nil {
		return err
	}

	s.getLogger(ctx).InfoContext(ctx, "deleted chat", "chat_id", id)
	return nil
}

// readIndex must be called with mu held.
func (s *Store) readIndex() ([]IndexEntry, error) {
	entries := []IndexEntry{}
	if err := s.readJSON(s.IndexPath(), &entries); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []IndexEntry{}, nil
		}
		return nil, err
	}
	if entries == nil {
		entries = []IndexEntry{}
	}
	return entries, nil
}

// readJSON returns os.ErrNotExist unwrapped so callers can treat a missing file as empty.
func (s *Store) readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return os.ErrNotExist
	}
	if err != nil {
		return fmt.Errorf("%w: failed to read %s: %w", ErrStorage, filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %w", ErrStorage, filepath.Base(path), err)
	}
	return nil
}

// writeJSON writes v with 2-space indentation via temp file + rename.
func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %w", ErrStorage, filepath.Base(path), err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create chat directory: %w", ErrStorage, err)
	}

	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %w", ErrStorage, err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: failed to write %s: %w", ErrStorage, filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", ErrStorage, filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: failed to replace %s: %w", ErrStorage, filepath.Base(path), err)
	}
	return nil
}
