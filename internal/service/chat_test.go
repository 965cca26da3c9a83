package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"go.uber.org/mock/gomock"

	"medichat/internal/chatstore"
	"medichat/internal/index"
	"medichat/internal/indexer"
	"medichat/internal/pdfextract"
	"medichat/internal/rag"
	ragmocks "medichat/internal/rag/mocks"
	"medichat/internal/service"
	"medichat/internal/service/mocks"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testContext() context.Context {
	return context.Background()
}

var timestampPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

type fixture struct {
	chunker *mocks.MockDocumentChunker
	index   *mocks.MockIndexStore
	engine  *ragmocks.MockEngine
	store   *chatstore.Store
	svc     service.ChatService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		chunker: mocks.NewMockDocumentChunker(ctrl),
		index:   mocks.NewMockIndexStore(ctrl),
		engine:  ragmocks.NewMockEngine(ctrl),
		store:   chatstore.NewStore(t.TempDir()),
	}
	f.svc = service.NewChatService(f.chunker, f.index, f.engine, f.store, service.Options{})
	return f
}

// withIndex loads an index with the given chunks into the service.
func (f *fixture) withIndex(t *testing.T, chunks ...string) *index.Index {
	t.Helper()
	idx := &index.Index{Fingerprint: index.Fingerprint(chunks), Chunks: chunks, Collection: "medichat"}
	f.index.EXPECT().Load(gomock.Any()).Return(idx, nil)
	if err := f.svc.LoadIndex(testContext()); err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	return idx
}

func TestNewChatService(t *testing.T) {
	f := newFixture(t)
	if f.svc == nil {
		t.Fatal("NewChatService() returned nil")
	}
	if status := f.svc.IndexStatus(testContext()); status.Loaded {
		t.Error("IndexStatus().Loaded should be false before any index is loaded")
	}
}

func TestChatService_LoadIndex(t *testing.T) {
	tests := []struct {
		name       string
		loadErr    error
		wantErr    bool
		wantLoaded bool
	}{
		{name: "persisted index", wantLoaded: true},
		{name: "no index yet", loadErr: index.ErrNoIndex},
		{name: "backend failure", loadErr: fmt.Errorf("%w: disk", index.ErrIndexStorage), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			var idx *index.Index
			if tt.loadErr == nil {
				idx = &index.Index{Fingerprint: "abc", Chunks: []string{"one", "two"}}
			}
			f.index.EXPECT().Load(gomock.Any()).Return(idx, tt.loadErr)

			err := f.svc.LoadIndex(testContext())
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadIndex() error = %v, wantErr %v", err, tt.wantErr)
			}

			status := f.svc.IndexStatus(testContext())
			if status.Loaded != tt.wantLoaded {
				t.Errorf("IndexStatus().Loaded = %v, want %v", status.Loaded, tt.wantLoaded)
			}
			if tt.wantLoaded {
				if status.Chunks != 2 || status.Fingerprint != "abc" || status.Stats.Count != 2 {
					t.Errorf("IndexStatus() = %+v", status)
				}
			}
		})
	}
}

func TestChatService_Send_NoDocuments(t *testing.T) {
	f := newFixture(t)
	sess := f.svc.NewSession(testContext())

	_, err := f.svc.Send(testContext(), sess, "What is metformin?")
	if !errors.Is(err, service.ErrNoDocuments) {
		t.Fatalf("Send() error = %v, want ErrNoDocuments", err)
	}

	persisted, err := f.store.Load(testContext(), sess.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(persisted) != 1 || persisted[0].Role != chatstore.RoleUser {
		t.Errorf("persisted = %+v, want only the user message", persisted)
	}
}

func TestChatService_Send_Validation(t *testing.T) {
	f := newFixture(t)
	sess := f.svc.NewSession(testContext())

	for _, query := range []string{"", "   \n"} {
		_, err := f.svc.Send(testContext(), sess, query)

		var vErr *service.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Send(%q) error = %v, want ValidationError", query, err)
		}
		if vErr.Field != "message" {
			t.Errorf("ValidationError.Field = %s, want message", vErr.Field)
		}
	}

	if len(sess.Messages) != 0 {
		t.Errorf("invalid queries should not be recorded, got %d messages", len(sess.Messages))
	}
}

func TestChatService_Send_TitleOnce(t *testing.T) {
	f := newFixture(t)
	idx := f.withIndex(t, "Metformin is first-line therapy for type 2 diabetes.")
	sess := f.svc.NewSession(testContext())

	passages := []index.Passage{{Rank: 1, Text: idx.Chunks[0]}}
	f.index.EXPECT().Query(gomock.Any(), idx, gomock.Any(), 3).Return(passages, nil).Times(2)
	f.engine.EXPECT().
		Answer(gomock.Any(), gomock.Any(), gomock.Any(), passages).
		DoAndReturn(func(_ context.Context, query string, history []chatstore.Message, _ []index.Passage) (string, error) {
			last := history[len(history)-1]
			if last.Role != chatstore.RoleUser || last.Content != query {
				t.Errorf("history should end with the current question, got %+v", last)
			}
			return "Answer to: " + query, nil
		}).
		Times(2)
	f.engine.EXPECT().SummarizeTitle(gomock.Any(), gomock.Len(2)).Return("Metformin For Type 2 Diabetes", nil).Times(1)

	first, err := f.svc.Send(testContext(), sess, "What treats diabetes?")
	if err != nil {
		t.Fatalf("first Send() error = %v", err)
	}
	if first.Title != "Metformin For Type 2 Diabetes" {
		t.Errorf("first reply title = %q", first.Title)
	}
	if !timestampPattern.MatchString(first.Timestamp) {
		t.Errorf("timestamp = %q, want HH:MM", first.Timestamp)
	}

	second, err := f.svc.Send(testContext(), sess, "What about side effects?")
	if err != nil {
		t.Fatalf("second Send() error = %v", err)
	}
	if second.Title != "" {
		t.Errorf("second reply should not create a title, got %q", second.Title)
	}

	entries, err := f.store.ListIndex(testContext())
	if err != nil {
		t.Fatalf("ListIndex() error = %v", err)
	}
	if len(entries) != 1 || entries[0].ID != sess.ID {
		t.Errorf("chat index = %+v, want exactly one entry for %s", entries, sess.ID)
	}

	persisted, err := f.store.Load(testContext(), sess.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	wantRoles := []string{chatstore.RoleUser, chatstore.RoleAssistant, chatstore.RoleUser, chatstore.RoleAssistant}
	if len(persisted) != len(wantRoles) {
		t.Fatalf("persisted %d messages, want %d", len(persisted), len(wantRoles))
	}
	for i, role := range wantRoles {
		if persisted[i].Role != role {
			t.Errorf("message[%d].Role = %s, want %s", i, persisted[i].Role, role)
		}
		if !timestampPattern.MatchString(persisted[i].Timestamp) {
			t.Errorf("message[%d].Timestamp = %q, want HH:MM", i, persisted[i].Timestamp)
		}
	}
	if persisted[1].Content != "Answer to: What treats diabetes?" {
		t.Errorf("assistant content = %q", persisted[1].Content)
	}
}

func TestChatService_Send_TitleRetriedAfterFailure(t *testing.T) {
	f := newFixture(t)
	idx := f.withIndex(t, "chunk")
	sess := f.svc.NewSession(testContext())

	f.index.EXPECT().Query(gomock.Any(), idx, gomock.Any(), gomock.Any()).Return([]index.Passage{}, nil).Times(2)
	f.engine.EXPECT().Answer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("ok", nil).Times(2)
	gomock.InOrder(
		f.engine.EXPECT().SummarizeTitle(gomock.Any(), gomock.Any()).Return("", fmt.Errorf("%w: empty title", rag.ErrModel)),
		f.engine.EXPECT().SummarizeTitle(gomock.Any(), gomock.Any()).Return("Second Try Title Works Fine", nil),
	)

	first, err := f.svc.Send(testContext(), sess, "one")
	if err != nil {
		t.Fatalf("Send() error = %v, title failures should not fail the exchange", err)
	}
	if first.Title != "" {
		t.Errorf("first title = %q, want empty", first.Title)
	}
	if has, _ := f.store.HasIndexEntry(testContext(), sess.ID); has {
		t.Error("failed title should not create an index entry")
	}

	second, err := f.svc.Send(testContext(), sess, "two")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if second.Title != "Second Try Title Works Fine" {
		t.Errorf("second title = %q", second.Title)
	}
}

func TestChatService_Send_Failures(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(f *fixture, idx *index.Index)
		wantErr   error
	}{
		{
			name: "model failure",
			mockSetup: func(f *fixture, idx *index.Index) {
				f.index.EXPECT().Query(gomock.Any(), idx, gomock.Any(), gomock.Any()).Return([]index.Passage{{Rank: 1, Text: "x"}}, nil)
				f.engine.EXPECT().Answer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("", fmt.Errorf("%w: bad status 503", rag.ErrModel))
			},
			wantErr: rag.ErrModel,
		},
		{
			name: "embedding provider failure",
			mockSetup: func(f *fixture, idx *index.Index) {
				f.index.EXPECT().Query(gomock.Any(), idx, gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: connection refused", index.ErrProvider))
			},
			wantErr: index.ErrProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			idx := f.withIndex(t, "x")
			sess := f.svc.NewSession(testContext())
			tt.mockSetup(f, idx)

			_, err := f.svc.Send(testContext(), sess, "question")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Send() error = %v, want %v", err, tt.wantErr)
			}

			persisted, err := f.store.Load(testContext(), sess.ID)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(persisted) != 1 || persisted[0].Role != chatstore.RoleUser || persisted[0].Content != "question" {
				t.Errorf("persisted = %+v, want only the user message", persisted)
			}
			if has, _ := f.store.HasIndexEntry(testContext(), sess.ID); has {
				t.Error("failed exchange should not create an index entry")
			}
		})
	}
}

func TestChatService_ProcessDocuments_MergesWithLoadedIndex(t *testing.T) {
	f := newFixture(t)

	first := &index.Index{Fingerprint: index.Fingerprint([]string{"a", "b"}), Chunks: []string{"a", "b"}}
	merged := &index.Index{Fingerprint: index.Fingerprint([]string{"a", "b", "c"}), Chunks: []string{"a", "b", "c"}}

	gomock.InOrder(
		f.chunker.EXPECT().ChunkDocuments(gomock.Any(), gomock.Len(1)).
			Return(&indexer.Result{Chunks: []string{"a", "b"}, Files: []indexer.FileResult{{Name: "one.pdf", Chunks: 2}}}, nil),
		f.index.EXPECT().BuildOrReuse(gomock.Any(), []string{"a", "b"}).Return(first, false, nil),
		f.chunker.EXPECT().ChunkDocuments(gomock.Any(), gomock.Len(1)).
			Return(&indexer.Result{Chunks: []string{"c"}, Files: []indexer.FileResult{{Name: "two.pdf", Chunks: 1}}}, nil),
		f.index.EXPECT().BuildOrReuse(gomock.Any(), []string{"a", "b", "c"}).Return(merged, false, nil),
	)

	res, err := f.svc.ProcessDocuments(testContext(), []service.Upload{{Name: "one.pdf", Data: []byte("%PDF")}})
	if err != nil {
		t.Fatalf("ProcessDocuments() error = %v", err)
	}
	if res.NewChunks != 2 || res.TotalChunks != 2 {
		t.Errorf("first result = %+v", res)
	}

	res, err = f.svc.ProcessDocuments(testContext(), []service.Upload{{Name: "two.pdf", Data: []byte("%PDF")}})
	if err != nil {
		t.Fatalf("ProcessDocuments() error = %v", err)
	}
	if res.NewChunks != 1 || res.TotalChunks != 3 || res.Fingerprint != merged.Fingerprint {
		t.Errorf("second result = %+v", res)
	}

	if status := f.svc.IndexStatus(testContext()); status.Chunks != 3 {
		t.Errorf("IndexStatus().Chunks = %d, want 3", status.Chunks)
	}
}

func TestChatService_ProcessDocuments(t *testing.T) {
	extractErr := fmt.Errorf("failed to extract scan.pdf: %w", pdfextract.ErrExtraction)

	tests := []struct {
		name         string
		uploads      []service.Upload
		mockSetup    func(f *fixture)
		wantErr      error
		wantFailures int
		wantReused   bool
	}{
		{
			name:    "no files",
			uploads: nil,
			wantErr: service.ErrInvalidInput,
		},
		{
			name:    "every file fails extraction",
			uploads: []service.Upload{{Name: "scan.pdf"}},
			mockSetup: func(f *fixture) {
				f.chunker.EXPECT().ChunkDocuments(gomock.Any(), gomock.Any()).
					Return(&indexer.Result{Chunks: []string{}, Files: []indexer.FileResult{{Name: "scan.pdf", Err: extractErr}}}, nil)
			},
			wantErr:      pdfextract.ErrExtraction,
			wantFailures: 1,
		},
		{
			name:    "partial failure still indexes",
			uploads: []service.Upload{{Name: "scan.pdf"}, {Name: "guide.pdf"}},
			mockSetup: func(f *fixture) {
				f.chunker.EXPECT().ChunkDocuments(gomock.Any(), gomock.Any()).
					Return(&indexer.Result{
						Chunks: []string{"guide"},
						Files:  []indexer.FileResult{{Name: "scan.pdf", Err: extractErr}, {Name: "guide.pdf", Chunks: 1}},
					}, nil)
				f.index.EXPECT().BuildOrReuse(gomock.Any(), []string{"guide"}).
					Return(&index.Index{Fingerprint: "f", Chunks: []string{"guide"}}, true, nil)
			},
			wantFailures: 1,
			wantReused:   true,
		},
		{
			name:    "provider failure",
			uploads: []service.Upload{{Name: "guide.pdf"}},
			mockSetup: func(f *fixture) {
				f.chunker.EXPECT().ChunkDocuments(gomock.Any(), gomock.Any()).
					Return(&indexer.Result{Chunks: []string{"guide"}, Files: []indexer.FileResult{{Name: "guide.pdf", Chunks: 1}}}, nil)
				f.index.EXPECT().BuildOrReuse(gomock.Any(), gomock.Any()).
					Return(nil, false, fmt.Errorf("%w: timeout", index.ErrProvider))
			},
			wantErr: index.ErrProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.mockSetup != nil {
				tt.mockSetup(f)
			}

			res, err := f.svc.ProcessDocuments(testContext(), tt.uploads)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ProcessDocuments() error = %v, want %v", err, tt.wantErr)
				}
				if f.svc.IndexStatus(testContext()).Loaded {
					t.Error("failed processing should not load an index")
				}
			} else if err != nil {
				t.Fatalf("ProcessDocuments() error = %v", err)
			}

			if got := len(res.Failures()); got != tt.wantFailures {
				t.Errorf("Failures() = %d, want %d", got, tt.wantFailures)
			}
			if res.Reused != tt.wantReused {
				t.Errorf("Reused = %v, want %v", res.Reused, tt.wantReused)
			}
		})
	}
}

func TestChatService_OpenSession_Restart(t *testing.T) {
	dir := t.TempDir()
	store := chatstore.NewStore(dir)
	if err := store.Save(testContext(), "abc", []chatstore.Message{
		{Role: chatstore.RoleUser, Content: "hi", Timestamp: "10:00"},
		{Role: chatstore.RoleAssistant, Content: "hello", Timestamp: "10:00"},
	}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	ctrl := gomock.NewController(t)
	svc := service.NewChatService(
		mocks.NewMockDocumentChunker(ctrl),
		mocks.NewMockIndexStore(ctrl),
		ragmocks.NewMockEngine(ctrl),
		chatstore.NewStore(dir),
		service.Options{},
	)

	sess, err := svc.OpenSession(testContext(), "abc")
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	if len(sess.Messages) != 2 || sess.Messages[0].Content != "hi" || sess.Messages[1].Content != "hello" {
		t.Errorf("OpenSession() messages = %+v", sess.Messages)
	}

	again, err := svc.OpenSession(testContext(), "abc")
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	if again != sess {
		t.Error("OpenSession() should return the same session for the same id")
	}

	if _, err := svc.OpenSession(testContext(), "../x"); !errors.Is(err, chatstore.ErrInvalidID) {
		t.Errorf("OpenSession() with bad id error = %v, want ErrInvalidID", err)
	}
}

func TestChatService_ClearAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	sess, err := f.svc.OpenSession(ctx, "abc")
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	sess.Messages = append(sess.Messages, chatstore.Message{Role: chatstore.RoleUser, Content: "hi", Timestamp: "10:00"})
	if err := f.store.Save(ctx, "abc", sess.Messages); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := f.store.AppendIndexEntry(ctx, chatstore.IndexEntry{ID: "abc", Title: "Greeting"}); err != nil {
		t.Fatalf("AppendIndexEntry() error = %v", err)
	}

	if err := f.svc.Clear(ctx, sess); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	history, err := f.svc.History(ctx, "abc")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 0 {
		t.Errorf("History() after Clear() = %+v, want empty", history)
	}
	if has, _ := f.store.HasIndexEntry(ctx, "abc"); !has {
		t.Error("Clear() should keep the index entry")
	}

	if err := f.svc.Delete(ctx, "abc"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if has, _ := f.store.HasIndexEntry(ctx, "abc"); has {
		t.Error("Delete() should remove the index entry")
	}

	reopened, err := f.svc.OpenSession(ctx, "abc")
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	if reopened == sess {
		t.Error("Delete() should drop the cached session")
	}
}

func TestChatService_RecentChats(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()

	for i := 0; i < 7; i++ {
		id := fmt.Sprintf("chat-%d", i)
		if err := f.store.AppendIndexEntry(ctx, chatstore.IndexEntry{ID: id, Title: id}); err != nil {
			t.Fatalf("AppendIndexEntry() error = %v", err)
		}
	}

	recent, err := f.svc.RecentChats(ctx, 0)
	if err != nil {
		t.Fatalf("RecentChats() error = %v", err)
	}
	if len(recent) != service.DefaultRecentChats {
		t.Fatalf("RecentChats() returned %d, want %d", len(recent), service.DefaultRecentChats)
	}
	if recent[0].ID != "chat-6" || recent[4].ID != "chat-2" {
		t.Errorf("RecentChats() = %+v, want newest first", recent)
	}

	two, err := f.svc.RecentChats(ctx, 2)
	if err != nil {
		t.Fatalf("RecentChats() error = %v", err)
	}
	if len(two) != 2 {
		t.Errorf("RecentChats(2) returned %d", len(two))
	}
}
