package vectorstore

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/qdrant/go-client/qdrant"

	"medichat/internal/contextutil"
)

func TestGRPCEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		wantHost string
		wantPort int
	}{
		{
			name:     "default http port",
			urlStr:   "http://localhost:6333",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "custom port",
			urlStr:   "http://qdrant.internal:9000",
			wantHost: "qdrant.internal",
			wantPort: 9001,
		},
		{
			name:     "no port",
			urlStr:   "http://localhost",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "no hostname",
			urlStr:   "http://:6333",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:    "invalid URL",
			urlStr:  "://invalid",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := grpcEndpoint(tt.urlStr)
			if tt.wantErr {
				if err == nil {
					t.Error("grpcEndpoint() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("grpcEndpoint() error = %v", err)
			}
			if host != tt.wantHost {
				t.Errorf("host = %v, want %v", host, tt.wantHost)
			}
			if port != tt.wantPort {
				t.Errorf("port = %v, want %v", port, tt.wantPort)
			}
		})
	}
}

func TestNewQdrantStore_InvalidURL(t *testing.T) {
	if _, err := NewQdrantStore("://invalid"); err == nil {
		t.Error("NewQdrantStore() with invalid URL should return error")
	}
}

func TestQdrantStore_getLogger(t *testing.T) {
	store := &QdrantStore{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	if got := store.getLogger(context.Background()); got != store.logger {
		t.Error("getLogger() should return store logger when context has no logger")
	}

	reqLogger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	ctx := contextutil.WithLogger(context.Background(), reqLogger)
	if got := store.getLogger(ctx); got != reqLogger {
		t.Error("getLogger() should prefer the context logger")
	}
}

func TestQdrantStore_Search_InvalidK(t *testing.T) {
	store := &QdrantStore{logger: slog.Default()}

	for _, k := range []int{0, -1} {
		if _, err := store.Search(context.Background(), "medichat", []float32{1.0, 2.0}, k); err == nil {
			t.Errorf("Search() with k=%d should return error", k)
		}
	}
}

func TestToQdrantPoints_PayloadRoundTrip(t *testing.T) {
	points := toQdrantPoints([]Point{
		{ID: "5f2b6c2e-8d0c-4a43-9a55-2d7f0f2f4b11", Position: 7, Text: "Metformin is first-line.", Vec: []float32{0.1, 0.2}},
	})
	if len(points) != 1 {
		t.Fatalf("toQdrantPoints() returned %d points, want 1", len(points))
	}

	text, position := payloadFields(points[0].Payload)
	if text != "Metformin is first-line." {
		t.Errorf("payload text = %q", text)
	}
	if position != 7 {
		t.Errorf("payload position = %d, want 7", position)
	}
	if got := pointID(points[0].Id); got != "5f2b6c2e-8d0c-4a43-9a55-2d7f0f2f4b11" {
		t.Errorf("pointID() = %q", got)
	}
}

func TestPointID(t *testing.T) {
	if got := pointID(nil); got != "" {
		t.Errorf("pointID(nil) = %q, want empty", got)
	}
	if got := pointID(qdrant.NewIDNum(42)); got != "42" {
		t.Errorf("pointID(num) = %q, want 42", got)
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	result := convertPayloadToMap(nil)
	if result == nil {
		t.Error("convertPayloadToMap() should return empty map, not nil")
	}
	if len(result) != 0 {
		t.Errorf("convertPayloadToMap() with nil should return empty map, got %d items", len(result))
	}

	payload := qdrant.NewValueMap(map[string]any{
		"text":  "x",
		"score": 0.5,
	})
	got := convertPayloadToMap(payload)
	if got["text"] != "x" || got["score"] != 0.5 {
		t.Errorf("convertPayloadToMap() = %v", got)
	}
}
