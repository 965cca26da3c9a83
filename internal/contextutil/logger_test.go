package contextutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestLoggerFromContext(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name string
		ctx  context.Context
		want *slog.Logger
	}{
		{name: "no logger falls back to default", ctx: context.Background(), want: slog.Default()},
		{name: "stored logger is returned", ctx: WithLogger(context.Background(), custom), want: custom},
		{name: "nil logger falls back to default", ctx: WithLogger(context.Background(), nil), want: slog.Default()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LoggerFromContext(tt.ctx); got != tt.want {
				t.Errorf("LoggerFromContext() = %p, want %p", got, tt.want)
			}
		})
	}
}

func TestLoggerOr(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	request := slog.New(slog.NewJSONHandler(io.Discard, nil))

	if got := LoggerOr(context.Background(), fallback); got != fallback {
		t.Error("LoggerOr() should return fallback when context has no logger")
	}
	if got := LoggerOr(WithLogger(context.Background(), request), fallback); got != request {
		t.Error("LoggerOr() should prefer the context logger")
	}
	if got := LoggerOr(context.Background(), nil); got != slog.Default() {
		t.Error("LoggerOr() with nil fallback should return slog.Default()")
	}
}
