package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"medichat/internal/chatstore"
	"medichat/internal/config"
	"medichat/internal/index"
	"medichat/internal/indexer"
	"medichat/internal/llm"
	"medichat/internal/rag"
	"medichat/internal/service"
	"medichat/internal/storage"
	"medichat/internal/vectorstore"
)

// localIndexFile is the SQLite file of the local vector backend inside VectorDBPath.
const localIndexFile = "index.db"

// app is the wired application shared by every subcommand.
type app struct {
	cfg     *config.Config
	svc     service.ChatService
	cleanup func()
}

// openApp builds the application. Tests replace it.
var openApp = buildApp

func buildApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogging(cfg)

	vectors, closeVectors, err := openVectorStore(cfg)
	if err != nil {
		return nil, err
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingVectorSize)
	indexStore := index.NewStore(cfg.VectorDBPath, cfg.QdrantCollection, cfg.EmbeddingVectorSize, cfg.EmbeddingBatchSize, embedder, vectors)

	pipeline := indexer.NewPipeline(
		indexer.NewSplitter(indexer.WithChunkSize(cfg.ChunkSize), indexer.WithOverlap(cfg.ChunkOverlap)),
		nil,
	)

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)
	engine := rag.NewEngine(llmClient, rag.Options{
		Model:         cfg.LLMModelName,
		Temperature:   cfg.LLMTemperature,
		HistoryWindow: cfg.HistoryWindow,
		TitleWindow:   cfg.TitleWindow,
	})

	svc := service.NewChatService(pipeline, indexStore, engine, chatstore.NewStore(cfg.ChatMemoryDir), service.Options{
		RetrievalK:  cfg.RetrievalK,
		RecentChats: cfg.RecentChats,
	})

	if err := svc.LoadIndex(ctx); err != nil {
		closeVectors()
		return nil, err
	}

	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName, "temperature", cfg.LLMTemperature)
	return &app{cfg: cfg, svc: svc, cleanup: closeVectors}, nil
}

// setupLogging configures structured logging with configurable level and format.
func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)
}

func openVectorStore(cfg *config.Config) (vectorstore.VectorStore, func(), error) {
	switch cfg.VectorBackend {
	case config.BackendQdrant:
		store, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Qdrant client: %w", err)
		}
		slog.Info("Qdrant vector store ready", "url", cfg.QdrantURL, "collection", cfg.QdrantCollection)
		return store, func() { _ = store.Close() }, nil

	default:
		path := filepath.Join(cfg.VectorDBPath, localIndexFile)
		db, err := storage.New(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open index database: %w", err)
		}
		if err := storage.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		slog.Info("Local vector store ready", "path", path)
		return vectorstore.NewLocalStore(storage.NewChunkRepo(db)), func() { _ = db.Close() }, nil
	}
}
