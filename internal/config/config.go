package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	// BackendLocal stores the vector index in a SQLite file inside VectorDBPath.
	BackendLocal = "local"
	// BackendQdrant stores the vector index in a Qdrant collection.
	BackendQdrant = "qdrant"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL     string  `toml:"llm_base_url"`
	LLMModelName   string  `toml:"llm_model"`
	LLMAPIKey      string  `toml:"llm_api_key"`
	LLMTemperature float32 `toml:"llm_temperature"`

	EmbeddingBaseURL    string `toml:"embedding_base_url"`
	EmbeddingAPIKey     string `toml:"embedding_api_key"`
	EmbeddingModelName  string `toml:"embedding_model_name"`
	EmbeddingVectorSize int    `toml:"embedding_vector_size"`
	EmbeddingBatchSize  int    `toml:"embedding_batch_size"`

	VectorBackend    string `toml:"vector_backend"`
	VectorDBPath     string `toml:"vector_db_path"`
	QdrantURL        string `toml:"qdrant_url"`
	QdrantCollection string `toml:"qdrant_collection"`

	ChatMemoryDir string `toml:"chat_memory_dir"`

	ChunkSize     int `toml:"chunk_size"`
	ChunkOverlap  int `toml:"chunk_overlap"`
	RetrievalK    int `toml:"retrieval_k"`
	HistoryWindow int `toml:"history_window"`
	TitleWindow   int `toml:"title_window"`
	RecentChats   int `toml:"recent_chats"`

	APIPort   string     `toml:"api_port"`
	LogLevel  slog.Level `toml:"-"`
	LogFormat string     `toml:"log_format"`
	// LogLevelName is the raw level from the config file; LOG_LEVEL overrides it.
	LogLevelName string `toml:"log_level"`
}

// Load reads configuration and returns a validated Config.
// Values are layered: built-in defaults, then the TOML file at path (or
// CONFIG_FILE, or ./medichat.toml if present), then a .env file, then
// environment variables. Environment variables already set take precedence
// over .env file values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		if _, err := os.Stat("medichat.toml"); err == nil {
			path = "medichat.toml"
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	loadDotEnv()

	if err := overrideByEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.EmbeddingAPIKey == "" {
		cfg.EmbeddingAPIKey = cfg.LLMAPIKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for _, dir := range []string{cfg.VectorDBPath, cfg.ChatMemoryDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	switch c.VectorBackend {
	case BackendLocal, BackendQdrant:
	default:
		return fmt.Errorf("VECTOR_BACKEND must be %q or %q, got %q", BackendLocal, BackendQdrant, c.VectorBackend)
	}
	positive := map[string]int{
		"EMBEDDING_VECTOR_SIZE": c.EmbeddingVectorSize,
		"EMBEDDING_BATCH_SIZE":  c.EmbeddingBatchSize,
		"CHUNK_SIZE":            c.ChunkSize,
		"RETRIEVAL_K":           c.RetrievalK,
		"HISTORY_WINDOW":        c.HistoryWindow,
		"TITLE_WINDOW":          c.TitleWindow,
		"RECENT_CHATS":          c.RecentChats,
	}
	for key, value := range positive {
		if value <= 0 {
			return fmt.Errorf("%s must be greater than 0", key)
		}
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE)")
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}
	return nil
}

// Addr returns the listen address for the API server.
func (c *Config) Addr() string {
	return ":" + c.APIPort
}

func defaultConfig() *Config {
	return &Config{
		LLMBaseURL:          "https://api.openai.com",
		LLMModelName:        "gpt-4.1-nano",
		LLMTemperature:      0.7,
		EmbeddingBaseURL:    "http://localhost:8081",
		EmbeddingModelName:  "sentence-transformers/all-mpnet-base-v2",
		EmbeddingVectorSize: 768,
		EmbeddingBatchSize:  32,
		VectorBackend:       BackendLocal,
		VectorDBPath:        "vector_db",
		QdrantURL:           "http://localhost:6333",
		QdrantCollection:    "medichat",
		ChatMemoryDir:       "chat_memory",
		ChunkSize:           1000,
		ChunkOverlap:        200,
		RetrievalK:          3,
		HistoryWindow:       12,
		TitleWindow:         8,
		RecentChats:         5,
		APIPort:             "9000",
		LogLevel:            slog.LevelInfo,
		LogFormat:           "text",
	}
}

// loadDotEnv loads a .env file from the current directory or the nearest parent.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func overrideByEnv(cfg *Config) error {
	cfg.LLMBaseURL = getEnv("LLM_BASE_URL", cfg.LLMBaseURL)
	cfg.LLMModelName = getEnv("LLM_MODEL", cfg.LLMModelName)
	cfg.LLMAPIKey = getEnv("LLM_API_KEY", cfg.LLMAPIKey)
	cfg.EmbeddingBaseURL = getEnv("EMBEDDING_BASE_URL", cfg.EmbeddingBaseURL)
	cfg.EmbeddingAPIKey = getEnv("EMBEDDING_API_KEY", cfg.EmbeddingAPIKey)
	cfg.EmbeddingModelName = getEnv("EMBEDDING_MODEL_NAME", cfg.EmbeddingModelName)
	cfg.VectorBackend = strings.ToLower(getEnv("VECTOR_BACKEND", cfg.VectorBackend))
	cfg.VectorDBPath = getEnv("VECTOR_DB_PATH", cfg.VectorDBPath)
	cfg.QdrantURL = getEnv("QDRANT_URL", cfg.QdrantURL)
	cfg.QdrantCollection = getEnv("QDRANT_COLLECTION", cfg.QdrantCollection)
	cfg.ChatMemoryDir = getEnv("CHAT_MEMORY_DIR", cfg.ChatMemoryDir)
	cfg.APIPort = getEnv("API_PORT", cfg.APIPort)
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", cfg.LogFormat))

	ints := []struct {
		key string
		dst *int
	}{
		{"EMBEDDING_VECTOR_SIZE", &cfg.EmbeddingVectorSize},
		{"EMBEDDING_BATCH_SIZE", &cfg.EmbeddingBatchSize},
		{"CHUNK_SIZE", &cfg.ChunkSize},
		{"CHUNK_OVERLAP", &cfg.ChunkOverlap},
		{"RETRIEVAL_K", &cfg.RetrievalK},
		{"HISTORY_WINDOW", &cfg.HistoryWindow},
		{"TITLE_WINDOW", &cfg.TitleWindow},
		{"RECENT_CHATS", &cfg.RecentChats},
	}
	for _, item := range ints {
		raw := os.Getenv(item.key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s must be a valid integer: %w", item.key, err)
		}
		*item.dst = v
	}

	if raw := os.Getenv("LLM_TEMPERATURE"); raw != "" {
		v, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return fmt.Errorf("LLM_TEMPERATURE must be a valid number: %w", err)
		}
		cfg.LLMTemperature = float32(v)
	}

	levelName := getEnv("LOG_LEVEL", cfg.LogLevelName)
	if levelName != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(levelName)); err != nil {
			return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: %w", err)
		}
	}

	return nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
