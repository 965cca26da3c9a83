package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// setEnv sets an environment variable, ignoring errors (for test setup)
func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

// unsetEnv unsets an environment variable, ignoring errors (for test cleanup)
func unsetEnv(key string) {
	_ = os.Unsetenv(key)
}

var envVars = []string{
	"CONFIG_FILE",
	"LLM_BASE_URL", "LLM_API_KEY", "LLM_MODEL", "LLM_TEMPERATURE",
	"EMBEDDING_BASE_URL", "EMBEDDING_API_KEY", "EMBEDDING_MODEL_NAME",
	"EMBEDDING_VECTOR_SIZE", "EMBEDDING_BATCH_SIZE",
	"VECTOR_BACKEND", "VECTOR_DB_PATH", "QDRANT_URL", "QDRANT_COLLECTION",
	"CHAT_MEMORY_DIR", "CHUNK_SIZE", "CHUNK_OVERLAP", "RETRIEVAL_K",
	"HISTORY_WINDOW", "TITLE_WINDOW", "RECENT_CHATS",
	"API_PORT", "LOG_LEVEL", "LOG_FORMAT",
}

// isolateEnv clears every config variable and moves into a temp dir without a
// .env file. Everything is restored when the test ends.
func isolateEnv(t *testing.T) string {
	t.Helper()
	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		unsetEnv(key)
	}
	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	_ = os.Chdir(tmpDir)
	t.Cleanup(func() {
		_ = os.Chdir(originalWd)
		for key, value := range originalEnv {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	})
	return tmpDir
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(t *testing.T, dir string)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name: "defaults with only the api key",
			setupEnv: func(t *testing.T, dir string) {
				setEnv("LLM_API_KEY", "sk-test")
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.LLMModelName == "gpt-4.1-nano" &&
					cfg.LLMTemperature == 0.7 &&
					cfg.EmbeddingModelName == "sentence-transformers/all-mpnet-base-v2" &&
					cfg.EmbeddingVectorSize == 768 &&
					cfg.EmbeddingBatchSize == 32 &&
					cfg.VectorBackend == BackendLocal &&
					cfg.VectorDBPath == "vector_db" &&
					cfg.ChatMemoryDir == "chat_memory" &&
					cfg.ChunkSize == 1000 &&
					cfg.ChunkOverlap == 200 &&
					cfg.RetrievalK == 3 &&
					cfg.HistoryWindow == 12 &&
					cfg.TitleWindow == 8 &&
					cfg.RecentChats == 5 &&
					cfg.APIPort == "9000" &&
					cfg.LogLevel == slog.LevelInfo
			},
		},
		{
			name:     "missing LLM_API_KEY",
			setupEnv: func(t *testing.T, dir string) {},
			wantErr:  true,
		},
		{
			name: "embedding key falls back to llm key",
			setupEnv: func(t *testing.T, dir string) {
				setEnv("LLM_API_KEY", "sk-test")
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.EmbeddingAPIKey == "sk-test"
			},
		},
		{
			name: "explicit embedding key wins",
			setupEnv: func(t *testing.T, dir string) {
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("EMBEDDING_API_KEY", "emb-key")
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.EmbeddingAPIKey == "emb-key"
			},
		},
		{
			name: "invalid CHUNK_SIZE",
			setupEnv: func(t *testing.T, dir string) {
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("CHUNK_SIZE", "invalid")
			},
			wantErr: true,
		},
		{
			name: "overlap not smaller than chunk size",
			setupEnv: func(t *testing.T, dir string) {
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("CHUNK_SIZE", "100")
				setEnv("CHUNK_OVERLAP", "100")
			},
			wantErr: true,
		},
		{
			name: "zero RETRIEVAL_K",
			setupEnv: func(t *testing.T, dir string) {
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("RETRIEVAL_K", "0")
			},
			wantErr: true,
		},
		{
			name: "unknown backend",
			setupEnv: func(t *testing.T, dir string) {
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("VECTOR_BACKEND", "faiss")
			},
			wantErr: true,
		},
		{
			name: "qdrant backend is case insensitive",
			setupEnv: func(t *testing.T, dir string) {
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("VECTOR_BACKEND", "Qdrant")
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.VectorBackend == BackendQdrant
			},
		},
		{
			name: "invalid LOG_LEVEL",
			setupEnv: func(t *testing.T, dir string) {
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("LOG_LEVEL", "verbose")
			},
			wantErr: true,
		},
		{
			name: "debug LOG_LEVEL",
			setupEnv: func(t *testing.T, dir string) {
				setEnv("LLM_API_KEY", "sk-test")
				setEnv("LOG_LEVEL", "debug")
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.LogLevel == slog.LevelDebug
			},
		},
		{
			name: "toml file values with env override",
			setupEnv: func(t *testing.T, dir string) {
				content := "llm_api_key = \"from-file\"\nllm_model = \"file-model\"\nretrieval_k = 5\nlog_level = \"warn\"\n"
				if err := os.WriteFile(filepath.Join(dir, "medichat.toml"), []byte(content), 0644); err != nil {
					t.Fatalf("write config: %v", err)
				}
				setEnv("LLM_MODEL", "env-model")
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.LLMAPIKey == "from-file" &&
					cfg.LLMModelName == "env-model" &&
					cfg.RetrievalK == 5 &&
					cfg.LogLevel == slog.LevelWarn
			},
		},
		{
			name: "dotenv file is loaded",
			setupEnv: func(t *testing.T, dir string) {
				if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LLM_API_KEY=from-dotenv\n"), 0644); err != nil {
					t.Fatalf("write .env: %v", err)
				}
			},
			checkConfig: func(cfg *Config) bool {
				return cfg.LLMAPIKey == "from-dotenv"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolateEnv(t)
			tt.setupEnv(t, dir)

			cfg, err := Load("")

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if cfg == nil {
				t.Fatal("Load() returned nil config")
			}

			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config validation failed: %+v", cfg)
			}
		})
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	dir := isolateEnv(t)
	setEnv("LLM_API_KEY", "sk-test")

	if _, err := Load(filepath.Join(dir, "nope.toml")); err == nil {
		t.Error("Load() expected error for missing config file")
	}
}

func TestLoad_CreatesDirectories(t *testing.T) {
	dir := isolateEnv(t)

	indexDir := filepath.Join(dir, "nested", "vector_db")
	memoryDir := filepath.Join(dir, "nested", "chat_memory")
	setEnv("LLM_API_KEY", "sk-test")
	setEnv("VECTOR_DB_PATH", indexDir)
	setEnv("CHAT_MEMORY_DIR", memoryDir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, d := range []string{indexDir, memoryDir} {
		if _, err := os.Stat(d); os.IsNotExist(err) {
			t.Errorf("Load() should create directory %s: %v", d, err)
		}
	}

	if cfg.VectorDBPath != indexDir {
		t.Errorf("Load() VectorDBPath = %v, want %v", cfg.VectorDBPath, indexDir)
	}
}

func TestGetEnv(t *testing.T) {
	originalValue := os.Getenv("TEST_ENV_VAR")
	defer func() {
		if originalValue != "" {
			setEnv("TEST_ENV_VAR", originalValue)
		} else {
			unsetEnv("TEST_ENV_VAR")
		}
	}()

	tests := []struct {
		name         string
		setupEnv     func()
		key          string
		defaultValue string
		want         string
	}{
		{
			name: "env var set",
			setupEnv: func() {
				setEnv("TEST_ENV_VAR", "set-value")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "set-value",
		},
		{
			name: "env var not set",
			setupEnv: func() {
				unsetEnv("TEST_ENV_VAR")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "default",
		},
		{
			name: "empty env var uses default",
			setupEnv: func() {
				setEnv("TEST_ENV_VAR", "")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupEnv()
			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}
