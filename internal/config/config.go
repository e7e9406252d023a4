package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"docindex/internal/chunker"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendLocal    = "local"
)

var (
	ErrMissingAPIKey      = errors.New("GEMINI_API_KEY not found in environment")
	ErrMissingDatabaseURL = errors.New("POSTGRES_URL not found in environment")
)

// Config is built once at startup and passed into constructors; nothing
// reads configuration sources after Load returns.
type Config struct {
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Store     StoreConfig     `yaml:"store"`

	// secrets come from the environment, never from the config file
	GeminiAPIKey string `yaml:"-"`
	PostgresURL  string `yaml:"-"`
}

type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

type EmbeddingConfig struct {
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
}

type StoreConfig struct {
	Backend    string `yaml:"backend"`
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	Debug      bool   `yaml:"debug"`
}

func Default() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			Size:    chunker.DefaultChunkSize,
			Overlap: chunker.DefaultOverlap,
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-004",
			Dimension: 768,
		},
		Store: StoreConfig{
			Backend:    BackendPostgres,
			Path:       "./docindex.local",
			Collection: "document_chunks",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment (a .env file is honored when present). Structural values
// are validated here; credentials are checked separately so a dry run does
// not require them.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.PostgresURL = os.Getenv("POSTGRES_URL")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseBackend validates a store backend name coming from the CLI.
func ParseBackend(s string) (string, error) {
	switch s {
	case BackendPostgres, BackendLocal:
		return s, nil
	default:
		return "", fmt.Errorf("unknown store backend %q (use %s or %s)", s, BackendPostgres, BackendLocal)
	}
}

func (c *Config) validate() error {
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive, got %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap must be in [0, chunking.size), got %d", c.Chunking.Overlap)
	}
	if c.Embedding.Model == "" {
		return errors.New("embedding.model must not be empty")
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be positive, got %d", c.Embedding.Dimension)
	}
	if _, err := ParseBackend(c.Store.Backend); err != nil {
		return err
	}
	return nil
}

// ValidateCredentials fails fast, before any file processing, when a
// required secret is missing for the selected backend.
func (c *Config) ValidateCredentials() error {
	if c.GeminiAPIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Store.Backend == BackendPostgres && c.PostgresURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}
