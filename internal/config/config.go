package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"sitesage"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"sitesage"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	// NSQ is optional; indexing progress events are dropped when unset.
	NSQDHost string `envconfig:"NSQD_HOST"`
	NSQDHTTP string `envconfig:"NSQD_HTTP"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	// Crawl & indexing
	SiteURL             string `envconfig:"SITE_URL"`
	MaxCrawlDepth       int    `envconfig:"MAX_CRAWL_DEPTH" default:"3"`
	PageLoadTimeoutSecs int    `envconfig:"PAGE_LOAD_TIMEOUT_SECONDS" default:"30"`
	ChunkSize           int    `envconfig:"CHUNK_SIZE" default:"800"`
	ChunkOverlap        int    `envconfig:"CHUNK_OVERLAP" default:"200"`
	EmbedRetryAttempts  int    `envconfig:"EMBED_RETRY_ATTEMPTS" default:"5"`
	EmbedRetryInitialMs int    `envconfig:"EMBED_RETRY_INITIAL_MS" default:"2000"`
	RetrievalTopK       int    `envconfig:"RETRIEVAL_TOP_K" default:"5"`

	// Server
	ServerPort    int    `envconfig:"SERVER_PORT" default:"8081"`
	QueryLogPath  string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root
	// Ignore errors, as env vars might be set in the shell
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
	}
	if c.SiteURL == "" {
		return fmt.Errorf("%w: SITE_URL", ErrMissingRequired)
	}
	u, err := url.Parse(c.SiteURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("SITE_URL must be an absolute URL, got %q", c.SiteURL)
	}
	if c.MaxCrawlDepth < 0 {
		return fmt.Errorf("MAX_CRAWL_DEPTH must be >= 0, got %d", c.MaxCrawlDepth)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be in [0, CHUNK_SIZE)", c.ChunkOverlap)
	}
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	return nil
}
