package indexer

import (
	"context"

	"sitesage/internal/crawler"
	"sitesage/internal/events"
)

// Passage is one embedded chunk as persisted in the vector store. Chunk
// indices for a URL are contiguous from 0 in chunking order.
type Passage struct {
	URL        string
	ChunkIndex int
	Text       string
	Vector     []float32
}

type PassageStore interface {
	IsIndexed(ctx context.Context, url string) (bool, error)
	StorePassage(ctx context.Context, p Passage) error
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Engine is a browser rendering engine owned by a single indexing run.
type Engine interface {
	crawler.Renderer
	Close()
}

type (
	EngineFactory func(ctx context.Context) (Engine, error)
	CrawlFunc     func(ctx context.Context, r crawler.Renderer, seed string, maxDepth int) ([]string, error)
	ExtractFunc   func(html string) (string, error)
	ChunkFunc     func(text string) []string
)

// Deps carries the orchestrator's collaborators. Crawl, Extract and Chunk
// default to the real pipeline when nil.
type Deps struct {
	NewEngine EngineFactory
	Crawl     CrawlFunc
	Extract   ExtractFunc
	Chunk     ChunkFunc
	Embedder  Embedder
	Store     PassageStore
	Events    events.Publisher
}

type Config struct {
	SeedURL      string
	MaxDepth     int
	ChunkSize    int
	ChunkOverlap int
}
