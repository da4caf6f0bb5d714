package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

const DefaultTopK = 5

type SearchResult struct {
	Text       string  `json:"text"`
	URL        string  `json:"url,omitempty"`
	ChunkIndex int     `json:"chunkIndex"`
	Distance   float32 `json:"distance,omitempty"`
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	Search(ctx context.Context, queryVector []float32, limit int) ([]SearchResult, error)
}

// Service embeds a query and fetches the most similar indexed passages.
type Service struct {
	embedder Embedder
	store    VectorStore
	logger   *QueryLogger
	topK     int
}

func NewService(e Embedder, s VectorStore, l *QueryLogger, topK int) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Service{embedder: e, store: s, logger: l, topK: topK}
}

// Retrieve returns the concatenated text of up to topK passages nearest to
// query. Any failure on this path degrades to an empty result so answer
// generation can proceed without retrieved context; errors are logged, never
// propagated.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) string {
	if topK <= 0 {
		topK = s.topK
	}

	start := time.Now()
	results, degraded := s.search(ctx, query, topK)

	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			Query:      query,
			NumResults: len(results),
			Duration:   time.Since(start),
			Degraded:   degraded,
		})
	}

	texts := make([]string, 0, len(results))
	for _, r := range results {
		if r.Text != "" {
			texts = append(texts, r.Text)
		}
	}
	return strings.Join(texts, "\n\n")
}

func (s *Service) search(ctx context.Context, query string, topK int) ([]SearchResult, bool) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		slog.WarnContext(ctx, "query embedding failed, retrieval degraded to empty context", "error", err)
		return nil, true
	}

	results, err := s.store.Search(ctx, vector, topK)
	if err != nil {
		slog.WarnContext(ctx, "similarity search failed, retrieval degraded to empty context", "error", err)
		return nil, true
	}
	return results, false
}
