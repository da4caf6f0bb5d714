package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"sitesage/internal/crawler"
	"sitesage/internal/events"
	"sitesage/internal/extract"
	"sitesage/internal/text"
)

type State int32

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

type Status struct {
	State        string `json:"state"`
	PagesIndexed int64  `json:"pages_indexed"`
	PagesSkipped int64  `json:"pages_skipped"`
	PagesFailed  int64  `json:"pages_failed"`
}

// Orchestrator drives one crawl-extract-chunk-embed-persist run per process
// lifetime. The state guard is keyed on the orchestrator instance, which the
// app holds for the life of the process; indexing a second site requires a
// new instance.
type Orchestrator struct {
	cfg  Config
	deps Deps

	state        atomic.Int32
	pagesIndexed atomic.Int64
	pagesSkipped atomic.Int64
	pagesFailed  atomic.Int64
}

func New(cfg Config, deps Deps) *Orchestrator {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = text.DefaultChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = text.DefaultChunkOverlap
	}
	if deps.Crawl == nil {
		deps.Crawl = crawler.Crawl
	}
	if deps.Extract == nil {
		deps.Extract = extract.Text
	}
	if deps.Chunk == nil {
		size, overlap := cfg.ChunkSize, cfg.ChunkOverlap
		deps.Chunk = func(t string) []string { return text.Chunk(t, size, overlap) }
	}
	if deps.Events == nil {
		deps.Events = events.NopPublisher{}
	}
	return &Orchestrator{cfg: cfg, deps: deps}
}

// Start launches the indexing run in the background and reports whether this
// call won the single-flight race. The state moves to Running before any
// asynchronous work begins, so two concurrent triggers can never both start
// a crawl. Once Completed the orchestrator stays Completed for the life of
// the process.
func (o *Orchestrator) Start(ctx context.Context) bool {
	if !o.state.CompareAndSwap(int32(StateNotStarted), int32(StateRunning)) {
		return false
	}

	// Detach from the triggering request: the run outlives it but keeps
	// context values such as the correlation ID.
	runCtx := context.WithoutCancel(ctx)
	go func() {
		defer o.state.Store(int32(StateCompleted))
		o.run(runCtx)
	}()
	return true
}

func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

func (o *Orchestrator) Status() Status {
	return Status{
		State:        o.State().String(),
		PagesIndexed: o.pagesIndexed.Load(),
		PagesSkipped: o.pagesSkipped.Load(),
		PagesFailed:  o.pagesFailed.Load(),
	}
}

func (o *Orchestrator) run(ctx context.Context) {
	slog.InfoContext(ctx, "indexing run starting", "seed", o.cfg.SeedURL, "max_depth", o.cfg.MaxDepth)

	engine, err := o.deps.NewEngine(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "browser engine failed to start, aborting indexing run", "error", err)
		return
	}
	defer engine.Close()

	urls, err := o.deps.Crawl(ctx, engine, o.cfg.SeedURL, o.cfg.MaxDepth)
	if err != nil {
		slog.ErrorContext(ctx, "crawl failed, aborting indexing run", "error", err)
		return
	}
	slog.InfoContext(ctx, "crawl finished", "pages", len(urls))

	for _, url := range urls {
		if err := o.indexPage(ctx, engine, url); err != nil {
			o.pagesFailed.Add(1)
			slog.ErrorContext(ctx, "failed to index page, continuing", "url", url, "error", err)
			o.deps.Events.Publish(ctx, events.Event{
				Type:  events.TypePageFailed,
				URL:   url,
				Error: err.Error(),
			})
		}
	}

	slog.InfoContext(ctx, "indexing run completed",
		"indexed", o.pagesIndexed.Load(), "skipped", o.pagesSkipped.Load(), "failed", o.pagesFailed.Load())
	o.deps.Events.Publish(ctx, events.Event{
		Type:  events.TypeRunCompleted,
		Pages: o.pagesIndexed.Load(),
	})
}

// indexPage renders one URL and persists its chunks in chunk-index order.
// A mid-page failure leaves earlier chunks persisted; there is no rollback
// and no completeness marker.
func (o *Orchestrator) indexPage(ctx context.Context, r crawler.Renderer, url string) error {
	indexed, err := o.deps.Store.IsIndexed(ctx, url)
	if err != nil {
		return fmt.Errorf("index check: %w", err)
	}
	if indexed {
		o.pagesSkipped.Add(1)
		slog.DebugContext(ctx, "page already indexed, skipping", "url", url)
		return nil
	}

	page, err := r.Render(ctx, url)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	html, err := page.HTML(ctx)
	page.Close()
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}

	content, err := o.deps.Extract(html)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	chunks := o.deps.Chunk(content)
	for i, chunk := range chunks {
		vector, err := o.deps.Embedder.Embed(ctx, chunk)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		p := Passage{URL: url, ChunkIndex: i, Text: chunk, Vector: vector}
		if err := o.deps.Store.StorePassage(ctx, p); err != nil {
			return fmt.Errorf("persist chunk %d: %w", i, err)
		}
	}

	o.pagesIndexed.Add(1)
	slog.InfoContext(ctx, "page indexed", "url", url, "chunks", len(chunks))
	o.deps.Events.Publish(ctx, events.Event{
		Type:   events.TypePageIndexed,
		URL:    url,
		Chunks: len(chunks),
	})
	return nil
}
