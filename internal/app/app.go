package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"sitesage/features/chat"
	"sitesage/features/lead"
	"sitesage/internal/adapter/gemini"
	"sitesage/internal/browser"
	"sitesage/internal/config"
	"sitesage/internal/crawler"
	"sitesage/internal/events"
	"sitesage/internal/indexer"
	"sitesage/internal/middleware"
	"sitesage/internal/retrieval"
)

// VectorStore is everything the app needs from the vector store gateway.
type VectorStore interface {
	indexer.PassageStore
	retrieval.VectorStore
	EnsureSchema(ctx context.Context) error
}

// AIClient covers the Gemini surface used by the app: single-attempt
// embedding plus grounded answer generation.
type AIClient interface {
	gemini.EmbedService
	Generate(ctx context.Context, query, retrieved string) (string, error)
}

type App struct {
	Handler     http.Handler
	Indexer     *indexer.Orchestrator
	LeadService *lead.Service

	port int
}

func New(
	cfg *config.Config,
	db *sql.DB,
	vecStore VectorStore,
	ai AIClient,
	publisher events.Publisher,
) (*App, error) {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	// Feature: Lead capture
	leadRepo := lead.NewPostgresRepo(db)
	leadService := lead.NewService(leadRepo)
	leadHandler := lead.NewHandler(leadService)

	// Embedding with quota-aware retry
	embedder := gemini.NewEmbedder(ai, gemini.RetryPolicy{
		Attempts:     cfg.EmbedRetryAttempts,
		InitialDelay: time.Duration(cfg.EmbedRetryInitialMs) * time.Millisecond,
	})

	// Indexing orchestrator; the browser engine is created per run and
	// owned by it exclusively.
	pageTimeout := time.Duration(cfg.PageLoadTimeoutSecs) * time.Second
	orchestrator := indexer.New(indexer.Config{
		SeedURL:      cfg.SiteURL,
		MaxDepth:     cfg.MaxCrawlDepth,
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	}, indexer.Deps{
		NewEngine: func(ctx context.Context) (indexer.Engine, error) {
			return newEngine(ctx, pageTimeout)
		},
		Embedder: embedder,
		Store:    vecStore,
		Events:   publisher,
	})

	// Feature: Retrieval
	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}
	retrievalService := retrieval.NewService(embedder, vecStore, queryLogger, cfg.RetrievalTopK)

	// Feature: Chat
	chatHandler := chat.NewHandler(retrievalService, ai, orchestrator, leadService)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /chat", middleware.CorrelationID(enableCORS(chatHandler.Chat)))
	mux.Handle("GET /index/status", middleware.CorrelationID(enableCORS(chatHandler.IndexStatus)))

	mux.Handle("POST /leads", middleware.CorrelationID(enableCORS(leadHandler.Create)))
	mux.Handle("GET /leads", middleware.CorrelationID(enableCORS(leadHandler.List)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{
		Handler:     mux,
		Indexer:     orchestrator,
		LeadService: leadService,
		port:        cfg.ServerPort,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// newEngine adapts the concrete browser engine to the indexer's interface.
func newEngine(ctx context.Context, pageTimeout time.Duration) (indexer.Engine, error) {
	eng, err := browser.NewEngine(ctx, pageTimeout)
	if err != nil {
		return nil, err
	}
	return &engineAdapter{eng: eng}, nil
}

type engineAdapter struct {
	eng *browser.Engine
}

func (a *engineAdapter) Render(ctx context.Context, url string) (crawler.Page, error) {
	return a.eng.Render(ctx, url)
}

func (a *engineAdapter) Close() {
	a.eng.Close()
}
