package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"sitesage/features/lead"
	"sitesage/internal/indexer"
)

// Retriever returns concatenated context for a query; failures degrade to
// an empty string inside the retrieval layer.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) string
}

type Generator interface {
	Generate(ctx context.Context, query, retrieved string) (string, error)
}

// Indexer is the lazy-indexing trigger. The first chat request that finds it
// not started kicks off the background run; the handler never waits for it.
type Indexer interface {
	Start(ctx context.Context) bool
	Status() indexer.Status
}

type LeadSaver interface {
	Create(ctx context.Context, l *lead.Lead) error
}

type Handler struct {
	retriever Retriever
	generator Generator
	indexer   Indexer
	leads     LeadSaver
}

func NewHandler(retriever Retriever, generator Generator, idx Indexer, leads LeadSaver) *Handler {
	return &Handler{retriever: retriever, generator: generator, indexer: idx, leads: leads}
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string     `json:"message"`
		Lead    *lead.Lead `json:"lead,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	// Lead capture bypasses the retrieval pipeline entirely.
	if req.Lead != nil {
		if err := h.leads.Create(ctx, req.Lead); err != nil {
			slog.ErrorContext(ctx, "lead capture failed", "error", err)
			h.writeError(w, "LEAD_ERROR", "failed to save contact details", http.StatusBadRequest)
			return
		}
		h.writeJSON(w, map[string]string{"reply": "Thanks! We have your details and will be in touch."})
		return
	}

	if req.Message == "" {
		h.writeError(w, "VALIDATION_ERROR", "message is required", http.StatusBadRequest)
		return
	}

	// Lazy trigger: the first request starts indexing in the background and
	// answers immediately from whatever is indexed so far.
	if h.indexer.Start(ctx) {
		slog.InfoContext(ctx, "indexing run triggered by chat request")
	}

	retrieved := h.retriever.Retrieve(ctx, req.Message, 0)

	answer, err := h.generator.Generate(ctx, req.Message, retrieved)
	if err != nil {
		slog.ErrorContext(ctx, "answer generation failed", "error", err)
		h.writeError(w, "GENERATION_ERROR", "failed to generate an answer", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, map[string]string{"reply": answer})
}

func (h *Handler) IndexStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.indexer.Status())
}

func (h *Handler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, code, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": msg})
}
