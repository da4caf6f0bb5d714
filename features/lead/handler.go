package lead

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	l := &Lead{Name: req.Name, Email: req.Email, Message: req.Message}
	if err := h.service.Create(r.Context(), l); err != nil {
		if errors.Is(err, ErrInvalidLead) {
			h.writeError(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
			return
		}
		slog.ErrorContext(r.Context(), "failed to save lead", "error", err)
		h.writeError(w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(l); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode lead response", "error", err)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.service.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list leads", "error", err)
		h.writeError(w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if leads == nil {
		leads = []Lead{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(leads); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode leads response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, code, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": msg})
}
