package lead

import (
	"context"
	"errors"
	"strings"
)

// Lead is a contact captured from the chat widget. Lead capture bypasses the
// retrieval pipeline entirely; storage failures here surface as request
// errors instead of being swallowed.
type Lead struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

var ErrInvalidLead = errors.New("invalid lead")

type Repository interface {
	Save(ctx context.Context, l *Lead) error
	List(ctx context.Context) ([]Lead, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, l *Lead) error {
	l.Name = strings.TrimSpace(l.Name)
	l.Email = strings.TrimSpace(l.Email)
	l.Message = strings.TrimSpace(l.Message)

	if l.Name == "" {
		return errors.Join(ErrInvalidLead, errors.New("name is required"))
	}
	if l.Email == "" || !strings.Contains(l.Email, "@") {
		return errors.Join(ErrInvalidLead, errors.New("a valid email is required"))
	}

	return s.repo.Save(ctx, l)
}

func (s *Service) List(ctx context.Context) ([]Lead, error) {
	return s.repo.List(ctx)
}
