package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrRetriesExhausted reports that every embedding attempt was rate limited.
// It is distinct from a propagated service error.
var ErrRetriesExhausted = errors.New("embedding retries exhausted")

// EmbedService performs one embedding attempt. Client implements it.
type EmbedService interface {
	EmbedContent(ctx context.Context, text string) ([]float32, error)
}

type RetryPolicy struct {
	Attempts     int
	InitialDelay time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 5, InitialDelay: 2 * time.Second}
}

// Embedder retries rate-limited embedding calls with exponential backoff.
// Non-rate-limit failures propagate immediately without retry.
type Embedder struct {
	svc    EmbedService
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewEmbedder(svc EmbedService, policy RetryPolicy) *Embedder {
	if policy.Attempts <= 0 {
		policy.Attempts = DefaultRetryPolicy().Attempts
	}
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = DefaultRetryPolicy().InitialDelay
	}
	return &Embedder{svc: svc, policy: policy, sleep: sleepCtx}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	delay := e.policy.InitialDelay

	for attempt := 1; attempt <= e.policy.Attempts; attempt++ {
		vec, err := e.svc.EmbedContent(ctx, text)
		if err == nil {
			return vec, nil
		}
		if !errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		if attempt == e.policy.Attempts {
			break
		}

		slog.WarnContext(ctx, "embedding rate limited, backing off",
			"attempt", attempt, "delay", delay.String())
		if err := e.sleep(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrRetriesExhausted, e.policy.Attempts)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
