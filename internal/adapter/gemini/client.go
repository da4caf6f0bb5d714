package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	embeddingModel  = "gemini-embedding-001"
	generationModel = "gemini-2.0-flash"
)

// ErrRateLimited tags quota and rate-limit failures from the embedding
// service. Classification happens once here at the boundary; callers only
// check errors.Is.
var ErrRateLimited = errors.New("rate limited by embedding service")

// Client wraps the Gemini API for embedding and answer generation.
type Client struct {
	client *genai.Client
}

func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	opts = append(opts, option.WithAPIKey(apiKey))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{client: client}, nil
}

// EmbedContent performs a single embedding attempt. Rate-limit failures come
// back wrapped in ErrRateLimited; anything else is returned as-is.
func (c *Client) EmbedContent(ctx context.Context, text string) ([]float32, error) {
	slog.DebugContext(ctx, "embedding content", "model", embeddingModel, "length", len(text))
	em := c.client.EmbeddingModel(embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		if isRateLimit(err) {
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return nil, err
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, errors.New("empty embedding received")
	}
	return res.Embedding.Values, nil
}

// Generate answers query grounded on the retrieved context. An empty context
// still produces an answer; the model is told to say so when it has nothing
// to go on.
func (c *Client) Generate(ctx context.Context, query, retrieved string) (string, error) {
	model := c.client.GenerativeModel(generationModel)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(
			"You are a helpful assistant for the website this service indexes. " +
				"Answer the user's question using only the provided context. " +
				"If the context does not contain the answer, say you don't know.",
		)},
	}

	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", retrieved, query)
	res, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return candidateText(res), nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func candidateText(res *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range res.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return b.String()
}

func isRateLimit(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return true
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource has been exhausted")
}
