package gemini

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsRateLimit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "HTTP 429",
			err:  &googleapi.Error{Code: 429, Message: "Too Many Requests"},
			want: true,
		},
		{
			name: "Wrapped HTTP 429",
			err:  fmt.Errorf("embed: %w", &googleapi.Error{Code: 429}),
			want: true,
		},
		{
			name: "gRPC ResourceExhausted",
			err:  status.Error(codes.ResourceExhausted, "Resource has been exhausted"),
			want: true,
		},
		{
			name: "Quota Message",
			err:  errors.New("googleapi: Error 403: Quota exceeded for quota metric"),
			want: true,
		},
		{
			name: "Rate Limit Message",
			err:  errors.New("rate limit hit, slow down"),
			want: true,
		},
		{
			name: "HTTP 500",
			err:  &googleapi.Error{Code: 500, Message: "Internal"},
			want: false,
		},
		{
			name: "Plain Error",
			err:  errors.New("connection refused"),
			want: false,
		},
		{
			name: "gRPC InvalidArgument",
			err:  status.Error(codes.InvalidArgument, "bad request"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRateLimit(tt.err))
		})
	}
}
