package vector_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sitesage/internal/vector"

	"github.com/stretchr/testify/assert"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// newTestAdapter starts a fake Weaviate that answers /v1/meta (the client
// probes it on first use) and delegates everything else to handler.
func newTestAdapter(t *testing.T, handler http.HandlerFunc) *vector.WeaviateClientAdapter {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	cfg := weaviate.Config{Host: ts.Listener.Addr().String(), Scheme: "http"}
	client, err := weaviate.NewClient(cfg)
	assert.NoError(t, err)
	return vector.NewWeaviateClientAdapter(client)
}

func TestWeaviateClientAdapter_ClassExists(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/schema/"+vector.ClassSitePassage, r.URL.Path)
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(&models.Class{Class: vector.ClassSitePassage})
		})

		exists, err := adapter.ClassExists(context.Background(), vector.ClassSitePassage)
		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("NotFound", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		exists, err := adapter.ClassExists(context.Background(), vector.ClassSitePassage)
		assert.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestWeaviateClientAdapter_CreateClass(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/schema", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		w.WriteHeader(http.StatusOK)
	})

	err := adapter.CreateClass(context.Background(), &models.Class{Class: vector.ClassSitePassage})
	assert.NoError(t, err)
}

func TestWeaviateClientAdapter_GetClass(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/schema/"+vector.ClassSitePassage, r.URL.Path)
		assert.Equal(t, "GET", r.Method)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(&models.Class{Class: vector.ClassSitePassage})
	})

	class, err := adapter.GetClass(context.Background(), vector.ClassSitePassage)
	assert.NoError(t, err)
	assert.NotNil(t, class)
	assert.Equal(t, vector.ClassSitePassage, class.Class)
}

func TestWeaviateClientAdapter_AddProperty(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/schema/"+vector.ClassSitePassage+"/properties", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		w.WriteHeader(http.StatusOK)
	})

	prop := &models.Property{
		Name:     "chunkIndex",
		DataType: []string{"int"},
	}
	err := adapter.AddProperty(context.Background(), vector.ClassSitePassage, prop)
	assert.NoError(t, err)
}
