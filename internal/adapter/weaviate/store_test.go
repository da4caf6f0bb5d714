package weaviate_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	adapter "sitesage/internal/adapter/weaviate"
	"sitesage/internal/indexer"
)

func mockWeaviate(t *testing.T, handler http.HandlerFunc) (*weaviate.Client, *httptest.Server) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		handler(w, r)
	}))
	cfg := weaviate.Config{Host: ts.Listener.Addr().String(), Scheme: "http"}
	client, err := weaviate.NewClient(cfg)
	assert.NoError(t, err)
	return client, ts
}

func TestStore_StorePassage(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/objects", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "SitePassage", body["class"])
		props := body["properties"].(map[string]interface{})
		assert.Equal(t, "passage text", props["content"])
		assert.Equal(t, "https://example.com/docs", props["url"])
		assert.Equal(t, 2.0, props["chunkIndex"])
		assert.NotNil(t, body["vector"])

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "1"})
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	err := store.StorePassage(context.Background(), indexer.Passage{
		URL:        "https://example.com/docs",
		ChunkIndex: 2,
		Text:       "passage text",
		Vector:     []float32{0.1, 0.2},
	})
	assert.NoError(t, err)
}

func TestStore_IsIndexed(t *testing.T) {
	aggregateResponse := func(count float64) map[string]interface{} {
		return map[string]interface{}{
			"data": map[string]interface{}{
				"Aggregate": map[string]interface{}{
					"SitePassage": []interface{}{
						map[string]interface{}{
							"meta": map[string]interface{}{
								"count": count,
							},
						},
					},
				},
			},
		}
	}

	t.Run("Existing URL", func(t *testing.T) {
		client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/graphql", r.URL.Path)
			query, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(query), "https://example.com/docs")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(aggregateResponse(3))
		})
		defer ts.Close()

		store := adapter.NewStore(client)
		indexed, err := store.IsIndexed(context.Background(), "https://example.com/docs")
		assert.NoError(t, err)
		assert.True(t, indexed)
	})

	t.Run("Unknown URL", func(t *testing.T) {
		client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(aggregateResponse(0))
		})
		defer ts.Close()

		store := adapter.NewStore(client)
		indexed, err := store.IsIndexed(context.Background(), "https://example.com/unknown")
		assert.NoError(t, err)
		assert.False(t, indexed)
	})

	t.Run("Empty Aggregate Rows", func(t *testing.T) {
		client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			resp := map[string]interface{}{
				"data": map[string]interface{}{
					"Aggregate": map[string]interface{}{
						"SitePassage": []interface{}{},
					},
				},
			}
			json.NewEncoder(w).Encode(resp)
		})
		defer ts.Close()

		store := adapter.NewStore(client)
		indexed, err := store.IsIndexed(context.Background(), "https://example.com/docs")
		assert.NoError(t, err)
		assert.False(t, indexed)
	})

	t.Run("GraphQL Error", func(t *testing.T) {
		client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			resp := map[string]interface{}{
				"errors": []interface{}{
					map[string]interface{}{"message": "class not found"},
				},
			}
			json.NewEncoder(w).Encode(resp)
		})
		defer ts.Close()

		store := adapter.NewStore(client)
		_, err := store.IsIndexed(context.Background(), "https://example.com/docs")
		assert.Error(t, err)
	})
}

func TestStore_Search(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/graphql", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		resp := map[string]interface{}{
			"data": map[string]interface{}{
				"Get": map[string]interface{}{
					"SitePassage": []interface{}{
						map[string]interface{}{
							"content":    "nearest passage",
							"url":        "https://example.com/docs",
							"chunkIndex": 1.0,
							"_additional": map[string]interface{}{
								"distance": 0.12,
							},
						},
						map[string]interface{}{
							"content":    "second passage",
							"url":        "https://example.com/about",
							"chunkIndex": 0.0,
							"_additional": map[string]interface{}{
								"distance": 0.34,
							},
						},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	results, err := store.Search(context.Background(), []float32{0.1, 0.2}, 5)
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "nearest passage", results[0].Text)
	assert.Equal(t, "https://example.com/docs", results[0].URL)
	assert.Equal(t, 1, results[0].ChunkIndex)
	assert.Equal(t, float32(0.12), results[0].Distance)
	assert.Equal(t, "second passage", results[1].Text)
}

func TestStore_Search_EmptyData(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		resp := map[string]interface{}{
			"data": map[string]interface{}{
				"Get": map[string]interface{}{
					"SitePassage": []interface{}{},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	results, err := store.Search(context.Background(), []float32{0.1}, 5)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_CountPassages(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/graphql", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		resp := map[string]interface{}{
			"data": map[string]interface{}{
				"Aggregate": map[string]interface{}{
					"SitePassage": []interface{}{
						map[string]interface{}{
							"meta": map[string]interface{}{
								"count": 42.0,
							},
						},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	count, err := store.CountPassages(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 42, count)
}
