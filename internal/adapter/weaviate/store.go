package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"sitesage/internal/indexer"
	"sitesage/internal/retrieval"
	"sitesage/internal/vector"
)

// Store is a thin gateway over the Weaviate SitePassage class. Rows are
// append-only; uniqueness is the caller's concern via IsIndexed.
type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	return vector.EnsureSchema(ctx, vector.NewWeaviateClientAdapter(s.client))
}

func (s *Store) StorePassage(ctx context.Context, p indexer.Passage) error {
	_, err := s.client.Data().Creator().
		WithClassName(vector.ClassSitePassage).
		WithProperties(map[string]interface{}{
			"content":    p.Text,
			"url":        p.URL,
			"chunkIndex": p.ChunkIndex,
		}).
		WithVector(p.Vector).
		Do(ctx)
	return err
}

// IsIndexed reports whether any passage rows exist for url. It does not
// check chunk completeness.
func (s *Store) IsIndexed(ctx context.Context, url string) (bool, error) {
	where := filters.Where().
		WithPath([]string{"url"}).
		WithOperator(filters.Equal).
		WithValueString(url)

	res, err := s.client.GraphQL().Aggregate().
		WithClassName(vector.ClassSitePassage).
		WithWhere(where).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return false, err
	}
	if len(res.Errors) > 0 {
		return false, fmt.Errorf("graphql error: %v", res.Errors)
	}

	count, err := aggregateCount(res.Data)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CountPassages(ctx context.Context) (int, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(vector.ClassSitePassage).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors)
	}
	return aggregateCount(res.Data)
}

// Search runs a nearVector query and returns up to limit passages ranked by
// the store's similarity function.
func (s *Store) Search(ctx context.Context, queryVector []float32, limit int) ([]retrieval.SearchResult, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(queryVector)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "url"},
		{Name: "chunkIndex"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassSitePassage).
		WithNearVector(nearVector).
		WithLimit(limit).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var results []retrieval.SearchResult
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return results, nil
	}
	rows, ok := data[vector.ClassSitePassage].([]interface{})
	if !ok {
		return results, nil
	}

	for _, row := range rows {
		props, ok := row.(map[string]interface{})
		if !ok {
			continue
		}

		var result retrieval.SearchResult
		if content, ok := props["content"].(string); ok {
			result.Text = content
		}
		if url, ok := props["url"].(string); ok {
			result.URL = url
		}
		if idx, ok := props["chunkIndex"].(float64); ok {
			result.ChunkIndex = int(idx)
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if distance, ok := additional["distance"].(float64); ok {
				result.Distance = float32(distance)
			}
		}
		results = append(results, result)
	}

	return results, nil
}

func aggregateCount(data map[string]models.JSONObject) (int, error) {
	agg, ok := data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("unexpected aggregate response shape")
	}
	rows, ok := agg[vector.ClassSitePassage].([]interface{})
	if !ok || len(rows) == 0 {
		return 0, nil
	}
	row, ok := rows[0].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("unexpected aggregate row shape")
	}
	meta, ok := row["meta"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("aggregate row missing meta")
	}
	count, ok := meta["count"].(float64)
	if !ok {
		return 0, fmt.Errorf("aggregate meta missing count")
	}
	return int(count), nil
}
