package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

// ClassSitePassage is the Weaviate class holding indexed site passages.
const ClassSitePassage = "SitePassage"

// SchemaClient defines the interface for Weaviate schema operations
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

// EnsureSchema creates the SitePassage class if missing and backfills any
// missing properties on an existing class.
func EnsureSchema(ctx context.Context, client SchemaClient) error {
	exists, err := client.ClassExists(ctx, ClassSitePassage)
	if err != nil {
		return err
	}

	properties := []*models.Property{
		{
			Name:     "content",
			DataType: []string{"text"},
		},
		{
			Name:     "url",
			DataType: []string{"string"}, // URL as string (exact match)
		},
		{
			Name:     "chunkIndex",
			DataType: []string{"int"},
		},
	}

	if !exists {
		class := &models.Class{
			Class:       ClassSitePassage,
			Description: "An embedded chunk of a crawled site page",
			Vectorizer:  "none",
			Properties:  properties,
		}
		return client.CreateClass(ctx, class)
	}

	class, err := client.GetClass(ctx, ClassSitePassage)
	if err != nil {
		return err
	}

	existingProps := make(map[string]bool)
	for _, p := range class.Properties {
		existingProps[p.Name] = true
	}

	for _, p := range properties {
		if !existingProps[p.Name] {
			if err := client.AddProperty(ctx, ClassSitePassage, p); err != nil {
				return err
			}
		}
	}

	return nil
}
