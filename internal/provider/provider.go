// Package provider supplies navigation nodes and content items to the
// sitemap generator.
package provider

import (
	"context"

	"github.com/starford/menusitemap/internal/models"
)

// DataProvider is the read contract the generator depends on.
//
// FetchNavigationNodes returns published frontend nodes ordered so that
// ancestors precede descendants. Nodes must carry their flattened hierarchy
// path unless the tree loader is configured to derive missing paths.
//
// FetchContentItems returns published items joined with the alias and path
// of their category.
type DataProvider interface {
	FetchNavigationNodes(ctx context.Context) ([]models.NavigationNode, error)
	FetchContentItems(ctx context.Context) ([]models.ContentItem, error)
}

// Static serves fixed records. Err, when set, is returned by both fetches.
type Static struct {
	Nodes []models.NavigationNode
	Items []models.ContentItem
	Err   error
}

var _ DataProvider = (*Static)(nil)

func (s *Static) FetchNavigationNodes(_ context.Context) ([]models.NavigationNode, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Nodes, nil
}

func (s *Static) FetchContentItems(_ context.Context) ([]models.ContentItem, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Items, nil
}
