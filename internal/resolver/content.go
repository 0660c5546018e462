package resolver

import (
	"github.com/starford/menusitemap/internal/models"
	"github.com/starford/menusitemap/internal/navtree"
)

// ContentResolver finds the navigational home of content items. Items
// without one are left out rather than given a raw component URL.
type ContentResolver struct {
	tree       *navtree.Tree
	categories navtree.CategoryIndex
	base       string
}

// NewContentResolver builds a resolver for one pass.
func NewContentResolver(tree *navtree.Tree, categories navtree.CategoryIndex, baseURL string) *ContentResolver {
	return &ContentResolver{tree: tree, categories: categories, base: baseURL}
}

// Resolve locates item under its category listing node, falling back to a
// node that shows the item on its own.
func (r *ContentResolver) Resolve(item models.ContentItem) Resolution {
	var res Resolution

	if nodeID, ok := r.categories.Node(item.CategoryID); ok && item.Alias != "" {
		if p := r.tree.Path(nodeID); p != "" {
			res.Path = p + "/" + item.Alias
			res.Via = ViaCategory
			res.NodeID = nodeID
		}
	}

	// The single-article node already ends in its own slug, so the item
	// alias is not appended.
	if res.Via == "" {
		if n, ok := r.tree.ArticleNode(item.ID); ok {
			if p := r.tree.Path(n.ID); p != "" {
				res.Path = p
				res.Via = ViaArticleNode
				res.NodeID = n.ID
			}
		}
	}

	if res.Via == "" {
		res.Reason = ReasonNoHome
		return res
	}

	res.Entry = models.Entry{
		Loc:        joinURL(r.base, res.Path),
		LastMod:    item.LastModified(),
		ChangeFreq: models.ChangeWeekly,
		Priority:   models.Priority(ContentPriority),
	}
	return res
}
