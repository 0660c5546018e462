package resolver

import (
	"time"

	"github.com/starford/menusitemap/internal/models"
	"github.com/starford/menusitemap/internal/navtree"
)

// NavigationResolver turns navigation nodes into sitemap entries.
type NavigationResolver struct {
	tree     *navtree.Tree
	base     string
	now      time.Time
	aliases  map[string]struct{}
	paths    substringSet
	reserved substringSet
}

// NewNavigationResolver builds a resolver for one pass. now is stamped as
// the last modification of every navigation entry.
func NewNavigationResolver(tree *navtree.Tree, baseURL string, rules Rules, now time.Time) *NavigationResolver {
	aliases := make(map[string]struct{}, len(rules.ExcludedAliases))
	for _, a := range rules.ExcludedAliases {
		aliases[a] = struct{}{}
	}
	return &NavigationResolver{
		tree:     tree,
		base:     baseURL,
		now:      now,
		aliases:  aliases,
		paths:    newSubstringSet(rules.ExcludedAliases),
		reserved: newSubstringSet(rules.ReservedComponents),
	}
}

// Resolve applies the exclusion rules in order; the first that matches wins.
func (r *NavigationResolver) Resolve(n models.NavigationNode) Resolution {
	path := r.tree.Path(n.ID)
	res := Resolution{Path: path, Reason: r.exclusion(n, path)}
	if !res.OK() {
		return res
	}
	res.Entry = models.Entry{
		Loc:        joinURL(r.base, path),
		LastMod:    r.now,
		ChangeFreq: models.ChangeWeekly,
		Priority:   models.Priority(NavigationPriority),
	}
	return res
}

func (r *NavigationResolver) exclusion(n models.NavigationNode, path string) Reason {
	switch n.Type {
	case models.NodeTypeSeparator, models.NodeTypeHeading, models.NodeTypeURL, models.NodeTypeAlias:
		return ReasonStructuralType
	}
	target, _ := r.tree.Target(n.ID)
	if target.External {
		return ReasonExternalLink
	}
	if n.Alias == "" || n.Alias == navtree.RootAlias {
		return ReasonRootAlias
	}
	if _, ok := r.aliases[n.Alias]; ok {
		return ReasonExcludedAlias
	}
	if r.paths.containsAny(n.Path) {
		return ReasonExcludedPath
	}
	if r.reserved.containsAny(n.Link) {
		return ReasonReservedArea
	}
	if path == "" || path == navtree.RootAlias || path == "/" {
		return ReasonEmptyPath
	}
	return Included
}
