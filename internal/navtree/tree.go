package navtree

import (
	"github.com/starford/menusitemap/internal/models"
)

// RootAlias is the alias of the hidden root node of every menu tree.
const RootAlias = "root"

// Options controls how paths are resolved.
type Options struct {
	// DeriveMissingPaths builds the hierarchy path of nodes that have none
	// from their parent chain. Needed for data sources that do not store
	// flattened paths.
	DeriveMissingPaths bool
}

// Tree is an identifier-indexed arena over one snapshot of navigation nodes.
// It is built per generation pass and never mutated afterwards.
type Tree struct {
	nodes      []models.NavigationNode
	targets    []Target
	index      map[int64]int
	paths      map[int64]string
	articles   map[int64]int64
	duplicates []int64
}

// Load indexes nodes in the given order, which must place ancestors before
// descendants, and resolves the public path of every node.
func Load(nodes []models.NavigationNode, opts Options) *Tree {
	t := &Tree{
		nodes:    make([]models.NavigationNode, 0, len(nodes)),
		targets:  make([]Target, 0, len(nodes)),
		index:    make(map[int64]int, len(nodes)),
		paths:    make(map[int64]string, len(nodes)),
		articles: make(map[int64]int64),
	}

	for _, n := range nodes {
		if _, dup := t.index[n.ID]; dup {
			t.duplicates = append(t.duplicates, n.ID)
			continue
		}
		target := ParseTarget(n.Link)
		t.index[n.ID] = len(t.nodes)
		t.nodes = append(t.nodes, n)
		t.targets = append(t.targets, target)

		// First single-article node in order wins.
		if target.IsArticle() {
			if _, ok := t.articles[target.ID]; !ok {
				t.articles[target.ID] = n.ID
			}
		}
	}

	var derived map[int64]string
	if opts.DeriveMissingPaths {
		derived = make(map[int64]string, len(t.nodes))
		visiting := make(map[int64]bool)
		for _, n := range t.nodes {
			t.hierarchyPath(n.ID, derived, visiting)
		}
	}

	for _, n := range t.nodes {
		p := n.Path
		if derived != nil {
			p = derived[n.ID]
		}
		if p == "" {
			p = n.Alias
		}
		if p == "" {
			continue
		}
		t.paths[n.ID] = LanguagePrefix(n.Language) + p
	}
	return t
}

// hierarchyPath returns the stored path of id, or parent path + "/" + alias
// when none is stored. Results are memoized; a parent chain that loops back
// on itself is cut at the repeated node.
func (t *Tree) hierarchyPath(id int64, memo map[int64]string, visiting map[int64]bool) string {
	if p, ok := memo[id]; ok {
		return p
	}
	i, ok := t.index[id]
	if !ok {
		return ""
	}
	n := t.nodes[i]
	p := n.Path
	if p == "" && n.Alias != "" {
		p = n.Alias
		visiting[id] = true
		if j, ok := t.index[n.ParentID]; ok && !visiting[n.ParentID] && isRealNode(t.nodes[j]) {
			if pp := t.hierarchyPath(n.ParentID, memo, visiting); pp != "" {
				p = pp + "/" + n.Alias
			}
		}
		delete(visiting, id)
	}
	memo[id] = p
	return p
}

func isRealNode(n models.NavigationNode) bool {
	return n.Level > 0 && n.Alias != RootAlias
}

// LanguagePrefix returns "" for all-language nodes, otherwise the first two
// characters of the language code followed by a slash ("en-GB" -> "en/").
func LanguagePrefix(lang string) string {
	if lang == "" || lang == models.AllLanguages {
		return ""
	}
	if len(lang) > 2 {
		lang = lang[:2]
	}
	return lang + "/"
}

// Nodes returns the indexed nodes in load order. Callers must not modify it.
func (t *Tree) Nodes() []models.NavigationNode {
	return t.nodes
}

// Len returns the number of indexed nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node looks up a node by identifier.
func (t *Tree) Node(id int64) (models.NavigationNode, bool) {
	i, ok := t.index[id]
	if !ok {
		return models.NavigationNode{}, false
	}
	return t.nodes[i], true
}

// Target returns the parsed target descriptor of a node.
func (t *Tree) Target(id int64) (Target, bool) {
	i, ok := t.index[id]
	if !ok {
		return Target{}, false
	}
	return t.targets[i], true
}

// Path returns the resolved public path of a node, or "" if it has none.
func (t *Tree) Path(id int64) string {
	return t.paths[id]
}

// ArticleNode returns the first node that shows the given article on its own.
func (t *Tree) ArticleNode(articleID int64) (models.NavigationNode, bool) {
	id, ok := t.articles[articleID]
	if !ok {
		return models.NavigationNode{}, false
	}
	return t.Node(id)
}

// Duplicates lists identifiers that appeared more than once in the input.
// Only the first occurrence of each was indexed.
func (t *Tree) Duplicates() []int64 {
	return t.duplicates
}
