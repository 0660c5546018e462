package navtree

// CategoryIndex maps a category identifier to the navigation node that lists it.
type CategoryIndex map[int64]int64

// BuildCategoryIndex scans the tree for category listing nodes whose layout
// is one of layouts (any layout when empty). When several nodes list the same
// category the last one in tree order wins. Nodes whose target carries no
// usable category id are skipped.
func BuildCategoryIndex(t *Tree, layouts []string) CategoryIndex {
	idx := make(CategoryIndex)
	for i, n := range t.nodes {
		if target := t.targets[i]; target.IsCategoryListing(layouts) {
			idx[target.ID] = n.ID
		}
	}
	return idx
}

// Node returns the listing node for a category.
func (c CategoryIndex) Node(categoryID int64) (int64, bool) {
	id, ok := c[categoryID]
	return id, ok
}
