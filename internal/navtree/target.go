// Package navtree turns the flat navigation node list into an identifier
// index with resolved public paths, and indexes the nodes that act as a
// navigational home for content.
package navtree

import (
	"net/url"
	"strconv"
	"strings"
)

// Target is a parsed navigation target descriptor such as
// "index.php?option=com_content&view=category&layout=blog&id=5".
type Target struct {
	Raw      string
	Option   string
	View     string
	Layout   string
	ID       int64 // 0 when absent or not numeric
	External bool
}

// ParseTarget parses a node link. It never fails: parts that cannot be read
// are left empty.
func ParseTarget(link string) Target {
	t := Target{Raw: link}
	if strings.HasPrefix(link, "http") {
		t.External = true
		return t
	}
	i := strings.IndexByte(link, '?')
	if i < 0 {
		return t
	}
	// ParseQuery keeps every pair it could decode even when it reports an error.
	q, _ := url.ParseQuery(link[i+1:])
	t.Option = q.Get("option")
	t.View = q.Get("view")
	t.Layout = q.Get("layout")
	if id, err := strconv.ParseInt(q.Get("id"), 10, 64); err == nil && id > 0 {
		t.ID = id
	}
	return t
}

// IsCategoryListing reports whether the target lists a category using one of
// layouts. An empty layouts list accepts any layout.
func (t Target) IsCategoryListing(layouts []string) bool {
	if t.View != "category" || t.ID == 0 {
		return false
	}
	if len(layouts) == 0 {
		return true
	}
	for _, l := range layouts {
		if t.Layout == l {
			return true
		}
	}
	return false
}

// IsArticle reports whether the target shows a single article.
func (t Target) IsArticle() bool {
	return t.View == "article" && t.ID != 0
}
