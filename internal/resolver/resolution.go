// Package resolver decides the canonical sitemap location of navigation
// nodes and content items. Everything here is a pure function of the
// navigation tree built for one generation pass.
package resolver

import (
	"strings"

	"github.com/starford/menusitemap/internal/models"
)

// Reason explains why a record produced no sitemap entry. The zero value
// means the record was included.
type Reason string

const (
	Included             Reason = ""
	ReasonStructuralType Reason = "structural_type"
	ReasonExternalLink   Reason = "external_link"
	ReasonRootAlias      Reason = "root_alias"
	ReasonExcludedAlias  Reason = "excluded_alias"
	ReasonExcludedPath   Reason = "excluded_path"
	ReasonReservedArea   Reason = "reserved_area"
	ReasonEmptyPath      Reason = "empty_path"
	ReasonNoHome         Reason = "no_navigation_home"
)

// Via names the rule that located a content item.
type Via string

const (
	ViaCategory    Via = "category"
	ViaArticleNode Via = "article_node"
)

// Sitemap metadata assigned by the resolvers.
const (
	NavigationPriority = 0.8
	ContentPriority    = 0.6
)

// Resolution is the outcome for one record.
type Resolution struct {
	Entry  models.Entry
	Path   string // resolved public path, set even when excluded if known
	Via    Via
	NodeID int64 // navigation node that gave the content item its home
	Reason Reason
}

// OK reports whether the record yields an entry.
func (r Resolution) OK() bool {
	return r.Reason == Included
}

// joinURL appends path segments to base with single slashes in between.
func joinURL(base string, parts ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(p)
	}
	return b.String()
}
