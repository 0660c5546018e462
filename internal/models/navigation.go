// Package models defines the domain types shared by the sitemap pipeline.
package models

// Structural navigation node types. Only component nodes point at content that
// can appear in a sitemap; the others are layout or redirect entries.
const (
	NodeTypeComponent = "component"
	NodeTypeSeparator = "separator"
	NodeTypeHeading   = "heading"
	NodeTypeURL       = "url"
	NodeTypeAlias     = "alias"
)

// AllLanguages is the language code of nodes shown for every site language.
const AllLanguages = "*"

// NavigationNode is one published, frontend menu entry.
type NavigationNode struct {
	ID       int64  `json:"id"`
	Alias    string `json:"alias"`
	Path     string `json:"path"` // precomputed ancestor-to-self slug chain, may be empty
	Link     string `json:"link"` // target descriptor
	Type     string `json:"type"`
	ParentID int64  `json:"parent_id"`
	Level    int    `json:"level"`
	Language string `json:"language"`
	MenuType string `json:"menutype"`
	Lft      int64  `json:"lft"`
}

// Category is a content grouping. It is only needed when importing snapshots;
// content items already carry their category alias and path.
type Category struct {
	ID    int64  `json:"id"`
	Alias string `json:"alias"`
	Path  string `json:"path"`
}
