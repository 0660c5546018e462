package snapshot

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/menusitemap/internal/apperr"
	"github.com/starford/menusitemap/internal/models"
)

const siteYAML = `
categories:
  - id: 5
    alias: investor-relations
    path: investor-relations
menu:
  - id: 101
    alias: investor-relations
    path: investor-relations
    link: index.php?option=com_content&view=category&layout=blog&id=5
    parent_id: 1
    level: 1
    language: en-GB
    menutype: mainmenu
    lft: 10
  - id: 102
    alias: divider
    type: separator
    published: false
content:
  - id: 41
    alias: q3-results
    catid: 5
    created: 2026-03-01T10:00:00Z
    modified: 2026-03-02T09:00:00Z
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(siteYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rows := doc.Rows()

	if len(rows.Menu) != 2 {
		t.Fatalf("menu rows = %d, want 2", len(rows.Menu))
	}
	first := rows.Menu[0]
	if first.Type != models.NodeTypeComponent {
		t.Errorf("default type = %q, want component", first.Type)
	}
	if !first.Published {
		t.Error("published should default to true")
	}
	if first.Language != "en-GB" || first.Lft != 10 {
		t.Errorf("unexpected node: %+v", first.NavigationNode)
	}
	if rows.Menu[1].Published {
		t.Error("explicit published: false ignored")
	}

	if len(rows.Content) != 1 {
		t.Fatalf("content rows = %d, want 1", len(rows.Content))
	}
	want := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if !rows.Content[0].Modified.Equal(want) {
		t.Errorf("modified = %v, want %v", rows.Content[0].Modified, want)
	}
	if rows.Categories[0].Alias != "investor-relations" {
		t.Errorf("category alias = %q", rows.Categories[0].Alias)
	}
}

func TestParseEmpty(t *testing.T) {
	doc, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rows := doc.Rows()
	if len(rows.Menu)+len(rows.Content)+len(rows.Categories) != 0 {
		t.Errorf("expected empty document, got %+v", rows)
	}
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "menus: []",
		"bad yaml":       "menu: [",
		"missing id":     "menu:\n  - alias: x\n",
		"bad type":       "menu:\n  - id: 1\n    type: widget\n",
		"duplicate id":   "content:\n  - id: 1\n  - id: 1\n",
		"category alias": "categories:\n  - id: 3\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			if !errors.Is(err, apperr.ErrInvalidSnapshot) {
				t.Fatalf("err = %v, want ErrInvalidSnapshot", err)
			}
		})
	}
}

func TestParseDuplicateMessage(t *testing.T) {
	_, err := Parse([]byte("menu:\n  - id: 7\n  - id: 7\n"))
	if err == nil || !strings.Contains(err.Error(), "duplicate id 7") {
		t.Fatalf("err = %v", err)
	}
}
