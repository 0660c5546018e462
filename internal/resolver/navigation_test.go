package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/menusitemap/internal/models"
	"github.com/starford/menusitemap/internal/navtree"
)

const base = "https://www.example.com"

var genTime = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func navResolver(nodes ...models.NavigationNode) *NavigationResolver {
	tree := navtree.Load(nodes, navtree.Options{})
	return NewNavigationResolver(tree, base, DefaultRules(), genTime)
}

func component(id int64, alias, path, link string) models.NavigationNode {
	return models.NavigationNode{ID: id, Alias: alias, Path: path, Link: link, Type: models.NodeTypeComponent, Level: 1}
}

func TestNavigation_Included(t *testing.T) {
	n := component(101, "investor-relations", "investor-relations",
		"index.php?option=com_content&view=category&layout=blog&id=5")
	n.Language = "en-GB"

	res := navResolver(n).Resolve(n)
	require.True(t, res.OK(), "reason = %s", res.Reason)
	assert.Equal(t, base+"/en/investor-relations", res.Entry.Loc)
	assert.Equal(t, models.ChangeWeekly, res.Entry.ChangeFreq)
	require.NotNil(t, res.Entry.Priority)
	assert.InDelta(t, 0.8, *res.Entry.Priority, 1e-9)
	assert.Equal(t, genTime, res.Entry.LastMod)
}

func TestNavigation_StructuralTypesExcluded(t *testing.T) {
	for _, typ := range []string{models.NodeTypeSeparator, models.NodeTypeHeading, models.NodeTypeURL, models.NodeTypeAlias} {
		n := component(1, "about", "about", "index.php?option=com_content&view=article&id=1")
		n.Type = typ
		res := navResolver(n).Resolve(n)
		assert.Equal(t, ReasonStructuralType, res.Reason, typ)
	}
}

func TestNavigation_ExclusionOrder(t *testing.T) {
	tests := []struct {
		name string
		node models.NavigationNode
		want Reason
	}{
		{"external", component(1, "partner", "partner", "https://partner.example.org"), ReasonExternalLink},
		{"root alias", component(2, "root", "", "index.php?option=com_content&view=featured"), ReasonRootAlias},
		{"empty alias", component(3, "", "orphan", "index.php?option=com_content&view=featured"), ReasonRootAlias},
		{"excluded alias", component(4, "all-languages", "all-languages", "index.php?option=com_content&view=featured"), ReasonExcludedAlias},
		{"excluded path", component(5, "info", "all-languages/info", "index.php?option=com_content&view=featured"), ReasonExcludedPath},
		{"reserved area", component(6, "login", "login", "index.php?option=com_users&view=login"), ReasonReservedArea},
		{"external wins over root", component(7, "root", "", "http://elsewhere"), ReasonExternalLink},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := navResolver(tt.node).Resolve(tt.node)
			assert.Equal(t, tt.want, res.Reason)
			assert.Empty(t, res.Entry.Loc)
		})
	}
}

func TestNavigation_RootAlwaysExcluded(t *testing.T) {
	n := component(1, "root", "root", "index.php?option=com_content&view=category&layout=blog&id=5")
	n.Language = "en-GB"
	n.Type = models.NodeTypeComponent
	assert.False(t, navResolver(n).Resolve(n).OK())
}

func TestNavigation_EmptyPath(t *testing.T) {
	n := component(1, "news", "", "index.php?option=com_content&view=featured")
	r := NewNavigationResolver(navtree.Load(nil, navtree.Options{}), base, DefaultRules(), genTime)
	assert.Equal(t, ReasonEmptyPath, r.Resolve(n).Reason)
}

func TestNavigation_CustomRules(t *testing.T) {
	n := component(1, "intranet", "intranet", "index.php?option=com_content&view=featured")
	tree := navtree.Load([]models.NavigationNode{n}, navtree.Options{})

	r := NewNavigationResolver(tree, base, Rules{ExcludedAliases: []string{"intranet"}}, genTime)
	assert.Equal(t, ReasonExcludedAlias, r.Resolve(n).Reason)

	r = NewNavigationResolver(tree, base, Rules{}, genTime)
	assert.True(t, r.Resolve(n).OK())
}
