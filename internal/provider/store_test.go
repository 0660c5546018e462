package provider

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/menusitemap/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	f, err := os.CreateTemp("", "menusitemap-test-*.db")
	require.NoError(t, err)
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	s, err := Open(context.Background(), Config{
		Driver:      DriverSQLite,
		DSN:         f.Name(),
		TablePrefix: "jos_",
		ApplySchema: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSnapshot() Snapshot {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	modified := time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)
	return Snapshot{
		Categories: []models.Category{
			{ID: 8, Alias: "news", Path: "news"},
		},
		Menu: []MenuRecord{
			{NavigationNode: models.NavigationNode{ID: 102, Alias: "services", Path: "services",
				Link: "index.php?option=com_content&view=article&id=5", Type: models.NodeTypeComponent,
				ParentID: 1, Level: 1, Language: "en-GB", MenuType: "mainmenu", Lft: 20}, Published: true},
			{NavigationNode: models.NavigationNode{ID: 101, Alias: "home", Path: "home",
				Link: "index.php?option=com_content&view=featured", Type: models.NodeTypeComponent,
				ParentID: 1, Level: 1, MenuType: "mainmenu", Lft: 10}, Published: true},
			{NavigationNode: models.NavigationNode{ID: 103, Alias: "draft", Path: "draft",
				Link: "index.php?option=com_content&view=article&id=6", Type: models.NodeTypeComponent,
				ParentID: 1, Level: 1, MenuType: "mainmenu", Lft: 30}},
			{NavigationNode: models.NavigationNode{ID: 104, Alias: "login", Path: "login",
				Link: "index.php?option=com_login", Type: models.NodeTypeComponent,
				ParentID: 1, Level: 1, MenuType: "menu", Lft: 40}, Published: true, ClientID: 1},
		},
		Content: []ContentRecord{
			{ID: 5, Alias: "first", CategoryID: 8, Created: created, Published: true},
			{ID: 6, Alias: "second", CategoryID: 8, Created: created.Add(time.Hour), Modified: modified, Published: true, Language: "de-DE"},
			{ID: 7, Alias: "orphan", CategoryID: 99, Created: created.Add(-time.Hour), Published: true},
			{ID: 9, Alias: "archived", CategoryID: 8, Created: created},
		},
	}
}

func TestFetchNavigationNodes(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.ReplaceSource(ctx, "site.yaml", "abc", sampleSnapshot()))

	nodes, err := s.FetchNavigationNodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 2, "unpublished and admin nodes are filtered")

	assert.Equal(t, int64(101), nodes[0].ID, "ordered by lft")
	assert.Equal(t, models.AllLanguages, nodes[0].Language)
	assert.Equal(t, int64(102), nodes[1].ID)
	assert.Equal(t, "en-GB", nodes[1].Language)
	assert.Equal(t, "services", nodes[1].Path)
	assert.Equal(t, "mainmenu", nodes[1].MenuType)
}

func TestFetchNavigationNodesSameLftOrderedByID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var snap Snapshot
	for _, id := range []int64{305, 301, 303} {
		snap.Menu = append(snap.Menu, MenuRecord{NavigationNode: models.NavigationNode{
			ID: id, Alias: "n", Path: "n", Link: "index.php?option=com_content&view=featured",
			Type: models.NodeTypeComponent, ParentID: 1, Level: 1}, Published: true})
	}
	require.NoError(t, s.ReplaceSource(ctx, "flat.yaml", "abc", snap))

	nodes, err := s.FetchNavigationNodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, []int64{301, 303, 305}, []int64{nodes[0].ID, nodes[1].ID, nodes[2].ID})
}

func TestFetchContentItems(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.ReplaceSource(ctx, "site.yaml", "abc", sampleSnapshot()))

	items, err := s.FetchContentItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, int64(6), items[0].ID, "newest first")
	assert.Equal(t, "news", items[0].CategoryAlias)
	assert.Equal(t, "news", items[0].CategoryPath)
	assert.True(t, items[0].Modified.Equal(time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)))
	assert.Equal(t, "de-DE", items[0].Language)

	assert.Equal(t, int64(5), items[1].ID)
	assert.True(t, items[1].Modified.IsZero())

	assert.Equal(t, int64(7), items[2].ID)
	assert.Empty(t, items[2].CategoryAlias, "missing category joins to empty alias")
}

func TestReplaceSourceIsIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	snap := sampleSnapshot()
	require.NoError(t, s.ReplaceSource(ctx, "site.yaml", "abc", snap))

	snap.Menu = snap.Menu[:1]
	require.NoError(t, s.ReplaceSource(ctx, "site.yaml", "def", snap))

	nodes, err := s.FetchNavigationNodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, int64(102), nodes[0].ID)

	sums, err := s.SourceChecksums(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"site.yaml": "def"}, sums)
}

func TestDeleteSourceKeepsOtherSources(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.ReplaceSource(ctx, "site.yaml", "abc", sampleSnapshot()))
	require.NoError(t, s.ReplaceSource(ctx, "extra.yaml", "xyz", Snapshot{
		Menu: []MenuRecord{{NavigationNode: models.NavigationNode{ID: 200, Alias: "blog", Path: "blog",
			Link: "index.php?option=com_content&view=category&layout=blog&id=8",
			Type: models.NodeTypeComponent, ParentID: 1, Level: 1, Lft: 50}, Published: true}},
	}))

	require.NoError(t, s.DeleteSource(ctx, "site.yaml"))

	nodes, err := s.FetchNavigationNodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, int64(200), nodes[0].ID)

	items, err := s.FetchContentItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	sums, err := s.SourceChecksums(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"extra.yaml": "xyz"}, sums)
}

func TestReplaceSourceLargeBatch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var snap Snapshot
	for i := 1; i <= 250; i++ {
		snap.Content = append(snap.Content, ContentRecord{
			ID: int64(i), Alias: "item", CategoryID: 1, Published: true,
			Created: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),
		})
	}
	require.NoError(t, s.ReplaceSource(ctx, "bulk.yaml", "1", snap))

	items, err := s.FetchContentItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 250)
	assert.Equal(t, int64(250), items[0].ID)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", sqliteDSN("a.db"))
	assert.Equal(t, "file:a.db?cache=shared&_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on",
		sqliteDSN("file:a.db?cache=shared"))
}
