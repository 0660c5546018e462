// Package testutil provides shared test helpers for setting up stores and
// snapshot directories.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/menusitemap/internal/provider"
	"github.com/starford/menusitemap/internal/snapshot"
)

// BaseURL is the site root used by fixtures.
const BaseURL = "https://www.example.com"

// SiteYAML is a small site: a blog category listing for investor relations,
// a single-article page, a separator and one published article.
const SiteYAML = `
categories:
  - id: 5
    alias: investor-relations
    path: investor-relations
menu:
  - id: 101
    alias: home
    path: home
    link: index.php?option=com_content&view=featured
    level: 1
    lft: 10
  - id: 102
    alias: investor-relations
    path: investor-relations
    link: index.php?option=com_content&view=category&layout=blog&id=5
    level: 1
    language: en-GB
    lft: 20
  - id: 103
    alias: about
    path: about
    link: index.php?option=com_content&view=article&id=40
    level: 1
    lft: 30
  - id: 104
    alias: divider
    type: separator
    level: 1
    lft: 40
content:
  - id: 41
    alias: q3-results
    catid: 5
    created: 2026-03-01T10:00:00Z
    modified: 2026-03-02T09:00:00Z
  - id: 42
    alias: orphan
    catid: 77
    created: 2026-02-01T10:00:00Z
`

// TestStore creates a temporary SQLite store that is automatically cleaned up.
func TestStore(t *testing.T) *provider.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "menusitemap-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	store, err := provider.Open(context.Background(), provider.Config{
		Driver:      provider.DriverSQLite,
		DSN:         dbFile.Name(),
		ApplySchema: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestSnapshotDir creates a temporary snapshot directory.
func TestSnapshotDir(t *testing.T) *snapshot.Dir {
	t.Helper()
	dir, err := snapshot.OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

// SeededSyncer returns a syncer over a fresh store whose directory holds
// SiteYAML as site.yaml, already imported.
func SeededSyncer(t *testing.T) (*provider.Store, *snapshot.Syncer) {
	t.Helper()
	store := TestStore(t)
	dir := TestSnapshotDir(t)
	if err := dir.Write("site.yaml", []byte(SiteYAML)); err != nil {
		t.Fatal(err)
	}
	syncer := snapshot.NewSyncer(store, dir, Logger(), nil)
	if _, err := syncer.Sync(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	return store, syncer
}

// Logger returns a logger that discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
