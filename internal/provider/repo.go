package provider

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/starford/menusitemap/internal/models"
)

// insertBatch bounds rows per INSERT so that statements stay under the
// sqlite host parameter limit.
const insertBatch = 100

// MenuRecord is a navigation node with the publication columns the read
// side filters on.
type MenuRecord struct {
	models.NavigationNode
	Published bool
	ClientID  int
}

// ContentRecord is an article row as stored, before the category join.
type ContentRecord struct {
	ID         int64
	Alias      string
	CategoryID int64
	Modified   time.Time
	Created    time.Time
	Language   string
	Published  bool
}

// Snapshot is the set of rows imported from one source file.
type Snapshot struct {
	Categories []models.Category
	Menu       []MenuRecord
	Content    []ContentRecord
}

// ReplaceSource swaps every row owned by source for the rows in snap and
// records the checksum, all in one transaction.
func (s *Store) ReplaceSource(ctx context.Context, source, checksum string, snap Snapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("provider: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.deleteOwned(ctx, tx, source); err != nil {
		return err
	}

	cats := s.sb.Insert(s.table("categories")).Columns("id", "alias", "path", "source")
	err = insertChunks(ctx, tx, cats, upsertSuffix("id", "alias", "path", "source"), len(snap.Categories),
		func(b sq.InsertBuilder, i int) sq.InsertBuilder {
			c := snap.Categories[i]
			return b.Values(c.ID, c.Alias, c.Path, source)
		})
	if err != nil {
		return fmt.Errorf("provider: insert categories: %w", err)
	}

	menu := s.sb.Insert(s.table("menu")).Columns("id", "alias", "path", "link", "type",
		"parent_id", "level", "language", "menutype", "published", "client_id", "lft", "source")
	err = insertChunks(ctx, tx, menu, upsertSuffix("id", "alias", "path", "link", "type", "parent_id",
		"level", "language", "menutype", "published", "client_id", "lft", "source"), len(snap.Menu),
		func(b sq.InsertBuilder, i int) sq.InsertBuilder {
			m := snap.Menu[i]
			return b.Values(m.ID, m.Alias, m.Path, m.Link, m.Type, m.ParentID, m.Level,
				languageOrAll(m.Language), m.MenuType, boolInt(m.Published), m.ClientID, m.Lft, source)
		})
	if err != nil {
		return fmt.Errorf("provider: insert menu: %w", err)
	}

	content := s.sb.Insert(s.table("content")).Columns("id", "alias", "catid", "modified",
		"created", "language", "state", "source")
	err = insertChunks(ctx, tx, content, upsertSuffix("id", "alias", "catid", "modified", "created",
		"language", "state", "source"), len(snap.Content),
		func(b sq.InsertBuilder, i int) sq.InsertBuilder {
			c := snap.Content[i]
			return b.Values(c.ID, c.Alias, c.CategoryID, nullTime(c.Modified), nullTime(c.Created),
				languageOrAll(c.Language), boolInt(c.Published), source)
		})
	if err != nil {
		return fmt.Errorf("provider: insert content: %w", err)
	}

	query, args, err := s.sb.Insert(s.table("snapshot_files")).
		Columns("path", "checksum", "synced_at").
		Values(source, checksum, time.Now().UTC()).
		Suffix(upsertSuffix("path", "checksum", "synced_at")).
		ToSql()
	if err != nil {
		return fmt.Errorf("provider: build checksum upsert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("provider: record checksum: %w", err)
	}

	return tx.Commit()
}

// DeleteSource removes every row owned by source and forgets its checksum.
func (s *Store) DeleteSource(ctx context.Context, source string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("provider: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.deleteOwned(ctx, tx, source); err != nil {
		return err
	}
	query, args, err := s.sb.Delete(s.table("snapshot_files")).Where(sq.Eq{"path": source}).ToSql()
	if err != nil {
		return fmt.Errorf("provider: build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("provider: delete checksum: %w", err)
	}
	return tx.Commit()
}

// SourceChecksums returns the recorded checksum of every imported source.
func (s *Store) SourceChecksums(ctx context.Context) (map[string]string, error) {
	query, args, err := s.sb.Select("path", "checksum").From(s.table("snapshot_files")).ToSql()
	if err != nil {
		return nil, fmt.Errorf("provider: build checksum query: %w", err)
	}
	var rows []struct {
		Path     string `db:"path"`
		Checksum string `db:"checksum"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("provider: source checksums: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Path] = r.Checksum
	}
	return out, nil
}

func (s *Store) deleteOwned(ctx context.Context, tx *sqlx.Tx, source string) error {
	for _, name := range []string{"menu", "categories", "content"} {
		query, args, err := s.sb.Delete(s.table(name)).Where(sq.Eq{"source": source}).ToSql()
		if err != nil {
			return fmt.Errorf("provider: build delete: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("provider: clear %s rows: %w", name, err)
		}
	}
	return nil
}

func insertChunks(ctx context.Context, tx *sqlx.Tx, base sq.InsertBuilder, suffix string, n int,
	add func(sq.InsertBuilder, int) sq.InsertBuilder,
) error {
	for start := 0; start < n; start += insertBatch {
		end := min(start+insertBatch, n)
		b := base
		for i := start; i < end; i++ {
			b = add(b, i)
		}
		query, args, err := b.Suffix(suffix).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

func upsertSuffix(key string, cols ...string) string {
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = excluded." + c
	}
	return "ON CONFLICT (" + key + ") DO UPDATE SET " + strings.Join(sets, ", ")
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func languageOrAll(lang string) string {
	if lang == "" {
		return models.AllLanguages
	}
	return lang
}
