package provider

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/starford/menusitemap/internal/models"
)

type menuRow struct {
	ID       int64          `db:"id"`
	Alias    string         `db:"alias"`
	Path     sql.NullString `db:"path"`
	Link     string         `db:"link"`
	Type     string         `db:"type"`
	ParentID int64          `db:"parent_id"`
	Level    int            `db:"level"`
	Language sql.NullString `db:"language"`
	MenuType string         `db:"menutype"`
	Lft      int64          `db:"lft"`
}

type contentRow struct {
	ID       int64          `db:"id"`
	Alias    string         `db:"alias"`
	CatID    int64          `db:"catid"`
	Modified sql.NullTime   `db:"modified"`
	Created  sql.NullTime   `db:"created"`
	Language sql.NullString `db:"language"`
	CatAlias string         `db:"cat_alias"`
	CatPath  string         `db:"cat_path"`
}

// FetchNavigationNodes loads published site menu entries in tree order.
func (s *Store) FetchNavigationNodes(ctx context.Context) ([]models.NavigationNode, error) {
	query, args, err := s.sb.
		Select("m.id", "m.alias", "m.path", "m.link", "m.type", "m.parent_id",
			"m.level", "m.language", "m.menutype", "m.lft").
		From(s.table("menu")+" m").
		Where(sq.Eq{"m.published": 1}).
		Where(sq.Eq{"m.client_id": 0}).
		OrderBy("m.lft", "m.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("provider: build menu query: %w", err)
	}

	var rows []menuRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("provider: fetch navigation: %w", err)
	}

	nodes := make([]models.NavigationNode, len(rows))
	for i, r := range rows {
		nodes[i] = models.NavigationNode{
			ID:       r.ID,
			Alias:    r.Alias,
			Path:     r.Path.String,
			Link:     r.Link,
			Type:     r.Type,
			ParentID: r.ParentID,
			Level:    r.Level,
			Language: r.Language.String,
			MenuType: r.MenuType,
			Lft:      r.Lft,
		}
	}
	return nodes, nil
}

// FetchContentItems loads published articles with their category, newest first.
func (s *Store) FetchContentItems(ctx context.Context) ([]models.ContentItem, error) {
	query, args, err := s.sb.
		Select("a.id", "a.alias", "a.catid", "a.modified", "a.created", "a.language",
			"COALESCE(c.alias, '') AS cat_alias", "COALESCE(c.path, '') AS cat_path").
		From(s.table("content") + " a").
		LeftJoin(s.table("categories") + " c ON c.id = a.catid").
		Where(sq.Eq{"a.state": 1}).
		OrderBy("a.created DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("provider: build content query: %w", err)
	}

	var rows []contentRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("provider: fetch content: %w", err)
	}

	items := make([]models.ContentItem, len(rows))
	for i, r := range rows {
		items[i] = models.ContentItem{
			ID:            r.ID,
			Alias:         r.Alias,
			CategoryID:    r.CatID,
			CategoryAlias: r.CatAlias,
			CategoryPath:  r.CatPath,
			Modified:      r.Modified.Time,
			Created:       r.Created.Time,
			Language:      r.Language.String,
		}
	}
	return items, nil
}
