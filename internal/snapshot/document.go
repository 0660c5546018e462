// Package snapshot imports YAML exports of the CMS navigation and content
// tables into the SQL store and keeps the store in sync with a directory of
// such files.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/menusitemap/internal/apperr"
	"github.com/starford/menusitemap/internal/models"
	"github.com/starford/menusitemap/internal/provider"
)

// Document is the content of one snapshot file.
type Document struct {
	Categories []CategoryRecord `yaml:"categories"`
	Menu       []MenuRecord     `yaml:"menu"`
	Content    []ContentRecord  `yaml:"content"`
}

// CategoryRecord is a category row.
type CategoryRecord struct {
	ID    int64  `yaml:"id"`
	Alias string `yaml:"alias"`
	Path  string `yaml:"path"`
}

// Validate validates the category record.
func (r CategoryRecord) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Alias, validation.Required),
	)
}

// MenuRecord is a menu row. Published defaults to true.
type MenuRecord struct {
	ID        int64  `yaml:"id"`
	Alias     string `yaml:"alias"`
	Path      string `yaml:"path"`
	Link      string `yaml:"link"`
	Type      string `yaml:"type"`
	ParentID  int64  `yaml:"parent_id"`
	Level     int    `yaml:"level"`
	Language  string `yaml:"language"`
	MenuType  string `yaml:"menutype"`
	Lft       int64  `yaml:"lft"`
	Published *bool  `yaml:"published"`
	ClientID  int    `yaml:"client_id"`
}

// Validate validates the menu record.
func (r MenuRecord) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Type, validation.In(
			models.NodeTypeComponent, models.NodeTypeSeparator, models.NodeTypeHeading,
			models.NodeTypeURL, models.NodeTypeAlias,
		)),
		validation.Field(&r.Level, validation.Min(0)),
		validation.Field(&r.ClientID, validation.In(0, 1)),
	)
}

// ContentRecord is an article row. Published defaults to true.
type ContentRecord struct {
	ID         int64     `yaml:"id"`
	Alias      string    `yaml:"alias"`
	CategoryID int64     `yaml:"catid"`
	Created    time.Time `yaml:"created"`
	Modified   time.Time `yaml:"modified"`
	Language   string    `yaml:"language"`
	Published  *bool     `yaml:"published"`
}

// Validate validates the content record.
func (r ContentRecord) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.CategoryID, validation.Min(int64(0))),
	)
}

// Validate checks every record and rejects repeated identifiers within a
// table.
func (d *Document) Validate() error {
	if err := validation.ValidateStruct(d,
		validation.Field(&d.Categories),
		validation.Field(&d.Menu),
		validation.Field(&d.Content),
	); err != nil {
		return err
	}
	if id, ok := firstRepeat(d.Categories, func(r CategoryRecord) int64 { return r.ID }); ok {
		return fmt.Errorf("categories: duplicate id %d", id)
	}
	if id, ok := firstRepeat(d.Menu, func(r MenuRecord) int64 { return r.ID }); ok {
		return fmt.Errorf("menu: duplicate id %d", id)
	}
	if id, ok := firstRepeat(d.Content, func(r ContentRecord) int64 { return r.ID }); ok {
		return fmt.Errorf("content: duplicate id %d", id)
	}
	return nil
}

// Parse decodes and validates a snapshot file. Unknown keys are rejected.
// An empty file is an empty document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("snapshot: parse: %w: %w", apperr.ErrInvalidSnapshot, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot: validate: %w: %w", apperr.ErrInvalidSnapshot, err)
	}
	return &doc, nil
}

// Rows converts the document into store rows, applying defaults.
func (d *Document) Rows() provider.Snapshot {
	snap := provider.Snapshot{
		Categories: make([]models.Category, len(d.Categories)),
		Menu:       make([]provider.MenuRecord, len(d.Menu)),
		Content:    make([]provider.ContentRecord, len(d.Content)),
	}
	for i, c := range d.Categories {
		snap.Categories[i] = models.Category{ID: c.ID, Alias: c.Alias, Path: c.Path}
	}
	for i, m := range d.Menu {
		typ := m.Type
		if typ == "" {
			typ = models.NodeTypeComponent
		}
		snap.Menu[i] = provider.MenuRecord{
			NavigationNode: models.NavigationNode{
				ID:       m.ID,
				Alias:    m.Alias,
				Path:     m.Path,
				Link:     m.Link,
				Type:     typ,
				ParentID: m.ParentID,
				Level:    m.Level,
				Language: m.Language,
				MenuType: m.MenuType,
				Lft:      m.Lft,
			},
			Published: published(m.Published),
			ClientID:  m.ClientID,
		}
	}
	for i, c := range d.Content {
		snap.Content[i] = provider.ContentRecord{
			ID:         c.ID,
			Alias:      c.Alias,
			CategoryID: c.CategoryID,
			Created:    c.Created,
			Modified:   c.Modified,
			Language:   c.Language,
			Published:  published(c.Published),
		}
	}
	return snap
}

func published(p *bool) bool {
	return p == nil || *p
}

func firstRepeat[T any](records []T, id func(T) int64) (int64, bool) {
	seen := make(map[int64]struct{}, len(records))
	for _, r := range records {
		k := id(r)
		if _, ok := seen[k]; ok {
			return k, true
		}
		seen[k] = struct{}{}
	}
	return 0, false
}
