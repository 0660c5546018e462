// Package siteservice coordinates sitemap generation and snapshot
// maintenance for the HTTP API and the MCP server.
package siteservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/starford/menusitemap/internal/apperr"
	"github.com/starford/menusitemap/internal/sitemap"
	"github.com/starford/menusitemap/internal/snapshot"
)

// Service wraps the generator and the optional snapshot syncer.
type Service struct {
	gen      *sitemap.Generator
	syncer   *snapshot.Syncer
	onChange snapshot.EventCallback
}

// NewService creates a Service. syncer may be nil when snapshot import is
// not configured; onChange may be nil.
func NewService(gen *sitemap.Generator, syncer *snapshot.Syncer, onChange snapshot.EventCallback) *Service {
	return &Service{gen: gen, syncer: syncer, onChange: onChange}
}

// Generate runs one generation pass for baseURL.
func (s *Service) Generate(ctx context.Context, baseURL string) (*sitemap.Result, error) {
	return s.gen.Generate(ctx, baseURL)
}

// Sitemap returns the encoded sitemap document for baseURL.
func (s *Service) Sitemap(ctx context.Context, baseURL string) ([]byte, error) {
	res, err := s.gen.Generate(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := sitemap.Encode(&buf, res.Entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Content explains where content item id ends up.
func (s *Service) Content(ctx context.Context, baseURL string, id int64) (sitemap.Decision, error) {
	res, err := s.gen.Generate(ctx, baseURL)
	if err != nil {
		return sitemap.Decision{}, err
	}
	d, ok := res.ContentDecision(id)
	if !ok {
		return sitemap.Decision{}, fmt.Errorf("content %d: %w", id, apperr.ErrNotFound)
	}
	return d, nil
}

// SyncEnabled reports whether snapshot import is configured.
func (s *Service) SyncEnabled() bool {
	return s.syncer != nil
}

// Sync reconciles the store with the snapshot directory.
func (s *Service) Sync(ctx context.Context) (snapshot.Report, error) {
	if s.syncer == nil {
		return snapshot.Report{}, apperr.ErrSyncDisabled
	}
	return s.syncer.Sync(ctx, s.onChange)
}

// Snapshots lists the snapshot files.
func (s *Service) Snapshots() ([]snapshot.File, error) {
	if s.syncer == nil {
		return nil, apperr.ErrSyncDisabled
	}
	files, err := s.syncer.Dir().List()
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []snapshot.File{}
	}
	return files, nil
}

// PutSnapshot validates content, writes it to path and imports it. It
// reports whether the file is new.
func (s *Service) PutSnapshot(ctx context.Context, path string, content []byte) (bool, error) {
	if s.syncer == nil {
		return false, apperr.ErrSyncDisabled
	}
	if _, err := snapshot.Parse(content); err != nil {
		return false, err
	}
	path = snapshot.CleanPath(path)
	dir := s.syncer.Dir()
	_, readErr := dir.Read(path)
	created := errors.Is(readErr, apperr.ErrNotFound)
	if readErr != nil && !created {
		return false, readErr
	}
	if err := dir.Write(path, content); err != nil {
		return false, err
	}
	if err := s.syncer.Import(ctx, path, content); err != nil {
		return false, err
	}
	kind := snapshot.EventUpdated
	if created {
		kind = snapshot.EventCreated
	}
	s.notify(kind, path)
	return created, nil
}

// DeleteSnapshot removes the file at path and the rows imported from it.
func (s *Service) DeleteSnapshot(ctx context.Context, path string) error {
	if s.syncer == nil {
		return apperr.ErrSyncDisabled
	}
	path = snapshot.CleanPath(path)
	if err := s.syncer.Dir().Delete(path); err != nil {
		return err
	}
	if err := s.syncer.Remove(ctx, path); err != nil {
		return err
	}
	s.notify(snapshot.EventDeleted, path)
	return nil
}

func (s *Service) notify(kind, path string) {
	if s.onChange != nil {
		s.onChange(kind, path)
	}
}
