package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/starford/menusitemap/internal/metrics"
	"github.com/starford/menusitemap/internal/provider"
)

// Event kinds passed to an EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventCallback is called after a store change caused by a snapshot file.
type EventCallback func(kind string, path string)

// Store is the write side of the SQL provider.
type Store interface {
	ReplaceSource(ctx context.Context, source, checksum string, snap provider.Snapshot) error
	DeleteSource(ctx context.Context, source string) error
	SourceChecksums(ctx context.Context) (map[string]string, error)
}

var _ Store = (*provider.Store)(nil)

// Report summarises one sync pass.
type Report struct {
	Imported  []string `json:"imported"`
	Removed   []string `json:"removed"`
	Unchanged int      `json:"unchanged"`
	Failed    []string `json:"failed"`
}

// Changed reports whether the pass modified the store.
func (r Report) Changed() bool {
	return len(r.Imported) > 0 || len(r.Removed) > 0
}

// Syncer keeps the store in line with a snapshot directory.
type Syncer struct {
	store    Store
	dir      *Dir
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewSyncer creates a Syncer. A nil recorder records nothing.
func NewSyncer(store Store, dir *Dir, logger *slog.Logger, recorder metrics.Recorder) *Syncer {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Syncer{store: store, dir: dir, logger: logger, recorder: recorder}
}

// Dir returns the snapshot directory.
func (s *Syncer) Dir() *Dir {
	return s.dir
}

// Sync walks the directory and brings the store up to date:
//   - new or changed files are parsed and imported
//   - sources whose file is gone are removed
//
// Files that fail to parse are logged and skipped; their previously
// imported rows stay in place. cb, if non-nil, is called for every change.
func (s *Syncer) Sync(ctx context.Context, cb EventCallback) (Report, error) {
	rep, err := s.sync(ctx, cb)
	if err != nil {
		s.recorder.IncSnapshotSync(metrics.OutcomeFailed)
		return rep, err
	}
	s.recorder.IncSnapshotSync(metrics.OutcomeSuccess)
	return rep, nil
}

func (s *Syncer) sync(ctx context.Context, cb EventCallback) (Report, error) {
	var rep Report

	files, err := s.dir.List()
	if err != nil {
		return rep, err
	}
	checksums, err := s.store.SourceChecksums(ctx)
	if err != nil {
		return rep, fmt.Errorf("snapshot: sync: %w", err)
	}

	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		disk[f.Path] = struct{}{}

		prev, known := checksums[f.Path]
		if prev == f.Checksum {
			rep.Unchanged++
			continue
		}
		if err := s.ImportFile(ctx, f.Path); err != nil {
			s.logger.Warn("sync: import failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			rep.Failed = append(rep.Failed, f.Path)
			continue
		}
		s.logger.Debug("sync: imported", slog.String("path", f.Path))
		rep.Imported = append(rep.Imported, f.Path)
		if cb != nil {
			kind := EventCreated
			if known {
				kind = EventUpdated
			}
			cb(kind, f.Path)
		}
	}

	var stale []string
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			stale = append(stale, p)
		}
	}
	sort.Strings(stale)
	for _, p := range stale {
		if err := s.store.DeleteSource(ctx, p); err != nil {
			s.logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			rep.Failed = append(rep.Failed, p)
			continue
		}
		s.logger.Debug("sync: removed stale", slog.String("path", p))
		rep.Removed = append(rep.Removed, p)
		if cb != nil {
			cb(EventDeleted, p)
		}
	}

	s.logger.Info("sync: complete",
		slog.Int("imported", len(rep.Imported)),
		slog.Int("removed", len(rep.Removed)),
		slog.Int("unchanged", rep.Unchanged),
		slog.Int("failed", len(rep.Failed)))
	return rep, nil
}

// ImportFile parses one file of the directory and replaces its rows.
func (s *Syncer) ImportFile(ctx context.Context, rel string) error {
	data, err := s.dir.Read(rel)
	if err != nil {
		return err
	}
	return s.Import(ctx, rel, data)
}

// Import parses data and stores it under source.
func (s *Syncer) Import(ctx context.Context, source string, data []byte) error {
	doc, err := Parse(data)
	if err != nil {
		return err
	}
	if err := s.store.ReplaceSource(ctx, source, Checksum(data), doc.Rows()); err != nil {
		return fmt.Errorf("snapshot: import %s: %w", source, err)
	}
	return nil
}

// Remove deletes the rows imported from source.
func (s *Syncer) Remove(ctx context.Context, source string) error {
	if err := s.store.DeleteSource(ctx, source); err != nil {
		return fmt.Errorf("snapshot: remove %s: %w", source, err)
	}
	return nil
}
