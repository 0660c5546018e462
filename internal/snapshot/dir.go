package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/menusitemap/internal/apperr"
)

// File describes one snapshot file on disk.
type File struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Dir is a directory of YAML snapshot files.
type Dir struct {
	root string
}

// OpenDir opens root, creating it if needed.
func OpenDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("snapshot: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("snapshot: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("snapshot: root is not a directory: %s", abs)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute directory path.
func (d *Dir) Root() string {
	return d.root
}

// IsSnapshotFile reports whether name has a YAML extension.
func IsSnapshotFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// safePath resolves rel against the root and rejects results outside it.
func (d *Dir) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(rel)
	if rel == "" || cleaned == "." {
		return "", fmt.Errorf("snapshot: empty path: %w", apperr.ErrInvalidSnapshot)
	}
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("snapshot: absolute paths not allowed: %s: %w", rel, apperr.ErrInvalidSnapshot)
	}
	abs, err := filepath.Abs(filepath.Join(d.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("snapshot: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, d.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("snapshot: path escapes root: %s: %w", rel, apperr.ErrInvalidSnapshot)
	}
	return abs, nil
}

// List returns every snapshot file under the root with its checksum.
func (d *Dir) List() ([]File, error) {
	var out []File
	err := filepath.WalkDir(d.root, func(p string, e fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if e.IsDir() || !IsSnapshotFile(e.Name()) || strings.HasPrefix(e.Name(), ".") {
			return nil
		}
		info, err := e.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(d.root, p)
		out = append(out, File{
			Path:      filepath.ToSlash(rel),
			Checksum:  Checksum(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a snapshot file.
func (d *Dir) Read(rel string) ([]byte, error) {
	abs, err := d.safePath(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("snapshot: read %s: %w", rel, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", rel, err)
	}
	return data, nil
}

// Write atomically replaces a snapshot file: temp file, fsync, rename.
func (d *Dir) Write(rel string, content []byte) error {
	if !IsSnapshotFile(rel) {
		return fmt.Errorf("snapshot: not a yaml file: %s: %w", rel, apperr.ErrInvalidSnapshot)
	}
	abs, err := d.safePath(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: mkdir: %w", err)
	}

	// Dot-prefixed and without a yaml extension, so List and the watcher skip it.
	tmp, err := os.CreateTemp(dir, ".menusitemap-tmp-*")
	if err != nil {
		return fmt.Errorf("snapshot: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("snapshot: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("snapshot: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("snapshot: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a snapshot file.
func (d *Dir) Delete(rel string) error {
	abs, err := d.safePath(rel)
	if err != nil {
		return err
	}
	err = os.Remove(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("snapshot: delete %s: %w", rel, apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("snapshot: delete %s: %w", rel, err)
	}
	return nil
}

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// CleanPath normalizes a relative snapshot path to the form List reports.
func CleanPath(rel string) string {
	return filepath.ToSlash(filepath.Clean(filepath.FromSlash(rel)))
}
