package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNotFound = errors.New("library: item not found")
var ErrAlreadyExists = errors.New("library: item already exists")

// FileStore is a local file-system implementation of ItemStore. One
// Markdown file per item, named after the item ID.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("library: init directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the storage root the store writes under.
func (fs *FileStore) Dir() string { return fs.dir }

func (fs *FileStore) pathForID(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("library: invalid item id (empty)")
	}
	if strings.ContainsAny(id, "/\\") {
		return "", fmt.Errorf("library: invalid item id %q (contains path separator)", id)
	}
	dir, err := filepath.Abs(fs.dir)
	if err != nil {
		return "", fmt.Errorf("library: abs dir: %w", err)
	}
	resolved := filepath.Join(dir, id+".md")
	if !strings.HasPrefix(resolved, dir+string(filepath.Separator)) {
		return "", fmt.Errorf("library: path traversal detected for id %q", id)
	}
	return resolved, nil
}

// Write persists a new item to disk atomically via a temporary file. It
// returns ErrAlreadyExists if the given ID is already present.
func (fs *FileStore) Write(_ context.Context, it *Item) error {
	if err := it.Meta.Validate(); err != nil {
		return err
	}
	b, err := Serialize(it)
	if err != nil {
		return err
	}
	path, err := fs.pathForID(it.Meta.ID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return ErrAlreadyExists
	}
	return fs.writeFile(path, b)
}

// Update rewrites an existing item in place, atomically. It returns
// ErrNotFound if the item does not exist yet.
func (fs *FileStore) Update(_ context.Context, it *Item) error {
	if err := it.Meta.Validate(); err != nil {
		return err
	}
	b, err := Serialize(it)
	if err != nil {
		return err
	}
	path, err := fs.pathForID(it.Meta.ID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return ErrNotFound
	}
	return fs.writeFile(path, b)
}

func (fs *FileStore) writeFile(path string, b []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("library: write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("library: atomic rename %s: %w", path, err)
	}
	return nil
}

// Read retrieves an item by ID. It returns ErrNotFound if it does not
// exist.
func (fs *FileStore) Read(_ context.Context, id string) (*Item, error) {
	path, err := fs.pathForID(id)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("library: read %s: %w", path, err)
	}
	return Parse(b)
}

// Delete removes an item's file. It returns ErrNotFound if the item does
// not exist.
func (fs *FileStore) Delete(_ context.Context, id string) error {
	path, err := fs.pathForID(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("library: delete %s: %w", path, err)
	}
	return nil
}

// List returns all valid items sorted by creation time, oldest first.
// Corrupt or unreadable files are skipped.
func (fs *FileStore) List(_ context.Context) ([]*Item, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("library: list %s: %w", fs.dir, err)
	}
	var out []*Item
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		path := filepath.Join(fs.dir, e.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		it, err := Parse(b)
		if err != nil || it.Meta.Validate() != nil {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Meta.CreatedAt.Equal(b.Meta.CreatedAt) {
			return a.Meta.CreatedAt.Before(b.Meta.CreatedAt)
		}
		return a.Meta.ID < b.Meta.ID
	})
	return out, nil
}
