package category

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// document is the persisted on-disk shape: one JSON document per storage
// root. A document with no categories key loads as an empty tree.
type document struct {
	Categories []*Category `json:"categories"`
	SaveCount  int         `json:"save_count"`
}

// Store holds the full category tree plus the save counter for one storage
// root. All mutations are serialized through its write lock and validated
// against the structural invariants before commit; reads observe a
// consistent snapshot and never interleave with a partially applied batch.
type Store struct {
	path string

	mu        sync.RWMutex
	cats      map[string]*Category
	saveCount int

	now   func() time.Time
	newID func() string
}

// Open loads the tree document at path. A missing file yields an empty
// tree, as does a document that predates the tree feature. An unreadable
// document is treated as empty rather than blocking startup.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		cats:  make(map[string]*Category),
		now:   func() time.Time { return time.Now().UTC() },
		newID: NewID,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &PersistenceError{Op: "load", Err: err}
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		// Corrupt documents load as an empty tree; the next flush rewrites
		// the file whole.
		return nil
	}
	s.saveCount = doc.SaveCount
	for _, c := range doc.Categories {
		if c.ItemIDs == nil {
			c.ItemIDs = []string{}
		}
		s.cats[c.ID] = c
	}
	return nil
}

// Flush persists the current full state. The document is written to a temp
// file and atomically renamed over the previous one, so a crash mid-write
// never corrupts the committed state.
func (s *Store) Flush() error {
	s.mu.RLock()
	doc := document{
		Categories: make([]*Category, 0, len(s.cats)),
		SaveCount:  s.saveCount,
	}
	for _, c := range s.cats {
		doc.Categories = append(doc.Categories, c.clone())
	}
	s.mu.RUnlock()

	sortForDocument(doc.Categories)

	raw, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "flush", Err: err}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return &PersistenceError{Op: "flush", Err: err}
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return &PersistenceError{Op: "flush", Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return &PersistenceError{Op: "flush", Err: err}
	}
	return nil
}

// Path returns the storage location of the tree document.
func (s *Store) Path() string { return s.path }

// mutateLocked applies fn to a deep copy of the tree, re-validates the
// structural invariants, and swaps the copy in only if both succeed. A
// failed mutation leaves the prior state untouched. Caller must hold mu.
func (s *Store) mutateLocked(fn func(cats map[string]*Category) error) error {
	next := make(map[string]*Category, len(s.cats))
	for id, c := range s.cats {
		next[id] = c.clone()
	}
	if err := fn(next); err != nil {
		return err
	}
	if err := validateTree(next); err != nil {
		return err
	}
	s.cats = next
	return nil
}

// validateTree re-checks the structural invariants: depth at most two, an
// acyclic parent graph, parents that exist, and each item filed in at most
// one folder. Item existence in the owning item storage is the ingestion
// layer's responsibility.
func validateTree(cats map[string]*Category) error {
	for _, c := range cats {
		if c.ParentID == "" {
			continue
		}
		parent, ok := cats[c.ParentID]
		if !ok {
			return errNotFound("folder %q references missing parent %q", c.ID, c.ParentID)
		}
		if parent.ParentID != "" {
			return errDepthExceeded("folder %q would sit at depth 3", c.ID)
		}
		seen := map[string]bool{c.ID: true}
		for cur := parent; cur != nil; cur = cats[cur.ParentID] {
			if seen[cur.ID] {
				return errCycle("folder %q is its own ancestor", c.ID)
			}
			seen[cur.ID] = true
			if cur.ParentID == "" {
				break
			}
		}
	}

	owners := make(map[string]string)
	for _, c := range cats {
		for _, itemID := range c.ItemIDs {
			if prev, ok := owners[itemID]; ok {
				return errDuplicate("item %q filed in both %q and %q", itemID, prev, c.ID)
			}
			owners[itemID] = c.ID
		}
	}
	return nil
}

// generateID returns a fresh short ID not present in cats. Collisions are
// vanishingly rare but cheap to guard against.
func (s *Store) generateID(cats map[string]*Category) string {
	for {
		id := s.newID()
		if _, exists := cats[id]; !exists {
			return id
		}
	}
}

// IncrementSaveCount bumps the process-wide save counter after a
// successful filing and persists it. The counter is never reset; the
// reorganization trigger is "count modulo N == 0".
func (s *Store) IncrementSaveCount() (int, error) {
	s.mu.Lock()
	s.saveCount++
	n := s.saveCount
	s.mu.Unlock()
	return n, s.Flush()
}

// SaveCount returns the current save counter.
func (s *Store) SaveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveCount
}

// Get returns a copy of the folder with the given ID.
func (s *Store) Get(id string) (*Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cats[id]
	if !ok {
		return nil, errNotFound("folder %q does not exist", id)
	}
	return c.clone(), nil
}

// Roots returns the top-level folders, name-sorted.
func (s *Store) Roots() []*Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortByName(collect(s.cats, func(c *Category) bool { return c.ParentID == "" }))
}

// Children returns the sub-folders of a folder, name-sorted.
func (s *Store) Children(id string) []*Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortByName(collect(s.cats, func(c *Category) bool { return c.ParentID == id }))
}

// FlatList returns every folder, parents first, each root followed by its
// children.
func (s *Store) FlatList() []*Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roots := sortByName(collect(s.cats, func(c *Category) bool { return c.ParentID == "" }))
	var out []*Category
	for _, root := range roots {
		out = append(out, root)
		out = append(out, sortByName(collect(s.cats, func(c *Category) bool { return c.ParentID == root.ID }))...)
	}
	return out
}

// FindByName returns folders whose name contains the given text,
// case-insensitively.
func (s *Store) FindByName(name string) []*Category {
	needle := strings.ToLower(strings.TrimSpace(name))
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortByName(collect(s.cats, func(c *Category) bool {
		return strings.Contains(strings.ToLower(c.Name), needle)
	}))
}

// CategoryOf returns the ID of the folder an item is filed under, or false
// if the item is uncategorized.
func (s *Store) CategoryOf(itemID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cats {
		if c.hasItem(itemID) {
			return c.ID, true
		}
	}
	return "", false
}

// Uncategorized filters allItemIDs down to the items not filed in any
// folder, preserving input order.
func (s *Store) Uncategorized(allItemIDs []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filed := make(map[string]bool)
	for _, c := range s.cats {
		for _, id := range c.ItemIDs {
			filed[id] = true
		}
	}
	var out []string
	for _, id := range allItemIDs {
		if !filed[id] {
			out = append(out, id)
		}
	}
	return out
}

// TotalCategories returns the number of folders in the tree.
func (s *Store) TotalCategories() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cats)
}

func collect(cats map[string]*Category, keep func(*Category) bool) []*Category {
	var out []*Category
	for _, c := range cats {
		if keep(c) {
			out = append(out, c.clone())
		}
	}
	return out
}

// sortForDocument fixes the on-disk category order so repeated flushes of
// the same tree produce identical bytes.
func sortForDocument(cats []*Category) {
	sort.Slice(cats, func(i, j int) bool {
		a, b := cats[i], cats[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func sortByName(cats []*Category) []*Category {
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Name != cats[j].Name {
			return cats[i].Name < cats[j].Name
		}
		return cats[i].ID < cats[j].ID
	})
	return cats
}

// String renders a short description, mostly for logs.
func (s *Store) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("category.Store(%d folders, %d saves)", len(s.cats), s.saveCount)
}
