// Package category implements the hierarchical folder tree that organizes
// saved library items. It owns the tree's data model and invariants, the
// create/rename/move/delete and item-filing operations, the reorganization
// engine that applies externally proposed batches of edits, and the
// rendering contract used for display.
//
// The tree is at most two levels deep: root folders and their children.
// Every mutation is validated against the structural invariants before it
// is committed, and the full state is persisted as a single JSON document
// written atomically (temp file + rename).
package category

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is a named folder in the two-level tree. ItemIDs records the
// items filed directly under this folder, in filing order. An item appears
// in at most one folder's ItemIDs at any time.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Emoji       string    `json:"emoji,omitempty"`
	Description string    `json:"description,omitempty"`
	ParentID    string    `json:"parent_id,omitempty"`
	ItemIDs     []string  `json:"item_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Category) clone() *Category {
	dup := *c
	dup.ItemIDs = append([]string(nil), c.ItemIDs...)
	return &dup
}

func (c *Category) hasItem(itemID string) bool {
	for _, id := range c.ItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

func (c *Category) removeItem(itemID string) bool {
	for i, id := range c.ItemIDs {
		if id == itemID {
			c.ItemIDs = append(c.ItemIDs[:i], c.ItemIDs[i+1:]...)
			return true
		}
	}
	return false
}

// NewID generates a short stable folder identifier: the first segment of a
// v4 UUID. IDs are never reused, even after a folder is deleted.
func NewID() string {
	return strings.SplitN(uuid.New().String(), "-", 2)[0]
}
