package category

import "time"

// Create makes a new folder, optionally under an existing root folder.
// Returns KindNotFound if the parent is unknown and KindDepthExceeded if
// the parent is itself a child (the tree caps at two levels).
func (s *Store) Create(name, emoji, description, parentID string) (*Category, error) {
	var created *Category
	s.mu.Lock()
	err := s.mutateLocked(func(cats map[string]*Category) error {
		c, err := createIn(cats, s.generateID(cats), FolderSpec{
			Name:        name,
			Emoji:       emoji,
			Description: description,
			ParentID:    parentID,
		}, s.now())
		if err != nil {
			return err
		}
		created = c.clone()
		return nil
	})
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return created, s.Flush()
}

// Rename updates a folder's name and, when newEmoji is non-nil, its emoji.
func (s *Store) Rename(id, newName string, newEmoji *string) error {
	s.mu.Lock()
	err := s.mutateLocked(func(cats map[string]*Category) error {
		return renameIn(cats, id, newName, newEmoji, s.now())
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Flush()
}

// Move re-parents a folder. An empty newParentID makes it top-level.
// Returns KindCycle if the destination is the folder itself or one of its
// descendants, and KindDepthExceeded if the move would create a depth-3
// chain (including moving a folder that has children under another).
func (s *Store) Move(id, newParentID string) error {
	s.mu.Lock()
	err := s.mutateLocked(func(cats map[string]*Category) error {
		return moveIn(cats, id, newParentID, s.now())
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Flush()
}

// Delete removes a folder through the re-parenting lifecycle: directly
// held items and child folders move to the deleted folder's parent, or to
// the root when the folder was itself top-level. Items of a deleted root
// folder become uncategorized; their IDs are returned. Deletion never
// drops items.
func (s *Store) Delete(id string) ([]string, error) {
	var orphaned []string
	s.mu.Lock()
	err := s.mutateLocked(func(cats map[string]*Category) error {
		ids, err := reparentOnDelete(cats, id, s.now())
		if err != nil {
			return err
		}
		orphaned = ids
		return nil
	})
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return orphaned, s.Flush()
}

// FileItem associates an item with a folder, removing any prior
// association first so an item is never filed twice. An empty categoryID
// clears the association, leaving the item uncategorized.
func (s *Store) FileItem(itemID, categoryID string) error {
	s.mu.Lock()
	err := s.mutateLocked(func(cats map[string]*Category) error {
		return fileItemIn(cats, itemID, categoryID, s.now())
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Flush()
}

// MoveItem is FileItem under a name that reads better at call sites that
// relocate an already-filed item.
func (s *Store) MoveItem(itemID, newCategoryID string) error {
	return s.FileItem(itemID, newCategoryID)
}

// createIn, renameIn, moveIn, fileItemIn and reparentOnDelete are the
// shared mutation primitives. They operate on the staged copy handed out
// by mutateLocked so the CRUD entry points and the reorganization engine
// go through identical checks.

func createIn(cats map[string]*Category, id string, spec FolderSpec, now time.Time) (*Category, error) {
	if spec.ParentID != "" {
		parent, ok := cats[spec.ParentID]
		if !ok {
			return nil, errNotFound("parent folder %q does not exist", spec.ParentID)
		}
		if parent.ParentID != "" {
			return nil, errDepthExceeded("cannot create under %q: maximum folder depth is 2 levels", parent.Name)
		}
	}
	c := &Category{
		ID:          id,
		Name:        spec.Name,
		Emoji:       spec.Emoji,
		Description: spec.Description,
		ParentID:    spec.ParentID,
		ItemIDs:     []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	cats[id] = c
	return c, nil
}

func renameIn(cats map[string]*Category, id, newName string, newEmoji *string, now time.Time) error {
	c, ok := cats[id]
	if !ok {
		return errNotFound("folder %q does not exist", id)
	}
	c.Name = newName
	if newEmoji != nil {
		c.Emoji = *newEmoji
	}
	c.UpdatedAt = now
	return nil
}

func moveIn(cats map[string]*Category, id, newParentID string, now time.Time) error {
	c, ok := cats[id]
	if !ok {
		return errNotFound("folder %q does not exist", id)
	}
	if newParentID != "" {
		parent, ok := cats[newParentID]
		if !ok {
			return errNotFound("destination folder %q does not exist", newParentID)
		}
		if newParentID == id {
			return errCycle("cannot move folder %q under itself", id)
		}
		for cur := parent; cur.ParentID != ""; cur = cats[cur.ParentID] {
			if cur.ParentID == id {
				return errCycle("cannot move folder %q under its descendant %q", id, newParentID)
			}
		}
		if parent.ParentID != "" {
			return errDepthExceeded("destination %q is already a sub-folder", parent.Name)
		}
		for _, other := range cats {
			if other.ParentID == id {
				return errDepthExceeded("folder %q has sub-folders and cannot become a child", c.Name)
			}
		}
	}
	c.ParentID = newParentID
	c.UpdatedAt = now
	return nil
}

func fileItemIn(cats map[string]*Category, itemID, categoryID string, now time.Time) error {
	if categoryID != "" {
		if _, ok := cats[categoryID]; !ok {
			return errNotFound("folder %q does not exist", categoryID)
		}
	}
	for _, c := range cats {
		if c.ID != categoryID && c.removeItem(itemID) {
			c.UpdatedAt = now
		}
	}
	if categoryID == "" {
		return nil
	}
	target := cats[categoryID]
	if !target.hasItem(itemID) {
		target.ItemIDs = append(target.ItemIDs, itemID)
		target.UpdatedAt = now
	}
	return nil
}

// reparentOnDelete is the explicit deletion lifecycle transition: items
// and children of the deleted folder are handed to its parent (or become
// uncategorized / top-level when there is none) before the folder is
// removed. Returns the IDs of items that lost their only folder.
func reparentOnDelete(cats map[string]*Category, id string, now time.Time) ([]string, error) {
	c, ok := cats[id]
	if !ok {
		return nil, errNotFound("folder %q does not exist", id)
	}

	var orphaned []string
	if parent, ok := cats[c.ParentID]; ok {
		for _, itemID := range c.ItemIDs {
			if !parent.hasItem(itemID) {
				parent.ItemIDs = append(parent.ItemIDs, itemID)
			}
		}
		parent.UpdatedAt = now
	} else {
		orphaned = append(orphaned, c.ItemIDs...)
	}

	for _, child := range cats {
		if child.ParentID == id {
			child.ParentID = c.ParentID
			child.UpdatedAt = now
		}
	}

	delete(cats, id)
	return orphaned, nil
}
