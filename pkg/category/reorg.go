package category

import "fmt"

// OpKind names one proposed reorganization edit.
type OpKind string

const (
	OpMerge     OpKind = "merge"
	OpSplit     OpKind = "split"
	OpRename    OpKind = "rename"
	OpCreate    OpKind = "create"
	OpMove      OpKind = "move"
	OpMoveItems OpKind = "move_items"
)

// FolderSpec describes a folder to be created by a proposal, optionally
// naming the items to pull into it.
type FolderSpec struct {
	Name        string   `json:"name"`
	Emoji       string   `json:"emoji,omitempty"`
	Description string   `json:"description,omitempty"`
	ParentID    string   `json:"parent_id,omitempty"`
	ItemIDs     []string `json:"item_ids,omitempty"`
}

// Op is one edit in a reorganization batch. Which fields are meaningful
// depends on Kind:
//
//	merge:      SourceIDs plus TargetID or NewTarget
//	split:      SourceID and Children
//	rename:     ID, Name, optional Emoji
//	create:     Spec
//	move:       ID and ParentID (nil means make top-level)
//	move_items: ItemIDs and ToID
type Op struct {
	Kind OpKind `json:"op"`

	SourceIDs []string    `json:"source_ids,omitempty"`
	TargetID  string      `json:"target_id,omitempty"`
	NewTarget *FolderSpec `json:"new_target,omitempty"`

	SourceID string       `json:"source_id,omitempty"`
	Children []FolderSpec `json:"children,omitempty"`

	ID    string  `json:"id,omitempty"`
	Name  string  `json:"name,omitempty"`
	Emoji *string `json:"emoji,omitempty"`

	Spec *FolderSpec `json:"spec,omitempty"`

	ParentID *string `json:"parent_id,omitempty"`

	ItemIDs []string `json:"item_ids,omitempty"`
	ToID    string   `json:"to_id,omitempty"`
}

// Skip records one proposal that could not be applied.
type Skip struct {
	Index  int
	Kind   OpKind
	Reason string
}

// Report summarizes a reorganization batch: how many proposals were
// applied, which were skipped and why, and human-readable change notes.
type Report struct {
	Applied int
	Skipped []Skip
	Changes []string
}

// ApplyReorganization applies a batch of externally proposed edits in the
// order received. Each edit goes through the same validated mutation
// primitives as the CRUD entry points; one edit's failure is recorded and
// skipped without aborting the rest, because proposals are not guaranteed
// internally consistent (a batch may rename a folder it also merges away).
// The whole batch runs under the write lock so readers never observe a
// half-applied batch, and the store is flushed once at the end.
func (s *Store) ApplyReorganization(ops []Op) (*Report, error) {
	report := &Report{}

	s.mu.Lock()
	for i, op := range ops {
		note, err := s.applyOpLocked(op)
		if err != nil {
			report.Skipped = append(report.Skipped, Skip{Index: i, Kind: op.Kind, Reason: err.Error()})
			continue
		}
		report.Applied++
		report.Changes = append(report.Changes, note)
	}
	s.mu.Unlock()

	return report, s.Flush()
}

func (s *Store) applyOpLocked(op Op) (string, error) {
	switch op.Kind {
	case OpMerge:
		return s.applyMergeLocked(op)
	case OpSplit:
		return s.applySplitLocked(op)
	case OpRename:
		var renamed string
		err := s.mutateLocked(func(cats map[string]*Category) error {
			c, ok := cats[op.ID]
			if !ok {
				return errNotFound("folder %q does not exist", op.ID)
			}
			renamed = c.Name
			return renameIn(cats, op.ID, op.Name, op.Emoji, s.now())
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("renamed %q to %q", renamed, op.Name), nil
	case OpCreate:
		if op.Spec == nil {
			return "", fmt.Errorf("create proposal carries no folder spec")
		}
		var name string
		err := s.mutateLocked(func(cats map[string]*Category) error {
			c, err := createIn(cats, s.generateID(cats), *op.Spec, s.now())
			if err != nil {
				return err
			}
			name = c.Name
			for _, itemID := range op.Spec.ItemIDs {
				if err := fileItemIn(cats, itemID, c.ID, s.now()); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("created %q with %d items", name, len(op.Spec.ItemIDs)), nil
	case OpMove:
		newParent := ""
		if op.ParentID != nil {
			newParent = *op.ParentID
		}
		err := s.mutateLocked(func(cats map[string]*Category) error {
			return moveIn(cats, op.ID, newParent, s.now())
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("moved folder %q", op.ID), nil
	case OpMoveItems:
		err := s.mutateLocked(func(cats map[string]*Category) error {
			target, ok := cats[op.ToID]
			if !ok {
				return errNotFound("folder %q does not exist", op.ToID)
			}
			for _, itemID := range op.ItemIDs {
				if err := fileItemIn(cats, itemID, target.ID, s.now()); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("moved %d items to folder %q", len(op.ItemIDs), op.ToID), nil
	default:
		return "", fmt.Errorf("unknown proposal kind %q", op.Kind)
	}
}

// applyMergeLocked folds each source folder into the target: items and
// child folders move over, then the emptied source goes through the delete
// lifecycle so nothing is lost. Sources are attempted independently; a
// missing or unmergeable source is noted without failing the others.
func (s *Store) applyMergeLocked(op Op) (string, error) {
	targetID := op.TargetID
	if targetID == "" && op.NewTarget != nil {
		err := s.mutateLocked(func(cats map[string]*Category) error {
			c, err := createIn(cats, s.generateID(cats), *op.NewTarget, s.now())
			if err != nil {
				return err
			}
			targetID = c.ID
			return nil
		})
		if err != nil {
			return "", err
		}
	}
	if _, ok := s.cats[targetID]; !ok {
		return "", errNotFound("merge target %q does not exist", targetID)
	}

	merged := 0
	var lastErr error
	for _, sourceID := range op.SourceIDs {
		if sourceID == targetID {
			continue
		}
		err := s.mutateLocked(func(cats map[string]*Category) error {
			source, ok := cats[sourceID]
			if !ok {
				return errNotFound("merge source %q does not exist", sourceID)
			}
			target := cats[targetID]
			now := s.now()
			for _, itemID := range source.ItemIDs {
				if !target.hasItem(itemID) {
					target.ItemIDs = append(target.ItemIDs, itemID)
				}
			}
			source.ItemIDs = []string{}
			for _, child := range cats {
				if child.ParentID == sourceID {
					child.ParentID = targetID
					child.UpdatedAt = now
				}
			}
			target.UpdatedAt = now
			_, err := reparentOnDelete(cats, sourceID, now)
			return err
		})
		if err != nil {
			lastErr = err
			continue
		}
		merged++
	}
	if merged == 0 {
		if lastErr != nil {
			return "", lastErr
		}
		return "", fmt.Errorf("merge proposal names no sources")
	}
	return fmt.Sprintf("merged %d folders into %q", merged, targetID), nil
}

// applySplitLocked creates the proposed child folders under the source and
// redistributes the named items. Item IDs not currently filed under the
// source are ignored rather than failing the whole split.
func (s *Store) applySplitLocked(op Op) (string, error) {
	var created int
	err := s.mutateLocked(func(cats map[string]*Category) error {
		source, ok := cats[op.SourceID]
		if !ok {
			return errNotFound("split source %q does not exist", op.SourceID)
		}
		if source.ParentID != "" {
			return errDepthExceeded("cannot split sub-folder %q: maximum folder depth is 2 levels", source.Name)
		}
		now := s.now()
		for _, spec := range op.Children {
			spec.ParentID = op.SourceID
			child, err := createIn(cats, s.generateID(cats), spec, now)
			if err != nil {
				return err
			}
			for _, itemID := range spec.ItemIDs {
				if !source.hasItem(itemID) {
					continue
				}
				source.removeItem(itemID)
				child.ItemIDs = append(child.ItemIDs, itemID)
			}
			created++
		}
		source.UpdatedAt = now
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("split %q into %d sub-folders", op.SourceID, created), nil
}
