package category

// SnapshotNode is the depth-bounded projection of one folder that gets
// shipped to the classification collaborators: identity, descriptive
// context, and how many items sit directly under it.
type SnapshotNode struct {
	ID          string
	Name        string
	Emoji       string
	Description string
	Count       int
	Children    []SnapshotNode
}

// Snapshot projects the current tree into the two-level shape the
// collaborator contracts expect. Roots and children are name-sorted so the
// same tree always produces the same snapshot.
func (s *Store) Snapshot() []SnapshotNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotOf(s.cats)
}

func snapshotOf(cats map[string]*Category) []SnapshotNode {
	roots := sortByName(collect(cats, func(c *Category) bool { return c.ParentID == "" }))
	out := make([]SnapshotNode, 0, len(roots))
	for _, root := range roots {
		node := SnapshotNode{
			ID:          root.ID,
			Name:        root.Name,
			Emoji:       root.Emoji,
			Description: root.Description,
			Count:       len(root.ItemIDs),
		}
		children := sortByName(collect(cats, func(c *Category) bool { return c.ParentID == root.ID }))
		for _, child := range children {
			node.Children = append(node.Children, SnapshotNode{
				ID:          child.ID,
				Name:        child.Name,
				Emoji:       child.Emoji,
				Description: child.Description,
				Count:       len(child.ItemIDs),
			})
		}
		out = append(out, node)
	}
	return out
}

// TotalFolders counts every node in a snapshot.
func TotalFolders(tree []SnapshotNode) int {
	n := 0
	for _, root := range tree {
		n += 1 + len(root.Children)
	}
	return n
}
