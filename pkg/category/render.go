package category

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize is how many directly filed items a folder view shows
	// per page.
	DefaultPageSize = 10

	// DefaultDisplayBudget is the display-length ceiling callers usually
	// pass, sized to fit a single chat message.
	DefaultDisplayBudget = 4000
)

// TitleFunc resolves an item ID to its display title. Items the resolver
// does not know render as their bare ID, so the tree never fails to
// display because the owning item storage is missing a record.
type TitleFunc func(itemID string) (string, bool)

// FolderPage is one size-bounded page of a folder listing. Next is an
// opaque continuation token; empty means this was the last page.
type FolderPage struct {
	Text string
	Next string
}

// RenderTree produces the root-level summary: every root folder with its
// emoji, name, and total item count including sub-folders, followed by its
// children with their direct counts. Items are never listed. If the output
// would exceed budget the view degrades deterministically: first to roots
// only, then by cutting whole entries from the end with a trailing
// "(+K more folders)" marker. A budget of zero or less means unlimited.
func (s *Store) RenderTree(budget int) string {
	s.mu.RLock()
	roots := sortByName(collect(s.cats, func(c *Category) bool { return c.ParentID == "" }))
	type entry struct {
		rootLine   string
		childLines []string
	}
	entries := make([]entry, 0, len(roots))
	for _, root := range roots {
		children := sortByName(collect(s.cats, func(c *Category) bool { return c.ParentID == root.ID }))
		total := len(root.ItemIDs)
		for _, child := range children {
			total += len(child.ItemIDs)
		}
		e := entry{rootLine: folderLine("", root.Emoji, root.Name, total)}
		for _, child := range children {
			e.childLines = append(e.childLines, folderLine("  ", child.Emoji, child.Name, len(child.ItemIDs)))
		}
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	if len(entries) == 0 {
		return ""
	}

	var full []string
	for _, e := range entries {
		full = append(full, e.rootLine)
		full = append(full, e.childLines...)
	}
	if text := strings.Join(full, "\n"); fits(text, budget) {
		return text
	}

	rootOnly := make([]string, len(entries))
	for i, e := range entries {
		rootOnly[i] = e.rootLine
	}
	if text := strings.Join(rootOnly, "\n"); fits(text, budget) {
		return text
	}

	for n := len(rootOnly) - 1; n >= 0; n-- {
		lines := append(append([]string{}, rootOnly[:n]...), fmt.Sprintf("… (+%d more folders)", len(rootOnly)-n))
		if text := strings.Join(lines, "\n"); fits(text, budget) {
			return text
		}
	}
	return ""
}

// RenderFolder produces the single-folder view: the folder header, its
// sub-folders, then one page of directly filed items. token selects the
// page ("" for the first); pageSize and budget bound the page, with budget
// shrinking the page rather than truncating mid-entry.
func (s *Store) RenderFolder(id, token string, pageSize, budget int, title TitleFunc) (*FolderPage, error) {
	s.mu.RLock()
	c, ok := s.cats[id]
	if !ok {
		s.mu.RUnlock()
		return nil, errNotFound("folder %q does not exist", id)
	}
	c = c.clone()
	children := sortByName(collect(s.cats, func(cat *Category) bool { return cat.ParentID == id }))
	s.mu.RUnlock()

	var header []string
	header = append(header, folderLine("", c.Emoji, c.Name, len(c.ItemIDs)))
	if c.Description != "" {
		header = append(header, c.Description)
	}
	for _, child := range children {
		header = append(header, folderLine("  ", child.Emoji, child.Name, len(child.ItemIDs)))
	}

	return paginate(header, c.ItemIDs, token, pageSize, budget, title)
}

// RenderItemList renders an arbitrary set of items under a caller-supplied
// header, with the same pagination and budget contract as RenderFolder.
// The ingestion layer uses it for the implicit "Uncategorized" bucket.
func RenderItemList(header string, itemIDs []string, token string, pageSize, budget int, title TitleFunc) (*FolderPage, error) {
	return paginate([]string{header}, itemIDs, token, pageSize, budget, title)
}

func paginate(header []string, itemIDs []string, token string, pageSize, budget int, title TitleFunc) (*FolderPage, error) {
	offset := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid page token %q", token)
		}
		offset = n
	}
	if offset > len(itemIDs) {
		offset = len(itemIDs)
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	lines := append([]string(nil), header...)
	base := strings.Join(lines, "\n")
	if !fits(base, budget) {
		// Header alone blows the ceiling: degrade to the first line only.
		lines = header[:1]
	}

	shown := 0
	for _, itemID := range itemIDs[offset:] {
		if shown >= pageSize {
			break
		}
		name := itemID
		if title != nil {
			if t, ok := title(itemID); ok {
				name = t
			}
		}
		candidate := append(append([]string(nil), lines...), "• "+name)
		if !fits(strings.Join(candidate, "\n"), budget) {
			break
		}
		lines = candidate
		shown++
	}

	// When the budget admits no entry at all, skip one anyway so a caller
	// following continuation tokens always makes progress.
	progressed := shown
	if shown == 0 && offset < len(itemIDs) {
		progressed = 1
	}

	page := &FolderPage{}
	if offset+progressed < len(itemIDs) {
		page.Next = strconv.Itoa(offset + progressed)
	}
	if offset+shown < len(itemIDs) {
		remaining := len(itemIDs) - offset - shown
		more := fmt.Sprintf("… %d more", remaining)
		if fits(strings.Join(append(append([]string(nil), lines...), more), "\n"), budget) {
			lines = append(lines, more)
		}
	}
	page.Text = strings.Join(lines, "\n")
	return page, nil
}

func folderLine(indent, emoji, name string, count int) string {
	var sb strings.Builder
	sb.WriteString(indent)
	if emoji != "" {
		sb.WriteString(emoji)
		sb.WriteString(" ")
	}
	sb.WriteString(name)
	if count > 0 {
		fmt.Fprintf(&sb, " (%d)", count)
	}
	return sb.String()
}

func fits(text string, budget int) bool {
	return budget <= 0 || len(text) <= budget
}
