package category

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// indexMeta is the front-matter block of the exported library index.
type indexMeta struct {
	Title   string `yaml:"title"`
	Type    string `yaml:"type"`
	Updated string `yaml:"updated"`
}

// ExportMarkdown writes a human-readable backup of the folder structure to
// <dir>/_library_index.md: YAML front-matter, one section per folder with
// its ID, description, and item count, and a fenced JSON copy of the raw
// document. The file is written atomically. Returns the path written.
func (s *Store) ExportMarkdown(dir string) (string, error) {
	s.mu.RLock()
	tree := snapshotOf(s.cats)
	doc := document{
		Categories: make([]*Category, 0, len(s.cats)),
		SaveCount:  s.saveCount,
	}
	for _, c := range s.cats {
		doc.Categories = append(doc.Categories, c.clone())
	}
	now := s.now()
	s.mu.RUnlock()

	sortForDocument(doc.Categories)

	meta, err := yaml.Marshal(indexMeta{
		Title:   "Library Index",
		Type:    "index",
		Updated: now.Format("2006-01-02T15:04:05Z07:00"),
	})
	if err != nil {
		return "", fmt.Errorf("category: export front-matter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(meta)
	sb.WriteString("---\n\n")
	sb.WriteString("# Library Index\n\n")
	sb.WriteString("Auto-generated backup of the folder structure.\n\n")
	sb.WriteString("## Folders\n\n")

	for _, root := range tree {
		writeFolderSection(&sb, "###", root)
		for _, child := range root.Children {
			writeFolderSection(&sb, "####", child)
		}
	}

	raw, err := json.MarshalIndent(doc.Categories, "", "  ")
	if err != nil {
		return "", fmt.Errorf("category: export backup block: %w", err)
	}
	sb.WriteString("## Raw document\n\n```json\n")
	sb.Write(raw)
	sb.WriteString("\n```\n")

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", &PersistenceError{Op: "export", Err: err}
	}
	path := filepath.Join(dir, "_library_index.md")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(sb.String()), 0o600); err != nil {
		return "", &PersistenceError{Op: "export", Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &PersistenceError{Op: "export", Err: err}
	}
	return path, nil
}

func writeFolderSection(sb *strings.Builder, heading string, node SnapshotNode) {
	name := node.Name
	if node.Emoji != "" {
		name = node.Emoji + " " + name
	}
	fmt.Fprintf(sb, "%s %s\n", heading, name)
	if node.Description != "" {
		fmt.Fprintf(sb, "_%s_\n", node.Description)
	}
	fmt.Fprintf(sb, "- ID: `%s`\n- Items: %d\n\n", node.ID, node.Count)
}
