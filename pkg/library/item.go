// Package library is the owning storage for saved items: the summaries the
// category tree files into folders. Each item lives in its own Markdown
// file with YAML front-matter, written atomically.
package library

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// ItemMeta holds the YAML front-matter fields of a saved item.
type ItemMeta struct {
	ID        string    `yaml:"id"`
	Title     string    `yaml:"title"`
	Show      string    `yaml:"show,omitempty"`
	URL       string    `yaml:"url,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// Validate ensures the required metadata fields are populated.
func (m *ItemMeta) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("library: missing ID")
	}
	if m.Title == "" {
		return fmt.Errorf("library: missing Title")
	}
	return nil
}

// Item is the fully parsed representation of a saved item: its metadata
// plus the summary text body.
type Item struct {
	Meta    ItemMeta
	Summary string
}

// Excerpt returns up to n bytes of the summary body, cut at a rune
// boundary, for use as classifier and search context.
func (it *Item) Excerpt(n int) string {
	body := strings.TrimSpace(it.Summary)
	if len(body) <= n {
		return body
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut]
}

// NewItemID generates a new item identifier: "item_" plus the first
// segment of a v4 UUID.
func NewItemID() string {
	return "item_" + strings.SplitN(uuid.New().String(), "-", 2)[0]
}

// Parse deserializes a raw item file into an Item.
func Parse(raw []byte) (*Item, error) {
	s := string(raw)
	if !strings.HasPrefix(s, frontMatterDelimiter) {
		return nil, fmt.Errorf("library: missing front-matter delimiter")
	}
	rest := s[len(frontMatterDelimiter):]
	idx := strings.Index(rest, "\n"+frontMatterDelimiter)
	if idx == -1 {
		return nil, fmt.Errorf("library: unclosed front-matter block")
	}
	yamlBlock := rest[:idx]
	bodyRaw := rest[idx+len("\n"+frontMatterDelimiter):]
	body := bodyRaw
	if strings.HasPrefix(bodyRaw, "\n\n") {
		body = bodyRaw[2:]
	} else if strings.HasPrefix(bodyRaw, "\n") {
		body = bodyRaw[1:]
	}

	var meta ItemMeta
	if err := yaml.Unmarshal([]byte(yamlBlock), &meta); err != nil {
		return nil, fmt.Errorf("library: front-matter parse error: %w", err)
	}
	return &Item{Meta: meta, Summary: body}, nil
}

// Serialize renders an Item back to its on-disk byte representation.
func Serialize(it *Item) ([]byte, error) {
	yamlBytes, err := yaml.Marshal(&it.Meta)
	if err != nil {
		return nil, fmt.Errorf("library: serialize error: %w", err)
	}
	var sb strings.Builder
	sb.WriteString(frontMatterDelimiter + "\n")
	sb.Write(yamlBytes)
	sb.WriteString(frontMatterDelimiter + "\n\n")
	sb.WriteString(it.Summary)
	return []byte(sb.String()), nil
}
