package openai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/entrhq/stacks/pkg/category"
	"github.com/entrhq/stacks/pkg/classify"
)

// promptTokenBudget caps the variable part of each prompt. Trees and item
// lists are trimmed to fit; the fixed instructions are always sent whole.
const promptTokenBudget = 6000

const categorizeSystemPrompt = `You are a librarian organizing a personal library of podcast episode summaries into a two-level folder tree.

Given an item and the current folder tree, decide where the item belongs. Prefer an existing folder when one fits. Propose a new folder only when nothing existing fits, and prefer placing new folders under an existing top-level folder.

Respond with ONLY a JSON object, no prose, in one of these two shapes:
{"category_id": "<id of an existing folder>"}
{"new_category": {"name": "...", "emoji": "...", "description": "...", "parent_id": "<existing top-level folder id, or empty for top level>"}}`

const reorganizeSystemPrompt = `You are a librarian reviewing a two-level folder tree of podcast episode summaries.

Propose edits that keep the tree tidy: merge overlapping folders, split overgrown top-level folders into subfolders, rename unclear folders, create missing folders, move misplaced folders, and move misfiled items. The tree can be at most two levels deep. Only propose edits that improve the organization; an empty list is a valid answer.

Respond with ONLY a JSON array of operation objects, no prose. Operations:
{"op": "merge", "source_ids": ["..."], "target_id": "<existing id>"}
{"op": "merge", "source_ids": ["..."], "new_target": {"name": "...", "emoji": "...", "description": "..."}}
{"op": "split", "source_id": "<top-level id>", "children": [{"name": "...", "emoji": "...", "description": "...", "item_ids": ["..."]}]}
{"op": "rename", "id": "...", "name": "...", "emoji": "..."}
{"op": "create", "spec": {"name": "...", "emoji": "...", "description": "...", "parent_id": "..."}}
{"op": "move", "id": "...", "parent_id": "<new parent id, or null for top level>"}
{"op": "move_items", "item_ids": ["..."], "to_id": "..."}`

const rankSystemPrompt = `You rank podcast episode summaries by relevance to a search query.

Score each item from 1 (barely related) to 5 (directly answers the query). Omit items that are not relevant at all.

Respond with ONLY a JSON array, no prose:
[{"item_id": "...", "score": 3}]`

func categorizeUserPrompt(req classify.Request, tok *Tokenizer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Item:\nTitle: %s\n", req.Title)
	if req.Show != "" {
		fmt.Fprintf(&b, "Show: %s\n", req.Show)
	}
	if req.Excerpt != "" {
		fmt.Fprintf(&b, "Summary excerpt: %s\n", req.Excerpt)
	}
	b.WriteString("\nCurrent folder tree:\n")
	b.WriteString(renderTreeForPrompt(req.Tree, tok.Remaining(promptTokenBudget, b.String())))
	return b.String()
}

func reorganizeUserPrompt(tree []category.SnapshotNode, itemTitles map[string]string, tok *Tokenizer) string {
	var b strings.Builder
	b.WriteString("Current folder tree:\n")
	b.WriteString(renderTreeForPrompt(tree, promptTokenBudget/2))

	if len(itemTitles) > 0 {
		b.WriteString("\nItem titles:\n")
		ids := make([]string, 0, len(itemTitles))
		for id := range itemTitles {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		budget := tok.Remaining(promptTokenBudget, b.String())
		for _, id := range ids {
			line := fmt.Sprintf("%s: %s\n", id, itemTitles[id])
			cost := tok.Count(line)
			if cost > budget {
				b.WriteString("… (list trimmed)\n")
				break
			}
			budget -= cost
			b.WriteString(line)
		}
	}
	return b.String()
}

func rankUserPrompt(query string, items []classify.SearchItem, tok *Tokenizer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\nItems:\n", query)
	budget := tok.Remaining(promptTokenBudget, b.String())
	for _, it := range items {
		line := fmt.Sprintf("%s | %s", it.ID, it.Title)
		if it.Show != "" {
			line += " | " + it.Show
		}
		if it.Excerpt != "" {
			line += " | " + it.Excerpt
		}
		line += "\n"
		cost := tok.Count(line)
		if cost > budget {
			break
		}
		budget -= cost
		b.WriteString(line)
	}
	return b.String()
}

// renderTreeForPrompt lays out the snapshot as indented id-tagged lines,
// trimmed whole-root at the token budget.
func renderTreeForPrompt(tree []category.SnapshotNode, budget int) string {
	if len(tree) == 0 {
		return "(empty)\n"
	}
	var b strings.Builder
	spent := 0
	for i, root := range tree {
		var section strings.Builder
		writeNodeLine(&section, root, 0)
		for _, child := range root.Children {
			writeNodeLine(&section, child, 1)
		}
		cost := approxTokens(section.String())
		if budget > 0 && spent+cost > budget && i > 0 {
			fmt.Fprintf(&b, "… (+%d more folders)\n", len(tree)-i)
			break
		}
		spent += cost
		b.WriteString(section.String())
	}
	return b.String()
}

func writeNodeLine(b *strings.Builder, n category.SnapshotNode, depth int) {
	indent := strings.Repeat("  ", depth)
	label := n.Name
	if n.Emoji != "" {
		label = n.Emoji + " " + n.Name
	}
	fmt.Fprintf(b, "%s[%s] %s (%d items)", indent, n.ID, label, n.Count)
	if n.Description != "" {
		fmt.Fprintf(b, " - %s", n.Description)
	}
	b.WriteString("\n")
}
