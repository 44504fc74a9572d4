// Package classify defines the capability contracts for the external
// classification collaborators: filing placement, reorganization
// proposals, and relevance ranking. The collaborators decide; this package
// only specifies the request/response shapes, applies bounded timeouts,
// and turns every failure into the documented soft-failure path.
package classify

import (
	"context"

	"github.com/entrhq/stacks/pkg/category"
)

// Request carries an item's descriptive metadata plus the current tree
// shape to the placement collaborator.
type Request struct {
	Title   string
	Show    string
	Excerpt string
	Tree    []category.SnapshotNode
}

// Placement is the collaborator's filing decision: an existing folder, a
// proposal for a new one, or neither (no placement).
type Placement struct {
	CategoryID  string
	NewCategory *category.FolderSpec
}

// Classifier decides which folder an item belongs to.
type Classifier interface {
	Classify(ctx context.Context, req Request) (*Placement, error)
}

// Reorganizer reviews the tree and proposes an ordered batch of structural
// edits. Proposals are advisory and not guaranteed internally consistent;
// the reorganization engine applies what is structurally valid.
type Reorganizer interface {
	ProposeReorganization(ctx context.Context, tree []category.SnapshotNode, itemTitles map[string]string) ([]category.Op, error)
}

// SearchItem is one candidate handed to the relevance ranker.
type SearchItem struct {
	ID      string
	Title   string
	Show    string
	Excerpt string
}

// RankedItem is one ranked result. Score is on the fixed 1-5 scale.
type RankedItem struct {
	ItemID string `json:"item_id"`
	Score  int    `json:"score"`
}

// Ranker orders items by relevance to a free-text query.
type Ranker interface {
	Rank(ctx context.Context, query string, items []SearchItem) ([]RankedItem, error)
}
