// Package ingest drives the save workflow: persist the item, file it into
// the folder tree, and run the periodic reorganization pass. Persistence
// always comes first; classification and reorganization are best effort.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/stacks/pkg/category"
	"github.com/entrhq/stacks/pkg/classify"
	"github.com/entrhq/stacks/pkg/config"
	"github.com/entrhq/stacks/pkg/library"
	"github.com/entrhq/stacks/pkg/logging"
)

const excerptLen = 500

// Outcome reports what happened to one saved item.
type Outcome struct {
	Item       *library.Item
	FolderID   string // empty when the item landed uncategorized
	FolderName string
	// CreatedFolder is set when filing created a new folder.
	CreatedFolder bool
	// Reorganized carries the report of the periodic reorganization pass
	// when this save triggered one.
	Reorganized *Reorganized
}

// Reorganized summarizes a triggered reorganization pass.
type Reorganized struct {
	SaveCount int
	Report    *category.Report
	// Err is the collaborator failure when no proposals could be fetched.
	Err error
}

// Filer wires the item store, the folder tree, and the collaborators into
// the save workflow.
type Filer struct {
	items       library.ItemStore
	tree        *category.Store
	gateway     *classify.Gateway
	reorganizer classify.Reorganizer
	rules       []config.CompiledRule
	every       int
	timeout     time.Duration
	log         *logging.Logger
}

// NewFiler builds a Filer. gateway and reorganizer may be nil; filing then
// degrades to show rules and uncategorized, and no reorganization runs.
// every is the save-count cadence; non-positive disables the pass. timeout
// bounds the restructuring round trip; non-positive falls back to 30s.
func NewFiler(items library.ItemStore, tree *category.Store, gateway *classify.Gateway, reorganizer classify.Reorganizer, rules []config.CompiledRule, every int, timeout time.Duration, log *logging.Logger) *Filer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Filer{
		items:       items,
		tree:        tree,
		gateway:     gateway,
		reorganizer: reorganizer,
		rules:       rules,
		every:       every,
		timeout:     timeout,
		log:         log,
	}
}

// Save persists the item, files it, bumps the save counter, and runs the
// reorganization pass when the counter hits the cadence. The item is
// written before any collaborator call so a classification outage can
// never lose a summary; filing failures leave the item uncategorized.
func (f *Filer) Save(ctx context.Context, it *library.Item) (*Outcome, error) {
	if err := f.items.Write(ctx, it); err != nil {
		return nil, fmt.Errorf("failed to persist item %q: %w", it.Meta.ID, err)
	}

	out := &Outcome{Item: it}
	f.file(ctx, it, out)

	n, err := f.tree.IncrementSaveCount()
	if err != nil {
		f.warnf("failed to bump save counter: %v", err)
		return out, nil
	}
	if f.every > 0 && n%f.every == 0 {
		out.Reorganized = f.reorganize(ctx, n)
	}
	return out, nil
}

// file decides the destination folder: show rules first, then the
// classification gateway. Any failure along the way leaves the item
// uncategorized.
func (f *Filer) file(ctx context.Context, it *library.Item, out *Outcome) {
	if folderID, name, created := f.applyShowRules(it.Meta.Show); folderID != "" {
		if err := f.tree.FileItem(it.Meta.ID, folderID); err != nil {
			f.warnf("failed to file %q by show rule: %v", it.Meta.ID, err)
			return
		}
		out.FolderID, out.FolderName, out.CreatedFolder = folderID, name, created
		return
	}

	if f.gateway == nil {
		return
	}
	placement := f.gateway.Place(ctx, classify.Request{
		Title:   it.Meta.Title,
		Show:    it.Meta.Show,
		Excerpt: it.Excerpt(excerptLen),
		Tree:    f.tree.Snapshot(),
	})
	if placement == nil {
		return
	}

	folderID := placement.CategoryID
	if placement.NewCategory != nil {
		spec := placement.NewCategory
		c, err := f.tree.Create(spec.Name, spec.Emoji, spec.Description, spec.ParentID)
		if err != nil {
			f.warnf("failed to create proposed folder %q: %v", spec.Name, err)
			return
		}
		folderID = c.ID
		out.CreatedFolder = true
		out.FolderName = c.Name
	}

	if err := f.tree.FileItem(it.Meta.ID, folderID); err != nil {
		f.warnf("failed to file %q into %q: %v", it.Meta.ID, folderID, err)
		out.FolderID, out.FolderName, out.CreatedFolder = "", "", false
		return
	}
	out.FolderID = folderID
	if out.FolderName == "" {
		if c, err := f.tree.Get(folderID); err == nil {
			out.FolderName = c.Name
		}
	}
}

// applyShowRules matches the show name against the configured glob rules
// and resolves the destination root folder, creating it if needed. Rules
// pin by name; when several folders share the name the first top-level
// match wins.
func (f *Filer) applyShowRules(show string) (folderID, name string, created bool) {
	if show == "" {
		return "", "", false
	}
	for _, rule := range f.rules {
		if !rule.Pattern.Match(show) {
			continue
		}
		for _, c := range f.tree.FindByName(rule.Folder) {
			if c.ParentID == "" {
				return c.ID, c.Name, false
			}
		}
		c, err := f.tree.Create(rule.Folder, "", "", "")
		if err != nil {
			f.warnf("failed to create show-rule folder %q: %v", rule.Folder, err)
			return "", "", false
		}
		return c.ID, c.Name, true
	}
	return "", "", false
}

// reorganize fetches proposals and applies them. Collaborator failures
// are recorded on the outcome rather than returned; the save already
// succeeded by this point.
func (f *Filer) reorganize(ctx context.Context, saveCount int) *Reorganized {
	res := &Reorganized{SaveCount: saveCount}
	if f.reorganizer == nil {
		return res
	}

	titles := f.itemTitles(ctx)

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	ops, err := f.reorganizer.ProposeReorganization(ctx, f.tree.Snapshot(), titles)
	if err != nil {
		f.warnf("reorganization proposals unavailable: %v", err)
		res.Err = err
		return res
	}
	if len(ops) == 0 {
		return res
	}

	report, err := f.tree.ApplyReorganization(ops)
	if err != nil {
		f.warnf("failed to persist reorganized tree: %v", err)
		res.Err = err
	}
	res.Report = report
	for _, skip := range report.Skipped {
		f.infof("skipped %s proposal %d: %s", skip.Kind, skip.Index, skip.Reason)
	}
	return res
}

func (f *Filer) itemTitles(ctx context.Context) map[string]string {
	items, err := f.items.List(ctx)
	if err != nil {
		f.warnf("failed to list items for reorganization: %v", err)
		return nil
	}
	titles := make(map[string]string, len(items))
	for _, it := range items {
		titles[it.Meta.ID] = it.Meta.Title
	}
	return titles
}

func (f *Filer) warnf(format string, args ...interface{}) {
	if f.log != nil {
		f.log.Warnf(format, args...)
	}
}

func (f *Filer) infof(format string, args ...interface{}) {
	if f.log != nil {
		f.log.Infof(format, args...)
	}
}
