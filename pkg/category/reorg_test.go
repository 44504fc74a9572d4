package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyReorganizationPartialBatch(t *testing.T) {
	s := newTestStore(t)

	ops := []Op{
		{Kind: OpCreate, Spec: &FolderSpec{Name: "Technology", Emoji: "💻"}},
		{Kind: OpRename, ID: "missing", Name: "Whatever"},
		{Kind: OpCreate, Spec: &FolderSpec{Name: "Science"}},
	}

	report, err := s.ApplyReorganization(ops)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Applied)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 1, report.Skipped[0].Index)
	assert.Equal(t, OpRename, report.Skipped[0].Kind)
	assert.Equal(t, 2, s.TotalCategories())
}

func TestMergeThenRenameSourceSkipped(t *testing.T) {
	s := newTestStore(t)
	a, err := s.Create("AI", "", "", "")
	require.NoError(t, err)
	b, err := s.Create("Machine Learning", "", "", "")
	require.NoError(t, err)
	require.NoError(t, s.FileItem("item_1", a.ID))

	// The batch merges A away and then tries to rename it. The rename must
	// skip without undoing the merge.
	report, err := s.ApplyReorganization([]Op{
		{Kind: OpMerge, SourceIDs: []string{a.ID}, TargetID: b.ID},
		{Kind: OpRename, ID: a.ID, Name: "Artificial Intelligence"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, OpRename, report.Skipped[0].Kind)

	owner, ok := s.CategoryOf("item_1")
	require.True(t, ok)
	assert.Equal(t, b.ID, owner)
	assert.Equal(t, 1, s.TotalCategories())
}

func TestMergeIntoNewTarget(t *testing.T) {
	s := newTestStore(t)
	a, err := s.Create("Crypto", "", "", "")
	require.NoError(t, err)
	b, err := s.Create("Blockchain", "", "", "")
	require.NoError(t, err)
	require.NoError(t, s.FileItem("item_1", a.ID))
	require.NoError(t, s.FileItem("item_2", b.ID))

	report, err := s.ApplyReorganization([]Op{
		{Kind: OpMerge, SourceIDs: []string{a.ID, b.ID}, NewTarget: &FolderSpec{Name: "Web3", Emoji: "🪙"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)

	targets := s.FindByName("Web3")
	require.Len(t, targets, 1)
	assert.ElementsMatch(t, []string{"item_1", "item_2"}, targets[0].ItemIDs)
	assert.Equal(t, 1, s.TotalCategories())
}

func TestMergeSurvivesMissingSource(t *testing.T) {
	s := newTestStore(t)
	a, err := s.Create("AI", "", "", "")
	require.NoError(t, err)
	b, err := s.Create("Tech", "", "", "")
	require.NoError(t, err)
	require.NoError(t, s.FileItem("item_1", a.ID))

	report, err := s.ApplyReorganization([]Op{
		{Kind: OpMerge, SourceIDs: []string{"missing", a.ID}, TargetID: b.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)

	owner, ok := s.CategoryOf("item_1")
	require.True(t, ok)
	assert.Equal(t, b.ID, owner)
}

func TestSplitMovesOnlyOwnedItems(t *testing.T) {
	s := newTestStore(t)
	tech, err := s.Create("Technology", "", "", "")
	require.NoError(t, err)
	other, err := s.Create("Other", "", "", "")
	require.NoError(t, err)
	require.NoError(t, s.FileItem("item_ai", tech.ID))
	require.NoError(t, s.FileItem("item_web", tech.ID))
	require.NoError(t, s.FileItem("item_misc", other.ID))

	report, err := s.ApplyReorganization([]Op{
		{Kind: OpSplit, SourceID: tech.ID, Children: []FolderSpec{
			{Name: "AI", ItemIDs: []string{"item_ai", "item_misc"}},
			{Name: "Web", ItemIDs: []string{"item_web"}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)

	ai := s.FindByName("AI")
	require.Len(t, ai, 1)
	// item_misc belongs to another folder and stays there.
	assert.Equal(t, []string{"item_ai"}, ai[0].ItemIDs)

	owner, ok := s.CategoryOf("item_misc")
	require.True(t, ok)
	assert.Equal(t, other.ID, owner)

	got, err := s.Get(tech.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ItemIDs)
	assert.Len(t, s.Children(tech.ID), 2)
}

func TestSplitSubFolderRejected(t *testing.T) {
	s := newTestStore(t)
	root, err := s.Create("Technology", "", "", "")
	require.NoError(t, err)
	child, err := s.Create("AI", "", "", root.ID)
	require.NoError(t, err)

	report, err := s.ApplyReorganization([]Op{
		{Kind: OpSplit, SourceID: child.ID, Children: []FolderSpec{{Name: "LLMs"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Applied)
	require.Len(t, report.Skipped, 1)
}

func TestMoveItemsOp(t *testing.T) {
	s := newTestStore(t)
	a, err := s.Create("A", "", "", "")
	require.NoError(t, err)
	b, err := s.Create("B", "", "", "")
	require.NoError(t, err)
	require.NoError(t, s.FileItem("item_1", a.ID))
	require.NoError(t, s.FileItem("item_2", a.ID))

	report, err := s.ApplyReorganization([]Op{
		{Kind: OpMoveItems, ItemIDs: []string{"item_1", "item_2"}, ToID: b.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)

	got, err := s.Get(b.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"item_1", "item_2"}, got.ItemIDs)
}

func TestMoveOpTopLevel(t *testing.T) {
	s := newTestStore(t)
	root, err := s.Create("Technology", "", "", "")
	require.NoError(t, err)
	child, err := s.Create("AI", "", "", root.ID)
	require.NoError(t, err)

	report, err := s.ApplyReorganization([]Op{
		{Kind: OpMove, ID: child.ID}, // nil ParentID promotes to top level
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)

	got, err := s.Get(child.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.ParentID)
}

func TestUnknownOpKindSkipped(t *testing.T) {
	s := newTestStore(t)
	report, err := s.ApplyReorganization([]Op{{Kind: OpKind("explode")}})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Applied)
	require.Len(t, report.Skipped, 1)
}
