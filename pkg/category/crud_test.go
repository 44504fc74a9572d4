package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUnderSubFolderRejected(t *testing.T) {
	s := newTestStore(t)
	root, err := s.Create("Technology", "", "", "")
	require.NoError(t, err)
	child, err := s.Create("AI", "", "", root.ID)
	require.NoError(t, err)

	_, err = s.Create("LLMs", "", "", child.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDepthExceeded))
	assert.Equal(t, 2, s.TotalCategories())
}

func TestCreateUnderUnknownParent(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create("AI", "", "", "nope")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestMoveRejectsSelfAndDescendant(t *testing.T) {
	s := newTestStore(t)
	root, err := s.Create("Technology", "", "", "")
	require.NoError(t, err)
	child, err := s.Create("AI", "", "", root.ID)
	require.NoError(t, err)

	err = s.Move(root.ID, root.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindCycle))

	err = s.Move(root.ID, child.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindCycle))
}

func TestMoveFolderWithChildrenRejected(t *testing.T) {
	s := newTestStore(t)
	tech, err := s.Create("Technology", "", "", "")
	require.NoError(t, err)
	_, err = s.Create("AI", "", "", tech.ID)
	require.NoError(t, err)
	science, err := s.Create("Science", "", "", "")
	require.NoError(t, err)

	// Tech has a child; nesting it under Science would create depth 3.
	err = s.Move(tech.ID, science.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDepthExceeded))

	// Failed move leaves the tree untouched.
	got, err := s.Get(tech.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.ParentID)
}

func TestMoveToTopLevel(t *testing.T) {
	s := newTestStore(t)
	root, err := s.Create("Technology", "", "", "")
	require.NoError(t, err)
	child, err := s.Create("AI", "", "", root.ID)
	require.NoError(t, err)

	require.NoError(t, s.Move(child.ID, ""))
	got, err := s.Get(child.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.ParentID)
	assert.Len(t, s.Roots(), 2)
}

func TestRename(t *testing.T) {
	s := newTestStore(t)
	root, err := s.Create("Tech", "💻", "", "")
	require.NoError(t, err)

	emoji := "🧠"
	require.NoError(t, s.Rename(root.ID, "Technology", &emoji))
	got, err := s.Get(root.ID)
	require.NoError(t, err)
	assert.Equal(t, "Technology", got.Name)
	assert.Equal(t, "🧠", got.Emoji)

	// Nil emoji keeps the old one.
	require.NoError(t, s.Rename(root.ID, "Tech & Science", nil))
	got, err = s.Get(root.ID)
	require.NoError(t, err)
	assert.Equal(t, "🧠", got.Emoji)

	err = s.Rename("nope", "X", nil)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestFileItemMovesBetweenFolders(t *testing.T) {
	s := newTestStore(t)
	a, err := s.Create("A", "", "", "")
	require.NoError(t, err)
	b, err := s.Create("B", "", "", "")
	require.NoError(t, err)

	require.NoError(t, s.FileItem("item_1", a.ID))
	require.NoError(t, s.FileItem("item_1", b.ID))

	owner, ok := s.CategoryOf("item_1")
	require.True(t, ok)
	assert.Equal(t, b.ID, owner)

	gotA, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Empty(t, gotA.ItemIDs)
}

func TestFileItemClearAssociation(t *testing.T) {
	s := newTestStore(t)
	a, err := s.Create("A", "", "", "")
	require.NoError(t, err)
	require.NoError(t, s.FileItem("item_1", a.ID))

	require.NoError(t, s.FileItem("item_1", ""))
	_, ok := s.CategoryOf("item_1")
	assert.False(t, ok)
}

func TestFileItemUnknownFolder(t *testing.T) {
	s := newTestStore(t)
	err := s.FileItem("item_1", "nope")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestDeleteChildReparentsToParent(t *testing.T) {
	s := newTestStore(t)
	root, err := s.Create("Technology", "", "", "")
	require.NoError(t, err)
	child, err := s.Create("AI", "", "", root.ID)
	require.NoError(t, err)
	require.NoError(t, s.FileItem("item_1", child.ID))
	require.NoError(t, s.FileItem("item_2", child.ID))

	orphaned, err := s.Delete(child.ID)
	require.NoError(t, err)
	assert.Empty(t, orphaned)

	got, err := s.Get(root.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"item_1", "item_2"}, got.ItemIDs)
}

func TestDeleteRootOrphansItemsAndPromotesChildren(t *testing.T) {
	s := newTestStore(t)
	root, err := s.Create("Technology", "", "", "")
	require.NoError(t, err)
	child, err := s.Create("AI", "", "", root.ID)
	require.NoError(t, err)
	require.NoError(t, s.FileItem("item_root", root.ID))
	require.NoError(t, s.FileItem("item_child", child.ID))

	orphaned, err := s.Delete(root.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"item_root"}, orphaned)

	// The child keeps its items and becomes top-level.
	got, err := s.Get(child.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.ParentID)
	assert.Equal(t, []string{"item_child"}, got.ItemIDs)

	_, ok := s.CategoryOf("item_root")
	assert.False(t, ok)
}

func TestDeleteUnknownFolder(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Delete("nope")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}
