package category

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTreeCountsIncludeChildren(t *testing.T) {
	s := newTestStore(t)
	tech, err := s.Create("Technology", "💻", "", "")
	require.NoError(t, err)
	ai, err := s.Create("AI", "🤖", "", tech.ID)
	require.NoError(t, err)
	require.NoError(t, s.FileItem("item_1", tech.ID))
	require.NoError(t, s.FileItem("item_2", ai.ID))
	require.NoError(t, s.FileItem("item_3", ai.ID))
	_, err = s.Create("Empty", "", "", "")
	require.NoError(t, err)

	text := s.RenderTree(0)
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Empty", lines[0]) // zero counts are omitted
	assert.Equal(t, "💻 Technology (3)", lines[1])
	assert.Equal(t, "  🤖 AI (2)", lines[2])
}

func TestRenderTreeEmpty(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, "", s.RenderTree(4000))
}

func TestRenderTreeDegradesToRootsOnly(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 3; i++ {
		root, err := s.Create(fmt.Sprintf("Root%d", i), "", "", "")
		require.NoError(t, err)
		for j := 0; j < 5; j++ {
			_, err := s.Create(fmt.Sprintf("Child%d%d", i, j), "", "", root.ID)
			require.NoError(t, err)
		}
	}

	full := s.RenderTree(0)
	budget := len(full) - 1
	degraded := s.RenderTree(budget)
	assert.LessOrEqual(t, len(degraded), budget)
	assert.Equal(t, "Root0\nRoot1\nRoot2", degraded)
}

func TestRenderTreeCutsWithMarker(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 10; i++ {
		_, err := s.Create(fmt.Sprintf("Folder%02d", i), "", "", "")
		require.NoError(t, err)
	}

	text := s.RenderTree(60)
	assert.LessOrEqual(t, len(text), 60)
	assert.Contains(t, text, "more folders)")
}

func TestRenderFolderPagination(t *testing.T) {
	s := newTestStore(t)
	root, err := s.Create("Technology", "", "", "")
	require.NoError(t, err)
	for i := 0; i < 15; i++ {
		require.NoError(t, s.FileItem(fmt.Sprintf("item_%02d", i), root.ID))
	}

	titles := func(id string) (string, bool) { return "Episode " + id, true }

	page, err := s.RenderFolder(root.ID, "", 10, 0, titles)
	require.NoError(t, err)
	assert.Equal(t, "10", page.Next)
	assert.Equal(t, 10, strings.Count(page.Text, "• "))
	assert.Contains(t, page.Text, "… 5 more")
	assert.Contains(t, page.Text, "Episode item_00")

	page, err = s.RenderFolder(root.ID, page.Next, 10, 0, titles)
	require.NoError(t, err)
	assert.Equal(t, "", page.Next)
	assert.Equal(t, 5, strings.Count(page.Text, "• "))
}

func TestRenderFolderUnknownTitleFallsBackToID(t *testing.T) {
	s := newTestStore(t)
	root, err := s.Create("Technology", "", "", "")
	require.NoError(t, err)
	require.NoError(t, s.FileItem("item_xx", root.ID))

	page, err := s.RenderFolder(root.ID, "", 10, 0, func(string) (string, bool) { return "", false })
	require.NoError(t, err)
	assert.Contains(t, page.Text, "• item_xx")
}

func TestRenderFolderBudgetShrinksPage(t *testing.T) {
	s := newTestStore(t)
	root, err := s.Create("T", "", "", "")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.NoError(t, s.FileItem(fmt.Sprintf("item_%d", i), root.ID))
	}

	// Budget fits the header plus roughly three entry lines; entries are
	// added whole-line only, never truncated mid-entry.
	page, err := s.RenderFolder(root.ID, "", 10, 45, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(page.Text), 45)
	shown := strings.Count(page.Text, "• ")
	assert.Greater(t, shown, 0)
	assert.Less(t, shown, 10)
	assert.NotEqual(t, "", page.Next)
}

func TestRenderFolderTinyBudgetStillAdvances(t *testing.T) {
	s := newTestStore(t)
	root, err := s.Create("T", "", "", "")
	require.NoError(t, err)
	require.NoError(t, s.FileItem("item_one", root.ID))
	require.NoError(t, s.FileItem("item_two", root.ID))

	// Budget fits the header only; no entry line ever fits. Following the
	// continuation tokens must still terminate instead of re-serving the
	// same page forever.
	token := ""
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		page, err := s.RenderFolder(root.ID, token, 10, 7, nil)
		require.NoError(t, err)
		if page.Next == "" {
			return
		}
		require.False(t, seen[page.Next], "token %q served twice", page.Next)
		seen[page.Next] = true
		token = page.Next
	}
	t.Fatal("continuation tokens never terminated")
}

func TestRenderFolderInvalidToken(t *testing.T) {
	s := newTestStore(t)
	root, err := s.Create("T", "", "", "")
	require.NoError(t, err)

	_, err = s.RenderFolder(root.ID, "banana", 10, 0, nil)
	assert.Error(t, err)
}

func TestRenderFolderNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RenderFolder("nope", "", 10, 0, nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestRenderItemList(t *testing.T) {
	page, err := RenderItemList("📥 Uncategorized", []string{"item_a", "item_b"}, "", 10, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "📥 Uncategorized\n• item_a\n• item_b", page.Text)
	assert.Equal(t, "", page.Next)
}
