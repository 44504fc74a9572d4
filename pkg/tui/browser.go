// Package tui implements the interactive library browser: drill from the
// folder tree into folder contents and individual summaries.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/stacks/pkg/category"
	"github.com/entrhq/stacks/pkg/library"
)

const (
	keyEnter = "enter"
	keyEsc   = "esc"
)

var (
	accentColor = lipgloss.Color("#FA8072")
	mutedColor  = lipgloss.Color("#808080")

	titleStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(1, 2)
)

type mode int

const (
	modeFolders mode = iota
	modeContents
	modeItem
)

// folderListItem is one folder row in the top-level list.
type folderListItem struct {
	cat      *category.Category
	children int
	items    int
}

func (i folderListItem) FilterValue() string { return i.cat.Name }

func (i folderListItem) Title() string {
	if i.cat.Emoji != "" {
		return i.cat.Emoji + " " + i.cat.Name
	}
	return i.cat.Name
}

func (i folderListItem) Description() string {
	parts := []string{fmt.Sprintf("%d items", i.items)}
	if i.children > 0 {
		parts = append(parts, fmt.Sprintf("%d sub-folders", i.children))
	}
	if i.cat.Description != "" {
		parts = append(parts, i.cat.Description)
	}
	return strings.Join(parts, " · ")
}

// uncatListItem is the synthetic "Uncategorized" row.
type uncatListItem struct {
	count int
}

func (i uncatListItem) FilterValue() string { return "Uncategorized" }
func (i uncatListItem) Title() string       { return "📥 Uncategorized" }
func (i uncatListItem) Description() string { return fmt.Sprintf("%d items", i.count) }

// itemListItem is one saved summary row inside a folder.
type itemListItem struct {
	item *library.Item
}

func (i itemListItem) FilterValue() string { return i.item.Meta.Title }
func (i itemListItem) Title() string       { return i.item.Meta.Title }

func (i itemListItem) Description() string {
	if i.item.Meta.Show != "" {
		return i.item.Meta.Show
	}
	return i.item.Excerpt(77)
}

func newDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(accentColor).
		BorderForeground(accentColor)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(mutedColor).
		BorderForeground(accentColor)
	return d
}

// Model is the browser's bubbletea model.
type Model struct {
	tree  *category.Store
	items library.ItemStore

	mode     mode
	folders  list.Model
	contents list.Model
	view     viewport.Model

	current     *category.Category
	currentItem *library.Item
	status      string

	width  int
	height int
	ready  bool
}

// NewModel builds the browser over the given tree and item store.
func NewModel(tree *category.Store, items library.ItemStore) *Model {
	folders := list.New(nil, newDelegate(), 0, 0)
	folders.Title = "📚 Library"
	folders.SetFilteringEnabled(true)
	folders.Styles.Title = titleStyle
	folders.AdditionalShortHelpKeys = browseHelpKeys

	contents := list.New(nil, newDelegate(), 0, 0)
	contents.SetFilteringEnabled(true)
	contents.Styles.Title = titleStyle
	contents.AdditionalShortHelpKeys = browseHelpKeys

	m := &Model{
		tree:     tree,
		items:    items,
		folders:  folders,
		contents: contents,
	}
	m.reloadFolders()
	return m
}

func browseHelpKeys() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys(keyEnter), key.WithHelp("enter", "open")),
		key.NewBinding(key.WithKeys(keyEsc), key.WithHelp("esc", "back")),
	}
}

// Run starts the browser and blocks until the user quits.
func Run(tree *category.Store, items library.ItemStore) error {
	p := tea.NewProgram(NewModel(tree, items), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) reloadFolders() {
	var rows []list.Item
	for _, root := range m.tree.Roots() {
		children := m.tree.Children(root.ID)
		total := len(root.ItemIDs)
		for _, child := range children {
			total += len(child.ItemIDs)
		}
		rows = append(rows, folderListItem{cat: root, children: len(children), items: total})
	}
	if ids := m.uncategorizedIDs(); len(ids) > 0 {
		rows = append(rows, uncatListItem{count: len(ids)})
	}
	m.folders.SetItems(rows)
}

func (m *Model) uncategorizedIDs() []string {
	all, err := m.items.List(context.Background())
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(all))
	for _, it := range all {
		ids = append(ids, it.Meta.ID)
	}
	return m.tree.Uncategorized(ids)
}

// openFolder loads a folder's sub-folders and items into the contents
// list. A nil folder opens the uncategorized bucket.
func (m *Model) openFolder(c *category.Category) {
	m.current = c
	var rows []list.Item
	var itemIDs []string

	if c == nil {
		m.contents.Title = "📥 Uncategorized"
		itemIDs = m.uncategorizedIDs()
	} else {
		m.contents.Title = folderTitle(c)
		for _, child := range m.tree.Children(c.ID) {
			rows = append(rows, folderListItem{cat: child, items: len(child.ItemIDs)})
		}
		itemIDs = c.ItemIDs
	}

	for _, id := range itemIDs {
		it, err := m.items.Read(context.Background(), id)
		if err != nil {
			continue
		}
		rows = append(rows, itemListItem{item: it})
	}
	m.contents.SetItems(rows)
	m.contents.ResetSelected()
	m.mode = modeContents
}

func folderTitle(c *category.Category) string {
	if c.Emoji != "" {
		return c.Emoji + " " + c.Name
	}
	return c.Name
}

func (m *Model) openItem(it *library.Item) {
	m.currentItem = it
	m.status = ""

	var b strings.Builder
	b.WriteString(it.Meta.Title + "\n")
	if it.Meta.Show != "" {
		b.WriteString(it.Meta.Show + "\n")
	}
	b.WriteString("\n" + it.Summary)

	m.view = viewport.New(m.width-8, m.height-6)
	m.view.SetContent(b.String())
	m.mode = modeItem
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.folders.SetSize(msg.Width-2, msg.Height-2)
		m.contents.SetSize(msg.Width-2, msg.Height-2)
		if m.mode == modeItem {
			m.view.Width = msg.Width - 8
			m.view.Height = msg.Height - 6
		}
	case tea.KeyMsg:
		if handled, model, cmd := m.handleKey(msg); handled {
			return model, cmd
		}
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeFolders:
		m.folders, cmd = m.folders.Update(msg)
	case modeContents:
		m.contents, cmd = m.contents.Update(msg)
	case modeItem:
		m.view, cmd = m.view.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return true, m, tea.Quit
	case "q":
		// q quits only from the top level; lists use it for nothing else.
		if m.mode == modeFolders && !m.folders.SettingFilter() {
			return true, m, tea.Quit
		}
	case keyEsc:
		switch m.mode {
		case modeItem:
			m.mode = modeContents
			return true, m, nil
		case modeContents:
			if m.contents.SettingFilter() {
				break
			}
			m.mode = modeFolders
			m.reloadFolders()
			return true, m, nil
		}
	case keyEnter:
		switch m.mode {
		case modeFolders:
			if m.folders.SettingFilter() {
				break
			}
			switch sel := m.folders.SelectedItem().(type) {
			case folderListItem:
				m.openFolder(sel.cat)
			case uncatListItem:
				m.openFolder(nil)
			}
			return true, m, nil
		case modeContents:
			if m.contents.SettingFilter() {
				break
			}
			switch sel := m.contents.SelectedItem().(type) {
			case folderListItem:
				m.openFolder(sel.cat)
			case itemListItem:
				m.openItem(sel.item)
			}
			return true, m, nil
		}
	case "c":
		if m.mode == modeItem && m.currentItem != nil {
			if err := clipboard.WriteAll(m.currentItem.Summary); err != nil {
				m.status = "copy failed: " + err.Error()
			} else {
				m.status = "summary copied to clipboard"
			}
			return true, m, nil
		}
	}
	return false, m, nil
}

func (m *Model) View() string {
	if !m.ready {
		return "loading…"
	}
	switch m.mode {
	case modeContents:
		return m.contents.View()
	case modeItem:
		header := titleStyle.Render(m.currentItem.Meta.Title)
		footer := statusStyle.Render("esc back · c copy · q quit")
		if m.status != "" {
			footer = statusStyle.Render(m.status)
		}
		box := summaryBoxStyle.Width(m.width - 4).Render(m.view.View())
		return lipgloss.JoinVertical(lipgloss.Left, header, box, footer)
	default:
		return m.folders.View()
	}
}
