package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		m := newTestModel(t)
		next, cmd := m.Update(key(k))
		m = next.(Model)
		if !m.quitting {
			t.Errorf("%q: quitting not set", k)
		}
		if cmd == nil {
			t.Errorf("%q: expected quit command", k)
		}
	}
}

func TestModeTransitions(t *testing.T) {
	m := newTestModel(t)

	m = press(m, "/")
	if m.mode != ModeSearch {
		t.Fatalf("after /: mode = %v, want search", m.mode)
	}
	m = press(m, "esc")
	if m.mode != ModeNormal {
		t.Fatalf("esc should leave search, mode = %v", m.mode)
	}

	m = press(m, "d")
	if m.mode != ModeConfirmDelete {
		t.Fatalf("after d: mode = %v", m.mode)
	}
	m = press(m, "n")
	if m.mode != ModeNormal {
		t.Fatalf("n should cancel confirm, mode = %v", m.mode)
	}

	m = press(m, "c")
	if m.mode != ModeConfirmClean {
		t.Fatalf("after c: mode = %v", m.mode)
	}
	m = press(m, "esc")
	if m.mode != ModeNormal {
		t.Fatalf("esc should cancel confirm, mode = %v", m.mode)
	}

	m = press(m, "?")
	if m.mode != ModeHelp {
		t.Fatalf("after ?: mode = %v", m.mode)
	}
	m = press(m, "x")
	if m.mode != ModeNormal {
		t.Fatalf("any key should close help, mode = %v", m.mode)
	}
}

func TestMovementClamps(t *testing.T) {
	m := newTestModel(t)

	m = press(m, "up")
	if m.selected != 0 {
		t.Fatalf("up at top: selected = %d", m.selected)
	}

	m = press(m, "G")
	if m.selected != len(m.visible)-1 {
		t.Fatalf("G: selected = %d, want %d", m.selected, len(m.visible)-1)
	}
	m = press(m, "down")
	if m.selected != len(m.visible)-1 {
		t.Fatalf("down at bottom: selected = %d", m.selected)
	}

	m = press(m, "g")
	if m.selected != 0 {
		t.Fatalf("g: selected = %d, want 0", m.selected)
	}
}

func TestExpandAndCollapse(t *testing.T) {
	m := newTestModel(t)

	var docsIdx int
	for i, v := range m.visible {
		if v.Entry.Path == "/data/docs" {
			docsIdx = i
		}
	}
	m.selected = docsIdx

	before := len(m.visible)
	m = press(m, "right")
	if len(m.visible) != before+2 {
		t.Fatalf("expand: %d rows, want %d", len(m.visible), before+2)
	}

	// Second right steps into the first child.
	m = press(m, "right")
	if m.visible[m.selected].Depth != 2 {
		t.Fatalf("descend: depth = %d, want 2", m.visible[m.selected].Depth)
	}

	// Left on a file jumps to the parent, left again collapses it.
	m = press(m, "left")
	if m.visible[m.selected].Entry.Path != "/data/docs" {
		t.Fatalf("ascend: at %s", m.visible[m.selected].Entry.Path)
	}
	m = press(m, "left")
	if len(m.visible) != before {
		t.Fatalf("collapse: %d rows, want %d", len(m.visible), before)
	}
}

func TestSpaceToggles(t *testing.T) {
	m := newTestModel(t)
	for i, v := range m.visible {
		if v.Entry.Path == "/data/docs" {
			m.selected = i
		}
	}

	before := len(m.visible)
	m = press(m, " ")
	if len(m.visible) <= before {
		t.Fatal("space did not expand")
	}
	m = press(m, " ")
	if len(m.visible) != before {
		t.Fatal("space did not collapse back")
	}
}

func TestSortCycling(t *testing.T) {
	m := newTestModel(t)
	if m.sortKey != SortSize {
		t.Fatalf("default sort = %v", m.sortKey)
	}
	m = press(m, "s")
	if m.sortKey != SortName {
		t.Fatalf("after s: %v, want name", m.sortKey)
	}
	m = press(m, "s", "s")
	if m.sortKey != SortSize {
		t.Fatalf("cycle should wrap to size, got %v", m.sortKey)
	}
}

func TestHiddenToggleKey(t *testing.T) {
	m := newTestModel(t)
	before := len(m.visible)
	m = press(m, ".")
	if len(m.visible) != before+1 {
		t.Fatalf("after .: %d rows, want %d", len(m.visible), before+1)
	}
	m = press(m, ".")
	if len(m.visible) != before {
		t.Fatalf("toggle back: %d rows, want %d", len(m.visible), before)
	}
}

func TestSearchTypingFiltersLive(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "/")
	m = press(m, "r", "e", "a", "d")

	if m.search.Value() != "read" {
		t.Fatalf("query = %q", m.search.Value())
	}
	for _, v := range m.visible[1:] {
		if v.Entry.Path == "/data/docs" {
			t.Fatalf("non-match visible during search: %v", paths(m))
		}
	}

	// Enter keeps the filter, esc clears it.
	m = press(m, "enter")
	if m.mode != ModeNormal || m.search.Value() != "read" {
		t.Fatalf("enter: mode=%v query=%q", m.mode, m.search.Value())
	}
	m = press(m, "/", "esc")
	if m.search.Value() != "" {
		t.Fatalf("esc should clear query, got %q", m.search.Value())
	}
	if len(m.visible) < 3 {
		t.Fatalf("filter not cleared: %v", paths(m))
	}
}

func TestConfirmYesTriggersAction(t *testing.T) {
	m := newTestModel(t)
	for i, v := range m.visible {
		if v.Entry.Path == "/data/readme.md" {
			m.selected = i
		}
	}
	m = press(m, "d")
	next, cmd := m.Update(key("y"))
	m = next.(Model)
	if m.mode != ModeNormal {
		t.Fatalf("mode after y = %v", m.mode)
	}
	if cmd == nil {
		t.Fatal("y should return the delete command")
	}
}

func TestDeleteRootRefused(t *testing.T) {
	m := newTestModel(t)
	m.selected = 0
	if cmd := m.deleteSelected(); cmd != nil {
		t.Fatal("deleting the scan root must be refused")
	}
}

func TestScanDoneClearsOnlyScanStatus(t *testing.T) {
	m := newTestModel(t)

	m.status = statusScanning
	next, _ := m.Update(scanDoneMsg{tree: testTree()})
	m = next.(Model)
	if m.status != "" {
		t.Fatalf("scan status not cleared: %q", m.status)
	}

	m.status = "Deleted /data/readme.md"
	next, _ = m.Update(scanDoneMsg{tree: testTree()})
	m = next.(Model)
	if m.status != "Deleted /data/readme.md" {
		t.Fatalf("action status lost across rescan: %q", m.status)
	}
}

func TestActionDoneTriggersRescan(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(actionDoneMsg{status: "Cleaned x"})
	m = next.(Model)
	if m.status != "Cleaned x" {
		t.Fatalf("status = %q", m.status)
	}
	if !m.scanning || cmd == nil {
		t.Fatal("action completion should start a rescan")
	}
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	if m.width != 120 || m.height != 40 {
		t.Fatalf("size = %dx%d", m.width, m.height)
	}
}
