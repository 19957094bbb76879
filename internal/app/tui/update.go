package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

const statusScanning = "Scanning…"

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
		return m, nil

	case scanDoneMsg:
		if m.status == statusScanning {
			m.status = ""
		}
		m.applyScan(msg)
		return m, nil

	case actionDoneMsg:
		m.status = msg.status
		m.scanning = true
		return m, m.rescanCmd()

	case tea.KeyMsg:
		switch m.mode {
		case ModeSearch:
			return m.updateSearch(msg)
		case ModeConfirmDelete, ModeConfirmClean:
			return m.updateConfirm(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "/":
		m.mode = ModeSearch
		m.search.SetValue("")
		m.search.Focus()
		m.rebuild()
		return m, nil

	case "d":
		if _, ok := m.selection(); ok {
			m.mode = ModeConfirmDelete
		}
		return m, nil

	case "c":
		if _, ok := m.selection(); ok {
			m.mode = ModeConfirmClean
		}
		return m, nil

	case "?":
		m.mode = ModeHelp
		return m, nil

	case "up", "k":
		m.moveSelection(-1)
	case "down", "j":
		m.moveSelection(1)
	case "pgup":
		m.moveSelection(-20)
	case "pgdown":
		m.moveSelection(20)
	case "home", "g":
		m.selected = 0
		m.clampOffset()
	case "end", "G":
		m.selected = len(m.visible) - 1
		if m.selected < 0 {
			m.selected = 0
		}
		m.clampOffset()

	case "right", "l", "enter":
		m.expandOrDescend()
	case "left", "h", "backspace":
		m.collapseOrAscend()
	case " ":
		m.toggleExpand()

	case "s":
		m.sortKey = (m.sortKey + 1) % 3
		m.applySort()
		m.rebuild()
	case ".":
		m.showHidden = !m.showHidden
		m.rebuild()
	case "r":
		m.scanning = true
		m.status = statusScanning
		return m, m.rescanCmd()
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = ModeNormal
		m.search.Blur()
		return m, nil
	case "esc":
		m.mode = ModeNormal
		m.search.SetValue("")
		m.search.Blur()
		m.rebuild()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.rebuild()
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		mode := m.mode
		m.mode = ModeNormal
		if mode == ModeConfirmDelete {
			return m, m.deleteSelected()
		}
		return m, m.cleanSelected()
	case "n", "N", "esc":
		m.mode = ModeNormal
	}
	return m, nil
}

func (m *Model) moveSelection(delta int) {
	if len(m.visible) == 0 {
		m.selected = 0
		return
	}
	m.selected += delta
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected >= len(m.visible) {
		m.selected = len(m.visible) - 1
	}
	m.clampOffset()
}

// expandOrDescend opens a collapsed directory, or steps into the first
// child when it is already open.
func (m *Model) expandOrDescend() {
	sel, ok := m.selection()
	if !ok || !sel.Entry.IsDir {
		return
	}
	if !sel.Expanded {
		m.expanded[sel.Entry.Path] = struct{}{}
		m.rebuild()
		return
	}
	if m.selected+1 < len(m.visible) && m.visible[m.selected+1].Depth == sel.Depth+1 {
		m.selected++
		m.clampOffset()
	}
}

// collapseOrAscend closes an open directory, or jumps to the parent row.
func (m *Model) collapseOrAscend() {
	sel, ok := m.selection()
	if !ok {
		return
	}
	if sel.Entry.IsDir && sel.Expanded {
		delete(m.expanded, sel.Entry.Path)
		m.rebuild()
		return
	}
	m.selected = m.parentIndex(m.selected)
	m.clampOffset()
}

func (m *Model) toggleExpand() {
	sel, ok := m.selection()
	if !ok || !sel.Entry.IsDir {
		return
	}
	if sel.Expanded {
		delete(m.expanded, sel.Entry.Path)
	} else {
		m.expanded[sel.Entry.Path] = struct{}{}
	}
	m.rebuild()
}
