package tui

import (
	"strings"

	"rustysweeper/internal/domain/tree"
)

// rebuild projects the tree into the visible list according to the
// expanded set, the hidden filter, the search query and the sort key,
// then clamps the selection into bounds.
func (m *Model) rebuild() {
	m.visible = m.visible[:0]
	if m.tree == nil {
		m.selected = 0
		return
	}

	query := strings.ToLower(strings.TrimSpace(m.search.Value()))

	_, rootExpanded := m.expanded[m.tree.Path]
	m.visible = append(m.visible, VisibleEntry{
		Entry:       m.tree,
		Depth:       0,
		Expanded:    rootExpanded,
		LastSibling: true,
		Project:     m.isProject(m.tree.Path),
	})
	if rootExpanded {
		m.appendChildren(m.tree, 1, query)
	}

	if len(m.visible) == 0 {
		m.selected = 0
		return
	}
	if m.selected >= len(m.visible) {
		m.selected = len(m.visible) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.clampOffset()
}

func (m *Model) appendChildren(dir *tree.Entry, depth int, query string) {
	included := make([]*tree.Entry, 0, len(dir.Children))
	for _, c := range dir.Children {
		if m.includes(c, query) {
			included = append(included, c)
		}
	}

	for i, c := range included {
		_, exp := m.expanded[c.Path]
		exp = exp && c.IsDir
		m.visible = append(m.visible, VisibleEntry{
			Entry:       c,
			Depth:       depth,
			Expanded:    exp,
			LastSibling: i == len(included)-1,
			Project:     c.IsDir && m.isProject(c.Path),
		})
		if exp {
			m.appendChildren(c, depth+1, query)
		}
	}
}

// includes applies the hidden filter and the search query. A directory
// whose descendant matches stays visible so the match is reachable.
func (m *Model) includes(e *tree.Entry, query string) bool {
	if !m.showHidden && strings.HasPrefix(e.Name, ".") {
		return false
	}
	if query == "" {
		return true
	}
	return m.matchesQuery(e, query)
}

func (m *Model) matchesQuery(e *tree.Entry, query string) bool {
	if strings.Contains(strings.ToLower(e.Name), query) {
		return true
	}
	for _, c := range e.Children {
		if !m.showHidden && strings.HasPrefix(c.Name, ".") {
			continue
		}
		if m.matchesQuery(c, query) {
			return true
		}
	}
	return false
}

// parentIndex finds the visible row of the selected entry's parent: the
// nearest row above with a smaller depth.
func (m *Model) parentIndex(idx int) int {
	if idx <= 0 || idx >= len(m.visible) {
		return idx
	}
	depth := m.visible[idx].Depth
	for i := idx - 1; i >= 0; i-- {
		if m.visible[i].Depth < depth {
			return i
		}
	}
	return idx
}

// clampOffset keeps the selected row inside the scroll window.
func (m *Model) clampOffset() {
	visibleRows := m.listHeight()
	if visibleRows < 1 {
		visibleRows = 1
	}
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+visibleRows {
		m.offset = m.selected - visibleRows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}
