package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"rustysweeper/internal/domain/size"
)

const sizeBarWidth = 10

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	dirStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("237")).Bold(true)

	gradeGreen  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	gradeYellow = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	gradeOrange = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	gradeRed    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

	overlayBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func formatBytes(n int64) string { return size.Format(n) }

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.mode {
	case ModeHelp:
		return m.viewHelp()
	case ModeConfirmDelete, ModeConfirmClean:
		return m.viewConfirm()
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString(m.viewList())
	if m.mode == ModeSearch {
		b.WriteString(m.viewSearchOverlay())
	}
	b.WriteString(m.viewFooter())
	return b.String()
}

// viewHeader renders the three fixed rows: root path, totals, mount
// usage.
func (m Model) viewHeader() string {
	title := m.style(headerStyle).Render("rusty-sweeper · " + m.root)

	totals := "scanning…"
	if m.tree != nil {
		totals = fmt.Sprintf("Total: %s  (%s files, %s dirs)",
			size.Format(m.tree.Size),
			humanize.Comma(m.tree.FileCount),
			humanize.Comma(m.tree.DirCount))
		if m.scanning {
			totals += "  (rescanning…)"
		}
	}

	mount := ""
	if m.haveDsk {
		mount = fmt.Sprintf("Mount %s: %.1f%% used (%s free)",
			m.disk.MountPoint, m.disk.Percent, m.disk.AvailableHuman())
	}

	return title + "\n" + totals + "\n" + m.style(faintStyle).Render(mount) + "\n"
}

func (m Model) listHeight() int {
	h := m.height - 5 // 3 header + 2 footer
	if m.mode == ModeSearch {
		h -= 3
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) viewList() string {
	rows := m.listHeight()
	var b strings.Builder

	maxSize := int64(1)
	if m.tree != nil && m.tree.Size > 0 {
		maxSize = m.tree.Size
	}

	end := m.offset + rows
	if end > len(m.visible) {
		end = len(m.visible)
	}
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.visible[i], i == m.selected, maxSize))
		b.WriteString("\n")
	}
	for i := end - m.offset; i < rows; i++ {
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderRow(v VisibleEntry, selected bool, maxSize int64) string {
	e := v.Entry

	icon := "  "
	if e.IsDir {
		if v.Expanded {
			icon = "▾ "
		} else {
			icon = "▸ "
		}
	}

	marker := "   "
	if v.Project {
		marker = "[P]"
	}

	indent := strings.Repeat("  ", v.Depth)

	nameWidth := m.width - len(indent) - len(icon) - len(marker) - sizeBarWidth - 14
	if nameWidth < 8 {
		nameWidth = 8
	}
	name := truncate(e.Name, nameWidth)
	if e.IsError() {
		name = truncate(e.Name+" ("+e.Err+")", nameWidth)
	}
	pad := strings.Repeat(" ", nameWidth-lipgloss.Width(name))

	ratio := float64(e.Size) / float64(maxSize)
	bar := sizeBar(e.Size, maxSize)
	sizeText := fmt.Sprintf("%10s", size.Format(e.Size))

	var nameStr string
	switch {
	case e.IsError():
		nameStr = m.style(errStyle).Render(name)
	case e.IsDir:
		nameStr = m.style(dirStyle).Render(name)
	default:
		nameStr = name
	}

	grade := m.gradeStyle(ratio)
	line := indent + icon + marker + " " + nameStr + pad + " " +
		grade.Render(bar) + " " + grade.Render(sizeText)

	if selected {
		return m.style(selectedStyle).Render(stripStyleIfSelected(line, m.noColor))
	}
	return line
}

// stripStyleIfSelected re-renders the selected row without per-cell
// colors so the highlight reads as one block.
func stripStyleIfSelected(line string, noColor bool) string {
	if noColor {
		return line
	}
	return ansiStrip(line)
}

func ansiStrip(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sizeBar draws a ten-cell bar proportional to the entry's share of the
// root total.
func sizeBar(n, max int64) string {
	filled := int(int64(sizeBarWidth) * n / max)
	if filled > sizeBarWidth {
		filled = sizeBarWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", sizeBarWidth-filled)
}

func (m Model) gradeStyle(ratio float64) lipgloss.Style {
	if m.noColor {
		return lipgloss.NewStyle()
	}
	switch {
	case ratio < 0.25:
		return gradeGreen
	case ratio < 0.5:
		return gradeYellow
	case ratio < 0.75:
		return gradeOrange
	default:
		return gradeRed
	}
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 1 {
		return "…"
	}
	if len(runes) > width-1 {
		runes = runes[:width-1]
	}
	return string(runes) + "…"
}

func (m Model) viewFooter() string {
	if m.status != "" {
		return m.style(faintStyle).Render(m.status) + "\n"
	}

	var hints string
	switch m.mode {
	case ModeSearch:
		hints = "Enter keep · Esc cancel"
	case ModeConfirmDelete, ModeConfirmClean:
		hints = "y confirm · n cancel"
	default:
		hints = "↑↓ move · ←→ fold · / search · s sort(" + m.sortKey.String() + ") · . hidden · d delete · c clean · r rescan · ? help · q quit"
	}
	return m.style(faintStyle).Render(hints) + "\n"
}

func (m Model) viewSearchOverlay() string {
	box := m.style(overlayBox).Width(minInt(m.width-2, 60)).Render(m.search.View())
	return box + "\n"
}

func (m Model) viewConfirm() string {
	sel, ok := m.selection()
	if !ok {
		return ""
	}

	action := "Delete"
	if m.mode == ModeConfirmClean {
		action = "Clean"
	}

	body := fmt.Sprintf("%s?\n\n%s\n%s\n\n[y] yes   [n] no",
		action, truncate(sel.Entry.Path, 44), size.Format(sel.Entry.Size))
	box := m.style(overlayBox).Width(50).Height(7).Align(lipgloss.Center).Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) viewHelp() string {
	help := strings.Join([]string{
		m.style(headerStyle).Render("Keybindings"),
		"",
		"↑/k ↓/j      move selection",
		"PgUp/PgDn    move by 20",
		"g/Home G/End jump to first / last",
		"→/l/Enter    expand, or step into",
		"←/h/Bksp     collapse, or go to parent",
		"Space        toggle expand",
		"/            search",
		"s            cycle sort (size → name → mtime)",
		".            toggle hidden files",
		"d            delete selected",
		"c            clean project at selection",
		"r            rescan",
		"q/Esc        quit",
		"",
		"press any key to close",
	}, "\n")

	box := m.style(overlayBox).Render(help)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// style disables colors wholesale when --no-color is set.
func (m Model) style(s lipgloss.Style) lipgloss.Style {
	if m.noColor {
		return lipgloss.NewStyle()
	}
	return s
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
