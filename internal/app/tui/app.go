package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"rustysweeper/internal/app/clean"
	"rustysweeper/internal/domain/detect"
	"rustysweeper/internal/domain/model"
	"rustysweeper/internal/domain/safety"
	"rustysweeper/internal/domain/tree"
	"rustysweeper/internal/infra/scanner"
	"rustysweeper/internal/infra/system"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeConfirmDelete
	ModeConfirmClean
	ModeHelp
)

type SortKey int

const (
	SortSize SortKey = iota
	SortName
	SortMTime
)

func (k SortKey) String() string {
	switch k {
	case SortName:
		return "name"
	case SortMTime:
		return "mtime"
	default:
		return "size"
	}
}

// VisibleEntry is one row of the flattened tree projection.
type VisibleEntry struct {
	Entry       *tree.Entry
	Depth       int
	Expanded    bool
	LastSibling bool
	Project     bool
}

type Options struct {
	OneFileSystem bool
	ShowHidden    bool
	NoColor       bool
	DefaultSort   string
	Threads       int
}

// Model is the full-screen browser state. The bubbletea runtime drives
// it single-threaded; rescans run as commands and deliver the new tree
// back on the update goroutine.
type Model struct {
	root     string
	tree     *tree.Entry
	visible  []VisibleEntry
	selected int
	offset   int

	expanded   map[string]struct{}
	mode       Mode
	search     textinput.Model
	sortKey    SortKey
	showHidden bool
	status     string
	scanning   bool
	quitting   bool

	width  int
	height int

	disk    model.DiskStatus
	haveDsk bool

	registry *detect.Registry
	executor *clean.Executor
	scanOpts scanner.Options
	noColor  bool

	projectCache map[string]bool
}

func New(root string, opts Options) Model {
	search := textinput.New()
	search.Prompt = "/"
	search.CharLimit = 128

	sortKey := SortSize
	switch opts.DefaultSort {
	case "name":
		sortKey = SortName
	case "mtime":
		sortKey = SortMTime
	}

	return Model{
		root:       root,
		expanded:   map[string]struct{}{},
		search:     search,
		sortKey:    sortKey,
		showHidden: opts.ShowHidden,
		noColor:    opts.NoColor,
		registry:   detect.NewRegistry(),
		executor:   &clean.Executor{NativeCommands: true},
		scanOpts: scanner.Options{
			OneFileSystem: opts.OneFileSystem,
			Threads:       opts.Threads,
		},
		projectCache: map[string]bool{},
		width:        80,
		height:       24,
	}
}

type scanDoneMsg struct {
	tree *tree.Entry
	disk model.DiskStatus
	err  error
}

type actionDoneMsg struct {
	status string
}

func (m Model) Init() tea.Cmd {
	return m.rescanCmd()
}

// rescanCmd runs a full traversal off the update goroutine and delivers
// the result as a message. The expanded set is reconciled on receipt.
func (m Model) rescanCmd() tea.Cmd {
	root := m.root
	opts := m.scanOpts
	opts.IncludeHidden = true // filtering happens at flatten time
	return func() tea.Msg {
		node, err := scanner.Scan(root, opts)
		if err != nil {
			return scanDoneMsg{err: err}
		}
		disk, derr := system.Check(root)
		if derr != nil {
			disk = model.DiskStatus{MountPoint: root}
		}
		return scanDoneMsg{tree: node, disk: disk}
	}
}

func (m *Model) applyScan(msg scanDoneMsg) {
	m.scanning = false
	if msg.err != nil {
		m.status = fmt.Sprintf("Scan failed: %v", msg.err)
		return
	}

	m.tree = msg.tree
	m.disk = msg.disk
	m.haveDsk = true
	m.projectCache = map[string]bool{}

	// Expanded paths that vanished on disk are dropped; the root is
	// always open.
	kept := map[string]struct{}{m.root: {}}
	for path := range m.expanded {
		if m.tree.Find(path) != nil {
			kept[path] = struct{}{}
		}
	}
	if m.tree.Path != m.root {
		kept[m.tree.Path] = struct{}{}
	}
	m.expanded = kept

	m.applySort()
	m.rebuild()
}

func (m *Model) applySort() {
	if m.tree == nil {
		return
	}
	switch m.sortKey {
	case SortName:
		m.tree.SortByName()
	case SortMTime:
		m.tree.SortByModTime()
	default:
		m.tree.SortBySize()
	}
}

func (m *Model) isProject(dir string) bool {
	if cached, ok := m.projectCache[dir]; ok {
		return cached
	}
	_, ok := m.registry.Match(dir)
	m.projectCache[dir] = ok
	return ok
}

// deleteSelected removes the selected subtree from disk. Deletion stays
// inside the scanned root.
func (m *Model) deleteSelected() tea.Cmd {
	sel, ok := m.selection()
	if !ok || sel.Entry.Path == m.tree.Path {
		return nil
	}
	path := sel.Entry.Path
	root := m.tree.Path
	return func() tea.Msg {
		if err := safety.RemoveTree(path, root, false); err != nil {
			return actionDoneMsg{status: fmt.Sprintf("Delete failed: %v", err)}
		}
		return actionDoneMsg{status: fmt.Sprintf("Deleted %s", path)}
	}
}

// cleanSelected runs the matching detector's clean on the selected
// directory.
func (m *Model) cleanSelected() tea.Cmd {
	sel, ok := m.selection()
	if !ok {
		return nil
	}
	path := sel.Entry.Path
	registry := m.registry
	executor := m.executor
	return func() tea.Msg {
		project, ok := clean.Detect(registry, path)
		if !ok {
			return actionDoneMsg{status: "Not a recognized project"}
		}
		det, _ := registry.Lookup(project.Type)
		res := executor.Clean(context.Background(), project, det.CleanCommand)
		switch res.Status {
		case model.CleanSuccess:
			return actionDoneMsg{status: fmt.Sprintf("Cleaned %s (%s freed)", project.Name, formatBytes(res.FreedBytes))}
		default:
			return actionDoneMsg{status: fmt.Sprintf("Clean failed: %s", res.Message)}
		}
	}
}

func (m *Model) selection() (VisibleEntry, bool) {
	if len(m.visible) == 0 || m.selected < 0 || m.selected >= len(m.visible) {
		return VisibleEntry{}, false
	}
	return m.visible[m.selected], true
}
