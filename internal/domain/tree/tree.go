package tree

import (
	"path/filepath"
	"sort"
	"time"
)

// Entry is one node of a sized directory tree. Directory totals always
// cover the whole subtree; error leaves contribute zero everywhere.
type Entry struct {
	Path      string     `json:"path"`
	Name      string     `json:"-"`
	IsDir     bool       `json:"is_dir"`
	Size      int64      `json:"size"`
	DiskUsage int64      `json:"disk_usage"`
	FileCount int64      `json:"file_count"`
	DirCount  int64      `json:"dir_count"`
	ModTime   *time.Time `json:"mtime,omitempty"`
	Children  []*Entry   `json:"children,omitempty"`
	Err       string     `json:"error,omitempty"`
}

func NewFile(path string, size, diskUsage int64, modTime time.Time) *Entry {
	e := &Entry{
		Path:      path,
		Name:      filepath.Base(path),
		Size:      size,
		DiskUsage: diskUsage,
		FileCount: 1,
	}
	if !modTime.IsZero() {
		mt := modTime
		e.ModTime = &mt
	}
	return e
}

func NewDir(path string) *Entry {
	return &Entry{
		Path:  path,
		Name:  filepath.Base(path),
		IsDir: true,
	}
}

func NewError(path string, cause error) *Entry {
	return &Entry{
		Path: path,
		Name: filepath.Base(path),
		Err:  cause.Error(),
	}
}

func (e *Entry) IsError() bool { return e.Err != "" }

// RecalculateTotals recomputes this node's aggregates from its direct
// children. Callers building a tree recurse bottom-up so child totals are
// already final.
func (e *Entry) RecalculateTotals() {
	if !e.IsDir {
		return
	}
	var size, usage, files, dirs int64
	for _, c := range e.Children {
		size += c.Size
		usage += c.DiskUsage
		files += c.FileCount
		if c.IsDir {
			dirs += 1 + c.DirCount
		}
	}
	e.Size = size
	e.DiskUsage = usage
	e.FileCount = files
	e.DirCount = dirs
}

// SortBySize orders children largest first, recursively, with a stable
// name tie-break so equal-size runs stay deterministic.
func (e *Entry) SortBySize() {
	sort.Slice(e.Children, func(i, j int) bool {
		a, b := e.Children[i], e.Children[j]
		if a.Size != b.Size {
			return a.Size > b.Size
		}
		return a.Name < b.Name
	})
	for _, c := range e.Children {
		if c.IsDir {
			c.SortBySize()
		}
	}
}

func (e *Entry) SortByName() {
	sort.Slice(e.Children, func(i, j int) bool {
		return e.Children[i].Name < e.Children[j].Name
	})
	for _, c := range e.Children {
		if c.IsDir {
			c.SortByName()
		}
	}
}

// SortByModTime orders newest first; entries without a modification time
// sort after everything else.
func (e *Entry) SortByModTime() {
	sort.Slice(e.Children, func(i, j int) bool {
		a, b := e.Children[i], e.Children[j]
		switch {
		case a.ModTime == nil && b.ModTime == nil:
			return a.Name < b.Name
		case a.ModTime == nil:
			return false
		case b.ModTime == nil:
			return true
		case !a.ModTime.Equal(*b.ModTime):
			return a.ModTime.After(*b.ModTime)
		default:
			return a.Name < b.Name
		}
	})
	for _, c := range e.Children {
		if c.IsDir {
			c.SortByModTime()
		}
	}
}

// Find walks the subtree for the entry at path, or nil.
func (e *Entry) Find(path string) *Entry {
	if e.Path == path {
		return e
	}
	for _, c := range e.Children {
		if found := c.Find(path); found != nil {
			return found
		}
	}
	return nil
}
