package scanner

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gobwas/glob"

	"rustysweeper/internal/domain/size"
	"rustysweeper/internal/domain/tree"
)

// ProgressFunc receives a monotonically increasing entry counter and the
// path currently being examined. It may be called from many goroutines at
// once and must return quickly.
type ProgressFunc func(count int64, path string)

type Options struct {
	MaxDepth       int // 0 = unlimited
	IncludeHidden  bool
	OneFileSystem  bool
	Threads        int // 0 = platform default
	Excludes       []string
	FollowSymlinks bool
	Progress       ProgressFunc
}

const progressSampleEvery = 100

type identity struct {
	dev uint64
	ino uint64
}

type walker struct {
	opts    Options
	globs   []glob.Glob
	rootDev uint64
	sem     chan struct{}
	counter atomic.Int64
}

// Scan traverses root and returns a fully populated tree, children sorted
// by size descending. Per-entry I/O failures become error leaves; only a
// failure to stat the root or an invalid exclude pattern is returned as an
// error. A root directory that cannot be listed comes back as an error leaf.
func Scan(root string, opts Options) (*tree.Entry, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Lstat(rootAbs)
	if err != nil {
		return nil, err
	}

	globs, err := compileExcludes(opts.Excludes)
	if err != nil {
		return nil, err
	}

	w := &walker{
		opts:  opts,
		globs: globs,
		sem:   make(chan struct{}, workerCount(opts.Threads)),
	}
	if dev, _, ok := statIdentity(info); ok {
		w.rootDev = dev
	}

	if !info.IsDir() {
		node := tree.NewFile(rootAbs, size.Apparent(info), size.DiskUsage(info), info.ModTime())
		node.Name = rootAbs
		return node, nil
	}

	node := w.walkDir(rootAbs, info, 0, nil)
	node.Name = rootAbs
	return node, nil
}

func workerCount(threads int) int {
	if threads > 0 {
		return threads
	}
	n := runtime.NumCPU() * 4
	if n < 16 {
		n = 16
	}
	if n > 128 {
		n = 128
	}
	return n
}

func compileExcludes(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (w *walker) excluded(name, path string) bool {
	for _, g := range w.globs {
		if g.Match(name) || g.Match(path) {
			return true
		}
	}
	return false
}

func (w *walker) tick(path string) {
	c := w.counter.Add(1)
	if w.opts.Progress != nil && c%progressSampleEvery == 0 {
		w.opts.Progress(c, path)
	}
}

// walkDir builds the node for one directory. Child directories are
// dispatched to spare workers when a slot is free and walked inline
// otherwise, so deep recursion never deadlocks on the semaphore.
func (w *walker) walkDir(path string, dirInfo os.FileInfo, depth int, ancestors []identity) *tree.Entry {
	node := tree.NewDir(path)
	if mt := dirInfo.ModTime(); !mt.IsZero() {
		node.ModTime = &mt
	}

	if w.opts.MaxDepth > 0 && depth >= w.opts.MaxDepth {
		return node
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return tree.NewError(path, err)
	}

	children := make([]*tree.Entry, len(entries))
	var pending sync.WaitGroup

	for i, entry := range entries {
		name := entry.Name()
		childPath := filepath.Join(path, name)
		w.tick(childPath)

		if !w.opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if w.excluded(name, childPath) {
			continue
		}

		child, descend := w.resolveChild(childPath, entry, ancestors)
		if child != nil {
			children[i] = child
			continue
		}
		if descend == nil {
			continue
		}

		idx := i
		target := descend
		select {
		case w.sem <- struct{}{}:
			pending.Add(1)
			go func() {
				defer pending.Done()
				defer func() { <-w.sem }()
				children[idx] = w.walkDir(target.path, target.info, depth+1, target.ancestors)
			}()
		default:
			children[idx] = w.walkDir(target.path, target.info, depth+1, target.ancestors)
		}
	}

	pending.Wait()

	for _, c := range children {
		if c != nil {
			node.Children = append(node.Children, c)
		}
	}
	node.RecalculateTotals()
	node.SortBySize()
	return node
}

type descent struct {
	path      string
	info      os.FileInfo
	ancestors []identity
}

// resolveChild classifies one directory entry. It returns either a finished
// leaf node, or a descent request for a subdirectory, or neither when the
// entry is skipped by the device or symlink policy.
func (w *walker) resolveChild(path string, entry os.DirEntry, ancestors []identity) (*tree.Entry, *descent) {
	isSymlink := entry.Type()&os.ModeSymlink != 0

	if isSymlink && !w.opts.FollowSymlinks {
		info, err := os.Lstat(path)
		if err != nil {
			return tree.NewError(path, err), nil
		}
		return tree.NewFile(path, size.Apparent(info), size.DiskUsage(info), info.ModTime()), nil
	}

	var info os.FileInfo
	var err error
	if isSymlink {
		info, err = os.Stat(path)
	} else {
		info, err = entry.Info()
	}
	if err != nil {
		return tree.NewError(path, err), nil
	}

	if !info.IsDir() {
		return tree.NewFile(path, size.Apparent(info), size.DiskUsage(info), info.ModTime()), nil
	}

	dev, ino, ok := statIdentity(info)
	if ok && w.opts.OneFileSystem && dev != w.rootDev {
		return nil, nil
	}
	if w.opts.FollowSymlinks && ok {
		id := identity{dev: dev, ino: ino}
		for _, a := range ancestors {
			if a == id {
				return nil, nil
			}
		}
		ancestors = append(append([]identity(nil), ancestors...), id)
	}

	return nil, &descent{path: path, info: info, ancestors: ancestors}
}
