package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"rustysweeper/internal/domain/size"
	"rustysweeper/internal/domain/tree"
)

// ScanSequential is the single-threaded reference traversal. It applies the
// same filters and policies as Scan and produces an identical tree, which
// the tests use to cross-check the parallel walker.
func ScanSequential(root string, opts Options) (*tree.Entry, error) {
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

	w := &walker{opts: opts, globs: globs}
	if dev, _, ok := statIdentity(info); ok {
		w.rootDev = dev
	}

	if !info.IsDir() {
		node := tree.NewFile(rootAbs, size.Apparent(info), size.DiskUsage(info), info.ModTime())
		node.Name = rootAbs
		return node, nil
	}

	node := w.walkDirSequential(rootAbs, info, 0, nil)
	node.Name = rootAbs
	return node, nil
}

func (w *walker) walkDirSequential(path string, dirInfo os.FileInfo, depth int, ancestors []identity) *tree.Entry {
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

	for _, entry := range entries {
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
			node.Children = append(node.Children, child)
			continue
		}
		if descend == nil {
			continue
		}
		node.Children = append(node.Children, w.walkDirSequential(descend.path, descend.info, depth+1, descend.ancestors))
	}

	node.RecalculateTotals()
	node.SortBySize()
	return node
}
