package scan

import (
	"sort"
	"time"

	"rustysweeper/internal/domain/size"
	"rustysweeper/internal/domain/tree"
	"rustysweeper/internal/infra/scanner"
)

type Options struct {
	MaxDepth      int
	IncludeHidden bool
	OneFileSystem bool
	Threads       int
	Excludes      []string
	Sort          string // size, name or mtime
	Progress      scanner.ProgressFunc
}

// Report is the outcome of one traversal.
type Report struct {
	Root    *tree.Entry
	Elapsed time.Duration
}

type Service struct{}

func NewService() Service { return Service{} }

func (Service) Run(root string, opts Options) (*Report, error) {
	start := time.Now()
	node, err := scanner.Scan(root, scanner.Options{
		MaxDepth:      opts.MaxDepth,
		IncludeHidden: opts.IncludeHidden,
		OneFileSystem: opts.OneFileSystem,
		Threads:       opts.Threads,
		Excludes:      opts.Excludes,
		Progress:      opts.Progress,
	})
	if err != nil {
		return nil, err
	}

	switch opts.Sort {
	case "name":
		node.SortByName()
	case "mtime":
		node.SortByModTime()
	}

	return &Report{Root: node, Elapsed: time.Since(start)}, nil
}

// Top returns the n largest entries below the root, biggest first.
func (r *Report) Top(n int) []*tree.Entry {
	var all []*tree.Entry
	var collect func(e *tree.Entry)
	collect = func(e *tree.Entry) {
		for _, c := range e.Children {
			all = append(all, c)
			collect(c)
		}
	}
	collect(r.Root)

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Size != all[j].Size {
			return all[i].Size > all[j].Size
		}
		return all[i].Path < all[j].Path
	})
	if n > 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// JSONTree is the --json payload: the entry tree with a human-readable
// total on the root.
type JSONTree struct {
	*tree.Entry
	SizeHuman string `json:"size_human"`
}

func (r *Report) JSON() JSONTree {
	return JSONTree{Entry: r.Root, SizeHuman: size.Format(r.Root.Size)}
}
