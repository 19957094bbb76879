package scanner

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"rustysweeper/internal/domain/tree"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanAggregatesTotals(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.bin"), 100)
	writeFile(t, filepath.Join(root, "b.bin"), 200)
	writeFile(t, filepath.Join(root, "s", "c.bin"), 50)

	got, err := Scan(root, Options{})
	if err != nil {
		t.Fatal(err)
	}

	if got.Size != 350 {
		t.Fatalf("root size = %d, want 350", got.Size)
	}
	if got.FileCount != 3 {
		t.Fatalf("file count = %d, want 3", got.FileCount)
	}
	if got.DirCount != 1 {
		t.Fatalf("dir count = %d, want 1", got.DirCount)
	}

	sub := got.Find(filepath.Join(root, "s"))
	if sub == nil || sub.Size != 50 {
		t.Fatalf("subdir totals wrong: %+v", sub)
	}

	checkInvariants(t, got)
}

// checkInvariants verifies that every directory's aggregates equal the
// sum over its children.
func checkInvariants(t *testing.T, e *tree.Entry) {
	t.Helper()
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
		checkInvariants(t, c)
	}
	if e.Size != size || e.DiskUsage != usage || e.FileCount != files || e.DirCount != dirs {
		t.Fatalf("aggregate mismatch at %s: size %d/%d usage %d/%d files %d/%d dirs %d/%d",
			e.Path, e.Size, size, e.DiskUsage, usage, e.FileCount, files, e.DirCount, dirs)
	}
}

func TestScanSkipsHiddenByDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "visible.txt"), 10)
	writeFile(t, filepath.Join(root, ".hidden.txt"), 10)
	writeFile(t, filepath.Join(root, ".h", "inner.txt"), 10)

	got, err := Scan(root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Children) != 1 || got.Children[0].Name != "visible.txt" {
		t.Fatalf("expected only visible.txt, got %d children", len(got.Children))
	}

	got, err = Scan(root, Options{IncludeHidden: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Children) != 3 {
		t.Fatalf("expected 3 children with hidden included, got %d", len(got.Children))
	}
}

func TestScanMaxDepthStubsDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "l1", "l2", "deep.bin"), 100)

	got, err := Scan(root, Options{MaxDepth: 1})
	if err != nil {
		t.Fatal(err)
	}

	if len(got.Children) != 1 {
		t.Fatalf("expected the depth-1 stub, got %d children", len(got.Children))
	}
	stub := got.Children[0]
	if !stub.IsDir || len(stub.Children) != 0 || stub.Size != 0 {
		t.Fatalf("expected an empty stub at max depth, got %+v", stub)
	}
}

func TestScanExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "node_modules", "x.js"), 100)
	writeFile(t, filepath.Join(root, "src", "main.go"), 10)

	got, err := Scan(root, Options{Excludes: []string{"node_modules"}})
	if err != nil {
		t.Fatal(err)
	}
	if got.Find(filepath.Join(root, "node_modules")) != nil {
		t.Fatal("excluded directory still present")
	}
	if got.Size != 10 {
		t.Fatalf("excluded bytes counted: %d", got.Size)
	}
}

func TestScanUnreadableDirectoryBecomesErrorLeaf(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission bits do not apply to root")
	}

	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(locked, "secret.bin"), 100)
	writeFile(t, filepath.Join(root, "open.bin"), 10)

	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	got, err := Scan(root, Options{})
	if err != nil {
		t.Fatal(err)
	}

	leaf := got.Find(locked)
	if leaf == nil || !leaf.IsError() {
		t.Fatalf("expected an error leaf for %s, got %+v", locked, leaf)
	}
	if leaf.Size != 0 || leaf.FileCount != 0 {
		t.Fatalf("error leaf must contribute zero, got %+v", leaf)
	}
	if got.Size != 10 {
		t.Fatalf("root total should only count readable files: %d", got.Size)
	}
}

func TestScanRootFileIsALeaf(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "only.bin")
	writeFile(t, path, 42)

	got, err := Scan(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got.IsDir || got.Size != 42 || got.Name != path {
		t.Fatalf("unexpected root leaf %+v", got)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "one.bin"), 100)
	writeFile(t, filepath.Join(root, "a", "two.bin"), 250)
	writeFile(t, filepath.Join(root, "a", "deep", "three.bin"), 75)
	writeFile(t, filepath.Join(root, "b", "four.bin"), 4096)
	writeFile(t, filepath.Join(root, "b", ".dot", "five.bin"), 9)
	writeFile(t, filepath.Join(root, "top.bin"), 1)

	for _, opts := range []Options{
		{},
		{IncludeHidden: true},
		{MaxDepth: 2},
		{Threads: 2},
	} {
		par, err := Scan(root, opts)
		if err != nil {
			t.Fatal(err)
		}
		seq, err := ScanSequential(root, opts)
		if err != nil {
			t.Fatal(err)
		}
		assertTreesEqual(t, par, seq)
	}
}

func assertTreesEqual(t *testing.T, a, b *tree.Entry) {
	t.Helper()
	if a.Path != b.Path || a.IsDir != b.IsDir || a.Size != b.Size ||
		a.DiskUsage != b.DiskUsage || a.FileCount != b.FileCount || a.DirCount != b.DirCount {
		t.Fatalf("node mismatch:\n%+v\n%+v", a, b)
	}
	if len(a.Children) != len(b.Children) {
		t.Fatalf("child count mismatch at %s: %d vs %d", a.Path, len(a.Children), len(b.Children))
	}
	for i := range a.Children {
		assertTreesEqual(t, a.Children[i], b.Children[i])
	}
}

func TestScanProgressCallbackFires(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 250; i++ {
		writeFile(t, filepath.Join(root, "d", "f"+string(rune('a'+i%26))+string(rune('0'+i/26))), 1)
	}

	var calls atomic.Int64
	_, err := Scan(root, Options{Progress: func(count int64, path string) {
		calls.Add(1)
		if count <= 0 || path == "" {
			t.Errorf("bad progress sample: %d %q", count, path)
		}
	}})
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() == 0 {
		t.Fatal("progress callback never fired")
	}
}
